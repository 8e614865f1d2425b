package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	goeval "github.com/edisonguo/govaluate"
	"github.com/nci/gowarp/gdalwarp"
	"github.com/nci/gowarp/utils"
	wp "github.com/nci/gowarp/worker/warpprocess"
	pb "github.com/nci/gowarp/worker/warpservice"
	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"gopkg.in/yaml.v2"
)

type Job struct {
	Name          string   `yaml:"name"`
	SourceDir     string   `yaml:"source_dir"`
	Pattern       string   `yaml:"pattern"`
	SrcCRS        string   `yaml:"src_crs"`
	DstCRS        string   `yaml:"dst_crs"`
	Resampling    string   `yaml:"resampling"`
	SrcNodata     *float64 `yaml:"src_nodata"`
	DstNodata     *float64 `yaml:"dst_nodata"`
	Tolerance     float64  `yaml:"tolerance"`
	Workers       int      `yaml:"workers"`
	MemoryLimitMB float64  `yaml:"memory_limit_mb"`
	WarpExtras    []string `yaml:"warp_extras"`
	Format        string   `yaml:"format"`
	OutputDir     string   `yaml:"output_dir"`
}

type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

func loadManifest(path string) (*Manifest, error) {
	cfg, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Error while reading manifest file %s: %v", path, err)
	}
	manifest := &Manifest{}
	if err := yaml.Unmarshal(cfg, manifest); err != nil {
		return nil, fmt.Errorf("Error while parsing manifest file %s: %v", path, err)
	}
	if len(manifest.Jobs) == 0 {
		return nil, fmt.Errorf("manifest %s has no jobs", path)
	}
	for i, job := range manifest.Jobs {
		if job.SourceDir == "" || job.OutputDir == "" {
			return nil, fmt.Errorf("job %d requires source_dir and output_dir", i)
		}
		if job.DstCRS == "" {
			return nil, fmt.Errorf("job %d requires dst_crs", i)
		}
	}
	return manifest, nil
}

func parsePatternExpression(pattern string) (*goeval.EvaluableExpression, error) {
	if len(strings.TrimSpace(pattern)) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(pattern)
	if err != nil {
		return nil, err
	}

	validVariables := map[string]struct{}{"path": struct{}{}, "type": struct{}{}}
	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := validVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are %v", varName, validVariables)
			}
		}
	}
	return expr, nil
}

func listGranules(job *Job) ([]string, error) {
	expr, err := parsePatternExpression(job.Pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(job.SourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if expr != nil {
			params := map[string]interface{}{"path": path, "type": "file"}
			result, err := expr.Evaluate(params)
			if err != nil {
				return err
			}
			match, ok := result.(bool)
			if !ok {
				return fmt.Errorf("pattern '%s' does not evaluate to boolean", job.Pattern)
			}
			if !match {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// processor abstracts where the warp happens. The local processor calls
// straight into the worker package, the remote one ships granules to a
// gRPC pool.
type processor interface {
	process(in *pb.Granule) (*pb.Result, error)
}

type localProcessor struct {
	debug bool
}

func (p *localProcessor) process(in *pb.Granule) (*pb.Result, error) {
	var out *pb.Result
	switch in.Operation {
	case "warp":
		out = wp.WarpRaster(in, p.debug)
	case "extent":
		out = wp.ComputeReprojectExtent(in)
	default:
		return nil, fmt.Errorf("Unknown operation: %s", in.Operation)
	}
	if out.Error != "OK" {
		return nil, fmt.Errorf("%s", out.Error)
	}
	return out, nil
}

type remoteProcessor struct {
	client pb.WarpClient
}

func (p *remoteProcessor) process(in *pb.Granule) (*pb.Result, error) {
	out, err := p.client.Process(context.Background(), in)
	if err != nil {
		return nil, err
	}
	if out.Error != "" && out.Error != "OK" {
		return nil, fmt.Errorf("%s", out.Error)
	}
	return out, nil
}

func outputPath(job *Job, granule string) string {
	ext := ".tif"
	if strings.ToLower(job.Format) == "netcdf" {
		ext = ".nc"
	}
	base := filepath.Base(granule)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	return filepath.Join(job.OutputDir, base)
}

func warpGranule(proc processor, job *Job, granule string) error {
	extent, err := proc.process(&pb.Granule{
		Operation: "extent",
		Path:      granule,
		SrcCrs:    job.SrcCRS,
		DstCrs:    job.DstCRS,
	})
	if err != nil {
		return fmt.Errorf("extent failed for %s: %v", granule, err)
	}

	in := &pb.Granule{
		Operation: "warp",
		Path:      granule,
		SrcCrs:    job.SrcCRS,
		DstCrs:    job.DstCRS,
		DstGrid: &pb.Grid{
			Width:        extent.Width,
			Height:       extent.Height,
			Crs:          job.DstCRS,
			Geotransform: extent.Geotransform,
		},
		Resampling:    job.Resampling,
		Tolerance:     job.Tolerance,
		WarpWorkers:   int32(job.Workers),
		MemoryLimitMb: job.MemoryLimitMB,
		WarpExtras:    job.WarpExtras,
	}
	if job.SrcNodata != nil {
		in.SrcNodata = *job.SrcNodata
		in.SrcNodataValid = true
	}
	if job.DstNodata != nil {
		in.DstNodata = *job.DstNodata
		in.DstNodataValid = true
	}

	out, err := proc.process(in)
	if err != nil {
		return fmt.Errorf("warp failed for %s: %v", granule, err)
	}

	raster, err := wp.DecodeRaster(out.Raster)
	if err != nil {
		return fmt.Errorf("bad warp result for %s: %v", granule, err)
	}
	gt, err := gdalwarp.ParseGeoTransform(extent.Geotransform.Form, extent.Geotransform.Coefficients)
	if err != nil {
		return err
	}
	return gdalwarp.SaveRaster(outputPath(job, granule), job.Format, raster, gt, job.DstCRS)
}

func runJob(proc processor, job *Job, conc int, debug bool) error {
	granules, err := listGranules(job)
	if err != nil {
		return err
	}
	if len(granules) == 0 {
		log.Printf("job %s matched no granules under %s", job.Name, job.SourceDir)
		return nil
	}

	if err := os.MkdirAll(job.OutputDir, 0755); err != nil {
		return err
	}

	var failed int
	limiter := utils.NewConcLimiter(conc)
	errors := make(chan error, len(granules))
	for _, granule := range granules {
		limiter.Increase()
		go func(granule string) {
			defer limiter.Decrease()
			if err := warpGranule(proc, job, granule); err != nil {
				errors <- err
				return
			}
			if debug {
				log.Printf("warped %s", granule)
			}
		}(granule)
	}
	limiter.Wait()
	close(errors)
	for err := range errors {
		log.Println(err)
		failed++
	}

	log.Printf("job %s: %d granules, %d failed", job.Name, len(granules), failed)
	if failed > 0 {
		return fmt.Errorf("job %s had %d failures", job.Name, failed)
	}
	return nil
}

func main() {
	conf := flag.String("conf", "", "Batch manifest filepath")
	remote := flag.String("remote", "", "gRPC warp server address. Empty runs warps in-process.")
	conc := flag.Int("c", 4, "Concurrent granules per job")
	recvSize := flag.Int("max_recv_msg_size", utils.DefaultRecvMsgSize, "Maximum gRPC message size in bytes")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	if *conf == "" {
		flag.Usage()
		os.Exit(2)
	}

	manifest, err := loadManifest(*conf)
	if err != nil {
		log.Fatal(err)
	}

	var proc processor
	if *remote != "" {
		conn, err := grpc.Dial(*remote, grpc.WithInsecure(),
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(*recvSize)))
		if err != nil {
			log.Fatalf("gRPC connection problem: %v", err)
		}
		defer conn.Close()
		proc = &remoteProcessor{client: pb.NewWarpClient(conn)}
	} else {
		utils.InitGdal()
		proc = &localProcessor{debug: *debug}
	}

	var failures int
	for i := range manifest.Jobs {
		if err := runJob(proc, &manifest.Jobs[i], *conc, *debug); err != nil {
			log.Println(err)
			failures++
		}
	}
	if failures > 0 {
		os.Exit(1)
	}
}
