package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/nci/gowarp/metrics"
	"github.com/nci/gowarp/utils"
	pb "github.com/nci/gowarp/worker/warpservice"

	_ "net/http/pprof"

	"golang.org/x/net/context"
	"google.golang.org/grpc"
	"os"
	"os/signal"
	"syscall"
)

type server struct {
	Pool          *pb.ProcessPool
	Config        *utils.Config
	MetricsLogger metrics.Logger
}

func (s *server) Process(ctx context.Context, in *pb.Granule) (*pb.Result, error) {
	if in.MemoryLimitMb == 0 {
		in.MemoryLimitMb = s.Config.WorkerConfig.WarpMemoryLimitMB
	}
	if in.WarpWorkers == 0 {
		in.WarpWorkers = int32(s.Config.WorkerConfig.WarpWorkers)
	}

	collector := metrics.NewMetricsCollector(s.MetricsLogger)
	collector.Info.Operation = in.Operation
	collector.Info.Granule = in.Path
	t0 := time.Now()
	defer func() {
		collector.Info.ReqDuration = time.Since(t0)
		collector.Log()
	}()

	rChan := make(chan *pb.Result)
	defer close(rChan)
	errChan := make(chan error)
	defer close(errChan)

	s.Pool.AddQueue(&pb.Task{Payload: in, Resp: rChan, Error: errChan})

	select {
	case out, ok := <-rChan:
		if !ok {
			collector.Info.Status = "error"
			return &pb.Result{}, fmt.Errorf("task response channel has been closed")
		}
		if out.Error != "OK" {
			collector.Info.Status = "error"
			return &pb.Result{}, fmt.Errorf("%s", out.Error)
		}
		collector.Info.Status = "OK"
		if out.Metrics != nil {
			collector.Info.RPC.NumGranules = 1
			collector.Info.RPC.BytesRead = out.Metrics.BytesRead
			collector.Info.RPC.BytesWritten = out.Metrics.BytesWritten
			collector.Info.RPC.UserTime = out.Metrics.UserTime
			collector.Info.RPC.SysTime = out.Metrics.SysTime
		}
		return out, nil
	case err := <-errChan:
		collector.Info.Status = "error"
		return &pb.Result{}, fmt.Errorf("Error in ops: %v", err)
	}
}

var Info *log.Logger
var Error *log.Logger

func main() {
	port := flag.Int("p", 6000, "gRPC server listening port.")
	poolSize := flag.Int("n", 0, "Maximum number of worker processes.")
	executable := flag.String("exec", "", "Worker executable filepath")
	maxTasks := flag.Int("max_tasks", 0, "Tasks served by a worker before it is recycled (0 disables recycling).")
	conf := flag.String("conf", "", "Server config filepath. Flags override config values when set.")
	logDir := flag.String("log_dir", "", "Metrics log directory (stdout if empty).")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	Info = log.New(os.Stdout, "warp-server: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(os.Stderr, "warp-server: ", log.Ldate|log.Ltime|log.Lshortfile)

	config := &utils.Config{}
	if *conf != "" {
		if err := config.LoadConfigFile(*conf); err != nil {
			Error.Fatal(err)
		}
		utils.WatchConfig(Info, Error, *conf, config)
	}
	if *poolSize <= 0 {
		*poolSize = config.WorkerConfig.PoolSize
	}
	if *poolSize <= 0 {
		*poolSize = utils.DefaultPoolSize
	}
	if *executable == "" {
		*executable = config.WorkerConfig.ExecutablePath
	}
	if *maxTasks <= 0 {
		*maxTasks = config.WorkerConfig.MaxTasksPerWorker
	}
	if *logDir == "" {
		*logDir = config.MetricsConfig.LogDir
	}

	p, err := pb.CreateProcessPool(*poolSize, *executable, *maxTasks, *debug)
	if err != nil {
		Error.Printf("Failed to create process pool: %v", err)
		os.Exit(2)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			select {
			case <-signals:
				p.DeleteProcessPool()
				os.Exit(1)
			}
		}
	}()

	var metricsLogger metrics.Logger
	if *logDir != "" {
		metricsLogger = metrics.NewFileLogger(*logDir,
			config.MetricsConfig.MaxLogFileSize, config.MetricsConfig.MaxLogFiles, *debug)
	} else {
		metricsLogger = metrics.NewStdoutLogger()
	}

	s := grpc.NewServer()
	pb.RegisterWarpServer(s, &server{Pool: p, Config: config, MetricsLogger: metricsLogger})

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
