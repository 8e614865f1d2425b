package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/nci/gowarp/utils"
	pb "github.com/nci/gowarp/worker/warpservice"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/net/context"
	"google.golang.org/grpc"
)

var catalog_lookup string = "http://%s/?prefix=&limit=1"
var passed string = "Passed"
var failed string = "Failed"

var probeGeometry string = `{"type": "Point", "coordinates": [149.1, -35.3]}`
var probeGranule string = `{"path": "/accept/probe.tif", "srs": "EPSG:4326", "width": 4, "height": 4, "bands": 1, "data_type": "Byte"}`

func Geometry(client pb.WarpClient) bool {
	out, err := client.Process(context.Background(), &pb.Granule{
		Operation: "geometry",
		Geometry:  probeGeometry,
		SrcCrs:    "EPSG:4326",
		DstCrs:    "EPSG:3857",
	})
	if err != nil {
		log.Println(err)
		return false
	}
	return len(out.Geometry) > 0
}

func Extents(client pb.WarpClient, pathList string, concLevel int) (bool, time.Duration) {
	out := true
	start := time.Now()
	f, err := os.Open(pathList)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	conc := utils.NewConcLimiter(concLevel)
	results := make(chan bool)
	defer close(results)
	go func() {
		for res := range results {
			if res == false {
				out = false
			}
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		conc.Increase()
		go func(path string) {
			_, err := client.Process(context.Background(), &pb.Granule{
				Operation: "extent",
				Path:      path,
				DstCrs:    "EPSG:3857",
			})
			if err != nil {
				log.Println(path, err)
			}
			results <- err == nil
			conc.Decrease()
		}(scanner.Text())
	}

	conc.Wait()

	return out, time.Since(start)
}

func CatalogLookup(host string) bool {
	resp, err := http.Get(fmt.Sprintf(catalog_lookup, host))
	if err != nil {
		log.Fatal(err)
	}
	return resp.StatusCode == 200
}

func CatalogRegister(host string) bool {
	resp, err := http.Post(fmt.Sprintf("http://%s/register", host),
		"application/json", bytes.NewBufferString(probeGranule))
	if err != nil {
		log.Fatal(err)
	}
	return resp.StatusCode == 200
}

func inRed(str string) string {
	return fmt.Sprintf("\x1b[31;1m%s\x1b[0m", str)
}

func inGreen(str string) string {
	return fmt.Sprintf("\x1b[32;1m%s\x1b[0m", str)
}

func main() {
	host := flag.String("h", "127.0.0.1:6000", "warp gRPC server address")
	catalog := flag.String("catalog", "127.0.0.1:8080", "catalog host name or address")
	suite := flag.String("s", "warp", "Test suite [warp, catalog]")
	conc := flag.Int("n", 6, "Concurrency level for acceptance tests")
	pathList := flag.String("paths", "acpt_granules.txt", "File listing granule paths, one per line")
	flag.Parse()

	var t time.Duration
	var ok bool

	if terminal.IsTerminal(int(os.Stdout.Fd())) {
		passed = inGreen(passed)
		failed = inRed(failed)
	}

	switch *suite {
	case "warp":
		conn, err := grpc.Dial(*host, grpc.WithInsecure(),
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(utils.DefaultRecvMsgSize)))
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		client := pb.NewWarpClient(conn)

		fmt.Printf("Testing geometry reprojection: ")
		if !Geometry(client) {
			fmt.Println(failed)
			os.Exit(1)
		}
		fmt.Println(passed)

		fmt.Printf("Testing warp extents: ")
		if ok, t = Extents(client, *pathList, *conc); !ok {
			fmt.Println(failed)
			os.Exit(1)
		}
		fmt.Println(passed, t)
	case "catalog":
		fmt.Printf("Testing catalog lookup: ")
		if !CatalogLookup(*catalog) {
			fmt.Println(failed)
			os.Exit(1)
		}
		fmt.Println(passed)

		fmt.Printf("Testing catalog register: ")
		if !CatalogRegister(*catalog) {
			fmt.Println(failed)
			os.Exit(1)
		}
		fmt.Println(passed)
	}
}
