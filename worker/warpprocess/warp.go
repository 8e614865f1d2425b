package warpprocess

import (
	"fmt"
	"log"

	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

// WarpRaster reprojects the granule's bands into the requested destination
// grid and returns the warped pixels inline. The source grid is taken from
// the request when present, otherwise from the granule's own georeferencing.
func WarpRaster(in *pb.Granule, debug bool) *pb.Result {
	if in.Path == "" {
		return &pb.Result{Error: "warp request has no granule path"}
	}
	if in.DstGrid == nil {
		return &pb.Result{Error: "warp request has no destination grid"}
	}

	dstGeom, err := decodeGrid(in.DstGrid)
	if err != nil {
		return &pb.Result{Error: fmt.Sprintf("bad destination grid: %v", err)}
	}

	var srcGeom gdalwarp.GridGeometry
	var info *DatasetInfo
	if in.SrcGrid != nil {
		srcGeom, err = decodeGrid(in.SrcGrid)
		if err != nil {
			return &pb.Result{Error: fmt.Sprintf("bad source grid: %v", err)}
		}
		info, err = describeDataset(in.Path)
	} else {
		srcGeom, info, err = datasetGrid(in.Path)
	}
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}
	if srcGeom.CRS == "" {
		srcGeom.CRS = in.SrcCrs
	}
	if dstGeom.CRS == "" {
		dstGeom.CRS = in.DstCrs
	}

	alg, err := decodeResampling(in.Resampling)
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}
	extras, err := decodeExtras(in.WarpExtras)
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}

	bands := make([]int, len(in.Bands))
	for i, b := range in.Bands {
		bands[i] = int(b)
	}
	bandCount := len(bands)
	if bandCount == 0 {
		bandCount = info.Bands
	}

	dataType := info.DataType
	if dataType == "" {
		dataType = "Byte"
	}

	dstNodata := in.DstNodata
	dstNodataValid := in.DstNodataValid
	if !dstNodataValid && in.SrcNodataValid {
		dstNodata = in.SrcNodata
		dstNodataValid = true
	}
	if !dstNodataValid && info.NoData != nil {
		dstNodata = *info.NoData
		dstNodataValid = true
	}

	dstRaster, err := makeRaster(dataType, dstGeom.Width, dstGeom.Height, bandCount, dstNodata, dstNodataValid)
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}

	cfg := gdalwarp.WarpConfig{
		Resampling:    alg,
		MemoryLimitMB: in.MemoryLimitMb,
		NumWorkers:    int(in.WarpWorkers),
		Tolerance:     in.Tolerance,
		Extra:         extras,
	}
	if in.SrcNodataValid {
		nodata := in.SrcNodata
		cfg.SrcNodata = &nodata
	}

	metrics := &pb.WorkerMetrics{}
	ru0 := collectRusage()

	src := &gdalwarp.DatasetBands{Path: in.Path, Bands: bands}
	if err := gdalwarp.Reproject(src, dstRaster, srcGeom, dstGeom, cfg); err != nil {
		if debug {
			log.Printf("warp failed for %s: %v", in.Path, err)
		}
		return &pb.Result{Error: err.Error()}
	}

	ru1 := collectRusage()
	diffRusage(metrics, ru0, ru1)

	data, typeName := rasterBytes(dstRaster)
	metrics.BytesRead = int64(srcGeom.Width) * int64(srcGeom.Height) * int64(bandCount) * int64(dataTypeSizes[typeName])
	metrics.BytesWritten = int64(len(data))

	return &pb.Result{
		Raster: &pb.Raster{
			Data:        data,
			Width:       int32(dstGeom.Width),
			Height:      int32(dstGeom.Height),
			Bands:       int32(bandCount),
			DataType:    typeName,
			Nodata:      dstNodata,
			NodataValid: dstNodataValid,
		},
		Width:   int32(dstGeom.Width),
		Height:  int32(dstGeom.Height),
		Error:   "OK",
		Metrics: metrics,
	}
}
