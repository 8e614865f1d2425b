package warpprocess

// #include "gdal.h"
// #cgo pkg-config: gdal
import "C"

import (
	"encoding/json"
	"fmt"
	"unsafe"

	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

type DatasetInfo struct {
	Path         string     `json:"path"`
	Driver       string     `json:"driver"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Bands        int        `json:"bands"`
	DataType     string     `json:"data_type"`
	Projection   string     `json:"projection"`
	GeoTransform []float64  `json:"geotransform,omitempty"`
	NoData       *float64   `json:"nodata,omitempty"`
	GCPCount     int        `json:"gcp_count"`
}

var gdalTypeNames = map[C.GDALDataType]string{
	C.GDT_Byte: "Byte", C.GDT_Int16: "Int16", C.GDT_UInt16: "UInt16",
	C.GDT_Int32: "Int32", C.GDT_UInt32: "UInt32",
	C.GDT_Float32: "Float32", C.GDT_Float64: "Float64",
}

// describeDataset opens a granule and extracts the metadata the pool-side
// services need: dimensions, band type, georeferencing, nodata.
func describeDataset(path string) (*DatasetInfo, error) {
	pathC := C.CString(path)
	defer C.free(unsafe.Pointer(pathC))

	ds := C.GDALOpenEx(pathC, C.GDAL_OF_READONLY|C.GDAL_OF_VERBOSE_ERROR, nil, nil, nil)
	if ds == nil {
		return nil, fmt.Errorf("failed to open existing dataset: %v", path)
	}
	defer C.GDALClose(ds)

	info := &DatasetInfo{
		Path:       path,
		Driver:     C.GoString(C.GDALGetDriverShortName(C.GDALGetDatasetDriver(ds))),
		Width:      int(C.GDALGetRasterXSize(ds)),
		Height:     int(C.GDALGetRasterYSize(ds)),
		Bands:      int(C.GDALGetRasterCount(ds)),
		Projection: C.GoString(C.GDALGetProjectionRef(ds)),
		GCPCount:   int(C.GDALGetGCPCount(ds)),
	}

	var gt [6]C.double
	if C.GDALGetGeoTransform(ds, &gt[0]) == C.CE_None {
		info.GeoTransform = make([]float64, 6)
		for i, v := range gt {
			info.GeoTransform[i] = float64(v)
		}
	}

	if info.Bands > 0 {
		hBand := C.GDALGetRasterBand(ds, 1)
		if name, ok := gdalTypeNames[C.GDALGetRasterDataType(hBand)]; ok {
			info.DataType = name
		}
		var hasNodata C.int
		nodata := float64(C.GDALGetRasterNoDataValue(hBand, &hasNodata))
		if hasNodata != 0 {
			info.NoData = &nodata
		}
	}
	return info, nil
}

// datasetGrid resolves a granule's own grid geometry for requests that do
// not carry an explicit source grid.
func datasetGrid(path string) (gdalwarp.GridGeometry, *DatasetInfo, error) {
	var geom gdalwarp.GridGeometry
	info, err := describeDataset(path)
	if err != nil {
		return geom, nil, err
	}
	geom.Width = info.Width
	geom.Height = info.Height
	geom.CRS = info.Projection
	if info.GeoTransform != nil {
		gt, err := gdalwarp.ParseGeoTransform("gdal", info.GeoTransform)
		if err != nil {
			return geom, nil, err
		}
		geom.Transform = &gt
	}
	return geom, info, nil
}

func ExtractInfo(in *pb.Granule) *pb.Result {
	info, err := describeDataset(in.Path)
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}
	buf, err := json.Marshal(info)
	if err != nil {
		return &pb.Result{Error: fmt.Sprintf("failed to encode dataset info: %v", err)}
	}
	return &pb.Result{Info: string(buf), Error: "OK"}
}
