package gdalwarp

// #include "gdal.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"math"
	"unsafe"
)

// Raster is an in-memory pixel buffer owned by the caller. Data is band
// sequential: band b, row y, column x lives at Data[b*Width*Height+y*Width+x].
// A 2-D array is represented as Bands == 1. NoData carries the buffer's fill
// value convention; it is only honoured when NoDataValid is set.
type Raster interface {
	GetNoData() (float64, bool)
}

type ByteRaster struct {
	Data          []uint8
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *ByteRaster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type Int16Raster struct {
	Data          []int16
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *Int16Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type UInt16Raster struct {
	Data          []uint16
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *UInt16Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type Int32Raster struct {
	Data          []int32
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *Int32Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type UInt32Raster struct {
	Data          []uint32
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *UInt32Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type Float32Raster struct {
	Data          []float32
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *Float32Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type Float64Raster struct {
	Data          []float64
	Width, Height int
	Bands         int
	NoData        float64
	NoDataValid   bool
}

func (r *Float64Raster) GetNoData() (float64, bool) { return r.NoData, r.NoDataValid }

type rasterShape struct {
	width, height, bands int
	dataType             string
	dataSize             int
	ptr                  unsafe.Pointer
}

// describeRaster validates the raster's shape against its buffer before
// taking the buffer address, so malformed rasters fail with an error rather
// than a panic.
func describeRaster(r Raster) (rasterShape, error) {
	var s rasterShape
	switch t := r.(type) {
	case *ByteRaster:
		s = rasterShape{t.Width, t.Height, t.Bands, "Byte", 1, nil}
	case *Int16Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "Int16", 2, nil}
	case *UInt16Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "UInt16", 2, nil}
	case *Int32Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "Int32", 4, nil}
	case *UInt32Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "UInt32", 4, nil}
	case *Float32Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "Float32", 4, nil}
	case *Float64Raster:
		s = rasterShape{t.Width, t.Height, t.Bands, "Float64", 8, nil}
	default:
		return s, fmt.Errorf("raster type %T not implemented", r)
	}
	if s.bands == 0 {
		s.bands = 1
	}
	if s.width <= 0 || s.height <= 0 {
		return s, fmt.Errorf("raster has non-positive dimensions %dx%d", s.width, s.height)
	}
	if n := rasterLen(r); n != s.width*s.height*s.bands {
		return s, fmt.Errorf("raster data length %d does not match %dx%dx%d", n, s.bands, s.height, s.width)
	}
	s.ptr = rasterPtr(r)
	return s, nil
}

func rasterPtr(r Raster) unsafe.Pointer {
	switch t := r.(type) {
	case *ByteRaster:
		return unsafe.Pointer(&t.Data[0])
	case *Int16Raster:
		return unsafe.Pointer(&t.Data[0])
	case *UInt16Raster:
		return unsafe.Pointer(&t.Data[0])
	case *Int32Raster:
		return unsafe.Pointer(&t.Data[0])
	case *UInt32Raster:
		return unsafe.Pointer(&t.Data[0])
	case *Float32Raster:
		return unsafe.Pointer(&t.Data[0])
	case *Float64Raster:
		return unsafe.Pointer(&t.Data[0])
	}
	return nil
}

func rasterLen(r Raster) int {
	switch t := r.(type) {
	case *ByteRaster:
		return len(t.Data)
	case *Int16Raster:
		return len(t.Data)
	case *UInt16Raster:
		return len(t.Data)
	case *Int32Raster:
		return len(t.Data)
	case *UInt32Raster:
		return len(t.Data)
	case *Float32Raster:
		return len(t.Data)
	case *Float64Raster:
		return len(t.Data)
	}
	return 0
}

var gdalTypes = map[string]C.GDALDataType{
	"Byte": C.GDT_Byte, "Int16": C.GDT_Int16, "UInt16": C.GDT_UInt16,
	"Int32": C.GDT_Int32, "UInt32": C.GDT_UInt32,
	"Float32": C.GDT_Float32, "Float64": C.GDT_Float64,
}

type dtypeRange struct{ min, max float64 }

var dtypeRanges = map[string]dtypeRange{
	"Byte":    {0, math.MaxUint8},
	"Int16":   {math.MinInt16, math.MaxInt16},
	"UInt16":  {0, math.MaxUint16},
	"Int32":   {math.MinInt32, math.MaxInt32},
	"UInt32":  {0, math.MaxUint32},
	"Float32": {-math.MaxFloat32, math.MaxFloat32},
	"Float64": {-math.MaxFloat64, math.MaxFloat64},
}

// checkNodataRange ensures a nodata value is representable in the band data
// type. It runs before any native resource is acquired.
func checkNodataRange(nodata *float64, dataType string) error {
	if nodata == nil {
		return nil
	}
	r, ok := dtypeRanges[dataType]
	if !ok {
		return fmt.Errorf("unknown data type '%s'", dataType)
	}
	v := *nodata
	if math.IsNaN(v) {
		if dataType == "Float32" || dataType == "Float64" {
			return nil
		}
		return &ValueRangeError{v, dataType}
	}
	if v < r.min || v > r.max {
		return &ValueRangeError{v, dataType}
	}
	return nil
}

// openMemDataset wraps a Go pixel buffer in a MEM-driver dataset without
// copying. The buffer must stay reachable for the lifetime of the handle.
func openMemDataset(r Raster, update bool) (C.GDALDatasetH, error) {
	s, err := describeRaster(r)
	if err != nil {
		return nil, err
	}

	bandSize := s.width * s.height * s.dataSize
	memStr := C.CString(fmt.Sprintf(
		"MEM:::DATAPOINTER=%d,PIXELS=%d,LINES=%d,BANDS=%d,DATATYPE=%s,PIXELOFFSET=%d,LINEOFFSET=%d,BANDOFFSET=%d",
		uintptr(s.ptr), s.width, s.height, s.bands, s.dataType,
		s.dataSize, s.width*s.dataSize, bandSize))
	defer C.free(unsafe.Pointer(memStr))

	access := C.GDALAccess(C.GA_ReadOnly)
	if update {
		access = C.GA_Update
	}
	ds := C.GDALOpen(memStr, access)
	if ds == nil {
		return nil, fmt.Errorf("failed to open MEM dataset over %s buffer: %s", s.dataType, lastError())
	}
	return ds, nil
}

// DatasetBands references bands owned by a GDAL-openable dataset. The
// referenced dataset must outlive the operation using it. Band indexes are
// 1-based.
type DatasetBands struct {
	Path  string
	Bands []int
}
