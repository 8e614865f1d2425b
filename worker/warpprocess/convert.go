package warpprocess

import (
	"fmt"
	"reflect"
	"strings"
	"syscall"
	"unsafe"

	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

var resamplingNames = map[string]gdalwarp.ResampleAlg{
	"":            gdalwarp.Nearest,
	"near":        gdalwarp.Nearest,
	"bilinear":    gdalwarp.Bilinear,
	"cubic":       gdalwarp.Cubic,
	"cubicspline": gdalwarp.CubicSpline,
	"lanczos":     gdalwarp.Lanczos,
	"average":     gdalwarp.Average,
	"mode":        gdalwarp.Mode,
	"max":         gdalwarp.Max,
	"min":         gdalwarp.Min,
	"med":         gdalwarp.Med,
	"q1":          gdalwarp.Q1,
	"q3":          gdalwarp.Q3,
	"sum":         gdalwarp.Sum,
	"rms":         gdalwarp.RMS,
}

func decodeResampling(name string) (gdalwarp.ResampleAlg, error) {
	alg, ok := resamplingNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown resampling '%s'", name)
	}
	return alg, nil
}

// decodeGrid maps a wire grid onto a grid geometry. The geotransform comes
// tagged with its coefficient order; untagged forms fail here rather than
// warping with silently wrong geometry.
func decodeGrid(g *pb.Grid) (gdalwarp.GridGeometry, error) {
	var geom gdalwarp.GridGeometry
	if g == nil {
		return geom, fmt.Errorf("missing grid")
	}
	geom.Width = int(g.Width)
	geom.Height = int(g.Height)
	geom.CRS = g.Crs

	if g.Geotransform != nil {
		gt, err := gdalwarp.ParseGeoTransform(g.Geotransform.Form, g.Geotransform.Coefficients)
		if err != nil {
			return geom, err
		}
		geom.Transform = &gt
	}
	for _, p := range g.Gcps {
		geom.GCPs = append(geom.GCPs, gdalwarp.GroundControlPoint{
			ID: p.Id, Info: p.Info, Col: p.Col, Row: p.Row, X: p.X, Y: p.Y, Z: p.Z,
		})
	}
	return geom, nil
}

func decodeExtras(extras []string) (map[string]string, error) {
	if len(extras) == 0 {
		return nil, nil
	}
	out := make(map[string]string)
	for _, kv := range extras {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("warp extra '%s' is not KEY=VALUE", kv)
		}
		out[strings.ToUpper(parts[0])] = parts[1]
	}
	return out, nil
}

var dataTypeSizes = map[string]int{
	"Byte": 1, "Int16": 2, "UInt16": 2, "Int32": 4, "UInt32": 4,
	"Float32": 4, "Float64": 8,
}

// makeRaster allocates a typed pixel buffer for a destination grid.
func makeRaster(dataType string, width, height, bands int, nodata float64, nodataValid bool) (gdalwarp.Raster, error) {
	n := width * height * bands
	switch dataType {
	case "Byte":
		return &gdalwarp.ByteRaster{Data: make([]uint8, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "Int16":
		return &gdalwarp.Int16Raster{Data: make([]int16, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "UInt16":
		return &gdalwarp.UInt16Raster{Data: make([]uint16, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "Int32":
		return &gdalwarp.Int32Raster{Data: make([]int32, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "UInt32":
		return &gdalwarp.UInt32Raster{Data: make([]uint32, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "Float32":
		return &gdalwarp.Float32Raster{Data: make([]float32, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	case "Float64":
		return &gdalwarp.Float64Raster{Data: make([]float64, n), Width: width, Height: height, Bands: bands, NoData: nodata, NoDataValid: nodataValid}, nil
	}
	return nil, fmt.Errorf("unsupported data type '%s'", dataType)
}

// rasterBytes reinterprets a typed pixel buffer as raw bytes without copying.
func rasterBytes(r gdalwarp.Raster) ([]byte, string) {
	switch t := r.(type) {
	case *gdalwarp.ByteRaster:
		return t.Data, "Byte"
	case *gdalwarp.Int16Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 2), "Int16"
	case *gdalwarp.UInt16Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 2), "UInt16"
	case *gdalwarp.Int32Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 4), "Int32"
	case *gdalwarp.UInt32Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 4), "UInt32"
	case *gdalwarp.Float32Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 4), "Float32"
	case *gdalwarp.Float64Raster:
		return castBytes(unsafe.Pointer(&t.Data), len(t.Data), 8), "Float64"
	}
	return nil, ""
}

// DecodeRaster rebuilds a typed pixel buffer from its wire form.
func DecodeRaster(r *pb.Raster) (gdalwarp.Raster, error) {
	if r == nil {
		return nil, fmt.Errorf("missing raster")
	}
	size, ok := dataTypeSizes[r.DataType]
	if !ok {
		return nil, fmt.Errorf("unsupported data type '%s'", r.DataType)
	}
	n := int(r.Width) * int(r.Height) * int(r.Bands)
	if len(r.Data) != n*size {
		return nil, fmt.Errorf("raster payload is %d bytes, want %d", len(r.Data), n*size)
	}
	out, err := makeRaster(r.DataType, int(r.Width), int(r.Height), int(r.Bands), r.Nodata, r.NodataValid)
	if err != nil {
		return nil, err
	}
	buf, _ := rasterBytes(out)
	copy(buf, r.Data)
	return out, nil
}

func castBytes(slicePtr unsafe.Pointer, n, size int) []byte {
	headr := *(*reflect.SliceHeader)(slicePtr)
	headr.Len = n * size
	headr.Cap = n * size
	return *(*[]byte)(unsafe.Pointer(&headr))
}

// collectRusage snapshots self rusage; diffRusage folds the delta into the
// worker metrics as microseconds of user and system CPU time.
func collectRusage() syscall.Rusage {
	var ru syscall.Rusage
	syscall.Getrusage(syscall.RUSAGE_SELF, &ru)
	return ru
}

func diffRusage(m *pb.WorkerMetrics, before, after syscall.Rusage) {
	m.UserTime = (after.Utime.Sec*1000000 + int64(after.Utime.Usec)) -
		(before.Utime.Sec*1000000 + int64(before.Utime.Usec))
	m.SysTime = (after.Stime.Sec*1000000 + int64(after.Stime.Usec)) -
		(before.Stime.Sec*1000000 + int64(before.Stime.Usec))
}
