package warpprocess

import (
	"testing"

	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

func TestDecodeResampling(t *testing.T) {
	alg, err := decodeResampling("")
	if err != nil {
		t.Errorf("empty resampling should default: %v", err)
		return
	}
	if alg != gdalwarp.Nearest {
		t.Errorf("empty resampling decoded to %v, want nearest", alg)
	}

	alg, err = decodeResampling("Bilinear")
	if err != nil {
		t.Errorf("resampling names should be case insensitive: %v", err)
		return
	}
	if alg != gdalwarp.Bilinear {
		t.Errorf("'Bilinear' decoded to %v", alg)
	}

	if _, err = decodeResampling("nearest_neighbour"); err == nil {
		t.Errorf("unknown resampling name should fail")
	}
}

func TestDecodeGrid(t *testing.T) {
	if _, err := decodeGrid(nil); err == nil {
		t.Errorf("nil grid should fail")
		return
	}

	grid := &pb.Grid{
		Width:  10,
		Height: 20,
		Crs:    "EPSG:4326",
		Geotransform: &pb.GeoTransform{
			Form:         "gdal",
			Coefficients: []float64{100, 1, 0, 200, 0, -1},
		},
	}
	geom, err := decodeGrid(grid)
	if err != nil {
		t.Errorf("decodeGrid failed: %v", err)
		return
	}
	if geom.Width != 10 || geom.Height != 20 || geom.CRS != "EPSG:4326" {
		t.Errorf("grid fields mangled: %+v", geom)
		return
	}
	x, y := geom.Transform.Apply(0, 0)
	if x != 100 || y != 200 {
		t.Errorf("geotransform origin is (%v, %v), want (100, 200)", x, y)
	}

	grid.Geotransform.Form = ""
	if _, err := decodeGrid(grid); err == nil {
		t.Errorf("untagged geotransform should fail")
	}
}

func TestDecodeGridGCPs(t *testing.T) {
	grid := &pb.Grid{
		Width:  2,
		Height: 2,
		Crs:    "EPSG:4326",
		Gcps: []*pb.GCP{
			{Id: "1", Col: 0, Row: 0, X: 140, Y: -30},
			{Id: "2", Col: 2, Row: 2, X: 142, Y: -32},
		},
	}
	geom, err := decodeGrid(grid)
	if err != nil {
		t.Errorf("decodeGrid failed: %v", err)
		return
	}
	if len(geom.GCPs) != 2 {
		t.Errorf("got %d GCPs, want 2", len(geom.GCPs))
		return
	}
	if geom.GCPs[1].X != 142 || geom.GCPs[1].Row != 2 {
		t.Errorf("GCP fields mangled: %+v", geom.GCPs[1])
	}
}

func TestDecodeExtras(t *testing.T) {
	extras, err := decodeExtras([]string{"source_extra=2", "SAMPLE_STEPS=21"})
	if err != nil {
		t.Errorf("decodeExtras failed: %v", err)
		return
	}
	if extras["SOURCE_EXTRA"] != "2" || extras["SAMPLE_STEPS"] != "21" {
		t.Errorf("extras mangled: %v", extras)
	}

	if _, err := decodeExtras([]string{"no_equals_sign"}); err == nil {
		t.Errorf("malformed extra should fail")
	}

	extras, err = decodeExtras(nil)
	if err != nil || extras != nil {
		t.Errorf("empty extras should decode to nil, got %v, %v", extras, err)
	}
}

func TestRasterRoundTrip(t *testing.T) {
	r, err := makeRaster("Int16", 3, 2, 1, -999, true)
	if err != nil {
		t.Errorf("makeRaster failed: %v", err)
		return
	}
	typed := r.(*gdalwarp.Int16Raster)
	for i := range typed.Data {
		typed.Data[i] = int16(i - 2)
	}

	data, typeName := rasterBytes(r)
	if typeName != "Int16" {
		t.Errorf("rasterBytes type is %s, want Int16", typeName)
		return
	}
	if len(data) != 3*2*2 {
		t.Errorf("rasterBytes length is %d, want 12", len(data))
		return
	}

	decoded, err := DecodeRaster(&pb.Raster{
		Data: data, Width: 3, Height: 2, Bands: 1,
		DataType: "Int16", Nodata: -999, NodataValid: true,
	})
	if err != nil {
		t.Errorf("DecodeRaster failed: %v", err)
		return
	}
	back := decoded.(*gdalwarp.Int16Raster)
	for i := range typed.Data {
		if back.Data[i] != typed.Data[i] {
			t.Errorf("pixel %d is %d, want %d", i, back.Data[i], typed.Data[i])
			return
		}
	}
	nodata, valid := decoded.GetNoData()
	if !valid || nodata != -999 {
		t.Errorf("nodata is (%v, %v), want (-999, true)", nodata, valid)
	}
}

func TestDecodeRasterBadPayload(t *testing.T) {
	_, err := DecodeRaster(&pb.Raster{Data: make([]byte, 7), Width: 2, Height: 2, Bands: 1, DataType: "Float32"})
	if err == nil {
		t.Errorf("short payload should fail")
	}

	_, err = DecodeRaster(&pb.Raster{Data: make([]byte, 4), Width: 2, Height: 2, Bands: 1, DataType: "Complex64"})
	if err == nil {
		t.Errorf("unsupported data type should fail")
	}

	if _, err = DecodeRaster(nil); err == nil {
		t.Errorf("nil raster should fail")
	}
}
