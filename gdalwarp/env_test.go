package gdalwarp

import (
	"testing"
)

func TestEnvNesting(t *testing.T) {
	outer := OpenEnv(map[string]string{"GDAL_CACHEMAX": "64"})
	inner := OpenEnv(nil)

	envMu.Lock()
	depth := envDepth
	envMu.Unlock()
	if depth != 2 {
		t.Errorf("nested env depth is %d, want 2", depth)
		return
	}

	inner.Close()
	outer.Close()
	outer.Close()

	envMu.Lock()
	depth = envDepth
	envMu.Unlock()
	if depth != 0 {
		t.Errorf("env depth after close is %d, want 0", depth)
	}
}

func TestEnvScopedWarp(t *testing.T) {
	env := OpenEnv(map[string]string{"GDAL_NUM_THREADS": "1"})
	defer env.Close()

	src := &ByteRaster{Data: []uint8{1, 2, 3, 4}, Width: 2, Height: 2, Bands: 1}
	dst := &ByteRaster{Data: make([]uint8, 4), Width: 2, Height: 2, Bands: 1}
	geom := GridGeometry{
		Width: 2, Height: 2, CRS: "EPSG:4326",
		Transform: &GeoTransform{0, 1, 0, 2, 0, -1},
	}

	if err := Reproject(src, dst, geom, geom, WarpConfig{}); err != nil {
		t.Errorf("warp inside env failed: %v", err)
		return
	}
	for i := range src.Data {
		if dst.Data[i] != src.Data[i] {
			t.Errorf("pixel %d is %d, want %d", i, dst.Data[i], src.Data[i])
			return
		}
	}
}
