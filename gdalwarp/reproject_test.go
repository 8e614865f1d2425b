package gdalwarp

import (
	"testing"
)

func identityGeom(width, height int, crs string) GridGeometry {
	gt := GeoTransform{0, 1, 0, 0, 0, 1}
	return GridGeometry{Width: width, Height: height, CRS: crs, Transform: &gt}
}

func TestReprojectIdentity(t *testing.T) {
	src := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	for i := range src.Data {
		src.Data[i] = 5
	}
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}

	err := Reproject(src, dst, identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if err != nil {
		t.Errorf("identity reprojection failed: %v", err)
		return
	}
	for i, v := range dst.Data {
		if v != 5 {
			t.Errorf("unexpected value %d at %d, want 5: %v", v, i, dst.Data)
			return
		}
	}
}

func TestReprojectNodataFill(t *testing.T) {
	src := &ByteRaster{Data: make([]uint8, 16), Width: 4, Height: 4}
	for i := range src.Data {
		src.Data[i] = 7
	}
	srcGT := GeoTransform{0, 1, 0, 4, 0, -1}
	srcGeom := GridGeometry{Width: 4, Height: 4, CRS: "EPSG:4326", Transform: &srcGT}

	// The destination covers twice the source extent to the west and south;
	// everything the source never maps into must stay at the nodata fill.
	dst := &ByteRaster{Data: make([]uint8, 64), Width: 8, Height: 8, NoData: 0, NoDataValid: true}
	dstGT := GeoTransform{-4, 1, 0, 8, 0, -1}
	dstGeom := GridGeometry{Width: 8, Height: 8, CRS: "EPSG:4326", Transform: &dstGT}

	if err := Reproject(src, dst, srcGeom, dstGeom, WarpConfig{}); err != nil {
		t.Errorf("reprojection failed: %v", err)
		return
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			want := uint8(0)
			if col >= 4 && row < 4 {
				want = 7
			}
			if got := dst.Data[row*8+col]; got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", col, row, got, want)
				return
			}
		}
	}
}

func TestReprojectInitializesDestination(t *testing.T) {
	src := &ByteRaster{Data: []uint8{5, 5, 5, 5}, Width: 2, Height: 2}
	srcGT := GeoTransform{0, 1, 0, 2, 0, -1}
	srcGeom := GridGeometry{Width: 2, Height: 2, CRS: "EPSG:4326", Transform: &srcGT}

	// No nodata anywhere. Stale destination contents must still be cleared;
	// without a configured nodata value the fill is zero.
	dst := &ByteRaster{Data: make([]uint8, 8), Width: 4, Height: 2}
	for i := range dst.Data {
		dst.Data[i] = 9
	}
	dstGT := GeoTransform{0, 1, 0, 2, 0, -1}
	dstGeom := GridGeometry{Width: 4, Height: 2, CRS: "EPSG:4326", Transform: &dstGT}

	if err := Reproject(src, dst, srcGeom, dstGeom, WarpConfig{}); err != nil {
		t.Errorf("reprojection failed: %v", err)
		return
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 4; col++ {
			want := uint8(0)
			if col < 2 {
				want = 5
			}
			if got := dst.Data[row*4+col]; got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", col, row, got, want)
				return
			}
		}
	}
}

func TestReprojectSkipInitDest(t *testing.T) {
	src := &ByteRaster{Data: []uint8{5, 5, 5, 5}, Width: 2, Height: 2}
	srcGT := GeoTransform{0, 1, 0, 2, 0, -1}
	srcGeom := GridGeometry{Width: 2, Height: 2, CRS: "EPSG:4326", Transform: &srcGT}

	dst := &ByteRaster{Data: make([]uint8, 8), Width: 4, Height: 2}
	for i := range dst.Data {
		dst.Data[i] = 9
	}
	dstGT := GeoTransform{0, 1, 0, 2, 0, -1}
	dstGeom := GridGeometry{Width: 4, Height: 2, CRS: "EPSG:4326", Transform: &dstGT}

	if err := Reproject(src, dst, srcGeom, dstGeom, WarpConfig{SkipInitDest: true}); err != nil {
		t.Errorf("reprojection failed: %v", err)
		return
	}
	for row := 0; row < 2; row++ {
		for col := 2; col < 4; col++ {
			if got := dst.Data[row*4+col]; got != 9 {
				t.Errorf("pixel (%d,%d) = %d, want 9 kept outside the source footprint", col, row, got)
				return
			}
		}
	}
}

func TestReprojectEmptyBuffer(t *testing.T) {
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	err := Reproject(&ByteRaster{Width: 3, Height: 3}, dst,
		identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidSourceError); !ok {
		t.Errorf("expected InvalidSourceError for empty source buffer, got %v", err)
		return
	}

	src := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	err = Reproject(src, &Float32Raster{Width: 3, Height: 3},
		identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidDestinationError); !ok {
		t.Errorf("expected InvalidDestinationError for empty destination buffer, got %v", err)
		return
	}
}

func TestReprojectNodataOutOfRange(t *testing.T) {
	nodata := 300.0
	src := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}

	err := Reproject(src, dst, identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"),
		WarpConfig{SrcNodata: &nodata})
	if _, ok := err.(*ValueRangeError); !ok {
		t.Errorf("expected ValueRangeError, got %v", err)
		return
	}
}

func TestReprojectInvalidShapes(t *testing.T) {
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	err := Reproject("not a raster", dst, identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidSourceError); !ok {
		t.Errorf("expected InvalidSourceError, got %v", err)
		return
	}

	src := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	err = Reproject(src, 42, identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidDestinationError); !ok {
		t.Errorf("expected InvalidDestinationError, got %v", err)
		return
	}
}

func TestReprojectDestinationTooFewBands(t *testing.T) {
	src := &ByteRaster{Data: make([]uint8, 18), Width: 3, Height: 3, Bands: 2}
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}

	err := Reproject(src, dst, identityGeom(3, 3, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidDestinationError); !ok {
		t.Errorf("expected InvalidDestinationError, got %v", err)
		return
	}
}

func TestReprojectMismatchedGrid(t *testing.T) {
	src := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}
	dst := &ByteRaster{Data: make([]uint8, 9), Width: 3, Height: 3}

	err := Reproject(src, dst, identityGeom(4, 4, "EPSG:4326"), identityGeom(3, 3, "EPSG:4326"), WarpConfig{})
	if _, ok := err.(*InvalidSourceError); !ok {
		t.Errorf("expected InvalidSourceError for grid mismatch, got %v", err)
		return
	}
}
