package gdalwarp

import (
	"math"
	"testing"
)

func TestDefaultTransformSameCRS(t *testing.T) {
	gt, width, height, err := DefaultTransform("EPSG:4326", "EPSG:4326", 360, 180,
		[]float64{-180, -90, 180, 90}, nil)
	if err != nil {
		t.Errorf("same-CRS estimation failed: %v", err)
		return
	}
	if width != 360 || height != 180 {
		t.Errorf("unexpected dimensions %dx%d, want 360x180", width, height)
		return
	}
	if math.Abs(gt[0]+180) > 1e-6 || math.Abs(gt[1]-1) > 1e-6 ||
		math.Abs(gt[3]-90) > 1e-6 || math.Abs(gt[5]+1) > 1e-6 {
		t.Errorf("unexpected geotransform %v", gt)
		return
	}
}

func TestDefaultTransformBoundsExtent(t *testing.T) {
	bounds := []float64{140, -40, 150, -30}
	gt, width, height, err := DefaultTransform("EPSG:4326", "EPSG:3857", 1000, 1000, bounds, nil)
	if err != nil {
		t.Errorf("estimation to EPSG:3857 failed: %v", err)
		return
	}
	if width <= 0 || height <= 0 {
		t.Errorf("empty output extent %dx%d", width, height)
		return
	}
	// The output grid must cover the reprojected box; in web mercator the
	// test bounds are roughly 15.6e6..16.7e6 east, -4.9e6..-3.5e6 north.
	left, top := gt.Apply(0, 0)
	right, bottom := gt.Apply(float64(width), float64(height))
	if left > 15.6e6 || right < 16.6e6 || top < -3.5e6 || bottom > -4.8e6 {
		t.Errorf("output extent (%v %v %v %v) does not cover the source", left, bottom, right, top)
		return
	}
}

func TestDefaultTransformPartialBounds(t *testing.T) {
	_, _, _, err := DefaultTransform("EPSG:4326", "EPSG:3857", 100, 100, []float64{-180, -90}, nil)
	if _, ok := err.(*IncompleteBoundsError); !ok {
		t.Errorf("expected IncompleteBoundsError, got %v", err)
		return
	}
}

func TestDefaultTransformBoundsWithGCPs(t *testing.T) {
	gcps := []GroundControlPoint{{Col: 0, Row: 0, X: 140, Y: -30}}
	_, _, _, err := DefaultTransform("EPSG:4326", "EPSG:3857", 100, 100,
		[]float64{-180, -90, 180, 90}, gcps)
	if _, ok := err.(*WarpOptionsError); !ok {
		t.Errorf("expected WarpOptionsError for bounds with GCPs, got %v", err)
		return
	}
}

func TestDefaultTransformGCPs(t *testing.T) {
	// A 100x100 grid pinned to a 10x10 degree box by its corners.
	gcps := []GroundControlPoint{
		{Col: 0, Row: 0, X: 140, Y: -30},
		{Col: 100, Row: 0, X: 150, Y: -30},
		{Col: 0, Row: 100, X: 140, Y: -40},
		{Col: 100, Row: 100, X: 150, Y: -40},
	}
	gt, width, height, err := DefaultTransform("EPSG:4326", "EPSG:4326", 100, 100, nil, gcps)
	if err != nil {
		t.Errorf("GCP estimation failed: %v", err)
		return
	}
	if width <= 0 || height <= 0 {
		t.Errorf("empty output extent %dx%d", width, height)
		return
	}
	left, top := gt.Apply(0, 0)
	right, bottom := gt.Apply(float64(width), float64(height))
	if math.Abs(left-140) > 0.5 || math.Abs(right-150) > 0.5 ||
		math.Abs(top+30) > 0.5 || math.Abs(bottom+40) > 0.5 {
		t.Errorf("GCP extent (%v %v %v %v) does not match the control points", left, bottom, right, top)
		return
	}
}
