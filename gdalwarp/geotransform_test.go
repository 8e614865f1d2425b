package gdalwarp

import (
	"testing"
)

func TestParseGeoTransform(t *testing.T) {
	vals := []float64{-180, 0.25, 0, 90, 0, -0.25}

	gt, err := ParseGeoTransform("gdal", vals)
	if err != nil {
		t.Errorf("failed to parse gdal form: %v", err)
		return
	}
	if gt[0] != -180 || gt[1] != 0.25 || gt[3] != 90 || gt[5] != -0.25 {
		t.Errorf("unexpected gdal geotransform: %v", gt)
		return
	}

	gt, err = ParseGeoTransform("affine", []float64{0.25, 0, -180, 0, -0.25, 90})
	if err != nil {
		t.Errorf("failed to parse affine form: %v", err)
		return
	}
	if gt[0] != -180 || gt[1] != 0.25 || gt[3] != 90 || gt[5] != -0.25 {
		t.Errorf("unexpected geotransform from affine form: %v", gt)
		return
	}
}

func TestParseGeoTransformRejectsUntagged(t *testing.T) {
	vals := []float64{-180, 0.25, 0, 90, 0, -0.25}
	if _, err := ParseGeoTransform("", vals); err == nil {
		t.Errorf("untagged geotransform was accepted")
		return
	}
	if _, err := ParseGeoTransform("matrix", vals); err == nil {
		t.Errorf("unknown geotransform form was accepted")
		return
	}
	if _, err := ParseGeoTransform("gdal", vals[:5]); err == nil {
		t.Errorf("5-coefficient geotransform was accepted")
		return
	}
}

func TestAffineRoundTrip(t *testing.T) {
	gt := GeoTransform{-180, 0.25, 0, 90, 0, -0.25}
	if back := gt.Affine().GeoTransform(); back != gt {
		t.Errorf("affine round trip changed geotransform: %v != %v", back, gt)
		return
	}
}

func TestPerturbIdentity(t *testing.T) {
	id := GeoTransform{0, 1, 0, 0, 0, 1}
	p := id.perturbIdentity()
	if p == id {
		t.Errorf("identity transform was not perturbed")
		return
	}
	if p[0] != identityEps || p[3] != identityEps {
		t.Errorf("unexpected perturbation: %v", p)
		return
	}

	flipped := GeoTransform{0, 1, 0, 0, 0, -1}
	if flipped.perturbIdentity() == flipped {
		t.Errorf("reflected identity transform was not perturbed")
		return
	}

	gt := GeoTransform{-180, 0.25, 0, 90, 0, -0.25}
	if gt.perturbIdentity() != gt {
		t.Errorf("non-identity transform was perturbed")
		return
	}
}

func TestGridGeometryValidate(t *testing.T) {
	gt := GeoTransform{0, 1, 0, 0, 0, -1}
	g := GridGeometry{Width: 10, Height: 10, Transform: &gt,
		GCPs: []GroundControlPoint{{Col: 0, Row: 0, X: 0, Y: 0}}}
	if err := g.validate("source"); err == nil {
		t.Errorf("grid with both geotransform and GCPs was accepted")
		return
	}
	if err := (&GridGeometry{Width: 0, Height: 10}).validate("source"); err == nil {
		t.Errorf("zero-width grid was accepted")
		return
	}
}

func TestWindowWithin(t *testing.T) {
	if !fullWindow(10, 5).within(10, 5) {
		t.Errorf("full window rejected")
		return
	}
	cases := []Window{
		{-1, 0, 5, 5},
		{0, 0, 11, 5},
		{6, 0, 5, 5},
		{0, 3, 10, 3},
		{0, 0, 0, 5},
	}
	for _, w := range cases {
		if w.within(10, 5) {
			t.Errorf("out-of-range window %+v accepted", w)
			return
		}
	}
}
