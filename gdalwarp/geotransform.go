package gdalwarp

import (
	"fmt"
	"math"
)

// GeoTransform holds the 6 affine coefficients mapping pixel space to
// ground space in GDAL geotransform order:
//   x = gt[0] + col*gt[1] + row*gt[2]
//   y = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

// Affine holds the same mapping in row-major affine order (a, b, c, d, e, f):
//   x = a*col + b*row + c
//   y = d*col + e*row + f
// The two orderings are ambiguous when passed around as bare 6-sequences,
// which historically produced silently wrong geometry. Callers must commit
// to one of the two named types; ParseGeoTransform rejects untagged input.
type Affine [6]float64

func (a Affine) GeoTransform() GeoTransform {
	return GeoTransform{a[2], a[0], a[1], a[5], a[3], a[4]}
}

func (g GeoTransform) Affine() Affine {
	return Affine{g[1], g[2], g[0], g[4], g[5], g[3]}
}

// Apply maps a pixel location to ground coordinates.
func (g GeoTransform) Apply(col, row float64) (float64, float64) {
	return g[0] + col*g[1] + row*g[2], g[3] + col*g[4] + row*g[5]
}

// ParseGeoTransform converts a tagged 6-sequence into a GeoTransform. Valid
// forms are "gdal" and "affine". An empty or unknown form is an error, never
// a guess.
func ParseGeoTransform(form string, vals []float64) (GeoTransform, error) {
	if len(vals) != 6 {
		return GeoTransform{}, fmt.Errorf("geotransform requires 6 coefficients, got %d", len(vals))
	}
	var c [6]float64
	copy(c[:], vals)
	switch form {
	case "gdal":
		return GeoTransform(c), nil
	case "affine":
		return Affine(c).GeoTransform(), nil
	}
	return GeoTransform{}, fmt.Errorf("geotransform form must be 'gdal' or 'affine', got '%s'", form)
}

// identityEps perturbs identity-like transforms before transformer
// composition. An exact identity (or pure y-reflection) makes the underlying
// transformer builder treat the matrix as singular in some code paths.
const identityEps = 1e-25

func (g GeoTransform) isIdentityLike() bool {
	return g[0] == 0 && g[1] == 1 && g[2] == 0 &&
		g[3] == 0 && g[4] == 0 && math.Abs(g[5]) == 1
}

func (g GeoTransform) perturbIdentity() GeoTransform {
	if g.isIdentityLike() {
		g[0] += identityEps
		g[3] += identityEps
	}
	return g
}

// GroundControlPoint maps one pixel location to a known ground coordinate.
// GCPs only participate in transform construction; they are never carried
// into the destination grid geometry.
type GroundControlPoint struct {
	ID   string
	Info string
	Col  float64
	Row  float64
	X    float64
	Y    float64
	Z    float64
}

// GridGeometry pairs raster dimensions with either an affine geotransform or
// a set of ground control points, plus a CRS. Exactly one of Transform and
// GCPs is authoritative.
type GridGeometry struct {
	Width     int
	Height    int
	CRS       string
	Transform *GeoTransform
	GCPs      []GroundControlPoint
}

func (g *GridGeometry) validate(side string) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%s grid has non-positive dimensions %dx%d", side, g.Width, g.Height)
	}
	if g.Transform != nil && len(g.GCPs) > 0 {
		return fmt.Errorf("%s grid has both a geotransform and GCPs; exactly one is allowed", side)
	}
	return nil
}

// effectiveTransform returns the grid's geotransform, defaulting CRS-less
// array data to a perturbed identity.
func (g *GridGeometry) effectiveTransform() GeoTransform {
	if g.Transform == nil {
		return GeoTransform{0, 1, 0, 0, 0, 1}.perturbIdentity()
	}
	return g.Transform.perturbIdentity()
}

// Window bounds a region of a destination grid in pixel coordinates.
type Window struct {
	XOff   int
	YOff   int
	Width  int
	Height int
}

func fullWindow(width, height int) Window {
	return Window{0, 0, width, height}
}

func (w Window) within(width, height int) bool {
	return w.XOff >= 0 && w.YOff >= 0 && w.Width > 0 && w.Height > 0 &&
		w.XOff+w.Width <= width && w.YOff+w.Height <= height
}
