package gdalwarp

// #include "gdal.h"
// #include "gdal_alg.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

// DefaultTolerance is the error bound, in source pixels, of the linear
// approximation wrapped around the exact composed transform.
const DefaultTolerance = 0.125

// TransformChain is the composed source-pixel to destination-pixel
// transform: source pixel -> source ground -> destination ground ->
// destination pixel. When built with a tolerance > 0, the exact composition
// is owned by an approximating transform that evaluates it sparsely and
// interpolates in between.
type TransformChain struct {
	arg       unsafe.Pointer
	approx    bool
	tolerance float64
	released  bool
	closed    bool
}

func (c *TransformChain) transformer() (C.GDALTransformerFunc, unsafe.Pointer) {
	info := (*C.GDALTransformerInfo)(c.arg)
	return info.pfnTransform, c.arg
}

// transferOwnership marks the underlying transformer as owned elsewhere
// (e.g. by a warped VRT), making Close a no-op.
func (c *TransformChain) transferOwnership() {
	c.released = true
}

// Close releases the native transformer exactly once. When an approximation
// is in place it owns the exact transformer and tears both down together.
func (c *TransformChain) Close() {
	if c.closed || c.released {
		c.closed = true
		return
	}
	c.closed = true
	if c.approx {
		C.GDALDestroyApproxTransformer(c.arg)
	} else {
		C.GDALDestroyGenImgProjTransformer(c.arg)
	}
	c.arg = nil
}

// NewTransformChain composes the pixel-to-pixel transform between two grid
// geometries. Extra engine options are passed through verbatim with
// upper-cased keys; unrecognized keys are tolerated. A tolerance > 0 wraps
// the composition in an approximating transform bounded to that many source
// pixels of error.
func NewTransformChain(src, dst *GridGeometry, extra map[string]string, tolerance float64) (*TransformChain, error) {
	if err := src.validate("source"); err != nil {
		return nil, &TransformCompositionError{err.Error()}
	}
	if err := dst.validate("destination"); err != nil {
		return nil, &TransformCompositionError{err.Error()}
	}
	if len(dst.GCPs) > 0 {
		return nil, &TransformCompositionError{"destination grid cannot be defined by GCPs"}
	}

	ensureRegistered()

	srcDS, err := surrogateDataset(src)
	if err != nil {
		return nil, err
	}
	defer C.GDALClose(srcDS)

	dstDS, err := surrogateDataset(dst)
	if err != nil {
		return nil, err
	}
	defer C.GDALClose(dstDS)

	opts := transformerOptions(src, extra)
	defer C.CSLDestroy(opts)

	resetError()
	hTransform := C.GDALCreateGenImgProjTransformer2(srcDS, dstDS, opts)
	if hTransform == nil {
		return nil, &TransformCompositionError{lastError()}
	}

	chain := &TransformChain{arg: hTransform, tolerance: tolerance}
	if tolerance > 0 {
		info := (*C.GDALTransformerInfo)(hTransform)
		hApprox := C.GDALCreateApproxTransformer(info.pfnTransform, hTransform, C.double(tolerance))
		if hApprox == nil {
			C.GDALDestroyGenImgProjTransformer(hTransform)
			return nil, &TransformCompositionError{"failed to create approximating transformer"}
		}
		// The approximator now owns the exact transformer and destroys it
		// on its own teardown.
		C.GDALApproxTransformerOwnsSubtransformer(hApprox, C.int(1))
		chain.arg = hApprox
		chain.approx = true
	}
	return chain, nil
}

// transformerOptions builds the CSL option list for transformer composition.
// GCP sources require the GCP polynomial method to be selected explicitly.
func transformerOptions(src *GridGeometry, extra map[string]string) **C.char {
	var opts **C.char
	if len(src.GCPs) > 0 {
		opts = cslSet(opts, "SRC_METHOD", "GCP_POLYNOMIAL")
	}
	for k, v := range extra {
		opts = cslSet(opts, strings.ToUpper(k), v)
	}
	return opts
}

func cslSet(list **C.char, key, val string) **C.char {
	kC := C.CString(key)
	vC := C.CString(val)
	out := C.CSLSetNameValue(list, kC, vC)
	C.free(unsafe.Pointer(kC))
	C.free(unsafe.Pointer(vC))
	return out
}

// surrogateDataset materializes a band-less MEM dataset carrying the grid's
// dimensions, CRS and geotransform (or GCPs), purely to drive transformer
// composition. The caller closes it once the transformer is built.
func surrogateDataset(g *GridGeometry) (C.GDALDatasetH, error) {
	memC := C.CString("MEM")
	hDriver := C.GDALGetDriverByName(memC)
	C.free(unsafe.Pointer(memC))
	if hDriver == nil {
		return nil, &TransformCompositionError{"MEM driver not available"}
	}

	emptyC := C.CString("")
	ds := C.GDALCreate(hDriver, emptyC, C.int(g.Width), C.int(g.Height), 0, C.GDT_Unknown, nil)
	C.free(unsafe.Pointer(emptyC))
	if ds == nil {
		return nil, &TransformCompositionError{fmt.Sprintf("failed to create surrogate dataset: %s", lastError())}
	}

	var wkt string
	if g.CRS != "" {
		var err error
		wkt, err = crsToWKT(g.CRS)
		if err != nil {
			C.GDALClose(ds)
			return nil, err
		}
	}

	if len(g.GCPs) > 0 {
		if err := setDatasetGCPs(ds, g.GCPs, wkt); err != nil {
			C.GDALClose(ds)
			return nil, err
		}
		return ds, nil
	}

	gt := g.effectiveTransform()
	C.GDALSetGeoTransform(ds, (*C.double)(&gt[0]))
	if wkt != "" {
		wktC := C.CString(wkt)
		defer C.free(unsafe.Pointer(wktC))
		if C.GDALSetProjection(ds, wktC) != C.CE_None {
			C.GDALClose(ds)
			return nil, &CRSResolutionError{g.CRS, lastError()}
		}
	}
	return ds, nil
}

func setDatasetGCPs(ds C.GDALDatasetH, gcps []GroundControlPoint, wkt string) error {
	cGCPs := make([]C.GDAL_GCP, len(gcps))
	for i, g := range gcps {
		id := g.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		cGCPs[i] = C.GDAL_GCP{
			pszId:      C.CString(id),
			pszInfo:    C.CString(g.Info),
			dfGCPPixel: C.double(g.Col),
			dfGCPLine:  C.double(g.Row),
			dfGCPX:     C.double(g.X),
			dfGCPY:     C.double(g.Y),
			dfGCPZ:     C.double(g.Z),
		}
	}
	defer func() {
		for i := range cGCPs {
			C.free(unsafe.Pointer(cGCPs[i].pszId))
			C.free(unsafe.Pointer(cGCPs[i].pszInfo))
		}
	}()

	wktC := C.CString(wkt)
	defer C.free(unsafe.Pointer(wktC))

	if C.GDALSetGCPs(ds, C.int(len(gcps)), &cGCPs[0], wktC) != C.CE_None {
		return &TransformCompositionError{fmt.Sprintf("failed to attach GCPs: %s", lastError())}
	}
	return nil
}
