package gdalwarp

// #include "gdal.h"
// #include "gdalwarper.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"log"
	"unsafe"
)

type vrtState int

const (
	vrtUnstarted vrtState = iota
	vrtStarted
	vrtStopped
)

// WarpedVRT presents a reprojected view of a backing dataset without
// materializing it. Pixels are warped on demand as regions are read. The
// lifecycle is Start, any number of reads, Stop; a stopped instance cannot
// be restarted.
//
// DstWidth and DstHeight are deprecated aliases for Width and Height; when
// both names are set the primary wins.
//
// SrcNodata left unset inherits the backing dataset's nodata value, and
// Nodata left unset inherits SrcNodata; Start resolves both in place.
type WarpedVRT struct {
	Source       string
	SrcCRS       string
	DstCRS       string
	SrcTransform *GeoTransform
	DstTransform *GeoTransform
	Width        int
	Height       int
	DstWidth     int
	DstHeight    int
	SrcNodata    *float64
	Nodata       *float64
	Resampling   ResampleAlg
	Tolerance    float64
	AddAlpha     bool
	WarpExtras   map[string]string

	state     vrtState
	srcDS     C.GDALDatasetH
	hVRT      C.GDALDatasetH
	dstGeom   GridGeometry
	bandCount int
}

// resolveAliases folds the deprecated dimension names into the primary
// fields. A conflicting pair is resolved in favor of the primary.
func (v *WarpedVRT) resolveAliases() {
	if v.DstWidth > 0 {
		if v.Width > 0 && v.Width != v.DstWidth {
			log.Printf("warp: both Width=%d and deprecated DstWidth=%d set; using Width", v.Width, v.DstWidth)
		} else if v.Width == 0 {
			v.Width = v.DstWidth
		}
	}
	if v.DstHeight > 0 {
		if v.Height > 0 && v.Height != v.DstHeight {
			log.Printf("warp: both Height=%d and deprecated DstHeight=%d set; using Height", v.Height, v.DstHeight)
		} else if v.Height == 0 {
			v.Height = v.DstHeight
		}
	}
}

// Start opens the backing dataset, composes the transform chain, sizes the
// destination grid if the caller did not, and materializes the native warped
// view. It is the only transition into the started state.
func (v *WarpedVRT) Start() error {
	switch v.state {
	case vrtStarted:
		return fmt.Errorf("warped VRT is already started")
	case vrtStopped:
		return fmt.Errorf("warped VRT cannot be restarted after Stop")
	}
	if v.Source == "" {
		return &InvalidSourceError{"warped VRT has no source dataset"}
	}
	if v.DstCRS == "" {
		return &CRSResolutionError{"", "warped VRT requires a destination CRS"}
	}
	v.resolveAliases()
	if (v.DstTransform != nil) != (v.Width > 0 && v.Height > 0) {
		return &WarpOptionsError{"destination transform and dimensions must be supplied together"}
	}

	ensureRegistered()

	pathC := C.CString(v.Source)
	srcDS := C.GDALOpen(pathC, C.GA_ReadOnly)
	C.free(unsafe.Pointer(pathC))
	if srcDS == nil {
		return &InvalidSourceError{fmt.Sprintf("failed to open %s: %s", v.Source, lastError())}
	}

	err := v.initialize(srcDS)
	if err != nil {
		C.GDALClose(srcDS)
		return err
	}
	v.srcDS = srcDS
	v.state = vrtStarted
	return nil
}

func (v *WarpedVRT) initialize(srcDS C.GDALDatasetH) error {
	srcGeom, srcGCPs, err := v.sourceGeometry(srcDS)
	if err != nil {
		return err
	}

	bandCount := int(C.GDALGetRasterCount(srcDS))
	if v.AddAlpha {
		for i := 1; i <= bandCount; i++ {
			hBand := C.GDALGetRasterBand(srcDS, C.int(i))
			if C.GDALGetRasterColorInterpretation(hBand) == C.GCI_AlphaBand {
				return &WarpOptionsError{fmt.Sprintf(
					"source band %d is already an alpha band; adding a second one is ambiguous", i)}
			}
		}
	}

	dstTransform := v.DstTransform
	width, height := v.Width, v.Height
	if dstTransform == nil {
		var bounds []float64
		if len(srcGCPs) == 0 {
			gt := srcGeom.effectiveTransform()
			bounds = cornerBounds(gt, srcGeom.Width, srcGeom.Height)
		}
		gt, w, h, err := DefaultTransform(srcGeom.CRS, v.DstCRS, srcGeom.Width, srcGeom.Height, bounds, srcGCPs)
		if err != nil {
			return err
		}
		dstTransform, width, height = &gt, w, h
	}
	v.dstGeom = GridGeometry{Width: width, Height: height, CRS: v.DstCRS, Transform: dstTransform}

	// Nodata cascades like a masked source: unset source nodata adopts the
	// dataset's own, unset destination nodata adopts the source's.
	srcNodata := v.SrcNodata
	if srcNodata == nil && bandCount > 0 {
		hBand := C.GDALGetRasterBand(srcDS, 1)
		var hasNodata C.int
		val := float64(C.GDALGetRasterNoDataValue(hBand, &hasNodata))
		if hasNodata != 0 {
			srcNodata = &val
		}
	}
	dstNodata := v.Nodata
	if dstNodata == nil {
		dstNodata = srcNodata
	}
	v.SrcNodata = srcNodata
	v.Nodata = dstNodata

	cfg := WarpConfig{
		Resampling: v.Resampling,
		SrcNodata:  srcNodata,
		DstNodata:  dstNodata,
		Tolerance:  v.Tolerance,
		Extra:      v.WarpExtras,
	}
	if v.AddAlpha {
		cfg.DstAlphaBand = bandCount + 1
	}

	chain, err := NewTransformChain(&srcGeom, &v.dstGeom, v.WarpExtras, cfg.tolerance())
	if err != nil {
		return err
	}

	wo, err := buildWarpOptions(&cfg, bandCount)
	if err != nil {
		chain.Close()
		return err
	}
	defer wo.Close()

	fn, arg := chain.transformer()
	wo.opts.hSrcDS = srcDS
	wo.opts.pfnTransformer = fn
	wo.opts.pTransformerArg = arg

	gt := *dstTransform
	resetError()
	hVRT := C.GDALCreateWarpedVRT(srcDS, C.int(width), C.int(height), (*C.double)(&gt[0]), wo.opts)
	if hVRT == nil {
		chain.Close()
		return &WarpInitializationError{lastError()}
	}
	// The warped view now owns the transformer and destroys it on Stop.
	chain.transferOwnership()

	if wkt, err := crsToWKT(v.dstGeom.CRS); err == nil {
		outWKT := C.CString(wkt)
		C.GDALSetProjection(hVRT, outWKT)
		C.free(unsafe.Pointer(outWKT))
	} else {
		log.Printf("warp: could not re-export destination CRS %s to WKT: %v", v.dstGeom.CRS, err)
	}

	v.hVRT = hVRT
	v.bandCount = int(C.GDALGetRasterCount(hVRT))
	return nil
}

// sourceGeometry resolves the source grid from explicit overrides, falling
// back to the dataset's own georeferencing, including its GCPs when no
// geotransform is available.
func (v *WarpedVRT) sourceGeometry(srcDS C.GDALDatasetH) (GridGeometry, []GroundControlPoint, error) {
	geom := GridGeometry{
		Width:  int(C.GDALGetRasterXSize(srcDS)),
		Height: int(C.GDALGetRasterYSize(srcDS)),
		CRS:    v.SrcCRS,
	}

	if v.SrcTransform != nil {
		geom.Transform = v.SrcTransform
	} else {
		var gt GeoTransform
		if C.GDALGetGeoTransform(srcDS, (*C.double)(&gt[0])) == C.CE_None {
			geom.Transform = &gt
		}
	}

	var gcps []GroundControlPoint
	if geom.Transform == nil && C.GDALGetGCPCount(srcDS) > 0 {
		n := int(C.GDALGetGCPCount(srcDS))
		cGCPs := (*[1 << 24]C.GDAL_GCP)(unsafe.Pointer(C.GDALGetGCPs(srcDS)))[:n:n]
		for _, g := range cGCPs {
			gcps = append(gcps, GroundControlPoint{
				ID:   C.GoString(g.pszId),
				Info: C.GoString(g.pszInfo),
				Col:  float64(g.dfGCPPixel),
				Row:  float64(g.dfGCPLine),
				X:    float64(g.dfGCPX),
				Y:    float64(g.dfGCPY),
				Z:    float64(g.dfGCPZ),
			})
		}
		geom.GCPs = gcps
		if geom.CRS == "" {
			geom.CRS = C.GoString(C.GDALGetGCPProjection(srcDS))
		}
	}

	if geom.CRS == "" {
		geom.CRS = C.GoString(C.GDALGetProjectionRef(srcDS))
	}
	if geom.CRS == "" && len(gcps) == 0 && geom.Transform == nil {
		return geom, nil, &TransformCompositionError{fmt.Sprintf(
			"%s carries no georeferencing and none was supplied", v.Source)}
	}
	return geom, gcps, nil
}

// Transform returns the destination geotransform. Valid after Start.
func (v *WarpedVRT) Transform() GeoTransform {
	if v.dstGeom.Transform == nil {
		return GeoTransform{}
	}
	return *v.dstGeom.Transform
}

// Bounds returns (width, height) of the warped view. Valid after Start.
func (v *WarpedVRT) Bounds() (int, int) {
	return v.dstGeom.Width, v.dstGeom.Height
}

// Read warps the windowed region into the caller's raster. The window must
// lie fully inside the warped extent; out-of-range windows fail rather than
// clip, because the warped view already defines its whole valid extent. The
// raster's dimensions must equal the window's.
func (v *WarpedVRT) Read(r Raster, window Window, bands []int) error {
	shape, bandMap, err := v.checkRead(r, window, bands)
	if err != nil {
		return err
	}
	cErr := C.GDALDatasetRasterIO(v.hVRT, C.GF_Read,
		C.int(window.XOff), C.int(window.YOff), C.int(window.Width), C.int(window.Height),
		shape.ptr, C.int(window.Width), C.int(window.Height), gdalTypes[shape.dataType],
		C.int(len(bandMap)), &bandMap[0], 0, 0, 0)
	if cErr != C.CE_None {
		return &WindowError{fmt.Sprintf("read failed: %s", lastError())}
	}
	return nil
}

// ReadMasks reads the per-band validity masks of the windowed region. Mask
// samples are 0 for nodata/transparent and 255 for valid, one mask plane per
// requested band.
func (v *WarpedVRT) ReadMasks(r *ByteRaster, window Window, bands []int) error {
	shape, bandMap, err := v.checkRead(r, window, bands)
	if err != nil {
		return err
	}
	planeSize := uintptr(window.Width * window.Height)
	for i, b := range bandMap {
		hBand := C.GDALGetRasterBand(v.hVRT, b)
		hMask := C.GDALGetMaskBand(hBand)
		ptr := unsafe.Pointer(uintptr(shape.ptr) + uintptr(i)*planeSize)
		cErr := C.GDALRasterIO(hMask, C.GF_Read,
			C.int(window.XOff), C.int(window.YOff), C.int(window.Width), C.int(window.Height),
			ptr, C.int(window.Width), C.int(window.Height), C.GDT_Byte, 0, 0)
		if cErr != C.CE_None {
			return &WindowError{fmt.Sprintf("mask read failed on band %d: %s", int(b), lastError())}
		}
	}
	return nil
}

func (v *WarpedVRT) checkRead(r Raster, window Window, bands []int) (rasterShape, []C.int, error) {
	var none rasterShape
	if v.state != vrtStarted {
		return none, nil, fmt.Errorf("warped VRT is not started")
	}
	if !window.within(v.dstGeom.Width, v.dstGeom.Height) {
		return none, nil, &WindowError{fmt.Sprintf(
			"window %+v exceeds the %dx%d warped extent; boundless reads are not supported",
			window, v.dstGeom.Width, v.dstGeom.Height)}
	}
	if len(bands) == 0 {
		bands = make([]int, v.bandCount)
		for i := range bands {
			bands[i] = i + 1
		}
	}
	for _, b := range bands {
		if b < 1 || b > v.bandCount {
			return none, nil, &WindowError{fmt.Sprintf(
				"band %d out of range, warped view has %d bands", b, v.bandCount)}
		}
	}
	shape, err := describeRaster(r)
	if err != nil {
		return none, nil, &InvalidDestinationError{err.Error()}
	}
	if shape.width != window.Width || shape.height != window.Height || shape.bands != len(bands) {
		return none, nil, &InvalidDestinationError{fmt.Sprintf(
			"buffer is %dx%dx%d but the read is %dx%dx%d",
			shape.bands, shape.height, shape.width, len(bands), window.Height, window.Width)}
	}
	bandMap := make([]C.int, len(bands))
	for i, b := range bands {
		bandMap[i] = C.int(b)
	}
	return shape, bandMap, nil
}

// Stop releases the native warped view and the backing dataset. Stopping an
// unstarted instance is a no-op; stopping twice is a no-op. The stopped
// state is terminal.
func (v *WarpedVRT) Stop() {
	if v.state != vrtStarted {
		return
	}
	C.GDALClose(v.hVRT)
	v.hVRT = nil
	C.GDALClose(v.srcDS)
	v.srcDS = nil
	v.state = vrtStopped
}

// cornerBounds maps the four grid corners through the geotransform and
// returns the axis-aligned (left, bottom, right, top) box covering them.
func cornerBounds(gt GeoTransform, width, height int) []float64 {
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [][2]float64{{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)}} {
		x, y := gt.Apply(c[0], c[1])
		xs = append(xs, x)
		ys = append(ys, y)
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	return []float64{minX, minY, maxX, maxY}
}
