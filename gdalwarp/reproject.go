package gdalwarp

// #include "gdal.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"log"
	"unsafe"
)

// Reproject warps source pixels into the destination through the composed
// transform between the two grid geometries. Source and destination are each
// either an in-memory Raster or a *DatasetBands reference; array destinations
// are written in place. All validation that needs no native resources runs
// first, so early failures leave nothing to clean up.
func Reproject(src, dst interface{}, srcGeom, dstGeom GridGeometry, cfg WarpConfig) error {
	srcRaster, srcRef, err := classifySource(src)
	if err != nil {
		return err
	}
	dstRaster, dstRef, err := classifyDestination(dst)
	if err != nil {
		return err
	}

	var srcShape, dstShape rasterShape
	if srcRaster != nil {
		srcShape, err = describeRaster(srcRaster)
		if err != nil {
			return &InvalidSourceError{err.Error()}
		}
		if srcShape.width != srcGeom.Width || srcShape.height != srcGeom.Height {
			return &InvalidSourceError{fmt.Sprintf(
				"source array is %dx%d but the source grid is %dx%d",
				srcShape.width, srcShape.height, srcGeom.Width, srcGeom.Height)}
		}
	}
	if dstRaster != nil {
		dstShape, err = describeRaster(dstRaster)
		if err != nil {
			return &InvalidDestinationError{err.Error()}
		}
		if dstShape.width != dstGeom.Width || dstShape.height != dstGeom.Height {
			return &InvalidDestinationError{fmt.Sprintf(
				"destination array is %dx%d but the destination grid is %dx%d",
				dstShape.width, dstShape.height, dstGeom.Width, dstGeom.Height)}
		}
	}

	// A masked-array style source carries its fill value convention; adopt it
	// when no explicit source nodata is given. Destination nodata falls back
	// to the source nodata so untouched regions stay distinguishable.
	if cfg.SrcNodata == nil && srcRaster != nil {
		if v, ok := srcRaster.GetNoData(); ok {
			cfg.SrcNodata = &v
		}
	}
	if cfg.DstNodata == nil && dstRaster != nil {
		if v, ok := dstRaster.GetNoData(); ok {
			cfg.DstNodata = &v
		}
	}
	if cfg.DstNodata == nil {
		cfg.DstNodata = cfg.SrcNodata
	}

	if srcRaster != nil {
		if err := checkNodataRange(cfg.SrcNodata, srcShape.dataType); err != nil {
			return err
		}
	}
	if dstRaster != nil {
		if err := checkNodataRange(cfg.DstNodata, dstShape.dataType); err != nil {
			return err
		}
	}

	if srcRef != nil && len(srcRef.Bands) > 0 {
		cfg.SrcBands = srcRef.Bands
	}
	if dstRef != nil && len(dstRef.Bands) > 0 {
		cfg.DstBands = dstRef.Bands
	}

	bandCount := len(cfg.SrcBands)
	if bandCount == 0 && srcRaster != nil {
		bandCount = srcShape.bands
	}

	if srcRaster != nil && maxBand(cfg.SrcBands) > srcShape.bands {
		return &InvalidSourceError{fmt.Sprintf(
			"source band index %d exceeds the %d available bands",
			maxBand(cfg.SrcBands), srcShape.bands)}
	}
	if dstRaster != nil {
		need := bandCount
		if m := maxBand(cfg.DstBands); m > need {
			need = m
		}
		if need > 0 && dstShape.bands < need {
			return &InvalidDestinationError{fmt.Sprintf(
				"destination has %d bands but %d are required", dstShape.bands, need)}
		}
	}

	ensureRegistered()

	srcDS, err := openSide(srcRaster, srcRef, false)
	if err != nil {
		return &InvalidSourceError{err.Error()}
	}
	defer C.GDALClose(srcDS)

	dstDS, err := openSide(dstRaster, dstRef, true)
	if err != nil {
		return &InvalidDestinationError{err.Error()}
	}
	defer C.GDALClose(dstDS)

	if bandCount == 0 {
		bandCount = int(C.GDALGetRasterCount(srcDS))
	}

	if cfg.DstAlphaBand > 0 {
		tagAlphaBand(dstDS, cfg.DstAlphaBand)
	}

	chain, err := NewTransformChain(&srcGeom, &dstGeom, cfg.Extra, cfg.tolerance())
	if err != nil {
		return err
	}
	defer chain.Close()

	wo, err := buildWarpOptions(&cfg, bandCount)
	if err != nil {
		return err
	}
	defer wo.Close()

	return runWarp(chain, wo, srcDS, dstDS, fullWindow(dstGeom.Width, dstGeom.Height), cfg.NumWorkers)
}

func classifySource(src interface{}) (Raster, *DatasetBands, error) {
	switch t := src.(type) {
	case Raster:
		return t, nil, nil
	case *DatasetBands:
		if t.Path == "" {
			return nil, nil, &InvalidSourceError{"source dataset reference has no path"}
		}
		return nil, t, nil
	}
	return nil, nil, &InvalidSourceError{fmt.Sprintf(
		"source must be a raster or a dataset band reference, got %T", src)}
}

func classifyDestination(dst interface{}) (Raster, *DatasetBands, error) {
	switch t := dst.(type) {
	case Raster:
		return t, nil, nil
	case *DatasetBands:
		if t.Path == "" {
			return nil, nil, &InvalidDestinationError{"destination dataset reference has no path"}
		}
		return nil, t, nil
	}
	return nil, nil, &InvalidDestinationError{fmt.Sprintf(
		"destination must be a raster or a dataset band reference, got %T", dst)}
}

func maxBand(bands []int) int {
	m := 0
	for _, b := range bands {
		if b > m {
			m = b
		}
	}
	return m
}

func openSide(r Raster, ref *DatasetBands, update bool) (C.GDALDatasetH, error) {
	if r != nil {
		return openMemDataset(r, update)
	}
	pathC := C.CString(ref.Path)
	defer C.free(unsafe.Pointer(pathC))
	access := C.GDALAccess(C.GA_ReadOnly)
	if update {
		access = C.GA_Update
	}
	ds := C.GDALOpen(pathC, access)
	if ds == nil {
		return nil, fmt.Errorf("failed to open %s: %s", ref.Path, lastError())
	}
	return ds, nil
}

// tagAlphaBand clears nodata metadata on every band of the destination and
// marks the requested band with the alpha interpretation. Nodata and alpha
// are competing masking conventions; leaving both confuses downstream
// readers. Formats that cannot drop nodata only get a warning.
func tagAlphaBand(ds C.GDALDatasetH, alphaBand int) {
	n := int(C.GDALGetRasterCount(ds))
	for i := 1; i <= n; i++ {
		hBand := C.GDALGetRasterBand(ds, C.int(i))
		var hasNodata C.int
		C.GDALGetRasterNoDataValue(hBand, &hasNodata)
		if hasNodata == 0 {
			continue
		}
		if C.GDALDeleteRasterNoDataValue(hBand) != C.CE_None {
			log.Printf("warp: could not clear nodata on destination band %d: %s", i, lastError())
		}
	}
	if alphaBand <= n {
		hBand := C.GDALGetRasterBand(ds, C.int(alphaBand))
		C.GDALSetRasterColorInterpretation(hBand, C.GCI_AlphaBand)
	}
}
