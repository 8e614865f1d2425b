package gdalwarp

// #include <stdlib.h>
// #include "gdal.h"
// #include "gdal_alg.h"
// #include "cpl_conv.h"
// #include "cpl_string.h"
// #include "cpl_vsi.h"
// #cgo pkg-config: gdal
import "C"

import (
	"encoding/xml"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"unsafe"
)

// Proxy grid descriptor. A minimal VRT document carrying dimensions, SRS and
// either a geotransform or a GCP list, built in memory purely to drive
// extent estimation.
type vrtGCP struct {
	ID    string  `xml:"Id,attr"`
	Pixel float64 `xml:"Pixel,attr"`
	Line  float64 `xml:"Line,attr"`
	X     float64 `xml:"X,attr"`
	Y     float64 `xml:"Y,attr"`
	Z     float64 `xml:"Z,attr"`
}

type vrtGCPList struct {
	Projection string   `xml:"Projection,attr"`
	GCPs       []vrtGCP `xml:"GCP"`
}

type vrtRasterBand struct {
	DataType string `xml:"dataType,attr"`
	Band     int    `xml:"band,attr"`
}

type vrtDataset struct {
	XMLName      xml.Name      `xml:"VRTDataset"`
	RasterXSize  int           `xml:"rasterXSize,attr"`
	RasterYSize  int           `xml:"rasterYSize,attr"`
	SRS          string        `xml:"SRS,omitempty"`
	GeoTransform string        `xml:"GeoTransform,omitempty"`
	GCPList      *vrtGCPList   `xml:"GCPList,omitempty"`
	RasterBand   vrtRasterBand `xml:"VRTRasterBand"`
}

var proxySeq uint64

// openProxyGrid serializes the descriptor into /vsimem and opens it. The
// returned path must be unlinked after the dataset is closed.
func openProxyGrid(doc *vrtDataset) (C.GDALDatasetH, string, error) {
	buf, err := xml.Marshal(doc)
	if err != nil {
		return nil, "", &CRSResolutionError{"", fmt.Sprintf("failed to serialize proxy grid: %v", err)}
	}

	path := fmt.Sprintf("/vsimem/proxy_grid_%d.vrt", atomic.AddUint64(&proxySeq, 1))
	pathC := C.CString(path)
	defer C.free(unsafe.Pointer(pathC))

	// The buffer is handed to the VSI layer, which frees it on unlink, so it
	// must come from the CPL allocator.
	dataC := C.CPLMalloc(C.size_t(len(buf)))
	copy((*[1 << 28]byte)(dataC)[:len(buf):len(buf)], buf)
	hFile := C.VSIFileFromMemBuffer(pathC, (*C.GByte)(dataC), C.vsi_l_offset(len(buf)), C.TRUE)
	if hFile == nil {
		C.CPLFree(dataC)
		return nil, "", &CRSResolutionError{"", "failed to create in-memory proxy grid"}
	}
	C.VSIFCloseL(hFile)

	resetError()
	ds := C.GDALOpen(pathC, C.GA_ReadOnly)
	if ds == nil {
		C.VSIUnlink(pathC)
		return nil, "", &CRSResolutionError{"", fmt.Sprintf("failed to open proxy grid: %s", lastError())}
	}
	return ds, path, nil
}

// DefaultTransform estimates the destination geotransform and dimensions for
// reprojecting a source grid into dstCRS such that no source pixel is
// clipped. The source extent comes from bounds (left, bottom, right, top) or
// from ground control points; with neither, the source must already be
// georeferenced through the supplied width and height alone, which yields an
// identity placement.
//
// Source points falling outside the validity region of the destination CRS
// are expected with partial-coverage reprojections; they are logged and the
// estimate proceeds from the points that did transform.
func DefaultTransform(srcCRS, dstCRS string, width, height int, bounds []float64, gcps []GroundControlPoint) (GeoTransform, int, int, error) {
	var zero GeoTransform
	if width <= 0 || height <= 0 {
		return zero, 0, 0, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if len(bounds) > 0 && len(bounds) != 4 {
		return zero, 0, 0, &IncompleteBoundsError{len(bounds)}
	}
	if len(bounds) == 4 && len(gcps) > 0 {
		return zero, 0, 0, &WarpOptionsError{"bounds and ground control points cannot be combined"}
	}

	ensureRegistered()

	srcWKT, err := crsToWKT(srcCRS)
	if err != nil {
		return zero, 0, 0, err
	}
	dstWKT, err := crsToWKT(dstCRS)
	if err != nil {
		return zero, 0, 0, err
	}

	doc := &vrtDataset{
		RasterXSize: width,
		RasterYSize: height,
		RasterBand:  vrtRasterBand{DataType: "Byte", Band: 1},
	}
	if len(gcps) > 0 {
		list := &vrtGCPList{Projection: srcWKT}
		for i, g := range gcps {
			id := g.ID
			if id == "" {
				id = fmt.Sprintf("%d", i+1)
			}
			list.GCPs = append(list.GCPs, vrtGCP{id, g.Col, g.Row, g.X, g.Y, g.Z})
		}
		doc.GCPList = list
	} else {
		gt := boundsTransform(bounds, width, height)
		parts := make([]string, 6)
		for i, v := range gt {
			parts[i] = fmt.Sprintf("%.17g", v)
		}
		doc.SRS = srcWKT
		doc.GeoTransform = strings.Join(parts, ", ")
	}

	ds, path, err := openProxyGrid(doc)
	if err != nil {
		return zero, 0, 0, err
	}
	pathC := C.CString(path)
	defer func() {
		C.GDALClose(ds)
		C.VSIUnlink(pathC)
		C.free(unsafe.Pointer(pathC))
	}()

	var opts **C.char
	opts = cslSet(opts, "DST_SRS", dstWKT)
	if len(gcps) > 0 {
		opts = cslSet(opts, "SRC_METHOD", "GCP_POLYNOMIAL")
	}
	defer C.CSLDestroy(opts)

	resetError()
	hTransform := C.GDALCreateGenImgProjTransformer2(ds, nil, opts)
	if hTransform == nil {
		return zero, 0, 0, &CRSResolutionError{dstCRS, lastError()}
	}
	defer C.GDALDestroyGenImgProjTransformer(hTransform)

	info := (*C.GDALTransformerInfo)(hTransform)
	var gt GeoTransform
	var pixels, lines C.int
	resetError()
	cErr := C.GDALSuggestedWarpOutput(ds, info.pfnTransform, hTransform,
		(*C.double)(&gt[0]), &pixels, &lines)
	if cErr != C.CE_None {
		msg := lastError()
		if !strings.Contains(msg, "Reprojection failed") {
			return zero, 0, 0, &CRSResolutionError{dstCRS, msg}
		}
		log.Printf("warp: some source points fall outside the %s validity region: %s", dstCRS, msg)
	}
	if pixels <= 0 || lines <= 0 {
		return zero, 0, 0, &CRSResolutionError{dstCRS, "suggested output has empty extent"}
	}
	return gt, int(pixels), int(lines), nil
}

// boundsTransform derives the source geotransform from an explicit bounding
// box, or falls back to a perturbed identity for bare array grids.
func boundsTransform(bounds []float64, width, height int) GeoTransform {
	if len(bounds) != 4 {
		return GeoTransform{0, 1, 0, 0, 0, 1}.perturbIdentity()
	}
	left, bottom, right, top := bounds[0], bounds[1], bounds[2], bounds[3]
	return GeoTransform{
		left, (right - left) / float64(width), 0,
		top, 0, (bottom - top) / float64(height),
	}
}
