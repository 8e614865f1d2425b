package gdalwarp

// #include "ogr_srs_api.h"
// #include "cpl_conv.h"
// #cgo pkg-config: gdal
import "C"

import (
	"unsafe"
)

// newSpatialRef resolves an opaque CRS value ("EPSG:nnnn", WKT, PROJ4) to an
// OSR handle with traditional GIS axis order. The caller owns the handle.
func newSpatialRef(crs string) (C.OGRSpatialReferenceH, error) {
	hSRS := C.OSRNewSpatialReference(nil)
	crsC := C.CString(crs)
	defer C.free(unsafe.Pointer(crsC))

	if C.OSRSetFromUserInput(hSRS, crsC) != C.OGRERR_NONE {
		C.OSRDestroySpatialReference(hSRS)
		return nil, &CRSResolutionError{crs, lastError()}
	}
	C.OSRSetAxisMappingStrategy(hSRS, C.OAMS_TRADITIONAL_GIS_ORDER)
	return hSRS, nil
}

// crsToWKT exports a CRS value to its WKT representation.
func crsToWKT(crs string) (string, error) {
	hSRS, err := newSpatialRef(crs)
	if err != nil {
		return "", err
	}
	defer C.OSRDestroySpatialReference(hSRS)

	var wktC *C.char
	if C.OSRExportToWkt(hSRS, &wktC) != C.OGRERR_NONE {
		return "", &CRSResolutionError{crs, lastError()}
	}
	defer C.CPLFree(unsafe.Pointer(wktC))

	wkt := C.GoString(wktC)
	if wkt == "" {
		return "", &CRSResolutionError{crs, "empty WKT export"}
	}
	return wkt, nil
}
