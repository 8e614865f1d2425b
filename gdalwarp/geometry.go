package gdalwarp

// #include "ogr_api.h"
// #include "ogr_srs_api.h"
// #include "cpl_conv.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"encoding/json"
	"fmt"
	"math"
	"unsafe"

	geo "github.com/nci/geometry"
)

// DefaultAntimeridianOffset is the longitude margin, in degrees, around the
// 180 meridian inside which geometry segments are cut when antimeridian
// handling is on.
const DefaultAntimeridianOffset = 10.0

// ReprojectGeometry transforms the coordinates of a GeoJSON geometry from
// srcCRS to dstCRS. Raster grids are not involved; only coordinates move.
// With cutAntimeridian, geometries crossing the 180 meridian are split so no
// segment spans the discontinuity, using antimeridianOffset degrees of
// margin (0 selects DefaultAntimeridianOffset). A precision >= 0 rounds
// every output coordinate to that many decimal digits; coordinates nested
// inside GeometryCollection members are currently left unrounded.
func ReprojectGeometry(srcCRS, dstCRS string, geom geo.Geometry, cutAntimeridian bool, antimeridianOffset float64, precision int) (geo.Geometry, error) {
	var out geo.Geometry

	gjson, err := json.Marshal(geom)
	if err != nil {
		return out, fmt.Errorf("failed to serialize geometry: %v", err)
	}

	ensureRegistered()

	gjsonC := C.CString(string(gjson))
	hGeom := C.OGR_G_CreateGeometryFromJson(gjsonC)
	C.free(unsafe.Pointer(gjsonC))
	if hGeom == nil {
		return out, fmt.Errorf("geometry %s could not be parsed", gjson)
	}
	defer C.OGR_G_DestroyGeometry(hGeom)

	hSrcSRS, err := newSpatialRef(srcCRS)
	if err != nil {
		return out, err
	}
	defer C.OSRDestroySpatialReference(hSrcSRS)

	hDstSRS, err := newSpatialRef(dstCRS)
	if err != nil {
		return out, err
	}
	defer C.OSRDestroySpatialReference(hDstSRS)

	resetError()
	hCT := C.OCTNewCoordinateTransformation(hSrcSRS, hDstSRS)
	if hCT == nil {
		return out, &TransformCompositionError{fmt.Sprintf(
			"no coordinate transformation from %s to %s: %s", srcCRS, dstCRS, lastError())}
	}
	defer C.OCTDestroyCoordinateTransformation(hCT)

	var opts **C.char
	if cutAntimeridian {
		offset := antimeridianOffset
		if offset == 0 {
			offset = DefaultAntimeridianOffset
		}
		opts = cslSet(opts, "WRAPDATELINE", "YES")
		opts = cslSet(opts, "DATELINEOFFSET", fmt.Sprintf("%g", offset))
	}
	hTransformer := C.OGR_GeomTransformer_Create(hCT, opts)
	C.CSLDestroy(opts)
	if hTransformer == nil {
		return out, &TransformCompositionError{"failed to create geometry transformer"}
	}
	defer C.OGR_GeomTransformer_Destroy(hTransformer)

	resetError()
	hOut := C.OGR_GeomTransformer_Transform(hTransformer, hGeom)
	if hOut == nil {
		return out, &TransformCompositionError{fmt.Sprintf("geometry transformation failed: %s", lastError())}
	}
	defer C.OGR_G_DestroyGeometry(hOut)

	outC := C.OGR_G_ExportToJson(hOut)
	if outC == nil {
		return out, fmt.Errorf("failed to export transformed geometry")
	}
	outJSON := C.GoString(outC)
	C.CPLFree(unsafe.Pointer(outC))

	if precision >= 0 {
		outJSON, err = roundGeoJSON(outJSON, precision)
		if err != nil {
			return out, err
		}
	}

	if err := json.Unmarshal([]byte(outJSON), &out); err != nil {
		return out, fmt.Errorf("failed to decode transformed geometry: %v", err)
	}
	return out, nil
}

// roundGeoJSON rounds every number under the "coordinates" key to the given
// number of decimal digits. GeometryCollection nests its members under
// "geometries" instead, which is not walked. TODO: descend into
// GeometryCollection members once a caller needs rounded collections.
func roundGeoJSON(gjson string, precision int) (string, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(gjson), &doc); err != nil {
		return "", fmt.Errorf("failed to decode geometry for rounding: %v", err)
	}
	if coords, ok := doc["coordinates"]; ok {
		doc["coordinates"] = roundCoords(coords, precision)
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode rounded geometry: %v", err)
	}
	return string(buf), nil
}

func roundCoords(v interface{}, precision int) interface{} {
	switch t := v.(type) {
	case float64:
		scale := math.Pow(10, float64(precision))
		return math.Round(t*scale) / scale
	case []interface{}:
		for i := range t {
			t[i] = roundCoords(t[i], precision)
		}
		return t
	}
	return v
}
