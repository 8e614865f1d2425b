package gdalwarp

// #include "gdal.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"strings"
	"unsafe"
)

// SaveRaster materializes an in-memory raster as a georeferenced dataset on
// disk. Supported formats are "geotiff" and "netcdf". All bands share the
// raster's nodata convention.
func SaveRaster(path, format string, r Raster, gt GeoTransform, crs string) error {
	var driverName string
	switch strings.ToLower(format) {
	case "", "geotiff":
		driverName = "GTiff"
	case "netcdf":
		driverName = "netCDF"
	default:
		return fmt.Errorf("Unsupported encoding format: %v", format)
	}

	shape, err := describeRaster(r)
	if err != nil {
		return err
	}

	ensureRegistered()

	driverNameC := C.CString(driverName)
	hDriver := C.GDALGetDriverByName(driverNameC)
	C.free(unsafe.Pointer(driverNameC))
	if hDriver == nil {
		return fmt.Errorf("driver %s not available", driverName)
	}

	pathC := C.CString(path)
	defer C.free(unsafe.Pointer(pathC))
	hDstDS := C.GDALCreate(hDriver, pathC, C.int(shape.width), C.int(shape.height),
		C.int(shape.bands), gdalTypes[shape.dataType], nil)
	if hDstDS == nil {
		return fmt.Errorf("Error creating raster %s: %s", path, lastError())
	}
	defer C.GDALClose(hDstDS)

	C.GDALSetGeoTransform(hDstDS, (*C.double)(&gt[0]))
	if crs != "" {
		wkt, err := crsToWKT(crs)
		if err != nil {
			return err
		}
		wktC := C.CString(wkt)
		C.GDALSetProjection(hDstDS, wktC)
		C.free(unsafe.Pointer(wktC))
	}

	nodata, nodataValid := r.GetNoData()
	bandSize := shape.width * shape.height * shape.dataSize
	for i := 0; i < shape.bands; i++ {
		hBand := C.GDALGetRasterBand(hDstDS, C.int(i+1))
		if nodataValid {
			C.GDALSetRasterNoDataValue(hBand, C.double(nodata))
		}
		ptr := unsafe.Pointer(uintptr(shape.ptr) + uintptr(i*bandSize))
		gerr := C.GDALRasterIO(hBand, C.GF_Write, 0, 0, C.int(shape.width), C.int(shape.height),
			ptr, C.int(shape.width), C.int(shape.height), gdalTypes[shape.dataType], 0, 0)
		if gerr != C.CE_None {
			return fmt.Errorf("Error writing raster band: %d", i+1)
		}
	}
	return nil
}
