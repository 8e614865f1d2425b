package gdalwarp

// #include "gdal.h"
// #include "gdalwarper.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
)

// runWarp executes the chunked warp for a destination window. The warp
// options are mutated to point at the datasets and the composed transform;
// the caller still owns all three and releases them after the run. With more
// than one worker the chunk queue is drained by a thread pool, each chunk
// writing a disjoint destination region, so completion order does not affect
// the result. A failure in any chunk aborts the whole run.
func runWarp(chain *TransformChain, wo *warpOptions, srcDS, dstDS C.GDALDatasetH, window Window, workers int) error {
	fn, arg := chain.transformer()
	wo.opts.hSrcDS = srcDS
	wo.opts.hDstDS = dstDS
	wo.opts.pfnTransformer = fn
	wo.opts.pTransformerArg = arg

	resetError()
	hOperation := C.GDALCreateWarpOperation(wo.opts)
	if hOperation == nil {
		return &WarpInitializationError{lastError()}
	}
	defer C.GDALDestroyWarpOperation(hOperation)

	var cErr C.CPLErr
	if workers > 1 {
		cErr = C.GDALChunkAndWarpMulti(hOperation,
			C.int(window.XOff), C.int(window.YOff), C.int(window.Width), C.int(window.Height))
	} else {
		cErr = C.GDALChunkAndWarpImage(hOperation,
			C.int(window.XOff), C.int(window.YOff), C.int(window.Width), C.int(window.Height))
	}
	if cErr != C.CE_None {
		return fmt.Errorf("warp run failed: %s", lastError())
	}
	return nil
}
