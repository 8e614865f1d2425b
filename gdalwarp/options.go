package gdalwarp

// #include "gdal.h"
// #include "gdalwarper.h"
// #include "cpl_conv.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"unsafe"
)

// ResampleAlg names the resampling kernel applied during a warp. The kernel
// mathematics live in the underlying library; this is only a selector.
type ResampleAlg int

const (
	Nearest ResampleAlg = iota
	Bilinear
	Cubic
	CubicSpline
	Lanczos
	Average
	Mode
	Max
	Min
	Med
	Q1
	Q3
	Sum
	RMS
)

var resampleAlgs = map[ResampleAlg]C.GDALResampleAlg{
	Nearest:     C.GRA_NearestNeighbour,
	Bilinear:    C.GRA_Bilinear,
	Cubic:       C.GRA_Cubic,
	CubicSpline: C.GRA_CubicSpline,
	Lanczos:     C.GRA_Lanczos,
	Average:     C.GRA_Average,
	Mode:        C.GRA_Mode,
	Max:         C.GRA_Max,
	Min:         C.GRA_Min,
	Med:         C.GRA_Med,
	Q1:          C.GRA_Q1,
	Q3:          C.GRA_Q3,
	Sum:         C.GRA_Sum,
	RMS:         C.GRA_RMS,
}

func (a ResampleAlg) String() string {
	names := map[ResampleAlg]string{
		Nearest: "near", Bilinear: "bilinear", Cubic: "cubic",
		CubicSpline: "cubicspline", Lanczos: "lanczos", Average: "average",
		Mode: "mode", Max: "max", Min: "min", Med: "med",
		Q1: "q1", Q3: "q3", Sum: "sum", RMS: "rms",
	}
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("ResampleAlg(%d)", int(a))
}

// DefaultMemoryLimitMB bounds the working buffer of a chunked warp when the
// caller does not set one.
const DefaultMemoryLimitMB = 64

// WarpConfig collects the caller-facing knobs of a warp run. The zero value
// is usable: nearest resampling, identity band mapping, unified source nodata,
// destination initialized to nodata, default memory limit and tolerance.
//
// Tolerance is the approximation error bound in source pixels. Zero selects
// DefaultTolerance; a negative value disables the approximating transform
// entirely and evaluates the exact composition for every pixel.
type WarpConfig struct {
	Resampling    ResampleAlg
	SrcNodata     *float64
	DstNodata     *float64
	SrcBands      []int
	DstBands      []int
	SrcAlphaBand  int
	DstAlphaBand  int
	MemoryLimitMB float64
	SkipInitDest  bool
	NumWorkers    int
	Tolerance     float64
	Extra         map[string]string
}

func (c *WarpConfig) tolerance() float64 {
	if c.Tolerance == 0 {
		return DefaultTolerance
	}
	if c.Tolerance < 0 {
		return 0
	}
	return c.Tolerance
}

// bandMapping resolves the source and destination band index arrays against
// the number of bands being warped. Indexes are 1-based.
func (c *WarpConfig) bandMapping(bandCount int) ([]int, []int, error) {
	src, dst := c.SrcBands, c.DstBands
	if src == nil {
		src = make([]int, bandCount)
		for i := range src {
			src[i] = i + 1
		}
	}
	if dst == nil {
		dst = make([]int, bandCount)
		for i := range dst {
			dst[i] = i + 1
		}
	}
	if len(src) != len(dst) {
		return nil, nil, &WarpOptionsError{fmt.Sprintf(
			"source band list has %d entries, destination has %d", len(src), len(dst))}
	}
	for _, b := range src {
		if b < 1 {
			return nil, nil, &WarpOptionsError{fmt.Sprintf("invalid source band index %d", b)}
		}
		if c.SrcAlphaBand > 0 && b == c.SrcAlphaBand {
			return nil, nil, &WarpOptionsError{fmt.Sprintf(
				"source band %d is also the source alpha band", b)}
		}
	}
	for _, b := range dst {
		if b < 1 {
			return nil, nil, &WarpOptionsError{fmt.Sprintf("invalid destination band index %d", b)}
		}
		if c.DstAlphaBand > 0 && b == c.DstAlphaBand {
			return nil, nil, &WarpOptionsError{fmt.Sprintf(
				"destination band %d is also the destination alpha band", b)}
		}
	}
	return src, dst, nil
}

// warpOptions owns a native GDALWarpOptions structure and every array hung
// off it. Destroy releases everything exactly once.
type warpOptions struct {
	opts   *C.GDALWarpOptions
	closed bool
}

func (w *warpOptions) Close() {
	if w.closed {
		return
	}
	w.closed = true
	C.GDALDestroyWarpOptions(w.opts)
	w.opts = nil
}

// buildWarpOptions translates a WarpConfig into native warp options for
// bandCount bands. Band arrays and nodata arrays are allocated with CPLMalloc
// so the native destroy call owns them. Imaginary nodata components are
// always zero.
func buildWarpOptions(cfg *WarpConfig, bandCount int) (*warpOptions, error) {
	alg, ok := resampleAlgs[cfg.Resampling]
	if !ok {
		return nil, &WarpOptionsError{fmt.Sprintf("unknown resampling algorithm %d", int(cfg.Resampling))}
	}
	srcBands, dstBands, err := cfg.bandMapping(bandCount)
	if err != nil {
		return nil, err
	}

	opts := C.GDALCreateWarpOptions()
	opts.eResampleAlg = alg

	limit := cfg.MemoryLimitMB
	if limit <= 0 {
		limit = DefaultMemoryLimitMB
	}
	opts.dfWarpMemoryLimit = C.double(limit * 1024 * 1024)

	opts.papszWarpOptions = cslSet(opts.papszWarpOptions, "UNIFIED_SRC_NODATA", "YES")
	if !cfg.SkipInitDest {
		// Without a destination nodata value the warper initializes to zero.
		opts.papszWarpOptions = cslSet(opts.papszWarpOptions, "INIT_DEST", "NO_DATA")
	}
	if cfg.NumWorkers > 1 {
		opts.papszWarpOptions = cslSet(opts.papszWarpOptions, "NUM_THREADS",
			fmt.Sprintf("%d", cfg.NumWorkers))
	}
	for k, v := range cfg.Extra {
		opts.papszWarpOptions = cslSet(opts.papszWarpOptions, k, v)
	}

	n := len(srcBands)
	opts.nBandCount = C.int(n)
	opts.panSrcBands = (*C.int)(C.CPLMalloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.int(0)))))
	opts.panDstBands = (*C.int)(C.CPLMalloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.int(0)))))
	srcArr := (*[1 << 28]C.int)(unsafe.Pointer(opts.panSrcBands))[:n:n]
	dstArr := (*[1 << 28]C.int)(unsafe.Pointer(opts.panDstBands))[:n:n]
	for i := 0; i < n; i++ {
		srcArr[i] = C.int(srcBands[i])
		dstArr[i] = C.int(dstBands[i])
	}

	if cfg.SrcNodata != nil {
		opts.padfSrcNoDataReal = nodataArray(*cfg.SrcNodata, n)
		opts.padfSrcNoDataImag = nodataArray(0, n)
	}
	if cfg.DstNodata != nil {
		opts.padfDstNoDataReal = nodataArray(*cfg.DstNodata, n)
		opts.padfDstNoDataImag = nodataArray(0, n)
	}

	opts.nSrcAlphaBand = C.int(cfg.SrcAlphaBand)
	opts.nDstAlphaBand = C.int(cfg.DstAlphaBand)

	return &warpOptions{opts: opts}, nil
}

func nodataArray(val float64, n int) *C.double {
	p := (*C.double)(C.CPLMalloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.double(0)))))
	arr := (*[1 << 28]C.double)(unsafe.Pointer(p))[:n:n]
	for i := range arr {
		arr[i] = C.double(val)
	}
	return p
}
