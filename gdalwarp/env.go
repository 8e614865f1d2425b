package gdalwarp

// #include "gdal.h"
// #include "cpl_conv.h"
// #include "cpl_error.h"
// #cgo pkg-config: gdal
import "C"

import (
	"sync"
	"unsafe"
)

// Env scopes process-wide GDAL state: driver registration and per-scope
// configuration options. Envs may nest; only the outermost performs actual
// registration, and its Close releases the configuration it set. Driver
// registration itself is idempotent in GDAL and is never undone.
type Env struct {
	options map[string]string
	closed  bool
}

var (
	envMu    sync.Mutex
	envDepth int
)

// OpenEnv acquires a GDAL environment scope. The options mapping is applied
// with CPLSetThreadLocalConfigOption and reverted on Close.
func OpenEnv(options map[string]string) *Env {
	envMu.Lock()
	if envDepth == 0 {
		C.GDALAllRegister()
	}
	envDepth++
	envMu.Unlock()

	for k, v := range options {
		kC := C.CString(k)
		vC := C.CString(v)
		C.CPLSetThreadLocalConfigOption(kC, vC)
		C.free(unsafe.Pointer(kC))
		C.free(unsafe.Pointer(vC))
	}
	return &Env{options: options}
}

// Close releases the environment scope. Closing twice is a no-op.
func (e *Env) Close() {
	if e.closed {
		return
	}
	e.closed = true

	for k := range e.options {
		kC := C.CString(k)
		C.CPLSetThreadLocalConfigOption(kC, nil)
		C.free(unsafe.Pointer(kC))
	}

	envMu.Lock()
	if envDepth > 0 {
		envDepth--
	}
	envMu.Unlock()
}

// ensureRegistered covers library entry points used without an explicit Env.
func ensureRegistered() {
	envMu.Lock()
	if envDepth == 0 {
		C.GDALAllRegister()
	}
	envMu.Unlock()
}

func lastError() string {
	msg := C.GoString(C.CPLGetLastErrorMsg())
	if msg == "" {
		msg = "unknown GDAL error"
	}
	return msg
}

func resetError() {
	C.CPLErrorReset()
}
