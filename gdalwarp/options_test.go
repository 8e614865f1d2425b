package gdalwarp

import (
	"testing"
)

func TestBandMappingDefaults(t *testing.T) {
	cfg := &WarpConfig{}
	src, dst, err := cfg.bandMapping(3)
	if err != nil {
		t.Errorf("identity band mapping failed: %v", err)
		return
	}
	for i := 0; i < 3; i++ {
		if src[i] != i+1 || dst[i] != i+1 {
			t.Errorf("unexpected band mapping: %v -> %v", src, dst)
			return
		}
	}
}

func TestBandMappingMismatch(t *testing.T) {
	cfg := &WarpConfig{SrcBands: []int{1, 2}, DstBands: []int{1}}
	if _, _, err := cfg.bandMapping(2); err == nil {
		t.Errorf("mismatched band lists were accepted")
		return
	}
}

func TestBandMappingAlphaCollision(t *testing.T) {
	cfg := &WarpConfig{SrcAlphaBand: 2}
	if _, _, err := cfg.bandMapping(3); err == nil {
		t.Errorf("source band list colliding with alpha band was accepted")
		return
	}
	cfg = &WarpConfig{SrcBands: []int{1}, DstBands: []int{4}, DstAlphaBand: 4}
	if _, _, err := cfg.bandMapping(1); err == nil {
		t.Errorf("destination band list colliding with alpha band was accepted")
		return
	}
}

func TestToleranceDefaults(t *testing.T) {
	cfg := &WarpConfig{}
	if cfg.tolerance() != DefaultTolerance {
		t.Errorf("zero tolerance did not default to %v", DefaultTolerance)
		return
	}
	cfg = &WarpConfig{Tolerance: -1}
	if cfg.tolerance() != 0 {
		t.Errorf("negative tolerance did not disable approximation")
		return
	}
	cfg = &WarpConfig{Tolerance: 0.5}
	if cfg.tolerance() != 0.5 {
		t.Errorf("explicit tolerance was not preserved")
		return
	}
}

func TestBuildWarpOptions(t *testing.T) {
	nodata := 255.0
	cfg := &WarpConfig{Resampling: Bilinear, SrcNodata: &nodata, DstNodata: &nodata, NumWorkers: 4}
	wo, err := buildWarpOptions(cfg, 2)
	if err != nil {
		t.Errorf("failed to build warp options: %v", err)
		return
	}
	wo.Close()
	wo.Close()
}

func TestBuildWarpOptionsUnknownResampling(t *testing.T) {
	cfg := &WarpConfig{Resampling: ResampleAlg(99)}
	if _, err := buildWarpOptions(cfg, 1); err == nil {
		t.Errorf("unknown resampling algorithm was accepted")
		return
	}
}

func TestCheckNodataRange(t *testing.T) {
	v := 300.0
	if err := checkNodataRange(&v, "Byte"); err == nil {
		t.Errorf("out-of-range Byte nodata was accepted")
		return
	}
	v = 255
	if err := checkNodataRange(&v, "Byte"); err != nil {
		t.Errorf("valid Byte nodata rejected: %v", err)
		return
	}
	if err := checkNodataRange(nil, "Byte"); err != nil {
		t.Errorf("nil nodata rejected: %v", err)
		return
	}
}
