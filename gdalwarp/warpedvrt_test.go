package gdalwarp

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestWarpedVRTAliasResolution(t *testing.T) {
	v := &WarpedVRT{Width: 100, Height: 50, DstWidth: 200, DstHeight: 80}
	v.resolveAliases()
	if v.Width != 100 || v.Height != 50 {
		t.Errorf("primary dimensions did not win over aliases: %dx%d", v.Width, v.Height)
		return
	}

	v = &WarpedVRT{DstWidth: 200, DstHeight: 80}
	v.resolveAliases()
	if v.Width != 200 || v.Height != 80 {
		t.Errorf("aliases were not adopted when primaries unset: %dx%d", v.Width, v.Height)
		return
	}
}

func TestWarpedVRTReadBeforeStart(t *testing.T) {
	v := &WarpedVRT{Source: "/vsimem/nonexistent.tif", DstCRS: "EPSG:4326"}
	buf := &ByteRaster{Data: make([]uint8, 4), Width: 2, Height: 2}
	if err := v.Read(buf, Window{0, 0, 2, 2}, nil); err == nil {
		t.Errorf("read on unstarted warped VRT succeeded")
		return
	}
}

func TestWarpedVRTRestart(t *testing.T) {
	v := &WarpedVRT{Source: "/vsimem/nonexistent.tif", DstCRS: "EPSG:4326"}
	v.Stop()
	if v.state != vrtUnstarted {
		t.Errorf("stop on unstarted instance changed state")
		return
	}
	v.state = vrtStopped
	if err := v.Start(); err == nil {
		t.Errorf("restart after stop succeeded")
		return
	}
}

func TestWarpedVRTPartialDestinationSpec(t *testing.T) {
	gt := GeoTransform{0, 1, 0, 0, 0, -1}
	v := &WarpedVRT{Source: "x.tif", DstCRS: "EPSG:4326", DstTransform: &gt}
	if _, ok := v.Start().(*WarpOptionsError); !ok {
		t.Errorf("destination transform without dimensions was accepted")
		return
	}
	v = &WarpedVRT{Source: "x.tif", DstCRS: "EPSG:4326", Width: 10, Height: 10}
	if _, ok := v.Start().(*WarpOptionsError); !ok {
		t.Errorf("destination dimensions without transform were accepted")
		return
	}
}

func TestWarpedVRTBoundlessRead(t *testing.T) {
	gt := GeoTransform{0, 1, 0, 10, 0, -1}
	v := &WarpedVRT{}
	v.state = vrtStarted
	v.dstGeom = GridGeometry{Width: 10, Height: 10, CRS: "EPSG:4326", Transform: &gt}
	v.bandCount = 1

	buf := &ByteRaster{Data: make([]uint8, 25), Width: 5, Height: 5}
	windows := []Window{
		{8, 8, 5, 5},
		{-1, 0, 5, 5},
		{0, 0, 11, 11},
	}
	for _, w := range windows {
		err := v.checkReadErr(buf, w)
		if _, ok := err.(*WindowError); !ok {
			t.Errorf("boundless window %+v did not fail with WindowError: %v", w, err)
			return
		}
	}
}

func (v *WarpedVRT) checkReadErr(r Raster, w Window) error {
	_, _, err := v.checkRead(r, w, nil)
	return err
}

func TestWarpedVRTDuplicateAlpha(t *testing.T) {
	// A sourceless VRT document is enough to expose a band already tagged
	// with the alpha interpretation.
	doc := `<VRTDataset rasterXSize="4" rasterYSize="4">
  <SRS>EPSG:4326</SRS>
  <GeoTransform>0, 1, 0, 0, 0, -1</GeoTransform>
  <VRTRasterBand dataType="Byte" band="1"/>
  <VRTRasterBand dataType="Byte" band="2">
    <ColorInterp>Alpha</ColorInterp>
  </VRTRasterBand>
</VRTDataset>`
	path := filepath.Join(t.TempDir(), "alpha.vrt")
	if err := ioutil.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Errorf("could not write VRT document: %v", err)
		return
	}

	v := &WarpedVRT{Source: path, DstCRS: "EPSG:3857", AddAlpha: true}
	err := v.Start()
	if _, ok := err.(*WarpOptionsError); !ok {
		t.Errorf("adding an alpha band to an alpha-carrying source did not fail with WarpOptionsError: %v", err)
		return
	}

	// Without the extra alpha band the same source is acceptable.
	v = &WarpedVRT{Source: path, DstCRS: "EPSG:3857"}
	if err := v.Start(); err != nil {
		t.Errorf("alpha-carrying source failed to start without AddAlpha: %v", err)
		return
	}
	v.Stop()
}

func TestWarpedVRTNodataInheritance(t *testing.T) {
	doc := `<VRTDataset rasterXSize="4" rasterYSize="4">
  <SRS>EPSG:4326</SRS>
  <GeoTransform>0, 1, 0, 0, 0, -1</GeoTransform>
  <VRTRasterBand dataType="Byte" band="1">
    <NoDataValue>7</NoDataValue>
  </VRTRasterBand>
</VRTDataset>`
	path := filepath.Join(t.TempDir(), "nodata.vrt")
	if err := ioutil.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Errorf("could not write VRT document: %v", err)
		return
	}

	v := &WarpedVRT{Source: path, DstCRS: "EPSG:3857"}
	if err := v.Start(); err != nil {
		t.Errorf("failed to start warped VRT: %v", err)
		return
	}
	defer v.Stop()

	if v.SrcNodata == nil || *v.SrcNodata != 7 {
		t.Errorf("source nodata was not inherited from the dataset: %v", v.SrcNodata)
		return
	}
	if v.Nodata == nil || *v.Nodata != 7 {
		t.Errorf("destination nodata was not inherited from the source: %v", v.Nodata)
		return
	}

	// An explicit destination nodata is kept.
	nodata := 3.0
	v2 := &WarpedVRT{Source: path, DstCRS: "EPSG:3857", Nodata: &nodata}
	if err := v2.Start(); err != nil {
		t.Errorf("failed to start warped VRT: %v", err)
		return
	}
	defer v2.Stop()
	if v2.Nodata == nil || *v2.Nodata != 3 {
		t.Errorf("explicit destination nodata was overridden: %v", v2.Nodata)
		return
	}
}

func TestWarpedVRTEndToEnd(t *testing.T) {
	const path = "testdata/byte_4326.tif"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("Test data file is unavailable. Skipping tests")
		return
	}

	v := &WarpedVRT{Source: path, DstCRS: "EPSG:3857"}
	if err := v.Start(); err != nil {
		t.Errorf("failed to start warped VRT: %v", err)
		return
	}
	defer v.Stop()

	width, height := v.Bounds()
	if width <= 0 || height <= 0 {
		t.Errorf("warped view has empty extent %dx%d", width, height)
		return
	}
	buf := &ByteRaster{Data: make([]uint8, width*height), Width: width, Height: height}
	if err := v.Read(buf, fullWindow(width, height), []int{1}); err != nil {
		t.Errorf("full read failed: %v", err)
		return
	}
	masks := &ByteRaster{Data: make([]uint8, width*height), Width: width, Height: height}
	if err := v.ReadMasks(masks, fullWindow(width, height), []int{1}); err != nil {
		t.Errorf("mask read failed: %v", err)
		return
	}
}
