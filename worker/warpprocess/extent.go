package warpprocess

import (
	"fmt"

	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

// ComputeReprojectExtent estimates the destination grid for reprojecting a
// granule (or an abstract grid described by bounds/GCPs) into the requested
// CRS.
func ComputeReprojectExtent(in *pb.Granule) *pb.Result {
	if in.DstCrs == "" {
		return &pb.Result{Error: "extent request has no destination CRS"}
	}

	srcCRS := in.SrcCrs
	width, height := 0, 0
	var gcps []gdalwarp.GroundControlPoint

	if in.SrcGrid != nil {
		srcGeom, err := decodeGrid(in.SrcGrid)
		if err != nil {
			return &pb.Result{Error: fmt.Sprintf("bad source grid: %v", err)}
		}
		width, height = srcGeom.Width, srcGeom.Height
		gcps = srcGeom.GCPs
		if srcCRS == "" {
			srcCRS = srcGeom.CRS
		}
	} else if in.Path != "" {
		srcGeom, _, err := datasetGrid(in.Path)
		if err != nil {
			return &pb.Result{Error: err.Error()}
		}
		width, height = srcGeom.Width, srcGeom.Height
		if srcCRS == "" {
			srcCRS = srcGeom.CRS
		}
		if srcGeom.Transform != nil && len(in.Bounds) == 0 {
			gt := *srcGeom.Transform
			left, top := gt.Apply(0, 0)
			right, bottom := gt.Apply(float64(width), float64(height))
			if right < left {
				left, right = right, left
			}
			if top < bottom {
				top, bottom = bottom, top
			}
			in.Bounds = []float64{left, bottom, right, top}
		}
	} else {
		return &pb.Result{Error: "extent request has neither a source grid nor a granule path"}
	}

	gt, dstWidth, dstHeight, err := gdalwarp.DefaultTransform(srcCRS, in.DstCrs, width, height, in.Bounds, gcps)
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}

	return &pb.Result{
		Geotransform: &pb.GeoTransform{Form: "gdal", Coefficients: gt[:]},
		Width:        int32(dstWidth),
		Height:       int32(dstHeight),
		Error:        "OK",
	}
}
