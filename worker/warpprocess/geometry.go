package warpprocess

import (
	"encoding/json"
	"fmt"
	"log"

	geo "github.com/nci/geometry"
	"github.com/nci/gowarp/gdalwarp"
	pb "github.com/nci/gowarp/worker/warpservice"
)

// ReprojectGeometry transforms a GeoJSON feature or bare geometry between
// the request's CRSs. The precision field follows the library convention:
// negative leaves coordinates as computed.
func ReprojectGeometry(in *pb.Granule) *pb.Result {
	if in.SrcCrs == "" || in.DstCrs == "" {
		return &pb.Result{Error: "geometry request requires both source and destination CRS"}
	}

	gjson := []byte(in.Geometry)
	var envelope struct {
		Type     string          `json:"type"`
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(gjson, &envelope); err != nil {
		msg := fmt.Sprintf("Problem unmarshalling geometry %v", in.Geometry)
		log.Println(msg)
		return &pb.Result{Error: msg}
	}
	if envelope.Type == "Feature" {
		gjson = envelope.Geometry
	}

	var g geo.Geometry
	if err := json.Unmarshal(gjson, &g); err != nil {
		msg := fmt.Sprintf("Problem unmarshalling geometry %v", in.Geometry)
		log.Println(msg)
		return &pb.Result{Error: msg}
	}

	out, err := gdalwarp.ReprojectGeometry(in.SrcCrs, in.DstCrs, g,
		in.CutAntimeridian, in.AntimeridianOffset, int(in.Precision))
	if err != nil {
		return &pb.Result{Error: err.Error()}
	}

	buf, err := json.Marshal(out)
	if err != nil {
		return &pb.Result{Error: fmt.Sprintf("Problem marshaling GeoJSON geometry: %v", err)}
	}
	return &pb.Result{Geometry: string(buf), Error: "OK"}
}
