package gdalwarp

import (
	"encoding/json"
	"strings"
	"testing"

	geo "github.com/nci/geometry"
)

func mustGeometry(t *testing.T, gjson string) geo.Geometry {
	var f geo.Feature
	doc := `{"type":"Feature","geometry":` + gjson + `}`
	if err := json.Unmarshal([]byte(doc), &f); err != nil {
		t.Fatalf("failed to parse test geometry: %v", err)
	}
	return f.Geometry
}

func TestReprojectGeometryPoint(t *testing.T) {
	g := mustGeometry(t, `{"type": "Point", "coordinates": [0, 0]}`)
	out, err := ReprojectGeometry("EPSG:4326", "EPSG:4326", g, false, 0, 2)
	if err != nil {
		t.Errorf("failed to reproject point: %v", err)
		return
	}
	buf, err := json.Marshal(out)
	if err != nil {
		t.Errorf("failed to serialize result: %v", err)
		return
	}
	if !strings.Contains(string(buf), `"Point"`) {
		t.Errorf("unexpected geometry type in %s", buf)
		return
	}
}

func TestReprojectGeometryCRSChange(t *testing.T) {
	g := mustGeometry(t, `{"type": "Point", "coordinates": [150, -30]}`)
	out, err := ReprojectGeometry("EPSG:4326", "EPSG:3857", g, false, 0, -1)
	if err != nil {
		t.Errorf("failed to reproject point to EPSG:3857: %v", err)
		return
	}
	buf, _ := json.Marshal(out)
	var doc struct {
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(buf, &doc); err != nil || len(doc.Coordinates) < 2 {
		t.Errorf("unexpected result geometry %s", buf)
		return
	}
	// 150 degrees east is about 16.7e6 metres in web mercator.
	if doc.Coordinates[0] < 16.6e6 || doc.Coordinates[0] > 16.8e6 {
		t.Errorf("unexpected easting %v", doc.Coordinates[0])
		return
	}
}

func TestRoundGeoJSON(t *testing.T) {
	in := `{"type":"LineString","coordinates":[[1.23456,7.89999],[0.00004,-3.14159]]}`
	out, err := roundGeoJSON(in, 2)
	if err != nil {
		t.Errorf("rounding failed: %v", err)
		return
	}
	for _, want := range []string{"1.23", "7.9", "-3.14"} {
		if !strings.Contains(out, want) {
			t.Errorf("rounded output %s missing %s", out, want)
			return
		}
	}
	if strings.Contains(out, "1.23456") {
		t.Errorf("coordinates were not rounded: %s", out)
		return
	}
}

func TestRoundGeoJSONCollectionUntouched(t *testing.T) {
	// GeometryCollection coordinates live under "geometries" and are left
	// as-is; only the top-level "coordinates" key is walked.
	in := `{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[1.23456,7.89999]}]}`
	out, err := roundGeoJSON(in, 2)
	if err != nil {
		t.Errorf("rounding failed: %v", err)
		return
	}
	if !strings.Contains(out, "1.23456") {
		t.Errorf("collection member coordinates were modified: %s", out)
		return
	}
}
