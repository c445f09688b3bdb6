package models

import "encoding/json"

// Geometry is a GeoJSON geometry. Coordinates stay raw because their nesting
// depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// FeatureCollection is the GET /reports/heatmap response
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Bounds is a longitude/latitude bounding box.
type Bounds struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

// Positions flattens every Point and the outer ring of every Polygon into
// [lng, lat] pairs. Other geometry types are skipped.
func (fc FeatureCollection) Positions() [][2]float64 {
	var out [][2]float64
	for _, f := range fc.Features {
		switch f.Geometry.Type {
		case "Point":
			var p [2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &p); err == nil {
				out = append(out, p)
			}
		case "Polygon":
			var rings [][][2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err == nil && len(rings) > 0 {
				out = append(out, rings[0]...)
			}
		}
	}
	return out
}

// BoundingBox returns the box enclosing all positions, or false when empty.
func (fc FeatureCollection) BoundingBox() (Bounds, bool) {
	positions := fc.Positions()
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLng: positions[0][0], MaxLng: positions[0][0],
		MinLat: positions[0][1], MaxLat: positions[0][1],
	}
	for _, p := range positions[1:] {
		b.MinLng = min(b.MinLng, p[0])
		b.MaxLng = max(b.MaxLng, p[0])
		b.MinLat = min(b.MinLat, p[1])
		b.MaxLat = max(b.MaxLat, p[1])
	}
	return b, true
}
