package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureCollectionBoundingBox(t *testing.T) {
	var fc FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-79.38, 43.65]}},
			{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[-79.5, 43.6], [-79.2, 43.6], [-79.2, 43.8], [-79.5, 43.6]]]}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 10]]}}
		]
	}`), &fc))

	assert.Len(t, fc.Positions(), 5)

	b, ok := fc.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, Bounds{MinLng: -79.5, MinLat: 43.6, MaxLng: -79.2, MaxLat: 43.8}, b)
}

func TestFeatureCollectionEmpty(t *testing.T) {
	_, ok := FeatureCollection{Type: "FeatureCollection"}.BoundingBox()
	assert.False(t, ok)
}
