// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts activity history into track lines and start points

package geojson

import (
	"encoding/json"
	"time"

	"github.com/harper/stride/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LineCoordinates represents [[lng, lat], [lng, lat], ...] for a LineString.
type LineCoordinates []PointCoordinates

func entryProperties(e *models.ActivityEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":               e.ID.String(),
		"type":             string(e.Type),
		"distance_meters":  e.DistanceMeters,
		"duration_seconds": e.DurationSeconds,
		"recorded_at":      e.RecordedAt.Format(time.RFC3339),
	}
}

// ToTrackFeatureCollection emits one LineString per activity with a usable track.
func ToTrackFeatureCollection(entries []*models.ActivityEntry) *FeatureCollection {
	features := make([]Feature, 0, len(entries))

	for _, e := range entries {
		if len(e.Track) < 2 {
			// Need at least 2 points for a line
			continue
		}

		coords := make(LineCoordinates, len(e.Track))
		for i, pt := range e.Track {
			coords[i] = PointCoordinates{pt.Longitude, pt.Latitude}
		}

		props := entryProperties(e)
		props["point_count"] = len(e.Track)

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: coords,
			},
			Properties: props,
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToStartPointsFeatureCollection emits a Point at each activity's first fix.
func ToStartPointsFeatureCollection(entries []*models.ActivityEntry) *FeatureCollection {
	features := make([]Feature, 0, len(entries))

	for _, e := range entries {
		if len(e.Track) == 0 {
			continue
		}
		start := e.Track[0]

		props := entryProperties(e)
		if e.StartGeohash != "" {
			props["geohash"] = e.StartGeohash
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: PointCoordinates{start.Longitude, start.Latitude},
			},
			Properties: props,
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
