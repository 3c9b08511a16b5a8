// ABOUTME: Tests for haversine distance
// ABOUTME: Known fixtures, symmetry, zero distance, and the meters-not-kilometers radius

package tracker

import (
	"math"
	"testing"
)

func TestHaversine_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	d := Haversine(0, 0, 0, 1)
	if math.Abs(d-111194.9) > 1 {
		t.Errorf("expected ~111194.9m, got %f", d)
	}
}

func TestHaversine_IdenticalPointsIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {41.8781, -87.6298}, {-33.8688, 151.2093}, {90, 0}, {-90, 180}}
	for _, p := range points {
		if d := Haversine(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("expected 0 for %v, got %g", p, d)
		}
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(41.8781, -87.6298, 42.3601, -71.0589)
	b := Haversine(42.3601, -71.0589, 41.8781, -87.6298)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("expected symmetric distance, got %f and %f", a, b)
	}
}

func TestHaversine_ChicagoToBoston(t *testing.T) {
	d := Haversine(41.8781, -87.6298, 42.3601, -71.0589)
	// roughly 1367 km
	if d < 1_350_000 || d > 1_380_000 {
		t.Errorf("unexpected Chicago-Boston distance: %f", d)
	}
}

func TestHaversine_AcrossAntimeridian(t *testing.T) {
	d := Haversine(0, 179.5, 0, -179.5)
	if math.Abs(d-111194.9) > 1 {
		t.Errorf("expected one degree across the antimeridian, got %f", d)
	}
}

func TestHaversine_AntipodalPointsStayFinite(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	want := math.Pi * EarthRadiusMeters
	if math.IsNaN(d) || math.Abs(d-want) > 1 {
		t.Errorf("expected half circumference %f, got %f", want, d)
	}
}

func TestEarthRadiusIsInMeters(t *testing.T) {
	if EarthRadiusMeters != 6371000 {
		t.Fatalf("EarthRadiusMeters = %f, want 6371000", EarthRadiusMeters)
	}
}
