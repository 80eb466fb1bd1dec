package geo_test

import (
	"math"
	"testing"

	"i4.energy/across/tata/geo"
)

var (
	pos1 = geo.Location{Latitude: 46.7624859, Longitude: 18.6304591}
	pos2 = geo.Location{Latitude: 47.1258945, Longitude: 17.8372091}
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     geo.Location
		expected float64
	}{
		{name: "Same point", a: pos1, b: pos1, expected: 0},
		{name: "Fixture pair", a: pos1, b: pos2, expected: 72519.74444090424},
		{name: "Fixture pair reversed", a: pos2, b: pos1, expected: 72519.74444090424},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceTo(tt.b)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	t.Run("Symmetric", func(t *testing.T) {
		if geo.Distance(1, 2, 3, 4) != geo.Distance(3, 4, 1, 2) {
			t.Error("distance should not depend on argument order")
		}
	})
}

func TestEstimateGPSAccuracy(t *testing.T) {
	for _, pdop := range []float64{0, 1, 2.3, 10} {
		if got := geo.EstimateGPSAccuracy(pdop); got != 2.5*pdop {
			t.Errorf("pdop %v: expected %v, got %v", pdop, 2.5*pdop, got)
		}
	}
}

func TestIsDistanceBigEnough(t *testing.T) {
	tests := []struct {
		name     string
		accA     float64
		accB     float64
		expected bool
	}{
		{name: "Precise fixes far apart", accA: 10, accB: 10, expected: true},
		{name: "Uncertainty covers the distance", accA: 40000, accB: 40000, expected: false},
		{name: "Just below the distance", accA: 36000, accB: 36000, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := pos1, pos2
			a.Accuracy, b.Accuracy = tt.accA, tt.accB
			if got := geo.IsDistanceBigEnough(a, b); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	t.Run("No movement is never big enough", func(t *testing.T) {
		if geo.IsDistanceBigEnough(pos1, pos1) {
			t.Error("zero distance should not count as movement")
		}
	})
}
