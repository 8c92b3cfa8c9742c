package utils

import (
	"testing"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      GeoPoint
		expected  float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         GeoPoint{Lat: 19.0760, Lng: 72.8777},
			b:         GeoPoint{Lat: 19.0760, Lng: 72.8777},
			expected:  0.0,
			tolerance: 0.001,
		},
		{
			name:      "Mumbai to Pune",
			a:         GeoPoint{Lat: 19.0760, Lng: 72.8777},
			b:         GeoPoint{Lat: 18.5204, Lng: 73.8567},
			expected:  120.0,
			tolerance: 5.0,
		},
		{
			name:      "Delhi to Jaipur",
			a:         GeoPoint{Lat: 28.6139, Lng: 77.2090},
			b:         GeoPoint{Lat: 26.9124, Lng: 75.7873},
			expected:  237.0,
			tolerance: 10.0,
		},
		{
			name:      "two degrees of latitude across the equator",
			a:         GeoPoint{Lat: -1.0, Lng: 100.0},
			b:         GeoPoint{Lat: 1.0, Lng: 100.0},
			expected:  222.4,
			tolerance: 5.0,
		},
		{
			name:      "across the antimeridian",
			a:         GeoPoint{Lat: 0.0, Lng: 179.0},
			b:         GeoPoint{Lat: 0.0, Lng: -179.0},
			expected:  222.4,
			tolerance: 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDistance(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestCalculateDistance_Symmetric(t *testing.T) {
	a := GeoPoint{Lat: 19.0760, Lng: 72.8777}
	b := GeoPoint{Lat: 28.6139, Lng: 77.2090}
	assert.InDelta(t, CalculateDistance(a, b), CalculateDistance(b, a), 1e-9)
}

func TestEncodeGeohash(t *testing.T) {
	p := GeoPoint{Lat: 19.0760, Lng: 72.8777}
	cell := EncodeGeohash(p)
	assert.Len(t, cell, GeohashPrecision)

	lat, lng := geohash.Decode(cell)
	assert.InDelta(t, p.Lat, lat, 0.01)
	assert.InDelta(t, p.Lng, lng, 0.01)
}
