package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision is the cell size attached to tracked positions.
// Seven characters is roughly a 150m cell, fine enough for dashboard
// clustering.
const GeohashPrecision = 7

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// CalculateDistance returns the great-circle distance between two points
// in kilometers using the haversine formula.
func CalculateDistance(a, b GeoPoint) float64 {
	const earthRadius = 6371.0

	lat1 := a.Lat * math.Pi / 180.0
	lng1 := a.Lng * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lng2 := b.Lng * math.Pi / 180.0

	dLat := lat2 - lat1
	dLng := lng2 - lng1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// EncodeGeohash returns the point's geohash cell at the tracking
// precision.
func EncodeGeohash(p GeoPoint) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, GeohashPrecision)
}
