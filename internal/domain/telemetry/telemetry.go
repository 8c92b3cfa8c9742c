package telemetry

import (
	"context"
	"errors"
	"time"
)

var ErrNoPosition = errors.New("no position recorded for vehicle")

// Position is the last known location of a tracked vehicle.
type Position struct {
	VehicleID  string    `json:"vehicleId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	SpeedKph   float64   `json:"speedKph"`
	Heading    float64   `json:"heading"`
	Geohash    string    `json:"geohash"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Tracker reads vehicle positions from the telemetry collaborator. The
// core never writes through it.
type Tracker interface {
	CurrentPosition(ctx context.Context, vehicleID string) (*Position, error)
}
