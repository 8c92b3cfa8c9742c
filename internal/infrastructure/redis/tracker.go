package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/freightboard/freightboard/internal/domain/telemetry"
	"github.com/freightboard/freightboard/internal/utils"
)

const vehicleKeyPattern = "telemetry:vehicle:%s"

const (
	fieldLatitude   = "latitude"
	fieldLongitude  = "longitude"
	fieldSpeedKph   = "speed_kph"
	fieldHeading    = "heading"
	fieldRecordedAt = "recorded_at"
)

// NewClient connects to Redis and verifies it is reachable.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Tracker implements telemetry.Tracker against the hashes the telemetry
// ingest pipeline writes. This side only reads.
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

func (t *Tracker) CurrentPosition(ctx context.Context, vehicleID string) (*telemetry.Position, error) {
	key := fmt.Sprintf(vehicleKeyPattern, vehicleID)
	values, err := t.client.HMGet(ctx, key, fieldLatitude, fieldLongitude, fieldSpeedKph, fieldHeading, fieldRecordedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle position: %w", err)
	}

	lat, ok := floatField(values[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", telemetry.ErrNoPosition, vehicleID)
	}
	lng, ok := floatField(values[1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", telemetry.ErrNoPosition, vehicleID)
	}
	speed, _ := floatField(values[2])
	heading, _ := floatField(values[3])

	pos := &telemetry.Position{
		VehicleID: vehicleID,
		Lat:       lat,
		Lng:       lng,
		SpeedKph:  speed,
		Heading:   heading,
		Geohash:   utils.EncodeGeohash(utils.GeoPoint{Lat: lat, Lng: lng}),
	}
	if ts, ok := intField(values[4]); ok {
		pos.RecordedAt = time.Unix(ts, 0).UTC()
	}
	return pos, nil
}

func floatField(v interface{}) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func intField(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}
