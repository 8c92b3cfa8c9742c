package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightboard/freightboard/internal/domain/telemetry"
)

func setupTracker(t *testing.T) (*miniredis.Miniredis, *Tracker) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewTracker(client)
}

func TestTracker_CurrentPosition(t *testing.T) {
	mr, tracker := setupTracker(t)

	recorded := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	mr.HSet("telemetry:vehicle:MH-12-AB-1234",
		"latitude", "19.0760",
		"longitude", "72.8777",
		"speed_kph", "62.5",
		"heading", "134",
		"recorded_at", strconv.FormatInt(recorded.Unix(), 10),
	)

	pos, err := tracker.CurrentPosition(context.Background(), "MH-12-AB-1234")
	require.NoError(t, err)
	assert.Equal(t, "MH-12-AB-1234", pos.VehicleID)
	assert.InDelta(t, 19.0760, pos.Lat, 1e-9)
	assert.InDelta(t, 72.8777, pos.Lng, 1e-9)
	assert.InDelta(t, 62.5, pos.SpeedKph, 1e-9)
	assert.InDelta(t, 134.0, pos.Heading, 1e-9)
	assert.Len(t, pos.Geohash, 7)
	assert.Equal(t, recorded, pos.RecordedAt)
}

func TestTracker_CurrentPosition_MissingOptionalFields(t *testing.T) {
	mr, tracker := setupTracker(t)

	mr.HSet("telemetry:vehicle:KA-05-XY-9",
		"latitude", "12.9716",
		"longitude", "77.5946",
	)

	pos, err := tracker.CurrentPosition(context.Background(), "KA-05-XY-9")
	require.NoError(t, err)
	assert.Zero(t, pos.SpeedKph)
	assert.Zero(t, pos.Heading)
	assert.True(t, pos.RecordedAt.IsZero())
}

func TestTracker_CurrentPosition_Unknown(t *testing.T) {
	_, tracker := setupTracker(t)

	_, err := tracker.CurrentPosition(context.Background(), "unknown-truck")
	require.ErrorIs(t, err, telemetry.ErrNoPosition)
}

func TestTracker_CurrentPosition_PartialCoordinates(t *testing.T) {
	mr, tracker := setupTracker(t)

	mr.HSet("telemetry:vehicle:half", "latitude", "19.0760")

	_, err := tracker.CurrentPosition(context.Background(), "half")
	require.ErrorIs(t, err, telemetry.ErrNoPosition)
}
