package bid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBid(t *testing.T) {
	loadID := uuid.New()
	carrierID := uuid.New()

	b := NewBid(loadID, carrierID, 40000, TypeCarrierBid, false)

	require.NotNil(t, b)
	assert.NotEqual(t, uuid.Nil, b.BidID)
	assert.Equal(t, loadID, b.LoadID)
	assert.Equal(t, carrierID, b.CarrierID)
	assert.Equal(t, int64(40000), b.Amount)
	assert.Equal(t, TypeCarrierBid, b.BidType)
	assert.Equal(t, StatusPending, b.Status)
	assert.False(t, b.Simulated)
	assert.False(t, b.ApprovalRequired)
	assert.Nil(t, b.CounterAmount)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{name: "pending -> accepted", from: StatusPending, to: StatusAccepted, expected: true},
		{name: "pending -> rejected", from: StatusPending, to: StatusRejected, expected: true},
		{name: "pending -> countered", from: StatusPending, to: StatusCountered, expected: true},
		{name: "pending -> expired", from: StatusPending, to: StatusExpired, expected: true},
		{name: "countered -> accepted", from: StatusCountered, to: StatusAccepted, expected: true},
		{name: "countered -> rejected", from: StatusCountered, to: StatusRejected, expected: true},
		{name: "countered -> countered (invalid)", from: StatusCountered, to: StatusCountered, expected: false},
		{name: "accepted -> rejected (invalid)", from: StatusAccepted, to: StatusRejected, expected: false},
		{name: "rejected -> pending (invalid)", from: StatusRejected, to: StatusPending, expected: false},
		{name: "expired -> accepted (invalid)", from: StatusExpired, to: StatusAccepted, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_Open(t *testing.T) {
	assert.True(t, StatusPending.Open())
	assert.True(t, StatusCountered.Open())
	assert.False(t, StatusAccepted.Open())
	assert.False(t, StatusRejected.Open())
	assert.False(t, StatusExpired.Open())
}

func TestBid_Counter(t *testing.T) {
	t.Run("success from pending", func(t *testing.T) {
		b := NewBid(uuid.New(), uuid.New(), 40000, TypeCarrierBid, false)
		msg := "can do 38000"

		err := b.Counter(38000, &msg)

		require.NoError(t, err)
		assert.Equal(t, StatusCountered, b.Status)
		require.NotNil(t, b.CounterAmount)
		assert.Equal(t, int64(38000), *b.CounterAmount)
		require.NotNil(t, b.CounterMessage)
		assert.Equal(t, msg, *b.CounterMessage)
	})

	t.Run("error from accepted", func(t *testing.T) {
		b := NewBid(uuid.New(), uuid.New(), 40000, TypeCarrierBid, false)
		b.Status = StatusAccepted

		err := b.Counter(38000, nil)

		assert.ErrorIs(t, err, ErrNotOpen)
		assert.Equal(t, StatusAccepted, b.Status)
	})

	t.Run("error from countered", func(t *testing.T) {
		b := NewBid(uuid.New(), uuid.New(), 40000, TypeCarrierBid, false)
		b.Status = StatusCountered

		err := b.Counter(37000, nil)

		assert.ErrorIs(t, err, ErrNotOpen)
	})
}
