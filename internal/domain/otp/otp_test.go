package otp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	loadID := uuid.New()
	carrierID := uuid.New()

	r := NewRequest(loadID, carrierID, RequestTripStart)

	require.NotNil(t, r)
	assert.NotEqual(t, uuid.Nil, r.RequestID)
	assert.Equal(t, loadID, r.LoadID)
	assert.Equal(t, carrierID, r.CarrierID)
	assert.Equal(t, RequestTripStart, r.RequestType)
	assert.Equal(t, RequestPending, r.Status)
	assert.Nil(t, r.OtpID)
	assert.Nil(t, r.DecidedBy)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestRequestType_Valid(t *testing.T) {
	assert.True(t, RequestTripStart.Valid())
	assert.True(t, RequestRouteStart.Valid())
	assert.True(t, RequestTripEnd.Valid())
	assert.True(t, RequestRegistration.Valid())
	assert.False(t, RequestType("trip_pause").Valid())
	assert.False(t, RequestType("").Valid())
}

func TestRequestStatus_Terminal(t *testing.T) {
	assert.True(t, RequestRejected.Terminal())
	assert.True(t, RequestExpired.Terminal())
	assert.False(t, RequestPending.Terminal())
	assert.False(t, RequestApproved.Terminal())
}

func TestRequest_Approve(t *testing.T) {
	t.Run("success from pending", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripStart)
		adminID := uuid.New()
		otpID := uuid.New()

		err := r.Approve(adminID, otpID)

		require.NoError(t, err)
		assert.Equal(t, RequestApproved, r.Status)
		require.NotNil(t, r.OtpID)
		assert.Equal(t, otpID, *r.OtpID)
		require.NotNil(t, r.DecidedBy)
		assert.Equal(t, adminID, *r.DecidedBy)
		assert.NotNil(t, r.DecidedAt)
	})

	t.Run("error when already decided", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripStart)
		require.NoError(t, r.Approve(uuid.New(), uuid.New()))

		err := r.Approve(uuid.New(), uuid.New())

		assert.ErrorIs(t, err, ErrRequestNotPending)
	})
}

func TestRequest_Reject(t *testing.T) {
	t.Run("success from pending", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripEnd)
		adminID := uuid.New()
		notes := "truck mismatch"

		err := r.Reject(adminID, &notes)

		require.NoError(t, err)
		assert.Equal(t, RequestRejected, r.Status)
		assert.Nil(t, r.OtpID)
		require.NotNil(t, r.Notes)
		assert.Equal(t, notes, *r.Notes)
	})

	t.Run("error when already approved", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripEnd)
		require.NoError(t, r.Approve(uuid.New(), uuid.New()))

		err := r.Reject(uuid.New(), nil)

		assert.ErrorIs(t, err, ErrRequestNotPending)
		assert.Equal(t, RequestApproved, r.Status)
	})
}

func TestRequest_Relink(t *testing.T) {
	t.Run("success from approved", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripStart)
		require.NoError(t, r.Approve(uuid.New(), uuid.New()))
		newOtpID := uuid.New()

		err := r.Relink(uuid.New(), newOtpID)

		require.NoError(t, err)
		assert.Equal(t, RequestApproved, r.Status)
		assert.Equal(t, newOtpID, *r.OtpID)
	})

	t.Run("error from pending", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripStart)

		err := r.Relink(uuid.New(), uuid.New())

		assert.ErrorIs(t, err, ErrRequestNotApproved)
	})

	t.Run("error from rejected", func(t *testing.T) {
		r := NewRequest(uuid.New(), uuid.New(), RequestTripStart)
		require.NoError(t, r.Reject(uuid.New(), nil))

		err := r.Relink(uuid.New(), uuid.New())

		assert.ErrorIs(t, err, ErrRequestNotApproved)
	})
}

func TestNewVerification(t *testing.T) {
	requestID := uuid.New()
	before := time.Now().UTC()

	v := NewVerification(requestID, "hash", 10*time.Minute, DefaultMaxAttempts)

	require.NotNil(t, v)
	assert.NotEqual(t, uuid.Nil, v.OtpID)
	assert.Equal(t, requestID, v.RequestID)
	assert.Equal(t, "hash", v.CodeHash)
	assert.Equal(t, 0, v.Attempts)
	assert.Equal(t, 5, v.MaxAttempts)
	assert.Equal(t, VerificationPending, v.Status)
	assert.Nil(t, v.VerifiedAt)
	assert.True(t, v.ExpiresAt.After(before.Add(9*time.Minute)))
	assert.True(t, v.ExpiresAt.Before(before.Add(11*time.Minute)))
}

func TestVerification_ExpiredBy(t *testing.T) {
	v := NewVerification(uuid.New(), "hash", 10*time.Minute, 5)

	assert.False(t, v.ExpiredBy(time.Now().UTC()))
	assert.False(t, v.ExpiredBy(v.ExpiresAt))
	assert.True(t, v.ExpiredBy(v.ExpiresAt.Add(time.Second)))
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.GreaterOrEqual(t, c, '0')
		assert.LessOrEqual(t, c, '9')
	}

	// Codes should not repeat often; a handful of draws should differ.
	seen := map[string]bool{code: true}
	distinct := 1
	for i := 0; i < 5; i++ {
		next, err := GenerateCode()
		require.NoError(t, err)
		if !seen[next] {
			seen[next] = true
			distinct++
		}
	}
	assert.Greater(t, distinct, 1)
}

func TestHashAndCompareCode(t *testing.T) {
	code := "042917"

	hash, err := HashCode(code)
	require.NoError(t, err)
	assert.NotEqual(t, code, hash)

	assert.True(t, CompareCode(hash, code))
	assert.False(t, CompareCode(hash, "042918"))
	assert.False(t, CompareCode(hash, ""))
	assert.False(t, CompareCode("not-a-hash", code))
}
