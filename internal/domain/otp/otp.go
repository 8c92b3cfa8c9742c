package otp

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies the physical-world milestone an OTP gates.
type RequestType string

const (
	RequestTripStart    RequestType = "trip_start"
	RequestRouteStart   RequestType = "route_start"
	RequestTripEnd      RequestType = "trip_end"
	RequestRegistration RequestType = "registration"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTripStart, RequestRouteStart, RequestTripEnd, RequestRegistration:
		return true
	}
	return false
}

// RequestStatus represents the admin decision state of an OTP request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestExpired  RequestStatus = "expired"
)

// Terminal reports whether the request can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestExpired
}

// VerificationStatus represents the state of one issued code.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationExpired  VerificationStatus = "expired"
)

const DefaultMaxAttempts = 5

var (
	ErrRequestNotFound      = errors.New("otp request not found")
	ErrVerificationNotFound = errors.New("otp verification not found")
	ErrDuplicateRequest     = errors.New("otp request of this type already in flight")
	ErrRequestNotPending    = errors.New("otp request is not pending")
	ErrRequestNotApproved   = errors.New("otp request is not approved")
	ErrAlreadyUsed          = errors.New("otp code already used")
	ErrCodeExpired          = errors.New("otp code expired")
	ErrAttemptsExceeded     = errors.New("otp attempts exceeded")
	ErrInvalidCode          = errors.New("otp code mismatch")
)

// Request is a carrier's ask to unlock a milestone on a load. The admin
// approves or rejects it; approval issues a Verification linked back via
// OtpID.
type Request struct {
	ID          int64         `json:"id"`
	RequestID   uuid.UUID     `json:"requestId"`
	LoadID      uuid.UUID     `json:"loadId"`
	CarrierID   uuid.UUID     `json:"carrierId"`
	RequestType RequestType   `json:"requestType"`
	Status      RequestStatus `json:"status"`
	OtpID       *uuid.UUID    `json:"otpId,omitempty"`
	DecidedBy   *uuid.UUID    `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time    `json:"decidedAt,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// NewRequest creates a pending OTP request.
func NewRequest(loadID, carrierID uuid.UUID, requestType RequestType) *Request {
	now := time.Now().UTC()
	return &Request{
		RequestID:   uuid.New(),
		LoadID:      loadID,
		CarrierID:   carrierID,
		RequestType: requestType,
		Status:      RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Approve links the request to a freshly issued verification.
func (r *Request) Approve(adminID, otpID uuid.UUID) error {
	if r.Status != RequestPending {
		return ErrRequestNotPending
	}
	now := time.Now().UTC()
	r.Status = RequestApproved
	r.OtpID = &otpID
	r.DecidedBy = &adminID
	r.DecidedAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject closes the request without ever issuing a code.
func (r *Request) Reject(adminID uuid.UUID, notes *string) error {
	if r.Status != RequestPending {
		return ErrRequestNotPending
	}
	now := time.Now().UTC()
	r.Status = RequestRejected
	r.DecidedBy = &adminID
	r.DecidedAt = &now
	r.Notes = notes
	r.UpdatedAt = now
	return nil
}

// Relink points an approved request at a regenerated verification,
// preserving the request's identity.
func (r *Request) Relink(adminID, otpID uuid.UUID) error {
	if r.Status != RequestApproved {
		return ErrRequestNotApproved
	}
	now := time.Now().UTC()
	r.OtpID = &otpID
	r.DecidedBy = &adminID
	r.DecidedAt = &now
	r.UpdatedAt = now
	return nil
}

// Verification is one issued code. A code verifies exactly once; expired
// or attempt-exhausted codes never verify.
type Verification struct {
	ID          int64              `json:"id"`
	OtpID       uuid.UUID          `json:"otpId"`
	RequestID   uuid.UUID          `json:"requestId"`
	CodeHash    string             `json:"-"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Attempts    int                `json:"attempts"`
	MaxAttempts int                `json:"maxAttempts"`
	Status      VerificationStatus `json:"status"`
	VerifiedAt  *time.Time         `json:"verifiedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// NewVerification creates a pending verification for a request.
func NewVerification(requestID uuid.UUID, codeHash string, validity time.Duration, maxAttempts int) *Verification {
	now := time.Now().UTC()
	return &Verification{
		OtpID:       uuid.New(),
		RequestID:   requestID,
		CodeHash:    codeHash,
		ExpiresAt:   now.Add(validity),
		MaxAttempts: maxAttempts,
		Status:      VerificationPending,
		CreatedAt:   now,
	}
}

// ExpiredBy reports whether the code's validity window has passed.
func (v *Verification) ExpiredBy(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// RequestFilter represents filters for querying OTP requests.
type RequestFilter struct {
	LoadID      *uuid.UUID
	CarrierID   *uuid.UUID
	Status      *RequestStatus
	RequestType *RequestType
}
