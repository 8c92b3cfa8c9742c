package otp

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for OTP requests and their
// verifications.
type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, requestID uuid.UUID) (*Request, error)
	ListRequests(ctx context.Context, filter RequestFilter, limit, offset int) ([]*Request, error)
	// FindInFlight returns a request of the given type on the load that is
	// still pending, or approved with an unexpired unverified code.
	FindInFlight(ctx context.Context, loadID uuid.UUID, requestType RequestType) (*Request, error)
	// UpdateRequest writes status, decision fields and updated_at.
	UpdateRequest(ctx context.Context, r *Request) error
	// ApproveRequest inserts the verification and flips the request to
	// approved in one transaction.
	ApproveRequest(ctx context.Context, r *Request, v *Verification) error
	// RegenerateRequest expires the prior verification, inserts the new
	// one and relinks the request in one transaction.
	RegenerateRequest(ctx context.Context, r *Request, priorOtpID uuid.UUID, v *Verification) error

	GetVerification(ctx context.Context, otpID uuid.UUID) (*Verification, error)
	ExpireVerification(ctx context.Context, otpID uuid.UUID) error
	// IncrementAttempts bumps attempts on a pending verification still
	// under its attempt limit and returns the updated row; (nil, nil)
	// when no row matched the condition.
	IncrementAttempts(ctx context.Context, otpID uuid.UUID) (*Verification, error)
	// MarkVerified flips a pending verification to verified and returns
	// the updated row; (nil, nil) when the row was no longer pending.
	MarkVerified(ctx context.Context, otpID uuid.UUID) (*Verification, error)
	// ExpireOverdue marks overdue pending verifications expired along
	// with their approved requests; returns how many codes were expired.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
