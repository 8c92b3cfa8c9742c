package load

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// PricingPatch carries the pricing columns written alongside a posting
// transition.
type PricingPatch struct {
	SuggestedPrice    *int64
	FinalPrice        *int64
	PostMode          *PostMode
	InvitedCarrierIDs []uuid.UUID
	AllowCounterBids  *bool
}

// AssignmentPatch carries the carrier assignment written alongside an
// awarding transition.
type AssignmentPatch struct {
	CarrierID uuid.UUID
	TruckID   *string
}

// ApplyTransitionParams describes one atomic status change: the signed log
// row plus the load row update, conditioned on the version the caller read.
type ApplyTransitionParams struct {
	LoadID          uuid.UUID
	ExpectedVersion int64
	Transition      *StateTransition
	Pricing         *PricingPatch
	Assignment      *AssignmentPatch
}

// Repository defines persistence operations for loads and their
// state-change log.
type Repository interface {
	// Create inserts the load and its creation log row atomically.
	Create(ctx context.Context, l *Load, creation *StateTransition) error
	GetByID(ctx context.Context, loadID uuid.UUID) (*Load, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Load, error)
	// ApplyTransition updates the load row and appends the log row in one
	// transaction. It returns ErrVersionConflict when the load's version
	// no longer matches ExpectedVersion.
	ApplyTransition(ctx context.Context, params ApplyTransitionParams) error
	// LastSignature returns the signature of the load's most recent log
	// row, or empty when the load has none.
	LastSignature(ctx context.Context, loadID uuid.UUID) (string, error)
	// ListTransitions returns the load's log rows oldest-first.
	ListTransitions(ctx context.Context, loadID uuid.UUID) ([]*StateTransition, error)
}
