package negotiation

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/freightboard/freightboard/internal/domain/load"
)

// BidPlaced describes the thread bookkeeping for one placed bid.
type BidPlaced struct {
	ThreadID       uuid.UUID
	Simulated      bool
	AnswersCounter bool
	NewStatus      ThreadStatus
}

// AcceptBidParams describes the atomic acceptance of one bid: the chosen
// bid wins, every sibling open bid is rejected, the thread concludes and
// the load moves to awarded in the same transaction.
type AcceptBidParams struct {
	LoadID              uuid.UUID
	ThreadID            uuid.UUID
	BidID               uuid.UUID
	CarrierID           uuid.UUID
	TruckID             *string
	Amount              int64
	LoadExpectedVersion int64
	Transition          *load.StateTransition
}

// Repository defines persistence operations for negotiation threads.
type Repository interface {
	// GetOrCreate returns the load's thread, creating it when absent.
	GetOrCreate(ctx context.Context, loadID uuid.UUID) (*Thread, error)
	GetByLoad(ctx context.Context, loadID uuid.UUID) (*Thread, error)
	// RecordBid bumps the thread counters for one placed bid and applies
	// the status change decided by the caller.
	RecordBid(ctx context.Context, placed BidPlaced) (*Thread, error)
	// RecordCounter marks the thread counter_sent and bumps
	// pending_counters.
	RecordCounter(ctx context.Context, threadID uuid.UUID) (*Thread, error)
	// AcceptBid performs the whole acceptance in one transaction. It
	// returns bid.ErrNotOpen when the chosen bid is no longer open,
	// ErrThreadClosed when the thread already concluded, and
	// load.ErrVersionConflict when the load moved underneath the caller.
	AcceptBid(ctx context.Context, params AcceptBidParams) error
}
