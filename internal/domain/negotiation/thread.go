package negotiation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ThreadStatus represents the negotiation state of a load's thread.
type ThreadStatus string

const (
	ThreadPendingReview    ThreadStatus = "pending_review"
	ThreadCounterSent      ThreadStatus = "counter_sent"
	ThreadCarrierResponded ThreadStatus = "carrier_responded"
	ThreadAccepted         ThreadStatus = "accepted"
	ThreadRejected         ThreadStatus = "rejected"
)

var threadTransitions = map[ThreadStatus][]ThreadStatus{
	ThreadPendingReview:    {ThreadCounterSent, ThreadAccepted, ThreadRejected},
	ThreadCounterSent:      {ThreadCarrierResponded, ThreadAccepted, ThreadRejected},
	ThreadCarrierResponded: {ThreadCounterSent, ThreadAccepted, ThreadRejected},
	ThreadAccepted:         {},
	ThreadRejected:         {},
}

// Valid reports whether s is a known thread status.
func (s ThreadStatus) Valid() bool {
	_, ok := threadTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> target is legal.
func (s ThreadStatus) CanTransitionTo(target ThreadStatus) bool {
	for _, next := range threadTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether negotiation on the thread has concluded.
func (s ThreadStatus) Terminal() bool {
	next, ok := threadTransitions[s]
	return ok && len(next) == 0
}

var (
	ErrThreadNotFound = errors.New("negotiation thread not found")
	ErrThreadClosed   = errors.New("negotiation thread is closed")
)

// Thread tracks the negotiation around one load. Exactly one thread exists
// per load; it is created lazily on first access.
type Thread struct {
	ID                int64        `json:"id"`
	ThreadID          uuid.UUID    `json:"threadId"`
	LoadID            uuid.UUID    `json:"loadId"`
	Status            ThreadStatus `json:"status"`
	TotalBids         int          `json:"totalBids"`
	RealBids          int          `json:"realBids"`
	SimulatedBids     int          `json:"simulatedBids"`
	PendingCounters   int          `json:"pendingCounters"`
	AcceptedBidID     *uuid.UUID   `json:"acceptedBidId,omitempty"`
	AcceptedCarrierID *uuid.UUID   `json:"acceptedCarrierId,omitempty"`
	AcceptedAmount    *int64       `json:"acceptedAmount,omitempty"`
	LastActivityAt    time.Time    `json:"lastActivityAt"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// NewThread creates an empty thread for a load in pending_review.
func NewThread(loadID uuid.UUID) *Thread {
	now := time.Now().UTC()
	return &Thread{
		ThreadID:       uuid.New(),
		LoadID:         loadID,
		Status:         ThreadPendingReview,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Terminal reports whether the thread has concluded.
func (t *Thread) Terminal() bool {
	return t.Status.Terminal()
}
