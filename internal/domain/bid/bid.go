package bid

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a bid.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCountered Status = "countered"
	StatusExpired   Status = "expired"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRejected, StatusCountered, StatusExpired},
	StatusCountered: {StatusAccepted, StatusRejected, StatusExpired},
	StatusAccepted:  {},
	StatusRejected:  {},
	StatusExpired:   {},
}

// Valid reports whether s is a known bid status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Open reports whether the bid can still be accepted or countered.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusCountered
}

// Type distinguishes how a bid entered the system.
type Type string

const (
	TypeCarrierBid            Type = "carrier_bid"
	TypeAdminPostedAcceptance Type = "admin_posted_acceptance"
	TypeCounter               Type = "counter"
)

// Valid reports whether t is a known bid type.
func (t Type) Valid() bool {
	return t == TypeCarrierBid || t == TypeAdminPostedAcceptance || t == TypeCounter
}

var (
	ErrNotFound = errors.New("bid not found")
	ErrNotOpen  = errors.New("bid is not open")
)

// Bid represents a carrier's offer on a load.
type Bid struct {
	ID               int64      `json:"id"`
	BidID            uuid.UUID  `json:"bidId"`
	LoadID           uuid.UUID  `json:"loadId"`
	CarrierID        uuid.UUID  `json:"carrierId"`
	Amount           int64      `json:"amount"`
	BidType          Type       `json:"bidType"`
	Status           Status     `json:"status"`
	ApprovalRequired bool       `json:"approvalRequired"`
	Simulated        bool       `json:"simulated"`
	CounterAmount    *int64     `json:"counterAmount,omitempty"`
	CounterMessage   *string    `json:"counterMessage,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewBid creates a pending bid.
func NewBid(loadID, carrierID uuid.UUID, amount int64, bidType Type, simulated bool) *Bid {
	now := time.Now().UTC()
	return &Bid{
		BidID:     uuid.New(),
		LoadID:    loadID,
		CarrierID: carrierID,
		Amount:    amount,
		BidType:   bidType,
		Status:    StatusPending,
		Simulated: simulated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Counter marks the bid countered with the admin's offer.
func (b *Bid) Counter(amount int64, message *string) error {
	if !b.Status.CanTransitionTo(StatusCountered) {
		return ErrNotOpen
	}
	b.Status = StatusCountered
	b.CounterAmount = &amount
	b.CounterMessage = message
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Filter represents filters for querying bids.
type Filter struct {
	LoadID    *uuid.UUID
	CarrierID *uuid.UUID
	Status    *Status
}
