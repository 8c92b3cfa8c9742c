package decision

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/freightboard/freightboard/internal/domain/load"
)

// ActionType identifies the admin action a decision row records.
type ActionType string

const (
	ActionLockAndPost ActionType = "lock_and_post"
	ActionForceAssign ActionType = "force_assign"
	ActionCounterBid  ActionType = "counter_bid"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	return t == ActionLockAndPost || t == ActionForceAssign || t == ActionCounterBid
}

var ErrNotFound = errors.New("admin decision not found")

// PricingBreakdown itemizes an estimate in integer currency units. The
// components always sum to the quoted total.
type PricingBreakdown struct {
	Base     int64 `json:"base"`
	Fuel     int64 `json:"fuel"`
	Margin   int64 `json:"margin"`
	Handling int64 `json:"handling"`
}

// Total returns the sum of the components.
func (b PricingBreakdown) Total() int64 {
	return b.Base + b.Fuel + b.Margin + b.Handling
}

// AdminDecision is one append-only record of an admin pricing or
// negotiation action. Rows are never updated or deleted.
type AdminDecision struct {
	ID                int64             `json:"id"`
	DecisionID        uuid.UUID         `json:"decisionId"`
	LoadID            uuid.UUID         `json:"loadId"`
	AdminID           uuid.UUID         `json:"adminId"`
	ActionType        ActionType        `json:"actionType"`
	SuggestedPrice    *int64            `json:"suggestedPrice,omitempty"`
	FinalPrice        *int64            `json:"finalPrice,omitempty"`
	PostMode          *load.PostMode    `json:"postMode,omitempty"`
	InvitedCarrierIDs []uuid.UUID       `json:"invitedCarrierIds,omitempty"`
	BidID             *uuid.UUID        `json:"bidId,omitempty"`
	Comment           *string           `json:"comment,omitempty"`
	Breakdown         *PricingBreakdown `json:"pricingBreakdown,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// NewAdminDecision creates a decision row for one admin action.
func NewAdminDecision(loadID, adminID uuid.UUID, actionType ActionType) *AdminDecision {
	return &AdminDecision{
		DecisionID: uuid.New(),
		LoadID:     loadID,
		AdminID:    adminID,
		ActionType: actionType,
		CreatedAt:  time.Now().UTC(),
	}
}
