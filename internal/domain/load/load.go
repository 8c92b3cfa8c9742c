package load

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a load.
type Status string

const (
	StatusDraft               Status = "draft"
	StatusPending             Status = "pending"
	StatusPriced              Status = "priced"
	StatusPostedToCarriers    Status = "posted_to_carriers"
	StatusOpenForBid          Status = "open_for_bid"
	StatusCounterReceived     Status = "counter_received"
	StatusAwarded             Status = "awarded"
	StatusInTransit           Status = "in_transit"
	StatusDelivered           Status = "delivered"
	StatusInvoiceCreated      Status = "invoice_created"
	StatusInvoiceSent         Status = "invoice_sent"
	StatusInvoiceAcknowledged Status = "invoice_acknowledged"
	StatusInvoicePaid         Status = "invoice_paid"
	StatusCancelled           Status = "cancelled"
	StatusRejected            Status = "rejected"
	StatusExpired             Status = "expired"
)

// transitions is the canonical adjacency list for load status changes.
// Every status change in the system is validated against this table and
// nowhere else.
var transitions = map[Status][]Status{
	StatusDraft:               {StatusPending, StatusCancelled},
	StatusPending:             {StatusPriced, StatusRejected, StatusCancelled},
	StatusPriced:              {StatusPostedToCarriers, StatusOpenForBid, StatusAwarded, StatusCancelled, StatusExpired},
	StatusPostedToCarriers:    {StatusOpenForBid, StatusCounterReceived, StatusAwarded, StatusCancelled, StatusExpired},
	StatusOpenForBid:          {StatusCounterReceived, StatusAwarded, StatusCancelled, StatusExpired},
	StatusCounterReceived:     {StatusOpenForBid, StatusAwarded, StatusRejected, StatusCancelled, StatusExpired},
	StatusAwarded:             {StatusInTransit, StatusCancelled},
	StatusInTransit:           {StatusDelivered, StatusCancelled},
	StatusDelivered:           {StatusInvoiceCreated},
	StatusInvoiceCreated:      {StatusInvoiceSent},
	StatusInvoiceSent:         {StatusInvoiceAcknowledged},
	StatusInvoiceAcknowledged: {StatusInvoicePaid},
	StatusInvoicePaid:         {},
	StatusCancelled:           {},
	StatusRejected:            {},
	StatusExpired:             {},
}

// Valid reports whether s is a member of the canonical status enum.
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

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// AcceptsBids reports whether carriers may bid on a load in this status.
func (s Status) AcceptsBids() bool {
	return s == StatusPostedToCarriers || s == StatusOpenForBid || s == StatusCounterReceived
}

// Type represents the equipment class of a load.
type Type string

const (
	TypeDryVan    Type = "dry_van"
	TypeFlatbed   Type = "flatbed"
	TypeReefer    Type = "reefer"
	TypeContainer Type = "container"
	TypeTanker    Type = "tanker"
)

// Valid reports whether t is a known load type.
func (t Type) Valid() bool {
	switch t {
	case TypeDryVan, TypeFlatbed, TypeReefer, TypeContainer, TypeTanker:
		return true
	}
	return false
}

// PostMode represents how a priced load is offered to carriers.
type PostMode string

const (
	PostModeOpen   PostMode = "open"
	PostModeInvite PostMode = "invite"
	PostModeAssign PostMode = "assign"
)

// Valid reports whether m is a known post mode.
func (m PostMode) Valid() bool {
	return m == PostModeOpen || m == PostModeInvite || m == PostModeAssign
}

// PostedStatus returns the status a load enters when posted in mode m.
func (m PostMode) PostedStatus() Status {
	switch m {
	case PostModeOpen:
		return StatusOpenForBid
	case PostModeInvite:
		return StatusPostedToCarriers
	case PostModeAssign:
		return StatusAwarded
	}
	return ""
}

var (
	ErrInvalidTransition = errors.New("invalid load status transition")
	ErrVersionConflict   = errors.New("load version conflict")
	ErrNotFound          = errors.New("load not found")
	ErrUnknownStatus     = errors.New("unknown load status")
)

// Load represents a shipment request, the root aggregate of the lifecycle
// state machine.
type Load struct {
	ID                  int64       `json:"id"`
	LoadID              uuid.UUID   `json:"loadId"`
	ShipperID           uuid.UUID   `json:"shipperId"`
	PickupLocality      string      `json:"pickupLocality"`
	DropoffLocality     string      `json:"dropoffLocality"`
	PickupLat           *float64    `json:"pickupLat,omitempty"`
	PickupLng           *float64    `json:"pickupLng,omitempty"`
	DropoffLat          *float64    `json:"dropoffLat,omitempty"`
	DropoffLng          *float64    `json:"dropoffLng,omitempty"`
	DistanceKm          float64     `json:"distanceKm"`
	WeightTons          float64     `json:"weightTons"`
	LoadType            Type        `json:"loadType"`
	Status              Status      `json:"status"`
	PreviousStatus      *Status     `json:"previousStatus,omitempty"`
	Version             int64       `json:"version"`
	StatusChangedBy     *uuid.UUID  `json:"statusChangedBy,omitempty"`
	StatusChangedAt     *time.Time  `json:"statusChangedAt,omitempty"`
	AdminSuggestedPrice *int64      `json:"adminSuggestedPrice,omitempty"`
	AdminFinalPrice     *int64      `json:"adminFinalPrice,omitempty"`
	AdminPostMode       *PostMode   `json:"adminPostMode,omitempty"`
	InvitedCarrierIDs   []uuid.UUID `json:"invitedCarrierIds,omitempty"`
	AllowCounterBids    bool        `json:"allowCounterBids"`
	AssignedCarrierID   *uuid.UUID  `json:"assignedCarrierId,omitempty"`
	AssignedTruckID     *string     `json:"assignedTruckId,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// NewLoad creates a load in draft at version 1.
func NewLoad(shipperID uuid.UUID, pickup, dropoff string, distanceKm, weightTons float64, loadType Type) *Load {
	now := time.Now().UTC()
	return &Load{
		LoadID:          uuid.New(),
		ShipperID:       shipperID,
		PickupLocality:  pickup,
		DropoffLocality: dropoff,
		DistanceKm:      distanceKm,
		WeightTons:      weightTons,
		LoadType:        loadType,
		Status:          StatusDraft,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanTransitionTo reports whether the load may move to the target status.
func (l *Load) CanTransitionTo(target Status) bool {
	return l.Status.CanTransitionTo(target)
}

// IsInvited reports whether carrierID is on the invite list.
func (l *Load) IsInvited(carrierID uuid.UUID) bool {
	for _, id := range l.InvitedCarrierIDs {
		if id == carrierID {
			return true
		}
	}
	return false
}

// IsParticipant reports whether userID is the shipper, the assigned carrier,
// or an invited carrier of this load.
func (l *Load) IsParticipant(userID uuid.UUID) bool {
	if l.ShipperID == userID {
		return true
	}
	if l.AssignedCarrierID != nil && *l.AssignedCarrierID == userID {
		return true
	}
	return l.IsInvited(userID)
}

// TransitionMeta carries the typed context of a state transition. Exactly
// the fields relevant to the producing operation are set; everything else
// stays nil.
type TransitionMeta struct {
	PostMode    *PostMode  `json:"postMode,omitempty"`
	FinalPrice  *int64     `json:"finalPrice,omitempty"`
	BidID       *uuid.UUID `json:"bidId,omitempty"`
	CarrierID   *uuid.UUID `json:"carrierId,omitempty"`
	TruckID     *string    `json:"truckId,omitempty"`
	Amount      *int64     `json:"amount,omitempty"`
	OtpID       *uuid.UUID `json:"otpId,omitempty"`
	RequestType *string    `json:"requestType,omitempty"`
	Comment     *string    `json:"comment,omitempty"`
}

// StateTransition is one row of the append-only state-change log.
type StateTransition struct {
	ID             int64          `json:"id"`
	LoadID         uuid.UUID      `json:"loadId"`
	FromStatus     *Status        `json:"fromStatus,omitempty"`
	ToStatus       Status         `json:"toStatus"`
	ActorID        uuid.UUID      `json:"actorId"`
	Reason         *string        `json:"reason,omitempty"`
	Meta           TransitionMeta `json:"meta"`
	Signature      string         `json:"signature"`
	TransitionedAt time.Time      `json:"transitionedAt"`
}

// NewStateTransition creates a log row for the transition from -> to.
// from is nil for the creation row.
func NewStateTransition(loadID uuid.UUID, from *Status, to Status, actorID uuid.UUID, reason *string, meta TransitionMeta) *StateTransition {
	return &StateTransition{
		LoadID:         loadID,
		FromStatus:     from,
		ToStatus:       to,
		ActorID:        actorID,
		Reason:         reason,
		Meta:           meta,
		TransitionedAt: time.Now().UTC(),
	}
}

// Filter represents filters for querying loads.
type Filter struct {
	Status    *Status
	ShipperID *uuid.UUID
	CarrierID *uuid.UUID
	PostMode  *PostMode
	Since     *time.Time
	Until     *time.Time
}
