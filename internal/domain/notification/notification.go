package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names the marketplace happenings pushed to users. Delivery is
// best-effort and never part of a transaction.
type Event string

const (
	EventLoadSubmitted  Event = "load_submitted"
	EventLoadPosted     Event = "load_posted"
	EventLoadAssigned   Event = "load_assigned"
	EventLoadTransition Event = "load_transition"
	EventBidPlaced      Event = "bid_placed"
	EventBidCountered   Event = "bid_countered"
	EventBidAccepted    Event = "bid_accepted"
	EventBidRejected    Event = "bid_rejected"
	EventOtpRequested   Event = "otp_requested"
	EventOtpApproved    Event = "otp_approved"
	EventOtpRejected    Event = "otp_rejected"
	EventOtpVerified    Event = "otp_verified"
)

// Notifier pushes one event to one user. Implementations swallow and log
// their own failures; callers never roll back state over a lost
// notification.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event Event, payload map[string]interface{})
}

// Fanout delivers each notification to every sink.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, userID uuid.UUID, event Event, payload map[string]interface{}) {
	for _, n := range f {
		n.Notify(ctx, userID, event, payload)
	}
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, Event, map[string]interface{}) {}

// SSEClient represents an active SSE connection
type SSEClient struct {
	ClientID    string
	UserID      *string
	ConnectedAt time.Time
	MessageChan chan *SSEMessage
}

// NewSSEClient creates a new SSE client
func NewSSEClient(clientID string, userID *string) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

// Close closes the client's message channel
func (c *SSEClient) Close() {
	close(c.MessageChan)
}

// SSEMessage represents a message to be sent via SSE
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates a new SSE message
func NewSSEMessage(event string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
