package sse

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freightboard/freightboard/internal/domain/notification"
)

// Notifier pushes events onto the hub so connected clients of the
// target user see them live.
type Notifier struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewNotifier(hub *Hub, logger zerolog.Logger) *Notifier {
	return &Notifier{
		hub:    hub,
		logger: logger.With().Str("component", "sse_notifier").Logger(),
	}
}

func (n *Notifier) Notify(_ context.Context, userID uuid.UUID, event notification.Event, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn().Err(err).Str("event", string(event)).Msg("failed to marshal sse payload")
		return
	}
	msg := notification.NewSSEMessage(string(event), data)
	n.hub.BroadcastToUser(userID.String(), msg)
}
