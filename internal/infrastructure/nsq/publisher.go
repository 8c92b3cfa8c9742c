package nsq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
	"github.com/rs/zerolog"

	"github.com/freightboard/freightboard/internal/domain/notification"
)

// Publisher pushes marketplace events onto one NSQ topic. Publishing is
// best-effort: failures are logged and dropped, never surfaced to the
// caller.
type Publisher struct {
	producer *nsq.Producer
	topic    string
	logger   zerolog.Logger
}

// NewPublisher connects to nsqd and verifies it is reachable.
func NewPublisher(address, topic string, logger zerolog.Logger) (*Publisher, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create nsq producer: %w", err)
	}
	if err := producer.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping nsqd: %w", err)
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "nsq_publisher").Logger(),
	}, nil
}

type envelope struct {
	UserID     string                 `json:"userId"`
	Event      notification.Event     `json:"event"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func (p *Publisher) Notify(_ context.Context, userID uuid.UUID, event notification.Event, payload map[string]interface{}) {
	body, err := json.Marshal(envelope{
		UserID:     userID.String(),
		Event:      event,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("event", string(event)).Msg("failed to marshal notification")
		return
	}
	if err := p.producer.Publish(p.topic, body); err != nil {
		p.logger.Warn().Err(err).Str("event", string(event)).Msg("failed to publish notification")
	}
}

// Stop flushes and closes the producer.
func (p *Publisher) Stop() {
	p.producer.Stop()
}
