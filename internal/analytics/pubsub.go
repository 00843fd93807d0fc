package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubSink publishes analytics events to a Pub/Sub topic. Publishing is
// fire-and-forget: results are collected on a background goroutine and
// failures only logged.
type PubSubSink struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// PubSubSinkConfig holds configuration for the Pub/Sub sink.
type PubSubSinkConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// eventEnvelope is the published message payload.
type eventEnvelope struct {
	Event      string            `json:"event"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewPubSubSink creates a new Pub/Sub analytics sink.
func NewPubSubSink(ctx context.Context, cfg PubSubSinkConfig) (*PubSubSink, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubSink{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		logger:    cfg.Logger,
	}, nil
}

// Log publishes the event. Never blocks on delivery; failures are logged at
// debug and otherwise ignored.
func (s *PubSubSink) Log(ctx context.Context, event string, attrs map[string]string) {
	payload, err := json.Marshal(eventEnvelope{
		Event:      event,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("event", event).Msg("failed to encode analytics event")
		return
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{Data: payload})
	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug().Err(err).Str("event", event).Msg("analytics publish failed")
		}
	}()
}

// Close stops the publisher and releases the client.
func (s *PubSubSink) Close() error {
	s.publisher.Stop()
	return s.client.Close()
}
