// Package publisher emits delivery events to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectRunCompleted carries one RunCompletedEvent per finished delivery run.
const SubjectRunCompleted = "delivery.completed"

// RunCompletedEvent is published when a delivery run ends.
type RunCompletedEvent struct {
	RunID       uuid.UUID     `json:"run_id"`
	Destination string        `json:"destination"`
	Episodes    int           `json:"episodes"`
	Delivered   int           `json:"delivered"`
	Failed      int           `json:"failed"`
	RateLimited int           `json:"rate_limited"`
	Duration    time.Duration `json:"duration_ns"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes delivery events
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{js: conn}
}

// PublishRunCompleted publishes a run completed event
func (p *NATSPublisher) PublishRunCompleted(_ context.Context, event RunCompletedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.js.Publish(SubjectRunCompleted, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
