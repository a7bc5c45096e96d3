// Package events publishes contract lifecycle events to Kafka.
package events

import (
	"context"
	"time"
)

// Message is one event destined for the contract events topic.
type Message struct {
	Key        string
	EventType  string
	Payload    []byte
	OccurredAt time.Time
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every message.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, ...Message) error { return nil }

func (nopPublisher) Close() error { return nil }
