package service

import (
	"context"
	"time"
)

// UserEventType names a change to an identity.
type UserEventType string

const (
	UserEventRegistered UserEventType = "user.registered"
	UserEventUpdated    UserEventType = "user.updated"
	UserEventDeleted    UserEventType = "user.deleted"
)

// UserEvent announces an identity change to downstream consumers.
// It never carries credentials.
type UserEvent struct {
	RequestID  string        `json:"request_id,omitempty"` // For distributed tracing
	Type       UserEventType `json:"type"`
	UserID     uint          `json:"user_id"`
	Username   string        `json:"username"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishUserEvent delivers a single identity event.
	PublishUserEvent(ctx context.Context, event *UserEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
