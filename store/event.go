package store

import (
	"context"
)

// EventType names a change to the store
type EventType string

const (
	EventPut    EventType = "put"
	EventDelete EventType = "delete"
)

// Event describes one successful Put or Delete.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Address     string    `json:"address"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Size        int       `json:"size,omitempty"`
	// Timestamp is Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// Notifier receives events after the adapter call has succeeded.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
