// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"errors"
	"time"
)

// Event types
const (
	PollCreated = "poll.created"
	PollVoted   = "poll.voted"
	PollDeleted = "poll.deleted"
)

// Event describes a successful change to a poll.
type Event struct {
	Type   string    `json:"type"`
	PollID string    `json:"poll_id"`
	Option string    `json:"option,omitempty"`
	Votes1 int       `json:"votes1"`
	Votes2 int       `json:"votes2"`
	At     time.Time `json:"at"`
}

// Publisher delivers poll events somewhere outside the request.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(ctx context.Context, ev Event) error {
	return nil
}

// Fanout publishes each event to all of its publishers, in order, and joins
// their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
