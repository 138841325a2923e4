// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/store"
)

// CreateFields lists the inputs Create requires, in validation order.
var CreateFields = []string{"title", "option1", "option2"}

// Service implements the poll operations on top of a revisioned store.
// It keeps no state between calls; concurrent writers are arbitrated by
// the store's revision check.
type Service struct {
	store  store.Store
	events events.Publisher
}

func NewService(st store.Store, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{store: st, events: pub}
}

// List returns every poll, ordered by id. The result is never nil.
func (s *Service) List(ctx context.Context) ([]models.PollSummary, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		return nil, &StoreError{Op: "list polls", Err: err}
	}

	polls := make([]models.PollSummary, 0, len(docs))
	for _, d := range docs {
		polls = append(polls, d.Summary())
	}
	return polls, nil
}

// Create validates fields and stores a new poll with both counters at zero.
// It returns the id the store assigned.
func (s *Service) Create(ctx context.Context, fields map[string]string) (string, error) {
	values := make(map[string]string, len(CreateFields))
	for _, name := range CreateFields {
		raw, ok := fields[name]
		if !ok {
			return "", &ValidationError{Field: name}
		}
		value := strings.TrimSpace(decodeField(strings.TrimSpace(raw)))
		if value == "" {
			return "", &ValidationError{Field: name}
		}
		values[name] = value
	}

	p, err := s.store.Create(ctx, models.Poll{
		Title:   values["title"],
		Option1: values["option1"],
		Option2: values["option2"],
		Votes1:  0,
		Votes2:  0,
	})
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		return "", &StoreError{Op: "create poll", Err: err}
	}

	slog.Info("poll created", "poll_id", p.ID)
	s.publish(ctx, events.Event{Type: events.PollCreated, PollID: p.ID})
	return p.ID, nil
}

// Vote adds one vote to option "1" or "2" of the poll. Any other option,
// including the empty string, still rewrites the poll but changes neither
// counter. Callers reject an absent option before calling Vote.
func (s *Service) Vote(ctx context.Context, pollID, option string) error {
	if pollID == "" {
		return &ValidationError{Field: "pollid"}
	}

	p, err := s.store.Get(ctx, pollID)
	if err != nil {
		return &NotFoundError{ID: pollID, Err: err}
	}

	switch option {
	case models.Option1:
		p.Votes1++
	case models.Option2:
		p.Votes2++
	default:
		slog.Warn("vote option matches no counter", "poll_id", pollID, "option", option)
	}

	// p.Rev is the revision read above
	updated, err := s.store.Update(ctx, p)
	if err != nil {
		slog.Warn("vote rejected", "poll_id", pollID, "rev", p.Rev, "error", err)
		return &ConflictError{ID: pollID, Err: err}
	}

	slog.Info("vote recorded", "poll_id", pollID, "option", option, "rev", updated.Rev)
	s.publish(ctx, events.Event{
		Type:   events.PollVoted,
		PollID: pollID,
		Option: option,
		Votes1: updated.Votes1,
		Votes2: updated.Votes2,
	})
	return nil
}

// Delete removes the poll, guarded by the revision read just before.
func (s *Service) Delete(ctx context.Context, pollID string) error {
	if pollID == "" {
		return &ValidationError{Field: "pollid"}
	}

	p, err := s.store.Get(ctx, pollID)
	if err != nil {
		return &NotFoundError{ID: pollID, Err: err}
	}

	if err := s.store.Delete(ctx, p.ID, p.Rev); err != nil {
		slog.Warn("delete rejected", "poll_id", pollID, "rev", p.Rev, "error", err)
		return &ConflictError{ID: pollID, Err: err}
	}

	slog.Info("poll deleted", "poll_id", pollID)
	s.publish(ctx, events.Event{Type: events.PollDeleted, PollID: pollID, Votes1: p.Votes1, Votes2: p.Votes2})
	return nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	ev.At = time.Now().UTC()
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish event", "type", ev.Type, "poll_id", ev.PollID, "error", err)
	}
}

// decodeField undoes form encoding left in a value: '+' becomes a space and
// percent escapes are decoded. Malformed escapes keep the plus-decoded text.
func decodeField(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}
