// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/store"
)

// GetTestConfig returns a standard test configuration backed by the memory store
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8090,
		DatabaseType: cliparse.StoreMemory,
		DatabaseName: "polls_test",
		StoreTimeout: 5 * time.Second,
		AMQPQueue:    "poll-events-test",
	}
}

// CreateTestPoll stores a poll directly and returns it with its ID and revision
func CreateTestPoll(t *testing.T, st store.Store, title, option1, option2 string) models.Poll {
	t.Helper()

	p, err := st.Create(context.Background(), models.Poll{
		Title:   title,
		Option1: option1,
		Option2: option2,
	})
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return p
}

// SetVotes overwrites the counters of a stored poll and returns the new version
func SetVotes(t *testing.T, st store.Store, p models.Poll, votes1, votes2 int) models.Poll {
	t.Helper()

	p.Votes1 = votes1
	p.Votes2 = votes2
	updated, err := st.Update(context.Background(), p)
	if err != nil {
		t.Fatalf("Failed to set test votes: %v", err)
	}
	return updated
}

// MakeFormRequest creates an HTTP test request with a URL-encoded body
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// RecordingPublisher keeps every published event in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

func (p *RecordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.Err
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// FailingStore is a store whose every call fails with Err
type FailingStore struct {
	Err error
}

func (s FailingStore) List(ctx context.Context) ([]models.Poll, error) {
	return nil, s.Err
}

func (s FailingStore) Get(ctx context.Context, id string) (models.Poll, error) {
	return models.Poll{}, s.Err
}

func (s FailingStore) Create(ctx context.Context, p models.Poll) (models.Poll, error) {
	return models.Poll{}, s.Err
}

func (s FailingStore) Update(ctx context.Context, p models.Poll) (models.Poll, error) {
	return models.Poll{}, s.Err
}

func (s FailingStore) Delete(ctx context.Context, id, rev string) error {
	return s.Err
}

func (s FailingStore) Close() error {
	return nil
}
