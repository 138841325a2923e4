// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(ctx context.Context, ev Event) error {
	p.calls++
	return p.err
}

func TestFanout(t *testing.T) {
	errA := errors.New("broker down")
	errB := errors.New("buffer full")

	tests := []struct {
		name     string
		errs     []error
		wantErrs []error
	}{
		{"all succeed", []error{nil, nil}, nil},
		{"one fails", []error{errA, nil}, []error{errA}},
		{"both fail", []error{errA, errB}, []error{errA, errB}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fan Fanout
			var pubs []*countingPublisher
			for _, err := range tt.errs {
				p := &countingPublisher{err: err}
				pubs = append(pubs, p)
				fan = append(fan, p)
			}

			err := fan.Publish(context.Background(), Event{Type: PollCreated, PollID: "abc"})

			// every publisher is tried even after a failure
			for i, p := range pubs {
				if p.calls != 1 {
					t.Errorf("Publisher %d called %d times, want 1", i, p.calls)
				}
			}
			if len(tt.wantErrs) == 0 && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("Expected error to include %v, got %v", want, err)
				}
			}
		})
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Publish(context.Background(), Event{}); err != nil {
		t.Errorf("Nop.Publish() error = %v", err)
	}
}

func TestEventJSON(t *testing.T) {
	ev := Event{
		Type:   PollVoted,
		PollID: "abc",
		Option: "1",
		Votes1: 4,
		Votes2: 5,
		At:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"type":"poll.voted","poll_id":"abc","option":"1","votes1":4,"votes2":5,"at":"2025-01-02T03:04:05Z"}`
	if string(body) != want {
		t.Errorf("Event JSON = %s, want %s", body, want)
	}
}

// TestAMQPPublisher needs a running broker; set TEST_RABBITMQ_URL to run it
func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set")
	}

	conn, err := DialAMQP(url)
	if err != nil {
		t.Fatalf("DialAMQP() error = %v", err)
	}
	defer conn.Close()

	queue := "poll-events-test"
	pub, err := NewAMQPPublisher(conn, queue)
	if err != nil {
		t.Fatalf("NewAMQPPublisher() error = %v", err)
	}
	defer pub.Close()

	// Drain anything left over from earlier runs
	if _, err := pub.ch.QueuePurge(queue, false); err != nil {
		t.Fatalf("Failed to purge queue: %v", err)
	}

	ev := Event{Type: PollDeleted, PollID: "abc", At: time.Now().UTC()}
	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	var msg struct {
		body        []byte
		contentType string
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		d, ok, err := pub.ch.Get(queue, true)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			msg.body, msg.contentType = d.Body, d.ContentType
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("No message delivered")
		}
		time.Sleep(50 * time.Millisecond)
	}

	if msg.contentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", msg.contentType)
	}
	var got Event
	if err := json.Unmarshal(msg.body, &got); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if got.Type != PollDeleted || got.PollID != "abc" {
		t.Errorf("Unexpected event: %+v", got)
	}
}
