// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/store"
	"github.com/danielhkuo/quickpoll/testutil"
)

func newTestService() (*Service, *store.MemoryStore, *testutil.RecordingPublisher) {
	st := store.NewMemoryStore()
	pub := &testutil.RecordingPublisher{}
	return NewService(st, pub), st, pub
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		wantField string // empty when creation should succeed
		want      models.Poll
	}{
		{
			name:   "valid poll",
			fields: map[string]string{"title": "Lunch", "option1": "Pizza", "option2": "Sushi"},
			want:   models.Poll{Title: "Lunch", Option1: "Pizza", Option2: "Sushi"},
		},
		{
			name:   "surrounding whitespace trimmed",
			fields: map[string]string{"title": "  Lunch\n", "option1": "\tPizza", "option2": "Sushi  "},
			want:   models.Poll{Title: "Lunch", Option1: "Pizza", Option2: "Sushi"},
		},
		{
			name:   "encoded plus kept as plus",
			fields: map[string]string{"title": "C%2B%2B+or+Go", "option1": "C%2B%2B", "option2": "Go"},
			want:   models.Poll{Title: "C++ or Go", Option1: "C++", Option2: "Go"},
		},
		{
			name:   "plus and percent encoding decoded",
			fields: map[string]string{"title": "Best+pet%3F", "option1": "Cats%20%26%20kittens", "option2": "Dogs"},
			want:   models.Poll{Title: "Best pet?", Option1: "Cats & kittens", Option2: "Dogs"},
		},
		{
			name:   "malformed escape kept as text",
			fields: map[string]string{"title": "100%", "option1": "Yes", "option2": "No"},
			want:   models.Poll{Title: "100%", Option1: "Yes", Option2: "No"},
		},
		{
			name:      "empty title",
			fields:    map[string]string{"title": "", "option1": "A", "option2": "B"},
			wantField: "title",
		},
		{
			name:      "whitespace-only option1",
			fields:    map[string]string{"title": "T", "option1": "   ", "option2": "B"},
			wantField: "option1",
		},
		{
			name:      "encoded whitespace option2",
			fields:    map[string]string{"title": "T", "option1": "A", "option2": "+%20"},
			wantField: "option2",
		},
		{
			name:      "missing option2",
			fields:    map[string]string{"title": "T", "option1": "A"},
			wantField: "option2",
		},
		{
			name:      "nothing submitted",
			fields:    map[string]string{},
			wantField: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, pub := newTestService()
			ctx := context.Background()

			id, err := svc.Create(ctx, tt.fields)

			if tt.wantField != "" {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("Expected ValidationError, got %v", err)
				}
				if validationErr.Field != tt.wantField {
					t.Errorf("Expected field %q, got %q", tt.wantField, validationErr.Field)
				}
				// validation happens before the store is touched
				list, _ := st.List(ctx)
				if len(list) != 0 {
					t.Errorf("Expected no stored polls, got %d", len(list))
				}
				if len(pub.Events()) != 0 {
					t.Error("Expected no events for rejected input")
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			got, err := st.Get(ctx, id)
			if err != nil {
				t.Fatalf("Failed to load created poll: %v", err)
			}
			if got.Title != tt.want.Title || got.Option1 != tt.want.Option1 || got.Option2 != tt.want.Option2 {
				t.Errorf("Stored poll = %+v, want %+v", got, tt.want)
			}
			if got.Votes1 != 0 || got.Votes2 != 0 {
				t.Errorf("Expected zero votes, got %d/%d", got.Votes1, got.Votes2)
			}

			evs := pub.Events()
			if len(evs) != 1 || evs[0].Type != events.PollCreated || evs[0].PollID != id {
				t.Errorf("Expected one poll.created event, got %+v", evs)
			}
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	svc := NewService(testutil.FailingStore{Err: errors.New("disk full")}, nil)

	_, err := svc.Create(context.Background(), map[string]string{"title": "T", "option1": "A", "option2": "B"})

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
	if storeErr.Err.Error() != "disk full" {
		t.Errorf("Expected store message to be kept, got %q", storeErr.Err)
	}
}

func TestList(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", list)
	}

	p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")
	testutil.SetVotes(t, st, p, 2, 7)

	list, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := models.PollSummary{ID: p.ID, Title: "Lunch", Option1: "Pizza", Option2: "Sushi", Votes1: 2, Votes2: 7}
	if len(list) != 1 || list[0] != want {
		t.Errorf("List() = %+v, want [%+v]", list, want)
	}
}

func TestListStoreFailure(t *testing.T) {
	svc := NewService(testutil.FailingStore{Err: errors.New("connection refused")}, nil)

	_, err := svc.List(context.Background())

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
}

func TestVote(t *testing.T) {
	tests := []struct {
		name       string
		option     string
		wantVotes1 int
		wantVotes2 int
	}{
		{"option 1", "1", 4, 5},
		{"option 2", "2", 3, 6},
		{"unknown option counts nothing", "3", 3, 5},
		{"empty option counts nothing", "", 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, pub := newTestService()
			ctx := context.Background()

			p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")
			p = testutil.SetVotes(t, st, p, 3, 5)

			if err := svc.Vote(ctx, p.ID, tt.option); err != nil {
				t.Fatalf("Vote() error = %v", err)
			}

			got, err := st.Get(ctx, p.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Votes1 != tt.wantVotes1 || got.Votes2 != tt.wantVotes2 {
				t.Errorf("Votes = %d/%d, want %d/%d", got.Votes1, got.Votes2, tt.wantVotes1, tt.wantVotes2)
			}
			if got.Rev == p.Rev {
				t.Error("Expected a new revision after voting")
			}

			evs := pub.Events()
			if len(evs) != 1 || evs[0].Type != events.PollVoted {
				t.Fatalf("Expected one poll.voted event, got %+v", evs)
			}
			if evs[0].Votes1 != tt.wantVotes1 || evs[0].Votes2 != tt.wantVotes2 || evs[0].Option != tt.option {
				t.Errorf("Event = %+v", evs[0])
			}
		})
	}
}

func TestVoteValidation(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Vote(context.Background(), "", "1")

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if validationErr.Field != "pollid" {
		t.Errorf("Expected field %q, got %q", "pollid", validationErr.Field)
	}
}

func TestVoteNotFound(t *testing.T) {
	svc, _, pub := newTestService()

	err := svc.Vote(context.Background(), "no-such-poll", "1")

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected the store error to be wrapped, got %v", err)
	}
	if len(pub.Events()) != 0 {
		t.Error("Expected no events for a missing poll")
	}
}

// conflictingStore lets a competing writer slip in between Get and Update
type conflictingStore struct {
	*store.MemoryStore
	once sync.Once
}

func (s *conflictingStore) Get(ctx context.Context, id string) (models.Poll, error) {
	p, err := s.MemoryStore.Get(ctx, id)
	if err != nil {
		return p, err
	}
	s.once.Do(func() {
		competing := p
		competing.Votes2++
		s.MemoryStore.Update(ctx, competing)
	})
	return p, nil
}

func TestVoteConflict(t *testing.T) {
	st := &conflictingStore{MemoryStore: store.NewMemoryStore()}
	svc := NewService(st, nil)
	ctx := context.Background()
	p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")

	err := svc.Vote(ctx, p.ID, "1")

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected the store error to be wrapped, got %v", err)
	}

	// only the competing write landed
	got, _ := st.MemoryStore.Get(ctx, p.ID)
	if got.Votes1 != 0 || got.Votes2 != 1 {
		t.Errorf("Votes = %d/%d, want 0/1", got.Votes1, got.Votes2)
	}
}

// TestConcurrentVotes verifies that racing voters never lose an update:
// every successful vote is counted and every other one reports a conflict
func TestConcurrentVotes(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")

	const voters = 20
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Vote(ctx, p.ID, "1")
			var conflictErr *ConflictError
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.As(err, &conflictErr):
				conflictCount.Add(1)
			default:
				t.Errorf("Unexpected vote error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load()+conflictCount.Load() != voters {
		t.Errorf("Expected %d outcomes, got %d successes and %d conflicts", voters, successCount.Load(), conflictCount.Load())
	}
	got, err := st.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Votes1 != int(successCount.Load()) {
		t.Errorf("Expected votes1 = %d successful votes, got %d", successCount.Load(), got.Votes1)
	}
}

func TestDelete(t *testing.T) {
	svc, st, pub := newTestService()
	ctx := context.Background()
	p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := st.Get(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected poll to be gone, got %v", err)
	}

	// deleting again finds nothing
	err := svc.Delete(ctx, p.ID)
	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}

	evs := pub.Events()
	if len(evs) != 1 || evs[0].Type != events.PollDeleted || evs[0].PollID != p.ID {
		t.Errorf("Expected one poll.deleted event, got %+v", evs)
	}
}

func TestDeleteValidation(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), "")

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

// revisionBumpingStore changes the revision between Get and Delete
type revisionBumpingStore struct {
	*store.MemoryStore
}

func (s revisionBumpingStore) Delete(ctx context.Context, id, rev string) error {
	p, err := s.MemoryStore.Get(ctx, id)
	if err == nil {
		s.MemoryStore.Update(ctx, p)
	}
	return s.MemoryStore.Delete(ctx, id, rev)
}

func TestDeleteConflict(t *testing.T) {
	st := revisionBumpingStore{MemoryStore: store.NewMemoryStore()}
	svc := NewService(st, nil)
	p := testutil.CreateTestPoll(t, st, "Lunch", "Pizza", "Sushi")

	err := svc.Delete(context.Background(), p.ID)

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	st := store.NewMemoryStore()
	pub := &testutil.RecordingPublisher{Err: errors.New("broker down")}
	svc := NewService(st, pub)

	id, err := svc.Create(context.Background(), map[string]string{"title": "T", "option1": "A", "option2": "B"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Vote(context.Background(), id, "2"); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if len(pub.Events()) != 2 {
		t.Errorf("Expected 2 publish attempts, got %d", len(pub.Events()))
	}
}
