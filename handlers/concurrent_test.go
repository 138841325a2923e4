// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickpoll/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes on one poll either
// land or are rejected with 409, and that no landed vote is lost
func TestConcurrentVotes(t *testing.T) {
	handler, st := newTestHandler()
	p := testutil.CreateTestPoll(t, st, "Concurrent Poll", "Option A", "Option B")

	numVoters := 10

	// Track results
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			option := "1"
			if voterIdx%2 == 1 {
				option = "2"
			}
			req := httptest.NewRequest("POST", "/polls/vote/"+p.ID+"?option="+option, nil)
			req.SetPathValue("pollid", p.ID)
			w := httptest.NewRecorder()

			handler.Vote(w, req)

			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()+conflictCount.Load()) != numVoters {
		t.Errorf("Expected %d responses, got %d ok and %d conflicts", numVoters, successCount.Load(), conflictCount.Load())
	}
	if successCount.Load() == 0 {
		t.Error("Expected at least one vote to land")
	}

	// Verify stored counters match the accepted votes
	got, err := st.Get(t.Context(), p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Votes1+got.Votes2 != int(successCount.Load()) {
		t.Errorf("Expected %d counted votes, got %d/%d", successCount.Load(), got.Votes1, got.Votes2)
	}
}

// TestConcurrentCreates verifies that parallel creations never collide on id
func TestConcurrentCreates(t *testing.T) {
	handler, st := newTestHandler()

	numPolls := 20
	var wg sync.WaitGroup
	for i := 0; i < numPolls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := testutil.MakeFormRequest("POST", "/polls/create", map[string][]string{
				"title":   {"Parallel"},
				"option1": {"Yes"},
				"option2": {"No"},
			})
			w := httptest.NewRecorder()
			handler.CreatePoll(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("Create failed: %d - %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	list, err := st.List(t.Context())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != numPolls {
		t.Errorf("Expected %d polls, got %d", numPolls, len(list))
	}
}
