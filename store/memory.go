// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/quickpoll/models"
)

// MemoryStore keeps polls in process memory. It is meant for tests and local
// runs; its revision checks behave like the networked backends.
type MemoryStore struct {
	mu    sync.RWMutex
	polls map[string]models.Poll
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{polls: make(map[string]models.Poll)}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polls := make([]models.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		polls = append(polls, p)
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].ID < polls[j].ID })
	return polls, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[id]
	if !ok {
		return models.Poll{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Create(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev("")
	if err != nil {
		return models.Poll{}, err
	}
	p.ID = NewID()
	p.Rev = rev

	s.mu.Lock()
	s.polls[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) Update(ctx context.Context, p models.Poll) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.polls[p.ID]
	if !ok {
		return models.Poll{}, ErrNotFound
	}
	if cur.Rev != p.Rev {
		return models.Poll{}, ErrConflict
	}
	rev, err := NextRev(cur.Rev)
	if err != nil {
		return models.Poll{}, err
	}
	p.Rev = rev
	s.polls[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id, rev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.polls[id]
	if !ok {
		return ErrNotFound
	}
	if cur.Rev != rev {
		return ErrConflict
	}
	delete(s.polls, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
