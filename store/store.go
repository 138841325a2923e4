// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickpoll/models"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document update conflict")
)

// Store is a revisioned document store for polls. Writes must carry the
// revision of the document they replace; a stale revision yields ErrConflict.
type Store interface {
	List(ctx context.Context) ([]models.Poll, error)
	Get(ctx context.Context, id string) (models.Poll, error)
	// Create assigns ID and Rev and returns the stored poll.
	Create(ctx context.Context, p models.Poll) (models.Poll, error)
	// Update replaces the poll with id p.ID if p.Rev is still current.
	Update(ctx context.Context, p models.Poll) (models.Poll, error)
	Delete(ctx context.Context, id, rev string) error
	Close() error
}

// NewID returns a fresh document ID: 32 lowercase hex characters.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NextRev returns the revision following prev. An empty prev starts a new
// document at generation 1.
func NextRev(prev string) (string, error) {
	gen := 0
	if prev != "" {
		head, _, ok := strings.Cut(prev, "-")
		if !ok {
			return "", fmt.Errorf("malformed revision %q", prev)
		}
		n, err := strconv.Atoi(head)
		if err != nil {
			return "", fmt.Errorf("malformed revision %q: %w", prev, err)
		}
		gen = n
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate revision: %w", err)
	}
	return strconv.Itoa(gen+1) + "-" + hex.EncodeToString(b), nil
}

// withTimeout bounds a single store call. A zero timeout leaves ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
