// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickpoll/models"
)

// SQLStore keeps polls in the poll table created by db.CreateSchema. The
// rev column plays the part of the document revision.
type SQLStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSQLStore wraps an open connection. driverName selects the placeholder
// style ("postgres" or "sqlite").
func NewSQLStore(conn *sql.DB, driverName string, timeout time.Duration) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(conn, driverName), timeout: timeout}
}

func (s *SQLStore) List(ctx context.Context) ([]models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	polls := make([]models.Poll, 0)
	err := s.db.SelectContext(ctx, &polls, `
		SELECT id, rev, title, option1, option2, votes1, votes2
		FROM poll
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var p models.Poll
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`
		SELECT id, rev, title, option1, option2, votes1, votes2
		FROM poll
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	return p, nil
}

func (s *SQLStore) Create(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev("")
	if err != nil {
		return models.Poll{}, err
	}
	p.ID = NewID()
	p.Rev = rev

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO poll (id, rev, title, option1, option2, votes1, votes2, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.Rev, p.Title, p.Option1, p.Option2, p.Votes1, p.Votes2, time.Now().UTC())
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}
	return p, nil
}

func (s *SQLStore) Update(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev(p.Rev)
	if err != nil {
		return models.Poll{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE poll
		SET rev = ?, title = ?, option1 = ?, option2 = ?, votes1 = ?, votes2 = ?
		WHERE id = ? AND rev = ?
	`), rev, p.Title, p.Option1, p.Option2, p.Votes1, p.Votes2, p.ID, p.Rev)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to update poll: %w", err)
	}
	if err := s.checkWritten(ctx, res, p.ID); err != nil {
		return models.Poll{}, err
	}
	p.Rev = rev
	return p, nil
}

func (s *SQLStore) Delete(ctx context.Context, id, rev string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM poll WHERE id = ? AND rev = ?
	`), id, rev)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return s.checkWritten(ctx, res, id)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// checkWritten tells apart a stale revision from a missing row when a
// revision-guarded statement touched nothing.
func (s *SQLStore) checkWritten(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var count int
	err = s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM poll WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to query poll: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
