// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/quickpoll/models"
)

// Redis keys: one hash per poll plus a set indexing all poll ids.
const (
	redisIndexKey  = "polls"
	redisKeyPrefix = "poll:"
)

func pollKey(id string) string {
	return redisKeyPrefix + id
}

// RedisStore keeps each poll in a hash. Revision checks run under WATCH so
// a concurrent write aborts the transaction.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, timeout: timeout}
}

func (s *RedisStore) List(ctx context.Context) ([]models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	sort.Strings(ids)

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, pollKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}

	polls := make([]models.Poll, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// deleted between SMEMBERS and HGETALL
		if len(fields) == 0 {
			continue
		}
		p, err := pollFromHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Poll, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, pollKey(id)).Result()
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	if len(fields) == 0 {
		return models.Poll{}, ErrNotFound
	}
	return pollFromHash(id, fields)
}

func (s *RedisStore) Create(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev("")
	if err != nil {
		return models.Poll{}, err
	}
	p.ID = NewID()
	p.Rev = rev

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, pollKey(p.ID), pollHash(p))
		pipe.SAdd(ctx, redisIndexKey, p.ID)
		return nil
	})
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Update(ctx context.Context, p models.Poll) (models.Poll, error) {
	rev, err := NextRev(p.Rev)
	if err != nil {
		return models.Poll{}, err
	}
	next := p
	next.Rev = rev
	key := pollKey(p.ID)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := checkRev(ctx, tx, key, p.Rev); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, pollHash(next))
			return nil
		})
		return err
	}, key)
	if err != nil {
		return models.Poll{}, txErr("update", err)
	}
	return next, nil
}

func (s *RedisStore) Delete(ctx context.Context, id, rev string) error {
	key := pollKey(id)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := checkRev(ctx, tx, key, rev); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, redisIndexKey, id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return txErr("delete", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func checkRev(ctx context.Context, tx *redis.Tx, key, rev string) error {
	cur, err := tx.HGet(ctx, key, "rev").Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if cur != rev {
		return ErrConflict
	}
	return nil
}

func txErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, redis.TxFailedErr):
		// watched key changed before EXEC
		return ErrConflict
	default:
		return fmt.Errorf("failed to %s poll: %w", op, err)
	}
}

func pollHash(p models.Poll) map[string]interface{} {
	return map[string]interface{}{
		"rev":     p.Rev,
		"title":   p.Title,
		"option1": p.Option1,
		"option2": p.Option2,
		"votes1":  p.Votes1,
		"votes2":  p.Votes2,
	}
}

func pollFromHash(id string, fields map[string]string) (models.Poll, error) {
	votes1, err := strconv.Atoi(fields["votes1"])
	if err != nil {
		return models.Poll{}, fmt.Errorf("poll %s: bad votes1: %w", id, err)
	}
	votes2, err := strconv.Atoi(fields["votes2"])
	if err != nil {
		return models.Poll{}, fmt.Errorf("poll %s: bad votes2: %w", id, err)
	}
	return models.Poll{
		ID:      id,
		Rev:     fields["rev"],
		Title:   fields["title"],
		Option1: fields["option1"],
		Option2: fields["option2"],
		Votes1:  votes1,
		Votes2:  votes2,
	}, nil
}
