// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db prepares storage for polls.

CreateSchema creates the poll table on PostgreSQL or SQLite:

	poll (id, rev, title, option1, option2, votes1, votes2, created_at)

Both counters default to zero and are checked to be non-negative.

EnsureCollection creates the Mongo collection if it is missing.

Both are idempotent and run at startup from store.Open.
*/
package db
