// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls as revisioned documents.

Every document carries a revision of the form "N-<32 hex>", where N counts
writes. Update and Delete take the revision the caller last read and fail
with ErrConflict if the stored one differs, so two writers that read the
same revision cannot both succeed. A missing document yields ErrNotFound.

# Backends

	memory    MemoryStore, map guarded by a mutex
	sqlite    SQLStore on modernc.org/sqlite
	postgres  SQLStore on lib/pq
	mongo     MongoStore, filtered ReplaceOne/DeleteOne on {_id, _rev}
	redis     RedisStore, one hash per poll under WATCH

Open picks a backend from the config:

	st, err := store.Open(ctx, cfg)
*/
package store
