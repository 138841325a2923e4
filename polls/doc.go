// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package polls implements list, create, vote and delete on top of a
// store.Store and reports failures as typed errors: ValidationError,
// NotFoundError, ConflictError and StoreError.
package polls
