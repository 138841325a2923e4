// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import "fmt"

// ValidationError reports a missing or empty required input. It is raised
// before the store is touched.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// NotFoundError reports that the store has no poll with the given id.
type NotFoundError struct {
	ID  string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("poll %q not found: %v", e.ID, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a write the store rejected, usually because the
// revision it carried was no longer current.
type ConflictError struct {
	ID  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("poll %q: %v", e.ID, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// StoreError wraps any other store failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
