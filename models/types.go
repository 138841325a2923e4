// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Result status constants
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Vote option selectors
const (
	Option1 = "1"
	Option2 = "2"
)

// Domain types

// Poll is a stored poll document. ID and Rev are assigned by the store;
// Rev changes on every write.
type Poll struct {
	ID      string `json:"id" db:"id"`
	Rev     string `json:"rev" db:"rev"`
	Title   string `json:"title" db:"title"`
	Option1 string `json:"option1" db:"option1"`
	Option2 string `json:"option2" db:"option2"`
	Votes1  int    `json:"votes1" db:"votes1"`
	Votes2  int    `json:"votes2" db:"votes2"`
}

// PollSummary is the listing projection of a Poll, without its revision.
type PollSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Option1 string `json:"option1"`
	Option2 string `json:"option2"`
	Votes1  int    `json:"votes1"`
	Votes2  int    `json:"votes2"`
}

// Summary projects p for listing.
func (p Poll) Summary() PollSummary {
	return PollSummary{
		ID:      p.ID,
		Title:   p.Title,
		Option1: p.Option1,
		Option2: p.Option2,
		Votes1:  p.Votes1,
		Votes2:  p.Votes2,
	}
}

// Response types

type Result struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResultResponse is the envelope every poll endpoint answers with.
type ResultResponse struct {
	Result Result `json:"result"`
}

type ListPollsResponse struct {
	Result Result        `json:"result"`
	Polls  []PollSummary `json:"polls"`
}

// OK returns the success envelope.
func OK() ResultResponse {
	return ResultResponse{Result: Result{Status: StatusOK}}
}

// Failure returns the error envelope with message.
func Failure(message string) ResultResponse {
	return ResultResponse{Result: Result{Status: StatusError, Message: message}}
}
