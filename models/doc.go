// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the poll document and the JSON response envelopes.

  - Poll: stored document, including its revision
  - PollSummary: listing projection without the revision
  - ResultResponse, ListPollsResponse: response envelopes
*/
package models
