// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/polls"
)

type PollHandler struct {
	svc *polls.Service
}

func NewPollHandler(svc *polls.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// ListPolls handles GET /polls/list
// Store failures are reported inside a 200 response, as clients expect.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusOK, errorMessage(err))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{
		Result: models.Result{Status: models.StatusOK},
		Polls:  list,
	})
}

// CreatePoll handles POST /polls/create
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	form, err := middleware.ParseFormBody(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	// Only fields actually submitted are passed on, so a missing field and
	// an empty one are told apart in validation errors.
	fields := make(map[string]string, len(polls.CreateFields))
	for _, name := range polls.CreateFields {
		if form.Has(name) {
			fields[name] = form.Get(name)
		}
	}

	id, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultResponse{
		Result: models.Result{Status: models.StatusOK, ID: id},
	})
}

// Vote handles POST /polls/vote/{pollid}?option=1|2
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("pollid")

	// An absent option is an error; an empty one is voted like any unknown value.
	query := r.URL.Query()
	if !query.Has("option") {
		writeServiceError(w, &polls.ValidationError{Field: "option"})
		return
	}

	if err := h.svc.Vote(r.Context(), pollID, query.Get("option")); err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OK())
}

// DeletePoll handles DELETE /polls/delete/{pollid}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("pollid")

	if err := h.svc.Delete(r.Context(), pollID); err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OK())
}

// writeServiceError maps a service error onto its HTTP status
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *polls.ValidationError
		notFoundErr   *polls.NotFoundError
		conflictErr   *polls.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		middleware.ErrorResponse(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		middleware.ErrorResponse(w, http.StatusNotFound, errorMessage(err))
	case errors.As(err, &conflictErr):
		middleware.ErrorResponse(w, http.StatusConflict, errorMessage(err))
	default:
		slog.Error("poll operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, errorMessage(err))
	}
}

// errorMessage returns the store's own message for wrapped store errors
func errorMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
