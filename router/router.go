// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/handlers"
	"github.com/danielhkuo/quickpoll/middleware"
	"github.com/danielhkuo/quickpoll/pages"
	"github.com/danielhkuo/quickpoll/polls"
)

// NewRouter registers every route. hub may be nil, in which case the live
// feed is not served.
func NewRouter(svc *polls.Service, hub *events.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll operations
	mux.HandleFunc("GET /polls/list", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("POST /polls/create", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/vote/{pollid}", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("DELETE /polls/delete/{pollid}", middleware.WithLogging(pollHandler.DeletePoll))

	// Live feed
	if hub != nil {
		liveHandler := handlers.NewLiveHandler(hub, svc)
		mux.HandleFunc("GET /polls/live", middleware.WithLogging(liveHandler.Subscribe))
	}

	// Site pages, including the root
	pages.Register(mux)

	return mux
}
