// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickpoll/events"
	"github.com/danielhkuo/quickpoll/models"
	"github.com/danielhkuo/quickpoll/polls"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub *events.Hub
	svc *polls.Service
}

func NewLiveHandler(hub *events.Hub, svc *polls.Service) *LiveHandler {
	return &LiveHandler{hub: hub, svc: svc}
}

// Subscribe handles GET /polls/live
// Sends the current poll list, then every poll event until the client leaves.
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := events.NewWebsocketClient(conn)
	snapshot := func() ([]byte, error) {
		list, err := h.svc.List(r.Context())
		if err != nil {
			return nil, err
		}
		return json.Marshal(models.ListPollsResponse{
			Result: models.Result{Status: models.StatusOK},
			Polls:  list,
		})
	}
	if err := h.hub.Register(client, snapshot); err != nil {
		slog.Warn("live client not registered", "error", err)
		client.Close()
		return
	}
	defer h.hub.Unregister(client)

	// Keep the connection open until the client goes away
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}
}
