// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	// ErrHubFull is returned by Hub.Publish when the broadcast buffer is full.
	ErrHubFull = errors.New("event hub buffer full")

	// ErrHubClosed is returned by Hub.Register once Run has stopped.
	ErrHubClosed = errors.New("event hub closed")
)

const hubBuffer = 64

// Client is one live-feed connection.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type websocketClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebsocketClient wraps conn. Writes are serialized so the hub and the
// connection handler may both write.
func NewWebsocketClient(conn *websocket.Conn) Client {
	return &websocketClient{conn: conn}
}

func (c *websocketClient) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *websocketClient) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *websocketClient) Close() error {
	return c.conn.Close()
}

type registration struct {
	client   Client
	snapshot func() ([]byte, error)
	errc     chan error
}

// Hub fans poll events out to live-feed clients. All client bookkeeping
// happens on the Run goroutine.
type Hub struct {
	clients    map[Client]bool
	register   chan registration
	unregister chan Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		register:   make(chan registration),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, hubBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			return
		case reg := <-h.register:
			err := h.greet(reg)
			if err == nil {
				h.clients[reg.client] = true
			}
			reg.errc <- err
		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				client.Close()
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					slog.Warn("live client write failed", "error", err)
					client.Close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// greet writes the registration snapshot, if any. Broadcasts wait while it
// runs, so the snapshot is always the client's first message.
func (h *Hub) greet(reg registration) error {
	if reg.snapshot == nil {
		return nil
	}
	msg, err := reg.snapshot()
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}
	if err := reg.client.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Register adds client after sending it the message built by snapshot, which
// may be nil. Events published after Register returns reach the client after
// the snapshot. On error the client is not registered. Once Run has stopped,
// Register closes the client and returns ErrHubClosed.
func (h *Hub) Register(client Client, snapshot func() ([]byte, error)) error {
	reg := registration{client: client, snapshot: snapshot, errc: make(chan error, 1)}
	select {
	case h.register <- reg:
		return <-reg.errc
	case <-h.done:
		client.Close()
		return ErrHubClosed
	}
}

func (h *Hub) Unregister(client Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues ev for broadcast without waiting for slow clients.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrHubFull
	}
}
