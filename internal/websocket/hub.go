// Package websocket pushes session lifecycle events to connected shells.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"go-admin-panel/internal/event"
)

// Hub fans bus events out to every connected client. Only Run touches the
// client set.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	bus        event.Bus

	// snapshot, when set, produces the first message a new client receives.
	snapshot func() event.Event
}

func NewHub(bus event.Bus, snapshot func() event.Event) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		bus:        bus,
		snapshot:   snapshot,
	}
}

// Run serves the hub until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()

	defer func() {
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.snapshot != nil {
				h.deliver(client, h.snapshot())
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			for client := range h.clients {
				h.deliver(client, e)
			}
		}
	}
}

// deliver queues e for client, dropping the client if it cannot keep up.
func (h *Hub) deliver(client *Client, e event.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event", "type", e.Type, "error", err)
		return
	}

	select {
	case client.send <- message:
	default:
		slog.Warn("event client too slow, disconnecting", "remote", client.remote)
		close(client.send)
		delete(h.clients, client)
	}
}
