// Package session serves live drawing sessions over websockets. Each drawing
// is a Room whose editor runs on a single goroutine.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
)

type joinRequest struct {
	client *Client
	done   chan error
}

// Hub routes connections to the room of their drawing. Joins and leaves are
// serialized by Run so a room never closes under a client that is joining it.
type Hub struct {
	opts editor.Options

	mu         sync.RWMutex
	rooms      map[string]*Room // drawingID -> room
	register   chan joinRequest
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub whose rooms start with a blank drawing configured by
// opts.
func NewHub(opts editor.Options) *Hub {
	return &Hub{
		opts:       opts,
		rooms:      make(map[string]*Room),
		register:   make(chan joinRequest),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case req := <-h.register:
			req.done <- h.addClient(req.client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			return
		}
	}
}

// Stop ends the hub loop and every room.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		room.Stop()
		delete(h.rooms, id)
	}
}

// Join adds client to the room of its drawing, opening the room if needed.
// On success the welcome and initial state are already queued for the client.
func (h *Hub) Join(ctx context.Context, client *Client) error {
	req := joinRequest{client: client, done: make(chan error, 1)}
	select {
	case h.register <- req:
	case <-h.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-h.stop:
		return ErrClosed
	}
}

// Leave removes client from its room. The last client to leave closes it.
func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Open returns the room of drawingID, starting it if needed.
func (h *Hub) Open(drawingID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[drawingID]
	if !ok {
		room = NewRoom(drawingID, h.opts)
		h.rooms[drawingID] = room
		go room.Run()
		slog.Info("room opened", "drawing", drawingID)
	}
	return room
}

// Lookup returns the running room of drawingID.
func (h *Hub) Lookup(drawingID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[drawingID]
	return room, ok
}

func (h *Hub) addClient(client *Client) error {
	room := h.Open(client.DrawingID)
	err := room.Do(context.Background(), func(*editor.Engine) error {
		room.join(client)
		return nil
	})
	if err != nil {
		slog.Warn("join failed", "user", client.UserID, "drawing", client.DrawingID, "error", err)
		return err
	}
	client.room = room
	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
	return nil
}

func (h *Hub) removeClient(client *Client) {
	room := client.room
	if room == nil {
		return
	}
	left := -1
	err := room.Do(context.Background(), func(*editor.Engine) error {
		left = room.leave(client)
		return nil
	})
	if err != nil {
		return
	}

	if left == 0 {
		h.mu.Lock()
		if h.rooms[client.DrawingID] == room {
			delete(h.rooms, client.DrawingID)
		}
		h.mu.Unlock()
		room.Stop()
		slog.Info("room closed", "drawing", client.DrawingID)
	}
	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}
