package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
)

var ErrClosed = errors.New("room closed")

const inboxSize = 64

// Room is one drawing. A single goroutine owns its editor; client messages,
// key repeat timers and paste results all run as functions on that loop.
type Room struct {
	drawingID string
	engine    *editor.Engine
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager

	inbox chan func()
	done  chan struct{}
	dirty bool
	seq   int64
}

// NewRoom creates a room with a blank drawing. Run must be started for it to
// process anything.
func NewRoom(drawingID string, opts editor.Options) *Room {
	r := &Room{
		drawingID: drawingID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
	}
	r.engine = editor.New(opts, r)
	r.engine.OnChange(func() { r.dirty = true })
	return r
}

func (r *Room) DrawingID() string { return r.drawingID }

// Run processes the room's work until Stop.
func (r *Room) Run() {
	for {
		select {
		case fn := <-r.inbox:
			fn()
			if r.dirty {
				r.dirty = false
				r.broadcastState()
			}
		case <-r.done:
			return
		}
	}
}

// Stop ends the loop. Work posted afterwards is dropped.
func (r *Room) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// Post implements clipboard.Poster.
func (r *Room) Post(fn func()) {
	r.post(fn)
}

func (r *Room) post(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	}
}

// AfterFunc implements selection.Scheduler. f runs on the room loop.
func (r *Room) AfterFunc(d time.Duration, f func()) selection.Timer {
	return time.AfterFunc(d, func() { r.post(f) })
}

// Do runs fn on the room loop and waits for its result.
func (r *Room) Do(ctx context.Context, fn func(e *editor.Engine) error) error {
	errc := make(chan error, 1)
	if !r.post(func() { errc <- fn(r.engine) }) {
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrClosed
	}
}

// Submit queues a client message for the loop.
func (r *Room) Submit(sender *Client, msg *Message) {
	if !r.post(func() { r.handle(sender, msg) }) {
		slog.Debug("message for closed room dropped", "drawing", r.drawingID, "type", msg.Type)
	}
}

// join and leave run on the loop.

func (r *Room) join(c *Client) {
	r.clients[c.ClientID] = c

	welcome, _ := json.Marshal(WelcomePayload{ClientID: c.ClientID, UserID: c.UserID, DrawingID: r.drawingID})
	c.Send(&Message{Type: TypeWelcome, DrawingID: r.drawingID, Payload: welcome})
	c.Send(r.stateMessage())
	if msg := r.presence.StateMessage(); msg != nil {
		c.Send(msg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
	})
	r.broadcast(&Message{Type: TypePresenceJoin, UserID: c.UserID, Payload: joinPayload}, c.ClientID)
}

// leave removes c and returns the number of clients left.
func (r *Room) leave(c *Client) int {
	if _, ok := r.clients[c.ClientID]; !ok {
		return len(r.clients)
	}
	delete(r.clients, c.ClientID)
	close(c.send)
	r.presence.Remove(c.UserID)

	leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: c.UserID})
	r.broadcast(&Message{Type: TypePresenceLeave, UserID: c.UserID, Payload: leavePayload}, "")
	return len(r.clients)
}

func (r *Room) handle(sender *Client, msg *Message) {
	if err := r.dispatch(sender, msg); err != nil {
		slog.Warn("message rejected", "type", msg.Type, "user", sender.UserID, "error", err)
		payload, _ := json.Marshal(ErrorPayload{Request: msg.Type, Message: err.Error()})
		sender.Send(&Message{Type: TypeError, Seq: msg.Seq, Payload: payload})
	}
}

func (r *Room) dispatch(sender *Client, msg *Message) error {
	e := r.engine
	switch msg.Type {
	case TypePresenceUpdate:
		return r.handlePresenceUpdate(sender, msg)

	case TypeMouse:
		var p editor.MouseInput
		if err := decode(msg, &p); err != nil {
			return err
		}
		ev, err := p.Event()
		if err != nil {
			return err
		}
		e.HandleMouse(ev)
	case TypeKey:
		var p editor.KeyInput
		if err := decode(msg, &p); err != nil {
			return err
		}
		ev, err := p.Event()
		if err != nil {
			return err
		}
		e.HandleKey(ev)
	case TypeDoubleClick:
		var p DoubleClickPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.DoubleClick(geometry.V(p.X, p.Y))
	case TypeToolSelect:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.SelectTool(p.Tool)

	case TypeUndo:
		e.Undo()
	case TypeRedo:
		e.Redo()
	case TypeCopy:
		_, err := e.Copy()
		return err
	case TypeCut:
		_, err := e.Cut()
		return err
	case TypePaste:
		return e.Paste(context.Background())
	case TypeSelectAll:
		e.SelectAll()
	case TypeDelete:
		e.Delete()
	case TypeResize:
		var p ResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.ResizeCanvas(p.Width, p.Height)
	case TypeMagnet:
		var p MagnetPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Anchor != "" {
			e.SetMagnetAnchor(geometry.ParseAnchor9(p.Anchor))
		}
		e.SetMagnet(p.On)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func decode(msg *Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}

func (r *Room) handlePresenceUpdate(sender *Client, msg *Message) error {
	var presence PresencePayload
	if err := decode(msg, &presence); err != nil {
		return err
	}
	presence.DisplayName = sender.DisplayName
	r.presence.Update(sender.UserID, &presence)

	outPayload, _ := json.Marshal(presence)
	r.broadcast(&Message{Type: TypePresenceUpdate, UserID: sender.UserID, Payload: outPayload}, sender.ClientID)
	return nil
}

func (r *Room) stateMessage() *Message {
	r.seq++
	payload, err := json.Marshal(StatePayload{View: r.engine.State(), Overlay: r.engine.Overlay()})
	if err != nil {
		slog.Error("marshal state", "error", err, "drawing", r.drawingID)
		payload = nil
	}
	return &Message{Type: TypeState, DrawingID: r.drawingID, Seq: r.seq, Payload: payload}
}

func (r *Room) broadcastState() {
	if len(r.clients) == 0 {
		return
	}
	r.broadcast(r.stateMessage(), "")
}

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}
