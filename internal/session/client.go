package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendQueue  = 256
)

var ErrBadMessage = errors.New("bad message")

// Client is one websocket connection to a drawing. Its send queue is written
// and closed only by the room loop.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	room *Room

	UserID      string
	DisplayName string
	DrawingID   string
	ClientID    string
}

func NewClient(conn *websocket.Conn, userID, displayName, drawingID, clientID string) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, sendQueue),
		UserID:      userID,
		DisplayName: displayName,
		DrawingID:   drawingID,
		ClientID:    clientID,
	}
}

// Serve joins conn to drawingID and pumps messages until the connection or ctx
// ends. The client leaves the room before Serve returns.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID, displayName, drawingID string) error {
	c := NewClient(conn, userID, displayName, drawingID, uuid.NewString())
	if err := h.Join(ctx, c); err != nil {
		conn.Close(websocket.StatusTryAgainLater, "drawing unavailable")
		return fmt.Errorf("join %s: %w", drawingID, err)
	}
	defer h.Leave(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.writePump(ctx)
	c.readPump(ctx)
	return nil
}

// readPump hands every well-formed message to the room. It returns when the
// connection fails.
func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		msg, err := c.decode(data)
		if err != nil {
			slog.Warn("invalid message", "error", err, "user", c.UserID)
			continue
		}
		c.room.Submit(c, msg)
	}
}

// decode parses an envelope and stamps it with the sender's identity, which
// clients cannot choose.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrBadMessage)
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.DrawingID = c.DrawingID
	return &msg, nil
}

// writePump drains the send queue onto the connection and keeps it alive with
// pings. A closed queue means the room dropped the client.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg without blocking the room loop. A client too slow to keep
// up loses messages; the next state broadcast supersedes them.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send queue full, dropping message", "user", c.UserID, "type", msg.Type)
	}
}
