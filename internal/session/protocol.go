package session

import (
	"encoding/json"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Editor state, sent after every change
	TypeState = "state"

	// Input
	TypeMouse       = "input.mouse"
	TypeKey         = "input.key"
	TypeDoubleClick = "input.dblclick"
	TypeToolSelect  = "tool.select"

	// Edits
	TypeUndo      = "edit.undo"
	TypeRedo      = "edit.redo"
	TypeCopy      = "edit.copy"
	TypeCut       = "edit.cut"
	TypePaste     = "edit.paste"
	TypeSelectAll = "edit.selectAll"
	TypeDelete    = "edit.delete"
	TypeResize    = "edit.resize"
	TypeMagnet    = "edit.magnet"
)

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Tool        string     `json:"tool,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	DrawingID string `json:"drawingId"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

// StatePayload carries the editor view and the overlay to draw over the
// composite image.
type StatePayload struct {
	View    editor.View          `json:"view"`
	Overlay []editor.DrawCommand `json:"overlay"`
}

// DoubleClickPayload is the payload for input.dblclick messages
type DoubleClickPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ToolPayload struct {
	Tool editor.Tool `json:"tool"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type MagnetPayload struct {
	On     bool   `json:"on"`
	Anchor string `json:"anchor,omitempty"`
}
