// Package clipboard copies selection content between selection tools.
//
// Content is held PNG-encoded so a paste always goes through a decode step.
// The decode runs off the editor goroutine; its result is posted back and
// realized there.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/typeid"
)

var (
	ErrEmpty   = errors.New("clipboard is empty")
	ErrBusy    = errors.New("paste already in progress")
	ErrDecode  = errors.New("clipboard content unavailable")
	ErrRefused = errors.New("paste target refused the content")
)

// Clip is one copied selection.
type Clip struct {
	ID       string
	Shape    selection.Shape
	Data     []byte // PNG
	Size     image.Point
	Position geometry.Vec2
}

// Source is a selection that can be copied from.
type Source interface {
	State() selection.State
	Snapshot() (selection.Snapshot, bool)
	Delete() bool
}

// Target is a selection tool that can receive pasted content.
type Target interface {
	Active() bool
	Load(shape selection.Shape, content *image.NRGBA, pos geometry.Vec2) bool
	Stamp(shape selection.Shape, content *image.NRGBA, pos geometry.Vec2) bool
}

// Tools resolves paste targets and switches the active tool.
type Tools interface {
	Selection(kind selection.Kind) Target
	Activate(kind selection.Kind)
}

// Poster runs fn on the goroutine that owns the editor.
type Poster interface {
	Post(fn func())
}

// Manager holds the clipboard slot and runs pastes.
type Manager struct {
	tools   Tools
	poster  Poster
	pasteAt geometry.Vec2

	clip      *Clip
	pending   bool
	gen       int
	cancel    context.CancelFunc
	listeners []func(bool)
}

// NewManager creates an empty clipboard. Fresh paste selections appear at
// pasteAt.
func NewManager(tools Tools, poster Poster, pasteAt geometry.Vec2) *Manager {
	return &Manager{tools: tools, poster: poster, pasteAt: pasteAt}
}

func (m *Manager) HasData() bool { return m.clip != nil }

func (m *Manager) Pending() bool { return m.pending }

// Clip returns the clipboard content, nil when empty.
func (m *Manager) Clip() *Clip { return m.clip }

// OnData registers an observer of HasData changes.
func (m *Manager) OnData(fn func(bool)) { m.listeners = append(m.listeners, fn) }

// Copy stores the Idle selection of src. It reports false when there is
// nothing to copy.
func (m *Manager) Copy(src Source) (bool, error) {
	if src.State() != selection.Idle {
		return false, nil
	}
	snap, ok := src.Snapshot()
	if !ok {
		return false, nil
	}
	data, err := surface.Encode(snap.Content)
	if err != nil {
		return false, fmt.Errorf("copy selection: %w", err)
	}
	had := m.HasData()
	m.clip = &Clip{
		ID:       typeid.NewClipID(),
		Shape:    snap.Shape,
		Data:     data,
		Size:     snap.Content.Bounds().Size(),
		Position: snap.Position,
	}
	slog.Debug("clipboard copy", "clip", m.clip.ID, "kind", snap.Shape.Kind(), "bytes", len(data))
	if !had {
		for _, fn := range m.listeners {
			fn(true)
		}
	}
	return true, nil
}

// Cut copies the selection and then deletes it.
func (m *Manager) Cut(src Source) (bool, error) {
	ok, err := m.Copy(src)
	if !ok || err != nil {
		return ok, err
	}
	src.Delete()
	return true, nil
}

// Paste decodes the clip and realizes it through the Poster. If the clip's
// tool has an active selection the content is drawn onto the surface at the
// position it was copied from; otherwise that tool is activated and a new
// Idle selection appears at the paste position. done, when not nil, receives
// the outcome on the editor goroutine.
func (m *Manager) Paste(ctx context.Context, done func(error)) error {
	if m.clip == nil {
		return ErrEmpty
	}
	if m.pending {
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	m.pending = true
	m.gen++
	m.cancel = cancel
	gen, clip := m.gen, *m.clip

	go func() {
		img, err := surface.Decode(clip.Data)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		m.poster.Post(func() {
			if gen != m.gen {
				return
			}
			m.finish()
			if err != nil {
				err = fmt.Errorf("%w: %w", ErrDecode, err)
				slog.Warn("paste failed", "clip", clip.ID, "error", err)
			} else {
				err = m.realize(clip, img)
			}
			if done != nil {
				done(err)
			}
		})
	}()
	return nil
}

// Cancel abandons a paste in flight. Its result is discarded.
func (m *Manager) Cancel() {
	if !m.pending {
		return
	}
	m.gen++
	m.finish()
}

func (m *Manager) finish() {
	m.pending = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Manager) realize(clip Clip, img *image.NRGBA) error {
	kind := clip.Shape.Kind()
	target := m.tools.Selection(kind)
	if target.Active() {
		if !target.Stamp(clip.Shape, img, clip.Position) {
			return ErrRefused
		}
		return nil
	}
	m.tools.Activate(kind)
	if !target.Load(clip.Shape, img, m.pasteAt) {
		return ErrRefused
	}
	return nil
}
