package editor

import (
	"fmt"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/grid"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
)

// Options configures an Engine.
type Options struct {
	Width      int
	Height     int
	Background color.NRGBA

	GridCell     float64
	Magnet       bool
	MagnetAnchor geometry.Anchor9

	MoveStep     float64
	MoveDelay    time.Duration
	MoveInterval time.Duration

	CloseRadius  float64
	UndoCapacity int
	PasteAt      geometry.Vec2
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Width:        1000,
		Height:       800,
		Background:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		GridCell:     50,
		MagnetAnchor: geometry.TopLeft,
		MoveStep:     3,
		MoveDelay:    500 * time.Millisecond,
		MoveInterval: 100 * time.Millisecond,
		CloseRadius:  20,
	}
}

func (o Options) selection(sched selection.Scheduler) selection.Options {
	return selection.Options{
		Move: selection.MoveOptions{
			Grid:     grid.New(o.GridCell),
			Magnet:   o.Magnet,
			Anchor:   o.MagnetAnchor,
			Step:     o.MoveStep,
			Delay:    o.MoveDelay,
			Interval: o.MoveInterval,
		},
		CloseRadius: o.CloseRadius,
		Scheduler:   sched,
	}
}

// ParseColor reads a #rgb or #rrggbb color. The result is opaque.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
