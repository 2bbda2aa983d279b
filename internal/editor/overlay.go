package editor

import (
	"encoding/json"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
)

// DrawCommand is one Canvas2D operation the frontend executes over the
// composite image.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path" or "handle"
	Path        []PathCommand `json:"path,omitempty"`        // path data for "path" ops
	X           float64       `json:"x,omitempty"`           // handle center
	Y           float64       `json:"y,omitempty"`           // handle center
	Size        float64       `json:"size,omitempty"`        // handle side length
	Fill        string        `json:"fill,omitempty"`        // fill color
	Stroke      string        `json:"stroke,omitempty"`      // stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // stroke width
	Dash        []float64     `json:"dash,omitempty"`        // line dash pattern
}

// PathCommand is a path segment in Canvas2D form: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []interface{}

const (
	outlineColor = "#1e88e5"
	invalidColor = "#e53935"
	closeColor   = "#43a047"
	handleFill   = "#ffffff"
)

// Overlay returns the selection decorations to draw over Composite: the
// outline of the selection or construction in progress and, for an Idle
// selection, its resize handles.
func (e *Engine) Overlay() []DrawCommand {
	c := e.current()
	if c == nil {
		return nil
	}
	outline := c.Outline()
	if len(outline) < 2 {
		return nil
	}

	stroke := outlineColor
	switch c.Cursor() {
	case selection.CursorInvalid:
		stroke = invalidColor
	case selection.CursorClose:
		stroke = closeColor
	}
	commands := []DrawCommand{{
		Op:          "path",
		Path:        pathOf(outline),
		Stroke:      stroke,
		StrokeWidth: 1,
		Dash:        []float64{4, 4},
	}}

	if c.State() == selection.Idle {
		for _, p := range selection.Handles(c.Geometry().Box()) {
			commands = append(commands, DrawCommand{
				Op:          "handle",
				X:           p.X,
				Y:           p.Y,
				Size:        2 * selection.HandleRadius,
				Fill:        handleFill,
				Stroke:      outlineColor,
				StrokeWidth: 1,
			})
		}
	}
	return commands
}

func pathOf(points []geometry.Vec2) []PathCommand {
	path := make([]PathCommand, 0, len(points)+1)
	for i, p := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	if len(points) > 2 && points[0] == points[len(points)-1] {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
