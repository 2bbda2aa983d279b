package editor

import (
	"errors"
	"fmt"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
)

var ErrUnknownTool = errors.New("unknown tool")

// Tool is an entry of the toolbar. Only the selection tools react to input;
// the pencil is a placeholder so that switching away from a selection tool
// can be exercised.
type Tool int

const (
	ToolPencil Tool = iota
	ToolRectangle
	ToolEllipse
	ToolLasso
)

var toolNames = [...]string{"pencil", "rectangle", "ellipse", "lasso"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

func (t Tool) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTool looks a tool up by name.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Kind returns the selection kind driven by t.
func (t Tool) Kind() (selection.Kind, bool) {
	switch t {
	case ToolRectangle:
		return selection.KindRectangle, true
	case ToolEllipse:
		return selection.KindEllipse, true
	case ToolLasso:
		return selection.KindFreeform, true
	}
	return 0, false
}

func toolFor(k selection.Kind) Tool {
	switch k {
	case selection.KindEllipse:
		return ToolEllipse
	case selection.KindFreeform:
		return ToolLasso
	}
	return ToolRectangle
}
