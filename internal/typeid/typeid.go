package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixDrawing = "draw"
	PrefixCommand = "cmd"
	PrefixToken   = "tok"
	PrefixClip    = "clip"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewDrawingID() string { return New(PrefixDrawing) }
func NewCommandID() string { return New(PrefixCommand) }
func NewTokenID() string   { return New(PrefixToken) }
func NewClipID() string    { return New(PrefixClip) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
