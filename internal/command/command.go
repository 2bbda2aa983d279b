// Package command holds the reversible surface mutations recorded in history.
//
// Each command snapshots the pixels it will overwrite when it is built, so
// Invert restores them exactly and Apply always starts from the same state.
package command

import (
	"image"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/surface"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/typeid"
)

// Region is an area of the base surface, optionally restricted by a mask the
// size of Rect.
type Region struct {
	Rect image.Rectangle
	Mask *image.Alpha
}

// Placement is selection content as it will land on the surface.
type Placement struct {
	// Content holds the pixels as captured, at their original size.
	Content *image.NRGBA
	Dest    image.Rectangle
	Flip    surface.Flip
	// Mask clips in destination space; nil for rectangles.
	Mask *image.Alpha
}

// Render scales, flips and clips the content for its destination.
func (p Placement) Render() *image.NRGBA {
	out := surface.Transform(p.Content, p.Dest.Size(), p.Flip)
	surface.ApplyMask(out, p.Mask)
	return out
}

type base struct {
	id     string
	target surface.Surface
	area   image.Rectangle
	before *image.NRGBA
}

func newBase(target surface.Surface, area image.Rectangle) base {
	area = area.Intersect(target.Bounds())
	return base{
		id:     typeid.NewCommandID(),
		target: target,
		area:   area,
		before: target.ReadPixels(area),
	}
}

func (b *base) ID() string { return b.id }

func (b *base) restore() {
	if !b.area.Empty() {
		b.target.PutPixels(b.before, b.area.Min)
	}
}

// Place transfers selection content onto the surface. When the content was
// lifted from the same surface, Source is cleared first.
type Place struct {
	base
	Source    *Region
	Placement Placement
	rendered  *image.NRGBA
	label     string
}

// NewPlace builds the command without applying it.
func NewPlace(target surface.Surface, source *Region, p Placement) *Place {
	area := p.Dest
	if source != nil {
		area = area.Union(source.Rect)
	}
	label := "paste"
	if source != nil {
		label = "selection"
	}
	return &Place{
		base:      newBase(target, area),
		Source:    source,
		Placement: p,
		rendered:  p.Render(),
		label:     label,
	}
}

func (c *Place) Name() string { return c.label }

func (c *Place) Apply() {
	c.restore()
	if c.Source != nil {
		c.target.ClearMask(c.Source.Rect, maskOrNil(c.Source.Mask))
	}
	c.target.DrawPixels(c.rendered, c.Placement.Dest.Min)
}

func (c *Place) Invert() { c.restore() }

// Delete clears a selection's source region.
type Delete struct {
	base
	Source Region
}

func NewDelete(target surface.Surface, source Region) *Delete {
	return &Delete{base: newBase(target, source.Rect), Source: source}
}

func (c *Delete) Name() string { return "delete" }

func (c *Delete) Apply() {
	c.restore()
	c.target.ClearMask(c.Source.Rect, maskOrNil(c.Source.Mask))
}

func (c *Delete) Invert() { c.restore() }

// ResizeCanvas changes the surface size. Pixels cut off by a shrink come back
// on Invert.
type ResizeCanvas struct {
	base
	From, To image.Point
}

func NewResizeCanvas(target surface.Surface, width, height int) *ResizeCanvas {
	return &ResizeCanvas{
		base: newBase(target, target.Bounds()),
		From: target.Bounds().Size(),
		To:   image.Pt(width, height),
	}
}

func (c *ResizeCanvas) Name() string { return "resize canvas" }

func (c *ResizeCanvas) Apply() { c.target.Resize(c.To.X, c.To.Y) }

func (c *ResizeCanvas) Invert() {
	c.target.Resize(c.From.X, c.From.Y)
	c.restore()
}

// Import replaces the whole surface with an image, resizing to fit it.
type Import struct {
	base
	From  image.Point
	Image *image.NRGBA
}

func NewImport(target surface.Surface, img *image.NRGBA) *Import {
	return &Import{
		base:  newBase(target, target.Bounds()),
		From:  target.Bounds().Size(),
		Image: img,
	}
}

func (c *Import) Name() string { return "import" }

func (c *Import) Apply() {
	size := c.Image.Bounds().Size()
	c.target.Resize(size.X, size.Y)
	c.target.PutPixels(c.Image, image.Point{})
}

func (c *Import) Invert() {
	c.target.Resize(c.From.X, c.From.Y)
	c.restore()
}

// maskOrNil keeps a typed nil *image.Alpha from reaching an image.Image parameter.
func maskOrNil(m *image.Alpha) image.Image {
	if m == nil {
		return nil
	}
	return m
}
