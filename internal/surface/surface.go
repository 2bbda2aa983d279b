// Package surface is the raster the editor draws on.
//
// The selection tools only need a handful of pixel operations: read a block of
// pixels, put it back, composite over, clear a region. Raster implements them
// on an NRGBA image with a background color standing in for "cleared".
package surface

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Surface is the drawing target consumed by selection commands.
type Surface interface {
	Bounds() image.Rectangle
	// ClearRect resets r to the background.
	ClearRect(r image.Rectangle)
	// ClearMask resets the pixels of r selected by mask. A nil mask clears all of r.
	ClearMask(r image.Rectangle, mask image.Image)
	// ReadPixels copies r into a new buffer whose bounds start at (0,0).
	ReadPixels(r image.Rectangle) *image.NRGBA
	// DrawPixels composites src over the surface with its origin at at.
	DrawPixels(src image.Image, at image.Point)
	// PutPixels replaces the surface pixels under src.
	PutPixels(src image.Image, at image.Point)
	// Resize changes the surface size, keeping the top-left content.
	Resize(width, height int)
}

// Raster is an in-memory Surface.
type Raster struct {
	img        *image.NRGBA
	background color.NRGBA
}

// NewRaster creates a width x height surface filled with bg.
func NewRaster(width, height int, bg color.Color) *Raster {
	nbg := color.NRGBAModel.Convert(bg).(color.NRGBA)
	return &Raster{
		img:        imaging.New(width, height, nbg),
		background: nbg,
	}
}

// FromImage wraps a copy of img, rebased at the origin.
func FromImage(img image.Image, bg color.Color) *Raster {
	nbg := color.NRGBAModel.Convert(bg).(color.NRGBA)
	return &Raster{img: imaging.Clone(img), background: nbg}
}

func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

func (r *Raster) Background() color.NRGBA { return r.background }

// Image exposes the backing buffer. Callers must not keep it across mutations.
func (r *Raster) Image() *image.NRGBA { return r.img }

func (r *Raster) ClearRect(rect image.Rectangle) {
	r.ClearMask(rect, nil)
}

func (r *Raster) ClearMask(rect image.Rectangle, mask image.Image) {
	clip := rect.Intersect(r.img.Bounds())
	if clip.Empty() {
		return
	}
	if mask == nil {
		xdraw.Draw(r.img, clip, image.NewUniform(r.background), image.Point{}, xdraw.Src)
		return
	}
	// Src through a mask would zero the unmasked pixels, so set them one by one.
	off := mask.Bounds().Min.Sub(rect.Min)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			if _, _, _, a := mask.At(x+off.X, y+off.Y).RGBA(); a != 0 {
				r.img.SetNRGBA(x, y, r.background)
			}
		}
	}
}

func (r *Raster) ReadPixels(rect image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	src := rect.Intersect(r.img.Bounds())
	if !src.Empty() {
		xdraw.Draw(out, src.Sub(rect.Min), r.img, src.Min, xdraw.Src)
	}
	return out
}

func (r *Raster) DrawPixels(src image.Image, at image.Point) {
	r.draw(src, at, xdraw.Over)
}

func (r *Raster) PutPixels(src image.Image, at image.Point) {
	r.draw(src, at, xdraw.Src)
}

func (r *Raster) draw(src image.Image, at image.Point, op xdraw.Op) {
	sb := src.Bounds()
	dst := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	xdraw.Draw(r.img, dst, src, sb.Min, op)
}

func (r *Raster) Resize(width, height int) {
	next := imaging.New(width, height, r.background)
	xdraw.Draw(next, r.img.Bounds(), r.img, image.Point{}, xdraw.Src)
	r.img = next
}
