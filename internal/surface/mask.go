package surface

import (
	"image"
	"image/color"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
)

// EllipseMask returns a w x h mask of the ellipse inscribed in the box.
func EllipseMask(w, h int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return m
	}
	rx, ry := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		dy := (float64(y) + 0.5 - ry) / ry
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - rx) / rx
			if dx*dx+dy*dy <= 1 {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

// PolygonMask returns a w x h mask of the polygon, whose vertices are given in
// mask coordinates. Pixel centers are tested.
func PolygonMask(w, h int, poly []geometry.Vec2) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if geometry.PointInPolygon(geometry.V(float64(x)+0.5, float64(y)+0.5), poly) {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

// ApplyMask makes every pixel of img outside mask transparent. Both start at (0,0).
func ApplyMask(img *image.NRGBA, mask *image.Alpha) {
	if mask == nil {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.AlphaAt(x-b.Min.X, y-b.Min.Y).A == 0 {
				img.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
}
