package surface

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Flip records which axes of a selection's content are mirrored.
type Flip struct {
	Horizontal bool `json:"horizontal"`
	Vertical   bool `json:"vertical"`
}

// Transform renders content at the given size with the flip applied.
// Content at its own size and without flip is returned as an independent copy.
func Transform(content *image.NRGBA, size image.Point, flip Flip) *image.NRGBA {
	if size.X <= 0 || size.Y <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(size.X, 0), max(size.Y, 0)))
	}
	out := content
	if out.Bounds().Size() != size {
		out = imaging.Resize(out, size.X, size.Y, imaging.NearestNeighbor)
	}
	if flip.Horizontal {
		out = imaging.FlipH(out)
	}
	if flip.Vertical {
		out = imaging.FlipV(out)
	}
	if out == content {
		out = imaging.Clone(content)
	}
	return out
}

// Encode serializes pixels as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses PNG (or JPEG) bytes into an NRGBA buffer rooted at (0,0).
func Decode(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return imaging.Clone(img), nil
}
