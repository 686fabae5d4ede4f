package storage

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultHintSize is the edge of the hint overlay thumbnail.
const DefaultHintSize = 256

// Thumbnail scales img to fit a size×size box, keeping the aspect ratio.
// Images already within the box are copied at their own size.
func Thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if size > 0 && (w > size || h > size) {
		if w >= h {
			h = max(1, h*size/w)
			w = size
		} else {
			w = max(1, w*size/h)
			h = size
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
