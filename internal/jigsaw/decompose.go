// Package jigsaw cuts a square raster into an N×N grid of pieces.
package jigsaw

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// EdgeLength returns the piece edge for an image of the given bounds cut into
// n columns and rows: floor(min(width, height) / n).
func EdgeLength(bounds image.Rectangle, n int) int {
	size := min(bounds.Dx(), bounds.Dy())
	return size / n
}

// Decompose cuts img into n*n pieces in row-major order.
// Each piece owns a copy of its pixels, so img can be dropped afterwards.
func Decompose(img image.Image, n int) ([]model.PieceSpec, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image: %w", model.ErrInvalidParameter)
	}
	if n < 1 {
		return nil, fmt.Errorf("grid arity %d: %w", n, model.ErrInvalidParameter)
	}

	bounds := img.Bounds()
	if bounds.Dx() < n || bounds.Dy() < n {
		return nil, fmt.Errorf("image %dx%d for grid %d: %w",
			bounds.Dx(), bounds.Dy(), n, model.ErrInvalidGridArity)
	}

	edge := EdgeLength(bounds, n)
	specs := make([]model.PieceSpec, 0, n*n)

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			homeX := col * edge
			homeY := row * edge

			// Copy the region into a fresh buffer anchored at (0,0)
			pixels := image.NewRGBA(image.Rect(0, 0, edge, edge))
			src := image.Pt(bounds.Min.X+homeX, bounds.Min.Y+homeY)
			draw.Draw(pixels, pixels.Bounds(), img, src, draw.Src)

			specs = append(specs, model.PieceSpec{
				ID:     row*n + col,
				Pixels: pixels,
				HomeX:  homeX,
				HomeY:  homeY,
				Width:  edge,
				Height: edge,
			})
		}
	}

	return specs, nil
}

// BoardSize returns the side length of the board the pieces tile.
func BoardSize(specs []model.PieceSpec) int {
	size := 0
	for i := range specs {
		if right := specs[i].HomeX + specs[i].Width; right > size {
			size = right
		}
		if bottom := specs[i].HomeY + specs[i].Height; bottom > size {
			size = bottom
		}
	}
	return size
}

// Reassemble draws every piece at its home coordinates onto a new board.
func Reassemble(specs []model.PieceSpec) *image.RGBA {
	size := BoardSize(specs)
	board := image.NewRGBA(image.Rect(0, 0, size, size))

	for i := range specs {
		s := &specs[i]
		draw.Draw(board, s.HomeRect(), s.Pixels, s.Pixels.Bounds().Min, draw.Src)
	}

	return board
}
