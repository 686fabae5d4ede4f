// Package model provides data models shared by the puzzle core.
package model

import (
	"image"
)

// CommitResult is the outcome of trying to commit a piece to its home slot.
type CommitResult int

const (
	// NotCommitted means the piece was released outside the snap criteria.
	NotCommitted CommitResult = iota
	// Committed means the piece snapped to its home slot.
	Committed
	// Ignored means the piece was already placed, so nothing changed.
	Ignored
)

// String returns the wire name of the result.
func (r CommitResult) String() string {
	switch r {
	case Committed:
		return "committed"
	case Ignored:
		return "ignored"
	default:
		return "not_committed"
	}
}

// PieceSpec describes one jigsaw fragment and where it belongs.
// It is immutable once created; Pixels is an owned copy of the source region.
type PieceSpec struct {
	ID     int         // row*cols + col
	Pixels *image.RGBA // Copied fragment, bounds start at (0,0)
	HomeX  int         // Home slot left edge on the board
	HomeY  int         // Home slot top edge on the board
	Width  int
	Height int
}

// HomeRect returns the home slot as an image.Rectangle.
func (s *PieceSpec) HomeRect() image.Rectangle {
	return image.Rect(s.HomeX, s.HomeY, s.HomeX+s.Width, s.HomeY+s.Height)
}

// Row returns the grid row of the piece for a grid with the given column count.
func (s *PieceSpec) Row(cols int) int {
	return s.ID / cols
}

// Col returns the grid column of the piece for a grid with the given column count.
func (s *PieceSpec) Col(cols int) int {
	return s.ID % cols
}

// PieceState is the mutable per-round record of a piece.
type PieceState struct {
	Spec   *PieceSpec // Shared, read-only
	X      float64    // Current left edge
	Y      float64    // Current top edge
	Placed bool
}

// SnapHome moves the piece onto its home slot and marks it placed.
func (p *PieceState) SnapHome() {
	p.X = float64(p.Spec.HomeX)
	p.Y = float64(p.Spec.HomeY)
	p.Placed = true
}
