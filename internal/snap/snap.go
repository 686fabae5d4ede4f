// Package snap decides whether a dropped piece commits to its home slot.
package snap

import (
	"image"
	"math"
)

// Default thresholds used by the kid-friendly board.
const (
	DefaultOverlap = 0.75
	DefaultMagnet  = 36.0

	// Looser tuning used by the "enhanced" board variant.
	ForgivingOverlap = 0.6
	ForgivingMagnet  = 50.0
)

// Box is an axis-aligned rectangle in logical board coordinates.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// BoxFromRect converts an image.Rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{
		X: float64(r.Min.X),
		Y: float64(r.Min.Y),
		W: float64(r.Dx()),
		H: float64(r.Dy()),
	}
}

// Right returns the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Area returns the box area.
func (b Box) Area() float64 { return b.W * b.H }

// Center returns the geometric center.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.Right() && y >= b.Y && y <= b.Bottom()
}

// Overlaps reports whether the two boxes share a region of positive area.
// Boxes that only touch along an edge do not overlap.
func (b Box) Overlaps(other Box) bool {
	return IntersectionArea(b, other) > 0
}

// Thresholds tunes the evaluator. A zero Magnet disables the distance rule
// except for exact center alignment.
type Thresholds struct {
	Overlap float64 // Minimum fraction of the slot covered by the piece
	Magnet  float64 // Maximum center-to-center distance
}

// DefaultThresholds returns 0.75 overlap / 36px magnet.
func DefaultThresholds() Thresholds {
	return Thresholds{Overlap: DefaultOverlap, Magnet: DefaultMagnet}
}

// ForgivingThresholds returns 0.6 overlap / 50px magnet.
func ForgivingThresholds() Thresholds {
	return Thresholds{Overlap: ForgivingOverlap, Magnet: ForgivingMagnet}
}

// IntersectionArea returns the area shared by a and b.
func IntersectionArea(a, b Box) float64 {
	xOverlap := math.Max(0, math.Min(a.Right(), b.Right())-math.Max(a.X, b.X))
	yOverlap := math.Max(0, math.Min(a.Bottom(), b.Bottom())-math.Max(a.Y, b.Y))
	return xOverlap * yOverlap
}

// OverlapFraction returns the fraction of slot covered by piece.
// An empty slot yields 0.
func OverlapFraction(piece, slot Box) float64 {
	area := slot.Area()
	if area <= 0 {
		return 0
	}
	return IntersectionArea(piece, slot) / area
}

// CenterInside reports whether the center of piece lies within slot.
func CenterInside(piece, slot Box) bool {
	return slot.Contains(piece.Center())
}

// CenterDistance returns the Euclidean distance between the two centers.
func CenterDistance(a, b Box) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}

// Verdict carries every signal the evaluator looked at.
type Verdict struct {
	Overlap      float64
	CenterInside bool
	Distance     float64
	Snap         bool
}

// Evaluate computes all three signals for piece against slot.
func Evaluate(piece, slot Box, t Thresholds) Verdict {
	v := Verdict{
		Overlap:      OverlapFraction(piece, slot),
		CenterInside: CenterInside(piece, slot),
		Distance:     CenterDistance(piece, slot),
	}
	v.Snap = Decide(v.Overlap, v.CenterInside, v.Distance, t)
	return v
}

// Decide combines the three signals. Any single one is enough to snap.
func Decide(overlap float64, centerInside bool, distance float64, t Thresholds) bool {
	return overlap >= t.Overlap || centerInside || distance <= t.Magnet
}

// ShouldSnap reports whether piece should commit to slot.
func ShouldSnap(piece, slot Box, t Thresholds) bool {
	return Evaluate(piece, slot, t).Snap
}
