package placement

import (
	"math/rand"

	"github.com/kyiku/planet-jigsaw-back/internal/snap"
)

// DefaultMaxRetries bounds the attempts to find a free tray spot per piece.
const DefaultMaxRetries = 100

// ScatterArea describes the tray to the right of the board where loose
// pieces are dealt.
type ScatterArea struct {
	Gap    float64 // Horizontal distance between the board edge and the tray
	Span   float64 // Horizontal range of tray x positions
	Margin float64 // Vertical inset from the top and bottom of the board
}

// DefaultScatterArea returns the tray used by the board layout.
func DefaultScatterArea() ScatterArea {
	return ScatterArea{Gap: 40, Span: 160, Margin: 20}
}

// scatterer deals pieces into the tray, avoiding overlaps between tray
// pieces when it can.
type scatterer struct {
	area       ScatterArea
	board      float64
	rng        *rand.Rand
	maxRetries int
	placed     []snap.Box
}

func newScatterer(area ScatterArea, board float64, rng *rand.Rand) *scatterer {
	return &scatterer{
		area:       area,
		board:      board,
		rng:        rng,
		maxRetries: DefaultMaxRetries,
	}
}

// place returns a tray position for a w×h piece.
// After maxRetries colliding candidates the last one is used anyway.
func (sc *scatterer) place(w, h float64) (float64, float64) {
	var candidate snap.Box

	for retry := 0; retry < sc.maxRetries; retry++ {
		candidate = snap.Box{X: sc.randomX(), Y: sc.randomY(h), W: w, H: h}
		if !sc.hasCollision(candidate) {
			break
		}
	}

	sc.placed = append(sc.placed, candidate)
	return candidate.X, candidate.Y
}

func (sc *scatterer) randomX() float64 {
	return sc.board + sc.area.Gap + sc.rng.Float64()*sc.area.Span
}

func (sc *scatterer) randomY(h float64) float64 {
	spread := sc.board - h - 2*sc.area.Margin
	if spread <= 0 {
		return sc.area.Margin
	}
	return sc.area.Margin + sc.rng.Float64()*spread
}

// hasCollision checks if a candidate overlaps a piece already dealt.
func (sc *scatterer) hasCollision(candidate snap.Box) bool {
	for _, existing := range sc.placed {
		if candidate.Overlaps(existing) {
			return true
		}
	}
	return false
}
