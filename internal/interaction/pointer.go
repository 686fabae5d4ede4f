// Package interaction turns pointer events in board coordinates into piece
// moves and commits.
package interaction

import (
	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// Target is the game state the pointer drives.
type Target interface {
	PieceAt(x, y float64) (int, bool)
	Piece(id int) (model.PieceState, error)
	Grab(id int) (bool, error)
	MovePiece(id int, x, y float64) (bool, error)
	Release() (int, model.CommitResult, bool, error)
	Active() (int, bool)
}

// Pos is a pointer position in logical board coordinates.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Drop is the outcome of releasing the pointer.
type Drop struct {
	ID     int
	Result model.CommitResult
}

// Pointer tracks a single pointer dragging at most one piece.
type Pointer struct {
	target Target

	dragging bool
	id       int
	offX     float64 // Pointer position relative to the piece's top-left
	offY     float64
}

// NewPointer creates a pointer bound to target.
func NewPointer(target Target) *Pointer {
	return &Pointer{target: target}
}

// PointerPressed grabs piece id at pos. The offset between pos and the
// piece's corner is kept for the rest of the drag. It returns false when the
// piece is already placed.
func (p *Pointer) PointerPressed(id int, pos Pos) (bool, error) {
	piece, err := p.target.Piece(id)
	if err != nil {
		return false, err
	}

	ok, err := p.target.Grab(id)
	if err != nil || !ok {
		return false, err
	}

	p.dragging = true
	p.id = id
	p.offX = pos.X - piece.X
	p.offY = pos.Y - piece.Y
	return true, nil
}

// PressAt grabs the topmost unplaced piece under pos.
func (p *Pointer) PressAt(pos Pos) (int, bool, error) {
	id, hit := p.target.PieceAt(pos.X, pos.Y)
	if !hit {
		return 0, false, nil
	}

	ok, err := p.PointerPressed(id, pos)
	return id, ok, err
}

// PointerMoved drags the grabbed piece so it keeps its grab offset.
// It returns false when nothing is being dragged.
func (p *Pointer) PointerMoved(pos Pos) (bool, error) {
	if !p.holding() {
		return false, nil
	}
	return p.target.MovePiece(p.id, pos.X-p.offX, pos.Y-p.offY)
}

// PointerReleased applies the final position and releases the piece.
// ok is false when nothing was being dragged.
func (p *Pointer) PointerReleased(pos Pos) (drop Drop, ok bool, err error) {
	if !p.holding() {
		return Drop{}, false, nil
	}

	if _, err := p.PointerMoved(pos); err != nil {
		return Drop{}, false, err
	}
	p.dragging = false
	return p.release()
}

// Abandon releases the dragged piece where it is, for a pointer that went
// away mid-drag.
func (p *Pointer) Abandon() (Drop, bool, error) {
	if !p.dragging {
		return Drop{}, false, nil
	}
	p.dragging = false
	return p.release()
}

// Reset forgets the drag without touching the target. Use it when the
// target's pieces were replaced, e.g. after a round change.
func (p *Pointer) Reset() {
	p.dragging = false
}

// holding reports whether the pointer still drags the piece the target has in
// motion. A drag the target no longer knows about is dropped.
func (p *Pointer) holding() bool {
	if !p.dragging {
		return false
	}
	if id, ok := p.target.Active(); !ok || id != p.id {
		p.dragging = false
		return false
	}
	return true
}

func (p *Pointer) release() (Drop, bool, error) {
	id, result, ok, err := p.target.Release()
	if err != nil || !ok {
		return Drop{}, false, err
	}
	return Drop{ID: id, Result: result}, true, nil
}

// Dragging returns the id of the piece being dragged.
func (p *Pointer) Dragging() (int, bool) {
	return p.id, p.dragging
}
