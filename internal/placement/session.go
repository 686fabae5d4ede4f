// Package placement tracks where each piece of the active round sits and
// commits pieces to their home slots.
package placement

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/kyiku/planet-jigsaw-back/internal/jigsaw"
	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/snap"
)

// DropPolicy decides where a piece goes when a drop does not commit.
type DropPolicy int

const (
	// SoftDrop leaves the piece where it was released.
	SoftDrop DropPolicy = iota
	// RevertToOrigin moves the piece back to where it was grabbed.
	RevertToOrigin
)

// String returns the config name of the policy.
func (p DropPolicy) String() string {
	if p == RevertToOrigin {
		return "revert"
	}
	return "soft"
}

// ParseDropPolicy resolves "soft" or "revert".
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soft", "":
		return SoftDrop, nil
	case "revert":
		return RevertToOrigin, nil
	default:
		return SoftDrop, fmt.Errorf("drop policy %q: %w", s, model.ErrInvalidParameter)
	}
}

// Option configures a Session.
type Option func(*Session)

// WithThresholds sets the snap thresholds.
func WithThresholds(t snap.Thresholds) Option {
	return func(s *Session) {
		s.thresholds = t
	}
}

// WithRand sets the random source used for scattering.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithScatterArea sets the tray layout. Negative values are treated as zero.
func WithScatterArea(area ScatterArea) Option {
	return func(s *Session) {
		s.area = ScatterArea{
			Gap:    max(0, area.Gap),
			Span:   max(0, area.Span),
			Margin: max(0, area.Margin),
		}
	}
}

// WithDropPolicy sets what happens on a failed drop.
func WithDropPolicy(p DropPolicy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

type point struct {
	x, y float64
}

// Session holds the piece states of one round.
// A Session is not safe for concurrent use.
type Session struct {
	thresholds snap.Thresholds
	rng        *rand.Rand
	area       ScatterArea
	policy     DropPolicy

	specs   []model.PieceSpec
	board   float64
	order   []*model.PieceState // Stacking order, last is topmost
	byID    map[int]*model.PieceState
	origins map[int]point

	active *model.PieceState
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		thresholds: snap.DefaultThresholds(),
		area:       DefaultScatterArea(),
		policy:     SoftDrop,
		byID:       make(map[int]*model.PieceState),
		origins:    make(map[int]point),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// BeginRound replaces the current pieces with specs, scattered into the tray
// and unplaced.
func (s *Session) BeginRound(specs []model.PieceSpec) {
	s.specs = append([]model.PieceSpec(nil), specs...)
	s.board = float64(jigsaw.BoardSize(s.specs))
	s.order = make([]*model.PieceState, 0, len(s.specs))
	s.byID = make(map[int]*model.PieceState, len(s.specs))

	for i := range s.specs {
		p := &model.PieceState{Spec: &s.specs[i]}
		s.order = append(s.order, p)
		s.byID[p.Spec.ID] = p
	}

	s.scatter()
}

// Scramble deals every piece back into the tray and clears placed flags.
func (s *Session) Scramble() {
	s.scatter()
}

func (s *Session) scatter() {
	s.active = nil
	s.origins = make(map[int]point, len(s.order))

	sc := newScatterer(s.area, s.board, s.rng)
	for _, p := range s.order {
		p.X, p.Y = sc.place(float64(p.Spec.Width), float64(p.Spec.Height))
		p.Placed = false
		s.origins[p.Spec.ID] = point{p.X, p.Y}
	}
}

// MovePiece sets a piece's position. It returns false without moving when
// the piece is already placed.
func (s *Session) MovePiece(id int, x, y float64) (bool, error) {
	p, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	if p.Placed {
		return false, nil
	}

	p.X, p.Y = x, y
	return true, nil
}

// AttemptCommit evaluates the piece against its home slot and snaps it home
// when the criteria pass. A failed attempt applies the drop policy.
func (s *Session) AttemptCommit(id int) (model.CommitResult, error) {
	p, err := s.lookup(id)
	if err != nil {
		return model.NotCommitted, err
	}
	if p.Placed {
		return model.Ignored, nil
	}

	if snap.ShouldSnap(PieceBox(p), HomeBox(p.Spec), s.thresholds) {
		p.SnapHome()
		return model.Committed, nil
	}

	if s.policy == RevertToOrigin {
		o := s.origins[id]
		p.X, p.Y = o.x, o.y
	}
	return model.NotCommitted, nil
}

// Evaluate reports the snap signals for a piece at its current position.
func (s *Session) Evaluate(id int) (snap.Verdict, error) {
	p, err := s.lookup(id)
	if err != nil {
		return snap.Verdict{}, err
	}
	return snap.Evaluate(PieceBox(p), HomeBox(p.Spec), s.thresholds), nil
}

// Grab marks a piece as in motion, records its origin and raises it to the
// top of the stacking order. Placed pieces are not grabbed. Grabbing the
// piece already in motion keeps its original origin.
func (s *Session) Grab(id int) (bool, error) {
	p, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	if s.active != nil && s.active != p {
		return false, fmt.Errorf("grab piece %d while %d moves: %w", id, s.active.Spec.ID, model.ErrPieceBusy)
	}
	if p.Placed {
		return false, nil
	}

	if s.active != p {
		s.active = p
		s.origins[id] = point{p.X, p.Y}
	}
	s.raise(p)
	return true, nil
}

// Release ends the current motion and attempts to commit the piece.
// It returns ok=false when nothing is in motion.
func (s *Session) Release() (id int, result model.CommitResult, ok bool) {
	if s.active == nil {
		return 0, model.Ignored, false
	}

	id = s.active.Spec.ID
	s.active = nil

	result, _ = s.AttemptCommit(id)
	return id, result, true
}

// Active returns the piece in motion.
func (s *Session) Active() (int, bool) {
	if s.active == nil {
		return 0, false
	}
	return s.active.Spec.ID, true
}

// PieceAt returns the topmost unplaced piece containing (x, y).
func (s *Session) PieceAt(x, y float64) (int, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.order[i]
		if p.Placed {
			continue
		}
		if PieceBox(p).Contains(x, y) {
			return p.Spec.ID, true
		}
	}
	return 0, false
}

// IsRoundComplete reports whether every piece is placed.
// A session without pieces is never complete.
func (s *Session) IsRoundComplete() bool {
	if len(s.order) == 0 {
		return false
	}
	return s.PlacedCount() == len(s.order)
}

// PlacedCount returns the number of placed pieces.
func (s *Session) PlacedCount() int {
	n := 0
	for _, p := range s.order {
		if p.Placed {
			n++
		}
	}
	return n
}

// Len returns the number of pieces in the round.
func (s *Session) Len() int {
	return len(s.order)
}

// Progress returns the placed fraction in [0, 1].
func (s *Session) Progress() float64 {
	if len(s.order) == 0 {
		return 0
	}
	return float64(s.PlacedCount()) / float64(len(s.order))
}

// BoardSize returns the board edge in logical pixels.
func (s *Session) BoardSize() int {
	return int(s.board)
}

// Policy returns the drop policy.
func (s *Session) Policy() DropPolicy {
	return s.policy
}

// Thresholds returns the snap thresholds.
func (s *Session) Thresholds() snap.Thresholds {
	return s.thresholds
}

// Pieces returns a snapshot of every piece in stacking order.
func (s *Session) Pieces() []model.PieceState {
	out := make([]model.PieceState, len(s.order))
	for i, p := range s.order {
		out[i] = *p
	}
	return out
}

// Piece returns a snapshot of one piece.
func (s *Session) Piece(id int) (model.PieceState, error) {
	p, err := s.lookup(id)
	if err != nil {
		return model.PieceState{}, err
	}
	return *p, nil
}

func (s *Session) lookup(id int) (*model.PieceState, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("piece %d: %w", id, model.ErrUnknownPiece)
	}
	return p, nil
}

// raise moves p to the end of the stacking order.
func (s *Session) raise(p *model.PieceState) {
	for i, q := range s.order {
		if q == p {
			copy(s.order[i:], s.order[i+1:])
			s.order[len(s.order)-1] = p
			return
		}
	}
}

// PieceBox returns the piece's current rectangle.
func PieceBox(p *model.PieceState) snap.Box {
	return snap.Box{X: p.X, Y: p.Y, W: float64(p.Spec.Width), H: float64(p.Spec.Height)}
}

// HomeBox returns the home slot rectangle of a piece.
func HomeBox(spec *model.PieceSpec) snap.Box {
	return snap.BoxFromRect(spec.HomeRect())
}
