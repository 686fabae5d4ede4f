// Package round sequences the jigsaw rounds: it synthesizes each body, cuts
// it into pieces and reports completion to listeners.
package round

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/kyiku/planet-jigsaw-back/internal/jigsaw"
	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/placement"
	"github.com/kyiku/planet-jigsaw-back/internal/snap"
	"github.com/kyiku/planet-jigsaw-back/internal/texture"
)

// Option configures a Controller.
type Option func(*Controller)

// WithRasterSize sets the raster edge in pixels.
func WithRasterSize(size int) Option {
	return func(c *Controller) {
		c.size = size
	}
}

// WithThresholds sets the snap thresholds for every round.
func WithThresholds(t snap.Thresholds) Option {
	return func(c *Controller) {
		c.thresholds = t
	}
}

// WithRand sets the random source shared by synthesis and scattering.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithListener adds a listener for round notifications.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDropPolicy sets what happens to a piece dropped outside its slot.
func WithDropPolicy(p placement.DropPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithGrainDensity sets the grain dot count passed to the synthesizer.
func WithGrainDensity(n int) Option {
	return func(c *Controller) {
		c.grainDensity = n
	}
}

// WithSynthesizer replaces the default raster generator.
func WithSynthesizer(s Synthesizer) Option {
	return func(c *Controller) {
		if s != nil {
			c.synth = s
		}
	}
}

// Controller steps through an ordered list of rounds.
// A Controller is not safe for concurrent use.
type Controller struct {
	descs []Descriptor
	index int
	state State

	size         int
	grainDensity int
	thresholds   snap.Thresholds
	policy       placement.DropPolicy
	rng          *rand.Rand
	synth        Synthesizer
	listeners    []Listener
	logger       *slog.Logger

	raster  *image.RGBA
	specs   []model.PieceSpec
	session *placement.Session
	hint    bool
}

// NewController creates a controller positioned at the first round in the
// loading state. Call LoadCurrent to build it.
func NewController(descs []Descriptor, opts ...Option) (*Controller, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("no rounds: %w", model.ErrInvalidParameter)
	}
	for i, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
	}

	c := &Controller{
		descs:        append([]Descriptor(nil), descs...),
		state:        StateLoading,
		size:         texture.DefaultSize,
		grainDensity: texture.DefaultGrainDensity,
		thresholds:   snap.DefaultThresholds(),
		policy:       placement.SoftDrop,
		synth:        texture.Synthesize,
		logger:       newNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("raster size %d: %w", c.size, model.ErrInvalidParameter)
	}
	if c.grainDensity < 0 {
		return nil, fmt.Errorf("grain density %d: %w", c.grainDensity, model.ErrInvalidParameter)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return c, nil
}

// Current returns the descriptor of the current round.
func (c *Controller) Current() Descriptor {
	return c.descs[c.index]
}

// Index returns the zero-based index of the current round.
func (c *Controller) Index() int {
	return c.index
}

// Len returns the number of rounds.
func (c *Controller) Len() int {
	return len(c.descs)
}

// State returns the current round state.
func (c *Controller) State() State {
	return c.state
}

// LoadCurrent synthesizes the current body, cuts it into pieces and deals
// them into a fresh placement session.
func (c *Controller) LoadCurrent() error {
	if c.state == StateAllComplete {
		return model.ErrAllRoundsComplete
	}
	if c.state != StateLoading {
		if err := c.transition(StateLoading); err != nil {
			return err
		}
	}

	d := c.Current()
	synth := d.Generator
	if synth == nil {
		synth = c.synth
	}

	raster, err := synth(d.Identity, c.size, c.rng, texture.WithGrainDensity(c.grainDensity))
	if err != nil {
		return fmt.Errorf("synthesize %s: %w", d.Identity, err)
	}

	specs, err := jigsaw.Decompose(raster, d.Grid)
	if err != nil {
		return fmt.Errorf("decompose %s: %w", d.Identity, err)
	}

	session := placement.NewSession(
		placement.WithThresholds(c.thresholds),
		placement.WithRand(c.rng),
		placement.WithDropPolicy(c.policy),
	)
	session.BeginRound(specs)

	c.raster = raster
	c.specs = specs
	c.session = session
	c.hint = false

	c.logger.Info("round loaded",
		"index", c.index,
		"body", d.Identity.String(),
		"grid", d.Grid,
		"pieces", len(specs),
	)
	return c.transition(StateActive)
}

// Advance moves to the next round after the current one is complete.
// Past the final round it enters the all-complete state, notifies listeners
// once and returns ErrAllRoundsComplete.
func (c *Controller) Advance() error {
	if c.state == StateAllComplete {
		return model.ErrAllRoundsComplete
	}
	if c.state != StateComplete {
		return fmt.Errorf("advance from %s: %w", c.state, model.ErrInvalidTransition)
	}

	if c.index+1 >= len(c.descs) {
		if err := c.transition(StateAllComplete); err != nil {
			return err
		}
		c.logger.Info("all rounds complete", "rounds", len(c.descs))
		for _, l := range c.listeners {
			l.OnAllRoundsComplete()
		}
		return model.ErrAllRoundsComplete
	}

	if err := c.transition(StateLoading); err != nil {
		return err
	}
	c.index++
	c.raster = nil
	c.specs = nil
	c.session = nil
	c.hint = false
	return nil
}

// Grab starts moving a piece.
func (c *Controller) Grab(id int) (bool, error) {
	s, err := c.activeSession()
	if err != nil {
		return false, err
	}
	return s.Grab(id)
}

// MovePiece moves an unplaced piece.
func (c *Controller) MovePiece(id int, x, y float64) (bool, error) {
	s, err := c.activeSession()
	if err != nil {
		return false, err
	}
	return s.MovePiece(id, x, y)
}

// Commit attempts to snap a piece home and notifies listeners on success.
func (c *Controller) Commit(id int) (model.CommitResult, error) {
	s, err := c.activeSession()
	if err != nil {
		return model.NotCommitted, err
	}

	result, err := s.AttemptCommit(id)
	if err != nil {
		return result, err
	}
	c.afterCommit(id, result)
	return result, nil
}

// Release ends the current motion and commits the piece if it snaps.
// ok is false when no piece was in motion.
func (c *Controller) Release() (id int, result model.CommitResult, ok bool, err error) {
	s, err := c.activeSession()
	if err != nil {
		return 0, model.NotCommitted, false, err
	}

	id, result, ok = s.Release()
	if ok {
		c.afterCommit(id, result)
	}
	return id, result, ok, nil
}

func (c *Controller) afterCommit(id int, result model.CommitResult) {
	if result != model.Committed {
		return
	}

	c.logger.Debug("piece committed", "index", c.index, "piece", id)
	for _, l := range c.listeners {
		l.OnPieceCommitted(id)
	}

	if c.state == StateActive && c.session.IsRoundComplete() {
		if err := c.transition(StateComplete); err != nil {
			c.logger.Error("round completion", "error", err)
			return
		}
		c.logger.Info("round complete", "index", c.index, "body", c.Current().Identity.String())
		for _, l := range c.listeners {
			l.OnRoundComplete(c.index)
		}
	}
}

// Active returns the piece in motion in the current round.
func (c *Controller) Active() (int, bool) {
	s, err := c.activeSession()
	if err != nil {
		return 0, false
	}
	return s.Active()
}

// PieceAt returns the topmost unplaced piece under (x, y).
func (c *Controller) PieceAt(x, y float64) (int, bool) {
	s, err := c.activeSession()
	if err != nil {
		return 0, false
	}
	return s.PieceAt(x, y)
}

// Piece returns a snapshot of one piece.
func (c *Controller) Piece(id int) (model.PieceState, error) {
	s, err := c.activeSession()
	if err != nil {
		return model.PieceState{}, err
	}
	return s.Piece(id)
}

// Scramble re-deals every piece of the current round. A complete round
// becomes active again.
func (c *Controller) Scramble() error {
	if !c.state.Loaded() {
		return fmt.Errorf("scramble in %s: %w", c.state, model.ErrNoActiveRound)
	}

	c.session.Scramble()
	if c.state == StateComplete {
		return c.transition(StateActive)
	}
	return nil
}

// Raster returns the current round's raster, or nil before loading.
func (c *Controller) Raster() *image.RGBA {
	return c.raster
}

// Specs returns the current round's piece specs.
func (c *Controller) Specs() []model.PieceSpec {
	return c.specs
}

// Session returns the placement session of the current round.
func (c *Controller) Session() *placement.Session {
	return c.session
}

// Hint reports whether the raster overlay is shown.
func (c *Controller) Hint() bool {
	return c.hint
}

// SetHint sets the hint flag.
func (c *Controller) SetHint(on bool) {
	c.hint = on
}

// ToggleHint flips the hint flag and returns the new value.
func (c *Controller) ToggleHint() bool {
	c.hint = !c.hint
	return c.hint
}

func (c *Controller) activeSession() (*placement.Session, error) {
	if !c.state.Loaded() || c.session == nil {
		return nil, fmt.Errorf("round %d is %s: %w", c.index, c.state, model.ErrNoActiveRound)
	}
	return c.session, nil
}

func (c *Controller) transition(next State) error {
	if !c.state.CanTransitionTo(next) {
		return fmt.Errorf("%s -> %s: %w", c.state, next, model.ErrInvalidTransition)
	}
	c.logger.Debug("round state", "index", c.index, "from", string(c.state), "to", string(next))
	c.state = next
	return nil
}
