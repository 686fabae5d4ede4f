package round

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/texture"
)

// Synthesizer produces the raster for a round.
type Synthesizer func(body texture.Body, size int, rng *rand.Rand, opts ...texture.Option) (*image.RGBA, error)

// Descriptor describes one round.
type Descriptor struct {
	Identity  texture.Body
	Grid      int         // Pieces per side
	Fact      string      // Shown when the round is complete
	Generator Synthesizer // Nil uses the controller's synthesizer
}

// facts holds the fun fact shown after each body is solved.
var facts = map[texture.Body]string{
	texture.Earth:   "Earth is the only planet with liquid water on its surface!",
	texture.Mars:    "Mars has the largest volcano in the solar system, Olympus Mons.",
	texture.Jupiter: "Jupiter is a gas giant with a Great Red Spot storm bigger than Earth!",
	texture.Mercury: "Mercury is the smallest planet and the closest one to the Sun.",
	texture.Venus:   "Venus is the hottest planet because its thick clouds trap heat.",
	texture.Neptune: "Neptune has the fastest winds in the solar system.",
}

// Fact returns the fun fact for a body.
func Fact(body texture.Body) string {
	return facts[body]
}

// DefaultDescriptors returns the Earth, Mars, Jupiter sequence.
func DefaultDescriptors(grid int) []Descriptor {
	return Descriptors([]texture.Body{texture.Earth, texture.Mars, texture.Jupiter}, grid)
}

// Descriptors builds one round per body, in order.
func Descriptors(bodies []texture.Body, grid int) []Descriptor {
	descs := make([]Descriptor, 0, len(bodies))
	for _, b := range bodies {
		descs = append(descs, Descriptor{Identity: b, Grid: grid, Fact: Fact(b)})
	}
	return descs
}

// Validate checks the descriptor fields.
func (d Descriptor) Validate() error {
	if !d.Identity.Valid() {
		return fmt.Errorf("round identity %v: %w", d.Identity, model.ErrInvalidParameter)
	}
	if d.Grid < 1 {
		return fmt.Errorf("round grid %d: %w", d.Grid, model.ErrInvalidParameter)
	}
	return nil
}
