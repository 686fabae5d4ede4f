// Package texture synthesizes procedural planet rasters for the jigsaw rounds.
package texture

import (
	"fmt"
	"strings"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// Body identifies which celestial body to draw.
type Body int

// Supported bodies.
const (
	Earth Body = iota
	Mars
	Jupiter
	Mercury
	Venus
	Neptune
)

// Kind groups bodies that share a feature set.
type Kind int

const (
	// Rocky bodies get terrain blobs.
	Rocky Kind = iota
	// GasGiant bodies get bands and storm ovals.
	GasGiant
)

var bodyNames = map[Body]string{
	Earth:   "earth",
	Mars:    "mars",
	Jupiter: "jupiter",
	Mercury: "mercury",
	Venus:   "venus",
	Neptune: "neptune",
}

// String returns the lower-case body name.
func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return fmt.Sprintf("body(%d)", int(b))
}

// Title returns the display name, e.g. "Earth".
func (b Body) Title() string {
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Kind returns the feature set used for the body.
func (b Body) Kind() Kind {
	switch b {
	case Jupiter, Neptune:
		return GasGiant
	default:
		return Rocky
	}
}

// Valid reports whether b is a known body.
func (b Body) Valid() bool {
	_, ok := bodyNames[b]
	return ok
}

// String returns the kind name.
func (k Kind) String() string {
	if k == GasGiant {
		return "gas_giant"
	}
	return "rocky"
}

// Bodies returns every supported body in declaration order.
func Bodies() []Body {
	return []Body{Earth, Mars, Jupiter, Mercury, Venus, Neptune}
}

// ParseBody resolves a body name, ignoring case and surrounding space.
func ParseBody(name string) (Body, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, b := range Bodies() {
		if bodyNames[b] == needle {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown body %q: %w", name, model.ErrInvalidParameter)
}

// stop is a gradient color stop in hex notation.
type stop struct {
	offset float64
	hex    string
	alpha  float64
}

// palette holds the per-body colors and proportions.
type palette struct {
	space      string  // background fill
	radius     float64 // disc radius as a fraction of the raster size
	disc       []stop  // primary gradient stops
	linearDisc bool    // gas giants use a top-to-bottom base gradient
	focusX     float64 // light source offset as a fraction of the radius
	focusY     float64
	halo       string // atmosphere tint, empty for none

	features []string // blob / band colors
	shadow   string   // darker companion color for blobs and bands
	storm    string   // storm oval color, gas giants only
	grain    []string // grain dot colors
	grainMax float64  // maximum grain alpha
	clouds   bool

	specular float64 // peak specular alpha
	rim      float64 // rim stroke alpha
}

var palettes = map[Body]palette{
	Earth: {
		space:  "#02061a",
		radius: 0.42,
		disc: []stop{
			{0, "#cfeeff", 1},
			{0.35, "#4bb5e4", 1},
			{1, "#0c507f", 1},
		},
		focusX:   -0.18,
		focusY:   -0.12,
		halo:     "#64aaff",
		features: []string{"#3aa25a", "#2f8a47", "#3a9c54"},
		shadow:   "#1f6b34",
		grain:    []string{"#0a233c", "#0a3c1e"},
		grainMax: 0.07,
		clouds:   true,
		specular: 0.92,
		rim:      0.12,
	},
	Mars: {
		space:  "#020114",
		radius: 0.42,
		disc: []stop{
			{0, "#ffb786", 1},
			{0.4, "#d35f3d", 1},
			{1, "#8e3b2c", 1},
		},
		focusX:   -0.08,
		focusY:   -0.08,
		features: []string{"#5a1e19", "#6b2a20"},
		shadow:   "#3d120e",
		grain:    []string{"#78281e"},
		grainMax: 0.08,
		specular: 0.86,
		rim:      0.10,
	},
	Mercury: {
		space:  "#03030a",
		radius: 0.42,
		disc: []stop{
			{0, "#e2e2e2", 1},
			{0.45, "#a0a0a0", 1},
			{1, "#4d4d4d", 1},
		},
		focusX:   -0.1,
		focusY:   -0.1,
		features: []string{"#6e6e6e", "#7d7d7d"},
		shadow:   "#3a3a3a",
		grain:    []string{"#2b2b2b", "#f0f0f0"},
		grainMax: 0.07,
		specular: 0.8,
		rim:      0.12,
	},
	Venus: {
		space:  "#05030a",
		radius: 0.42,
		disc: []stop{
			{0, "#fff1c9", 1},
			{0.4, "#e3bb76", 1},
			{1, "#9c6b2e", 1},
		},
		focusX:   -0.12,
		focusY:   -0.1,
		halo:     "#ffe0a0",
		features: []string{"#c99a55", "#d8ad68"},
		shadow:   "#8a5a25",
		grain:    []string{"#fff4d6"},
		grainMax: 0.06,
		specular: 0.7,
		rim:      0.08,
	},
	Jupiter: {
		space:  "#02030a",
		radius: 0.44,
		disc: []stop{
			{0, "#f3c48b", 1},
			{0.5, "#d99a6b", 1},
			{1, "#b06a3a", 1},
		},
		linearDisc: true,
		focusX:     -0.05,
		focusY:     -0.05,
		features:   []string{"#3c2314", "#8a5a3a"},
		shadow:     "#3c2314",
		storm:      "#b05a3f",
		grain:      []string{"#462d1c"},
		grainMax:   0.07,
		specular:   0.82,
		rim:        0.08,
	},
	Neptune: {
		space:  "#01020c",
		radius: 0.44,
		disc: []stop{
			{0, "#9fd2ff", 1},
			{0.5, "#4b70dd", 1},
			{1, "#1d2f8a", 1},
		},
		linearDisc: true,
		focusX:     -0.05,
		focusY:     -0.05,
		features:   []string{"#2a3f9e", "#6f9cf0"},
		shadow:     "#16236b",
		storm:      "#14205e",
		grain:      []string{"#dff0ff"},
		grainMax:   0.05,
		specular:   0.8,
		rim:        0.1,
	},
}
