package texture

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/gogpu/gg"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
)

// DefaultSize is the raster edge used by the rounds.
const DefaultSize = 700

// DefaultGrainDensity is the number of grain dots drawn inside the disc.
const DefaultGrainDensity = 1100

// Layer is one step of the drawing pipeline.
type Layer string

// Pipeline layers, in drawing order.
const (
	LayerBackground Layer = "background"
	LayerHalo       Layer = "halo"
	LayerDisc       Layer = "disc"
	LayerTerrain    Layer = "terrain"
	LayerClouds     Layer = "clouds"
	LayerBands      Layer = "bands"
	LayerStorm      Layer = "storm"
	LayerGrain      Layer = "grain"
	LayerSpecular   Layer = "specular"
	LayerRim        Layer = "rim"
)

// Option configures Synthesize.
type Option func(*options)

type options struct {
	grainDensity int
}

func defaultOptions() options {
	return options{grainDensity: DefaultGrainDensity}
}

// WithGrainDensity sets the number of grain dots. Zero disables the pass.
func WithGrainDensity(n int) Option {
	return func(o *options) {
		o.grainDensity = n
	}
}

// Layers returns the drawing plan for a body. The plan depends only on the
// body, so rocky bodies always get terrain and gas giants always get bands.
func Layers(body Body) []Layer {
	p, ok := palettes[body]
	if !ok {
		return nil
	}

	layers := []Layer{LayerBackground}
	if p.halo != "" {
		layers = append(layers, LayerHalo)
	}
	layers = append(layers, LayerDisc)

	switch body.Kind() {
	case GasGiant:
		layers = append(layers, LayerBands, LayerStorm)
	default:
		layers = append(layers, LayerTerrain)
		if p.clouds {
			layers = append(layers, LayerClouds)
		}
	}

	return append(layers, LayerGrain, LayerSpecular, LayerRim)
}

// Synthesize draws a size×size planet raster for body.
// A nil rng falls back to a time-seeded source; pass a seeded source for
// reproducible output.
func Synthesize(body Body, size int, rng *rand.Rand, opts ...Option) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("raster size %d: %w", size, model.ErrInvalidParameter)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.grainDensity < 0 {
		return nil, fmt.Errorf("grain density %d: %w", o.grainDensity, model.ErrInvalidParameter)
	}

	p, ok := palettes[body]
	if !ok {
		return nil, fmt.Errorf("body %v: %w", body, model.ErrInvalidParameter)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pm := gg.NewPixmap(size, size)
	dc := gg.NewContext(size, size, gg.WithPixmap(pm))
	defer dc.Close()

	s := &sketch{
		dc:  dc,
		rng: rng,
		p:   p,
		cx:  float64(size) / 2,
		cy:  float64(size) / 2,
		r:   float64(size) * p.radius,
	}

	for _, layer := range Layers(body) {
		s.draw(layer, o)
	}

	_ = dc.FlushGPU()
	return pm.ToImage(), nil
}

// sketch holds the drawing state for one raster.
type sketch struct {
	dc  *gg.Context
	rng *rand.Rand
	p   palette

	cx, cy, r float64
}

func (s *sketch) draw(layer Layer, o options) {
	switch layer {
	case LayerBackground:
		s.dc.ClearWithColor(gg.Hex(s.p.space))
	case LayerHalo:
		s.halo()
	case LayerDisc:
		s.disc()
	case LayerTerrain:
		s.terrain()
	case LayerClouds:
		s.clouds()
	case LayerBands:
		s.bands()
	case LayerStorm:
		s.storm()
	case LayerGrain:
		s.grain(o.grainDensity)
	case LayerSpecular:
		s.specular()
	case LayerRim:
		s.rim()
	}
}

// halo paints a faint atmosphere glow around the disc.
func (s *sketch) halo() {
	tint := gg.Hex(s.p.halo)
	g := gg.NewRadialGradientBrush(s.cx, s.cy, s.r*0.55, s.r*1.3).
		AddColorStop(0, withAlpha(tint, 0.06)).
		AddColorStop(1, withAlpha(tint, 0))
	s.shade(g, s.cx, s.cy, s.r*1.2)
}

// disc paints the primary gradient that sets base color and lighting.
func (s *sketch) disc() {
	var brush gg.Brush
	if s.p.linearDisc {
		g := gg.NewLinearGradientBrush(0, s.cy-s.r, 0, s.cy+s.r)
		for _, st := range s.p.disc {
			g.AddColorStop(st.offset, withAlpha(gg.Hex(st.hex), st.alpha))
		}
		brush = g
	} else {
		g := gg.NewRadialGradientBrush(s.cx, s.cy, s.r*0.02, s.r*1.05).
			SetFocus(s.cx+s.r*s.p.focusX, s.cy+s.r*s.p.focusY)
		for _, st := range s.p.disc {
			g.AddColorStop(st.offset, withAlpha(gg.Hex(st.hex), st.alpha))
		}
		brush = g
	}
	s.shade(brush, s.cx, s.cy, s.r)
}

// specular paints a soft radial glint toward the upper-left.
func (s *sketch) specular() {
	fx := s.cx - s.r*0.4
	fy := s.cy - s.r*0.3
	g := gg.NewRadialGradientBrush(s.cx-s.r*0.1, s.cy-s.r*0.07, s.r*0.02, s.r*0.9).
		SetFocus(fx, fy).
		AddColorStop(0, withAlpha(gg.White, s.p.specular)).
		AddColorStop(0.12, withAlpha(gg.White, s.p.specular*0.18)).
		AddColorStop(1, withAlpha(gg.White, 0))
	s.shade(g, s.cx, s.cy, s.r)
}

// rim strokes a thin dark outline around the disc.
func (s *sketch) rim() {
	s.dc.SetRGBA(0, 0, 0, s.p.rim)
	s.dc.SetLineWidth(2)
	s.dc.DrawCircle(s.cx, s.cy, s.r)
	_ = s.dc.Stroke()
}

// shade fills a disc of radius around (cx, cy) with brush b.
func (s *sketch) shade(b gg.Brush, cx, cy, radius float64) {
	s.dc.SetFillBrush(b)
	s.dc.DrawCircle(cx, cy, radius)
	_ = s.dc.Fill()
}

func withAlpha(c gg.RGBA, a float64) gg.RGBA {
	c.A = a
	return c
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
