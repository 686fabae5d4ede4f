package texture

import (
	"math"

	"github.com/gogpu/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// terrain draws blobs: continents for Earth, craters and patches elsewhere.
func (s *sketch) terrain() {
	if s.p.clouds {
		s.continents()
		return
	}
	s.craters()
}

// continents lays three land masses with a darker patch for depth.
func (s *sketch) continents() {
	lands := []struct{ dx, dy, sx, sy float64 }{
		{-0.14, -0.02, 0.40, 0.26},
		{0.24, 0.18, 0.22, 0.15},
		{-0.30, 0.28, 0.12, 0.08},
	}

	for i, l := range lands {
		x := s.cx + s.r*l.dx
		y := s.cy + s.r*l.dy
		angle := s.rng.Float64()*0.6 - 0.3

		s.dc.SetColor(s.jitter(s.p.features[i%len(s.p.features)], 0.15).Color())
		s.ellipse(x, y, s.r*l.sx, s.r*l.sy, angle)

		s.dc.SetRGBA(0, 0, 0, 0.06)
		s.ellipse(x+s.r*0.06, y+s.r*0.04, s.r*l.sx*0.36, s.r*l.sy*0.22, 0)
	}

	// Sandy highlight
	s.dc.SetRGBA(1, 0.92, 0.75, 0.18)
	s.ellipse(s.cx+s.r*0.34, s.cy+s.r*0.24, s.r*0.06, s.r*0.03, 0.6)
}

// craters scatters shaded pits across the disc.
func (s *sketch) craters() {
	shadow := gg.Hex(s.p.shadow)
	for i := 0; i < 60; i++ {
		x, y := s.polar(0.05, 0.9, 0.78)
		cr := s.r * (0.01 + s.rng.Float64()*0.06)

		c := s.jitter(s.p.features[i%len(s.p.features)], 0.2)
		s.dc.SetRGBA(c.R, c.G, c.B, 0.16)
		s.ellipse(x, y, cr*1.3, cr*1.1, 0)

		s.dc.SetRGBA(shadow.R, shadow.G, shadow.B, 0.14)
		s.ellipse(x+cr*0.3, y+cr*0.3, cr*1.1, cr*0.9, 0)

		s.dc.SetRGBA(1, 1, 1, 0.06)
		s.ellipse(x-cr*0.22, y-cr*0.22, cr*0.9, cr*0.6, 0)
	}
}

// clouds layers translucent white puffs.
func (s *sketch) clouds() {
	for i := 0; i < 10; i++ {
		a := s.rng.Float64() * math.Pi * 2
		rr := s.r * (0.25 + s.rng.Float64()*0.5)
		x := s.cx + math.Cos(a)*rr*(0.6+s.rng.Float64()*0.4)
		y := s.cy + math.Sin(a)*rr*(0.45+s.rng.Float64()*0.4)
		rx := s.r * (0.12 + s.rng.Float64()*0.16)
		ry := s.r * (0.05 + s.rng.Float64()*0.10)

		s.dc.SetRGBA(1, 1, 1, 0.12+s.rng.Float64()*0.12)
		for k := 0; k < 4; k++ {
			s.ellipse(
				x+(s.rng.Float64()-0.5)*rx*0.6,
				y+(s.rng.Float64()-0.5)*ry*0.5,
				rx*(0.6+s.rng.Float64()*0.8),
				ry*(0.5+s.rng.Float64()),
				s.rng.Float64()*0.7,
			)
		}
	}
}

// bands draws horizontal cloud belts blended between the two feature colors.
func (s *sketch) bands() {
	from := s.colorful(s.p.features[0])
	to := s.colorful(s.p.features[len(s.p.features)-1])

	for i := -7; i <= 7; i++ {
		t := float64(i+7) / 14
		c := from.BlendHcl(to, t).Clamped()
		fi := math.Abs(float64(i))

		y := s.cy + (float64(i)/7)*s.r*0.9
		s.dc.SetRGBA(c.R, c.G, c.B, 0.04+s.rng.Float64()*0.06)
		s.ellipse(s.cx, y, s.r*(0.94-fi*0.006), s.r*(0.06+fi*0.01), s.rng.Float64()*0.04)

		s.dc.SetRGBA(1, 1, 1, 0.01+s.rng.Float64()*0.03)
		s.dc.SetLineWidth(0.8)
		s.dc.DrawEllipse(s.cx, y+s.rng.Float64()*2, s.r*0.92, s.r*0.05)
		_ = s.dc.Stroke()
	}
}

// storm draws the great spot oval.
func (s *sketch) storm() {
	x := s.cx + s.r*(0.15+s.rng.Float64()*0.16)
	y := s.cy + s.r*(0.04+s.rng.Float64()*0.12)

	shadow := gg.Hex(s.p.shadow)
	s.dc.SetRGBA(shadow.R, shadow.G, shadow.B, 0.35)
	s.ellipse(x, y, s.r*0.18, s.r*0.105, 0.42)

	s.dc.SetColor(s.jitter(s.p.storm, 0.08).Color())
	s.ellipse(x, y, s.r*0.16, s.r*0.09, 0.42)
}

// grain scatters small translucent dots at random polar offsets.
func (s *sketch) grain(density int) {
	for i := 0; i < density; i++ {
		a := s.rng.Float64() * math.Pi * 2
		r := s.r * math.Sqrt(s.rng.Float64()) * 0.95
		x := s.cx + math.Cos(a)*r*(0.8+s.rng.Float64()*0.4)
		y := s.cy + math.Sin(a)*r*(0.8+s.rng.Float64()*0.4)
		dot := 0.35 + s.rng.Float64()*1.6

		c := gg.Hex(s.p.grain[s.rng.Intn(len(s.p.grain))])
		s.dc.SetRGBA(c.R, c.G, c.B, 0.01+s.rng.Float64()*(s.p.grainMax-0.01))
		s.dc.DrawCircle(x, y, dot)
		_ = s.dc.Fill()
	}
}

// polar returns a random point at a fraction of the radius in [lo, hi),
// scaled by squash.
func (s *sketch) polar(lo, hi, squash float64) (float64, float64) {
	a := s.rng.Float64() * math.Pi * 2
	rr := s.r * (lo + s.rng.Float64()*(hi-lo))
	return s.cx + math.Cos(a)*rr*squash, s.cy + math.Sin(a)*rr*squash
}

// ellipse fills a rotated ellipse with the current color.
func (s *sketch) ellipse(x, y, rx, ry, angle float64) {
	s.dc.Push()
	if angle != 0 {
		s.dc.RotateAbout(angle, x, y)
	}
	s.dc.DrawEllipse(x, y, rx, ry)
	_ = s.dc.Fill()
	s.dc.Pop()
}

// jitter nudges a palette color in HSV space.
func (s *sketch) jitter(hex string, amount float64) gg.RGBA {
	h, sat, v := s.colorful(hex).Hsv()

	h = math.Mod(h+(s.rng.Float64()*2-1)*amount*30+360, 360)
	sat = clamp01(sat + (s.rng.Float64()*2-1)*amount*0.2)
	v = clamp01(v + (s.rng.Float64()*2-1)*amount*0.2)

	c := colorful.Hsv(h, sat, v).Clamped()
	return gg.RGB(c.R, c.G, c.B)
}

// colorful parses a palette hex color. Palette entries are static, so a parse
// failure falls back to mid grey.
func (s *sketch) colorful(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return c
}
