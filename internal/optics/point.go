package optics

import "github.com/banshee-data/beambeam/internal/track"

// Point is one row of an optics table: closed orbit, uncoupled Twiss
// functions and the first-order dependence of the orbit on zeta introduced
// by crab cavities.
type Point struct {
	Name string  `json:"name" yaml:"name"`
	S    float64 `json:"s" yaml:"s"`

	X     float64 `json:"x" yaml:"x"`
	Px    float64 `json:"px" yaml:"px"`
	Y     float64 `json:"y" yaml:"y"`
	Py    float64 `json:"py" yaml:"py"`
	Zeta  float64 `json:"zeta" yaml:"zeta"`
	Delta float64 `json:"delta" yaml:"delta"`

	Betx float64 `json:"betx" yaml:"betx"`
	Alfx float64 `json:"alfx" yaml:"alfx"`
	Bety float64 `json:"bety" yaml:"bety"`
	Alfy float64 `json:"alfy" yaml:"alfy"`

	DxZeta  float64 `json:"dx_zeta" yaml:"dx_zeta"`
	DpxZeta float64 `json:"dpx_zeta" yaml:"dpx_zeta"`
	DyZeta  float64 `json:"dy_zeta" yaml:"dy_zeta"`
	DpyZeta float64 `json:"dpy_zeta" yaml:"dpy_zeta"`
}

// Particle returns the closed-orbit particle at the point.
func (p Point) Particle() track.Particle {
	return track.Particle{X: p.X, Px: p.Px, Y: p.Y, Py: p.Py, Zeta: p.Zeta, Delta: p.Delta}
}

// Reversed returns the point as seen by a beam travelling the line of the
// given length backwards: s runs the other way, x and zeta change sign, and
// so do the derivatives with respect to s of quantities that keep their sign.
func (p Point) Reversed(length float64) Point {
	out := p
	out.S = length - p.S
	out.X = -p.X
	out.Py = -p.Py
	out.Zeta = -p.Zeta
	out.Alfx = -p.Alfx
	out.Alfy = -p.Alfy
	out.DpxZeta = -p.DpxZeta
	out.DyZeta = -p.DyZeta
	return out
}

// ReversedParticle applies the reversal of Point.Reversed to a particle.
func ReversedParticle(p track.Particle) track.Particle {
	p.X = -p.X
	p.Py = -p.Py
	p.Zeta = -p.Zeta
	return p
}

// Crabbed returns the point displaced by a particle at zeta0 in the linear
// approximation of the crab dispersion.
func (p Point) Crabbed(zeta0 float64) Point {
	out := p
	out.X += zeta0 * p.DxZeta
	out.Px += zeta0 * p.DpxZeta
	out.Y += zeta0 * p.DyZeta
	out.Py += zeta0 * p.DpyZeta
	out.Zeta += zeta0
	return out
}

// columns returns pointers to the interpolated fields, S excluded.
func (p *Point) columns() []*float64 {
	return []*float64{
		&p.X, &p.Px, &p.Y, &p.Py, &p.Zeta, &p.Delta,
		&p.Betx, &p.Alfx, &p.Bety, &p.Alfy,
		&p.DxZeta, &p.DpxZeta, &p.DyZeta, &p.DpyZeta,
	}
}
