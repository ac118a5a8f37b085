// Package optics provides the optics and survey queries the beam-beam
// configuration needs, and a table-backed implementation of them.
//
// A View answers per-element optics queries for one direction of motion.
// Reverse gives the view of the counter-rotating beam, and Crab gives the
// orbit of a particle displaced longitudinally through the crab cavities.
package optics

import (
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/track"
)

// View answers optics queries at named elements.
type View interface {
	// Point returns the optics row at the named element.
	Point(name string) (Point, error)
	// Length returns the length of the line.
	Length() float64
	// Reference returns the reference particle.
	Reference() track.Reference
	// ParticleOnCO returns the closed-orbit particle at the start of the line.
	ParticleOnCO() track.Particle
	// Crab returns the frozen-longitudinal 4D view of a particle at zeta0.
	Crab(zeta0 float64) (View, error)
	// Reverse returns the view of a beam travelling the line backwards.
	Reverse() View
}

// Survey answers lab-frame placement queries at named elements.
type Survey interface {
	Frame(name string) (geometry.SurveyPoint, error)
	Reverse() Survey
}

// Surveyor starts a survey at a given element, which is placed at the lab
// origin with zero angles.
type Surveyor interface {
	Survey(origin string) (Survey, error)
}

// Locator finds elements that are not rows of a table, typically the line
// the lenses were installed in.
type Locator interface {
	SPosition(name string) (float64, error)
}

type reversedView struct {
	base View
}

func (r reversedView) Point(name string) (Point, error) {
	p, err := r.base.Point(name)
	if err != nil {
		return Point{}, err
	}
	return p.Reversed(r.base.Length()), nil
}

func (r reversedView) Length() float64            { return r.base.Length() }
func (r reversedView) Reference() track.Reference { return r.base.Reference() }
func (r reversedView) Reverse() View              { return r.base }

func (r reversedView) ParticleOnCO() track.Particle {
	return ReversedParticle(r.base.ParticleOnCO())
}

func (r reversedView) Crab(zeta0 float64) (View, error) {
	return crabView{base: r, zeta0: zeta0}, nil
}

type crabView struct {
	base  View
	zeta0 float64
}

func (c crabView) Point(name string) (Point, error) {
	p, err := c.base.Point(name)
	if err != nil {
		return Point{}, err
	}
	return p.Crabbed(c.zeta0), nil
}

func (c crabView) Length() float64            { return c.base.Length() }
func (c crabView) Reference() track.Reference { return c.base.Reference() }
func (c crabView) Reverse() View              { return reversedView{base: c} }

func (c crabView) ParticleOnCO() track.Particle {
	p := c.base.ParticleOnCO()
	p.Zeta += c.zeta0
	return p
}

func (c crabView) Crab(zeta0 float64) (View, error) {
	return crabView{base: c.base, zeta0: c.zeta0 + zeta0}, nil
}
