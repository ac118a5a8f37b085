// Package track defines the contracts of the external tracking engine that
// beam-beam lenses are installed into and synchronised against.
//
// The engine itself is out of scope. Sequence is a small in-memory line of
// thin elements used by the command-line tool and by tests.
package track

// Particle holds the six canonical coordinates of one particle.
// Copies are made by value.
type Particle struct {
	X     float64 `json:"x" yaml:"x"`
	Px    float64 `json:"px" yaml:"px"`
	Y     float64 `json:"y" yaml:"y"`
	Py    float64 `json:"py" yaml:"py"`
	Zeta  float64 `json:"zeta" yaml:"zeta"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// Reference is the reference particle of a line.
type Reference struct {
	// Q0 is the charge in units of the elementary charge.
	Q0 float64 `json:"q0" yaml:"q0"`
	// Beta0 is the relativistic beta of the reference particle.
	Beta0 float64 `json:"beta0" yaml:"beta0"`
}

// Element is anything that can be tracked through. Track mutates p in place.
type Element interface {
	Track(p *Particle)
}

// Line is an ordered sequence of named elements.
type Line interface {
	// Length returns the line length in m.
	Length() float64
	// ParticleRef returns the reference particle.
	ParticleRef() Reference
	// SPosition returns the s position of the named element.
	SPosition(name string) (float64, error)
	// Insert places a thin element at s under a unique name.
	Insert(name string, el Element, s float64) error
	// Names returns the element names in tracking order.
	Names() []string
	// Element returns the named element.
	Element(name string) (Element, bool)
}

// Marker is a thin element that does nothing.
type Marker struct{}

// Track leaves p unchanged.
func (Marker) Track(*Particle) {}

// Kicker applies constant momentum kicks, e.g. a thin corrector.
type Kicker struct {
	DPx, DPy float64
}

// Track kicks p.
func (k Kicker) Track(p *Particle) {
	p.Px += k.DPx
	p.Py += k.DPy
}

// TrackLine tracks p once through every element of line in order.
func TrackLine(line Line, p *Particle) {
	for _, name := range line.Names() {
		if el, ok := line.Element(name); ok {
			el.Track(p)
		}
	}
}
