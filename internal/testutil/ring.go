package testutil

import (
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/track"
)

// IP is an interaction point of a Ring. Orbit values are those of the
// clockwise beam; the anticlockwise beam has the opposite sign.
type IP struct {
	Name string
	S    float64

	HalfCrossingX, HalfCrossingY     float64
	HalfSeparationX, HalfSeparationY float64

	// CrabDxZeta is dx/dzeta of the clockwise beam around the IP.
	CrabDxZeta float64
}

// Ring is a straight two-beam collider used as a fixture: flat survey along
// Z, constant beta functions and a linear orbit across a straight section of
// half-length Window around each IP.
type Ring struct {
	Length   float64
	Beta0    float64
	BetaStar float64
	Window   float64
	IPs      []IP
}

// DefaultRing has one IP in the middle of a 1 km ring.
func DefaultRing() Ring {
	return Ring{
		Length:   1000,
		Beta0:    0.999999,
		BetaStar: 0.5,
		Window:   100,
		IPs:      []IP{{Name: "ip1", S: 500}},
	}
}

// Lattices returns the clockwise line and the anticlockwise line, the latter
// described in the clockwise direction of motion as the tracker sees it.
func (r Ring) Lattices() (cw, acw *optics.Lattice) {
	b1 := r.rows(1)
	b2 := r.rows(-1)

	ref := track.Reference{Q0: 1, Beta0: r.Beta0}
	cw = &optics.Lattice{Name: "ring_b1", Length: r.Length, Reference: ref}
	acw = &optics.Lattice{Name: "ring_b4", Length: r.Length, Reference: ref}

	for _, p := range b1 {
		cw.Twiss = append(cw.Twiss, p)
		cw.Survey = append(cw.Survey, geometry.SurveyPoint{Name: p.Name, S: p.S, Z: p.S})
	}
	for _, p := range b2 {
		q := p.Reversed(r.Length)
		acw.Twiss = append(acw.Twiss, q)
		acw.Survey = append(acw.Survey, geometry.SurveyPoint{Name: q.Name, S: q.S, Z: q.S})
	}
	return cw, acw
}

// rows builds the optics of one beam in the clockwise convention.
func (r Ring) rows(sign float64) []optics.Point {
	flat := func(name string, s float64) optics.Point {
		return optics.Point{Name: name, S: s, Betx: r.BetaStar, Bety: r.BetaStar}
	}
	out := []optics.Point{flat("start", 0), flat("end", r.Length)}
	for _, ip := range r.IPs {
		for _, d := range []struct {
			name string
			ds   float64
		}{{"mkl." + ip.Name, -r.Window}, {ip.Name, 0}, {"mkr." + ip.Name, r.Window}} {
			p := flat(d.name, ip.S+d.ds)
			p.X = sign * (ip.HalfSeparationX + ip.HalfCrossingX*d.ds)
			p.Px = sign * ip.HalfCrossingX
			p.Y = sign * (ip.HalfSeparationY + ip.HalfCrossingY*d.ds)
			p.Py = sign * ip.HalfCrossingY
			p.DxZeta = sign * ip.CrabDxZeta
			out = append(out, p)
		}
	}
	return out
}
