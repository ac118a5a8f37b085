// Package lens holds the beam-beam lens elements installed in a tracker line
// and the operations that configure them: installing placeholder lenses,
// binding resolved encounters to them and synchronising their closed-orbit
// reference shifts.
//
// A Lens is a tagged variant over the two lens kinds. The numerical kick is
// delegated to a Backend chosen when the lens is installed.
package lens

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/track"
)

// Kind selects the lens model.
type Kind int

const (
	// Kind2D is the weak-strong transverse lens used for long-range encounters.
	Kind2D Kind = iota + 1
	// Kind3D is the boosted, sliced lens used for head-on encounters.
	Kind3D
)

func (k Kind) String() string {
	switch k {
	case Kind2D:
		return "bb2d"
	case Kind3D:
		return "bb3d"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Params2D are the strong-beam parameters of a 2D lens.
type Params2D struct {
	OtherNumParticles float64 `json:"other_beam_num_particles"`
	OtherQ0           float64 `json:"other_beam_q0"`
	OtherBeta0        float64 `json:"other_beam_beta0"`
	Sigma11           float64 `json:"other_beam_Sigma_11"`
	Sigma33           float64 `json:"other_beam_Sigma_33"`
	ShiftX            float64 `json:"other_beam_shift_x"`
	ShiftY            float64 `json:"other_beam_shift_y"`
}

// Shift2D is the orbit-dependent state of a 2D lens. MeanX, MeanY locate the
// strong beam in the weak beam's coordinates; DPx, DPy is the kick felt on the
// closed orbit, subtracted on every passage.
type Shift2D struct {
	MeanX, MeanY float64
	DPx, DPy     float64
}

// Slice is one longitudinal slice of the strong beam.
type Slice struct {
	NumParticles float64      `json:"num_particles"`
	ZetaCenter   float64      `json:"zeta_center"`
	Sigma        optics.Sigma `json:"sigma"`
}

// Params3D are the strong-beam parameters of a 3D lens.
type Params3D struct {
	Phi     float64 `json:"phi"`
	Alpha   float64 `json:"alpha"`
	OtherQ0 float64 `json:"other_beam_q0"`
	ShiftX  float64 `json:"other_beam_shift_x"`
	ShiftY  float64 `json:"other_beam_shift_y"`
	Slices  []Slice `json:"slices"`
}

// Shift3D is the orbit-dependent state of a 3D lens: the closed orbit at the
// lens, subtracted before the kick and added back after it, and the residual
// kick on the closed orbit, subtracted after every passage.
type Shift3D struct {
	RefX, RefPx, RefY, RefPy, RefZeta, RefPzeta float64

	PostSubtractX, PostSubtractPx       float64
	PostSubtractY, PostSubtractPy       float64
	PostSubtractZeta, PostSubtractPzeta float64
}

// Lens is a beam-beam element. Exactly one of the parameter sets is live,
// selected by Kind.
type Lens struct {
	Kind Kind

	Params2D Params2D
	Shift2D  Shift2D

	Params3D Params3D
	Shift3D  Shift3D

	backend Backend
}

var _ track.Element = (*Lens)(nil)

// NewDummy returns a placeholder lens of the given kind: no strong-beam
// particles, unit beam sizes and no crossing.
func NewDummy(kind Kind, b Backend) (*Lens, error) {
	if b == nil {
		b = NullBackend{}
	}
	l := &Lens{Kind: kind, backend: b}
	switch kind {
	case Kind2D:
		l.Params2D = Params2D{OtherBeta0: 1, Sigma11: 1, Sigma33: 1}
	case Kind3D:
		l.Params3D = Params3D{Slices: []Slice{{Sigma: optics.Sigma{S11: 1, S33: 1}}}}
	default:
		return nil, fmt.Errorf("lens: unknown kind %v", kind)
	}
	return l, nil
}

// Track applies the lens to p.
func (l *Lens) Track(p *track.Particle) {
	switch l.Kind {
	case Kind2D:
		l.backend.Kick2D(p, l.Params2D, l.Shift2D.MeanX, l.Shift2D.MeanY)
		p.Px -= l.Shift2D.DPx
		p.Py -= l.Shift2D.DPy
	case Kind3D:
		s := &l.Shift3D
		p.X -= s.RefX
		p.Px -= s.RefPx
		p.Y -= s.RefY
		p.Py -= s.RefPy
		p.Zeta -= s.RefZeta
		p.Delta -= s.RefPzeta

		l.backend.Kick3D(p, l.Params3D, BoostParameters(l.Params3D.Phi, l.Params3D.Alpha))

		p.X += s.RefX - s.PostSubtractX
		p.Px += s.RefPx - s.PostSubtractPx
		p.Y += s.RefY - s.PostSubtractY
		p.Py += s.RefPy - s.PostSubtractPy
		p.Zeta += s.RefZeta - s.PostSubtractZeta
		p.Delta += s.RefPzeta - s.PostSubtractPzeta
	}
}
