// Package geometry places beam-beam encounters in a shared laboratory frame.
//
// A survey gives, for every element, the position of the reference orbit and
// the orientation of the local (x, y, s) frame as three MAD-X style angles
// (theta, phi, psi). Adding the closed-orbit offsets from the optics gives the
// actual lab position of the beam at that element (LabPoint).
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	unitX = r3.Vec{X: 1}
	unitY = r3.Vec{Y: 1}
	unitZ = r3.Vec{Z: 1}
)

// SurveyPoint is one survey row.
type SurveyPoint struct {
	Name  string  `json:"name" yaml:"name"`
	S     float64 `json:"s" yaml:"s"`
	X     float64 `json:"X" yaml:"X"`
	Y     float64 `json:"Y" yaml:"Y"`
	Z     float64 `json:"Z" yaml:"Z"`
	Theta float64 `json:"theta" yaml:"theta"`
	Phi   float64 `json:"phi" yaml:"phi"`
	Psi   float64 `json:"psi" yaml:"psi"`
}

// Position returns the reference-orbit position.
func (sp SurveyPoint) Position() r3.Vec {
	return r3.Vec{X: sp.X, Y: sp.Y, Z: sp.Z}
}

// Frame returns the local orthonormal basis (ex, ey, ez).
//
// The rotation is W = Ry(theta) Rx(-phi) Rz(psi), applied right to left.
func (sp SurveyPoint) Frame() (ex, ey, ez r3.Vec) {
	psi := r3.NewRotation(sp.Psi, unitZ)
	phi := r3.NewRotation(-sp.Phi, unitX)
	theta := r3.NewRotation(sp.Theta, unitY)
	w := func(v r3.Vec) r3.Vec {
		return theta.Rotate(phi.Rotate(psi.Rotate(v)))
	}
	return w(unitX), w(unitY), w(unitZ)
}

// Reversed returns the point as seen by a beam travelling the line
// backwards, with the survey still running in the forward direction: the lab
// is turned by pi around Y, so X and Z change sign, theta is kept and phi and
// psi change sign. The local x and s axes are flipped, y is kept.
func (sp SurveyPoint) Reversed() SurveyPoint {
	out := sp
	out.X = -sp.X
	out.Z = -sp.Z
	out.Phi = -sp.Phi
	out.Psi = -sp.Psi
	return out
}

// FromFrame recovers the survey angles from an orthonormal frame.
func FromFrame(name string, s float64, origin, ex, ey, ez r3.Vec) SurveyPoint {
	return SurveyPoint{
		Name:  name,
		S:     s,
		X:     origin.X,
		Y:     origin.Y,
		Z:     origin.Z,
		Theta: math.Atan2(ez.X, ez.Z),
		Phi:   math.Asin(math.Max(-1, math.Min(1, ez.Y))),
		Psi:   math.Atan2(ex.Y, ey.Y),
	}
}

// RelativeTo expresses sp in the frame of origin, as if the survey had been
// started at origin with zero position and angles.
func (sp SurveyPoint) RelativeTo(origin SurveyPoint) SurveyPoint {
	ox, oy, oz := origin.Frame()
	local := func(v r3.Vec) r3.Vec {
		return r3.Vec{X: r3.Dot(v, ox), Y: r3.Dot(v, oy), Z: r3.Dot(v, oz)}
	}
	ex, ey, ez := sp.Frame()
	return FromFrame(sp.Name, sp.S,
		local(r3.Sub(sp.Position(), origin.Position())),
		local(ex), local(ey), local(ez))
}

// AtOrigin reports whether the point sits exactly at the lab origin.
func (sp SurveyPoint) AtOrigin() bool {
	return sp.X == 0 && sp.Y == 0 && sp.Z == 0
}
