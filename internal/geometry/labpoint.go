package geometry

import "gonum.org/v1/gonum/spatial/r3"

// LabPoint is the lab-frame placement of one beam at one element.
// It is immutable once built; partners share it by pointer.
type LabPoint struct {
	Name string

	// Origin is the survey (reference orbit) position.
	Origin r3.Vec
	// Ex, Ey, Ez is the local orthonormal frame.
	Ex, Ey, Ez r3.Vec

	// X, Y are the closed-orbit offsets in the local frame.
	X, Y float64
	// Px, Py are the local transverse slopes.
	Px, Py float64

	// P is the beam position: Origin + X*Ex + Y*Ey.
	P r3.Vec
}

// NewLabPoint combines a survey row with the closed orbit at the same element.
func NewLabPoint(name string, sp SurveyPoint, x, px, y, py float64) *LabPoint {
	ex, ey, ez := sp.Frame()
	origin := sp.Position()
	return &LabPoint{
		Name:   name,
		Origin: origin,
		Ex:     ex,
		Ey:     ey,
		Ez:     ez,
		X:      x,
		Y:      y,
		Px:     px,
		Py:     py,
		P:      r3.Add(origin, r3.Add(r3.Scale(x, ex), r3.Scale(y, ey))),
	}
}

// WithLongitudinalOf returns a copy of lp whose longitudinal (Z) components
// of Origin and P are taken from ref. Used when the partner comes from a
// mirrored survey of the same beam, neglecting the small angle between the
// two surveys.
func (lp *LabPoint) WithLongitudinalOf(ref *LabPoint) *LabPoint {
	out := *lp
	out.Origin.Z = ref.Origin.Z
	out.P.Z = ref.P.Z
	return &out
}
