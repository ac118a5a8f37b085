package optics

import (
	"gonum.org/v1/gonum/mat"
)

// SigmaNames are the independent entries of the 4x4 beam matrix, in the
// order used by tables and lens slices.
var SigmaNames = [10]string{"11", "12", "13", "14", "22", "23", "24", "33", "34", "44"}

// Sigma is the symmetric 4x4 second-moment matrix of (x, px, y, py).
type Sigma struct {
	S11 float64 `json:"Sigma11" yaml:"Sigma11"`
	S12 float64 `json:"Sigma12" yaml:"Sigma12"`
	S13 float64 `json:"Sigma13" yaml:"Sigma13"`
	S14 float64 `json:"Sigma14" yaml:"Sigma14"`
	S22 float64 `json:"Sigma22" yaml:"Sigma22"`
	S23 float64 `json:"Sigma23" yaml:"Sigma23"`
	S24 float64 `json:"Sigma24" yaml:"Sigma24"`
	S33 float64 `json:"Sigma33" yaml:"Sigma33"`
	S34 float64 `json:"Sigma34" yaml:"Sigma34"`
	S44 float64 `json:"Sigma44" yaml:"Sigma44"`
}

// Entries returns the ten entries in SigmaNames order.
func (s Sigma) Entries() [10]float64 {
	return [10]float64{s.S11, s.S12, s.S13, s.S14, s.S22, s.S23, s.S24, s.S33, s.S34, s.S44}
}

// SigmaFromEntries is the inverse of Entries.
func SigmaFromEntries(v [10]float64) Sigma {
	return Sigma{
		S11: v[0], S12: v[1], S13: v[2], S14: v[3],
		S22: v[4], S23: v[5], S24: v[6],
		S33: v[7], S34: v[8],
		S44: v[9],
	}
}

// SymDense returns the full matrix.
func (s Sigma) SymDense() *mat.SymDense {
	return mat.NewSymDense(4, []float64{
		s.S11, s.S12, s.S13, s.S14,
		s.S12, s.S22, s.S23, s.S24,
		s.S13, s.S23, s.S33, s.S34,
		s.S14, s.S24, s.S34, s.S44,
	})
}

// counterRotationSign is diag(S) with x and py changing sign when the
// direction of motion is reversed.
var counterRotationSign = [4]float64{-1, 1, 1, -1}

// CounterRotated returns S Sigma S with S = diag(-1, 1, 1, -1), i.e. the
// matrix expressed for the beam moving the other way.
func (s Sigma) CounterRotated() Sigma {
	v := s.Entries()
	k := 0
	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			v[k] *= counterRotationSign[i] * counterRotationSign[j]
			k++
		}
	}
	return SigmaFromEntries(v)
}

// Uncoupled returns a copy with the x-y coupling entries (13, 14, 23, 24)
// set to zero.
func (s Sigma) Uncoupled() Sigma {
	s.S13, s.S14, s.S23, s.S24 = 0, 0, 0, 0
	return s
}

// IsPositiveSemidefinite reports whether every eigenvalue is above -tol.
// A failed decomposition is reported as not positive semidefinite.
func (s Sigma) IsPositiveSemidefinite(tol float64) bool {
	var eig mat.EigenSym
	if !eig.Factorize(s.SymDense(), false) {
		return false
	}
	for _, v := range eig.Values(nil) {
		if v < -tol {
			return false
		}
	}
	return true
}

// BetatronSigma returns the uncoupled betatron beam matrix at pt for the
// geometric emittances epsX and epsY.
func BetatronSigma(pt Point, epsX, epsY float64) Sigma {
	gamx := (1 + pt.Alfx*pt.Alfx) / pt.Betx
	gamy := (1 + pt.Alfy*pt.Alfy) / pt.Bety
	return Sigma{
		S11: pt.Betx * epsX,
		S12: -pt.Alfx * epsX,
		S22: gamx * epsX,
		S33: pt.Bety * epsY,
		S34: -pt.Alfy * epsY,
		S44: gamy * epsY,
	}
}
