package optics

import (
	"gonum.org/v1/gonum/interp"
)

// linearColumns interpolates several table columns linearly in s. Rows that
// repeat the previous s (thin elements at the same place) are skipped, and
// values outside the table range are clamped to the end rows.
type linearColumns struct {
	constant []float64
	fits     []interp.PiecewiseLinear
}

func fitLinearColumns(s []float64, cols [][]float64) (*linearColumns, error) {
	keep := make([]int, 0, len(s))
	for i := range s {
		if len(keep) == 0 || s[i] > s[keep[len(keep)-1]] {
			keep = append(keep, i)
		}
	}

	lc := &linearColumns{}
	if len(keep) < 2 {
		for _, c := range cols {
			lc.constant = append(lc.constant, c[keep[0]])
		}
		return lc, nil
	}

	xs := make([]float64, len(keep))
	for k, i := range keep {
		xs[k] = s[i]
	}
	lc.fits = make([]interp.PiecewiseLinear, len(cols))
	for j, c := range cols {
		ys := make([]float64, len(keep))
		for k, i := range keep {
			ys[k] = c[i]
		}
		if err := lc.fits[j].Fit(xs, ys); err != nil {
			return nil, err
		}
	}
	return lc, nil
}

// at evaluates every column at s.
func (lc *linearColumns) at(s float64) []float64 {
	if lc.fits == nil {
		return append([]float64(nil), lc.constant...)
	}
	out := make([]float64, len(lc.fits))
	for j := range lc.fits {
		out[j] = lc.fits[j].Predict(s)
	}
	return out
}
