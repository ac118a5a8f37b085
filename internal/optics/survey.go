package optics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/geometry"
)

// SurveyTable is a Surveyor backed by survey rows sorted in s. Like Table it
// interpolates elements found only through its Locator.
type SurveyTable struct {
	length  float64
	rows    []geometry.SurveyPoint
	index   map[string]int
	locator Locator

	fitOnce sync.Once
	fit     *linearColumns
	fitErr  error
}

// Verify at compile time that *SurveyTable implements Surveyor.
var _ Surveyor = (*SurveyTable)(nil)

// NewSurveyTable copies rows, sorts them by s and indexes them by name.
func NewSurveyTable(length float64, rows []geometry.SurveyPoint) (*SurveyTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty survey", bberr.ErrInvalidParams)
	}
	t := &SurveyTable{
		length: length,
		rows:   append([]geometry.SurveyPoint(nil), rows...),
		index:  make(map[string]int, len(rows)),
	}
	sort.SliceStable(t.rows, func(i, j int) bool { return t.rows[i].S < t.rows[j].S })
	for i, r := range t.rows {
		if _, dup := t.index[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate survey row %q", bberr.ErrInvalidParams, r.Name)
		}
		t.index[r.Name] = i
	}
	return t, nil
}

// WithLocator returns a copy of the survey that resolves unknown names
// through loc.
func (t *SurveyTable) WithLocator(loc Locator) *SurveyTable {
	return &SurveyTable{length: t.length, rows: t.rows, index: t.index, locator: loc}
}

// Frame returns the absolute survey row of name.
func (t *SurveyTable) Frame(name string) (geometry.SurveyPoint, error) {
	if i, ok := t.index[name]; ok {
		return t.rows[i], nil
	}
	if t.locator == nil {
		return geometry.SurveyPoint{}, fmt.Errorf("%w: no survey row for %q", bberr.ErrElementNotFound, name)
	}
	s, err := t.locator.SPosition(name)
	if err != nil {
		return geometry.SurveyPoint{}, err
	}

	t.fitOnce.Do(func() {
		xs := make([]float64, len(t.rows))
		cols := make([][]float64, 6)
		for i, r := range t.rows {
			xs[i] = r.S
			for j, v := range []float64{r.X, r.Y, r.Z, r.Theta, r.Phi, r.Psi} {
				cols[j] = append(cols[j], v)
			}
		}
		for _, angles := range cols[3:] {
			unwrapAngles(angles)
		}
		t.fit, t.fitErr = fitLinearColumns(xs, cols)
	})
	if t.fitErr != nil {
		return geometry.SurveyPoint{}, t.fitErr
	}
	v := t.fit.at(s)
	return geometry.SurveyPoint{
		Name: name, S: s,
		X: v[0], Y: v[1], Z: v[2],
		Theta: wrapAngle(v[3]), Phi: wrapAngle(v[4]), Psi: wrapAngle(v[5]),
	}, nil
}

// unwrapAngles removes the 2 pi jumps between consecutive angles, so that
// interpolating between them follows the shorter arc.
func unwrapAngles(a []float64) {
	for i := 1; i < len(a); i++ {
		a[i] = a[i-1] + math.Remainder(a[i]-a[i-1], 2*math.Pi)
	}
}

// wrapAngle brings a into [-pi, pi].
func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

// Survey re-expresses the table relative to the origin element.
func (t *SurveyTable) Survey(origin string) (Survey, error) {
	o, err := t.Frame(origin)
	if err != nil {
		return nil, fmt.Errorf("survey origin: %w", err)
	}
	return anchoredSurvey{table: t, origin: o}, nil
}

type anchoredSurvey struct {
	table  *SurveyTable
	origin geometry.SurveyPoint
}

func (a anchoredSurvey) Frame(name string) (geometry.SurveyPoint, error) {
	sp, err := a.table.Frame(name)
	if err != nil {
		return geometry.SurveyPoint{}, err
	}
	return sp.RelativeTo(a.origin), nil
}

func (a anchoredSurvey) Reverse() Survey {
	return reversedSurvey{base: a, length: a.table.length}
}

type reversedSurvey struct {
	base   Survey
	length float64
}

func (r reversedSurvey) Frame(name string) (geometry.SurveyPoint, error) {
	sp, err := r.base.Frame(name)
	if err != nil {
		return geometry.SurveyPoint{}, err
	}
	out := sp.Reversed()
	out.S = r.length - sp.S
	return out, nil
}

func (r reversedSurvey) Reverse() Survey { return r.base }
