package optics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/track"
	"github.com/banshee-data/beambeam/internal/units"
)

// Table is a View backed by optics rows sorted in s. Elements that are not
// rows are located through an optional Locator and interpolated.
type Table struct {
	length  float64
	ref     track.Reference
	rows    []Point
	index   map[string]int
	locator Locator

	fitOnce sync.Once
	fit     *linearColumns
	fitErr  error
}

// Verify at compile time that *Table implements View.
var _ View = (*Table)(nil)

// NewTable copies rows, sorts them by s and indexes them by name.
func NewTable(length float64, ref track.Reference, rows []Point) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty optics table", bberr.ErrInvalidParams)
	}
	t := &Table{
		length: length,
		ref:    ref,
		rows:   append([]Point(nil), rows...),
		index:  make(map[string]int, len(rows)),
	}
	sort.SliceStable(t.rows, func(i, j int) bool { return t.rows[i].S < t.rows[j].S })
	for i, r := range t.rows {
		if _, dup := t.index[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate optics row %q", bberr.ErrInvalidParams, r.Name)
		}
		t.index[r.Name] = i
	}
	return t, nil
}

// WithLocator returns a copy of the table that resolves unknown names
// through loc.
func (t *Table) WithLocator(loc Locator) *Table {
	return &Table{length: t.length, ref: t.ref, rows: t.rows, index: t.index, locator: loc}
}

// Rows returns the rows in s order.
func (t *Table) Rows() []Point { return append([]Point(nil), t.rows...) }

// Length returns the line length.
func (t *Table) Length() float64 { return t.length }

// Reference returns the reference particle.
func (t *Table) Reference() track.Reference { return t.ref }

// ParticleOnCO returns the closed orbit at the first row.
func (t *Table) ParticleOnCO() track.Particle { return t.rows[0].Particle() }

// Reverse returns the view of the counter-rotating beam.
func (t *Table) Reverse() View { return reversedView{base: t} }

// Crab returns the orbit of a particle at zeta0.
func (t *Table) Crab(zeta0 float64) (View, error) {
	return crabView{base: t, zeta0: zeta0}, nil
}

// Point returns the row called name, or the interpolated optics at the
// located s position of name.
func (t *Table) Point(name string) (Point, error) {
	if i, ok := t.index[name]; ok {
		return t.rows[i], nil
	}
	if t.locator == nil {
		return Point{}, fmt.Errorf("%w: no optics for %q", bberr.ErrElementNotFound, name)
	}
	s, err := t.locator.SPosition(name)
	if err != nil {
		return Point{}, err
	}
	return t.At(name, s)
}

// At interpolates the optics at s and labels the result name.
func (t *Table) At(name string, s float64) (Point, error) {
	t.fitOnce.Do(func() {
		xs := make([]float64, len(t.rows))
		n := len(t.rows[0].columns())
		cols := make([][]float64, n)
		for j := range cols {
			cols[j] = make([]float64, len(t.rows))
		}
		for i := range t.rows {
			xs[i] = t.rows[i].S
			for j, v := range t.rows[i].columns() {
				cols[j][i] = *v
			}
		}
		t.fit, t.fitErr = fitLinearColumns(xs, cols)
	})
	if t.fitErr != nil {
		return Point{}, t.fitErr
	}

	p := Point{Name: name, S: s}
	cols := p.columns()
	for j, v := range t.fit.at(s) {
		*cols[j] = v
	}
	return p, nil
}

// SigmaTable evaluates betatron beam matrices on a view.
type SigmaTable struct {
	view       View
	epsX, epsY float64
}

// BetatronSigmas returns the beam matrices of a beam with normalized
// emittances nemittX and nemittY on v.
func BetatronSigmas(v View, nemittX, nemittY float64) SigmaTable {
	bg := units.BetaGamma(v.Reference().Beta0)
	return SigmaTable{view: v, epsX: nemittX / bg, epsY: nemittY / bg}
}

// At returns the beam matrix at the named element.
func (st SigmaTable) At(name string) (Sigma, error) {
	p, err := st.view.Point(name)
	if err != nil {
		return Sigma{}, err
	}
	return BetatronSigma(p, st.epsX, st.epsY), nil
}

// Emittances returns the geometric emittances.
func (st SigmaTable) Emittances() (epsX, epsY float64) { return st.epsX, st.epsY }
