// Package wake loads tabulated wake functions and assigns particles to the
// longitudinal bins the wake is evaluated on.
package wake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/units"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// TimeColumn names the column holding the delay behind the source
// particle, in ns.
const TimeColumn = "time"

// TableUnitsToSI converts wake tables in V/pC (longitudinal) or V/pC/mm
// (transverse) to V/C/m.
const TableUnitsToSI = 1e15

const maxTableSize = 64 * 1024 * 1024

// ErrBadTable is returned for wake files that cannot be interpreted.
var ErrBadTable = errors.New("wake: malformed table")

// Component is one wake function sampled on increasing zeta.
type Component struct {
	Name string
	Zeta []float64 // m
	W    []float64
	fn   interp.PiecewiseLinear
}

func newComponent(name string, zeta, w []float64) (*Component, error) {
	for i := 1; i < len(zeta); i++ {
		if !(zeta[i] > zeta[i-1]) {
			return nil, fmt.Errorf("%w: %s: time column is not strictly increasing", ErrBadTable, name)
		}
	}
	c := &Component{Name: name, Zeta: zeta, W: w}
	if err := c.fn.Fit(zeta, w); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadTable, name, err)
	}
	return c, nil
}

// At interpolates the wake at zeta. Outside the table the nearest end value
// is returned.
func (c *Component) At(zeta float64) float64 {
	return c.fn.Predict(zeta)
}

// Kick returns the momentum kick on each particle at zetas from a source
// with the given dipole moment.
func (c *Component) Kick(moment float64, zetas []float64) []float64 {
	out := make([]float64, len(zetas))
	for i, z := range zetas {
		out[i] = moment * c.At(z)
	}
	return out
}

// ScalingConstant is the factor between a tabulated wake in V/C/m and the
// kick in units of p0 per unit dipole moment: q0^2 e / p0c, with p0c in eV.
// Tables give the wake with the sign opposite to the kick it produces, which
// cancels the minus sign of the Lorentz force on a like charge.
func ScalingConstant(q0, p0cEV float64) float64 {
	return q0 * q0 * units.ElementaryCharge / p0cEV
}

// Table holds the components selected from a wake file.
type Table struct {
	Components []*Component
}

// Component returns the named component.
func (t *Table) Component(name string) (*Component, bool) {
	for _, c := range t.Components {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// LoadTable reads a wake file. columns names every column of the file and
// must include TimeColumn; use selects the components to keep, in order.
// Values are multiplied by TableUnitsToSI and scale.
func LoadTable(path string, columns, use []string, scale float64) (*Table, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to stat wake table: %w", err)
	}
	if info.Size() > maxTableSize {
		return nil, fmt.Errorf("wake table too large: %d bytes (max %d)", info.Size(), maxTableSize)
	}
	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open wake table: %w", err)
	}
	defer f.Close()

	t, err := ParseTable(f, columns, use, scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", clean, err)
	}
	monitoring.Logf("wake: loaded %d components from %s", len(t.Components), clean)
	return t, nil
}

// ParseTable is LoadTable on an open reader. Blank lines and lines starting
// with '#' are skipped.
func ParseTable(r io.Reader, columns, use []string, scale float64) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrBadTable, c)
		}
		index[c] = i
	}
	it, ok := index[TimeColumn]
	if !ok {
		return nil, fmt.Errorf("%w: no %q column", ErrBadTable, TimeColumn)
	}
	for _, u := range use {
		if _, ok := index[u]; !ok || u == TimeColumn {
			return nil, fmt.Errorf("%w: unknown component %q", ErrBadTable, u)
		}
	}

	data := make([][]float64, len(columns))
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != len(columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrBadTable, line, len(fields), len(columns))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadTable, line, err)
			}
			data[i] = append(data[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	n := len(data[it])
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least two rows, got %d", ErrBadTable, n)
	}

	// Time increases down the file; zeta = -c t, so reverse to get
	// increasing zeta.
	zeta := make([]float64, n)
	for i, ns := range data[it] {
		zeta[n-1-i] = units.NanosecondsToZeta(ns)
	}

	t := &Table{}
	for _, u := range use {
		w := make([]float64, n)
		for i, v := range data[index[u]] {
			w[n-1-i] = v
		}
		floats.Scale(TableUnitsToSI*scale, w)
		c, err := newComponent(u, zeta, w)
		if err != nil {
			return nil, err
		}
		t.Components = append(t.Components, c)
	}
	return t, nil
}
