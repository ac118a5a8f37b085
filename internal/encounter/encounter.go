// Package encounter enumerates the beam-beam encounters of one beam.
//
// An encounter is either a head-on slice at an interaction point (IP) or a
// long-range encounter at a multiple of half the bunch spacing from it. Each
// encounter is identified by a deterministic element name which is the join
// key between the two beams and the name of the lens installed in the line.
package encounter

import (
	"fmt"
	"sort"

	"github.com/banshee-data/beambeam/internal/bberr"
)

// Kind is the encounter label.
type Kind string

const (
	KindHeadOn    Kind = "bb_ho"
	KindLongRange Kind = "bb_lr"
)

// ParseKind validates a label read from a table or a file.
func ParseKind(label string) (Kind, error) {
	switch Kind(label) {
	case KindHeadOn, KindLongRange:
		return Kind(label), nil
	}
	return "", fmt.Errorf("%w: %q", bberr.ErrUnknownKind, label)
}

// Encounter is one beam-beam interaction instance as seen by one beam.
type Encounter struct {
	Beam             string
	OtherBeam        string
	IPName           string
	Kind             Kind
	Identifier       int
	ElementName      string
	OtherElementName string

	// AtPosition is the longitudinal offset from the IP where the lens is
	// installed.
	AtPosition float64
	// SCrab is the distance used to evaluate crab-cavity displacements.
	SCrab float64

	SelfParticleCharge   float64
	SelfRelativisticBeta float64
	SelfFracOfBunch      float64
}

// Table maps element names to encounters. Names are unique.
type Table struct {
	rows  map[string]*Encounter
	names []string
}

// NewTable indexes rows by element name, rejecting duplicates.
func NewTable(rows []*Encounter) (*Table, error) {
	t := &Table{
		rows:  make(map[string]*Encounter, len(rows)),
		names: make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		if _, dup := t.rows[r.ElementName]; dup {
			return nil, fmt.Errorf("%w: duplicate element name %q", bberr.ErrInvalidParams, r.ElementName)
		}
		t.rows[r.ElementName] = r
		t.names = append(t.names, r.ElementName)
	}
	sort.Strings(t.names)
	return t, nil
}

// Len returns the number of encounters.
func (t *Table) Len() int { return len(t.names) }

// Names returns the element names in sorted order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Get returns the encounter installed under name.
func (t *Table) Get(name string) (*Encounter, bool) {
	e, ok := t.rows[name]
	return e, ok
}

// Rows returns the encounters sorted by element name.
func (t *Table) Rows() []*Encounter {
	out := make([]*Encounter, len(t.names))
	for i, n := range t.names {
		out[i] = t.rows[n]
	}
	return out
}

// IPNames returns the distinct IP names in order of first appearance in the
// sorted table.
func (t *Table) IPNames() []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range t.names {
		ip := t.rows[n].IPName
		if !seen[ip] {
			seen[ip] = true
			out = append(out, ip)
		}
	}
	return out
}

// WithNegatedPositions returns a copy with AtPosition negated. Encounters of
// the counter-rotating beam are installed in a line described in the
// direction of the clockwise beam.
func (t *Table) WithNegatedPositions() *Table {
	rows := make([]*Encounter, 0, t.Len())
	for _, e := range t.Rows() {
		c := *e
		c.AtPosition = -e.AtPosition
		rows = append(rows, &c)
	}
	out, _ := NewTable(rows) // names are already unique
	return out
}
