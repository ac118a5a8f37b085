package track

import (
	"fmt"
	"sort"

	"github.com/banshee-data/beambeam/internal/bberr"
)

type entry struct {
	name string
	s    float64
	el   Element
}

// Sequence is an in-memory Line of thin elements. Drifts between elements
// are implicit and do not move the particle.
type Sequence struct {
	length  float64
	ref     Reference
	entries []entry
	index   map[string]int
}

// Verify at compile time that *Sequence implements Line.
var _ Line = (*Sequence)(nil)

// NewSequence creates an empty line of the given length.
func NewSequence(length float64, ref Reference) (*Sequence, error) {
	if !(length > 0) {
		return nil, fmt.Errorf("%w: line length must be positive, got %g", bberr.ErrInvalidParams, length)
	}
	return &Sequence{length: length, ref: ref, index: map[string]int{}}, nil
}

// Length returns the line length.
func (q *Sequence) Length() float64 { return q.length }

// ParticleRef returns the reference particle.
func (q *Sequence) ParticleRef() Reference { return q.ref }

// SPosition returns the s position of name.
func (q *Sequence) SPosition(name string) (float64, error) {
	i, ok := q.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", bberr.ErrElementNotFound, name)
	}
	return q.entries[i].s, nil
}

// Insert places el at s. Elements sharing the same s keep insertion order.
func (q *Sequence) Insert(name string, el Element, s float64) error {
	if name == "" {
		return fmt.Errorf("%w: empty element name", bberr.ErrInvalidParams)
	}
	if _, dup := q.index[name]; dup {
		return fmt.Errorf("%w: element %q already in line", bberr.ErrInvalidParams, name)
	}
	if s < 0 || s > q.length {
		return fmt.Errorf("%w: s=%g outside line [0, %g] for %q", bberr.ErrInvalidParams, s, q.length, name)
	}

	at := sort.Search(len(q.entries), func(i int) bool { return q.entries[i].s > s })
	q.entries = append(q.entries, entry{})
	copy(q.entries[at+1:], q.entries[at:])
	q.entries[at] = entry{name: name, s: s, el: el}
	for i := at; i < len(q.entries); i++ {
		q.index[q.entries[i].name] = i
	}
	return nil
}

// Names returns the element names in tracking order.
func (q *Sequence) Names() []string {
	out := make([]string, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.name
	}
	return out
}

// Element returns the named element.
func (q *Sequence) Element(name string) (Element, bool) {
	i, ok := q.index[name]
	if !ok {
		return nil, false
	}
	return q.entries[i].el, true
}

// Replace swaps the element stored under name, keeping its position.
func (q *Sequence) Replace(name string, el Element) error {
	i, ok := q.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", bberr.ErrElementNotFound, name)
	}
	q.entries[i].el = el
	return nil
}
