// Package resolve turns encounter tables into fully specified beam-beam
// interactions.
//
// The stages run in order on a BeamTable: ComputeGeometry places every
// encounter in the lab and attaches its optics, MeasureCrabbing optionally
// records the crab-cavity orbit, CrossReference (or
// CrossReferenceAntisymmetric) copies the partner beam's data, and
// ComputeSeparations derives separations and the crossing angle and plane.
// CounterRotating re-expresses a finished table for a line described in the
// opposite direction.
package resolve

import (
	"fmt"
	"sort"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/optics"
)

// Crab is the closed-orbit change of a crabbed particle at one encounter.
type Crab struct {
	X, Px, Y, Py float64
}

// Resolved is one encounter with everything needed to configure its lens.
type Resolved struct {
	encounter.Encounter

	// S and SIP are the s positions of the encounter and of its IP in the
	// optics the table was resolved with.
	S, SIP float64

	SelfNumParticles float64
	SelfLab          *geometry.LabPoint
	SelfSigma        optics.Sigma
	SelfCrab         Crab

	// OtherLab is shared with the partner table and must not be mutated.
	OtherLab              *geometry.LabPoint
	OtherSigma            optics.Sigma
	OtherNumParticles     float64
	OtherParticleCharge   float64
	OtherRelativisticBeta float64
	OtherCrab             Crab

	SeparationX, SeparationY           float64
	SeparationXNoCrab, SeparationYNoCrab float64

	// DPx, DPy are the slope differences weak minus strong.
	DPx, DPy float64
	// Phi is the half crossing angle and Alpha the crossing plane.
	Phi, Alpha float64
}

// BeamTable holds the resolved encounters of one beam, keyed by element name.
type BeamTable struct {
	beam  string
	rows  map[string]*Resolved
	names []string

	// Crabbing is set once crab displacements have been measured.
	Crabbing bool
}

func newBeamTable(beam string, n int) *BeamTable {
	return &BeamTable{beam: beam, rows: make(map[string]*Resolved, n), names: make([]string, 0, n)}
}

func (bt *BeamTable) add(r *Resolved) {
	bt.rows[r.ElementName] = r
	bt.names = append(bt.names, r.ElementName)
}

// Beam returns the name of the beam the table describes.
func (bt *BeamTable) Beam() string { return bt.beam }

// Len returns the number of encounters.
func (bt *BeamTable) Len() int { return len(bt.names) }

// Names returns the element names in sorted order.
func (bt *BeamTable) Names() []string { return append([]string(nil), bt.names...) }

// Get returns the encounter installed under name.
func (bt *BeamTable) Get(name string) (*Resolved, bool) {
	r, ok := bt.rows[name]
	return r, ok
}

// Rows returns the encounters in element name order.
func (bt *BeamTable) Rows() []*Resolved {
	out := make([]*Resolved, len(bt.names))
	for i, n := range bt.names {
		out[i] = bt.rows[n]
	}
	return out
}

// NewBeamTable builds a table from already resolved rows, rejecting
// duplicate element names.
func NewBeamTable(beam string, rows []*Resolved) (*BeamTable, error) {
	bt := newBeamTable(beam, len(rows))
	for _, r := range rows {
		if _, dup := bt.rows[r.ElementName]; dup {
			return nil, fmt.Errorf("%w: duplicate element name %q", bberr.ErrInvalidParams, r.ElementName)
		}
		bt.add(r)
	}
	sort.Strings(bt.names)
	return bt, nil
}

// Summary is the per-encounter outcome of a configuration run, flat enough
// to store and plot.
type Summary struct {
	Beam              string         `json:"beam"`
	ElementName       string         `json:"element_name"`
	IPName            string         `json:"ip_name"`
	Kind              encounter.Kind `json:"label"`
	Identifier        int            `json:"identifier"`
	S                 float64        `json:"s"`
	SIP               float64        `json:"s_ip"`
	SeparationX       float64        `json:"separation_x"`
	SeparationY       float64        `json:"separation_y"`
	DPx               float64        `json:"dpx"`
	DPy               float64        `json:"dpy"`
	Phi               float64        `json:"phi"`
	Alpha             float64        `json:"alpha"`
	OtherNumParticles float64        `json:"other_num_particles"`
}

// Summaries flattens the table in element name order.
func (bt *BeamTable) Summaries() []Summary {
	out := make([]Summary, 0, bt.Len())
	for _, r := range bt.Rows() {
		out = append(out, Summary{
			Beam:              r.Beam,
			ElementName:       r.ElementName,
			IPName:            r.IPName,
			Kind:              r.Kind,
			Identifier:        r.Identifier,
			S:                 r.S,
			SIP:               r.SIP,
			SeparationX:       r.SeparationX,
			SeparationY:       r.SeparationY,
			DPx:               r.DPx,
			DPy:               r.DPy,
			Phi:               r.Phi,
			Alpha:             r.Alpha,
			OtherNumParticles: r.OtherNumParticles,
		})
	}
	return out
}
