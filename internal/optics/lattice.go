package optics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/track"
	"gopkg.in/yaml.v3"
)

// Lattice is a line description exported from an optics code: its length,
// reference particle, Twiss table and survey, one row per element.
type Lattice struct {
	Name      string                 `json:"name" yaml:"name"`
	Length    float64                `json:"length" yaml:"length"`
	Reference track.Reference        `json:"particle_ref" yaml:"particle_ref"`
	Twiss     []Point                `json:"twiss" yaml:"twiss"`
	Survey    []geometry.SurveyPoint `json:"survey" yaml:"survey"`
}

// LoadLattice reads a lattice file in YAML or JSON.
func LoadLattice(path string) (*Lattice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lattice: %w", err)
	}
	defer f.Close()

	l, err := ReadLattice(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ReadLattice decodes and validates a lattice. YAML is tried first, then
// JSON.
func ReadLattice(r io.Reader) (*Lattice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var l Lattice
	if err := yaml.Unmarshal(data, &l); err != nil {
		l = Lattice{}
		if jsonErr := json.Unmarshal(data, &l); jsonErr != nil {
			return nil, fmt.Errorf("parse lattice (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks that the lattice can back a line, an optics view and a
// survey.
func (l *Lattice) Validate() error {
	if !(l.Length > 0) {
		return fmt.Errorf("%w: lattice %q: length must be positive", bberr.ErrInvalidParams, l.Name)
	}
	if !(l.Reference.Beta0 > 0 && l.Reference.Beta0 < 1) {
		return fmt.Errorf("%w: lattice %q: beta0 must be in (0, 1), got %g", bberr.ErrInvalidParams, l.Name, l.Reference.Beta0)
	}
	if len(l.Twiss) == 0 {
		return fmt.Errorf("%w: lattice %q: no twiss rows", bberr.ErrInvalidParams, l.Name)
	}

	surveyed := make(map[string]bool, len(l.Survey))
	for _, sp := range l.Survey {
		surveyed[sp.Name] = true
	}
	for _, p := range l.Twiss {
		if p.S < 0 || p.S > l.Length {
			return fmt.Errorf("%w: lattice %q: %s at s=%g outside the line", bberr.ErrInvalidParams, l.Name, p.Name, p.S)
		}
		if !(p.Betx > 0 && p.Bety > 0) {
			return fmt.Errorf("%w: lattice %q: %s has non-positive beta functions", bberr.ErrInvalidParams, l.Name, p.Name)
		}
		if !surveyed[p.Name] {
			return fmt.Errorf("%w: lattice %q: %s has no survey row", bberr.ErrInvalidParams, l.Name, p.Name)
		}
	}
	return nil
}

// Sequence builds a line with a marker at every Twiss row.
func (l *Lattice) Sequence() (*track.Sequence, error) {
	seq, err := track.NewSequence(l.Length, l.Reference)
	if err != nil {
		return nil, err
	}
	for _, p := range l.Twiss {
		if err := seq.Insert(p.Name, track.Marker{}, p.S); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

// Optics returns the Twiss table resolving extra elements through loc.
func (l *Lattice) Optics(loc Locator) (*Table, error) {
	t, err := NewTable(l.Length, l.Reference, l.Twiss)
	if err != nil {
		return nil, err
	}
	return t.WithLocator(loc), nil
}

// Surveys returns the survey table resolving extra elements through loc.
func (l *Lattice) Surveys(loc Locator) (*SurveyTable, error) {
	t, err := NewSurveyTable(l.Length, l.Survey)
	if err != nil {
		return nil, err
	}
	return t.WithLocator(loc), nil
}
