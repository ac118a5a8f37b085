package main

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/config"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/lens"
	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/pipeline"
	"github.com/banshee-data/beambeam/internal/track"
)

type latticeFlags struct {
	cw, acw string
}

type loadedLine struct {
	lattice *optics.Lattice
	seq     *track.Sequence
}

func loadLine(path string) (*loadedLine, error) {
	if path == "" {
		return nil, nil
	}
	lat, err := optics.LoadLattice(path)
	if err != nil {
		return nil, err
	}
	seq, err := lat.Sequence()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loadedLine{lattice: lat, seq: seq}, nil
}

// line returns the sequence as a track.Line, nil when no lattice was given.
func (l *loadedLine) line() track.Line {
	if l == nil {
		return nil
	}
	return l.seq
}

func (l *loadedLine) beamLine(t *encounter.Table) (*pipeline.BeamLine, error) {
	if l == nil {
		return nil, nil
	}
	view, err := l.lattice.Optics(l.seq)
	if err != nil {
		return nil, err
	}
	sv, err := l.lattice.Surveys(l.seq)
	if err != nil {
		return nil, err
	}
	return &pipeline.BeamLine{Encounters: t, Line: l.seq, Optics: view, Surveys: sv}, nil
}

// installed is the state after lenses have been placed in both lines.
type installed struct {
	cwLine, acwLine *loadedLine
	cw, acw         *encounter.Table
}

func install(f latticeFlags, cfg *config.Config) (*installed, error) {
	if f.cw == "" && f.acw == "" {
		return nil, fmt.Errorf("at least one of --cw and --acw is required")
	}
	cwLine, err := loadLine(f.cw)
	if err != nil {
		return nil, err
	}
	acwLine, err := loadLine(f.acw)
	if err != nil {
		return nil, err
	}
	cw, acw, err := pipeline.Install(cwLine.line(), acwLine.line(), cfg.InstallParams(), lens.NullBackend{})
	if err != nil {
		return nil, err
	}
	return &installed{cwLine: cwLine, acwLine: acwLine, cw: cw, acw: acw}, nil
}

// keepRows concatenates the persisted columns of both tables.
func (in *installed) keepRows() []encounter.KeepRow {
	var out []encounter.KeepRow
	for _, t := range []*encounter.Table{in.cw, in.acw} {
		if t != nil {
			out = append(out, t.Keep()...)
		}
	}
	return out
}
