package pipeline

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/lens"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/track"
)

// BeamLine is one beam as seen by the configuration: the line its lenses
// were installed in, and the optics and survey of that line in the line's
// own direction.
type BeamLine struct {
	Encounters *encounter.Table
	Line       track.Line
	Optics     optics.View
	Surveys    optics.Surveyor
}

// ConfigureParams are the beam parameters used to resolve the encounters.
type ConfigureParams struct {
	IPNames        []string
	NumParticles   float64
	NemittX        float64
	NemittY        float64
	CrabStrongBeam bool
	// UseAntisymmetry builds partners from the single beam given.
	UseAntisymmetry bool
	Coupling        bool
}

// Result holds the resolved tables. ACW is expressed in the clockwise
// convention, B4 is the same table counter-rotated for the anticlockwise
// line.
type Result struct {
	CW, ACW, B4 *resolve.BeamTable
}

// Validate checks the beam/antisymmetry combination: without antisymmetry
// both beams are required, with it exactly one.
func (p ConfigureParams) Validate(cw, acw *BeamLine) error {
	if cw == nil || acw == nil {
		if !p.UseAntisymmetry {
			return fmt.Errorf("%w: both beams are required without antisymmetry", bberr.ErrModeConflict)
		}
		if cw == nil && acw == nil {
			return fmt.Errorf("%w: no beam given", bberr.ErrModeConflict)
		}
	} else if p.UseAntisymmetry {
		return fmt.Errorf("%w: antisymmetry needs exactly one beam", bberr.ErrModeConflict)
	}
	if !(p.NumParticles > 0 && p.NemittX > 0 && p.NemittY > 0) {
		return fmt.Errorf("%w: number of particles and emittances must be positive", bberr.ErrInvalidParams)
	}
	for _, bl := range []*BeamLine{cw, acw} {
		if bl != nil && (bl.Encounters == nil || bl.Line == nil || bl.Optics == nil || bl.Surveys == nil) {
			return fmt.Errorf("%w: incomplete beam description", bberr.ErrInvalidParams)
		}
	}
	return nil
}

// Configure resolves the encounters of the given beams, cross-references
// them, binds the results to the lenses of each line and synchronises the
// lenses with the closed orbit. Either beam may be nil in antisymmetric
// mode.
func Configure(cw, acw *BeamLine, p ConfigureParams) (*Result, error) {
	if err := p.Validate(cw, acw); err != nil {
		return nil, err
	}

	res := &Result{}
	var err error
	if cw != nil {
		if res.CW, err = resolveBeam(cw, p, false); err != nil {
			return nil, err
		}
	}
	if acw != nil {
		if res.ACW, err = resolveBeam(acw, p, true); err != nil {
			return nil, err
		}
	}

	switch {
	case !p.UseAntisymmetry:
		err = resolve.CrossReference(res.CW, res.ACW, p.CrabStrongBeam)
	case res.CW != nil:
		err = resolve.CrossReferenceAntisymmetric(res.CW)
	default:
		err = resolve.CrossReferenceAntisymmetric(res.ACW)
	}
	if err != nil {
		return nil, fmt.Errorf("partners: %w", err)
	}

	for _, bt := range []*resolve.BeamTable{res.CW, res.ACW} {
		if bt == nil {
			continue
		}
		if err := resolve.ComputeSeparations(bt); err != nil {
			return nil, fmt.Errorf("separations of %s: %w", bt.Beam(), err)
		}
	}

	if res.ACW != nil {
		res.B4 = resolve.CounterRotating(res.ACW)
	}

	if cw != nil {
		if err := lens.Bind(cw.Line, res.CW, p.Coupling); err != nil {
			return nil, err
		}
		lens.ConfigureOrbitDependent(cw.Line, cw.Optics.ParticleOnCO())
	}
	if acw != nil {
		if err := lens.Bind(acw.Line, res.B4, p.Coupling); err != nil {
			return nil, err
		}
		lens.ConfigureOrbitDependent(acw.Line, acw.Optics.ParticleOnCO())
	}
	return res, nil
}

// resolveBeam places the encounters of one beam. The anticlockwise beam is
// resolved on reversed optics and surveys so that both tables share the
// clockwise convention.
func resolveBeam(bl *BeamLine, p ConfigureParams, reverse bool) (*resolve.BeamTable, error) {
	view := bl.Optics
	if reverse {
		view = view.Reverse()
	}

	surveys := make(map[string]optics.Survey, len(p.IPNames))
	for _, ip := range p.IPNames {
		sv, err := bl.Surveys.Survey(ip)
		if err != nil {
			return nil, fmt.Errorf("survey from %s: %w", ip, err)
		}
		if reverse {
			sv = sv.Reverse()
		}
		surveys[ip] = sv
	}

	bt, err := resolve.ComputeGeometry(resolve.GeometryInput{
		Encounters:   bl.Encounters,
		Optics:       view,
		Surveys:      surveys,
		Sigmas:       optics.BetatronSigmas(view, p.NemittX, p.NemittY),
		NumParticles: p.NumParticles,
	})
	if err != nil {
		return nil, err
	}
	if p.CrabStrongBeam {
		if err := resolve.MeasureCrabbing(bt, view, reverse); err != nil {
			return nil, err
		}
	}
	monitoring.Logf("%s: resolved %d encounters", bt.Beam(), bt.Len())
	return bt, nil
}
