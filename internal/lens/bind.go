package lens

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/track"
)

// KindFor maps an encounter label to the lens installed for it.
func KindFor(k encounter.Kind) (Kind, error) {
	switch k {
	case encounter.KindHeadOn:
		return Kind3D, nil
	case encounter.KindLongRange:
		return Kind2D, nil
	}
	return 0, fmt.Errorf("%w: %q", bberr.ErrUnknownKind, k)
}

// InstallDummy inserts a placeholder lens for every encounter of t at
// s_ip + AtPosition, named after the encounter. Lenses compute their kicks
// with b.
func InstallDummy(line track.Line, t *encounter.Table, b Backend) error {
	sip := map[string]float64{}
	for _, ip := range t.IPNames() {
		s, err := line.SPosition(ip)
		if err != nil {
			return fmt.Errorf("install lenses: %w", err)
		}
		sip[ip] = s
	}

	for _, e := range t.Rows() {
		kind, err := KindFor(e.Kind)
		if err != nil {
			return bberr.AtElement(err, e.ElementName, e.AtPosition)
		}
		l, err := NewDummy(kind, b)
		if err != nil {
			return err
		}
		if err := line.Insert(e.ElementName, l, sip[e.IPName]+e.AtPosition); err != nil {
			return fmt.Errorf("install %s: %w", e.ElementName, err)
		}
	}
	monitoring.Logf("installed %d beam-beam lenses", t.Len())
	return nil
}

// Bind replaces the parameters of every lens in line with those of its
// encounter in bt. Coupled beam matrices are not supported; without
// coupling the x-y terms of the strong beam matrix are zeroed.
func Bind(line track.Line, bt *resolve.BeamTable, coupling bool) error {
	if coupling {
		return bberr.ErrCouplingUnsupported
	}

	n := 0
	for _, name := range line.Names() {
		el, ok := line.Element(name)
		if !ok {
			continue
		}
		l, ok := el.(*Lens)
		if !ok {
			continue
		}
		r, ok := bt.Get(name)
		if !ok {
			return bberr.AtElement(bberr.ErrPartnerNotFound, name, 0)
		}

		switch l.Kind {
		case Kind2D:
			l.Params2D = Params2D{
				OtherNumParticles: r.OtherNumParticles,
				OtherQ0:           r.OtherParticleCharge,
				OtherBeta0:        r.OtherRelativisticBeta,
				Sigma11:           r.OtherSigma.S11,
				Sigma33:           r.OtherSigma.S33,
				ShiftX:            r.SeparationX,
				ShiftY:            r.SeparationY,
			}
		case Kind3D:
			l.Params3D = Params3D{
				Phi:     r.Phi,
				Alpha:   r.Alpha,
				OtherQ0: r.OtherParticleCharge,
				ShiftX:  r.SeparationX,
				ShiftY:  r.SeparationY,
				Slices: []Slice{{
					NumParticles: r.OtherNumParticles,
					Sigma:        r.OtherSigma.Uncoupled(),
				}},
			}
		}
		n++
	}
	monitoring.Logf("bound %d beam-beam lenses of %s", n, bt.Beam())
	return nil
}
