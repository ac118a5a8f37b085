package resolve

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/optics"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryInput is what ComputeGeometry needs for one beam.
type GeometryInput struct {
	Encounters *encounter.Table
	Optics     optics.View
	// Surveys holds one survey per IP, each starting at that IP.
	Surveys      map[string]optics.Survey
	Sigmas       optics.SigmaTable
	NumParticles float64
}

// psdTolerance is the relative tolerance on negative eigenvalues of a beam
// matrix before a warning is emitted.
const psdTolerance = 1e-9

// ComputeGeometry resolves the lab placement, s positions, beam matrix and
// number of particles of every encounter.
func ComputeGeometry(in GeometryInput) (*BeamTable, error) {
	rows := in.Encounters.Rows()
	beam := ""
	if len(rows) > 0 {
		beam = rows[0].Beam
	}

	sip := map[string]float64{}
	for _, ip := range in.Encounters.IPNames() {
		sv, ok := in.Surveys[ip]
		if !ok {
			return nil, fmt.Errorf("%w: no survey for %s", bberr.ErrInvalidParams, ip)
		}
		origin, err := sv.Frame(ip)
		if err != nil {
			return nil, fmt.Errorf("survey of %s: %w", ip, err)
		}
		if !origin.AtOrigin() {
			return nil, bberr.AtElement(
				fmt.Errorf("%w: survey does not start at the IP", bberr.ErrInvalidParams),
				ip, r3.Norm(origin.Position()))
		}
		pt, err := in.Optics.Point(ip)
		if err != nil {
			return nil, fmt.Errorf("optics of %s: %w", ip, err)
		}
		sip[ip] = pt.S
	}

	bt := newBeamTable(beam, len(rows))
	for _, e := range rows {
		pt, err := in.Optics.Point(e.ElementName)
		if err != nil {
			return nil, fmt.Errorf("optics of %s: %w", e.ElementName, err)
		}
		sp, err := in.Surveys[e.IPName].Frame(e.ElementName)
		if err != nil {
			return nil, fmt.Errorf("survey of %s: %w", e.ElementName, err)
		}
		sigma, err := in.Sigmas.At(e.ElementName)
		if err != nil {
			return nil, fmt.Errorf("beam matrix of %s: %w", e.ElementName, err)
		}
		if !sigma.IsPositiveSemidefinite(psdTolerance * (sigma.S11 + sigma.S33)) {
			monitoring.Warn("beam matrix is not positive semidefinite", "element", e.ElementName)
		}

		bt.add(&Resolved{
			Encounter:        *e,
			S:                pt.S,
			SIP:              sip[e.IPName],
			SelfNumParticles: in.NumParticles * e.SelfFracOfBunch,
			SelfLab:          geometry.NewLabPoint(e.ElementName, sp, pt.X, pt.Px, pt.Y, pt.Py),
			SelfSigma:        sigma,
		})
	}
	return bt, nil
}

// MeasureCrabbing records, for every encounter away from the IP, the orbit
// change of a particle displaced to zeta0 = 2 s_crab. view must be the same
// view the table was resolved with. In a reversed view zeta0 changes sign.
func MeasureCrabbing(bt *BeamTable, view optics.View, reverse bool) error {
	for _, r := range bt.Rows() {
		if r.SCrab == 0 {
			continue
		}
		zeta0 := 2 * r.SCrab
		if reverse {
			zeta0 = -zeta0
		}
		crabbed, err := view.Crab(zeta0)
		if err != nil {
			return fmt.Errorf("crab optics of %s: %w", r.ElementName, err)
		}
		p0, err := view.Point(r.ElementName)
		if err != nil {
			return err
		}
		p1, err := crabbed.Point(r.ElementName)
		if err != nil {
			return err
		}
		r.SelfCrab = Crab{X: p1.X - p0.X, Px: p1.Px - p0.Px, Y: p1.Y - p0.Y, Py: p1.Py - p0.Py}
	}
	bt.Crabbing = true
	return nil
}
