package resolve

import (
	"fmt"
	"math"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/units"
)

// MirrorTolerance is the largest distance in s accepted between the mirror
// image of an encounter and its antisymmetric partner.
const MirrorTolerance = 1e-5

// CrossReference copies, for every encounter of both tables, the placement,
// beam matrix, intensity, charge and beta of the partner encounter of the
// other beam. Crab displacements are copied when crab is set. Both tables
// must be fully resolved by ComputeGeometry first.
func CrossReference(a, b *BeamTable, crab bool) error {
	byBeam := map[string]*BeamTable{a.beam: a, b.beam: b}
	for _, self := range []*BeamTable{a, b} {
		for _, r := range self.Rows() {
			other, ok := byBeam[r.OtherBeam]
			if !ok {
				return bberr.AtElement(fmt.Errorf("%w: no table for beam %q", bberr.ErrPartnerNotFound, r.OtherBeam),
					r.ElementName, 0)
			}
			p, ok := other.rows[r.OtherElementName]
			if !ok {
				return bberr.AtElement(fmt.Errorf("%w: %s", bberr.ErrPartnerNotFound, r.OtherElementName),
					r.ElementName, 0)
			}
			copyPartner(r, p)
			r.OtherLab = p.SelfLab
			if crab {
				r.OtherCrab = p.SelfCrab
			}
		}
	}
	return nil
}

// CrossReferenceAntisymmetric builds the partner of every encounter from the
// same beam, assuming the two beams are mirror images through each IP. The
// partner is the encounter closest to s_ip - (s - s_ip); its placement is
// reused with the longitudinal coordinates forced to the encounter's own,
// neglecting the angle between the two surveys.
func CrossReferenceAntisymmetric(bt *BeamTable) error {
	rows := bt.Rows()
	for _, r := range rows {
		mirror := r.SIP - (r.S - r.SIP)

		best, second := -1, -1
		for i, c := range rows {
			d := math.Abs(c.S - mirror)
			switch {
			case best < 0 || d < math.Abs(rows[best].S-mirror):
				best, second = i, best
			case second < 0 || d < math.Abs(rows[second].S-mirror):
				second = i
			}
		}

		p := rows[best]
		delta := math.Abs(p.S - mirror)
		if delta > MirrorTolerance {
			return bberr.AtElement(bberr.ErrMirrorMismatch, r.ElementName, delta)
		}
		if second >= 0 && units.EqualWithin(rows[second].S, mirror, MirrorTolerance) {
			monitoring.Warn("antisymmetric partner is ambiguous",
				"element", r.ElementName, "chosen", p.ElementName, "also", rows[second].ElementName)
		}

		copyPartner(r, p)
		r.OtherLab = p.SelfLab.WithLongitudinalOf(r.SelfLab)
	}
	return nil
}

func copyPartner(r, p *Resolved) {
	r.OtherSigma = p.SelfSigma
	r.OtherNumParticles = p.SelfNumParticles
	r.OtherParticleCharge = p.SelfParticleCharge
	r.OtherRelativisticBeta = p.SelfRelativisticBeta
}
