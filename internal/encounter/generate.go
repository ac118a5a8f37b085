package encounter

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/units"
)

// Params describes the bunch train and the IPs of one beam.
type Params struct {
	Circumference       float64
	HarmonicNumber      float64
	BunchSpacingBuckets int

	// NumSlicesHeadOn must be odd so that one slice sits at the IP.
	NumSlicesHeadOn int
	// NumLongRangePerSide has one entry per IP.
	NumLongRangePerSide []int

	BunchCharge      float64
	BunchLength      float64
	RelativisticBeta float64

	IPNames   []string
	Beam      string
	OtherBeam string
}

// Validate checks the parameters before any encounter is built.
func (p Params) Validate() error {
	if p.NumSlicesHeadOn < 1 {
		return fmt.Errorf("%w: %d head-on slices", bberr.ErrInvalidSlices, p.NumSlicesHeadOn)
	}
	if p.NumSlicesHeadOn%2 == 0 {
		return fmt.Errorf("%w: %d head-on slices, an odd number is required", bberr.ErrInvalidSlices, p.NumSlicesHeadOn)
	}
	if len(p.IPNames) == 0 {
		return fmt.Errorf("%w: no IP names", bberr.ErrInvalidParams)
	}
	if len(p.NumLongRangePerSide) != len(p.IPNames) {
		return fmt.Errorf("%w: %d long-range counts for %d IPs",
			bberr.ErrInvalidParams, len(p.NumLongRangePerSide), len(p.IPNames))
	}
	anyLongRange := false
	for i, n := range p.NumLongRangePerSide {
		if n < 0 {
			return fmt.Errorf("%w: negative long-range count %d at %s", bberr.ErrInvalidParams, n, p.IPNames[i])
		}
		anyLongRange = anyLongRange || n > 0
	}
	if anyLongRange && !(p.Circumference > 0 && p.HarmonicNumber > 0 && p.BunchSpacingBuckets > 0) {
		return fmt.Errorf("%w: circumference, harmonic number and bunch spacing must be positive", bberr.ErrInvalidParams)
	}
	if p.Beam == "" || p.OtherBeam == "" || p.Beam == p.OtherBeam {
		return fmt.Errorf("%w: beam names %q and %q", bberr.ErrInvalidParams, p.Beam, p.OtherBeam)
	}
	return nil
}

// Generate builds the encounter table of one beam direction: head-on slices
// and long-range encounters at every IP.
func Generate(p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// The luminous region is half as long as the bunch.
	slicing, err := ConstantChargeSlicing(1, p.BunchLength/2, p.NumSlicesHeadOn)
	if err != nil {
		return nil, err
	}

	var rows []*Encounter
	newEncounter := func(kind Kind, ip string, id int) *Encounter {
		num := IPNumber(ip)
		return &Encounter{
			Beam:                 p.Beam,
			OtherBeam:            p.OtherBeam,
			IPName:               ip,
			Kind:                 kind,
			Identifier:           id,
			ElementName:          ElementName(kind, num, p.Beam, id),
			OtherElementName:     ElementName(kind, num, p.OtherBeam, id),
			SelfParticleCharge:   p.BunchCharge,
			SelfRelativisticBeta: p.RelativisticBeta,
		}
	}

	perSide := (p.NumSlicesHeadOn - 1) / 2
	for _, ip := range p.IPNames {
		for i := 0; i < p.NumSlicesHeadOn; i++ {
			e := newEncounter(KindHeadOn, ip, i-perSide)
			e.SelfFracOfBunch = slicing.Charges[i]
			e.AtPosition = slicing.Centroids[i]
			e.SCrab = e.AtPosition
			rows = append(rows, e)
		}
	}

	spacing := units.EncounterSpacing(p.Circumference, p.HarmonicNumber, p.BunchSpacingBuckets)
	for i, ip := range p.IPNames {
		n := p.NumLongRangePerSide[i]
		for id := -n; id <= n; id++ {
			if id == 0 {
				continue
			}
			e := newEncounter(KindLongRange, ip, id)
			e.SelfFracOfBunch = 1.
			e.AtPosition = spacing * float64(id)
			rows = append(rows, e)
		}
	}

	return NewTable(rows)
}
