// Package report draws the resolved separations of a configuration run.
package report

import (
	"fmt"
	"sort"

	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/units"
)

// byBeam groups summaries by beam. Beams are returned sorted, rows keep
// their order.
func byBeam(sums []resolve.Summary) ([]string, map[string][]resolve.Summary) {
	groups := make(map[string][]resolve.Summary)
	for _, s := range sums {
		groups[s.Beam] = append(groups[s.Beam], s)
	}
	beams := make([]string, 0, len(groups))
	for b := range groups {
		beams = append(beams, b)
	}
	sort.Strings(beams)
	return beams, groups
}

// offset is the distance of an encounter from its IP, in m.
func offset(s resolve.Summary) float64 { return s.S - s.SIP }

func checkUnit(unit string) error {
	if !units.IsValidLength(unit) {
		return fmt.Errorf("unknown length unit %q, want one of %v", unit, units.ValidLengthUnits)
	}
	return nil
}
