// Package pipeline runs the beam-beam configuration end to end: installing
// placeholder lenses in the lines of both beams and, once the optics are
// known, resolving the encounters and binding them to the lenses.
package pipeline

import (
	"fmt"

	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/lens"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/track"
)

// Beam names used for the two directions of motion. The anticlockwise beam
// is installed in a line that describes it in its own direction of motion.
const (
	BeamCW  = "b1"
	BeamACW = "b2"
)

// InstallParams describes the bunch train shared by both beams.
type InstallParams struct {
	IPNames             []string
	HarmonicNumber      float64
	BunchSpacingBuckets int
	NumLongRangePerSide []int
	NumSlicesHeadOn     int
	// SigmaZ is the RMS bunch length in m.
	SigmaZ float64
}

// Install generates the encounters of each beam whose line is not nil and
// inserts placeholder lenses for them. The returned tables carry only the
// persisted columns, so AtPosition is zero in them.
func Install(lineCW, lineACW track.Line, p InstallParams, b lens.Backend) (cw, acw *encounter.Table, err error) {
	if lineCW != nil {
		if cw, err = installBeam(lineCW, p, BeamCW, BeamACW, false, b); err != nil {
			return nil, nil, err
		}
	}
	if lineACW != nil {
		if acw, err = installBeam(lineACW, p, BeamACW, BeamCW, true, b); err != nil {
			return nil, nil, err
		}
	}
	return cw, acw, nil
}

func installBeam(line track.Line, p InstallParams, beam, other string, reversed bool, b lens.Backend) (*encounter.Table, error) {
	ref := line.ParticleRef()
	t, err := encounter.Generate(encounter.Params{
		Circumference:       line.Length(),
		HarmonicNumber:      p.HarmonicNumber,
		BunchSpacingBuckets: p.BunchSpacingBuckets,
		NumSlicesHeadOn:     p.NumSlicesHeadOn,
		NumLongRangePerSide: p.NumLongRangePerSide,
		BunchCharge:         ref.Q0,
		BunchLength:         p.SigmaZ,
		RelativisticBeta:    ref.Beta0,
		IPNames:             p.IPNames,
		Beam:                beam,
		OtherBeam:           other,
	})
	if err != nil {
		return nil, fmt.Errorf("encounters of %s: %w", beam, err)
	}
	if reversed {
		t = t.WithNegatedPositions()
	}
	if err := lens.InstallDummy(line, t, b); err != nil {
		return nil, fmt.Errorf("lenses of %s: %w", beam, err)
	}
	monitoring.Logf("%s: %d encounters installed", beam, t.Len())
	return encounter.FromKeep(t.Keep())
}
