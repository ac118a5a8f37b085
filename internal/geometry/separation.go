package geometry

import (
	"math"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame comparison tolerances.
const (
	// ParallelTolerance is the per-axis deviation accepted silently.
	ParallelTolerance = 1e-10
	// ParallelWarnTolerance is the combined deviation accepted with a warning.
	ParallelWarnTolerance = 5e-3
	// LongitudinalTolerance is the longitudinal separation above which a
	// warning is emitted.
	LongitudinalTolerance = 1e-4
)

// FrameDeviation returns the per-axis deviations between two frames and
// their combined norm.
func FrameDeviation(a, b *LabPoint) (dx, dy, dz, combined float64) {
	dx = r3.Norm(r3.Sub(a.Ex, b.Ex))
	dy = r3.Norm(r3.Sub(a.Ey, b.Ey))
	dz = r3.Norm(r3.Sub(a.Ez, b.Ez))
	return dx, dy, dz, math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Separation returns the transverse position of the strong beam relative to
// the weak beam, projected on the weak beam's local x and y axes.
//
// The frames must be parallel: deviations up to ParallelWarnTolerance are
// tolerated with a warning, larger ones fail with bberr.ErrFramesNotParallel.
// A longitudinal offset above LongitudinalTolerance only warns.
func Separation(weak, strong *LabPoint) (sepX, sepY float64, err error) {
	dx, dy, dz, combined := FrameDeviation(weak, strong)
	if !(dx < ParallelTolerance && dy < ParallelTolerance && dz < ParallelTolerance) {
		if !(combined < ParallelWarnTolerance) {
			return 0, 0, bberr.AtElement(bberr.ErrFramesNotParallel, weak.Name, combined)
		}
		monitoring.Warn("reference systems are not parallel, tolerated",
			"element", weak.Name, "deviation", combined)
	}

	v := r3.Sub(strong.P, weak.P)
	if ds := r3.Dot(v, weak.Ez); !(math.Abs(ds) < LongitudinalTolerance) {
		monitoring.Warn("beams are longitudinally shifted",
			"element", weak.Name, "ds", ds)
	}

	return r3.Dot(v, weak.Ex), r3.Dot(v, weak.Ey), nil
}
