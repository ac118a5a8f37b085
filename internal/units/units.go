// Package units provides physical constants and length conversions shared by
// the encounter generator and the wake tables.
package units

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Physical constants (CODATA 2018, exact where defined).
const (
	SpeedOfLight     = 299792458.0     // m/s
	ElementaryCharge = 1.602176634e-19 // C
)

// Length units accepted for report axes.
const (
	Meter      = "m"
	Millimeter = "mm"
	Micrometer = "um"
)

// ValidLengthUnits contains all valid length unit values
var ValidLengthUnits = []string{Meter, Millimeter, Micrometer}

// IsValidLength checks if the given unit is in the list of valid length units
func IsValidLength(unit string) bool {
	for _, validUnit := range ValidLengthUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertLength converts a length in meters to the target units.
// Unknown units leave the value in meters.
func ConvertLength(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Millimeter:
		return meters * 1e3
	case Micrometer:
		return meters * 1e6
	default:
		return meters
	}
}

// BucketLength returns the RF bucket length for a ring of the given
// circumference and harmonic number.
func BucketLength(circumference, harmonicNumber float64) float64 {
	return circumference / harmonicNumber
}

// EncounterSpacing returns the distance between consecutive long-range
// encounters: half the bunch spacing, since both beams move.
func EncounterSpacing(circumference, harmonicNumber float64, bunchSpacingBuckets int) float64 {
	return circumference / harmonicNumber * float64(bunchSpacingBuckets) / 2.
}

// NanosecondsToZeta converts a delay behind the source particle in ns to the
// longitudinal coordinate zeta in m (trailing particles have negative zeta).
func NanosecondsToZeta(ns float64) float64 {
	return -ns * 1e-9 * SpeedOfLight
}

// Gamma returns the relativistic gamma for the given beta.
func Gamma(beta float64) float64 {
	return 1 / math.Sqrt(1-beta*beta)
}

// BetaGamma returns beta*gamma, the factor between normalized and geometric
// emittance.
func BetaGamma(beta float64) float64 {
	return beta * Gamma(beta)
}

// EqualWithin reports whether a and b agree to within the absolute tolerance.
func EqualWithin(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}
