package lens

import (
	"math"

	"github.com/banshee-data/beambeam/internal/track"
)

// Backend computes beam-beam kicks. Implementations own any numeric context
// (device, buffers) they need; lenses only hand them parameters.
type Backend interface {
	// Kick2D applies the kick of a strong beam centred at (meanX, meanY).
	Kick2D(p *track.Particle, params Params2D, meanX, meanY float64)
	// Kick3D applies the sliced kick in the frame of the closed orbit.
	Kick3D(p *track.Particle, params Params3D, boost Boost)
}

// NullBackend applies no kick. Lenses bound to it are transparent, which is
// what a configuration run without a tracker needs.
type NullBackend struct{}

var _ Backend = NullBackend{}

func (NullBackend) Kick2D(*track.Particle, Params2D, float64, float64) {}

func (NullBackend) Kick3D(*track.Particle, Params3D, Boost) {}

// Boost holds the trigonometric factors of the Lorentz boost into the frame
// where the two beams collide head-on.
type Boost struct {
	SinPhi, CosPhi, TanPhi float64
	SinAlpha, CosAlpha     float64
}

// BoostParameters precomputes the boost factors for half crossing angle phi
// in the crossing plane alpha.
func BoostParameters(phi, alpha float64) Boost {
	sphi, cphi := math.Sincos(phi)
	salpha, calpha := math.Sincos(alpha)
	return Boost{
		SinPhi:   sphi,
		CosPhi:   cphi,
		TanPhi:   math.Tan(phi),
		SinAlpha: salpha,
		CosAlpha: calpha,
	}
}
