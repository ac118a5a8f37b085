package testutil

import (
	"errors"
	"testing"

	"github.com/banshee-data/beambeam/internal/monitoring"
)

func TestAssertHelpersPass(t *testing.T) {
	AssertNoError(t, nil)
	AssertError(t, errors.New("test error"))
	AssertClose(t, "x", 1.0+1e-13, 1.0, 1e-12)
}

func TestQuietWarnings(t *testing.T) {
	QuietWarnings(t)
	monitoring.Warn("discarded", "k", 1)
	if got := monitoring.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d, want 1", got)
	}
}

func TestRingLattices(t *testing.T) {
	r := DefaultRing()
	r.IPs[0].HalfCrossingX = 1.5e-4

	cw, acw := r.Lattices()
	AssertNoError(t, cw.Validate())
	AssertNoError(t, acw.Validate())

	b1, err := cw.Optics(nil)
	AssertNoError(t, err)
	b4, err := acw.Optics(nil)
	AssertNoError(t, err)

	p1, err := b1.Point("mkr.ip1")
	AssertNoError(t, err)
	AssertClose(t, "b1 x", p1.X, 1.5e-2, 1e-15)
	AssertClose(t, "b1 s", p1.S, 600, 0)

	// Seen backwards, the anticlockwise beam crosses with the opposite slope.
	p2, err := b4.Reverse().Point("mkr.ip1")
	AssertNoError(t, err)
	AssertClose(t, "b2 x", p2.X, -1.5e-2, 1e-15)
	AssertClose(t, "b2 px", p2.Px, -1.5e-4, 0)
	AssertClose(t, "b2 s", p2.S, 600, 1e-12)
}
