package lens

import (
	"math"
	"testing"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearBackend kicks proportionally to the offset from the strong beam and
// also moves the particle, so that every captured coordinate is non-zero.
type linearBackend struct {
	k float64
}

func (b linearBackend) Kick2D(p *track.Particle, params Params2D, meanX, meanY float64) {
	p.Px += b.k * (p.X - meanX)
	p.Py += b.k * (p.Y - meanY)
	p.X += 1e-9
}

func (b linearBackend) Kick3D(p *track.Particle, params Params3D, boost Boost) {
	p.X += 1e-6 * boost.CosAlpha
	p.Px += b.k * (p.X - params.ShiftX)
	p.Y += 2e-6
	p.Py += b.k * (p.Y - params.ShiftY)
	p.Zeta += 3e-6
	p.Delta += 4e-7 * boost.CosPhi
}

// recorder keeps every particle it sees.
type recorder struct {
	seen []track.Particle
}

func (r *recorder) Track(p *track.Particle) { r.seen = append(r.seen, *p) }

func newLine(t *testing.T) *track.Sequence {
	t.Helper()
	seq, err := track.NewSequence(100, track.Reference{Q0: 1, Beta0: 0.999})
	require.NoError(t, err)
	require.NoError(t, seq.Insert("ip1", track.Marker{}, 50))
	return seq
}

func TestNewDummy(t *testing.T) {
	l, err := NewDummy(Kind2D, nil)
	require.NoError(t, err)
	assert.Equal(t, Params2D{OtherBeta0: 1, Sigma11: 1, Sigma33: 1}, l.Params2D)
	assert.Equal(t, NullBackend{}, l.backend)

	l, err = NewDummy(Kind3D, nil)
	require.NoError(t, err)
	require.Len(t, l.Params3D.Slices, 1)
	assert.Equal(t, optics.Sigma{S11: 1, S33: 1}, l.Params3D.Slices[0].Sigma)
	assert.Zero(t, l.Params3D.Slices[0].NumParticles)

	// Placeholders are transparent.
	p := track.Particle{X: 1e-3, Px: 2e-5, Zeta: 0.1}
	want := p
	l.Track(&p)
	assert.Equal(t, want, p)

	_, err = NewDummy(Kind(7), nil)
	assert.Error(t, err)
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestKindFor(t *testing.T) {
	k, err := KindFor(encounter.KindHeadOn)
	require.NoError(t, err)
	assert.Equal(t, Kind3D, k)

	k, err = KindFor(encounter.KindLongRange)
	require.NoError(t, err)
	assert.Equal(t, Kind2D, k)

	_, err = KindFor("bb_oct")
	assert.ErrorIs(t, err, bberr.ErrUnknownKind)
	assert.ErrorIs(t, err, bberr.ErrValidation)
}

func TestInstallDummy(t *testing.T) {
	tab, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_lr.l1b1_01", IPName: "ip1", Kind: encounter.KindLongRange, Identifier: -1, AtPosition: -3.75},
		{ElementName: "bb_ho.c1b1_00", IPName: "ip1", Kind: encounter.KindHeadOn},
		{ElementName: "bb_lr.r1b1_01", IPName: "ip1", Kind: encounter.KindLongRange, Identifier: 1, AtPosition: 3.75},
	})
	require.NoError(t, err)

	seq := newLine(t)
	require.NoError(t, InstallDummy(seq, tab, linearBackend{k: 1}))
	assert.Equal(t, []string{"bb_lr.l1b1_01", "ip1", "bb_ho.c1b1_00", "bb_lr.r1b1_01"}, seq.Names())

	for name, want := range map[string]float64{"bb_lr.l1b1_01": 46.25, "bb_ho.c1b1_00": 50, "bb_lr.r1b1_01": 53.75} {
		s, err := seq.SPosition(name)
		require.NoError(t, err)
		assert.Equal(t, want, s, name)
	}

	el, ok := seq.Element("bb_ho.c1b1_00")
	require.True(t, ok)
	ho, ok := el.(*Lens)
	require.True(t, ok)
	assert.Equal(t, Kind3D, ho.Kind)
	assert.Equal(t, linearBackend{k: 1}, ho.backend)

	el, _ = seq.Element("bb_lr.r1b1_01")
	assert.Equal(t, Kind2D, el.(*Lens).Kind)
}

func TestInstallDummyErrors(t *testing.T) {
	bad, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_oct.c1b1_00", IPName: "ip1", Kind: "bb_oct"},
	})
	require.NoError(t, err)
	err = InstallDummy(newLine(t), bad, nil)
	assert.ErrorIs(t, err, bberr.ErrUnknownKind)

	noIP, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_ho.c5b1_00", IPName: "ip5", Kind: encounter.KindHeadOn},
	})
	require.NoError(t, err)
	err = InstallDummy(newLine(t), noIP, nil)
	assert.ErrorIs(t, err, bberr.ErrElementNotFound)
}

func boundTable(t *testing.T) *resolve.BeamTable {
	t.Helper()
	sigma := optics.SigmaFromEntries([10]float64{1e-10, -1e-12, 3e-13, 4e-13, 2e-12, 5e-13, 6e-13, 3e-10, 7e-12, 8e-12})
	bt, err := resolve.NewBeamTable("b1", []*resolve.Resolved{
		{
			Encounter:         encounter.Encounter{ElementName: "bb_ho.c1b1_00", Kind: encounter.KindHeadOn},
			OtherSigma:        sigma,
			OtherNumParticles: 2.3e10, OtherParticleCharge: 1, OtherRelativisticBeta: 0.99,
			SeparationX: 1e-6, SeparationY: -2e-6,
			Phi: 1.5e-4, Alpha: math.Pi / 2,
		},
		{
			Encounter:         encounter.Encounter{ElementName: "bb_lr.r1b1_01", Kind: encounter.KindLongRange},
			OtherSigma:        sigma,
			OtherNumParticles: 1.15e11, OtherParticleCharge: -1, OtherRelativisticBeta: 0.98,
			SeparationX: 3e-3, SeparationY: 4e-4,
		},
	})
	require.NoError(t, err)
	return bt
}

func installBoth(t *testing.T, b Backend) *track.Sequence {
	t.Helper()
	tab, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_ho.c1b1_00", IPName: "ip1", Kind: encounter.KindHeadOn},
		{ElementName: "bb_lr.r1b1_01", IPName: "ip1", Kind: encounter.KindLongRange, AtPosition: 3.75},
	})
	require.NoError(t, err)
	seq := newLine(t)
	require.NoError(t, InstallDummy(seq, tab, b))
	return seq
}

func lensAt(t *testing.T, line track.Line, name string) *Lens {
	t.Helper()
	el, ok := line.Element(name)
	require.True(t, ok, name)
	l, ok := el.(*Lens)
	require.True(t, ok, name)
	return l
}

func TestBind(t *testing.T) {
	seq := installBoth(t, nil)
	bt := boundTable(t)
	require.NoError(t, Bind(seq, bt, false))

	lr := lensAt(t, seq, "bb_lr.r1b1_01")
	assert.Equal(t, Params2D{
		OtherNumParticles: 1.15e11,
		OtherQ0:           -1,
		OtherBeta0:        0.98,
		Sigma11:           1e-10,
		Sigma33:           3e-10,
		ShiftX:            3e-3,
		ShiftY:            4e-4,
	}, lr.Params2D)

	ho := lensAt(t, seq, "bb_ho.c1b1_00")
	p := ho.Params3D
	assert.Equal(t, 1.5e-4, p.Phi)
	assert.Equal(t, math.Pi/2, p.Alpha)
	assert.Equal(t, 1.0, p.OtherQ0)
	assert.Equal(t, 1e-6, p.ShiftX)
	assert.Equal(t, -2e-6, p.ShiftY)
	require.Len(t, p.Slices, 1)
	assert.Equal(t, 2.3e10, p.Slices[0].NumParticles)
	assert.Zero(t, p.Slices[0].ZetaCenter)

	s := p.Slices[0].Sigma
	assert.Equal(t, [4]float64{0, 0, 0, 0}, [4]float64{s.S13, s.S14, s.S23, s.S24})
	assert.Equal(t, -1e-12, s.S12)
	assert.Equal(t, 8e-12, s.S44)

	// Binding again with the same table leaves the lenses unchanged.
	before := *ho
	require.NoError(t, Bind(seq, bt, false))
	assert.Equal(t, before.Params3D, ho.Params3D)
}

func TestBindErrors(t *testing.T) {
	seq := installBoth(t, nil)
	assert.ErrorIs(t, Bind(seq, boundTable(t), true), bberr.ErrCouplingUnsupported)

	partial, err := resolve.NewBeamTable("b1", []*resolve.Resolved{
		{Encounter: encounter.Encounter{ElementName: "bb_ho.c1b1_00", Kind: encounter.KindHeadOn}},
	})
	require.NoError(t, err)
	err = Bind(seq, partial, false)
	assert.ErrorIs(t, err, bberr.ErrPartnerNotFound)
	var ee *bberr.ElementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "bb_lr.r1b1_01", ee.Element)
}

func TestConfigureOrbitDependent3D(t *testing.T) {
	b := linearBackend{k: 1e-3}
	seq := newLine(t)
	require.NoError(t, seq.Insert("mcb", track.Kicker{DPx: 1e-5, DPy: -2e-5}, 10))
	tab, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_ho.c1b1_00", IPName: "ip1", Kind: encounter.KindHeadOn},
	})
	require.NoError(t, err)
	require.NoError(t, InstallDummy(seq, tab, b))
	rec := &recorder{}
	require.NoError(t, seq.Insert("after", rec, 60))

	l := lensAt(t, seq, "bb_ho.c1b1_00")
	l.Params3D.ShiftX = 2e-3
	l.Params3D.ShiftY = -1e-3

	co := track.Particle{X: 1e-3, Px: 0, Y: 2e-3, Py: 0, Zeta: 0.1, Delta: 1e-4}
	ConfigureOrbitDependent(seq, co)

	s := l.Shift3D
	assert.Equal(t, co.X, s.RefX)
	assert.Equal(t, 1e-5, s.RefPx)
	assert.Equal(t, co.Y, s.RefY)
	assert.Equal(t, -2e-5, s.RefPy)
	assert.Equal(t, co.Zeta, s.RefZeta)
	assert.Equal(t, co.Delta, s.RefPzeta)

	// The captured deltas are the kick on the closed orbit in the frame
	// centred on it.
	kick := track.Particle{}
	b.Kick3D(&kick, l.Params3D, BoostParameters(l.Params3D.Phi, l.Params3D.Alpha))
	assert.InDelta(t, kick.X, s.PostSubtractX, 1e-18)
	assert.InDelta(t, kick.Px, s.PostSubtractPx, 1e-18)
	assert.InDelta(t, kick.Y, s.PostSubtractY, 1e-18)
	assert.InDelta(t, kick.Py, s.PostSubtractPy, 1e-18)
	assert.InDelta(t, kick.Zeta, s.PostSubtractZeta, 1e-16)
	assert.InDelta(t, kick.Delta, s.PostSubtractPzeta, 1e-18)
	assert.NotZero(t, s.PostSubtractPx)

	// Full rollback: the next element sees the orbit as it was before the lens.
	require.Len(t, rec.seen, 1)
	assert.Equal(t, track.Particle{X: 1e-3, Px: 1e-5, Y: 2e-3, Py: -2e-5, Zeta: 0.1, Delta: 1e-4}, rec.seen[0])

	// Once synchronised, the closed orbit crosses the lens unperturbed.
	p := co
	track.TrackLine(seq, &p)
	assert.InDelta(t, co.X, p.X, 1e-18)
	assert.InDelta(t, 1e-5, p.Px, 1e-18)
	assert.InDelta(t, co.Y, p.Y, 1e-18)
	assert.InDelta(t, -2e-5, p.Py, 1e-18)
	assert.InDelta(t, co.Zeta, p.Zeta, 1e-16)
	assert.InDelta(t, co.Delta, p.Delta, 1e-18)

	// Synchronising again gives the same state.
	ConfigureOrbitDependent(seq, co)
	assert.Equal(t, s, l.Shift3D)
}

func TestConfigureOrbitDependent2D(t *testing.T) {
	b := linearBackend{k: 1e-2}
	seq := newLine(t)
	require.NoError(t, seq.Insert("mcb", track.Kicker{DPx: 1e-5}, 10))
	tab, err := encounter.NewTable([]*encounter.Encounter{
		{ElementName: "bb_lr.r1b1_01", IPName: "ip1", Kind: encounter.KindLongRange, AtPosition: 3.75},
	})
	require.NoError(t, err)
	require.NoError(t, InstallDummy(seq, tab, b))
	rec := &recorder{}
	require.NoError(t, seq.Insert("after", rec, 60))

	l := lensAt(t, seq, "bb_lr.r1b1_01")
	l.Params2D.ShiftX = 1e-3
	l.Params2D.ShiftY = -5e-4

	co := track.Particle{X: 2e-3, Y: 1e-3}
	ConfigureOrbitDependent(seq, co)

	assert.Equal(t, 3e-3, l.Shift2D.MeanX)
	assert.Equal(t, 5e-4, l.Shift2D.MeanY)
	assert.InDelta(t, -1e-5, l.Shift2D.DPx, 1e-18)
	assert.InDelta(t, 5e-6, l.Shift2D.DPy, 1e-18)

	// Momenta are rolled back, positions accumulate.
	require.Len(t, rec.seen, 1)
	assert.InDelta(t, 1e-5, rec.seen[0].Px, 1e-18)
	assert.InDelta(t, 0, rec.seen[0].Py, 1e-18)
	assert.Equal(t, co.X+1e-9, rec.seen[0].X)

	first := l.Shift2D
	ConfigureOrbitDependent(seq, co)
	assert.Equal(t, first, l.Shift2D)
}

func TestBoostParameters(t *testing.T) {
	b := BoostParameters(0, 0)
	assert.Equal(t, Boost{CosPhi: 1, CosAlpha: 1}, b)

	b = BoostParameters(1.5e-4, math.Pi/2)
	assert.InDelta(t, math.Sin(1.5e-4), b.SinPhi, 1e-18)
	assert.InDelta(t, math.Tan(1.5e-4), b.TanPhi, 1e-18)
	assert.InDelta(t, 1, b.SinAlpha, 1e-15)
	assert.InDelta(t, 0, b.CosAlpha, 1e-15)
	assert.InDelta(t, b.TanPhi, b.SinPhi/b.CosPhi, 1e-18)
}
