package resolve

import (
	"math"
	"testing"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/banshee-data/beambeam/internal/encounter"
	"github.com/banshee-data/beambeam/internal/geometry"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/banshee-data/beambeam/internal/optics"
	"github.com/banshee-data/beambeam/internal/testutil"
	"github.com/banshee-data/beambeam/internal/track"
	"github.com/banshee-data/beambeam/internal/units"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNumParticles = 1.2e11
	testNemitt       = 2.5e-6
)

func testParams(beam, other string) encounter.Params {
	return encounter.Params{
		Circumference:       1000,
		HarmonicNumber:      1000,
		BunchSpacingBuckets: 10,
		NumSlicesHeadOn:     5,
		NumLongRangePerSide: []int{3},
		BunchCharge:         1,
		BunchLength:         0.08,
		RelativisticBeta:    0.999999,
		IPNames:             []string{"ip1"},
		Beam:                beam,
		OtherBeam:           other,
	}
}

// resolveBeam installs markers for the encounters in a line built from lat
// and resolves the table against it. For the anticlockwise beam the
// encounters are installed at negated positions and the optics and surveys
// are reversed.
func resolveBeam(t *testing.T, lat *optics.Lattice, table *encounter.Table, reverse bool) (*BeamTable, optics.View) {
	t.Helper()
	seq, err := lat.Sequence()
	require.NoError(t, err)

	installed := table
	if reverse {
		installed = table.WithNegatedPositions()
	}
	for _, e := range installed.Rows() {
		sip, err := seq.SPosition(e.IPName)
		require.NoError(t, err)
		require.NoError(t, seq.Insert(e.ElementName, track.Marker{}, sip+e.AtPosition))
	}

	tab, err := lat.Optics(seq)
	require.NoError(t, err)
	var view optics.View = tab
	if reverse {
		view = tab.Reverse()
	}

	st, err := lat.Surveys(seq)
	require.NoError(t, err)
	surveys := map[string]optics.Survey{}
	for _, ip := range table.IPNames() {
		sv, err := st.Survey(ip)
		require.NoError(t, err)
		if reverse {
			sv = sv.Reverse()
		}
		surveys[ip] = sv
	}

	bt, err := ComputeGeometry(GeometryInput{
		Encounters:   table,
		Optics:       view,
		Surveys:      surveys,
		Sigmas:       optics.BetatronSigmas(view, testNemitt, testNemitt),
		NumParticles: testNumParticles,
	})
	require.NoError(t, err)
	return bt, view
}

func twoBeams(t *testing.T, ring testutil.Ring) (cw, acw *BeamTable) {
	t.Helper()
	latCW, latACW := ring.Lattices()

	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)
	t2, err := encounter.Generate(testParams("b2", "b1"))
	require.NoError(t, err)

	cw, _ = resolveBeam(t, latCW, t1, false)
	acw, _ = resolveBeam(t, latACW, t2, true)
	require.NoError(t, CrossReference(cw, acw, false))
	require.NoError(t, ComputeSeparations(cw))
	require.NoError(t, ComputeSeparations(acw))
	return cw, acw
}

func TestHeadOnWithoutCrossing(t *testing.T) {
	testutil.QuietWarnings(t)
	cw, acw := twoBeams(t, testutil.DefaultRing())

	require.Equal(t, 11, cw.Len())
	assert.Equal(t, "b1", cw.Beam())
	assert.Zero(t, monitoring.WarningCount())

	for _, bt := range []*BeamTable{cw, acw} {
		for _, r := range bt.Rows() {
			assert.InDelta(t, 0, r.SeparationX, 1e-15, r.ElementName)
			assert.InDelta(t, 0, r.SeparationY, 1e-15, r.ElementName)
			assert.Zero(t, r.Phi, r.ElementName)
			assert.Zero(t, r.Alpha, r.ElementName)
			assert.InDelta(t, 500, r.SIP, 1e-12)

			partner, ok := map[string]*BeamTable{"b1": cw, "b2": acw}[r.OtherBeam].Get(r.OtherElementName)
			require.True(t, ok)
			assert.Equal(t, partner.SelfSigma, r.OtherSigma)
			assert.Same(t, partner.SelfLab, r.OtherLab)
			assert.Equal(t, partner.SelfNumParticles, r.OtherNumParticles)
			assert.Equal(t, partner.SelfParticleCharge, r.OtherParticleCharge)
			assert.Equal(t, partner.SelfRelativisticBeta, r.OtherRelativisticBeta)
		}
	}

	ho, ok := cw.Get("bb_ho.c1b1_00")
	require.True(t, ok)
	assert.InDelta(t, testNumParticles/5, ho.SelfNumParticles, 1)
	assert.InDelta(t, testNumParticles/5, ho.OtherNumParticles, 1)

	lr, ok := cw.Get("bb_lr.r1b1_02")
	require.True(t, ok)
	assert.Equal(t, testNumParticles, lr.OtherNumParticles)
	assert.InDelta(t, 510, lr.S, 1e-12)

	// Matched beams: Sigma11 = beta* eps with eps = nemitt / (beta gamma).
	eps := testNemitt / units.BetaGamma(0.999999)
	assert.InEpsilon(t, 0.5*eps, lr.OtherSigma.S11, 1e-12)
}

func TestHorizontalCrossing(t *testing.T) {
	testutil.QuietWarnings(t)
	ring := testutil.DefaultRing()
	ring.IPs[0].HalfCrossingX = 1.5e-4
	cw, acw := twoBeams(t, ring)

	for sign, bt := range map[float64]*BeamTable{1: cw, -1: acw} {
		for _, r := range bt.Rows() {
			assert.InDelta(t, sign*1.5e-4, r.Phi, 1e-15, r.ElementName)
			assert.InDelta(t, 0, r.Alpha, 1e-15, r.ElementName)
			assert.InDelta(t, sign*3e-4, r.DPx, 1e-15, r.ElementName)
			assert.InDelta(t, 0, r.SeparationY, 1e-15, r.ElementName)
		}
	}

	for _, name := range []string{"bb_lr.l1b1_03", "bb_lr.r1b1_01", "bb_lr.r1b1_03"} {
		r, ok := cw.Get(name)
		require.True(t, ok)
		// Each beam is theta/2 * d away from the axis, on opposite sides.
		want := -2 * 1.5e-4 * (r.S - r.SIP)
		assert.InDelta(t, want, r.SeparationX, 1e-12, name)
	}
	r, _ := cw.Get("bb_lr.r1b1_03")
	assert.InDelta(t, -4.5e-3, r.SeparationX, 1e-12)
}

func TestVerticalCrossingAndOffset(t *testing.T) {
	testutil.QuietWarnings(t)
	ring := testutil.DefaultRing()
	ring.IPs[0].HalfCrossingY = 1.5e-4
	ring.IPs[0].HalfSeparationX = 1e-5
	cw, acw := twoBeams(t, ring)

	for _, r := range cw.Rows() {
		assert.InDelta(t, math.Pi/2, r.Alpha, 1e-12, r.ElementName)
		assert.InDelta(t, 1.5e-4, r.Phi, 1e-15, r.ElementName)
		assert.InDelta(t, -2e-5, r.SeparationX, 1e-15, r.ElementName)
	}
	for _, r := range acw.Rows() {
		// Seen from the other beam the offset changes sign, the angle does not.
		assert.InDelta(t, math.Pi/2, r.Alpha, 1e-12, r.ElementName)
		assert.InDelta(t, -1.5e-4, r.Phi, 1e-15, r.ElementName)
		assert.InDelta(t, 2e-5, r.SeparationX, 1e-15, r.ElementName)
	}
}

func TestCrossReferenceMissingPartner(t *testing.T) {
	testutil.QuietWarnings(t)
	latCW, latACW := testutil.DefaultRing().Lattices()

	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)
	p2 := testParams("b2", "b1")
	p2.NumLongRangePerSide = []int{2}
	t2, err := encounter.Generate(p2)
	require.NoError(t, err)

	cw, _ := resolveBeam(t, latCW, t1, false)
	acw, _ := resolveBeam(t, latACW, t2, true)

	err = CrossReference(cw, acw, false)
	assert.ErrorIs(t, err, bberr.ErrPartnerNotFound)
	assert.ErrorIs(t, err, bberr.ErrLookup)
	assert.Contains(t, err.Error(), "bb_lr.l1b2_03")
}

func TestCrossReferenceAntisymmetric(t *testing.T) {
	testutil.QuietWarnings(t)
	ring := testutil.DefaultRing()
	ring.IPs[0].HalfCrossingX = 1.5e-4
	latCW, _ := ring.Lattices()

	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)
	bt, _ := resolveBeam(t, latCW, t1, false)

	require.NoError(t, CrossReferenceAntisymmetric(bt))
	require.NoError(t, ComputeSeparations(bt))
	assert.Zero(t, monitoring.WarningCount())

	r, _ := bt.Get("bb_lr.r1b1_02")
	mirror, _ := bt.Get("bb_lr.l1b1_02")
	assert.Equal(t, mirror.SelfSigma, r.OtherSigma)
	assert.Equal(t, r.SelfLab.P.Z, r.OtherLab.P.Z)
	assert.Equal(t, r.SelfLab.Origin.Z, r.OtherLab.Origin.Z)
	assert.Equal(t, mirror.SelfLab.P.X, r.OtherLab.P.X)
	assert.NotEqual(t, mirror.SelfLab.P.Z, r.OtherLab.P.Z, "partner placement must be a copy")
	assert.InDelta(t, -3e-3, r.SeparationX, 1e-12)

	ho, _ := bt.Get("bb_ho.l1b1_02")
	hoMirror, _ := bt.Get("bb_ho.r1b1_02")
	assert.Equal(t, hoMirror.SelfSigma, ho.OtherSigma)
	assert.Equal(t, hoMirror.SelfNumParticles, ho.OtherNumParticles)
}

func TestCrossReferenceAntisymmetricMismatch(t *testing.T) {
	testutil.QuietWarnings(t)
	latCW, _ := testutil.DefaultRing().Lattices()
	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)
	bt, _ := resolveBeam(t, latCW, t1, false)

	r, _ := bt.Get("bb_lr.r1b1_03")
	r.S += 1e-3

	err = CrossReferenceAntisymmetric(bt)
	assert.ErrorIs(t, err, bberr.ErrMirrorMismatch)
	assert.ErrorIs(t, err, bberr.ErrTolerance)

	var ee *bberr.ElementError
	require.ErrorAs(t, err, &ee)
	assert.InDelta(t, 1e-3, ee.Value, 1e-9)
}

func TestCrossReferenceAntisymmetricAmbiguous(t *testing.T) {
	testutil.QuietWarnings(t)
	bt := newBeamTable("b1", 2)
	for _, name := range []string{"a", "b"} {
		bt.add(&Resolved{
			Encounter: encounter.Encounter{ElementName: name},
			S:         10, SIP: 10,
			SelfLab: geometry.NewLabPoint(name, geometry.SurveyPoint{}, 0, 0, 0, 0),
		})
	}
	require.NoError(t, CrossReferenceAntisymmetric(bt))
	assert.Equal(t, int64(2), monitoring.WarningCount())
}

func TestMeasureCrabbing(t *testing.T) {
	testutil.QuietWarnings(t)
	ring := testutil.DefaultRing()
	ring.IPs[0].CrabDxZeta = 1e-3
	latCW, latACW := ring.Lattices()

	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)
	t2, err := encounter.Generate(testParams("b2", "b1"))
	require.NoError(t, err)

	cw, viewCW := resolveBeam(t, latCW, t1, false)
	acw, viewACW := resolveBeam(t, latACW, t2, true)
	require.NoError(t, MeasureCrabbing(cw, viewCW, false))
	require.NoError(t, MeasureCrabbing(acw, viewACW, true))
	assert.True(t, cw.Crabbing)

	for _, bt := range []*BeamTable{cw, acw} {
		for _, r := range bt.Rows() {
			assert.InDelta(t, 2*r.SCrab*1e-3, r.SelfCrab.X, 1e-15, r.ElementName)
			assert.Zero(t, r.SelfCrab.Y, r.ElementName)
		}
	}
	lr, _ := cw.Get("bb_lr.r1b1_01")
	assert.Equal(t, Crab{}, lr.SelfCrab)

	require.NoError(t, CrossReference(cw, acw, true))
	require.NoError(t, ComputeSeparations(cw))

	ho, _ := cw.Get("bb_ho.r1b1_02")
	partner, _ := acw.Get("bb_ho.r1b2_02")
	assert.Equal(t, partner.SelfCrab, ho.OtherCrab)
	assert.InDelta(t, 0, ho.SeparationXNoCrab, 1e-15)
	assert.InDelta(t, ho.SeparationXNoCrab+partner.SelfCrab.X, ho.SeparationX, 1e-18)
	assert.NotZero(t, ho.SeparationX)
}

func TestComputeGeometryRequiresSurveyPerIP(t *testing.T) {
	latCW, _ := testutil.DefaultRing().Lattices()
	tab, err := latCW.Optics(nil)
	require.NoError(t, err)
	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)

	_, err = ComputeGeometry(GeometryInput{
		Encounters: t1,
		Optics:     tab,
		Surveys:    map[string]optics.Survey{},
		Sigmas:     optics.BetatronSigmas(tab, testNemitt, testNemitt),
	})
	assert.ErrorIs(t, err, bberr.ErrInvalidParams)
}

// shiftedSurvey places every element 1 mm off the lab origin.
type shiftedSurvey struct{}

func (shiftedSurvey) Frame(name string) (geometry.SurveyPoint, error) {
	return geometry.SurveyPoint{Name: name, X: 1e-3}, nil
}

func (s shiftedSurvey) Reverse() optics.Survey { return s }

func TestComputeGeometryRequiresSurveyAtIP(t *testing.T) {
	latCW, _ := testutil.DefaultRing().Lattices()
	tab, err := latCW.Optics(nil)
	require.NoError(t, err)
	t1, err := encounter.Generate(testParams("b1", "b2"))
	require.NoError(t, err)

	_, err = ComputeGeometry(GeometryInput{
		Encounters: t1,
		Optics:     tab,
		Surveys:    map[string]optics.Survey{"ip1": shiftedSurvey{}},
		Sigmas:     optics.BetatronSigmas(tab, testNemitt, testNemitt),
	})
	assert.ErrorIs(t, err, bberr.ErrInvalidParams)
	var ee *bberr.ElementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "ip1", ee.Element)
	assert.InDelta(t, 1e-3, ee.Value, 1e-15)
}

func TestFindAlphaAndPhiOctants(t *testing.T) {
	const a = 2e-4
	tests := []struct {
		name       string
		dpx, dpy   float64
		alpha, phi float64
	}{
		{"first octant", 2 * a, a, math.Atan(0.5), math.Hypot(2*a, a) / 2},
		{"second octant", a, 2 * a, math.Pi/2 - math.Atan(0.5), math.Hypot(2*a, a) / 2},
		{"third octant", -a, 2 * a, math.Pi/2 + math.Atan(0.5), math.Hypot(2*a, a) / 2},
		{"fourth octant", -2 * a, a, -math.Atan(0.5), -math.Hypot(2*a, a) / 2},
		{"fifth octant", -2 * a, -a, math.Atan(0.5), -math.Hypot(2*a, a) / 2},
		{"sixth octant", -a, -2 * a, math.Pi/2 - math.Atan(0.5), -math.Hypot(2*a, a) / 2},
		{"seventh octant", a, -2 * a, math.Pi/2 + math.Atan(0.5), -math.Hypot(2*a, a) / 2},
		{"eighth octant", 2 * a, -a, -math.Atan(0.5), math.Hypot(2*a, a) / 2},

		{"positive x axis", a, 0, 0, a / 2},
		{"positive y axis", 0, a, math.Pi / 2, a / 2},
		{"negative x axis", -a, 0, 0, -a / 2},
		{"negative y axis", 0, -a, math.Pi / 2, -a / 2},
		{"first diagonal", a, a, math.Pi / 4, math.Sqrt2 * a / 2},
		{"second diagonal", -a, a, -math.Pi / 4, -math.Sqrt2 * a / 2},
		{"third diagonal", -a, -a, math.Pi / 4, -math.Sqrt2 * a / 2},
		{"fourth diagonal", a, -a, 3 * math.Pi / 4, -math.Sqrt2 * a / 2},

		{"zero", 0, 0, 0, 0},
		{"below threshold", 1e-21, 1e-21, 0, math.Sqrt2 * 1e-21 / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha, phi := FindAlphaAndPhi(tt.dpx, tt.dpy)
			assert.InDelta(t, tt.alpha, alpha, 1e-15)
			assert.InDelta(t, tt.phi, phi, 1e-18)
		})
	}
}

func TestFindAlphaAndPhiProperties(t *testing.T) {
	for k := 0; k < 64; k++ {
		theta := 2 * math.Pi * float64(k) / 64
		norm := 3e-4 * (1 + float64(k%5))
		dpx, dpy := norm*math.Cos(theta), norm*math.Sin(theta)

		alpha, phi := FindAlphaAndPhi(dpx, dpy)
		assert.InDelta(t, norm/2, math.Abs(phi), 1e-18)
		assert.GreaterOrEqual(t, alpha, -math.Pi/4-1e-15)
		assert.LessOrEqual(t, alpha, 3*math.Pi/4+1e-15)
		assert.InDelta(t, dpx, 2*phi*math.Cos(alpha), 1e-17, "k=%d", k)
		assert.InDelta(t, dpy, 2*phi*math.Sin(alpha), 1e-17, "k=%d", k)

		nalpha, nphi := FindAlphaAndPhi(-dpx, -dpy)
		assert.InDelta(t, -dpx, 2*nphi*math.Cos(nalpha), 1e-17, "k=%d", k)
		assert.InDelta(t, -dpy, 2*nphi*math.Sin(nalpha), 1e-17, "k=%d", k)
	}
}

func signedTable() *BeamTable {
	bt := newBeamTable("b2", 2)
	for i, name := range []string{"bb_ho.c1b2_00", "bb_lr.r1b2_01"} {
		f := float64(i + 1)
		r := &Resolved{
			Encounter: encounter.Encounter{
				Beam: "b2", OtherBeam: "b1", IPName: "ip1", ElementName: name,
				AtPosition: 1.5 * f, SelfParticleCharge: 1, SelfRelativisticBeta: 0.9,
			},
			S:                 100 * f,
			SIP:               100,
			SelfNumParticles:  1e11 * f,
			SelfLab:           geometry.NewLabPoint(name, geometry.SurveyPoint{}, 0, 0, 0, 0),
			SelfSigma:         optics.SigmaFromEntries([10]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
			SelfCrab:          Crab{X: 1e-6, Px: 2e-6, Y: 3e-6, Py: 4e-6},
			OtherSigma:        optics.SigmaFromEntries([10]float64{-1, -2, -3, -4, -5, -6, -7, -8, -9, -10}),
			OtherNumParticles: 2e11,
			OtherCrab:         Crab{X: -1e-6, Px: 5e-6, Y: 6e-6, Py: -7e-6},
			SeparationX:       1e-3 * f, SeparationY: -2e-3 * f,
			SeparationXNoCrab: 3e-3, SeparationYNoCrab: 4e-3,
			DPx: 3e-4 * f, DPy: -1e-4,
		}
		r.Alpha, r.Phi = FindAlphaAndPhi(r.DPx, r.DPy)
		bt.add(r)
	}
	bt.Crabbing = true
	return bt
}

func TestCounterRotating(t *testing.T) {
	bt := signedTable()
	c := CounterRotating(bt)

	require.Equal(t, bt.Names(), c.Names())
	assert.True(t, c.Crabbing)

	r, _ := bt.Get("bb_lr.r1b2_01")
	cr, _ := c.Get("bb_lr.r1b2_01")
	assert.Equal(t, -r.AtPosition, cr.AtPosition)
	assert.Equal(t, -r.SeparationX, cr.SeparationX)
	assert.Equal(t, r.SeparationY, cr.SeparationY)
	assert.Equal(t, r.DPx, cr.DPx)
	assert.Equal(t, -r.DPy, cr.DPy)
	assert.Equal(t, r.SelfSigma.CounterRotated(), cr.SelfSigma)
	assert.Equal(t, -r.SelfSigma.S12, cr.SelfSigma.S12)
	assert.Equal(t, r.SelfSigma.S14, cr.SelfSigma.S14)
	assert.Equal(t, Crab{X: -1e-6, Px: 2e-6, Y: 3e-6, Py: -4e-6}, cr.SelfCrab)
	assert.Nil(t, cr.SelfLab)
	assert.Nil(t, cr.OtherLab)
	assert.Zero(t, cr.S)

	alpha, phi := FindAlphaAndPhi(cr.DPx, cr.DPy)
	assert.Equal(t, alpha, cr.Alpha)
	assert.Equal(t, phi, cr.Phi)
}

func TestCounterRotatingIsInvolution(t *testing.T) {
	bt := signedTable()
	twice := CounterRotating(CounterRotating(bt))

	ignore := cmpopts.IgnoreFields(Resolved{}, "S", "SIP", "SelfLab", "OtherLab")
	for _, name := range bt.Names() {
		want, _ := bt.Get(name)
		got, _ := twice.Get(name)
		if diff := cmp.Diff(want, got, ignore); diff != "" {
			t.Errorf("%s changed after two counter-rotations (-want +got):\n%s", name, diff)
		}
	}
}

func TestNewBeamTable(t *testing.T) {
	rows := []*Resolved{
		{Encounter: encounter.Encounter{ElementName: "bb_lr.r1b1_01", Kind: encounter.KindLongRange, Identifier: 1}, Phi: 1e-4},
		{Encounter: encounter.Encounter{ElementName: "bb_ho.c1b1_00", Kind: encounter.KindHeadOn}},
	}
	bt, err := NewBeamTable("b1", rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"bb_ho.c1b1_00", "bb_lr.r1b1_01"}, bt.Names())

	s := bt.Summaries()
	require.Len(t, s, 2)
	assert.Equal(t, "bb_lr.r1b1_01", s[1].ElementName)
	assert.Equal(t, encounter.KindLongRange, s[1].Kind)
	assert.Equal(t, 1e-4, s[1].Phi)

	_, err = NewBeamTable("b1", append(rows, rows[0]))
	assert.ErrorIs(t, err, bberr.ErrInvalidParams)
}
