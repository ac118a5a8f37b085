package track

import (
	"testing"

	"github.com/banshee-data/beambeam/internal/bberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSequenceRejectsNonPositiveLength(t *testing.T) {
	_, err := NewSequence(0, Reference{})
	assert.ErrorIs(t, err, bberr.ErrInvalidParams)
}

func TestSequenceInsertOrder(t *testing.T) {
	q, err := NewSequence(100, Reference{Q0: 1, Beta0: 0.99})
	require.NoError(t, err)

	require.NoError(t, q.Insert("ip5", Marker{}, 50))
	require.NoError(t, q.Insert("start", Marker{}, 0))
	require.NoError(t, q.Insert("end", Marker{}, 100))
	require.NoError(t, q.Insert("bb_ho.c5b1_00", Marker{}, 50))
	require.NoError(t, q.Insert("bb_ho.l5b1_01", Marker{}, 49.99))

	assert.Equal(t, []string{"start", "bb_ho.l5b1_01", "ip5", "bb_ho.c5b1_00", "end"}, q.Names())

	s, err := q.SPosition("bb_ho.c5b1_00")
	require.NoError(t, err)
	assert.Equal(t, 50.0, s)
	assert.Equal(t, Reference{Q0: 1, Beta0: 0.99}, q.ParticleRef())
	assert.Equal(t, 100.0, q.Length())
}

func TestSequenceInsertErrors(t *testing.T) {
	q, err := NewSequence(10, Reference{})
	require.NoError(t, err)
	require.NoError(t, q.Insert("a", Marker{}, 1))

	assert.ErrorIs(t, q.Insert("a", Marker{}, 2), bberr.ErrInvalidParams)
	assert.ErrorIs(t, q.Insert("b", Marker{}, -1), bberr.ErrInvalidParams)
	assert.ErrorIs(t, q.Insert("b", Marker{}, 10.5), bberr.ErrInvalidParams)
	assert.ErrorIs(t, q.Insert("", Marker{}, 2), bberr.ErrInvalidParams)

	_, err = q.SPosition("missing")
	assert.ErrorIs(t, err, bberr.ErrElementNotFound)
	assert.ErrorIs(t, err, bberr.ErrLookup)
}

func TestSequenceReplace(t *testing.T) {
	q, err := NewSequence(10, Reference{})
	require.NoError(t, err)
	require.NoError(t, q.Insert("k", Marker{}, 5))

	require.NoError(t, q.Replace("k", Kicker{DPx: 1e-6}))
	el, ok := q.Element("k")
	require.True(t, ok)
	assert.Equal(t, Kicker{DPx: 1e-6}, el)
	assert.ErrorIs(t, q.Replace("x", Marker{}), bberr.ErrElementNotFound)
}

func TestTrackLine(t *testing.T) {
	q, err := NewSequence(10, Reference{})
	require.NoError(t, err)
	require.NoError(t, q.Insert("k1", Kicker{DPx: 1e-6, DPy: -2e-6}, 2))
	require.NoError(t, q.Insert("m", Marker{}, 3))
	require.NoError(t, q.Insert("k2", Kicker{DPx: 1e-6}, 4))

	p := Particle{X: 1e-3, Delta: 1e-4}
	TrackLine(q, &p)
	assert.Equal(t, Particle{X: 1e-3, Px: 2e-6, Py: -2e-6, Delta: 1e-4}, p)
}
