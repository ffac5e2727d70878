package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := NewLocalFrame(orb.Point{5.1, 45.2}, math.Pi/6)

	pts := []orb.Point{
		{5.1, 45.2},
		{5.1012, 45.2007},
		{5.0991, 45.1995},
	}
	for _, p := range pts {
		back := f.ToGlobal(f.ToLocal(p))
		assert.InDelta(t, p[0], back[0], 1e-9)
		assert.InDelta(t, p[1], back[1], 1e-9)
	}
}

func TestFrameMeterScale(t *testing.T) {
	// At the equator one degree of latitude and longitude are both one
	// meridian degree long.
	f := NewLocalFrame(orb.Point{0, 0}, 0)

	north := f.ToLocal(orb.Point{0, 0.001})
	assert.InDelta(t, 0, north[0], 1e-9)
	assert.InDelta(t, 111.32, north[1], 1e-6)

	east := f.ToLocal(orb.Point{0.001, 0})
	assert.InDelta(t, 111.32, east[0], 1e-6)
	assert.InDelta(t, 0, east[1], 1e-9)
}

func TestFrameRotationAlignsAxis(t *testing.T) {
	// A frame whose angle matches a bearing maps that bearing onto +X.
	angle := math.Pi / 4
	f := NewLocalFrame(orb.Point{0, 0}, angle)

	p := f.ToGlobal(orb.Point{100, 0})
	local := f.ToLocal(p)
	assert.InDelta(t, 100, local[0], 1e-6)
	assert.InDelta(t, 0, local[1], 1e-6)

	// The same point in an unrotated frame sits on the diagonal.
	plain := NewLocalFrame(orb.Point{0, 0}, 0)
	diag := plain.ToLocal(p)
	assert.InDelta(t, 100/math.Sqrt2, diag[0], 1e-6)
	assert.InDelta(t, 100/math.Sqrt2, diag[1], 1e-6)
}

func TestRingAndPolygonMapping(t *testing.T) {
	f := NewLocalFrame(orb.Point{2.0, 41.0}, 0.3)
	ring := orb.Ring{{2.0, 41.0}, {2.001, 41.0}, {2.001, 41.001}, {2.0, 41.0}}

	local := f.RingToLocal(ring)
	require.Len(t, local, len(ring))
	back := f.RingToGlobal(local)
	for i := range ring {
		assert.InDelta(t, ring[i][0], back[i][0], 1e-9)
		assert.InDelta(t, ring[i][1], back[i][1], 1e-9)
	}

	poly := orb.Polygon{ring}
	round := f.PolygonToGlobal(f.PolygonToLocal(poly))
	require.Len(t, round, 1)
	for i := range ring {
		assert.InDelta(t, ring[i][0], round[0][i][0], 1e-9)
	}
}

func TestOffsetMeters(t *testing.T) {
	ref := orb.Point{0, 0}
	dx, dy := OffsetMeters(ref, orb.Point{0.001, 0.002})
	assert.InDelta(t, 111.32, dx, 1e-6)
	assert.InDelta(t, 222.64, dy, 1e-6)
}
