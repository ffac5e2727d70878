package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestCloseRing(t *testing.T) {
	r := CloseRing([]orb.Point{{0, 0}, {1, 0}, {1, 1}})
	assert.Len(t, r, 4)
	assert.Equal(t, r[0], r[len(r)-1])

	// Already closed input stays untouched.
	closed := CloseRing([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	assert.Len(t, closed, 4)
}

func TestCleanRingRemovesDuplicates(t *testing.T) {
	r := orb.Ring{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 0}}
	out := CleanRing(r)
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, out)
}

func TestEnsureOrientation(t *testing.T) {
	cw := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	out := EnsureOrientation(cw, orb.CCW)
	assert.Equal(t, orb.CCW, out.Orientation())

	ccw := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	out = EnsureOrientation(ccw, orb.CCW)
	assert.Equal(t, orb.CCW, out.Orientation())
}

func TestSelfIntersects(t *testing.T) {
	square := orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	assert.False(t, SelfIntersects(square))

	bowtie := orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}
	assert.True(t, SelfIntersects(bowtie))

	triangle := orb.Ring{{0, 0}, {4, 0}, {2, 3}, {0, 0}}
	assert.False(t, SelfIntersects(triangle))
}

func TestPrincipalAxis(t *testing.T) {
	rect := orb.Ring{{0, 0}, {10, 0}, {10, 2}, {0, 2}, {0, 0}}
	assert.InDelta(t, 0, PrincipalAxis(rect), 1e-12)

	// Longest edge heading down-right normalizes into [0, pi).
	tri := orb.Ring{{0, 0}, {4, -4}, {4, 0}, {0, 0}}
	assert.InDelta(t, 3*math.Pi/4, PrincipalAxis(tri), 1e-12)
}

func TestAreaAndCentroid(t *testing.T) {
	square := orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	assert.InDelta(t, 4.0, Area(square), 1e-12)

	c := Centroid(square)
	assert.InDelta(t, 1.0, c[0], 1e-12)
	assert.InDelta(t, 1.0, c[1], 1e-12)

	// Orientation must not flip the sign.
	cw := orb.Ring{{0, 0}, {0, 2}, {2, 2}, {2, 0}, {0, 0}}
	assert.InDelta(t, 4.0, Area(cw), 1e-12)
}
