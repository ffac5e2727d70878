package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionOverlappingSquares(t *testing.T) {
	a := square(0, 0, 2, 2)
	b := square(1, 1, 3, 3)

	out, err := Union(a, b)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 7.0, Area(out), 1e-9)
	assert.Equal(t, orb.CCW, out[0].Orientation())
}

func TestUnionContainment(t *testing.T) {
	outer := square(0, 0, 4, 4)
	inner := square(1, 1, 2, 2)

	out, err := Union(outer, inner)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, Area(out), 1e-9)

	// Order must not matter.
	out, err = Union(inner, outer)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, Area(out), 1e-9)
}

func TestUnionDisjoint(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(5, 5, 6, 6)

	_, err := Union(a, b)
	assert.Error(t, err)
}

func TestUnionCrossShape(t *testing.T) {
	// Horizontal and vertical bars crossing in the middle.
	h := square(0, 2, 6, 4)
	v := square(2, 0, 4, 6)

	out, err := Union(h, v)
	require.NoError(t, err)
	// 12 + 12 - 4 overlap.
	assert.InDelta(t, 20.0, Area(out), 1e-9)
}

func TestUnionCollinearEdges(t *testing.T) {
	// Disjoint squares whose top and bottom edges ride the same lines: no
	// shared interval, so this is just a non-overlap, not a degeneracy.
	_, err := Union(square(0, 0, 2, 2), square(3, 0, 5, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResult)

	// Overlapping squares sharing those lines do collide on an interval.
	_, err = Union(square(0, 0, 2, 2), square(1, 0, 3, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestUnionAcrossSharedGridLines(t *testing.T) {
	// A cell with a connector tongue reaching toward the next cell in the
	// same grid row. The outer edges of both pieces ride the shared lines
	// y=0 and y=2; only the tongue crosses the second cell's boundary.
	a := orb.Polygon{orb.Ring{
		{0, 0}, {2, 0}, {2, 0.05}, {3.05, 0.05},
		{3.05, 1.95}, {2, 1.95}, {2, 2}, {0, 2}, {0, 0},
	}}
	b := square(3, 0, 5, 2)

	out, err := Union(a, b)
	require.NoError(t, err)
	require.Len(t, out, 1)
	// 5.995 + 4 - 0.095 overlap.
	assert.InDelta(t, 9.9, Area(out), 1e-9)
}

func TestUnionDegenerateInputs(t *testing.T) {
	_, err := Union(orb.Polygon{}, square(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrDegenerate)

	line := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 0}}}
	_, err = Union(line, square(0, 0, 1, 1))
	assert.Error(t, err)
}

func TestUnionAll(t *testing.T) {
	// Three squares in a row, each overlapping the next.
	polys := []orb.Polygon{
		square(0, 0, 2, 2),
		square(1.5, 0.25, 3.5, 1.75),
		square(3, 0.5, 5, 1.5),
	}
	out, err := UnionAll(polys)
	require.NoError(t, err)
	assert.Greater(t, Area(out), Area(polys[0]))

	_, err = UnionAll(nil)
	assert.ErrorIs(t, err, ErrDegenerate)
}
