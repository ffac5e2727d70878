package engine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

// parkTestSite builds a large site whose parcel fully contains the synthetic
// cells used below.
func parkTestSite(t *testing.T) *site {
	t.Helper()
	s, err := prepareSite(rectBoundary(400, 300))
	require.NoError(t, err)
	return s
}

func cellAt(col, row int, b orb.Bound) gridCell {
	ring := geom.RectRing(b)
	return gridCell{
		col:   col,
		row:   row,
		bound: b,
		poly:  orb.Polygon{ring},
		area:  geom.Area(ring),
		class: classPark,
	}
}

func TestClassifyCellsAnchorInsideCell(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ParkPercentage = 0

	a := cellAt(0, 0, orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}})
	b := cellAt(1, 0, orb.Bound{Min: orb.Point{2, -20}, Max: orb.Point{42, 20}})
	a.class = classUnknown
	b.class = classUnknown
	cells := []gridCell{a, b}

	classifyCells(cells, []orb.Point{{-30, 0}}, cfg)
	assert.Equal(t, classPark, cells[0].class)
	assert.Equal(t, classResidential, cells[1].class)
}

func TestClassifyCellsAnchorSnapsAcrossRoadGap(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.ParkPercentage = 0

	a := cellAt(0, 0, orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}})
	b := cellAt(1, 0, orb.Bound{Min: orb.Point{2, -20}, Max: orb.Point{42, 20}})
	a.class = classUnknown
	b.class = classUnknown
	cells := []gridCell{a, b}

	// The anchor lands in the road gap, slightly closer to the right cell.
	classifyCells(cells, []orb.Point{{0, 0}}, cfg)
	assert.Equal(t, classResidential, cells[0].class)
	assert.Equal(t, classPark, cells[1].class)
}

func TestMergeParksJoinsColumnNeighbors(t *testing.T) {
	s := parkTestSite(t)

	// Two park cells separated by a 12 m road gap.
	a := cellAt(0, 0, orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}})
	b := cellAt(1, 0, orb.Bound{Min: orb.Point{2, -20}, Max: orb.Point{42, 20}})

	parks := mergeParks(s, []gridCell{a, b})
	require.Len(t, parks, 1)

	// The merged park covers both cells plus the gap filler.
	area := geom.Area(parks[0])
	assert.Greater(t, area, a.area+b.area)

	// Points from both cells are inside the merged polygon.
	assert.True(t, planar.PolygonContains(parks[0], orb.Point{-30, 0}))
	assert.True(t, planar.PolygonContains(parks[0], orb.Point{22, 0}))
}

func TestMergeParksKeepsNonAdjacentSeparate(t *testing.T) {
	s := parkTestSite(t)

	a := cellAt(0, 0, orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}})
	b := cellAt(2, 0, orb.Bound{Min: orb.Point{54, -20}, Max: orb.Point{94, 20}})

	parks := mergeParks(s, []gridCell{a, b})
	assert.Len(t, parks, 2)
}

func TestMergeParksIgnoresResidential(t *testing.T) {
	s := parkTestSite(t)

	a := cellAt(0, 0, orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}})
	r := cellAt(1, 0, orb.Bound{Min: orb.Point{2, -20}, Max: orb.Point{42, 20}})
	r.class = classResidential

	parks := mergeParks(s, []gridCell{a, r})
	assert.Len(t, parks, 1)
	assert.InDelta(t, a.area, geom.Area(parks[0]), 1e-9)
}

func TestGapFiller(t *testing.T) {
	s := parkTestSite(t)

	left := orb.Bound{Min: orb.Point{-50, -20}, Max: orb.Point{-10, 20}}
	right := orb.Bound{Min: orb.Point{2, -20}, Max: orb.Point{42, 20}}

	fill, err := gapFiller(s, left, right)
	require.NoError(t, err)
	// Gap width 12 m plus the overlap reach on both sides, cell height minus
	// the cross-axis inset.
	assert.InDelta(t, (12+2*mergeOverlap)*(40-2*mergeOverlap), geom.Area(fill), 1e-6)

	// Argument order must not matter.
	fill2, err := gapFiller(s, right, left)
	require.NoError(t, err)
	assert.InDelta(t, geom.Area(fill), geom.Area(fill2), 1e-9)

	// Overlapping bounds have no gap to fill.
	_, err = gapFiller(s, left, orb.Bound{Min: orb.Point{-20, -20}, Max: orb.Point{20, 20}})
	assert.Error(t, err)
}

func TestSeedParkTrees(t *testing.T) {
	park := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{60, 40},
	})}

	trees := seedParkTrees(park, 3)
	assert.NotEmpty(t, trees)
	// Density target: one tree per 150 m² over 2400 m².
	assert.LessOrEqual(t, len(trees), 16)

	for i, tr := range trees {
		assert.Equal(t, 3, tr.ParkID)
		assert.Zero(t, tr.LotID)
		assert.True(t, planar.PolygonContains(park, tr.Point))
		for j := i + 1; j < len(trees); j++ {
			assert.GreaterOrEqual(t, planar.Distance(tr.Point, trees[j].Point), parkTreeSpacing)
		}
	}

	// A park too small for even one tree stays empty.
	tiny := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{10, 10},
	})}
	assert.Empty(t, seedParkTrees(tiny, 1))
}
