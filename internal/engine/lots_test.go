package engine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

func fullCell(minX, minY float64, cfg model.Config) gridCell {
	b := orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{minX + cfg.LotWidth*lotsPerRow, minY + 2*cfg.LotDepth},
	}
	ring := geom.RectRing(b)
	return gridCell{
		bound: b,
		poly:  orb.Polygon{ring},
		area:  geom.Area(ring),
		class: classResidential,
	}
}

func TestSubdivideCellProducesBothBands(t *testing.T) {
	cfg := model.DefaultConfig()
	seq := &idSequence{}

	out, ok := subdivideCell(fullCell(0, 0, cfg), cfg, seq, 0)
	require.True(t, ok)
	require.NotEmpty(t, out.lots)

	var front, back int
	for _, lot := range out.lots {
		assert.GreaterOrEqual(t, lot.Area, minLotArea)
		if lot.BackRow {
			back++
		} else {
			front++
		}
	}
	assert.Greater(t, front, 0)
	assert.Greater(t, back, 0)

	// IDs are sequential and unique.
	seen := map[int]bool{}
	for _, lot := range out.lots {
		assert.False(t, seen[lot.ID])
		seen[lot.ID] = true
	}
}

func TestSubdivideCellTooShallow(t *testing.T) {
	cfg := model.DefaultConfig()
	// A cell shorter than the road reservation has no buildable band.
	cell := fullCell(0, 0, cfg)
	cell.bound.Max[1] = cell.bound.Min[1] + cfg.RoadWidth/2
	cell.poly = orb.Polygon{geom.RectRing(cell.bound)}

	_, ok := subdivideCell(cell, cfg, &idSequence{}, 0)
	assert.False(t, ok)
}

func TestSliceBandStripCount(t *testing.T) {
	cfg := model.DefaultConfig()
	band := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{64, 18},
	})}

	candidates, stripW := sliceBand(band, cfg)
	assert.Len(t, candidates, 8)
	assert.InDelta(t, 8.0, stripW, 1e-12)
	for i, c := range candidates {
		assert.Equal(t, i, c.stripLo)
		assert.Equal(t, i, c.stripHi)
		assert.InDelta(t, 8*18, c.area, 1e-9)
	}

	// Narrower than one lot width still yields a single strip.
	narrow := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{5, 18},
	})}
	candidates, _ = sliceBand(narrow, cfg)
	assert.Len(t, candidates, 1)
}

func TestRepairSliversMergesIntoSmallerNeighbor(t *testing.T) {
	band := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{24, 18},
	})}
	nominal := 144.0
	stripW := 8.0

	mk := func(lo int, area float64) *lotCandidate {
		b := orb.Bound{Min: orb.Point{float64(lo) * stripW, 0}, Max: orb.Point{float64(lo+1) * stripW, 18}}
		return &lotCandidate{poly: orb.Polygon{geom.RectRing(b)}, area: area, stripLo: lo, stripHi: lo}
	}
	// Middle strip is a sliver; its right neighbor is the smaller one.
	candidates := []*lotCandidate{mk(0, 150), mk(1, 50), mk(2, 120)}

	repairSlivers(candidates, band, nominal, stripW)

	assert.True(t, candidates[1].removed)
	assert.False(t, candidates[0].removed)
	assert.False(t, candidates[2].removed)
	// The sliver merged rightward, widening the right candidate.
	assert.Equal(t, 1, candidates[2].stripLo)
	assert.Equal(t, 2, candidates[2].stripHi)
	assert.InDelta(t, 16*18, candidates[2].area, 1e-9)
}

func TestRepairSliversOrphan(t *testing.T) {
	band := orb.Polygon{geom.RectRing(orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{8, 18},
	})}
	nominal := 144.0

	// A lone candidate under 40% of nominal is discarded.
	tiny := &lotCandidate{
		poly: band, area: 40, stripLo: 0, stripHi: 0,
	}
	repairSlivers([]*lotCandidate{tiny}, band, nominal, 8)
	assert.True(t, tiny.removed)

	// Between 40% and 75% it survives as an irregular corner lot.
	corner := &lotCandidate{
		poly: band, area: 80, stripLo: 0, stripHi: 0,
	}
	repairSlivers([]*lotCandidate{corner}, band, nominal, 8)
	assert.False(t, corner.removed)
	assert.True(t, corner.accepted)
}

func TestPlaceBuildingSetbacks(t *testing.T) {
	cfg := model.DefaultConfig()
	lotBound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{8, 18}}
	lot := &model.Lot{
		ID:      1,
		Polygon: orb.Polygon{geom.RectRing(lotBound)},
		Area:    144,
	}

	b, ok := placeBuilding(lot, cfg)
	require.True(t, ok)
	assert.Equal(t, 1, b.LotID)
	assert.Equal(t, cfg.Stories, b.Stories)

	fb := b.Polygon[0].Bound()
	assert.InDelta(t, sideSetback, fb.Min[0], 1e-9)
	assert.InDelta(t, 8-sideSetback, fb.Max[0], 1e-9)
	// Front lot: footprint starts at the front setback.
	assert.InDelta(t, frontSetback, fb.Min[1], 1e-9)
	depth := fb.Max[1] - fb.Min[1]
	assert.GreaterOrEqual(t, depth, 0.5*cfg.LotDepth-1e-9)
	assert.LessOrEqual(t, depth, 0.6*cfg.LotDepth+1e-9)

	// Too narrow for the side setbacks.
	slim := &model.Lot{
		ID:      2,
		Polygon: orb.Polygon{geom.RectRing(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 18}})},
	}
	_, ok = placeBuilding(slim, cfg)
	assert.False(t, ok)
}

func TestPlaceLotTree(t *testing.T) {
	cfg := model.DefaultConfig()
	lot := &model.Lot{
		ID:      7,
		Polygon: orb.Polygon{geom.RectRing(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{8, 18}})},
	}

	tree, ok := placeLotTree(lot, cfg)
	require.True(t, ok)
	assert.Equal(t, 7, tree.LotID)
	// Front lot: tree near the road edge.
	assert.InDelta(t, lotTreeInset, tree.Point[1], 1e-9)
	dx := tree.Point[0] - 4
	assert.InDelta(t, cfg.LotWidth*lotTreeSideShare, dx*sign(dx), 1e-9)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
