package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrafold/siteplan/internal/model"
)

func TestBuildGridCoversParcel(t *testing.T) {
	s, err := prepareSite(rectBoundary(200, 150))
	require.NoError(t, err)

	cfg := model.DefaultConfig()
	cells, spec := buildGrid(s, cfg)

	assert.Equal(t, 64.0, spec.blockW)
	assert.Equal(t, 36.0, spec.blockD)
	assert.Equal(t, 76.0, spec.pitchX)
	assert.Equal(t, 48.0, spec.pitchY)

	require.NotEmpty(t, cells)
	var total float64
	for _, c := range cells {
		assert.GreaterOrEqual(t, c.area, minCellArea)
		assert.Equal(t, classUnknown, c.class)
		total += c.area
	}
	// Cells cover the parcel minus the road gaps.
	assert.Less(t, total, s.area)
	assert.Greater(t, total, 0.4*s.area)
}

func TestGridRoadCenterlines(t *testing.T) {
	spec := gridSpec{x0: -100, y0: -50, pitchX: 76, pitchY: 48, roadW: 12, cols: 4, rows: 3}

	// The centerline left of column 1 sits half a road width before the
	// column's cell edge.
	assert.InDelta(t, -100+76-6, spec.columnRoadX(1), 1e-12)
	assert.InDelta(t, -50+2*48-6, spec.rowRoadY(2), 1e-12)

	b := spec.cellBound(0, 0)
	assert.Equal(t, -100.0, b.Min[0])
	assert.Equal(t, -50.0, b.Min[1])
}

func TestClassifyCellsQuota(t *testing.T) {
	s, err := prepareSite(rectBoundary(200, 150))
	require.NoError(t, err)

	cfg := model.DefaultConfig()
	cells, _ := buildGrid(s, cfg)
	classifyCells(cells, nil, cfg)

	var total, park float64
	for _, c := range cells {
		require.NotEqual(t, classUnknown, c.class)
		total += c.area
		if c.class == classPark {
			park += c.area
		}
	}
	quota := cfg.ParkPercentage / 100 * total
	assert.GreaterOrEqual(t, park, quota)

	// Greedy assignment overshoots by at most the final cell.
	var largest float64
	for _, c := range cells {
		if c.area > largest {
			largest = c.area
		}
	}
	assert.LessOrEqual(t, park, quota+largest)
}

func TestClassifyCellsZeroQuota(t *testing.T) {
	s, err := prepareSite(rectBoundary(200, 150))
	require.NoError(t, err)

	cfg := model.DefaultConfig()
	cfg.ParkPercentage = 0
	cells, _ := buildGrid(s, cfg)
	classifyCells(cells, nil, cfg)

	for _, c := range cells {
		assert.Equal(t, classResidential, c.class)
	}
}
