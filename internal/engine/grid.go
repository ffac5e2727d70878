package engine

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

const (
	// lotsPerRow is the fixed number of lot widths one block row holds.
	lotsPerRow = 8
	// bufferCells pads the grid on every side so concave or rotated
	// boundary regions are still covered.
	bufferCells = 2
	// minCellArea discards boundary clippings too small to use (m²).
	minCellArea = 50.0
)

type cellClass int

const (
	classUnknown cellClass = iota
	classResidential
	classPark
)

// gridCell is one block-grid unit: its column/row index, the axis-aligned
// cell box in the working frame, and the cell clipped against the parcel.
// Cells exist only for the duration of one generation pass.
type gridCell struct {
	col, row int
	bound    orb.Bound
	poly     orb.Polygon
	area     float64
	class    cellClass
}

// gridSpec records the grid geometry so later stages can locate road
// centerlines and cell adjacency without re-deriving the layout.
type gridSpec struct {
	x0, y0         float64
	pitchX, pitchY float64
	blockW, blockD float64
	roadW          float64
	cols, rows     int
}

// buildGrid lays a regular grid of block cells across the aligned bounding
// box, centered so the edge remainder balances on both sides, and clips
// every cell against the parcel. Cells whose clipped area falls below
// minCellArea are dropped as noise.
func buildGrid(s *site, cfg model.Config) ([]gridCell, gridSpec) {
	spec := gridSpec{
		blockW: cfg.LotWidth * lotsPerRow,
		blockD: 2 * cfg.LotDepth,
		roadW:  cfg.RoadWidth,
	}
	spec.pitchX = spec.blockW + cfg.RoadWidth
	spec.pitchY = spec.blockD + cfg.RoadWidth

	w := s.bound.Max[0] - s.bound.Min[0]
	h := s.bound.Max[1] - s.bound.Min[1]
	spec.cols = int(math.Ceil(w/spec.pitchX)) + 2*bufferCells
	spec.rows = int(math.Ceil(h/spec.pitchY)) + 2*bufferCells

	// Center the grid on the bounding box. The last column has no trailing
	// road allowance.
	gridW := float64(spec.cols)*spec.pitchX - cfg.RoadWidth
	gridH := float64(spec.rows)*spec.pitchY - cfg.RoadWidth
	spec.x0 = (s.bound.Min[0]+s.bound.Max[0])/2 - gridW/2
	spec.y0 = (s.bound.Min[1]+s.bound.Max[1])/2 - gridH/2

	var cells []gridCell
	for col := 0; col < spec.cols; col++ {
		for row := 0; row < spec.rows; row++ {
			b := spec.cellBound(col, row)
			poly, err := geom.ClipBound(s.poly, b)
			if err != nil {
				continue
			}
			area := geom.Area(poly)
			if area < minCellArea {
				continue
			}
			cells = append(cells, gridCell{
				col:   col,
				row:   row,
				bound: b,
				poly:  poly,
				area:  area,
				class: classUnknown,
			})
		}
	}
	return cells, spec
}

// cellBound returns the axis-aligned box of the block cell at (col, row).
func (g gridSpec) cellBound(col, row int) orb.Bound {
	x := g.x0 + float64(col)*g.pitchX
	y := g.y0 + float64(row)*g.pitchY
	return orb.Bound{
		Min: orb.Point{x, y},
		Max: orb.Point{x + g.blockW, y + g.blockD},
	}
}

// columnRoadX returns the x coordinate of the road centerline left of the
// given column (valid for col in 1..cols-1).
func (g gridSpec) columnRoadX(col int) float64 {
	return g.x0 + float64(col)*g.pitchX - g.roadW/2
}

// rowRoadY returns the y coordinate of the road centerline below the given
// row (valid for row in 1..rows-1).
func (g gridSpec) rowRoadY(row int) float64 {
	return g.y0 + float64(row)*g.pitchY - g.roadW/2
}
