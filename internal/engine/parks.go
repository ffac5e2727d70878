package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

const (
	// parkTreeDensity targets one tree per this many square meters.
	parkTreeDensity = 150.0
	// parkTreeSpacing is the minimum distance between park trees (m).
	parkTreeSpacing = 6.0
	// treeAttemptFactor bounds random placement retries per target tree.
	treeAttemptFactor = 15
	// mergeOverlap extends gap fillers slightly into both cells so the
	// union tracer sees proper boundary crossings.
	mergeOverlap = 0.05
)

// classifyCells assigns park or residential to every cell. Each park anchor
// forces its nearest cell to park; an anchor falling on a road gap between
// cell boxes still snaps to the closest one, so in-parcel anchors always
// take effect. The remaining cells are sorted ascending by area (small,
// irregular leftovers make poor house lots but acceptable green space) and
// greedily added until the park quota is met.
func classifyCells(cells []gridCell, anchors []orb.Point, cfg model.Config) {
	var total, parkArea float64
	for i := range cells {
		total += cells[i].area
	}
	for _, a := range anchors {
		idx := -1
		best := math.Inf(1)
		for i := range cells {
			if d := boundDistance(cells[i].bound, a); d < best {
				best = d
				idx = i
			}
		}
		if idx >= 0 && cells[idx].class != classPark {
			cells[idx].class = classPark
			parkArea += cells[idx].area
		}
	}
	quota := cfg.ParkPercentage / 100 * total

	order := make([]int, 0, len(cells))
	for i := range cells {
		if cells[i].class == classUnknown {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return cells[order[a]].area < cells[order[b]].area
	})

	for _, i := range order {
		if parkArea < quota {
			cells[i].class = classPark
			parkArea += cells[i].area
		} else {
			cells[i].class = classResidential
		}
	}
}

// parkFragment is a set of park cells already merged into one polygon.
type parkFragment struct {
	poly  orb.Polygon
	cells map[[2]int]orb.Bound
}

// mergeParks consolidates adjacent park cells into contiguous park
// polygons. Each merge unions the two fragments together with a thin filler
// covering the inter-cell road gap, so a conceptually contiguous park is not
// fragmented by the grid's virtual road lines. A failed union is never
// fatal: the fragments simply stay separate.
func mergeParks(s *site, cells []gridCell) []orb.Polygon {
	var frags []*parkFragment
	for i := range cells {
		if cells[i].class != classPark {
			continue
		}
		frags = append(frags, &parkFragment{
			poly:  cells[i].poly,
			cells: map[[2]int]orb.Bound{{cells[i].col, cells[i].row}: cells[i].bound},
		})
	}

	merged := true
	for merged {
		merged = false
	pairs:
		for i := 0; i < len(frags); i++ {
			for j := i + 1; j < len(frags); j++ {
				key, ok := adjacentCells(frags[i], frags[j])
				if !ok {
					continue
				}
				union, err := mergeFragmentPair(s, frags[i], frags[j], key)
				if err != nil {
					continue
				}
				frags[i].poly = union
				for k, b := range frags[j].cells {
					frags[i].cells[k] = b
				}
				frags = append(frags[:j], frags[j+1:]...)
				merged = true
				break pairs
			}
		}
	}

	out := make([]orb.Polygon, 0, len(frags))
	for _, f := range frags {
		out = append(out, f.poly)
	}
	return out
}

// adjacentCells finds a pair of grid-adjacent cells across two fragments,
// returning their keys. Only column and row neighbors count.
func adjacentCells(a, b *parkFragment) ([2][2]int, bool) {
	for ka := range a.cells {
		for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			kb := [2]int{ka[0] + d[0], ka[1] + d[1]}
			if _, ok := b.cells[kb]; ok {
				return [2][2]int{ka, kb}, true
			}
		}
	}
	return [2][2]int{}, false
}

// mergeFragmentPair unions two park fragments through the gap filler
// between the named neighbor cells.
func mergeFragmentPair(s *site, a, b *parkFragment, key [2][2]int) (orb.Polygon, error) {
	filler, err := gapFiller(s, a.cells[key[0]], b.cells[key[1]])
	if err != nil {
		return nil, err
	}
	half, err := geom.Union(a.poly, filler)
	if err != nil {
		return nil, err
	}
	return geom.Union(half, b.poly)
}

// gapFiller builds the thin polygon covering the road gap between two
// neighboring cell boxes, clipped to the parcel. It reaches mergeOverlap
// into both cells along the merge axis and shrinks by the same amount on the
// cross axis, so every filler edge crosses the cell boundaries transversally
// instead of running collinear with them.
func gapFiller(s *site, a, b orb.Bound) (orb.Polygon, error) {
	var fill orb.Bound
	switch {
	case a.Max[0] < b.Min[0]: // a left of b
		fill = orb.Bound{
			Min: orb.Point{a.Max[0] - mergeOverlap, maxf(a.Min[1], b.Min[1]) + mergeOverlap},
			Max: orb.Point{b.Min[0] + mergeOverlap, minf(a.Max[1], b.Max[1]) - mergeOverlap},
		}
	case b.Max[0] < a.Min[0]: // b left of a
		return gapFiller(s, b, a)
	case a.Max[1] < b.Min[1]: // a below b
		fill = orb.Bound{
			Min: orb.Point{maxf(a.Min[0], b.Min[0]) + mergeOverlap, a.Max[1] - mergeOverlap},
			Max: orb.Point{minf(a.Max[0], b.Max[0]) - mergeOverlap, b.Min[1] + mergeOverlap},
		}
	case b.Max[1] < a.Min[1]: // b below a
		return gapFiller(s, b, a)
	default:
		return nil, geom.ErrDegenerate
	}
	if fill.Min[0] >= fill.Max[0] || fill.Min[1] >= fill.Max[1] {
		return nil, geom.ErrDegenerate
	}
	return geom.ClipBound(s.poly, fill)
}

// seedParkTrees randomly places trees inside a park polygon subject to the
// minimum spacing constraint. Placement is best effort: when the retry
// budget runs out the park simply holds fewer trees than targeted.
func seedParkTrees(poly orb.Polygon, parkID int) []model.Tree {
	area := geom.Area(poly)
	target := int(area / parkTreeDensity)
	if target == 0 {
		return nil
	}
	bound := poly[0].Bound()
	w := bound.Max[0] - bound.Min[0]
	h := bound.Max[1] - bound.Min[1]

	var pts []orb.Point
	maxAttempts := target * treeAttemptFactor
	for attempt := 0; attempt < maxAttempts && len(pts) < target; attempt++ {
		p := orb.Point{
			bound.Min[0] + rand.Float64()*w,
			bound.Min[1] + rand.Float64()*h,
		}
		if !planar.PolygonContains(poly, p) {
			continue
		}
		tooClose := false
		for _, q := range pts {
			if planar.Distance(p, q) < parkTreeSpacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			pts = append(pts, p)
		}
	}

	trees := make([]model.Tree, len(pts))
	for i, p := range pts {
		trees[i] = model.Tree{Point: p, ParkID: parkID}
	}
	return trees
}

// boundDistance is the distance from p to the closest point of b, zero when
// p lies inside.
func boundDistance(b orb.Bound, p orb.Point) float64 {
	dx := maxf(maxf(b.Min[0]-p[0], 0), p[0]-b.Max[0])
	dy := maxf(maxf(b.Min[1]-p[1], 0), p[1]-b.Max[1])
	return math.Hypot(dx, dy)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
