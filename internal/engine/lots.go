package engine

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

const (
	// minLotArea is the smallest lot the subdivider will keep (m²).
	minLotArea = 20.0
	// bandDiscardRatio drops a whole band whose area is under this share
	// of one nominal lot.
	bandDiscardRatio = 0.5
	// sliverRatio marks lots below this share of nominal area for repair.
	sliverRatio = 0.75
	// orphanDiscardRatio drops a neighborless sliver below this share.
	orphanDiscardRatio = 0.4

	sideSetback  = 1.5 // m, building setback from lot sides
	frontSetback = 3.0 // m, building setback from the road-facing edge

	lotTreeSideShare = 0.25 // tree offset from lot center, share of lot width
	lotTreeInset     = 1.5  // m, tree distance from the road-facing edge

	buildingVariants = 6
)

// idSequence hands out lot ids monotonically across the whole run. It is
// passed explicitly through the subdivider instead of living in a global.
type idSequence struct{ last int }

func (s *idSequence) Next() int {
	s.last++
	return s.last
}

// lotCandidate is a lot strip under sliver repair. The strip range keeps
// merged candidates contiguous so neighbor lookup stays an index check.
type lotCandidate struct {
	poly             orb.Polygon
	area             float64
	stripLo, stripHi int
	accepted         bool // irregular but viable, exempt from further repair
	removed          bool
}

// cellLots is everything subdivision produced for one residential cell.
type cellLots struct {
	lots      []*model.Lot
	buildings []model.Building
	trees     []model.Tree
}

// subdivideCell splits one residential cell into a front and a back band of
// lots, repairs slivers, and derives a building footprint and tree point for
// every surviving lot. The ok result is false when the cell yields no lots
// at all, letting the caller reclassify it as park.
func subdivideCell(cell gridCell, cfg model.Config, seq *idSequence, frameAngle float64) (cellLots, bool) {
	var out cellLots

	// Reserve the road bands hugging the cell's top and bottom edges
	// before any slicing.
	buildable := orb.Bound{
		Min: orb.Point{cell.bound.Min[0], cell.bound.Min[1] + cfg.RoadWidth/2},
		Max: orb.Point{cell.bound.Max[0], cell.bound.Max[1] - cfg.RoadWidth/2},
	}
	if buildable.Min[1] >= buildable.Max[1] {
		return out, false
	}
	midY := (buildable.Min[1] + buildable.Max[1]) / 2

	bands := []struct {
		bound   orb.Bound
		backRow bool
	}{
		{orb.Bound{Min: buildable.Min, Max: orb.Point{buildable.Max[0], midY}}, false},
		{orb.Bound{Min: orb.Point{buildable.Min[0], midY}, Max: buildable.Max}, true},
	}

	for _, band := range bands {
		poly, err := geom.ClipBound(cell.poly, band.bound)
		if err != nil {
			continue
		}
		nominal := cfg.LotWidth * cfg.LotDepth
		if geom.Area(poly) < bandDiscardRatio*nominal {
			continue
		}
		candidates, stripW := sliceBand(poly, cfg)
		repairSlivers(candidates, poly, nominal, stripW)

		for _, c := range candidates {
			if c.removed || c.area < minLotArea {
				continue
			}
			lot := &model.Lot{
				ID:      seq.Next(),
				Polygon: c.poly,
				BackRow: band.backRow,
				Angle:   frameAngle,
				Area:    c.area,
			}
			out.lots = append(out.lots, lot)
			if b, ok := placeBuilding(lot, cfg); ok {
				out.buildings = append(out.buildings, b)
			}
			if t, ok := placeLotTree(lot, cfg); ok {
				out.trees = append(out.trees, t)
			}
		}
	}
	return out, len(out.lots) > 0
}

// sliceBand cuts a band polygon into equal-width vertical strips and clips
// each strip against the band.
func sliceBand(band orb.Polygon, cfg model.Config) ([]*lotCandidate, float64) {
	bound := band[0].Bound()
	w := bound.Max[0] - bound.Min[0]
	n := int(math.Floor(w / cfg.LotWidth))
	if n < 1 {
		n = 1
	}
	stripW := w / float64(n)

	var out []*lotCandidate
	for i := 0; i < n; i++ {
		sb := orb.Bound{
			Min: orb.Point{bound.Min[0] + float64(i)*stripW, bound.Min[1]},
			Max: orb.Point{bound.Min[0] + float64(i+1)*stripW, bound.Max[1]},
		}
		poly, err := geom.ClipBound(band, sb)
		if err != nil {
			continue
		}
		out = append(out, &lotCandidate{
			poly:    poly,
			area:    geom.Area(poly),
			stripLo: i,
			stripHi: i,
		})
	}
	return out, stripW
}

// repairSlivers iteratively merges undersized lots with a neighbor or
// discards them. Every iteration either removes a candidate or accepts one,
// so the loop terminates. The smaller neighbor is preferred to avoid
// creating an oversized lot; on equal areas the left neighbor wins.
func repairSlivers(candidates []*lotCandidate, band orb.Polygon, nominal, stripW float64) {
	for {
		cand := smallestSliver(candidates, nominal)
		if cand == nil {
			return
		}
		left, right := neighborsOf(candidates, cand)
		if left == nil && right == nil {
			if cand.area < orphanDiscardRatio*nominal {
				cand.removed = true
			} else {
				cand.accepted = true
			}
			continue
		}

		target := left
		if left == nil || (right != nil && right.area < left.area) {
			target = right
		}

		lo := minInt(cand.stripLo, target.stripLo)
		hi := maxInt(cand.stripHi, target.stripHi)
		bandBound := band[0].Bound()
		mb := orb.Bound{
			Min: orb.Point{bandBound.Min[0] + float64(lo)*stripW, bandBound.Min[1]},
			Max: orb.Point{bandBound.Min[0] + float64(hi+1)*stripW, bandBound.Max[1]},
		}
		merged, err := geom.ClipBound(band, mb)
		if err != nil {
			// Cannot merge this pair; keep the sliver as an irregular
			// corner lot rather than looping forever.
			cand.accepted = true
			continue
		}
		target.poly = merged
		target.area = geom.Area(merged)
		target.stripLo = lo
		target.stripHi = hi
		cand.removed = true
	}
}

// smallestSliver returns the unprocessed candidate with the smallest area
// below the repair threshold, or nil when repair is done.
func smallestSliver(candidates []*lotCandidate, nominal float64) *lotCandidate {
	var best *lotCandidate
	for _, c := range candidates {
		if c.removed || c.accepted || c.area >= sliverRatio*nominal {
			continue
		}
		if best == nil || c.area < best.area {
			best = c
		}
	}
	return best
}

// neighborsOf finds the immediate surviving strip neighbors of a candidate.
func neighborsOf(candidates []*lotCandidate, cand *lotCandidate) (left, right *lotCandidate) {
	for _, c := range candidates {
		if c == cand || c.removed {
			continue
		}
		if c.stripHi == cand.stripLo-1 {
			left = c
		}
		if c.stripLo == cand.stripHi+1 {
			right = c
		}
	}
	return left, right
}

// placeBuilding derives a footprint from the lot via side, front and rear
// setbacks. Depth is randomized between 50% and 60% of the lot depth and
// the height factor between 0.9 and 1.1 of nominal.
func placeBuilding(lot *model.Lot, cfg model.Config) (model.Building, bool) {
	bound := lot.Polygon[0].Bound()
	depth := (0.5 + rand.Float64()*0.1) * cfg.LotDepth

	var minY, maxY float64
	if lot.BackRow {
		// Road is above: front edge at the top of the lot.
		maxY = bound.Max[1] - frontSetback
		minY = maxY - depth
	} else {
		minY = bound.Min[1] + frontSetback
		maxY = minY + depth
	}
	fb := orb.Bound{
		Min: orb.Point{bound.Min[0] + sideSetback, minY},
		Max: orb.Point{bound.Max[0] - sideSetback, maxY},
	}
	if fb.Min[0] >= fb.Max[0] || fb.Min[1] >= fb.Max[1] {
		return model.Building{}, false
	}
	poly, err := geom.ClipBound(lot.Polygon, fb)
	if err != nil {
		return model.Building{}, false
	}
	return model.Building{
		LotID:        lot.ID,
		Polygon:      poly,
		Stories:      cfg.Stories,
		HeightFactor: 0.9 + rand.Float64()*0.2,
		Variant:      rand.Intn(buildingVariants),
	}, true
}

// placeLotTree derives one tree point per lot, offset to a random side and
// toward the road-facing edge. A point landing outside the lot polygon
// omits the tree rather than relocating it.
func placeLotTree(lot *model.Lot, cfg model.Config) (model.Tree, bool) {
	bound := lot.Polygon[0].Bound()
	cx := (bound.Min[0] + bound.Max[0]) / 2
	side := 1.0
	if rand.Float64() < 0.5 {
		side = -1.0
	}
	x := cx + side*cfg.LotWidth*lotTreeSideShare

	var y float64
	if lot.BackRow {
		y = bound.Max[1] - lotTreeInset
	} else {
		y = bound.Min[1] + lotTreeInset
	}
	p := orb.Point{x, y}
	if !planar.PolygonContains(lot.Polygon, p) {
		return model.Tree{}, false
	}
	return model.Tree{Point: p, LotID: lot.ID}, true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
