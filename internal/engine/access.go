package engine

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

const (
	// probeOffset is how far (m) to step off a boundary crossing along the
	// road centerline to decide which side is interior.
	probeOffset = 2.0
	// candidateSpacing deduplicates entrance candidates closer than this (m).
	candidateSpacing = 15.0
	// notchFactor scales the gate opening radius from the half road width.
	notchFactor = 0.6

	islandLength    = 8.0
	islandHalfWidth = 0.75
	islandInset     = 5.0 // island center distance inward from the opening
	guardHouseSize  = 3.0
	barrierInset    = 2.5 // barrier arm distance inward from the opening
)

// entryCandidate is a boundary point where an internal grid road centerline
// meets the parcel perimeter with open space behind it.
type entryCandidate struct {
	pt     orb.Point
	inward orb.Point // unit vector pointing into the site
}

// polyEntry adapts a polygon to the rtreego spatial interface (bounding box
// index over superblocks and parks).
type polyEntry struct {
	poly orb.Polygon
	rect rtreego.Rect
}

func (p *polyEntry) Bounds() rtreego.Rect { return p.rect }

// newBlockIndex builds an R-tree over the given polygons. Zero-size rects
// are padded slightly; rtreego rejects empty extents.
func newBlockIndex(polys []orb.Polygon) *rtreego.Rtree {
	tree := rtreego.NewTree(2, 25, 50)
	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}
		b := poly[0].Bound()
		rect, err := rtreego.NewRect(
			rtreego.Point{b.Min[0], b.Min[1]},
			[]float64{b.Max[0] - b.Min[0] + 1e-9, b.Max[1] - b.Min[1] + 1e-9},
		)
		if err != nil {
			continue
		}
		tree.Insert(&polyEntry{poly: poly, rect: rect})
	}
	return tree
}

// indexContains reports whether the point falls inside any indexed polygon.
func indexContains(tree *rtreego.Rtree, p orb.Point) bool {
	probe, err := rtreego.NewRect(rtreego.Point{p[0] - 1e-6, p[1] - 1e-6}, []float64{2e-6, 2e-6})
	if err != nil {
		return false
	}
	for _, hit := range tree.SearchIntersect(probe) {
		if planar.PolygonContains(hit.(*polyEntry).poly, p) {
			return true
		}
	}
	return false
}

// findEntryCandidates projects every interior grid road centerline across
// the parcel and collects its boundary crossings, keeping only the ones
// reachable from open space (the interior probe must not land inside a
// superblock or park). Candidates are deduplicated within candidateSpacing
// and sorted by angular position around the centroid so entry selection is
// deterministic.
func findEntryCandidates(s *site, spec gridSpec, blocked *rtreego.Rtree) []entryCandidate {
	var raw []entryCandidate

	addCrossings := func(pt orb.Point, dir orb.Point) {
		plus := orb.Point{pt[0] + dir[0]*probeOffset, pt[1] + dir[1]*probeOffset}
		minus := orb.Point{pt[0] - dir[0]*probeOffset, pt[1] - dir[1]*probeOffset}
		var inward orb.Point
		switch {
		case planar.PolygonContains(s.poly, plus):
			inward = dir
		case planar.PolygonContains(s.poly, minus):
			inward = orb.Point{-dir[0], -dir[1]}
		default:
			return
		}
		interior := orb.Point{pt[0] + inward[0]*probeOffset, pt[1] + inward[1]*probeOffset}
		if indexContains(blocked, interior) {
			return
		}
		raw = append(raw, entryCandidate{pt: pt, inward: inward})
	}

	for col := 1; col < spec.cols; col++ {
		x := spec.columnRoadX(col)
		for _, pt := range ringCrossingsVertical(s.ring, x) {
			addCrossings(pt, orb.Point{0, 1})
		}
	}
	for row := 1; row < spec.rows; row++ {
		y := spec.rowRoadY(row)
		for _, pt := range ringCrossingsHorizontal(s.ring, y) {
			addCrossings(pt, orb.Point{1, 0})
		}
	}

	// Deduplicate nearby candidates, first wins.
	var dedup []entryCandidate
	for _, c := range raw {
		keep := true
		for _, k := range dedup {
			if planar.Distance(c.pt, k.pt) < candidateSpacing {
				keep = false
				break
			}
		}
		if keep {
			dedup = append(dedup, c)
		}
	}

	center := s.centroid
	sort.SliceStable(dedup, func(i, j int) bool {
		ai := math.Atan2(dedup[i].pt[1]-center[1], dedup[i].pt[0]-center[0])
		aj := math.Atan2(dedup[j].pt[1]-center[1], dedup[j].pt[0]-center[0])
		return ai < aj
	})
	return dedup
}

// ringCrossingsVertical returns the points where the vertical line x=c
// crosses the ring.
func ringCrossingsVertical(ring orb.Ring, c float64) []orb.Point {
	var out []orb.Point
	for i := 0; i+1 < len(ring); i++ {
		x1, x2 := ring[i][0], ring[i+1][0]
		if (x1-c)*(x2-c) >= 0 || x1 == x2 {
			continue
		}
		t := (c - x1) / (x2 - x1)
		out = append(out, orb.Point{c, ring[i][1] + t*(ring[i+1][1]-ring[i][1])})
	}
	return out
}

// ringCrossingsHorizontal returns the points where the horizontal line y=c
// crosses the ring.
func ringCrossingsHorizontal(ring orb.Ring, c float64) []orb.Point {
	var out []orb.Point
	for i := 0; i+1 < len(ring); i++ {
		y1, y2 := ring[i][1], ring[i+1][1]
		if (y1-c)*(y2-c) >= 0 || y1 == y2 {
			continue
		}
		t := (c - y1) / (y2 - y1)
		out = append(out, orb.Point{ring[i][0] + t*(ring[i+1][0]-ring[i][0]), c})
	}
	return out
}

// buildAccess constructs the gated entrance at the selected candidate: a
// traffic island on the road centerline, a guard house beside it, and two
// inward barrier arms, all aligned to the local road bearing.
func buildAccess(c entryCandidate, cfg model.Config) *model.AccessControl {
	u := c.inward                    // along the road, into the site
	n := orb.Point{-u[1], u[0]}      // left of the road direction
	at := func(du, dn float64) orb.Point {
		return orb.Point{
			c.pt[0] + u[0]*du + n[0]*dn,
			c.pt[1] + u[1]*du + n[1]*dn,
		}
	}

	island := orb.Polygon{geom.CloseRing([]orb.Point{
		at(islandInset-islandLength/2, -islandHalfWidth),
		at(islandInset+islandLength/2, -islandHalfWidth),
		at(islandInset+islandLength/2, islandHalfWidth),
		at(islandInset-islandLength/2, islandHalfWidth),
	})}

	halfRoad := cfg.RoadWidth / 2
	ghNear := halfRoad + 0.5
	guard := orb.Polygon{geom.CloseRing([]orb.Point{
		at(islandInset-guardHouseSize/2, ghNear),
		at(islandInset+guardHouseSize/2, ghNear),
		at(islandInset+guardHouseSize/2, ghNear+guardHouseSize),
		at(islandInset-guardHouseSize/2, ghNear+guardHouseSize),
	})}

	barriers := orb.MultiLineString{
		{at(barrierInset, -islandHalfWidth), at(barrierInset, -halfRoad)},
		{at(barrierInset, islandHalfWidth), at(barrierInset, halfRoad)},
	}

	return &model.AccessControl{
		Entry:      c.pt,
		Bearing:    math.Atan2(u[1], u[0]),
		Island:     island,
		GuardHouse: guard,
		Barriers:   barriers,
	}
}

// buildWall turns the perimeter into wall line segments, carving a circular
// opening around the gate when one was built. Without an access point the
// perimeter stays a single unbroken loop.
func buildWall(s *site, cfg model.Config, entry *orb.Point) orb.MultiLineString {
	line := orb.LineString(s.ring)
	if entry == nil {
		return orb.MultiLineString{line}
	}
	radius := notchFactor * cfg.RoadWidth / 2
	cut := geom.CutLineAroundPoint(line, *entry, radius)
	if cut == nil {
		return orb.MultiLineString{line}
	}
	return cut
}
