package geom

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// alphaEpsilon rejects crossings that graze an endpoint; such configurations
// are numerically unstable and callers fall back to unmerged geometry.
const alphaEpsilon = 1e-9

// ghNode is a vertex in the circular doubly linked list used by the
// Greiner-Hormann tracer. Intersection nodes appear in both lists and are
// linked through neighbor.
type ghNode struct {
	pt        orb.Point
	next      *ghNode
	prev      *ghNode
	intersect bool
	entry     bool
	visited   bool
	neighbor  *ghNode
	alpha     float64
}

type ghCrossing struct {
	edgeA  int
	edgeB  int
	alphaA float64
	alphaB float64
	pt     orb.Point
	nodeA  *ghNode // subject-list node, wired first so the clip list can pair
}

// Union merges the exterior rings of two properly overlapping simple
// polygons into one. It requires the boundaries to cross transversally; the
// engine guarantees that by extending gap fillers a little into both sides
// before merging. Touching-only or disjoint inputs return an error and the
// caller keeps the pieces separate.
func Union(a, b orb.Polygon) (out orb.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geom: union panicked: %v", r)
		}
	}()
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrDegenerate
	}
	ringA := EnsureOrientation(CleanRing(a[0].Clone()), orb.CCW)
	ringB := EnsureOrientation(CleanRing(b[0].Clone()), orb.CCW)
	if len(ringA) < minRingVertices || len(ringB) < minRingVertices {
		return nil, ErrDegenerate
	}

	crossings, err := findCrossings(ringA, ringB)
	if err != nil {
		return nil, err
	}
	if len(crossings) == 0 {
		// No boundary crossing: one polygon may swallow the other.
		if planar.RingContains(ringA, ringB[0]) {
			return orb.Polygon{ringA}, nil
		}
		if planar.RingContains(ringB, ringA[0]) {
			return orb.Polygon{ringB}, nil
		}
		return nil, fmt.Errorf("geom: polygons do not overlap: %w", ErrEmptyResult)
	}
	if len(crossings)%2 != 0 {
		return nil, fmt.Errorf("geom: odd crossing count %d: %w", len(crossings), ErrDegenerate)
	}

	headA := buildList(ringA, crossings, true)
	headB := buildList(ringB, crossings, false)

	// Union entry marks: start from the containment state of the first
	// vertex and toggle at every crossing (inverted relative to the
	// intersection operator).
	markEntries(headA, ringB)
	markEntries(headB, ringA)

	rings := traceUnion(headA)
	if len(rings) == 0 {
		return nil, ErrEmptyResult
	}
	// The outer boundary is the largest traced ring; smaller rings are
	// holes closed by the merge and are intentionally dropped.
	best := rings[0]
	for _, r := range rings[1:] {
		if Area(r) > Area(best) {
			best = r
		}
	}
	best = CleanRing(best)
	if len(best) < minRingVertices {
		return nil, ErrEmptyResult
	}
	return orb.Polygon{EnsureOrientation(best, orb.CCW)}, nil
}

// findCrossings computes all transversal edge crossings between two closed
// rings. Endpoint grazing or collinear overlap is reported as degenerate;
// collinear edges that share a line but not an interval are harmless and
// simply produce no crossing.
func findCrossings(a, b orb.Ring) ([]ghCrossing, error) {
	var out []ghCrossing
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			p1, p2 := a[i], a[i+1]
			q1, q2 := b[j], b[j+1]
			d1 := sideOf(q1, q2, p1)
			d2 := sideOf(q1, q2, p2)
			d3 := sideOf(p1, p2, q1)
			d4 := sideOf(p1, p2, q2)
			if d1*d2 > 0 || d3*d4 > 0 {
				continue
			}
			den := (p2[0]-p1[0])*(q2[1]-q1[1]) - (p2[1]-p1[1])*(q2[0]-q1[0])
			if den == 0 {
				if d1 == 0 && d2 == 0 && collinearOverlap(p1, p2, q1, q2) {
					return nil, fmt.Errorf("geom: collinear overlapping edges: %w", ErrDegenerate)
				}
				continue
			}
			ta := ((q1[0]-p1[0])*(q2[1]-q1[1]) - (q1[1]-p1[1])*(q2[0]-q1[0])) / den
			tb := ((q1[0]-p1[0])*(p2[1]-p1[1]) - (q1[1]-p1[1])*(p2[0]-p1[0])) / den
			if ta < -alphaEpsilon || ta > 1+alphaEpsilon || tb < -alphaEpsilon || tb > 1+alphaEpsilon {
				continue
			}
			if ta < alphaEpsilon || ta > 1-alphaEpsilon || tb < alphaEpsilon || tb > 1-alphaEpsilon {
				return nil, fmt.Errorf("geom: crossing grazes an endpoint: %w", ErrDegenerate)
			}
			out = append(out, ghCrossing{
				edgeA:  i,
				edgeB:  j,
				alphaA: ta,
				alphaB: tb,
				pt:     orb.Point{p1[0] + (p2[0]-p1[0])*ta, p1[1] + (p2[1]-p1[1])*ta},
			})
		}
	}
	return out, nil
}

// collinearOverlap reports whether two segments on the same line share more
// than a single point. Callers have already established collinearity.
func collinearOverlap(p1, p2, q1, q2 orb.Point) bool {
	axis := 0
	if math.Abs(p2[1]-p1[1]) > math.Abs(p2[0]-p1[0]) {
		axis = 1
	}
	pLo, pHi := math.Min(p1[axis], p2[axis]), math.Max(p1[axis], p2[axis])
	qLo, qHi := math.Min(q1[axis], q2[axis]), math.Max(q1[axis], q2[axis])
	return math.Min(pHi, qHi)-math.Max(pLo, qLo) > alphaEpsilon
}

// buildList threads ring vertices and crossing nodes into a circular doubly
// linked list. Crossing nodes created for the subject list are paired with
// their clip-list twins through the neighbor pointer.
func buildList(ring orb.Ring, crossings []ghCrossing, subject bool) *ghNode {
	nodesPerEdge := make(map[int][]*ghNode)
	for k := range crossings {
		c := &crossings[k]
		edge, alpha := c.edgeB, c.alphaB
		if subject {
			edge, alpha = c.edgeA, c.alphaA
		}
		n := &ghNode{pt: c.pt, intersect: true, alpha: alpha}
		if subject {
			c.nodeA = n
		} else {
			n.neighbor = c.nodeA
			c.nodeA.neighbor = n
		}
		nodesPerEdge[edge] = append(nodesPerEdge[edge], n)
	}

	var head, tail *ghNode
	link := func(n *ghNode) {
		if head == nil {
			head = n
			tail = n
			return
		}
		tail.next = n
		n.prev = tail
		tail = n
	}
	for i := 0; i+1 < len(ring); i++ {
		link(&ghNode{pt: ring[i]})
		ns := nodesPerEdge[i]
		sort.Slice(ns, func(x, y int) bool { return ns[x].alpha < ns[y].alpha })
		for _, n := range ns {
			link(n)
		}
	}
	tail.next = head
	head.prev = tail
	return head
}

// markEntries assigns the union entry flag to every crossing node of the
// list by toggling the containment state against the other ring.
func markEntries(head *ghNode, other orb.Ring) {
	inside := planar.RingContains(other, head.pt)
	for n := head; ; {
		if n.intersect {
			n.entry = inside
			inside = !inside
		}
		n = n.next
		if n == head {
			break
		}
	}
}

// traceUnion walks the linked lists switching polygons at each crossing,
// producing the merged boundary ring(s).
func traceUnion(head *ghNode) []orb.Ring {
	var rings []orb.Ring
	for {
		start := firstUnvisited(head)
		if start == nil {
			break
		}
		ring := orb.Ring{start.pt}
		cur := start
		for steps := 0; steps < 100000; steps++ {
			cur.visited = true
			if cur.neighbor != nil {
				cur.neighbor.visited = true
			}
			if cur.entry {
				for {
					cur = cur.next
					ring = append(ring, cur.pt)
					if cur.intersect {
						break
					}
				}
			} else {
				for {
					cur = cur.prev
					ring = append(ring, cur.pt)
					if cur.intersect {
						break
					}
				}
			}
			cur.visited = true
			if cur == start || cur.neighbor == start {
				break
			}
			cur = cur.neighbor
		}
		if len(ring) >= 3 {
			if !samePoint(ring[0], ring[len(ring)-1]) {
				ring = append(ring, ring[0])
			}
			if Area(ring) > 0 {
				rings = append(rings, ring)
			}
		}
	}
	return rings
}

func firstUnvisited(head *ghNode) *ghNode {
	for n := head; ; {
		if n.intersect && !n.visited {
			return n
		}
		n = n.next
		if n == head {
			return nil
		}
	}
}

// UnionAll folds Union over a list of polygons, requiring every step to
// succeed. Used when merging a park component row run by row.
func UnionAll(polys []orb.Polygon) (orb.Polygon, error) {
	if len(polys) == 0 {
		return nil, ErrDegenerate
	}
	acc := polys[0]
	for _, p := range polys[1:] {
		merged, err := Union(acc, p)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

// AreasClose reports whether two areas agree within a relative tolerance.
func AreasClose(a, b, relTol float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	m := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= relTol*m
}
