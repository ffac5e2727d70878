package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// Sentinel errors for clipping operations. Callers are expected to degrade
// the single feature they were computing rather than abort the run.
var (
	ErrEmptyResult = errors.New("geom: operation produced empty geometry")
	ErrDegenerate  = errors.New("geom: degenerate input geometry")
)

// minRingVertices is the smallest vertex count (including the closing
// vertex) for a ring to enclose area.
const minRingVertices = 4

// sideOf returns the signed area of the triangle (a, b, p): positive when p
// lies left of the directed line a->b.
func sideOf(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// RectRing builds the counterclockwise rectangle ring for a bound.
func RectRing(b orb.Bound) orb.Ring {
	return orb.Ring{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}
}

// ClipBound intersects a polygon with an axis-aligned bound. This is the hot
// path of the engine: grid cells, lot strips, band splits and building
// footprint rectangles are all axis-aligned in the working frame.
func ClipBound(p orb.Polygon, b orb.Bound) (out orb.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geom: bound clip panicked: %v", r)
		}
	}()
	if len(p) == 0 || len(p[0]) < minRingVertices {
		return nil, ErrDegenerate
	}
	clipped := clip.Polygon(b, p.Clone())
	if len(clipped) == 0 || len(clipped[0]) < minRingVertices {
		return nil, ErrEmptyResult
	}
	return clipped, nil
}

// clipRingHalfPlane clips a closed ring against the half-plane on one side of
// the infinite line through a->b (Sutherland-Hodgman step). keepLeft selects
// the left side of the directed line, which is the interior side for a
// counterclockwise convex clip ring.
func clipRingHalfPlane(r orb.Ring, a, b orb.Point, keepLeft bool) orb.Ring {
	if len(r) < minRingVertices {
		return nil
	}
	inside := func(p orb.Point) bool {
		c := sideOf(a, b, p)
		if keepLeft {
			return c >= 0
		}
		return c <= 0
	}
	intersect := func(p, q orb.Point) orb.Point {
		// Line through a->b intersected with segment p->q.
		dx, dy := b[0]-a[0], b[1]-a[1]
		ex, ey := q[0]-p[0], q[1]-p[1]
		den := dx*ey - dy*ex
		if den == 0 {
			return p
		}
		u := (dy*(p[0]-a[0]) - dx*(p[1]-a[1])) / den
		return orb.Point{p[0] + ex*u, p[1] + ey*u}
	}

	open := r[:len(r)-1]
	var out orb.Ring
	for i := 0; i < len(open); i++ {
		cur := open[i]
		next := open[(i+1)%len(open)]
		curIn, nextIn := inside(cur), inside(next)
		if curIn {
			out = append(out, cur)
			if !nextIn {
				out = append(out, intersect(cur, next))
			}
		} else if nextIn {
			out = append(out, intersect(cur, next))
		}
	}
	if len(out) < 3 {
		return nil
	}
	out = append(out, out[0])
	return CleanRing(out)
}

// ClipConvex intersects a polygon's exterior ring with a convex
// counterclockwise ring. Used for non-axis-aligned clippers such as buffered
// custom road rectangles.
func ClipConvex(p orb.Polygon, convex orb.Ring) (out orb.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geom: convex clip panicked: %v", r)
		}
	}()
	if len(p) == 0 || len(p[0]) < minRingVertices || len(convex) < minRingVertices {
		return nil, ErrDegenerate
	}
	ring := p[0]
	for i := 0; i+1 < len(convex); i++ {
		ring = clipRingHalfPlane(ring, convex[i], convex[i+1], true)
		if ring == nil {
			return nil, ErrEmptyResult
		}
	}
	if len(ring) < minRingVertices || Area(ring) == 0 {
		return nil, ErrEmptyResult
	}
	return orb.Polygon{ring}, nil
}

// DifferenceConvex subtracts a convex counterclockwise ring from a polygon's
// exterior ring. The result is decomposed per clip edge: piece i is the part
// of the subject outside edge i but inside edges 0..i-1, so the pieces are
// disjoint and their union is exactly subject minus clip.
func DifferenceConvex(p orb.Polygon, convex orb.Ring) (out orb.MultiPolygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("geom: convex difference panicked: %v", r)
		}
	}()
	if len(p) == 0 || len(p[0]) < minRingVertices || len(convex) < minRingVertices {
		return nil, ErrDegenerate
	}
	var pieces orb.MultiPolygon
	for i := 0; i+1 < len(convex); i++ {
		ring := p[0]
		for j := 0; j < i && ring != nil; j++ {
			ring = clipRingHalfPlane(ring, convex[j], convex[j+1], true)
		}
		if ring == nil {
			continue
		}
		ring = clipRingHalfPlane(ring, convex[i], convex[i+1], false)
		if ring == nil || len(ring) < minRingVertices {
			continue
		}
		if Area(ring) < 1e-9 {
			continue
		}
		pieces = append(pieces, orb.Polygon{ring})
	}
	if len(pieces) == 0 {
		return nil, ErrEmptyResult
	}
	return pieces, nil
}

// BufferSegment expands the segment p1->p2 into a flat-capped rectangle of
// the given half width, extended by the half width past both endpoints.
func BufferSegment(p1, p2 orb.Point, halfWidth float64) (orb.Polygon, error) {
	dx, dy := p2[0]-p1[0], p2[1]-p1[1]
	l := math.Hypot(dx, dy)
	if l == 0 || halfWidth <= 0 {
		return nil, ErrDegenerate
	}
	ux, uy := dx/l, dy/l
	nx, ny := -uy, ux
	a := orb.Point{p1[0] - ux*halfWidth, p1[1] - uy*halfWidth}
	b := orb.Point{p2[0] + ux*halfWidth, p2[1] + uy*halfWidth}
	ring := orb.Ring{
		{a[0] + nx*halfWidth, a[1] + ny*halfWidth},
		{a[0] - nx*halfWidth, a[1] - ny*halfWidth},
		{b[0] - nx*halfWidth, b[1] - ny*halfWidth},
		{b[0] + nx*halfWidth, b[1] + ny*halfWidth},
	}
	ring = append(ring, ring[0])
	return orb.Polygon{EnsureOrientation(ring, orb.CCW)}, nil
}

// CutLineAroundPoint removes the portions of a line string that fall within
// radius of center, splitting it into the surviving runs. Used to carve the
// physical gate opening out of the perimeter wall.
func CutLineAroundPoint(ls orb.LineString, center orb.Point, radius float64) orb.MultiLineString {
	if radius <= 0 || len(ls) < 2 {
		return orb.MultiLineString{ls}
	}
	var out orb.MultiLineString
	var run orb.LineString

	flush := func() {
		if len(run) >= 2 {
			out = append(out, run)
		}
		run = nil
	}
	appendPt := func(p orb.Point) {
		if len(run) == 0 || !samePoint(run[len(run)-1], p) {
			run = append(run, p)
		}
	}

	for i := 0; i+1 < len(ls); i++ {
		segs := segmentOutsideCircle(ls[i], ls[i+1], center, radius)
		for _, s := range segs {
			if len(run) > 0 && !samePoint(run[len(run)-1], s[0]) {
				flush()
			}
			appendPt(s[0])
			appendPt(s[1])
		}
		if len(segs) == 0 {
			flush()
		}
	}
	flush()
	if len(out) == 0 {
		return nil
	}
	return out
}

// segmentOutsideCircle returns the sub-segments of ab lying outside the
// circle (center, r), in order along ab.
func segmentOutsideCircle(a, b, center orb.Point, r float64) [][2]orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	fx, fy := a[0]-center[0], a[1]-center[1]

	A := dx*dx + dy*dy
	B := 2 * (fx*dx + fy*dy)
	C := fx*fx + fy*fy - r*r
	if A == 0 {
		if C > 0 {
			return [][2]orb.Point{{a, b}}
		}
		return nil
	}
	disc := B*B - 4*A*C
	if disc <= 0 {
		// No crossing: segment is entirely inside or outside.
		if C > 0 {
			return [][2]orb.Point{{a, b}}
		}
		return nil
	}
	sq := math.Sqrt(disc)
	t1 := (-B - sq) / (2 * A) // segment is inside the circle for t in (t1, t2)
	t2 := (-B + sq) / (2 * A)

	at := func(t float64) orb.Point { return orb.Point{a[0] + dx*t, a[1] + dy*t} }
	var segs [][2]orb.Point
	if t1 > 0 {
		segs = append(segs, [2]orb.Point{at(0), at(math.Min(t1, 1))})
	}
	if t2 < 1 {
		segs = append(segs, [2]orb.Point{at(math.Max(t2, 0)), at(1)})
	}
	return segs
}
