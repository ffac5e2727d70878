package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// epsilon below which two coordinates are considered the same vertex.
const vertexEpsilon = 1e-9

// CloseRing returns a ring whose last vertex equals its first.
func CloseRing(points []orb.Point) orb.Ring {
	r := make(orb.Ring, len(points))
	copy(r, points)
	if len(r) > 0 && !samePoint(r[0], r[len(r)-1]) {
		r = append(r, r[0])
	}
	return r
}

// CleanRing removes consecutive duplicate vertices. The closing vertex is
// preserved.
func CleanRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return r
	}
	out := orb.Ring{r[0]}
	for _, p := range r[1:] {
		if !samePoint(p, out[len(out)-1]) {
			out = append(out, p)
		}
	}
	if len(out) > 1 && !samePoint(out[0], out[len(out)-1]) {
		out = append(out, out[0])
	}
	return out
}

// EnsureOrientation reverses the ring in place if it does not wind in the
// requested direction.
func EnsureOrientation(r orb.Ring, o orb.Orientation) orb.Ring {
	if len(r) >= 4 && r.Orientation() != o {
		r.Reverse()
	}
	return r
}

func samePoint(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < vertexEpsilon && math.Abs(a[1]-b[1]) < vertexEpsilon
}

// SelfIntersects reports whether any two non-adjacent edges of the closed
// ring cross. Shared endpoints between neighboring edges do not count.
func SelfIntersects(r orb.Ring) bool {
	n := len(r) - 1 // closed ring: last vertex repeats the first
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (including the wrap-around pair).
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsCross(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper or collinear-overlapping intersection
// between segments ab and cd.
func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(c, d, a) {
		return true
	}
	if d2 == 0 && onSegment(c, d, b) {
		return true
	}
	if d3 == 0 && onSegment(a, b, c) {
		return true
	}
	if d4 == 0 && onSegment(a, b, d) {
		return true
	}
	return false
}

func cross(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// PrincipalAxis returns the bearing (radians, CCW from +X, normalized to
// [0, pi)) of the longest edge of the ring. The generation grid is oriented
// along this axis so blocks line up with the site's dominant edge rather
// than true north.
func PrincipalAxis(r orb.Ring) float64 {
	var best float64
	var bestLen float64
	for i := 0; i+1 < len(r); i++ {
		dx := r[i+1][0] - r[i][0]
		dy := r[i+1][1] - r[i][1]
		l := math.Hypot(dx, dy)
		if l > bestLen {
			bestLen = l
			best = math.Atan2(dy, dx)
		}
	}
	if best < 0 {
		best += math.Pi
	}
	if best >= math.Pi {
		best -= math.Pi
	}
	return best
}

// Area returns the unsigned planar area of the geometry.
func Area(g orb.Geometry) float64 {
	return math.Abs(planar.Area(g))
}

// Centroid returns the area-weighted centroid of a ring.
func Centroid(r orb.Ring) orb.Point {
	c, _ := planar.CentroidArea(r)
	return c
}
