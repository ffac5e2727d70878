// Package geom provides the planar geometry primitives the layout engine is
// built on: a local working frame (equirectangular projection plus rotation),
// ring validation and cleanup, and polygon clipping operations with explicit
// error returns so call sites choose their own fallback behavior.
package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// metersPerDegree is the length of one degree of latitude under the
// equirectangular approximation. Valid for city-block to small-town extents.
const metersPerDegree = 111320.0

// LocalFrame maps geographic lng/lat coordinates into a locally flat,
// meters-scaled working frame centered on Origin and rotated so the site's
// principal axis lies along +X. Every piece of geometry the engine derives in
// the working frame must be mapped back through ToGlobal before publication.
type LocalFrame struct {
	Origin orb.Point `json:"origin"` // lng/lat projection origin (site centroid)
	Angle  float64   `json:"angle"`  // principal-axis rotation in radians, CCW from east
	cosLat float64
}

// NewLocalFrame builds a frame around the given geographic origin. Angle is
// the bearing (radians, CCW from east) that ToLocal rotates onto the +X axis.
func NewLocalFrame(origin orb.Point, angle float64) LocalFrame {
	return LocalFrame{
		Origin: origin,
		Angle:  angle,
		cosLat: math.Cos(origin[1] * math.Pi / 180.0),
	}
}

// scale returns the longitude shrink factor, recomputed when the frame was
// deserialized and the cached cosine is missing.
func (f LocalFrame) scale() float64 {
	if f.cosLat != 0 {
		return f.cosLat
	}
	return math.Cos(f.Origin[1] * math.Pi / 180.0)
}

// ToLocal projects a lng/lat point into frame meters.
func (f LocalFrame) ToLocal(p orb.Point) orb.Point {
	x := (p[0] - f.Origin[0]) * f.scale() * metersPerDegree
	y := (p[1] - f.Origin[1]) * metersPerDegree
	sin, cos := math.Sincos(-f.Angle)
	return orb.Point{x*cos - y*sin, x*sin + y*cos}
}

// ToGlobal maps a frame-meters point back to lng/lat.
func (f LocalFrame) ToGlobal(p orb.Point) orb.Point {
	sin, cos := math.Sincos(f.Angle)
	x := p[0]*cos - p[1]*sin
	y := p[0]*sin + p[1]*cos
	return orb.Point{
		f.Origin[0] + x/(f.scale()*metersPerDegree),
		f.Origin[1] + y/metersPerDegree,
	}
}

// RingToLocal projects every vertex of a ring.
func (f LocalFrame) RingToLocal(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = f.ToLocal(p)
	}
	return out
}

// RingToGlobal maps every vertex of a ring back to lng/lat.
func (f LocalFrame) RingToGlobal(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = f.ToGlobal(p)
	}
	return out
}

// PolygonToLocal projects a whole polygon into frame meters.
func (f LocalFrame) PolygonToLocal(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = f.RingToLocal(r)
	}
	return out
}

// PolygonToGlobal maps a whole polygon back to lng/lat.
func (f LocalFrame) PolygonToGlobal(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = f.RingToGlobal(r)
	}
	return out
}

// LineToGlobal maps a line string back to lng/lat.
func (f LocalFrame) LineToGlobal(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = f.ToGlobal(p)
	}
	return out
}

// MultiLineToGlobal maps every member line back to lng/lat.
func (f LocalFrame) MultiLineToGlobal(mls orb.MultiLineString) orb.MultiLineString {
	out := make(orb.MultiLineString, len(mls))
	for i, ls := range mls {
		out[i] = f.LineToGlobal(ls)
	}
	return out
}

// OffsetMeters returns the flat Cartesian offset in meters of p relative to
// ref under the equirectangular approximation. It is the projection consumers
// use for non-geographic rendering or export of generated geometry; it is not
// a general geodesic projection and degrades beyond small-town extents.
func OffsetMeters(ref, p orb.Point) (dx, dy float64) {
	dx = (p[0] - ref[0]) * math.Cos(ref[1]*math.Pi/180.0) * metersPerDegree
	dy = (p[1] - ref[1]) * metersPerDegree
	return dx, dy
}
