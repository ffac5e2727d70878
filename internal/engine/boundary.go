// Package engine implements the site-layout generation pipeline: boundary
// normalization and alignment, block grid fitting, park classification and
// consolidation, lot subdivision with sliver repair, road markings and the
// gated access structure. A run is a pure function of (boundary, config,
// constraints); no state is shared between invocations.
package engine

import (
	"errors"

	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/geom"
)

// Fatal boundary rejections. Any of these short-circuits the whole run into
// an invalid plan; everything else in the pipeline degrades per feature.
var (
	ErrTooFewPoints     = errors.New("boundary needs at least 3 distinct points")
	ErrSelfIntersecting = errors.New("boundary self-intersects")
	ErrTooSmall         = errors.New("boundary area below minimum")
)

// minSiteArea is the smallest parcel (square meters) worth generating for.
const minSiteArea = 100.0

// site carries the validated parcel in the aligned working frame. All
// pipeline math happens in frame meters; results are mapped back through
// frame at the end of the run.
type site struct {
	frame    geom.LocalFrame
	ring     orb.Ring // closed, CCW, frame meters
	poly     orb.Polygon
	bound    orb.Bound
	area     float64
	centroid orb.Point // frame meters
}

// prepareSite closes and cleans the input ring, rejects degenerate input,
// and rotates the parcel into a frame where the principal axis (bearing of
// the longest boundary edge) lies along +X so grid math can use
// axis-aligned boxes. The caller's point slice is never mutated.
func prepareSite(points []orb.Point) (*site, error) {
	ring := geom.CleanRing(geom.CloseRing(points))
	if len(ring)-1 < 3 {
		return nil, ErrTooFewPoints
	}
	if geom.SelfIntersects(ring) {
		return nil, ErrSelfIntersecting
	}

	origin := geom.Centroid(ring)

	// Project once without rotation to measure area and find the axis.
	flat := geom.NewLocalFrame(origin, 0)
	unaligned := flat.RingToLocal(ring)
	if geom.Area(unaligned) < minSiteArea {
		return nil, ErrTooSmall
	}
	angle := geom.PrincipalAxis(unaligned)

	frame := geom.NewLocalFrame(origin, angle)
	local := geom.EnsureOrientation(frame.RingToLocal(ring), orb.CCW)

	return &site{
		frame:    frame,
		ring:     local,
		poly:     orb.Polygon{local},
		bound:    local.Bound(),
		area:     geom.Area(local),
		centroid: geom.Centroid(local),
	}, nil
}
