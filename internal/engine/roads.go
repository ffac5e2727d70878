package engine

import (
	"errors"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

const (
	stripeThickness = 0.4 // m
	stripeGap       = 0.4 // m
	stripesPerSide  = 4
	stripeEdgeInset = 0.3 // m, keeps stripes off the road edge
)

// RoadSegment is one user-drawn road: a straight two-point segment in
// lng/lat, buffered to half the configured road width when carved.
type RoadSegment struct {
	A orb.Point `json:"a"`
	B orb.Point `json:"b"`
}

// buildMarkings generates zebra crossings at grid road intersections that
// sit within two road widths of a park, as alternating stripe polygons on
// up to four sides of the intersection. Each stripe is independently
// suppressed when it would overlap a park polygon.
func buildMarkings(s *site, spec gridSpec, parks []orb.Polygon, parkIndex *rtreego.Rtree) []orb.Polygon {
	var out []orb.Polygon
	halfRoad := spec.roadW / 2
	reach := 2 * spec.roadW

	for col := 1; col < spec.cols; col++ {
		for row := 1; row < spec.rows; row++ {
			center := orb.Point{spec.columnRoadX(col), spec.rowRoadY(row)}
			if !planar.PolygonContains(s.poly, center) {
				continue
			}
			if !nearAnyPark(parks, center, reach) {
				continue
			}
			out = append(out, intersectionStripes(s, parkIndex, center, halfRoad)...)
		}
	}
	return out
}

// nearAnyPark reports whether the point lies within reach of a park.
func nearAnyPark(parks []orb.Polygon, p orb.Point, reach float64) bool {
	for _, park := range parks {
		if planar.DistanceFrom(park, p) <= reach {
			return true
		}
	}
	return false
}

// intersectionStripes builds the four-sided zebra pattern around one grid
// intersection, skipping stripes that fail to clip or overlap a park.
func intersectionStripes(s *site, parkIndex *rtreego.Rtree, center orb.Point, halfRoad float64) []orb.Polygon {
	span := halfRoad - stripeEdgeInset
	var out []orb.Polygon

	addStripe := func(b orb.Bound) {
		poly, err := geom.ClipBound(s.poly, b)
		if err != nil {
			return
		}
		if stripeOverlapsPark(parkIndex, b) {
			return
		}
		out = append(out, poly)
	}

	for i := 0; i < stripesPerSide; i++ {
		off := halfRoad + stripeGap + float64(i)*(stripeThickness+stripeGap)
		// East and west approaches: stripes run north-south.
		addStripe(orb.Bound{
			Min: orb.Point{center[0] + off, center[1] - span},
			Max: orb.Point{center[0] + off + stripeThickness, center[1] + span},
		})
		addStripe(orb.Bound{
			Min: orb.Point{center[0] - off - stripeThickness, center[1] - span},
			Max: orb.Point{center[0] - off, center[1] + span},
		})
		// North and south approaches: stripes run east-west.
		addStripe(orb.Bound{
			Min: orb.Point{center[0] - span, center[1] + off},
			Max: orb.Point{center[0] + span, center[1] + off + stripeThickness},
		})
		addStripe(orb.Bound{
			Min: orb.Point{center[0] - span, center[1] - off - stripeThickness},
			Max: orb.Point{center[0] + span, center[1] - off},
		})
	}
	return out
}

// stripeOverlapsPark tests one stripe bound against the park index.
func stripeOverlapsPark(parkIndex *rtreego.Rtree, b orb.Bound) bool {
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]},
	)
	if err != nil {
		return false
	}
	for _, hit := range parkIndex.SearchIntersect(rect) {
		if _, err := geom.ClipBound(hit.(*polyEntry).poly, b); err == nil {
			return true
		}
	}
	return false
}

// CarveCustomRoads buffers user-drawn road segments to half the configured
// road width, clips them to the parcel, and cuts overlapping lots, parks and
// superblocks. This is a consumer-layer override on an already generated
// plan: a failed difference leaves the obstructed feature unchanged, and a
// feature fully consumed by a road becomes a nil entry.
func CarveCustomRoads(plan *model.Plan, cfg model.Config, segments []RoadSegment) {
	if plan == nil || !plan.Valid || len(segments) == 0 {
		return
	}
	frame := plan.Frame
	boundary := frame.RingToLocal(plan.Boundary)
	sitePoly := orb.Polygon{geom.EnsureOrientation(boundary, orb.CCW)}

	for _, seg := range segments {
		buf, err := geom.BufferSegment(frame.ToLocal(seg.A), frame.ToLocal(seg.B), cfg.RoadWidth/2)
		if err != nil {
			continue
		}
		roadPoly, err := geom.ClipConvex(sitePoly, buf[0])
		if err != nil {
			continue
		}
		plan.Roads = append(plan.Roads, model.Road{
			ID:      uuid.New().String()[:8],
			Polygon: frame.PolygonToGlobal(roadPoly),
			Custom:  true,
		})

		cutter := buf[0]
		for i, lot := range plan.Lots {
			if lot == nil {
				continue
			}
			if poly, area, removed, changed := cutFeature(frame, lot.Polygon, cutter); removed {
				plan.Lots[i] = nil
			} else if changed {
				if area < minLotArea {
					plan.Lots[i] = nil
					continue
				}
				updated := *lot
				updated.Polygon = poly
				updated.Area = area
				plan.Lots[i] = &updated
			}
		}
		for i, park := range plan.Parks {
			if park == nil {
				continue
			}
			if poly, area, removed, changed := cutFeature(frame, park.Polygon, cutter); removed {
				plan.Parks[i] = nil
			} else if changed {
				updated := *park
				updated.Polygon = poly
				updated.Area = area
				plan.Parks[i] = &updated
			}
		}
		for i, block := range plan.Superblocks {
			if block == nil {
				continue
			}
			if poly, _, removed, changed := cutFeature(frame, *block, cutter); removed {
				plan.Superblocks[i] = nil
			} else if changed {
				plan.Superblocks[i] = &poly
			}
		}
	}
}

// cutFeature subtracts the convex cutter from a global-frame feature
// polygon. When the difference splits the feature, the largest piece
// survives. Errors other than full consumption leave the feature unchanged.
func cutFeature(frame geom.LocalFrame, global orb.Polygon, cutter orb.Ring) (orb.Polygon, float64, bool, bool) {
	local := frame.PolygonToLocal(global)
	if len(local) == 0 || !local[0].Bound().Intersects(cutter.Bound()) {
		return global, 0, false, false
	}
	pieces, err := geom.DifferenceConvex(local, cutter)
	if errors.Is(err, geom.ErrEmptyResult) {
		return nil, 0, true, false
	}
	if err != nil {
		return global, 0, false, false
	}
	best := pieces[0]
	bestArea := geom.Area(best)
	for _, p := range pieces[1:] {
		if a := geom.Area(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	if geom.AreasClose(bestArea, geom.Area(local), 1e-9) {
		return global, bestArea, false, false
	}
	return frame.PolygonToGlobal(best), bestArea, false, true
}
