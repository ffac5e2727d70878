package engine

import (
	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

// Generator runs the layout pipeline for one parameter set.
type Generator struct {
	cfg model.Config
}

// New creates a generator for the given configuration.
func New(cfg model.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate derives a full subdivision plan from the boundary ring and the
// caller's constraints. It never panics and never returns an error: fatal
// input problems (too few points, self-intersection, undersized area, bad
// config) produce an invalid plan carrying the reason, while any single
// geometric failure downstream only degrades the feature it was computing.
func (g *Generator) Generate(boundary []orb.Point, constraints []model.Constraint) (plan *model.Plan, stats model.Statistics) {
	defer func() {
		if r := recover(); r != nil {
			plan = model.InvalidPlan("layout calculation failed")
			stats = model.Statistics{}
		}
	}()

	if err := g.cfg.Validate(); err != nil {
		return model.InvalidPlan(err.Error()), model.Statistics{}
	}
	s, err := prepareSite(boundary)
	if err != nil {
		return model.InvalidPlan(err.Error()), model.Statistics{}
	}

	// Constraints ride along into the working frame.
	var anchors []orb.Point
	for _, c := range constraints {
		if c.Kind == model.ConstraintParkAnchor {
			anchors = append(anchors, s.frame.ToLocal(c.Point))
		}
	}

	cells, spec := buildGrid(s, g.cfg)
	classifyCells(cells, anchors, g.cfg)

	// Subdivide residential cells; cells yielding no lots at all become
	// parks post hoc instead of staying empty.
	seq := &idSequence{}
	var localLots []*model.Lot
	var localBuildings []model.Building
	var localTrees []model.Tree
	var blockPolys []orb.Polygon

	for i := range cells {
		if cells[i].class != classResidential {
			continue
		}
		result, ok := subdivideCell(cells[i], g.cfg, seq, s.frame.Angle)
		if !ok {
			if cells[i].area > minCellArea {
				cells[i].class = classPark
			}
			continue
		}
		blockPolys = append(blockPolys, cells[i].poly)
		localLots = append(localLots, result.lots...)
		localBuildings = append(localBuildings, result.buildings...)
		localTrees = append(localTrees, result.trees...)
	}

	parkPolys := mergeParks(s, cells)
	parks := make([]*model.Park, 0, len(parkPolys))
	for i, poly := range parkPolys {
		park := &model.Park{ID: i + 1, Polygon: poly, Area: geom.Area(poly)}
		parks = append(parks, park)
		localTrees = append(localTrees, seedParkTrees(poly, park.ID)...)
	}

	// Entrances: interior grid roads projected to the boundary, with the
	// blocked-space test running against blocks and parks together.
	blocked := append(append([]orb.Polygon(nil), blockPolys...), parkPolys...)
	blockedIndex := newBlockIndex(blocked)
	candidates := findEntryCandidates(s, spec, blockedIndex)

	var access *model.AccessControl
	var entryPt *orb.Point
	if len(candidates) > 0 {
		chosen := candidates[g.cfg.EntryIndex%len(candidates)]
		access = buildAccess(chosen, g.cfg)
		entryPt = &chosen.pt
	}
	wall := buildWall(s, g.cfg, entryPt)
	markings := buildMarkings(s, spec, parkPolys, newBlockIndex(parkPolys))

	// Everything derived in the working frame rotates back through the
	// same pivot and angle before publication.
	plan = model.NewPlan()
	plan.Boundary = s.frame.RingToGlobal(s.ring)
	plan.Frame = s.frame
	plan.SiteArea = s.area

	plan.Superblocks = make([]*orb.Polygon, 0, len(blockPolys))
	for _, b := range blockPolys {
		global := s.frame.PolygonToGlobal(b)
		plan.Superblocks = append(plan.Superblocks, &global)
	}
	plan.Lots = make([]*model.Lot, 0, len(localLots))
	for _, lot := range localLots {
		published := *lot
		published.Polygon = s.frame.PolygonToGlobal(lot.Polygon)
		plan.Lots = append(plan.Lots, &published)
	}
	plan.Buildings = make([]model.Building, 0, len(localBuildings))
	for _, b := range localBuildings {
		b.Polygon = s.frame.PolygonToGlobal(b.Polygon)
		plan.Buildings = append(plan.Buildings, b)
	}
	plan.Parks = make([]*model.Park, 0, len(parks))
	for _, p := range parks {
		published := *p
		published.Polygon = s.frame.PolygonToGlobal(p.Polygon)
		plan.Parks = append(plan.Parks, &published)
	}
	plan.Trees = make([]model.Tree, 0, len(localTrees))
	for _, t := range localTrees {
		t.Point = s.frame.ToGlobal(t.Point)
		plan.Trees = append(plan.Trees, t)
	}
	plan.Markings = make([]orb.Polygon, 0, len(markings))
	for _, m := range markings {
		plan.Markings = append(plan.Markings, s.frame.PolygonToGlobal(m))
	}
	plan.WallLines = s.frame.MultiLineToGlobal(wall)
	if access != nil {
		access.Entry = s.frame.ToGlobal(access.Entry)
		access.Bearing += s.frame.Angle
		access.Island = s.frame.PolygonToGlobal(access.Island)
		access.GuardHouse = s.frame.PolygonToGlobal(access.GuardHouse)
		access.Barriers = s.frame.MultiLineToGlobal(access.Barriers)
		plan.Access = access
	}
	plan.Entrances = make([]orb.Point, 0, len(candidates))
	for _, c := range candidates {
		plan.Entrances = append(plan.Entrances, s.frame.ToGlobal(c.pt))
	}

	return plan, model.ComputeStatistics(plan)
}
