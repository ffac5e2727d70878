// Package export provides functionality for exporting generated site plans
// to various file formats.
package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/terrafold/siteplan/internal/model"
)

// BuildFeatureCollection converts a plan into a GeoJSON feature collection.
// Every feature carries a "kind" property plus the typed fields of its
// entity. Nil (removed) lots, parks and superblocks are filtered out.
func BuildFeatureCollection(plan *model.Plan, stats model.Statistics) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if plan == nil || !plan.Valid {
		return fc
	}

	site := geojson.NewFeature(orb.Polygon{plan.Boundary})
	site.Properties = geojson.Properties{
		"kind":               "site",
		"plan_id":            plan.ID,
		"site_area":          stats.SiteArea,
		"net_sellable_area":  stats.NetSellableArea,
		"park_area":          stats.ParkArea,
		"road_area":          stats.RoadArea,
		"total_lots":         stats.TotalLots,
		"efficiency":         stats.Efficiency,
		"possible_entrances": stats.PossibleEntrances,
	}
	fc.Append(site)

	for _, block := range plan.Superblocks {
		if block == nil {
			continue
		}
		f := geojson.NewFeature(*block)
		f.Properties = geojson.Properties{"kind": "superblock"}
		fc.Append(f)
	}
	for _, lot := range plan.Lots {
		if lot == nil {
			continue
		}
		f := geojson.NewFeature(lot.Polygon)
		f.Properties = geojson.Properties{
			"kind":     "lot",
			"id":       lot.ID,
			"back_row": lot.BackRow,
			"area":     lot.Area,
		}
		fc.Append(f)
	}
	for _, b := range plan.Buildings {
		f := geojson.NewFeature(b.Polygon)
		f.Properties = geojson.Properties{
			"kind":          "building",
			"lot_id":        b.LotID,
			"stories":       b.Stories,
			"height_factor": b.HeightFactor,
			"variant":       b.Variant,
		}
		fc.Append(f)
	}
	for _, park := range plan.Parks {
		if park == nil {
			continue
		}
		f := geojson.NewFeature(park.Polygon)
		f.Properties = geojson.Properties{
			"kind": "park",
			"id":   park.ID,
			"area": park.Area,
		}
		fc.Append(f)
	}
	for _, t := range plan.Trees {
		f := geojson.NewFeature(t.Point)
		props := geojson.Properties{"kind": "tree"}
		if t.LotID != 0 {
			props["lot_id"] = t.LotID
		}
		if t.ParkID != 0 {
			props["park_id"] = t.ParkID
		}
		f.Properties = props
		fc.Append(f)
	}
	for _, r := range plan.Roads {
		f := geojson.NewFeature(r.Polygon)
		f.Properties = geojson.Properties{"kind": "road", "id": r.ID, "custom": r.Custom}
		fc.Append(f)
	}
	for _, m := range plan.Markings {
		f := geojson.NewFeature(m)
		f.Properties = geojson.Properties{"kind": "marking"}
		fc.Append(f)
	}
	if len(plan.WallLines) > 0 {
		f := geojson.NewFeature(plan.WallLines)
		f.Properties = geojson.Properties{"kind": "wall"}
		fc.Append(f)
	}
	if plan.Access != nil {
		island := geojson.NewFeature(plan.Access.Island)
		island.Properties = geojson.Properties{"kind": "access_island", "bearing": plan.Access.Bearing}
		fc.Append(island)
		if len(plan.Access.GuardHouse) > 0 {
			guard := geojson.NewFeature(plan.Access.GuardHouse)
			guard.Properties = geojson.Properties{"kind": "access_guard_house"}
			fc.Append(guard)
		}
		if len(plan.Access.Barriers) > 0 {
			barriers := geojson.NewFeature(plan.Access.Barriers)
			barriers.Properties = geojson.Properties{"kind": "access_barriers"}
			fc.Append(barriers)
		}
		entry := geojson.NewFeature(plan.Access.Entry)
		entry.Properties = geojson.Properties{"kind": "access_entry"}
		fc.Append(entry)
	}
	for _, e := range plan.Entrances {
		f := geojson.NewFeature(e)
		f.Properties = geojson.Properties{"kind": "entrance_candidate"}
		fc.Append(f)
	}
	return fc
}

// ExportGeoJSON writes the plan as a GeoJSON file.
func ExportGeoJSON(path string, plan *model.Plan, stats model.Statistics) error {
	if plan == nil || !plan.Valid {
		return fmt.Errorf("no valid plan to export")
	}
	data, err := BuildFeatureCollection(plan, stats).MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
