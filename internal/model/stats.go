package model

// Statistics holds the derived area and efficiency figures for a plan.
// Everything is recomputed from the final geometry on every run.
type Statistics struct {
	SiteArea          float64 `json:"site_area"`          // square meters
	NetSellableArea   float64 `json:"net_sellable_area"`  // sum of lot areas
	ParkArea          float64 `json:"park_area"`          // sum of park areas
	RoadArea          float64 `json:"road_area"`          // site minus sellable minus park
	TotalLots         int     `json:"total_lots"`
	Efficiency        float64 `json:"efficiency"` // sellable / site
	PossibleEntrances int     `json:"possible_entrances"`
}

// ComputeStatistics aggregates the plan's areas. Road area is inferred by
// subtraction, not measured, so it can go negative when upstream geometry
// overlaps; that is a data-quality signal and is deliberately not clamped.
func ComputeStatistics(p *Plan) Statistics {
	if p == nil || !p.Valid {
		return Statistics{}
	}
	s := Statistics{SiteArea: p.SiteArea}
	for _, lot := range p.Lots {
		if lot == nil {
			continue
		}
		s.NetSellableArea += lot.Area
		s.TotalLots++
	}
	for _, park := range p.Parks {
		if park == nil {
			continue
		}
		s.ParkArea += park.Area
	}
	s.RoadArea = s.SiteArea - s.NetSellableArea - s.ParkArea
	if s.SiteArea > 0 {
		s.Efficiency = s.NetSellableArea / s.SiteArea
	}
	s.PossibleEntrances = len(p.Entrances)
	return s
}
