package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// SiteTemplate represents a reusable site configuration that captures the
// boundary, constraints and generation parameters but not generated results.
type SiteTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Boundary    []orb.Point  `json:"boundary"`
	Constraints []Constraint `json:"constraints"`
	Config      Config       `json:"config"`
}

// NewSiteTemplate creates a template from the given site data. The boundary
// and constraints are copied so later edits do not leak into the template.
func NewSiteTemplate(name, description string, boundary []orb.Point, constraints []Constraint, cfg Config) SiteTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return SiteTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Boundary:    append([]orb.Point(nil), boundary...),
		Constraints: append([]Constraint(nil), constraints...),
		Config:      cfg,
	}
}

// BuiltinPresets returns the named parameter sets offered for new sites.
func BuiltinPresets() []SiteTemplate {
	return []SiteTemplate{
		NewSiteTemplate("Suburban", "Detached housing, generous green share", nil, nil, Config{
			RoadWidth: 12, LotWidth: 8, LotDepth: 18, ParkPercentage: 15, Stories: 2, EntryIndex: 0,
		}),
		NewSiteTemplate("Compact", "Narrow frontage row housing", nil, nil, Config{
			RoadWidth: 10, LotWidth: 6, LotDepth: 15, ParkPercentage: 10, Stories: 3, EntryIndex: 0,
		}),
		NewSiteTemplate("Estate", "Wide lots, single-story homes", nil, nil, Config{
			RoadWidth: 14, LotWidth: 12, LotDepth: 24, ParkPercentage: 20, Stories: 1, EntryIndex: 0,
		}),
	}
}
