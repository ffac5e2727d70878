// Package model defines the typed entities exchanged between the layout
// engine and its consumers: the input configuration and constraints, the
// generated plan geometry, and the derived statistics.
package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/geom"
)

// Config holds the six numeric parameters a generation run is driven by.
// All distances are meters. No defaulting happens inside the engine; callers
// that want defaults start from DefaultConfig.
type Config struct {
	RoadWidth      float64 `json:"road_width"`      // right-of-way width between blocks
	LotWidth       float64 `json:"lot_width"`       // target lot frontage
	LotDepth       float64 `json:"lot_depth"`       // target lot depth (one band)
	ParkPercentage float64 `json:"park_percentage"` // 0-100 target share of block area
	Stories        int     `json:"stories"`         // building stories
	EntryIndex     int     `json:"entry_index"`     // entrance pick, modulo candidate count
}

// DefaultConfig returns the parameters new projects start from.
func DefaultConfig() Config {
	return Config{
		RoadWidth:      12,
		LotWidth:       8,
		LotDepth:       18,
		ParkPercentage: 15,
		Stories:        2,
		EntryIndex:     0,
	}
}

// Validate checks that every numeric field is usable by the engine.
func (c Config) Validate() error {
	switch {
	case c.RoadWidth <= 0:
		return fmt.Errorf("road width must be positive, got %v", c.RoadWidth)
	case c.LotWidth <= 0:
		return fmt.Errorf("lot width must be positive, got %v", c.LotWidth)
	case c.LotDepth <= 0:
		return fmt.Errorf("lot depth must be positive, got %v", c.LotDepth)
	case c.ParkPercentage < 0 || c.ParkPercentage > 100:
		return fmt.Errorf("park percentage must be within 0-100, got %v", c.ParkPercentage)
	case c.Stories <= 0:
		return fmt.Errorf("stories must be positive, got %d", c.Stories)
	case c.EntryIndex < 0:
		return fmt.Errorf("entry index must not be negative, got %d", c.EntryIndex)
	}
	return nil
}

// ConstraintKind enumerates the point annotation types a caller can attach
// to a generation run.
type ConstraintKind int

const (
	// ConstraintParkAnchor forces the grid cell containing the point to be
	// classified as park.
	ConstraintParkAnchor ConstraintKind = iota
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintParkAnchor:
		return "ParkAnchor"
	default:
		return "Unknown"
	}
}

// Constraint is a typed point annotation. The engine reads constraints but
// never mutates them.
type Constraint struct {
	Kind  ConstraintKind `json:"kind"`
	Point orb.Point      `json:"point"` // lng/lat
}

// Lot is one sellable parcel. IDs are assigned sequentially across the whole
// run and never reused; a lot is immutable once created.
type Lot struct {
	ID      int         `json:"id"`
	Polygon orb.Polygon `json:"polygon"`
	BackRow bool        `json:"back_row"` // true when the lot faces the rear road edge
	Angle   float64     `json:"angle"`    // alignment angle in radians, used for placement
	Area    float64     `json:"area"`     // square meters
}

// Building is the optional footprint derived from a lot via setbacks.
type Building struct {
	LotID        int         `json:"lot_id"`
	Polygon      orb.Polygon `json:"polygon"`
	Stories      int         `json:"stories"`
	HeightFactor float64     `json:"height_factor"` // 0.9-1.1 around nominal
	Variant      int         `json:"variant"`       // color variant index
}

// Park is a green polygon, possibly assembled from several merged grid
// cells plus the closed inter-cell gaps.
type Park struct {
	ID      int         `json:"id"`
	Polygon orb.Polygon `json:"polygon"`
	Area    float64     `json:"area"` // square meters
}

// Tree is a visualization point owned by exactly one lot or one park.
// The unused owner id is zero.
type Tree struct {
	Point  orb.Point `json:"point"`
	LotID  int       `json:"lot_id,omitempty"`
	ParkID int       `json:"park_id,omitempty"`
}

// Road is one vehicular right-of-way polygon. Implicit grid roads are not
// materialized by the base pipeline; entries here come from user-drawn
// segments buffered to road width.
type Road struct {
	ID      string      `json:"id"`
	Polygon orb.Polygon `json:"polygon"`
	Custom  bool        `json:"custom"`
}

// AccessControl describes the single gated entrance built at the selected
// entry candidate.
type AccessControl struct {
	Entry      orb.Point           `json:"entry"`       // lng/lat of the opening
	Bearing    float64             `json:"bearing"`     // inward road bearing, radians CCW from east
	Island     orb.Polygon         `json:"island"`      // traffic island
	GuardHouse orb.Polygon         `json:"guard_house"` // optional, nil when placement failed
	Barriers   orb.MultiLineString `json:"barriers"`    // inward barrier arms
}

// Plan is the full result of one generation run. All coordinates are
// lng/lat. Nil entries inside Superblocks, Lots and Parks mean "feature
// intentionally removed" and must be filtered, not treated as an error.
type Plan struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
	Err   string `json:"error,omitempty"`

	Boundary    orb.Ring            `json:"boundary"`
	Frame       geom.LocalFrame     `json:"frame"` // working-frame pivot and angle for consumers
	SiteArea    float64             `json:"site_area"`
	Superblocks []*orb.Polygon      `json:"superblocks"`
	Lots        []*Lot              `json:"lots"`
	Buildings   []Building          `json:"buildings"`
	Parks       []*Park             `json:"parks"`
	Trees       []Tree              `json:"trees"`
	Roads       []Road              `json:"roads"`
	Markings    []orb.Polygon       `json:"markings"`
	WallLines   orb.MultiLineString `json:"wall_lines"`
	Access      *AccessControl      `json:"access,omitempty"`
	StopSigns   []orb.Point         `json:"stop_signs"` // reserved, unpopulated by the engine
	Entrances   []orb.Point         `json:"entrances"`  // deduplicated entry candidates
}

// NewPlan allocates an empty valid plan with a fresh short id.
func NewPlan() *Plan {
	return &Plan{
		ID:    uuid.New().String()[:8],
		Valid: true,
	}
}

// InvalidPlan builds the short-circuit result for fatal input errors.
func InvalidPlan(reason string) *Plan {
	return &Plan{
		ID:    uuid.New().String()[:8],
		Valid: false,
		Err:   reason,
	}
}
