// siteplan — parametric residential site layout generator
//
// Reads a site boundary (GeoJSON, CSV, XLSX or DXF), runs the subdivision
// pipeline and writes the resulting plan to one or more output formats.
//
// Build:
//   go build -o siteplan ./cmd/siteplan
//
// Examples:
//   siteplan -in site.geojson -out plan.geojson
//   siteplan -in boundary.csv -road-width 10 -park-pct 20 -pdf plan.pdf -xlsx lots.xlsx
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/engine"
	"github.com/terrafold/siteplan/internal/export"
	"github.com/terrafold/siteplan/internal/importer"
	"github.com/terrafold/siteplan/internal/model"
	"github.com/terrafold/siteplan/internal/project"
)

func main() {
	var (
		inPath     = flag.String("in", "", "boundary input file (.geojson, .json, .csv, .xlsx, .dxf)")
		outPath    = flag.String("out", "", "GeoJSON plan output path")
		pdfPath    = flag.String("pdf", "", "PDF report output path")
		xlsxPath   = flag.String("xlsx", "", "XLSX lot schedule output path")
		labelsPath = flag.String("labels", "", "QR lot label sheet output path")

		template = flag.String("template", "", "start from a named template instead of the saved defaults")
		anchors  = flag.String("park-anchors", "", "comma-separated lng:lat pairs forced to park")
	)

	defaults := loadDefaults()
	roadWidth := flag.Float64("road-width", defaults.RoadWidth, "road right-of-way width in meters")
	lotWidth := flag.Float64("lot-width", defaults.LotWidth, "target lot frontage in meters")
	lotDepth := flag.Float64("lot-depth", defaults.LotDepth, "target lot depth in meters")
	parkPct := flag.Float64("park-pct", defaults.ParkPercentage, "target park share of block area, 0-100")
	stories := flag.Int("stories", defaults.Stories, "building stories")
	entryIdx := flag.Int("entry", defaults.EntryIndex, "entrance candidate index, wraps modulo candidate count")
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *outPath == "" && *pdfPath == "" && *xlsxPath == "" && *labelsPath == "" {
		log.Fatal("no output requested: pass at least one of -out, -pdf, -xlsx, -labels")
	}

	cfg := model.Config{
		RoadWidth:      *roadWidth,
		LotWidth:       *lotWidth,
		LotDepth:       *lotDepth,
		ParkPercentage: *parkPct,
		Stories:        *stories,
		EntryIndex:     *entryIdx,
	}
	if *template != "" {
		tpl, err := findTemplate(*template)
		if err != nil {
			log.Fatalf("template: %v", err)
		}
		cfg = tpl.Config
	}

	result := importer.Import(*inPath)
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Printf("error: %s", e)
		}
		os.Exit(1)
	}

	constraints, err := parseAnchors(*anchors)
	if err != nil {
		log.Fatalf("park-anchors: %v", err)
	}

	plan, stats := engine.New(cfg).Generate(result.Boundary, constraints)
	if !plan.Valid {
		log.Fatalf("generation failed: %s", plan.Err)
	}

	log.Printf("plan %s: %d lots, %.0f m² site, %.1f%% efficiency, %d entrance candidates",
		plan.ID, stats.TotalLots, stats.SiteArea, stats.Efficiency*100, stats.PossibleEntrances)

	if *outPath != "" {
		if err := export.ExportGeoJSON(*outPath, plan, stats); err != nil {
			log.Fatalf("geojson export: %v", err)
		}
	}
	if *pdfPath != "" {
		if err := export.ExportPDF(*pdfPath, plan, stats); err != nil {
			log.Fatalf("pdf export: %v", err)
		}
	}
	if *xlsxPath != "" {
		if err := export.ExportXLSX(*xlsxPath, plan, stats); err != nil {
			log.Fatalf("xlsx export: %v", err)
		}
	}
	if *labelsPath != "" {
		if err := export.ExportLabels(*labelsPath, plan); err != nil {
			log.Fatalf("label export: %v", err)
		}
	}

	rememberRecent(*inPath)
}

// loadDefaults pulls the saved generation defaults, falling back to the
// builtin ones when no config file exists or it cannot be read.
func loadDefaults() model.Config {
	appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		return model.DefaultConfig()
	}
	if err := appCfg.Defaults.Validate(); err != nil {
		return model.DefaultConfig()
	}
	return appCfg.Defaults
}

// findTemplate resolves a template by name, checking the saved store first
// and the builtin presets second.
func findTemplate(name string) (model.SiteTemplate, error) {
	store, err := project.LoadDefaultTemplates()
	if err == nil {
		for _, t := range store.Templates {
			if strings.EqualFold(t.Name, name) {
				return t, nil
			}
		}
	}
	for _, t := range model.BuiltinPresets() {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return model.SiteTemplate{}, fmt.Errorf("no template named %q", name)
}

// parseAnchors parses "lng:lat,lng:lat" into park anchor constraints.
func parseAnchors(s string) ([]model.Constraint, error) {
	if s == "" {
		return nil, nil
	}
	var out []model.Constraint
	for _, pair := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(pair), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid anchor %q, want lng:lat", pair)
		}
		lng, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
		}
		out = append(out, model.Constraint{
			Kind:  model.ConstraintParkAnchor,
			Point: orb.Point{lng, lat},
		})
	}
	return out, nil
}

// rememberRecent records the input path in the app config. Failures here
// never affect the run's outcome.
func rememberRecent(path string) {
	cfgPath := project.DefaultConfigPath()
	appCfg, err := project.LoadAppConfig(cfgPath)
	if err != nil {
		return
	}
	appCfg.AddRecentSite(path)
	_ = project.SaveAppConfig(cfgPath, appCfg)
}
