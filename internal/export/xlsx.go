package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

// ExportXLSX writes the lot schedule as an Excel workbook: one row per
// surviving lot with its building footprint, plus a summary block with the
// plan statistics.
func ExportXLSX(path string, plan *model.Plan, stats model.Statistics) error {
	if plan == nil || !plan.Valid {
		return fmt.Errorf("no valid plan to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Lots"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Lot", "Band", "Lot Area (m²)", "Building Area (m²)", "Stories", "Height Factor"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	buildings := make(map[int]*model.Building, len(plan.Buildings))
	for i := range plan.Buildings {
		buildings[plan.Buildings[i].LotID] = &plan.Buildings[i]
	}

	row := 2
	for _, lot := range plan.Lots {
		if lot == nil {
			continue
		}
		band := "front"
		if lot.BackRow {
			band = "back"
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), lot.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), band)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), lot.Area)
		if b := buildings[lot.ID]; b != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), geom.Area(b.Polygon))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.Stories)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.HeightFactor)
		}
		row++
	}

	summary := [][2]interface{}{
		{"Plan", plan.ID},
		{"Site area (m²)", stats.SiteArea},
		{"Net sellable area (m²)", stats.NetSellableArea},
		{"Park area (m²)", stats.ParkArea},
		{"Road area (m²)", stats.RoadArea},
		{"Total lots", stats.TotalLots},
		{"Efficiency", stats.Efficiency},
		{"Entrance candidates", stats.PossibleEntrances},
	}
	row++
	for _, kv := range summary {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	return f.SaveAs(path)
}
