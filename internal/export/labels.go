package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb/planar"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/terrafold/siteplan/internal/model"
)

// LabelInfo holds the data encoded into each lot label's QR code.
type LabelInfo struct {
	PlanID  string  `json:"plan"`
	LotID   int     `json:"lot"`
	Area    float64 `json:"area_m2"`
	BackRow bool    `json:"back_row"`
	Lng     float64 `json:"lng"`
	Lat     float64 `json:"lat"`
	Stories int     `json:"stories,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per surviving lot.
// Each label carries the lot id, area and centroid, plus a QR code encoding
// the same data as JSON. Labels are laid out on a standard label sheet
// format (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, plan *model.Plan) error {
	if plan == nil || !plan.Valid {
		return fmt.Errorf("no valid plan to generate labels for")
	}

	labels := CollectLabelInfos(plan)
	if len(labels) == 0 {
		return fmt.Errorf("no lots to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for lot %d: %w", label.LotID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.PlanID, info.LotID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Lot %d", info.LotID), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.1f m²", info.Area), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%.6f, %.6f", info.Lat, info.Lng), "", 1, "L", false, 0, "")

	if info.BackRow {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Back row", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information from a plan for use in
// testing or alternative export formats. Removed (nil) lots are skipped.
func CollectLabelInfos(plan *model.Plan) []LabelInfo {
	if plan == nil {
		return nil
	}
	stories := make(map[int]int, len(plan.Buildings))
	for _, b := range plan.Buildings {
		stories[b.LotID] = b.Stories
	}

	var labels []LabelInfo
	for _, lot := range plan.Lots {
		if lot == nil {
			continue
		}
		centroid, _ := planar.CentroidArea(lot.Polygon)
		labels = append(labels, LabelInfo{
			PlanID:  plan.ID,
			LotID:   lot.ID,
			Area:    lot.Area,
			BackRow: lot.BackRow,
			Lng:     centroid[0],
			Lat:     centroid[1],
			Stories: stories[lot.ID],
		})
	}
	return labels
}
