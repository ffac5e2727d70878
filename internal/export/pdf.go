package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb"

	"github.com/terrafold/siteplan/internal/geom"
	"github.com/terrafold/siteplan/internal/model"
)

// featureColor represents an RGB color for a plan feature class.
type featureColor struct {
	R, G, B int
}

var (
	colorSite     = featureColor{R: 245, G: 242, B: 232}
	colorBlock    = featureColor{R: 222, G: 215, B: 200}
	colorLot      = featureColor{R: 255, G: 236, B: 179}
	colorBuilding = featureColor{R: 188, G: 143, B: 110}
	colorPark     = featureColor{R: 165, G: 214, B: 167}
	colorMarking  = featureColor{R: 250, G: 250, B: 250}
	colorAccess   = featureColor{R: 120, G: 144, B: 156}
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document containing the site plan: a drawing
// page with the full layout, followed by a summary page with the area and
// efficiency statistics.
func ExportPDF(path string, plan *model.Plan, stats model.Statistics) error {
	if plan == nil || !plan.Valid {
		return fmt.Errorf("no valid plan to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, plan, stats)

	pdf.AddPage()
	renderSummaryPage(pdf, plan, stats)

	return pdf.OutputFileAndClose(path)
}

// planProjector maps plan geometry (lng/lat) onto the PDF drawing area via
// the plan's working frame, so the drawing comes out axis-aligned.
type planProjector struct {
	frame   geom.LocalFrame
	minX    float64
	maxY    float64
	scale   float64
	offsetX float64
	offsetY float64
}

func newPlanProjector(plan *model.Plan) planProjector {
	local := plan.Frame.RingToLocal(plan.Boundary)
	b := local.Bound()

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	scale := math.Min(drawWidth/w, drawHeight/h)

	return planProjector{
		frame:   plan.Frame,
		minX:    b.Min[0],
		maxY:    b.Max[1], // PDF y grows downward
		scale:   scale,
		offsetX: marginLeft + (drawWidth-w*scale)/2,
		offsetY: drawAreaTop + (drawHeight-h*scale)/2,
	}
}

func (pp planProjector) point(p orb.Point) (x, y float64) {
	l := pp.frame.ToLocal(p)
	return pp.offsetX + (l[0]-pp.minX)*pp.scale, pp.offsetY + (pp.maxY-l[1])*pp.scale
}

func (pp planProjector) ringPoints(r orb.Ring) []fpdf.PointType {
	pts := make([]fpdf.PointType, 0, len(r))
	for _, p := range r {
		x, y := pp.point(p)
		pts = append(pts, fpdf.PointType{X: x, Y: y})
	}
	return pts
}

// fillPolygon draws a filled polygon with a thin outline.
func fillPolygon(pdf *fpdf.Fpdf, pp planProjector, poly orb.Polygon, col featureColor, lineWidth float64) {
	if len(poly) == 0 || len(poly[0]) < 4 {
		return
	}
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(lineWidth)
	pdf.Polygon(pp.ringPoints(poly[0]), "FD")
}

// renderPlanPage draws the complete layout on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, plan *model.Plan, stats model.Statistics) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Site Plan %s (%.0f m², %d lots)", plan.ID, stats.SiteArea, stats.TotalLots)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pp := newPlanProjector(plan)

	fillPolygon(pdf, pp, orb.Polygon{plan.Boundary}, colorSite, 0.5)
	for _, block := range plan.Superblocks {
		if block != nil {
			fillPolygon(pdf, pp, *block, colorBlock, 0.2)
		}
	}
	for _, park := range plan.Parks {
		if park != nil {
			fillPolygon(pdf, pp, park.Polygon, colorPark, 0.2)
		}
	}
	for _, lot := range plan.Lots {
		if lot != nil {
			fillPolygon(pdf, pp, lot.Polygon, colorLot, 0.15)
		}
	}
	for _, b := range plan.Buildings {
		fillPolygon(pdf, pp, b.Polygon, colorBuilding, 0.15)
	}
	for _, m := range plan.Markings {
		fillPolygon(pdf, pp, m, colorMarking, 0.1)
	}
	for _, r := range plan.Roads {
		fillPolygon(pdf, pp, r.Polygon, colorAccess, 0.15)
	}

	// Trees as small dots.
	pdf.SetFillColor(56, 142, 60)
	for _, t := range plan.Trees {
		x, y := pp.point(t.Point)
		pdf.Circle(x, y, 0.6, "F")
	}

	// Perimeter wall.
	pdf.SetDrawColor(40, 40, 40)
	pdf.SetLineWidth(0.5)
	for _, line := range plan.WallLines {
		for i := 0; i+1 < len(line); i++ {
			x1, y1 := pp.point(line[i])
			x2, y2 := pp.point(line[i+1])
			pdf.Line(x1, y1, x2, y2)
		}
	}

	if plan.Access != nil {
		fillPolygon(pdf, pp, plan.Access.Island, colorAccess, 0.2)
		fillPolygon(pdf, pp, plan.Access.GuardHouse, colorAccess, 0.2)
		x, y := pp.point(plan.Access.Entry)
		pdf.SetFillColor(211, 47, 47)
		pdf.Circle(x, y, 1.2, "F")
	}
}

// renderSummaryPage draws the statistics table.
func renderSummaryPage(pdf *fpdf.Fpdf, plan *model.Plan, stats model.Statistics) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Plan Summary", "", 0, "L", false, 0, "")

	rows := []struct {
		label string
		value string
	}{
		{"Plan", plan.ID},
		{"Site area", fmt.Sprintf("%.1f m²", stats.SiteArea)},
		{"Net sellable area", fmt.Sprintf("%.1f m²", stats.NetSellableArea)},
		{"Park area", fmt.Sprintf("%.1f m²", stats.ParkArea)},
		{"Road area (derived)", fmt.Sprintf("%.1f m²", stats.RoadArea)},
		{"Total lots", fmt.Sprintf("%d", stats.TotalLots)},
		{"Efficiency", fmt.Sprintf("%.1f%%", stats.Efficiency*100)},
		{"Entrance candidates", fmt.Sprintf("%d", stats.PossibleEntrances)},
	}

	y := marginTop + 18.0
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(70, 7, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(70, 7, row.value, "1", 0, "L", false, 0, "")
		y += 7
	}
}
