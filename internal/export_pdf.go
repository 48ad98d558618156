package internal

import (
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	pdfFont       = "Helvetica"
	pdfRowHeight  = 6.0
	pdfLabelWidth = 45.0
	pdfBarWidth   = 120.0
)

// ExportPDF writes the summary, series and matrix views as a landscape A4 report
func ExportPDF(path string, r Report, cur Currency) error {
	pdf := buildPDF(r, cur)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func buildPDF(r Report, cur Currency) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Análisis de requerimientos", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr("Análisis de requerimientos"), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Fecha de referencia: %s   %d datasets cargados", r.Today, len(r.Datasets))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeSummaryPDF(pdf, tr, r.Totals, cur)
	writeSeriesPDF(pdf, tr, r.Series, cur)
	writeMatrixPDF(pdf, tr, r.Matrix, r.Expanded, cur)
	return pdf
}

func pdfHeading(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(pdfFont, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
}

func pdfHeaderRow(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) {
	pdf.SetFont(pdfFont, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range cells {
		pdf.CellFormat(widths[i], pdfRowHeight, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(pdfFont, "", 9)
}

func pdfRow(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) {
	for i, c := range cells {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], pdfRowHeight, tr(c), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func writeSummaryPDF(pdf *fpdf.Fpdf, tr func(string) string, t CategoryTotals, cur Currency) {
	pdfHeading(pdf, tr, fmt.Sprintf("Resumen (%d requerimientos)", t.Count))
	widths := []float64{pdfLabelWidth, 35, 20}
	pdfHeaderRow(pdf, tr, widths, []string{"Categoría", valueHeader(t.Mode), "%"})
	for _, b := range t.Buckets {
		pdfRow(pdf, tr, widths, []string{b.Label, cur.FormatValue(b.Value, t.Mode), FormatPercent(b.Percent)})
	}
	pdf.SetFont(pdfFont, "B", 9)
	pdfRow(pdf, tr, widths, []string{"Total", cur.FormatValue(t.Total, t.Mode), ""})
	pdf.Ln(4)

	if t.Total.IsZero() {
		return
	}
	// one horizontal bar per status, scaled to its share
	for _, b := range t.Buckets {
		x, y := pdf.GetXY()
		pdf.CellFormat(pdfLabelWidth, pdfRowHeight, tr(b.Label), "", 0, "L", false, 0, "")
		if w := pdfBarWidth * b.Percent / 100; w > 0 {
			red, green, blue := hexRGB(b.Status.Color())
			pdf.SetFillColor(red, green, blue)
			pdf.Rect(x+pdfLabelWidth, y+1, w, pdfRowHeight-2, "F")
		}
		pdf.SetXY(x+pdfLabelWidth+pdfBarWidth+2, y)
		pdf.CellFormat(20, pdfRowHeight, FormatPercent(b.Percent), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeSeriesPDF(pdf *fpdf.Fpdf, tr func(string) string, s Series, cur Currency) {
	title := "Serie mensual"
	if s.Granularity == Weekly {
		title = "Serie semanal"
	}
	pdfHeading(pdf, tr, title)
	if len(s.Rows) == 0 {
		pdf.CellFormat(0, pdfRowHeight, tr("Sin requerimientos."), "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}
	widths := []float64{25}
	header := []string{"Periodo"}
	for _, st := range AllStatuses {
		widths = append(widths, 35)
		header = append(header, st.Label())
	}
	widths = append(widths, 35)
	header = append(header, "Total")

	pdfHeaderRow(pdf, tr, widths, header)
	for _, row := range s.Rows {
		cells := []string{row.Period}
		for _, st := range AllStatuses {
			cells = append(cells, cur.FormatValue(row.Values[st], s.Mode))
		}
		cells = append(cells, cur.FormatValue(row.Total, s.Mode))
		pdfRow(pdf, tr, widths, cells)
	}
	pdf.Ln(4)
}

func writeMatrixPDF(pdf *fpdf.Fpdf, tr func(string) string, m Matrix, expanded map[Line][]GardenRow, cur Currency) {
	pdfHeading(pdf, tr, fmt.Sprintf("Matriz línea x contrato (%d de %d requerimientos)", m.Matched, m.Considered))
	if len(m.Statuses) == 0 {
		pdf.CellFormat(0, pdfRowHeight, tr("Sin estados seleccionados."), "", 1, "L", false, 0, "")
		return
	}

	widths := []float64{60}
	header := []string{"Línea"}
	for _, c := range m.Contracts {
		widths = append(widths, 35)
		header = append(header, c.Label())
	}
	widths = append(widths, 35, 20)
	header = append(header, "Total", "%")

	cell := func(v *decimal.Decimal) string {
		if v == nil {
			return "—"
		}
		return cur.FormatValue(*v, m.Mode)
	}

	pdfHeaderRow(pdf, tr, widths, header)
	for _, r := range m.Rows {
		cells := []string{r.Line.Label()}
		for _, c := range r.Cells {
			cells = append(cells, cell(c))
		}
		cells = append(cells, cur.FormatValue(m.RowTotal(r.Line), m.Mode), FormatPercent(m.RowPercent(r.Line)))
		pdfRow(pdf, tr, widths, cells)

		for _, g := range expanded[r.Line] {
			gcells := []string{"  " + g.Garden.Code + " " + g.Garden.Name}
			for _, c := range g.Cells {
				gcells = append(gcells, cell(c))
			}
			gcells = append(gcells, cur.FormatValue(g.Total, m.Mode), FormatPercent(g.Percent))
			pdfRow(pdf, tr, widths, gcells)
		}
	}

	totals := []string{"Total"}
	for _, c := range m.Contracts {
		totals = append(totals, cur.FormatValue(m.ColumnTotal(c), m.Mode))
	}
	totals = append(totals, cur.FormatValue(m.GrandTotal(), m.Mode), "")
	pdf.SetFont(pdfFont, "B", 9)
	pdfRow(pdf, tr, widths, totals)
	pdf.SetFont(pdfFont, "", 9)
}

// hexRGB parses "#rrggbb", falling back to grey
func hexRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int((v >> 16) & 0xff), int((v >> 8) & 0xff), int(v & 0xff)
}
