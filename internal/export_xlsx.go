package internal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary  = "Resumen"
	sheetSeries   = "Series"
	sheetMatrix   = "Matriz"
	sheetDatasets = "Datasets"
)

// Report bundles the views written to a workbook
type Report struct {
	Today     Date
	Totals    CategoryTotals
	Series    Series
	Matrix    Matrix
	Expanded  map[Line][]GardenRow
	Datasets  []Dataset
	Selection Selection
}

// ExportXLSX writes the report as a workbook with one sheet per view and native charts
func ExportXLSX(path string, r Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{sheetSeries, sheetMatrix, sheetDatasets} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, Report, int) error{
		writeSummarySheet,
		writeSeriesSheet,
		writeMatrixSheet,
		writeDatasetsSheet,
	}
	for _, step := range steps {
		if err := step(f, r, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSummarySheet(f *excelize.File, r Report, bold int) error {
	t := r.Totals
	if err := writeRow(f, sheetSummary, 1, "Categoría", valueHeader(t.Mode), "%"); err != nil {
		return err
	}
	for i, b := range t.Buckets {
		if err := writeRow(f, sheetSummary, i+2, b.Label, b.Value.InexactFloat64(), round1(b.Percent)); err != nil {
			return err
		}
	}
	last := len(t.Buckets) + 1
	if err := writeRow(f, sheetSummary, last+1, "Total", t.Total.InexactFloat64(), ""); err != nil {
		return err
	}
	if err := styleRow(f, sheetSummary, 1, 3, bold); err != nil {
		return err
	}
	if err := styleRow(f, sheetSummary, last+1, 3, bold); err != nil {
		return err
	}
	if t.Total.IsZero() {
		return nil
	}

	return f.AddChart(sheetSummary, "E2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       sheetSummary + "!$B$1",
			Categories: columnRange(sheetSummary, 1, 2, last),
			Values:     columnRange(sheetSummary, 2, 2, last),
		}},
		Title:     []excelize.RichTextRun{{Text: "Distribución por estado"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		Dimension: excelize.ChartDimension{Width: 480, Height: 320},
	})
}

func writeSeriesSheet(f *excelize.File, r Report, bold int) error {
	s := r.Series
	header := []any{"Periodo"}
	for _, st := range AllStatuses {
		header = append(header, st.Label())
	}
	header = append(header, "Total")
	if err := writeRow(f, sheetSeries, 1, header...); err != nil {
		return err
	}
	if err := styleRow(f, sheetSeries, 1, len(header), bold); err != nil {
		return err
	}

	for i, row := range s.Rows {
		values := []any{row.Period}
		for _, st := range AllStatuses {
			values = append(values, row.Get(st).InexactFloat64())
		}
		values = append(values, row.Total.InexactFloat64())
		if err := writeRow(f, sheetSeries, i+2, values...); err != nil {
			return err
		}
	}
	if len(s.Rows) == 0 {
		return nil
	}

	last := len(s.Rows) + 1
	var series []excelize.ChartSeries
	for col := 2; col <= len(header); col++ {
		name, err := excelize.CoordinatesToCellName(col, 1, true)
		if err != nil {
			return err
		}
		cs := excelize.ChartSeries{
			Name:       sheetSeries + "!" + name,
			Categories: columnRange(sheetSeries, 1, 2, last),
			Values:     columnRange(sheetSeries, col, 2, last),
		}
		if col-2 < len(AllStatuses) {
			color := strings.TrimPrefix(AllStatuses[col-2].Color(), "#")
			cs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
		}
		series = append(series, cs)
	}

	return f.AddChart(sheetSeries, "J2", &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Evolución por " + periodNoun(s.Granularity)}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
	})
}

func writeMatrixSheet(f *excelize.File, r Report, bold int) error {
	m := r.Matrix
	header := []any{"Línea"}
	for _, c := range m.Contracts {
		header = append(header, c.Label())
	}
	header = append(header, "Total", "%")
	if err := writeRow(f, sheetMatrix, 1, header...); err != nil {
		return err
	}
	if err := styleRow(f, sheetMatrix, 1, len(header), bold); err != nil {
		return err
	}

	row := 2
	for _, mr := range m.Rows {
		values := []any{mr.Line.Label()}
		for _, cell := range mr.Cells {
			values = append(values, cellValue(cell))
		}
		values = append(values, m.RowTotal(mr.Line).InexactFloat64(), round1(m.RowPercent(mr.Line)))
		if err := writeRow(f, sheetMatrix, row, values...); err != nil {
			return err
		}
		if err := styleRow(f, sheetMatrix, row, 1, bold); err != nil {
			return err
		}
		row++

		for _, g := range r.Expanded[mr.Line] {
			values := []any{"  " + g.Garden.Code + " " + g.Garden.Name}
			for _, cell := range g.Cells {
				values = append(values, cellValue(cell))
			}
			values = append(values, g.Total.InexactFloat64(), round1(g.Percent))
			if err := writeRow(f, sheetMatrix, row, values...); err != nil {
				return err
			}
			row++
		}
	}

	totals := []any{"Total"}
	shares := []any{"% Total"}
	for _, c := range m.Contracts {
		totals = append(totals, m.ColumnTotal(c).InexactFloat64())
		shares = append(shares, round1(m.ColumnPercent(c)))
	}
	totals = append(totals, m.GrandTotal().InexactFloat64())
	if err := writeRow(f, sheetMatrix, row, totals...); err != nil {
		return err
	}
	if err := styleRow(f, sheetMatrix, row, len(header), bold); err != nil {
		return err
	}
	if err := writeRow(f, sheetMatrix, row+1, shares...); err != nil {
		return err
	}

	names := make([]string, 0, len(m.Statuses))
	for _, st := range m.Statuses {
		names = append(names, st.Label())
	}
	return writeRow(f, sheetMatrix, row+3, "Estados", strings.Join(names, ", "))
}

func writeDatasetsSheet(f *excelize.File, r Report, bold int) error {
	header := []any{"Contrato", "Línea", "Formato", "Exportado", "Importado", "Requerimientos", "Jardines", "Jardines seleccionados"}
	if err := writeRow(f, sheetDatasets, 1, header...); err != nil {
		return err
	}
	if err := styleRow(f, sheetDatasets, 1, len(header), bold); err != nil {
		return err
	}
	for i, ds := range r.Datasets {
		selected := "todos"
		if codes, ok := r.Selection.Gardens(ds.Slot); ok {
			selected = strings.Join(codes, ", ")
		}
		err := writeRow(f, sheetDatasets, i+2,
			ds.Slot.Contract.Label(),
			ds.Slot.Line.Label(),
			ds.Format,
			ds.ExportedAt,
			ds.ImportedAt.Format("2006-01-02 15:04"),
			len(ds.Requirements),
			len(ds.Gardens),
			selected,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

// columnRange returns an absolute reference such as Series!$B$2:$B$9
func columnRange(sheet string, col, fromRow, toRow int) string {
	from, _ := excelize.CoordinatesToCellName(col, fromRow, true)
	to, _ := excelize.CoordinatesToCellName(col, toRow, true)
	return sheet + "!" + from + ":" + to
}

// cellValue leaves slots without a dataset blank
func cellValue(v *decimal.Decimal) any {
	if v == nil {
		return nil
	}
	return v.InexactFloat64()
}

func round1(p float64) float64 {
	return decimal.NewFromFloat(p).Round(1).InexactFloat64()
}

func periodNoun(g Granularity) string {
	if g == Weekly {
		return "semana"
	}
	return "mes"
}
