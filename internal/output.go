package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// JSONOutput is the root JSON output object. Only the requested view is filled in.
type JSONOutput struct {
	View     string               `json:"view"`
	Today    Date                 `json:"today"`
	Summary  *CategoryTotals      `json:"summary,omitempty"`
	Series   *Series              `json:"series,omitempty"`
	Matrix   *Matrix              `json:"matrix,omitempty"`
	Expanded map[Line][]GardenRow `json:"expanded,omitempty"`
	Datasets []JSONDataset        `json:"datasets,omitempty"`
}

// JSONDataset describes one loaded dataset and its garden selection
type JSONDataset struct {
	Contract   Contract     `json:"contract"`
	Line       Line         `json:"line"`
	Format     string       `json:"format"`
	ExportedAt string       `json:"exported_at,omitempty"`
	ImportedAt string       `json:"imported_at"`
	Stats      DatasetStats `json:"stats"`
	Filtered   bool         `json:"filtered"`
	Gardens    []string     `json:"selected_gardens"`
}

var statusTextColors = map[Status]text.Color{
	StatusPaid:       text.FgGreen,
	StatusReceived:   text.FgBlue,
	StatusOverdue:    text.FgRed,
	StatusInProgress: text.FgYellow,
	StatusNotStarted: text.FgHiBlack,
}

func coloredStatus(st Status) string {
	if c, ok := statusTextColors[st]; ok {
		return c.Sprint(st.Label())
	}
	return st.Label()
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DatasetsJSON builds the JSON description of loaded datasets. Unfiltered slots
// list every garden of their catalog with filtered set to false.
func DatasetsJSON(datasets []Dataset, sel Selection) []JSONDataset {
	effective := sel.WithDefaults(datasets)
	out := make([]JSONDataset, 0, len(datasets))
	for _, ds := range datasets {
		_, filtered := sel.Gardens(ds.Slot)
		codes, _ := effective.Gardens(ds.Slot)
		if codes == nil {
			codes = []string{}
		}
		out = append(out, JSONDataset{
			Contract:   ds.Slot.Contract,
			Line:       ds.Slot.Line,
			Format:     ds.Format,
			ExportedAt: ds.ExportedAt,
			ImportedAt: ds.ImportedAt.Format("2006-01-02 15:04"),
			Stats:      ds.Stats(),
			Filtered:   filtered,
			Gardens:    codes,
		})
	}
	return out
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func valueHeader(mode ViewMode) string {
	if mode == ViewAmount {
		return "Amount"
	}
	return "Count"
}

// PrintSummaryTable outputs the category totals with their shares
func PrintSummaryTable(w io.Writer, totals CategoryTotals, cur Currency) {
	fmt.Fprintf(w, "%d requirements\n\n", totals.Count)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", valueHeader(totals.Mode), "%"})
	for _, b := range totals.Buckets {
		t.AppendRow(table.Row{coloredStatus(b.Status), cur.FormatValue(b.Value, totals.Mode), FormatPercent(b.Percent)})
	}
	t.AppendSeparator()
	share := FormatPercent(0)
	if !totals.Total.IsZero() {
		share = FormatPercent(100)
	}
	t.AppendFooter(table.Row{text.Bold.Sprint("Total"), text.Bold.Sprint(cur.FormatValue(totals.Total, totals.Mode)), share})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

// PrintSeriesTable outputs one row per period with a column per status and the total
func PrintSeriesTable(w io.Writer, series Series, cur Currency) {
	if len(series.Rows) == 0 {
		fmt.Fprintln(w, "No requirements to group.")
		return
	}

	t := newTable(w)
	header := table.Row{"Period"}
	for _, st := range AllStatuses {
		header = append(header, coloredStatus(st))
	}
	header = append(header, "Total")
	t.AppendHeader(header)

	colTotals := make(map[Status]decimal.Decimal)
	grand := decimal.Zero
	for _, r := range series.Rows {
		row := table.Row{r.Period}
		for _, st := range AllStatuses {
			row = append(row, cur.FormatValue(r.Get(st), series.Mode))
			colTotals[st] = colTotals[st].Add(r.Get(st))
		}
		row = append(row, text.Bold.Sprint(cur.FormatValue(r.Total, series.Mode)))
		grand = grand.Add(r.Total)
		t.AppendRow(row)
	}
	t.AppendSeparator()
	footer := table.Row{text.Bold.Sprint("Total")}
	for _, st := range AllStatuses {
		footer = append(footer, cur.FormatValue(colTotals[st], series.Mode))
	}
	footer = append(footer, text.Bold.Sprint(cur.FormatValue(grand, series.Mode)))
	t.AppendFooter(footer)

	var cfgs []table.ColumnConfig
	for i := 2; i <= len(header); i++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
	t.Render()
}

func formatCell(v *decimal.Decimal, mode ViewMode, cur Currency) string {
	if v == nil {
		return text.FgHiBlack.Sprint("—")
	}
	return cur.FormatValue(*v, mode)
}

// PrintMatrixTable outputs the line x contract matrix. Lines present in expanded
// are followed by one row per garden.
func PrintMatrixTable(w io.Writer, m Matrix, expanded map[Line][]GardenRow, cur Currency) {
	names := make([]string, 0, len(m.Statuses))
	for _, st := range m.Statuses {
		names = append(names, st.Label())
	}
	fmt.Fprintf(w, "%d requirements of %d in total\n", m.Matched, m.Considered)
	if len(m.Statuses) == 0 {
		fmt.Fprintln(w, "No statuses selected; select at least one status to fill the matrix.")
		return
	}
	if m.IsEmpty() {
		fmt.Fprintln(w, "No datasets loaded. Import one with --import contract:line=path.json")
		return
	}
	fmt.Fprintf(w, "Statuses: %s\n\n", strings.Join(names, ", "))

	t := newTable(w)
	header := table.Row{"Line"}
	for _, c := range m.Contracts {
		header = append(header, c.Label())
	}
	header = append(header, "Total", "%")
	t.AppendHeader(header)

	totals := table.Row{text.Bold.Sprint("Total")}
	shares := table.Row{"% Total"}
	for _, c := range m.Contracts {
		totals = append(totals, text.Bold.Sprint(cur.FormatValue(m.ColumnTotal(c), m.Mode)))
		shares = append(shares, FormatPercent(m.ColumnPercent(c)))
	}
	grandShare := FormatPercent(0)
	if !m.GrandTotal().IsZero() {
		grandShare = FormatPercent(100)
	}
	totals = append(totals, text.Bold.Sprint(cur.FormatValue(m.GrandTotal(), m.Mode)), grandShare)
	shares = append(shares, "", "")
	t.AppendRow(totals)
	t.AppendRow(shares)
	t.AppendSeparator()

	for _, r := range m.Rows {
		row := table.Row{text.Bold.Sprint(r.Line.Label())}
		for _, cell := range r.Cells {
			row = append(row, formatCell(cell, m.Mode, cur))
		}
		row = append(row, cur.FormatValue(m.RowTotal(r.Line), m.Mode), FormatPercent(m.RowPercent(r.Line)))
		t.AppendRow(row)

		for _, g := range expanded[r.Line] {
			grow := table.Row{"  " + g.Garden.Code + " " + g.Garden.Name}
			for _, cell := range g.Cells {
				if cell == nil || cell.IsZero() {
					grow = append(grow, text.FgHiBlack.Sprint("—"))
					continue
				}
				grow = append(grow, cur.FormatValue(*cell, m.Mode))
			}
			if g.Total.IsZero() {
				grow = append(grow, text.FgHiBlack.Sprint("—"), text.FgHiBlack.Sprint("—"))
			} else {
				grow = append(grow, cur.FormatValue(g.Total, m.Mode), FormatPercent(g.Percent))
			}
			t.AppendRow(grow)
		}
	}

	var cfgs []table.ColumnConfig
	for i := 2; i <= len(header); i++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
	t.Render()
}

// PrintDatasetsTable lists loaded datasets with their import dates and selection size
func PrintDatasetsTable(w io.Writer, datasets []Dataset, sel Selection) {
	if len(datasets) == 0 {
		fmt.Fprintln(w, "No datasets loaded. Import one with --import contract:line=path.json")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Contract", "Line", "Format", "Exported", "Imported", "Requirements", "Gardens"})
	for _, ds := range datasets {
		selected := "all"
		if codes, ok := sel.Gardens(ds.Slot); ok {
			selected = fmt.Sprintf("%d/%d", len(codes), len(ds.Gardens))
			if len(codes) == 0 {
				selected = text.FgRed.Sprint("none")
			}
		}
		t.AppendRow(table.Row{
			ds.Slot.Contract.Label(),
			ds.Slot.Line.Label(),
			ds.Format,
			ds.ExportedAt,
			ds.ImportedAt.Format("2006-01-02 15:04"),
			len(ds.Requirements),
			selected,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintf(w, "%d of %d slots loaded\n", len(datasets), len(AllSlots()))
}
