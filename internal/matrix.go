package internal

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MatrixInput is everything the matrix views are computed from
type MatrixInput struct {
	Datasets  []Dataset // in load order
	Selection Selection // nil disables garden filtering
	Statuses  StatusSet
	Mode      ViewMode
	Today     Date
}

// MatrixRow is one budget line. Cells are aligned with Contracts;
// a nil cell means no dataset is loaded for that slot.
type MatrixRow struct {
	Line  Line               `json:"line"`
	Cells []*decimal.Decimal `json:"cells"`
}

// Matrix is the line x contract cross-tab. Totals and shares are derived from
// the cells on every call.
type Matrix struct {
	Mode      ViewMode
	Statuses  []Status
	Contracts []Contract
	Rows      []MatrixRow
	// Matched is how many requirements passed the status filter, of Considered
	Matched    int
	Considered int
}

// GardenRow is one garden of an expanded line
type GardenRow struct {
	Garden  Garden             `json:"garden"`
	Cells   []*decimal.Decimal `json:"cells"`
	Total   decimal.Decimal    `json:"total"`
	Percent float64            `json:"percent"`
}

func newMatrix(in MatrixInput) Matrix {
	m := Matrix{
		Mode:      in.Mode,
		Statuses:  in.Statuses.Sorted(),
		Contracts: Contracts,
		Rows:      make([]MatrixRow, len(Lines)),
	}
	for i, l := range Lines {
		m.Rows[i] = MatrixRow{Line: l, Cells: make([]*decimal.Decimal, len(Contracts))}
	}
	return m
}

// BuildMatrix sums requirement values per (line, contract) for requirements whose
// status is in the active set. Slots without a dataset stay nil.
func BuildMatrix(in MatrixInput) Matrix {
	m := newMatrix(in)
	active := len(m.Statuses) > 0
	for _, ds := range in.Datasets {
		reqs := slotRequirements(ds, in.Selection)
		m.Considered += len(reqs)
		if !active {
			continue
		}
		row, col := lineIndex(ds.Slot.Line), contractIndex(ds.Slot.Contract)
		if row < 0 || col < 0 {
			continue
		}
		cell := m.Rows[row].Cells[col]
		if cell == nil {
			zero := decimal.Zero
			cell = &zero
		}
		sum := *cell
		for _, req := range reqs {
			st := Classify(req, in.Today)
			if !in.Statuses.Has(st) {
				continue
			}
			m.Matched++
			sum = sum.Add(ValueOf(req, st, in.Mode))
		}
		m.Rows[row].Cells[col] = &sum
	}
	return m
}

// ExpandLine drills a line down by garden. Gardens come from the catalog of the
// first-loaded dataset of that line.
func ExpandLine(in MatrixInput, line Line) []GardenRow {
	var gardens []Garden
	for _, ds := range in.Datasets {
		if ds.Slot.Line == line {
			gardens = ds.Gardens
			break
		}
	}
	if len(gardens) == 0 {
		return nil
	}

	grand := BuildMatrix(in).GrandTotal()
	active := len(in.Statuses.Sorted()) > 0

	rows := make([]GardenRow, 0, len(gardens))
	for _, g := range gardens {
		row := GardenRow{Garden: g, Cells: make([]*decimal.Decimal, len(Contracts)), Total: decimal.Zero}
		for ci, c := range Contracts {
			if !active {
				continue
			}
			for _, ds := range in.Datasets {
				if ds.Slot != (Slot{Contract: c, Line: line}) {
					continue
				}
				sum := decimal.Zero
				if row.Cells[ci] != nil {
					sum = *row.Cells[ci]
				}
				for _, req := range slotRequirements(ds, in.Selection) {
					if req.GardenCode != g.Code {
						continue
					}
					st := Classify(req, in.Today)
					if in.Statuses.Has(st) {
						sum = sum.Add(ValueOf(req, st, in.Mode))
					}
				}
				row.Cells[ci] = &sum
			}
			if row.Cells[ci] != nil {
				row.Total = row.Total.Add(*row.Cells[ci])
			}
		}
		row.Percent = percentOf(row.Total, grand)
		rows = append(rows, row)
	}
	return rows
}

func slotRequirements(ds Dataset, sel Selection) []Requirement {
	if sel == nil {
		return ds.Requirements
	}
	return sel.Requirements([]Dataset{ds})
}

func lineIndex(l Line) int {
	for i, x := range Lines {
		if x == l {
			return i
		}
	}
	return -1
}

func contractIndex(c Contract) int {
	for i, x := range Contracts {
		if x == c {
			return i
		}
	}
	return -1
}

// Cell returns the value of a slot, nil when no dataset is loaded for it
func (m Matrix) Cell(line Line, contract Contract) *decimal.Decimal {
	r, c := lineIndex(line), contractIndex(contract)
	if r < 0 || c < 0 || r >= len(m.Rows) {
		return nil
	}
	return m.Rows[r].Cells[c]
}

func (m Matrix) RowTotal(line Line) decimal.Decimal {
	total := decimal.Zero
	for _, c := range m.Contracts {
		if v := m.Cell(line, c); v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

func (m Matrix) ColumnTotal(contract Contract) decimal.Decimal {
	total := decimal.Zero
	for _, r := range m.Rows {
		if v := m.Cell(r.Line, contract); v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

func (m Matrix) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range m.Rows {
		total = total.Add(m.RowTotal(r.Line))
	}
	return total
}

func (m Matrix) RowPercent(line Line) float64 {
	return percentOf(m.RowTotal(line), m.GrandTotal())
}

func (m Matrix) ColumnPercent(contract Contract) float64 {
	return percentOf(m.ColumnTotal(contract), m.GrandTotal())
}

// IsEmpty reports whether no slot has a value
func (m Matrix) IsEmpty() bool {
	for _, r := range m.Rows {
		for _, c := range r.Cells {
			if c != nil {
				return false
			}
		}
	}
	return true
}

type matrixRowJSON struct {
	Line    Line               `json:"line"`
	Cells   []*decimal.Decimal `json:"cells"`
	Total   decimal.Decimal    `json:"total"`
	Percent float64            `json:"percent"`
}

type matrixColumnJSON struct {
	Contract Contract        `json:"contract"`
	Total    decimal.Decimal `json:"total"`
	Percent  float64         `json:"percent"`
}

// MarshalJSON includes the derived totals so consumers never recompute them
func (m Matrix) MarshalJSON() ([]byte, error) {
	out := struct {
		Mode       ViewMode           `json:"mode"`
		Statuses   []Status           `json:"statuses"`
		Contracts  []Contract         `json:"contracts"`
		Rows       []matrixRowJSON    `json:"rows"`
		Columns    []matrixColumnJSON `json:"columns"`
		GrandTotal decimal.Decimal    `json:"grand_total"`
		Matched    int                `json:"matched"`
		Considered int                `json:"considered"`
	}{
		Mode:       m.Mode,
		Statuses:   m.Statuses,
		Contracts:  m.Contracts,
		GrandTotal: m.GrandTotal(),
		Matched:    m.Matched,
		Considered: m.Considered,
	}
	if out.Statuses == nil {
		out.Statuses = []Status{}
	}
	for _, r := range m.Rows {
		out.Rows = append(out.Rows, matrixRowJSON{
			Line:    r.Line,
			Cells:   r.Cells,
			Total:   m.RowTotal(r.Line),
			Percent: m.RowPercent(r.Line),
		})
	}
	for _, c := range m.Contracts {
		out.Columns = append(out.Columns, matrixColumnJSON{
			Contract: c,
			Total:    m.ColumnTotal(c),
			Percent:  m.ColumnPercent(c),
		})
	}
	return json.Marshal(out)
}
