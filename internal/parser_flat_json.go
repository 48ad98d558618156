package internal

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FlatJSONFormat is the table-per-key export of the SQLite-backed tool:
//
//	{
//	  "jardines": [{"id": 1, "codigo": "J-01", "nombre": "...", "created_at": "2024-06-01 10:00:00"}],
//	  "partidas": [...], "recintos": [...],
//	  "requerimientos": [{"ot_codigo": "OT-1", "informe_codigo": null, ...}],
//	  "ordenes_trabajo": [...], "informes_pago": [...]
//	}
//
// It carries no precomputed payable amount.
type FlatJSONFormat struct {
	Gardens        []FlatGarden      `json:"jardines"`
	CostItems      []FlatCostItem    `json:"partidas"`
	Locations      []FlatLocation    `json:"recintos"`
	Requirements   []FlatRequirement `json:"requerimientos"`
	WorkOrders     []FlatDocument    `json:"ordenes_trabajo,omitempty"`
	PaymentReports []FlatDocument    `json:"informes_pago,omitempty"`
}

type FlatGarden struct {
	ID        int    `json:"id"`
	Code      string `json:"codigo"`
	Name      string `json:"nombre"`
	CreatedAt string `json:"created_at"`
}

type FlatCostItem struct {
	ID        int             `json:"id"`
	Item      string          `json:"item"`
	Name      string          `json:"partida"`
	Unit      *string         `json:"unidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	CreatedAt string          `json:"created_at"`
}

type FlatLocation struct {
	ID         int    `json:"id"`
	GardenCode string `json:"jardin_codigo"`
	Name       string `json:"nombre"`
	CreatedAt  string `json:"created_at"`
}

type FlatRequirement struct {
	GardenCode     string          `json:"jardin_codigo"`
	Location       string          `json:"recinto"`
	ItemCode       string          `json:"partida_item"`
	Quantity       decimal.Decimal `json:"cantidad"`
	UnitPrice      decimal.Decimal `json:"precio_unitario"`
	TotalPrice     decimal.Decimal `json:"precio_total"`
	StartDate      string          `json:"fecha_inicio"`
	RegisteredDate string          `json:"fecha_registro"`
	State          string          `json:"estado"`
	WorkOrder      *string         `json:"ot_codigo"`
	PaymentReport  *string         `json:"informe_codigo"`
	ReceptionDate  *string         `json:"fecha_recepcion"`
	BaseTerm       int             `json:"plazo_dias"`
	AdditionalTerm int             `json:"plazo_adicional"`
	TotalTerm      int             `json:"plazo_total"`
	DueDate        string          `json:"fecha_limite"`
	Penalty        decimal.Decimal `json:"multa"`
	Description    *string         `json:"descripcion"`
	Observations   *string         `json:"observaciones"`
}

type FlatDocument struct {
	Code       string          `json:"codigo"`
	GardenCode string          `json:"jardin_codigo"`
	IssuedAt   string          `json:"fecha_emision"`
	Total      decimal.Decimal `json:"monto_total"`
	State      string          `json:"estado"`
	CreatedAt  string          `json:"created_at"`
}

func detectFlatJSON(top map[string]json.RawMessage) bool {
	if !hasKeys(top, "jardines", "partidas", "recintos", "requerimientos") {
		return false
	}
	// flat tables carry per-row timestamps; an empty garden table cannot tell us more
	var gardens []map[string]json.RawMessage
	if err := json.Unmarshal(top["jardines"], &gardens); err != nil {
		return false
	}
	if len(gardens) == 0 {
		return true
	}
	_, ok := gardens[0]["created_at"]
	return ok
}

// ParseFlatJSON parses a document in the flat table format
func ParseFlatJSON(data []byte) (Dataset, error) {
	var doc FlatJSONFormat
	if err := decodeStrict(data, &doc); err != nil {
		return Dataset{}, err
	}
	if doc.Requirements == nil {
		return Dataset{}, fmt.Errorf("%w: requerimientos is missing", ErrSchemaMismatch)
	}

	var ds Dataset
	for _, g := range doc.Gardens {
		ds.Gardens = append(ds.Gardens, Garden{Code: g.Code, Name: g.Name})
		ds.ExportedAt = newest(ds.ExportedAt, g.CreatedAt)
	}
	for _, c := range doc.CostItems {
		unit := ""
		if c.Unit != nil {
			unit = *c.Unit
		}
		ds.CostItems = append(ds.CostItems, CostItem{Item: c.Item, Name: c.Name, Unit: unit, UnitPrice: c.UnitPrice})
		ds.ExportedAt = newest(ds.ExportedAt, c.CreatedAt)
	}
	for _, l := range doc.Locations {
		ds.Locations = append(ds.Locations, Location{GardenCode: l.GardenCode, Name: l.Name})
		ds.ExportedAt = newest(ds.ExportedAt, l.CreatedAt)
	}
	for _, d := range doc.WorkOrders {
		ds.WorkOrders = append(ds.WorkOrders, d.canonical())
	}
	for _, d := range doc.PaymentReports {
		ds.PaymentReports = append(ds.PaymentReports, d.canonical())
	}

	for i, r := range doc.Requirements {
		// flat rows have no id; number them in file order
		req, err := r.canonical(i + 1)
		if err != nil {
			return Dataset{}, fmt.Errorf("requirement %d: %w", i+1, err)
		}
		ds.Requirements = append(ds.Requirements, req)
	}
	return ds, nil
}

func (r FlatRequirement) canonical(id int) (Requirement, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return Requirement{}, fmt.Errorf("start date: %w", err)
	}
	registered, err := ParseDate(r.RegisteredDate)
	if err != nil {
		return Requirement{}, fmt.Errorf("registration date: %w", err)
	}
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return Requirement{}, fmt.Errorf("due date: %w", err)
	}
	reception, err := parseOptionalDate(r.ReceptionDate)
	if err != nil {
		return Requirement{}, fmt.Errorf("reception date: %w", err)
	}

	return Requirement{
		ID:             id,
		GardenCode:     r.GardenCode,
		Location:       r.Location,
		ItemCode:       r.ItemCode,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		TotalPrice:     r.TotalPrice,
		Penalty:        r.Penalty,
		StartDate:      start,
		RegisteredDate: registered,
		BaseTerm:       r.BaseTerm,
		AdditionalTerm: r.AdditionalTerm,
		TotalTerm:      r.TotalTerm,
		DueDate:        due,
		WorkOrder:      r.WorkOrder,
		ReceptionDate:  reception,
		PaymentReport:  r.PaymentReport,
		RecordedState:  r.State,
		Description:    deref(r.Description),
		Observations:   deref(r.Observations),
	}, nil
}

func (d FlatDocument) canonical() Document {
	return Document{Code: d.Code, GardenCode: d.GardenCode, IssuedAt: d.IssuedAt, Total: d.Total, State: d.State}
}

func newest(current, candidate string) string {
	if candidate > current {
		return candidate
	}
	return current
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func init() {
	RegisterParser("flat-json", ParserFunc(ParseFlatJSON), detectFlatJSON)
}
