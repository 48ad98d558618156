package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LegacyJSONFormat is the older export envelope:
//
//	{
//	  "version": "1.0",
//	  "metadata": {"fecha_exportacion": "2024-06-01T10:00:00Z", ...},
//	  "catalogos": {"jardines": [...], "partidas": [...], "recintos": [...]},
//	  "datos": {"requerimientos": [{"ot_id": 12, "informe_pago_id": null, "a_pago": 90000, ...}]}
//	}
//
// Work orders and payment reports are referenced by nullable integer ids.
type LegacyJSONFormat struct {
	Version       string          `json:"version"`
	Metadata      LegacyMetadata  `json:"metadata"`
	Configuration json.RawMessage `json:"configuracion"`
	Catalogs      LegacyCatalogs  `json:"catalogos"`
	Data          LegacyDataBlock `json:"datos"`
}

type LegacyMetadata struct {
	ExportedAt        string `json:"fecha_exportacion"`
	Title             string `json:"titulo"`
	TotalRequirements int    `json:"total_requerimientos"`
	TotalWorkOrders   int    `json:"total_ordenes"`
	TotalReports      int    `json:"total_informes"`
}

type LegacyCatalogs struct {
	Gardens   []LegacyGarden   `json:"jardines"`
	CostItems []LegacyCostItem `json:"partidas"`
	Locations []LegacyLocation `json:"recintos"`
}

type LegacyGarden struct {
	Code string `json:"codigo"`
	Name string `json:"nombre"`
}

type LegacyCostItem struct {
	Item      string `json:"item"`
	Name      string `json:"partida"`
	Unit      string `json:"unidad"`
	UnitPrice string `json:"precio_unitario"`
}

type LegacyLocation struct {
	GardenCode string `json:"jardin_codigo"`
	Name       string `json:"nombre"`
}

type LegacyDataBlock struct {
	Requirements []LegacyRequirement `json:"requerimientos"`
}

type LegacyRequirement struct {
	ID             int             `json:"id"`
	GardenCode     string          `json:"jardin_codigo"`
	GardenName     string          `json:"jardin_nombre"`
	Location       string          `json:"recinto"`
	ItemCode       string          `json:"partida_item"`
	ItemName       string          `json:"partida_nombre"`
	ItemUnit       string          `json:"partida_unidad"`
	Quantity       decimal.Decimal `json:"cantidad"`
	BaseTerm       int             `json:"plazo"`
	AdditionalTerm int             `json:"plazo_adicional"`
	Description    string          `json:"descripcion"`
	Observations   string          `json:"observaciones"`
	UnitPrice      string          `json:"precio_unitario"`
	TotalPrice     decimal.Decimal `json:"precio_total"`
	StartDate      string          `json:"fecha_inicio"`
	TotalTerm      int             `json:"plazo_total"`
	DueDate        string          `json:"fecha_limite"`
	RegisteredDate string          `json:"fecha_registro"`
	State          string          `json:"estado"`
	WorkOrderID    *int            `json:"ot_id"`
	ReceptionDate  *string         `json:"fecha_recepcion"`
	DaysOverdue    int             `json:"dias_atraso"`
	Penalty        decimal.Decimal `json:"multa"`
	AmountToPay    decimal.Decimal `json:"a_pago"`
	PaymentID      *int            `json:"informe_pago_id"`
}

func detectLegacyJSON(top map[string]json.RawMessage) bool {
	return hasKeys(top, "metadata", "catalogos", "datos")
}

// ParseLegacyJSON parses a document in the legacy envelope format
func ParseLegacyJSON(data []byte) (Dataset, error) {
	var doc LegacyJSONFormat
	if err := decodeStrict(data, &doc); err != nil {
		return Dataset{}, err
	}
	if doc.Data.Requirements == nil {
		return Dataset{}, fmt.Errorf("%w: datos.requerimientos is missing", ErrSchemaMismatch)
	}

	ds := Dataset{ExportedAt: doc.Metadata.ExportedAt}
	for _, g := range doc.Catalogs.Gardens {
		ds.Gardens = append(ds.Gardens, Garden{Code: g.Code, Name: g.Name})
	}
	for _, c := range doc.Catalogs.CostItems {
		price, err := parseLooseDecimal(c.UnitPrice)
		if err != nil {
			return Dataset{}, fmt.Errorf("cost item %s unit price: %w", c.Item, err)
		}
		ds.CostItems = append(ds.CostItems, CostItem{Item: c.Item, Name: c.Name, Unit: c.Unit, UnitPrice: price})
	}
	for _, l := range doc.Catalogs.Locations {
		ds.Locations = append(ds.Locations, Location{GardenCode: l.GardenCode, Name: l.Name})
	}

	for _, r := range doc.Data.Requirements {
		req, err := r.canonical()
		if err != nil {
			return Dataset{}, fmt.Errorf("requirement %d: %w", r.ID, err)
		}
		ds.Requirements = append(ds.Requirements, req)
	}
	return ds, nil
}

func (r LegacyRequirement) canonical() (Requirement, error) {
	unitPrice, err := parseLooseDecimal(r.UnitPrice)
	if err != nil {
		return Requirement{}, fmt.Errorf("unit price: %w", err)
	}
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
		ID:             r.ID,
		GardenCode:     r.GardenCode,
		Location:       r.Location,
		ItemCode:       r.ItemCode,
		Quantity:       r.Quantity,
		UnitPrice:      unitPrice,
		TotalPrice:     r.TotalPrice,
		Penalty:        r.Penalty,
		AmountToPay:    r.AmountToPay,
		StartDate:      start,
		RegisteredDate: registered,
		BaseTerm:       r.BaseTerm,
		AdditionalTerm: r.AdditionalTerm,
		TotalTerm:      r.TotalTerm,
		DueDate:        due,
		WorkOrder:      intRef(r.WorkOrderID),
		ReceptionDate:  reception,
		PaymentReport:  intRef(r.PaymentID),
		RecordedState:  r.State,
		Description:    r.Description,
		Observations:   r.Observations,
	}, nil
}

func intRef(id *int) *string {
	if id == nil {
		return nil
	}
	s := strconv.Itoa(*id)
	return &s
}

// parseLooseDecimal accepts numbers exported as strings; empty means zero
func parseLooseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid number %q", ErrSchemaMismatch, s)
	}
	return d, nil
}

func init() {
	RegisterParser("legacy-json", ParserFunc(ParseLegacyJSON), detectLegacyJSON)
}
