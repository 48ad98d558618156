package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Contract string

const (
	ContractMaintenance Contract = "mantencion"
	ContractHeating     Contract = "calefaccion"
	ContractGreenArea   Contract = "area_verde"
	ContractElevators   Contract = "ascensores"
)

// Contracts lists contract types in matrix column order
var Contracts = []Contract{ContractMaintenance, ContractHeating, ContractGreenArea, ContractElevators}

var contractLabels = map[Contract]string{
	ContractMaintenance: "Mantención",
	ContractHeating:     "Calefacción",
	ContractGreenArea:   "Áreas Verdes",
	ContractElevators:   "Ascensores",
}

func (c Contract) Label() string {
	if l, ok := contractLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Contract) Valid() bool {
	_, ok := contractLabels[c]
	return ok
}

type Line string

const (
	Line1 Line = "linea_1"
	Line2 Line = "linea_2"
	Line3 Line = "linea_3"
	Line4 Line = "linea_4"
	Line5 Line = "linea_5"
)

// Lines lists budget lines in matrix row order
var Lines = []Line{Line1, Line2, Line3, Line4, Line5}

var lineLabels = map[Line]string{
	Line1: "L1",
	Line2: "L2",
	Line3: "L3",
	Line4: "L4",
	Line5: "L5",
}

func (l Line) Label() string {
	if s, ok := lineLabels[l]; ok {
		return s
	}
	return string(l)
}

func (l Line) Valid() bool {
	_, ok := lineLabels[l]
	return ok
}

// ParseLine accepts "linea_2" as well as the short forms "2" and "L2"
func ParseLine(s string) (Line, error) {
	s = strings.TrimSpace(s)
	if l := Line(s); l.Valid() {
		return l, nil
	}
	short := strings.TrimPrefix(strings.ToUpper(s), "L")
	if l := Line("linea_" + short); l.Valid() {
		return l, nil
	}
	return "", fmt.Errorf("%w: unknown line %q", ErrInvalidSlot, s)
}

// Slot identifies the (contract, line) pair a dataset is bound to
type Slot struct {
	Contract Contract `json:"contract"`
	Line     Line     `json:"line"`
}

// Key returns the selection key, e.g. "mantencion-linea_1"
func (s Slot) Key() string {
	return string(s.Contract) + "-" + string(s.Line)
}

func (s Slot) String() string {
	return string(s.Contract) + ":" + string(s.Line)
}

func (s Slot) Label() string {
	return s.Contract.Label() + " - " + s.Line.Label()
}

// Validate checks both values and the elevators contract, which only exists on line 1
func (s Slot) Validate() error {
	if !s.Contract.Valid() {
		return fmt.Errorf("%w: unknown contract %q", ErrInvalidSlot, s.Contract)
	}
	if !s.Line.Valid() {
		return fmt.Errorf("%w: unknown line %q", ErrInvalidSlot, s.Line)
	}
	if s.Contract == ContractElevators && s.Line != Line1 {
		return fmt.Errorf("%w: %s is only available on %s", ErrInvalidSlot, s.Contract, Line1)
	}
	return nil
}

// ParseSlot parses "contract:line"
func ParseSlot(s string) (Slot, error) {
	contract, line, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Slot{}, fmt.Errorf("%w: expected contract:line, got %q", ErrInvalidSlot, s)
	}
	l, err := ParseLine(line)
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Contract: Contract(strings.TrimSpace(contract)), Line: l}
	if err := slot.Validate(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// AllSlots returns every valid slot in line-major order
func AllSlots() []Slot {
	var slots []Slot
	for _, l := range Lines {
		for _, c := range Contracts {
			s := Slot{Contract: c, Line: l}
			if s.Validate() == nil {
				slots = append(slots, s)
			}
		}
	}
	return slots
}

type Status string

const (
	StatusPaid       Status = "paid"
	StatusReceived   Status = "received"
	StatusOverdue    Status = "overdue"
	StatusInProgress Status = "in_progress"
	StatusNotStarted Status = "not_started"
)

// AllStatuses lists statuses in display order
var AllStatuses = []Status{StatusPaid, StatusReceived, StatusOverdue, StatusInProgress, StatusNotStarted}

var statusLabels = map[Status]string{
	StatusPaid:       "Pagados",
	StatusReceived:   "Recibidos",
	StatusOverdue:    "Atrasados",
	StatusInProgress: "En Curso",
	StatusNotStarted: "Sin Curso",
}

var statusColors = map[Status]string{
	StatusPaid:       "#10b981",
	StatusReceived:   "#3b82f6",
	StatusOverdue:    "#ef4444",
	StatusInProgress: "#f59e0b",
	StatusNotStarted: "#6b7280",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Color returns the hex colour used for charts
func (s Status) Color() string {
	return statusColors[s]
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statusLabels[st]; !ok {
		return "", fmt.Errorf("%w: %q (available: %v)", ErrUnknownStatus, s, AllStatuses)
	}
	return st, nil
}

// StatusSet is the set of statuses currently switched on
type StatusSet map[Status]bool

func AllStatusSet() StatusSet {
	set := make(StatusSet, len(AllStatuses))
	for _, s := range AllStatuses {
		set[s] = true
	}
	return set
}

// ParseStatusSet parses status names; "all" selects every status and "none" none
func ParseStatusSet(names []string) (StatusSet, error) {
	set := make(StatusSet)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			part = strings.TrimSpace(part)
			switch part {
			case "":
				continue
			case "all":
				return AllStatusSet(), nil
			case "none":
				return StatusSet{}, nil
			}
			st, err := ParseStatus(part)
			if err != nil {
				return nil, err
			}
			set[st] = true
		}
	}
	return set, nil
}

func (s StatusSet) Has(st Status) bool {
	return s[st]
}

// Sorted returns the members in AllStatuses order
func (s StatusSet) Sorted() []Status {
	var out []Status
	for _, st := range AllStatuses {
		if s[st] {
			out = append(out, st)
		}
	}
	return out
}

type ViewMode string

const (
	ViewCount  ViewMode = "count"
	ViewAmount ViewMode = "amount"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewCount, ViewAmount:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q (available: count, amount)", s)
}

type Granularity string

const (
	Monthly Granularity = "monthly"
	Weekly  Granularity = "weekly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Monthly, Weekly:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity %q (available: monthly, weekly)", s)
}

// Requirement is the canonical in-memory shape of one maintenance work item.
// Both import formats are translated into it; nothing downstream knows which one was used.
type Requirement struct {
	ID         int    `json:"id"`
	GardenCode string `json:"garden_code"`
	Location   string `json:"location"`
	ItemCode   string `json:"item_code"`

	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Penalty    decimal.Decimal `json:"penalty"`
	// AmountToPay is the precomputed payable amount carried by the legacy format; zero when absent
	AmountToPay decimal.Decimal `json:"amount_to_pay"`

	StartDate      Date `json:"start_date"`
	RegisteredDate Date `json:"registered_date"`
	BaseTerm       int  `json:"base_term"`
	AdditionalTerm int  `json:"additional_term"`
	TotalTerm      int  `json:"total_term"`
	DueDate        Date `json:"due_date"` // trusted as imported, never recomputed

	WorkOrder     *string `json:"work_order"`
	ReceptionDate *Date   `json:"reception_date"`
	PaymentReport *string `json:"payment_report"`

	RecordedState string `json:"recorded_state,omitempty"`
	Description   string `json:"description,omitempty"`
	Observations  string `json:"observations,omitempty"`
}

func (r Requirement) HasWorkOrder() bool     { return r.WorkOrder != nil }
func (r Requirement) HasReception() bool     { return r.ReceptionDate != nil }
func (r Requirement) HasPaymentReport() bool { return r.PaymentReport != nil }

// Validate checks every date field so later comparisons never see malformed strings
func (r Requirement) Validate() error {
	type field struct {
		name string
		d    Date
	}
	fields := []field{
		{"start date", r.StartDate},
		{"registration date", r.RegisteredDate},
		{"due date", r.DueDate},
	}
	if r.ReceptionDate != nil {
		fields = append(fields, field{"reception date", *r.ReceptionDate})
	}
	for _, f := range fields {
		if _, err := ParseDate(string(f.d)); err != nil {
			return fmt.Errorf("requirement %d: %s: %w", r.ID, f.name, err)
		}
	}
	return nil
}

type Garden struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CostItem struct {
	Item      string          `json:"item"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Location struct {
	GardenCode string `json:"garden_code"`
	Name       string `json:"name"`
}

// Document is a work order or payment report header
type Document struct {
	Code       string          `json:"code"`
	GardenCode string          `json:"garden_code"`
	IssuedAt   string          `json:"issued_at"`
	Total      decimal.Decimal `json:"total"`
	State      string          `json:"state"`
}

// Dataset is one imported document bound to exactly one slot
type Dataset struct {
	Slot       Slot      `json:"slot"`
	Format     string    `json:"format"`
	ExportedAt string    `json:"exported_at,omitempty"`
	ImportedAt time.Time `json:"imported_at"`

	Gardens        []Garden      `json:"gardens"`
	CostItems      []CostItem    `json:"cost_items"`
	Locations      []Location    `json:"locations"`
	Requirements   []Requirement `json:"requirements"`
	WorkOrders     []Document    `json:"work_orders,omitempty"`
	PaymentReports []Document    `json:"payment_reports,omitempty"`
}

const unknownName = "Desconocido"

// GardenName returns the catalog name for a garden code
func (d Dataset) GardenName(code string) string {
	for _, g := range d.Gardens {
		if g.Code == code {
			return g.Name
		}
	}
	return unknownName
}

// CostItemFor returns the catalog entry for an item code
func (d Dataset) CostItemFor(item string) (CostItem, bool) {
	for _, c := range d.CostItems {
		if c.Item == item {
			return c, true
		}
	}
	return CostItem{Item: item, Name: unknownName}, false
}

// GardenCodes returns the catalog garden codes in catalog order
func (d Dataset) GardenCodes() []string {
	codes := make([]string, 0, len(d.Gardens))
	for _, g := range d.Gardens {
		codes = append(codes, g.Code)
	}
	return codes
}

type DatasetStats struct {
	Requirements   int `json:"requirements"`
	WorkOrders     int `json:"work_orders"`
	PaymentReports int `json:"payment_reports"`
	Gardens        int `json:"gardens"`
	CostItems      int `json:"cost_items"`
	Locations      int `json:"locations"`
}

func (d Dataset) Stats() DatasetStats {
	return DatasetStats{
		Requirements:   len(d.Requirements),
		WorkOrders:     len(d.WorkOrders),
		PaymentReports: len(d.PaymentReports),
		Gardens:        len(d.Gardens),
		CostItems:      len(d.CostItems),
		Locations:      len(d.Locations),
	}
}
