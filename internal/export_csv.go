package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// consolidatedHeaders are the column names of the consolidated export, kept
// compatible with the column names of the legacy export files
var consolidatedHeaders = []string{
	"contrato", "linea", "id",
	"jardin_codigo", "jardin_nombre", "recinto",
	"partida_item", "partida_nombre", "partida_unidad",
	"cantidad", "plazo", "plazo_adicional",
	"descripcion", "observaciones",
	"precio_unitario", "precio_total",
	"fecha_inicio", "plazo_total", "fecha_limite", "fecha_registro",
	"estado", "ot_id", "fecha_recepcion", "dias_atraso",
	"multa", "a_pago", "informe_pago_id", "estado_calculado",
}

// WriteConsolidatedCSV writes every requirement of every dataset, in load order,
// with its slot, resolved status, days overdue and payable amount
func WriteConsolidatedCSV(w io.Writer, datasets []Dataset, today Date) error {
	// BOM so spreadsheet apps pick UTF-8 for the accented names
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(consolidatedHeaders); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, ds := range datasets {
		for _, req := range ds.Requirements {
			st := Classify(req, today)
			item, _ := ds.CostItemFor(req.ItemCode)
			record := []string{
				string(ds.Slot.Contract),
				string(ds.Slot.Line),
				strconv.Itoa(req.ID),
				req.GardenCode,
				ds.GardenName(req.GardenCode),
				req.Location,
				req.ItemCode,
				item.Name,
				item.Unit,
				req.Quantity.String(),
				strconv.Itoa(req.BaseTerm),
				strconv.Itoa(req.AdditionalTerm),
				req.Description,
				req.Observations,
				req.UnitPrice.String(),
				req.TotalPrice.String(),
				req.StartDate.String(),
				strconv.Itoa(req.TotalTerm),
				req.DueDate.String(),
				req.RegisteredDate.String(),
				req.RecordedState,
				deref(req.WorkOrder),
				optionalDate(req.ReceptionDate),
				strconv.Itoa(DaysOverdue(req, today)),
				req.Penalty.String(),
				AmountPayable(req, st).String(),
				deref(req.PaymentReport),
				string(st),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing requirement %d: %w", req.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the consolidated CSV file to path
func ExportCSV(path string, datasets []Dataset, today Date) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteConsolidatedCSV(f, datasets, today); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func optionalDate(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
