package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
)

func init() {
	text.DisableColors()
}

func testCurrency() Currency {
	return GetCurrencyWithLocale("CLP", language.AmericanEnglish)
}

func TestPrintSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	totals := Aggregate(sampleRequirements(), MustParseDate("2024-04-01"), ViewAmount)
	PrintSummaryTable(&buf, totals, testCurrency())

	out := buf.String()
	for _, want := range []string{"4 requirements", "Pagados", "Sin Curso", "$3,500", "$9,000", "38.9%", "Amount"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSeriesTable(t *testing.T) {
	var buf bytes.Buffer
	series, _ := GroupByPeriod(sampleRequirements(), MustParseDate("2024-04-01"), ViewCount, Monthly)
	PrintSeriesTable(&buf, series, testCurrency())

	out := buf.String()
	if !strings.Contains(out, "2024-02") || !strings.Contains(out, "2024-03") {
		t.Errorf("series output missing periods:\n%s", out)
	}
	if strings.Index(out, "2024-02") > strings.Index(out, "2024-03") {
		t.Error("periods out of order")
	}

	buf.Reset()
	PrintSeriesTable(&buf, Series{Rows: []PeriodRow{}}, testCurrency())
	if !strings.Contains(buf.String(), "No requirements") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}
}

func TestPrintMatrixTable(t *testing.T) {
	in := MatrixInput{
		Datasets: matrixDatasets(),
		Statuses: AllStatusSet(),
		Mode:     ViewCount,
		Today:    MustParseDate("2024-03-01"),
	}
	var buf bytes.Buffer
	PrintMatrixTable(&buf, BuildMatrix(in), map[Line][]GardenRow{Line1: ExpandLine(in, Line1)}, testCurrency())

	out := buf.String()
	for _, want := range []string{"Mantención", "Ascensores", "L1", "L5", "—", "J-01 Los Aromos", "75.0%", "4 requirements of 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("matrix output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	in.Statuses = StatusSet{}
	PrintMatrixTable(&buf, BuildMatrix(in), nil, testCurrency())
	if !strings.Contains(buf.String(), "No statuses selected") {
		t.Errorf("unexpected output for empty status set:\n%s", buf.String())
	}

	buf.Reset()
	in.Statuses = AllStatusSet()
	in.Datasets = nil
	PrintMatrixTable(&buf, BuildMatrix(in), nil, testCurrency())
	if !strings.Contains(buf.String(), "No datasets loaded") {
		t.Errorf("unexpected output without datasets:\n%s", buf.String())
	}
}

func TestPrintDatasetsTable(t *testing.T) {
	datasets := matrixDatasets()
	for i := range datasets {
		datasets[i].Format = "flat-json"
		datasets[i].ImportedAt = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	}
	sel := Selection{}
	sel.Set(datasets[0].Slot, []string{"J-01"})
	sel.Set(datasets[1].Slot, nil)

	var buf bytes.Buffer
	PrintDatasetsTable(&buf, datasets, sel)
	out := buf.String()
	for _, want := range []string{"Calefacción", "flat-json", "2024-06-01 09:30", "1/2", "none", "all", "3 of 16 slots loaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("datasets output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintDatasetsTable(&buf, nil, sel)
	if !strings.Contains(buf.String(), "No datasets loaded") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	datasets := matrixDatasets()
	out := JSONOutput{
		View:     "datasets",
		Today:    MustParseDate("2024-03-01"),
		Datasets: DatasetsJSON(datasets, Selection{}),
	}
	if err := PrintJSON(&buf, out); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"view\": \"datasets\"") {
		t.Errorf("expected indented JSON, got:\n%s", buf.String())
	}

	var decoded JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(decoded.Datasets))
	}
	if decoded.Datasets[0].Stats.Requirements != 3 {
		t.Errorf("requirements = %d, want 3", decoded.Datasets[0].Stats.Requirements)
	}
	if decoded.Datasets[0].Gardens == nil {
		t.Error("selected gardens should be an empty list, not null")
	}
}

func TestDatasetsJSON_FilterStates(t *testing.T) {
	datasets := matrixDatasets()
	sel := Selection{}
	sel.Set(datasets[1].Slot, nil)
	sel.Set(datasets[2].Slot, []string{"J-09"})

	got := DatasetsJSON(datasets, sel)
	if len(got) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(got))
	}

	tests := []struct {
		name     string
		filtered bool
		gardens  string
	}{
		{"unfiltered lists the whole catalog", false, "J-01,J-02"},
		{"excluded", true, ""},
		{"filtered", true, "J-09"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got[i].Filtered != tt.filtered {
				t.Errorf("filtered = %v, want %v", got[i].Filtered, tt.filtered)
			}
			if g := strings.Join(got[i].Gardens, ","); g != tt.gardens {
				t.Errorf("selected gardens = %q, want %q", g, tt.gardens)
			}
			if got[i].Gardens == nil {
				t.Error("selected gardens should never be null")
			}
		})
	}

	var buf bytes.Buffer
	if err := PrintJSON(&buf, got); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\"filtered\": false") || !strings.Contains(buf.String(), "\"selected_gardens\": []") {
		t.Errorf("unexpected JSON:\n%s", buf.String())
	}
}
