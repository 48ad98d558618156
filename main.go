package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/flad-analysis/internal"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Params struct {
	Config     string   `descr:"Path to config file (default: ~/.flad-analysis/config.yaml)" optional:"true"`
	InitConfig bool     `descr:"Write the effective config to the config path and exit" optional:"true"`
	Store      string   `descr:"Path to the SQLite store (overrides config)" optional:"true"`
	Import     []string `descr:"Import a dataset into a slot: contract:line=[format:]path (repeatable)" optional:"true"`
	Select     []string `descr:"Garden filter of a slot: contract:line=CODE,... (an empty list excludes the slot)" optional:"true"`
	Remove     []string `descr:"Remove the dataset of a slot: contract:line" optional:"true"`
	Clear      bool     `descr:"Remove every dataset and selection first" optional:"true"`
	View       string   `descr:"View to print" alts:"summary,series,matrix,datasets" strict:"true" default:"summary"`
	Mode       string   `descr:"Value mode (default from config)" alts:"count,amount" optional:"true"`
	Period     string   `descr:"Series granularity (default from config)" alts:"monthly,weekly" optional:"true"`
	Statuses   []string `descr:"Matrix status filter: all, none or status names (default from config)" optional:"true"`
	Expand     []string `descr:"Matrix lines to drill down by garden, e.g. linea_1" optional:"true"`
	Today      string   `descr:"Reference date YYYY-MM-DD (default: current date)" optional:"true"`
	Output     string   `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Xlsx       string   `descr:"Write an XLSX workbook with every view and charts" optional:"true"`
	Pdf        string   `descr:"Write a PDF report with the summary, series and matrix" optional:"true"`
	Csv        string   `descr:"Write the consolidated CSV of all requirements" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("flad-analysis").
		WithShort("Analyze maintenance contract requirements by status, period and contract/line").
		WithLong("Imports JSON exports of maintenance contracts (one per contract and budget line), derives the lifecycle status of every requirement " +
			"(paid, received, overdue, in progress, not started) and prints category totals, a monthly or weekly series and a line x contract matrix, " +
			"by count or by payable amount. Imported datasets and garden selections are kept in a local SQLite store.").
		WithRunFunc(func(params *Params) {
			if err := run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params, out io.Writer) error {
	_ = godotenv.Load()

	configPath := params.Config
	if configPath == "" {
		configPath = internal.DefaultConfigPath()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if params.Store != "" {
		cfg.StorePath = params.Store
	}
	if params.InitConfig {
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote config to %s\n", configPath)
		return nil
	}

	log.Logger = internal.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	decimal.MarshalJSONWithoutQuotes = true
	jsonOutput := params.Output == "json"

	today := internal.Today(time.Now())
	if params.Today != "" {
		if today, err = internal.ParseDate(params.Today); err != nil {
			return fmt.Errorf("parsing --today: %w", err)
		}
	}

	store, err := internal.OpenStore(cfg.StorePath, log.Logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := applyChanges(ctx, store, params, out, jsonOutput); err != nil {
		return err
	}

	datasets, err := store.Datasets(ctx)
	if err != nil {
		return err
	}
	sel, err := store.Selection(ctx)
	if err != nil {
		return err
	}

	mode := cfg.DefaultViewMode()
	if params.Mode != "" {
		if mode, err = internal.ParseViewMode(params.Mode); err != nil {
			return err
		}
	}
	granularity := cfg.DefaultGranularity()
	if params.Period != "" {
		if granularity, err = internal.ParseGranularity(params.Period); err != nil {
			return err
		}
	}
	statuses := cfg.DefaultMatrixStatuses()
	if len(params.Statuses) > 0 {
		if statuses, err = internal.ParseStatusSet(params.Statuses); err != nil {
			return err
		}
	}

	reqs := sel.Requirements(datasets)
	series, err := internal.GroupByPeriod(reqs, today, mode, granularity)
	if err != nil {
		return err
	}
	in := internal.MatrixInput{
		Datasets:  datasets,
		Selection: sel,
		Statuses:  statuses,
		Mode:      mode,
		Today:     today,
	}
	report := internal.Report{
		Today:     today,
		Totals:    internal.Aggregate(reqs, today, mode),
		Series:    series,
		Matrix:    internal.BuildMatrix(in),
		Expanded:  map[internal.Line][]internal.GardenRow{},
		Datasets:  datasets,
		Selection: sel,
	}
	for _, arg := range params.Expand {
		line, err := internal.ParseLine(arg)
		if err != nil {
			return err
		}
		report.Expanded[line] = internal.ExpandLine(in, line)
	}

	if params.Xlsx != "" {
		if err := internal.ExportXLSX(params.Xlsx, report); err != nil {
			return fmt.Errorf("exporting workbook: %w", err)
		}
		log.Info().Str("path", params.Xlsx).Msg("workbook written")
	}
	if params.Pdf != "" {
		if err := internal.ExportPDF(params.Pdf, report, internal.CurrencyFromConfig(cfg)); err != nil {
			return fmt.Errorf("exporting PDF: %w", err)
		}
		log.Info().Str("path", params.Pdf).Msg("PDF report written")
	}
	if params.Csv != "" {
		if err := internal.ExportCSV(params.Csv, datasets, today); err != nil {
			return fmt.Errorf("exporting CSV: %w", err)
		}
		log.Info().Str("path", params.Csv).Msg("consolidated CSV written")
	}

	if jsonOutput {
		return internal.PrintJSON(out, jsonView(params.View, report))
	}

	cur := internal.CurrencyFromConfig(cfg)
	switch params.View {
	case "series":
		internal.PrintSeriesTable(out, report.Series, cur)
	case "matrix":
		internal.PrintMatrixTable(out, report.Matrix, report.Expanded, cur)
	case "datasets":
		internal.PrintDatasetsTable(out, datasets, sel)
	default:
		internal.PrintSummaryTable(out, report.Totals, cur)
	}
	return nil
}

func loadConfig(path string) (*internal.Config, error) {
	cfg, err := internal.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = internal.NewDefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyChanges runs the store mutations in a fixed order: clear, remove, import, select
func applyChanges(ctx context.Context, store *internal.Store, params *Params, out io.Writer, quiet bool) error {
	if params.Clear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
	}

	for _, arg := range params.Remove {
		slot, err := internal.ParseSlot(arg)
		if err != nil {
			return err
		}
		if err := store.RemoveDataset(ctx, slot); err != nil {
			return err
		}
	}

	for _, arg := range rejoinArgs(params.Import) {
		slot, format, path, err := internal.ParseImportArg(arg)
		if err != nil {
			return err
		}
		ds, err := internal.ParseFile(path, format)
		if err != nil {
			return fmt.Errorf("importing %s: %w", slot, err)
		}
		ds.Slot = slot
		replaced, err := store.ImportDataset(ctx, ds)
		if err != nil {
			return err
		}
		if !quiet {
			verb := "Loaded"
			if replaced {
				verb = "Replaced"
			}
			fmt.Fprintf(out, "%s %s: %d requirements (%s)\n", verb, slot.Label(), len(ds.Requirements), ds.Format)
		}
	}

	for _, arg := range rejoinArgs(params.Select) {
		slot, codes, err := internal.ParseSelectionArg(arg)
		if err != nil {
			return err
		}
		if _, err := store.Dataset(ctx, slot); err != nil {
			return fmt.Errorf("selecting gardens: %w", err)
		}
		if err := store.SaveSelection(ctx, slot, codes); err != nil {
			return err
		}
	}
	return nil
}

// rejoinArgs undoes the comma splitting of slice flags: a piece without '=' belongs
// to the previous "slot=..." argument
func rejoinArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if len(out) > 0 && !strings.Contains(a, "=") {
			out[len(out)-1] += "," + a
			continue
		}
		out = append(out, a)
	}
	return out
}

func jsonView(view string, r internal.Report) internal.JSONOutput {
	o := internal.JSONOutput{View: view, Today: r.Today}
	switch view {
	case "series":
		o.Series = &r.Series
	case "matrix":
		o.Matrix = &r.Matrix
		if len(r.Expanded) > 0 {
			o.Expanded = r.Expanded
		}
	case "datasets":
		o.Datasets = internal.DatasetsJSON(r.Datasets, r.Selection)
	default:
		o.View = "summary"
		o.Summary = &r.Totals
	}
	return o
}
