package internal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists imported datasets and garden selections. At most one dataset
// is kept per slot; datasets are returned in load order.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// OpenStore opens (creating if needed) the SQLite store at path and migrates it
func OpenStore(path string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, log: logger, now: time.Now}, nil
}

func runMigrations(path string) error {
	// separate connection so migrate can close it without touching the store's pool
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ImportDataset stores ds in its slot, replacing any previous dataset of that slot
// together with its garden selection. Reports whether a dataset was replaced.
func (s *Store) ImportDataset(ctx context.Context, ds Dataset) (bool, error) {
	if err := ds.Slot.Validate(); err != nil {
		return false, err
	}
	if ds.ImportedAt.IsZero() {
		ds.ImportedAt = s.now().UTC()
	}
	payload, err := json.Marshal(ds)
	if err != nil {
		return false, fmt.Errorf("encode dataset: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE contract = ? AND line = ?`, ds.Slot.Contract, ds.Slot.Line)
	if err != nil {
		return false, fmt.Errorf("remove previous dataset: %w", err)
	}
	removed, _ := res.RowsAffected()
	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE contract = ? AND line = ?`, ds.Slot.Contract, ds.Slot.Line); err != nil {
		return false, fmt.Errorf("reset selection: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (contract, line, format, exported_at, imported_at, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		ds.Slot.Contract, ds.Slot.Line, ds.Format, ds.ExportedAt, ds.ImportedAt.Format(time.RFC3339), string(payload),
	); err != nil {
		return false, fmt.Errorf("insert dataset: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit import: %w", err)
	}

	replaced := removed > 0
	event := "dataset imported"
	if replaced {
		event = "dataset replaced"
	}
	s.log.Info().
		Str("slot", ds.Slot.String()).
		Str("format", ds.Format).
		Str("exported_at", ds.ExportedAt).
		Int("requirements", len(ds.Requirements)).
		Int("gardens", len(ds.Gardens)).
		Msg(event)
	return replaced, nil
}

// Datasets returns every stored dataset in load order
func (s *Store) Datasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM datasets ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		var ds Dataset
		if err := json.Unmarshal([]byte(payload), &ds); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// Dataset returns the dataset stored for a slot
func (s *Store) Dataset(ctx context.Context, slot Slot) (Dataset, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM datasets WHERE contract = ? AND line = ?`, slot.Contract, slot.Line).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, slot)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("get dataset %s: %w", slot, err)
	}
	var ds Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// RemoveDataset deletes the dataset and selection of a slot
func (s *Store) RemoveDataset(ctx context.Context, slot Slot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE contract = ? AND line = ?`, slot.Contract, slot.Line)
	if err != nil {
		return fmt.Errorf("remove dataset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, slot)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE contract = ? AND line = ?`, slot.Contract, slot.Line); err != nil {
		return fmt.Errorf("remove selection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	s.log.Info().Str("slot", slot.String()).Msg("dataset removed")
	return nil
}

// Clear removes every dataset and selection
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"selections", "datasets"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	s.log.Warn().Msg("store cleared")
	return nil
}

// Selection returns the stored garden filters. Slots without a stored filter are absent.
func (s *Store) Selection(ctx context.Context) (Selection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT contract, line, garden_codes FROM selections`)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	sel := make(Selection)
	for rows.Next() {
		var slot Slot
		var codesJSON string
		if err := rows.Scan(&slot.Contract, &slot.Line, &codesJSON); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		var codes []string
		if err := json.Unmarshal([]byte(codesJSON), &codes); err != nil {
			return nil, fmt.Errorf("decode selection %s: %w", slot, err)
		}
		sel.Set(slot, codes)
	}
	return sel, rows.Err()
}

// SaveSelection stores the garden filter of a slot. An empty list is kept and excludes the slot.
func (s *Store) SaveSelection(ctx context.Context, slot Slot, codes []string) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	if codes == nil {
		codes = []string{}
	}
	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO selections (contract, line, garden_codes, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (contract, line) DO UPDATE SET garden_codes = excluded.garden_codes, updated_at = excluded.updated_at`,
		slot.Contract, slot.Line, string(codesJSON), s.now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save selection %s: %w", slot, err)
	}
	s.log.Info().Str("slot", slot.String()).Strs("gardens", codes).Msg("selection saved")
	return nil
}
