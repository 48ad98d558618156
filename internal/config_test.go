package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg, err := NewDefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Currency != "CLP" || cfg.Locale != "es-CL" {
		t.Errorf("currency/locale = %s/%s, want CLP/es-CL", cfg.Currency, cfg.Locale)
	}
	if cfg.DefaultViewMode() != ViewCount {
		t.Errorf("view mode = %s, want count", cfg.DefaultViewMode())
	}
	if cfg.DefaultGranularity() != Monthly {
		t.Errorf("granularity = %s, want monthly", cfg.DefaultGranularity())
	}
	if got := len(cfg.DefaultMatrixStatuses()); got != len(AllStatuses) {
		t.Errorf("matrix statuses = %d, want all %d", got, len(AllStatuses))
	}
	if cfg.StorePath == "" {
		t.Error("expected a default store path")
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:    "empty file uses defaults",
			content: "",
			check: func(t *testing.T, cfg *Config) {
				if cfg.DefaultViewMode() != ViewCount {
					t.Errorf("view mode = %s", cfg.DefaultViewMode())
				}
			},
		},
		{
			name: "all settings",
			content: `
store_path: /tmp/flad-test.db
currency: usd
locale: en-US
log_level: debug
log_format: json
view_mode: amount
granularity: weekly
matrix_statuses: [overdue, in_progress]
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.StorePath != "/tmp/flad-test.db" {
					t.Errorf("store path = %s", cfg.StorePath)
				}
				if cfg.DefaultViewMode() != ViewAmount {
					t.Errorf("view mode = %s", cfg.DefaultViewMode())
				}
				if cfg.DefaultGranularity() != Weekly {
					t.Errorf("granularity = %s", cfg.DefaultGranularity())
				}
				statuses := cfg.DefaultMatrixStatuses()
				if len(statuses) != 2 || !statuses.Has(StatusOverdue) || !statuses.Has(StatusInProgress) {
					t.Errorf("matrix statuses = %v", statuses.Sorted())
				}
			},
		},
		{
			name:    "home relative store path",
			content: "store_path: ~/data/flad.db\n",
			check: func(t *testing.T, cfg *Config) {
				home, err := os.UserHomeDir()
				if err != nil {
					t.Skip("no home directory")
				}
				if cfg.StorePath != filepath.Join(home, "data", "flad.db") {
					t.Errorf("store path = %s", cfg.StorePath)
				}
			},
		},
		{"invalid view mode", "view_mode: pie\n", nil, true},
		{"invalid granularity", "granularity: daily\n", nil, true},
		{"invalid status", "matrix_statuses: [pagados]\n", nil, true},
		{"invalid yaml", "view_mode: [\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("FLAD_STORE_PATH", "/tmp/env.db")
	t.Setenv("FLAD_LOG_LEVEL", "warn")
	t.Setenv("FLAD_CURRENCY", "EUR")

	cfg, err := NewDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorePath != "/tmp/env.db" || cfg.LogLevel != "warn" || cfg.Currency != "EUR" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, _ := NewDefaultConfig()
	cfg.ViewMode = "amount"
	cfg.MatrixStatuses = []string{"paid"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.DefaultViewMode() != ViewAmount {
		t.Errorf("view mode = %s", loaded.DefaultViewMode())
	}
	if got := loaded.DefaultMatrixStatuses().Sorted(); len(got) != 1 || got[0] != StatusPaid {
		t.Errorf("matrix statuses = %v", got)
	}
}
