package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Job != "sales_etl" {
		t.Fatalf("Job = %q, want %q", cfg.Job, "sales_etl")
	}
	if cfg.Data.SilverDir != "data/silver" {
		t.Fatalf("Data.SilverDir = %q, want %q", cfg.Data.SilverDir, "data/silver")
	}
	if got, want := cfg.Data.Snapshot(), filepath.Join("data/silver", "transformed_sales.parquet"); got != want {
		t.Fatalf("Snapshot() = %q, want %q", got, want)
	}
	if cfg.Warehouse.Table != "sales_data" {
		t.Fatalf("Warehouse.Table = %q, want %q", cfg.Warehouse.Table, "sales_data")
	}
	// warehouse.path derives from the gold dir when unset.
	if got, want := cfg.Warehouse.Path, filepath.Join("data/gold", "sales_warehouse.db"); got != want {
		t.Fatalf("Warehouse.Path = %q, want %q", got, want)
	}
	if !cfg.Pipeline.StopOnFailure {
		t.Fatalf("Pipeline.StopOnFailure = false, want true by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
job: nightly
data:
  silver_dir: /tmp/silver
generator:
  products: 5
  sales: 50
warehouse:
  path: /tmp/wh.db
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if cfg.Job != "nightly" {
		t.Fatalf("Job = %q, want %q", cfg.Job, "nightly")
	}
	if cfg.Data.SilverDir != "/tmp/silver" {
		t.Fatalf("Data.SilverDir = %q, want /tmp/silver", cfg.Data.SilverDir)
	}
	if cfg.Generator.Products != 5 || cfg.Generator.Sales != 50 {
		t.Fatalf("Generator = %+v, want products=5 sales=50", cfg.Generator)
	}
	if cfg.Warehouse.Path != "/tmp/wh.db" {
		t.Fatalf("Warehouse.Path = %q, want /tmp/wh.db", cfg.Warehouse.Path)
	}
	// Untouched keys keep their defaults.
	if cfg.Data.BronzeDir != "data/bronze" {
		t.Fatalf("Data.BronzeDir = %q, want default data/bronze", cfg.Data.BronzeDir)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("Load() error = nil, want error for missing explicit config file")
	}
}
