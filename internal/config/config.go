// Package config provides the typed configuration model for the sales
// pipeline.
//
// Configuration is loaded from:
//  1. config.yaml (optional, searched in . and ./configs)
//  2. Environment variables (nested keys map as DATA_SILVER_DIR, LOG_LEVEL, ...)
//  3. Defaults
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Job       string          `mapstructure:"job"`
	Data      DataConfig      `mapstructure:"data"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// DataConfig names the staged layer directories and the per-layer artifact
// names. The artifacts are fixed-path: each run fully replaces them.
type DataConfig struct {
	RawDir    string `mapstructure:"raw_dir"`
	BronzeDir string `mapstructure:"bronze_dir"`
	SilverDir string `mapstructure:"silver_dir"`
	GoldDir   string `mapstructure:"gold_dir"`
}

// SalesRaw returns the raw-layer sales artifact path.
func (d DataConfig) SalesRaw() string { return filepath.Join(d.RawDir, "sales_data.json") }

// ProductsRaw returns the raw-layer products artifact path.
func (d DataConfig) ProductsRaw() string { return filepath.Join(d.RawDir, "product_data.json") }

// SalesBronze returns the bronze-layer sales artifact path.
func (d DataConfig) SalesBronze() string { return filepath.Join(d.BronzeDir, "sales_data.json") }

// ProductsBronze returns the bronze-layer products artifact path.
func (d DataConfig) ProductsBronze() string { return filepath.Join(d.BronzeDir, "product_data.json") }

// Snapshot returns the silver-layer enriched snapshot path.
func (d DataConfig) Snapshot() string {
	return filepath.Join(d.SilverDir, "transformed_sales.parquet")
}

// Dirs returns every layer directory, for startup creation.
func (d DataConfig) Dirs() []string {
	return []string{d.RawDir, d.BronzeDir, d.SilverDir, d.GoldDir}
}

// GeneratorConfig sizes the synthetic data set.
type GeneratorConfig struct {
	Products int    `mapstructure:"products"`
	Sales    int    `mapstructure:"sales"`
	Seed     uint64 `mapstructure:"seed"` // 0 = random
}

// WarehouseConfig locates the gold-layer store.
type WarehouseConfig struct {
	Path  string `mapstructure:"path"` // database file; empty derives from data.gold_dir
	Table string `mapstructure:"table"`
}

// PipelineConfig controls orchestration behavior.
type PipelineConfig struct {
	StopOnFailure bool   `mapstructure:"stop_on_failure"`
	ReportPath    string `mapstructure:"report_path"`
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend        string `mapstructure:"backend"` // "pushgateway", "datadog" or "none"
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	StatsdAddr     string `mapstructure:"statsd_addr"` // DogStatsD address for the datadog backend
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Nested keys map to env vars: data.silver_dir -> DATA_SILVER_DIR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Warehouse.Path == "" {
		cfg.Warehouse.Path = filepath.Join(cfg.Data.GoldDir, "sales_warehouse.db")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("job", "sales_etl")

	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.bronze_dir", "data/bronze")
	v.SetDefault("data.silver_dir", "data/silver")
	v.SetDefault("data.gold_dir", "data/gold")

	v.SetDefault("generator.products", 100)
	v.SetDefault("generator.sales", 1000)
	v.SetDefault("generator.seed", 0)

	v.SetDefault("warehouse.table", "sales_data")

	v.SetDefault("pipeline.stop_on_failure", true)
	v.SetDefault("pipeline.report_path", "logs/pipeline_report.txt")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "http://localhost:9091")
	v.SetDefault("metrics.statsd_addr", "127.0.0.1:8125")
}
