// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "warehouse.table"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values;
// callers decide whether warnings are fatal.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	dirs := []struct{ path, val string }{
		{"data.raw_dir", c.Data.RawDir},
		{"data.bronze_dir", c.Data.BronzeDir},
		{"data.silver_dir", c.Data.SilverDir},
		{"data.gold_dir", c.Data.GoldDir},
	}
	for _, d := range dirs {
		if strings.TrimSpace(d.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     d.path,
				Message:  "layer directory must not be empty",
			})
		}
	}

	if c.Generator.Products <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "generator.products",
			Message:  "must be > 0",
		})
	}
	if c.Generator.Sales <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "generator.sales",
			Message:  "must be > 0",
		})
	}

	if strings.TrimSpace(c.Warehouse.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.table",
			Message:  "warehouse table name must not be empty",
		})
	}
	if strings.Contains(c.Warehouse.Table, " ") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.table",
			Message:  "warehouse table name must not contain spaces",
		})
	}

	switch c.Metrics.Backend {
	case "", "none", "pushgateway", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown backend %q; metrics will be disabled", c.Metrics.Backend),
		})
	}
	if c.Metrics.Backend == "pushgateway" && strings.TrimSpace(c.Metrics.PushgatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.pushgateway_url",
			Message:  "required when metrics.backend is pushgateway",
		})
	}
	if c.Metrics.Backend == "datadog" && strings.TrimSpace(c.Metrics.StatsdAddr) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.statsd_addr",
			Message:  "required when metrics.backend is datadog",
		})
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown format %q; json will be used", c.Log.Format),
		})
	}

	return issues
}
