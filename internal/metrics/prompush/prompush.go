// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the pipeline labels (job, stage, status, kind, check) onto
//     Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint. Batch runs exit before a scraper would
//     ever see them, so push is the natural delivery model.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends without changes to the core pipeline.
package prompush

import (
	"fmt"

	"salesetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Stage-level metrics
	stageCounter  *prometheus.CounterVec // "pipeline_stage_total"
	stageDuration *prometheus.SummaryVec // "pipeline_stage_duration_seconds"

	// Row- and check-level metrics
	rowCounter   *prometheus.CounterVec // "pipeline_rows_total"
	checkCounter *prometheus.CounterVec // "pipeline_quality_checks_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "sales_etl"
	}

	reg := prometheus.NewRegistry()

	// The job label doubles as the Pushgateway "job" grouping key, so the
	// collectors only carry the remaining dynamic labels.
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_total",
			Help: "Total number of pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "pipeline_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)

	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rows_total",
			Help: "Row-level counts per kind (generated_sales, ingested, enriched, loaded, etc.).",
		},
		[]string{"kind"},
	)

	checkCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_quality_checks_total",
			Help: "Quality check verdicts, partitioned by check name and status.",
		},
		[]string{"check", "status"},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(checkCounter); err != nil {
		return nil, fmt.Errorf("prompush: register check counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		checkCounter:  checkCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "pipeline_stage_total":
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)

	case "pipeline_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case "pipeline_quality_checks_total":
		if b.checkCounter == nil {
			return
		}
		b.checkCounter.WithLabelValues(labels["check"], labels["status"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "pipeline_stage_duration_seconds" || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
