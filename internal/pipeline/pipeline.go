// Package pipeline orchestrates the end-to-end batch run.
//
// Stages execute strictly in order: generate, ingest, transform, quality,
// warehouse. Each stage yields a boolean result and a duration. A quality
// FAILED verdict is a legitimate stage result, not an error; whether any
// failed stage halts the run is governed by the stop_on_failure setting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/generate"
	"salesetl/internal/ingest"
	"salesetl/internal/metrics"
	"salesetl/internal/quality"
	"salesetl/internal/transform"
	"salesetl/internal/warehouse"
)

// ErrChecksFailed marks a run halted because the quality gate failed while
// stop_on_failure was set.
var ErrChecksFailed = errors.New("quality checks failed")

// StageResult records one stage's outcome.
type StageResult struct {
	Name     string
	OK       bool
	Err      error
	Duration time.Duration
}

// Runner drives the ordered stages of one pipeline run.
type Runner struct {
	cfg *config.Config
	log *zap.Logger

	results      []StageResult
	checkResults []quality.CheckResult
}

// New returns a Runner for the given configuration.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// EnsureDirs creates the layer directories and the report directory.
func (r *Runner) EnsureDirs() error {
	dirs := append(r.cfg.Data.Dirs(), filepath.Dir(r.cfg.Pipeline.ReportPath))
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: create %s: %w", dir, err)
		}
	}
	return nil
}

type stage struct {
	name string
	run  func(ctx context.Context) (bool, error)
}

func (r *Runner) stages() []stage {
	return []stage{
		{"generate", r.runGenerate},
		{"ingest", r.runIngest},
		{"transform", r.runTransform},
		{"quality", r.runQuality},
		{"warehouse", r.runWarehouse},
	}
}

// Run executes the stages in order. It returns an error when a stage errored
// or when stop_on_failure halted the run on a failed quality gate. Stage
// results accumulate either way and remain available via Results.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()
	var halted error

	for _, s := range r.stages() {
		stageStart := time.Now()
		ok, err := s.run(ctx)
		d := time.Since(stageStart)

		// A failed gate counts as a stage failure in the metrics even
		// though it carries no error.
		metricErr := err
		if metricErr == nil && !ok {
			metricErr = ErrChecksFailed
		}
		metrics.RecordStage(r.cfg.Job, s.name, metricErr, d)

		r.results = append(r.results, StageResult{Name: s.name, OK: ok, Err: err, Duration: d})
		r.log.Info("stage finished",
			zap.String("stage", s.name),
			zap.Bool("ok", ok),
			zap.Duration("duration", d))

		if err != nil {
			r.log.Error("stage failed", zap.String("stage", s.name), zap.Error(err))
			if r.cfg.Pipeline.StopOnFailure {
				halted = fmt.Errorf("pipeline: stage %s: %w", s.name, err)
				break
			}
			continue
		}
		if !ok && r.cfg.Pipeline.StopOnFailure {
			r.log.Error("stage result failed, halting", zap.String("stage", s.name))
			halted = fmt.Errorf("pipeline: stage %s: %w", s.name, ErrChecksFailed)
			break
		}
	}

	r.log.Info("pipeline finished",
		zap.Duration("total_duration", time.Since(started)),
		zap.Strings("failed_stages", r.Failed()))
	return halted
}

// Results returns the per-stage results in execution order.
func (r *Runner) Results() []StageResult { return r.results }

// CheckResults returns the quality gate's results, if the gate ran.
func (r *Runner) CheckResults() []quality.CheckResult { return r.checkResults }

// Failed enumerates the names of stages that errored or reported failure.
func (r *Runner) Failed() []string {
	var failed []string
	for _, res := range r.results {
		if !res.OK {
			failed = append(failed, res.Name)
		}
	}
	return failed
}

func (r *Runner) runGenerate(ctx context.Context) (bool, error) {
	gen := generate.New(r.cfg.Data.RawDir, r.cfg.Generator.Seed, r.log.Named("generate"))
	if err := gen.Run(r.cfg.Generator.Products, r.cfg.Generator.Sales); err != nil {
		return false, err
	}
	metrics.RecordRows(r.cfg.Job, "generated_products", int64(r.cfg.Generator.Products))
	metrics.RecordRows(r.cfg.Job, "generated_sales", int64(r.cfg.Generator.Sales))
	return true, nil
}

func (r *Runner) runIngest(ctx context.Context) (bool, error) {
	ing := ingest.New(r.cfg.Data.RawDir, r.cfg.Data.BronzeDir, r.log.Named("ingest"))
	if err := ing.Run(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Runner) runTransform(ctx context.Context) (bool, error) {
	tr := transform.New(r.cfg.Data.BronzeDir, r.cfg.Data.Snapshot(), r.log.Named("transform"))
	if err := tr.Run(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Runner) runQuality(ctx context.Context) (bool, error) {
	gate := quality.New(r.cfg.Data.BronzeDir, r.cfg.Data.Snapshot(), r.log.Named("quality"))
	allPassed, err := gate.Run()
	r.checkResults = gate.Results()
	for _, res := range r.checkResults {
		metrics.RecordCheck(r.cfg.Job, res.CheckName, res.Status == quality.StatusPassed)
	}
	if err != nil {
		return false, err
	}
	return allPassed, nil
}

func (r *Runner) runWarehouse(ctx context.Context) (bool, error) {
	loader, closeFn, err := warehouse.NewLoader(ctx, warehouse.Config{
		Path:  r.cfg.Warehouse.Path,
		Table: r.cfg.Warehouse.Table,
	}, r.log.Named("warehouse"))
	if err != nil {
		return false, err
	}
	defer closeFn()

	if err := loader.Run(ctx, r.cfg.Data.Snapshot()); err != nil {
		return false, err
	}
	return true, nil
}
