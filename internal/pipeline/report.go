package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"salesetl/internal/quality"
)

// WriteReport renders the run report and writes it to the configured path,
// replacing any report from a prior run.
func (r *Runner) WriteReport() error {
	report := r.renderReport(time.Now())
	if err := os.WriteFile(r.cfg.Pipeline.ReportPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("pipeline: write report: %w", err)
	}
	r.log.Info("wrote pipeline report")
	return nil
}

func (r *Runner) renderReport(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline Execution Report\nJob: %s\nGenerated: %s\n\n",
		r.cfg.Job, now.Format(time.RFC3339))

	b.WriteString("Stages:\n")
	for _, res := range r.results {
		status := "OK"
		if !res.OK {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  %-10s %-7s %s\n", res.Name, status, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Fprintf(&b, "             error: %v\n", res.Err)
		}
	}

	if len(r.checkResults) > 0 {
		b.WriteString("\n")
		b.WriteString(quality.Summary(r.checkResults))
	}
	return b.String()
}
