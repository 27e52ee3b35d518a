// Package quality runs the invariant checks that gate warehouse loading.
//
// The battery is a fixed slice of check specifications evaluated uniformly
// over the same inputs. Checks are independent and order-insensitive: all of
// them always run, each appends exactly one CheckResult, and a FAILED status
// is a normal outcome on legitimate data. Only an unreadable or structurally
// malformed input aborts the gate with an error.
//
// The gate only reports. Whether a failed gate halts the pipeline is the
// orchestrator's decision.
package quality

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"salesetl/internal/ingest"
	"salesetl/internal/schema"
	"salesetl/internal/transform"
)

// Status is the verdict of a single check.
type Status string

const (
	// StatusPassed means the check's invariant held.
	StatusPassed Status = "PASSED"
	// StatusFailed means the invariant was violated on otherwise loadable data.
	StatusFailed Status = "FAILED"
)

// CheckResult records one check's outcome. Results are collected in battery
// order, append-only, for the duration of one pipeline run.
type CheckResult struct {
	CheckName string
	Status    Status
	Details   string
}

// Inputs carries everything the battery evaluates: the product catalog from
// the bronze layer and the enriched snapshot from the silver layer.
type Inputs struct {
	Products []schema.Product
	Enriched []schema.EnrichedSale
}

// check pairs a name with a predicate over the inputs. The predicate returns
// pass/fail plus the human-readable count line for the report.
type check struct {
	name string
	run  func(in Inputs) (bool, string)
}

// battery returns the fixed check set. Adding a check means adding an entry
// here; the runner does not change.
func battery() []check {
	return []check{
		{
			name: "Missing Sale IDs",
			run: func(in Inputs) (bool, string) {
				var missing int
				for _, row := range in.Enriched {
					if row.SaleID == "" {
						missing++
					}
				}
				return missing == 0, fmt.Sprintf("Found %d missing sale IDs", missing)
			},
		},
		{
			name: "Negative Values",
			run: func(in Inputs) (bool, string) {
				var negQuantity, negPrice int
				for _, row := range in.Enriched {
					if row.Quantity < 0 {
						negQuantity++
					}
					if row.PriceSale < 0 {
						negPrice++
					}
				}
				return negQuantity == 0 && negPrice == 0,
					fmt.Sprintf("Found %d negative quantities and %d negative prices", negQuantity, negPrice)
			},
		},
		{
			name: "Product ID Consistency",
			run: func(in Inputs) (bool, string) {
				catalog := make(map[string]struct{}, len(in.Products))
				for _, p := range in.Products {
					catalog[p.ProductID] = struct{}{}
				}
				invalid := map[string]struct{}{}
				for _, row := range in.Enriched {
					if row.ProductID == nil {
						continue
					}
					if _, ok := catalog[*row.ProductID]; !ok {
						invalid[*row.ProductID] = struct{}{}
					}
				}
				return len(invalid) == 0, fmt.Sprintf("Found %d invalid product IDs", len(invalid))
			},
		},
		{
			name: "Total Sales Calculation",
			run: func(in Inputs) (bool, string) {
				// Headroom beyond the 0.01 tolerance so a difference of
				// exactly one cent is not failed by float64 representation.
				const tolerance = 0.01 + 1e-9
				var incorrect int
				for _, row := range in.Enriched {
					expected := float64(row.Quantity) * row.PriceSale
					if math.Abs(row.TotalSales-expected) > tolerance {
						incorrect++
					}
				}
				return incorrect == 0, fmt.Sprintf("Found %d incorrect total_sales calculations", incorrect)
			},
		},
	}
}

// Gate runs the battery and accumulates results.
type Gate struct {
	bronzeDir    string
	snapshotPath string
	log          *zap.Logger
	results      []CheckResult
}

// New returns a Gate reading the bronze layer and the silver snapshot.
func New(bronzeDir, snapshotPath string, log *zap.Logger) *Gate {
	return &Gate{
		bronzeDir:    bronzeDir,
		snapshotPath: snapshotPath,
		log:          log,
	}
}

// LoadInputs reads the product catalog and the enriched snapshot. Any failure
// here is fatal to the gate run: there is nothing to check.
func (g *Gate) LoadInputs() (Inputs, error) {
	_, products, err := ingest.ReadBronze(g.bronzeDir)
	if err != nil {
		return Inputs{}, fmt.Errorf("quality: %w", err)
	}
	enriched, err := transform.ReadSnapshot(g.snapshotPath)
	if err != nil {
		return Inputs{}, fmt.Errorf("quality: %w", err)
	}
	return Inputs{Products: products, Enriched: enriched}, nil
}

// RunChecks evaluates the full battery against the given inputs, appends one
// result per check, and returns the AND of all verdicts.
func (g *Gate) RunChecks(in Inputs) bool {
	allPassed := true
	for _, c := range battery() {
		passed, details := c.run(in)
		status := StatusPassed
		if !passed {
			status = StatusFailed
			allPassed = false
		}
		g.results = append(g.results, CheckResult{
			CheckName: c.name,
			Status:    status,
			Details:   details,
		})
		g.log.Info("quality check finished",
			zap.String("check", c.name),
			zap.String("status", string(status)),
			zap.String("details", details))
	}
	return allPassed
}

// Run loads the inputs and evaluates the battery. The bool is the overall
// verdict; the error is non-nil only when inputs could not be loaded.
func (g *Gate) Run() (bool, error) {
	in, err := g.LoadInputs()
	if err != nil {
		g.log.Error("loading quality inputs failed", zap.Error(err))
		return false, err
	}
	allPassed := g.RunChecks(in)
	g.log.Info("quality checks completed",
		zap.Bool("all_passed", allPassed),
		zap.Int("checks", len(g.results)))
	return allPassed, nil
}

// Results returns the accumulated check results in battery order.
func (g *Gate) Results() []CheckResult {
	return g.results
}
