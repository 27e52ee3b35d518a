package quality

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/schema"
)

func strptr(s string) *string { return &s }

func cleanInputs() Inputs {
	pid := "P1"
	price := 10.0
	name := "Widget"
	cat := "Home"
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pts := ts.Add(-time.Hour)
	return Inputs{
		Products: []schema.Product{
			{ProductID: "P1", ProductName: "Widget", Category: "Home"},
		},
		Enriched: []schema.EnrichedSale{
			{
				SaleID: "1", ProductID: &pid, SaleDate: "2023-01-01",
				Quantity: 2, PriceSale: 10.0, PriceProduct: &price,
				ProductName: &name, Category: &cat, TotalSales: 20.0,
				IngestionTimestampSale: ts, IngestionTimestampProduct: &pts,
			},
		},
	}
}

func resultByName(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()
	for _, r := range results {
		if r.CheckName == name {
			return r
		}
	}
	t.Fatalf("no result named %q in %v", name, results)
	return CheckResult{}
}

func TestAllChecksPassOnCleanData(t *testing.T) {
	t.Parallel()

	g := New("", "", zap.NewNop())
	if !g.RunChecks(cleanInputs()) {
		t.Fatalf("RunChecks() = false, want true on clean data: %v", g.Results())
	}
	if len(g.Results()) != 4 {
		t.Fatalf("results = %d, want 4", len(g.Results()))
	}
	for _, r := range g.Results() {
		if r.Status != StatusPassed {
			t.Fatalf("check %q = %s (%s), want PASSED", r.CheckName, r.Status, r.Details)
		}
	}
}

func TestMissingSaleIDFails(t *testing.T) {
	t.Parallel()

	in := cleanInputs()
	in.Enriched[0].SaleID = ""

	g := New("", "", zap.NewNop())
	if g.RunChecks(in) {
		t.Fatalf("RunChecks() = true, want false")
	}
	r := resultByName(t, g.Results(), "Missing Sale IDs")
	if r.Status != StatusFailed {
		t.Fatalf("Missing Sale IDs = %s, want FAILED", r.Status)
	}
	if !strings.Contains(r.Details, "Found 1 missing sale IDs") {
		t.Fatalf("details = %q, want count of 1", r.Details)
	}
}

func TestNegativeQuantityFailsOnlyThatCheck(t *testing.T) {
	t.Parallel()

	in := cleanInputs()
	in.Enriched[0].Quantity = -1
	// Keep the derived field consistent so only non-negativity trips.
	in.Enriched[0].TotalSales = -10.0

	g := New("", "", zap.NewNop())
	if g.RunChecks(in) {
		t.Fatalf("RunChecks() = true, want false")
	}

	r := resultByName(t, g.Results(), "Negative Values")
	if r.Status != StatusFailed {
		t.Fatalf("Negative Values = %s, want FAILED", r.Status)
	}
	if !strings.Contains(r.Details, "1 negative quantities and 0 negative prices") {
		t.Fatalf("details = %q, want 1 negative quantity reported", r.Details)
	}

	// All four checks still ran; the others are unaffected.
	if len(g.Results()) != 4 {
		t.Fatalf("results = %d, want 4", len(g.Results()))
	}
	for _, name := range []string{"Missing Sale IDs", "Product ID Consistency", "Total Sales Calculation"} {
		if got := resultByName(t, g.Results(), name).Status; got != StatusPassed {
			t.Fatalf("check %q = %s, want PASSED", name, got)
		}
	}
}

func TestUnknownProductIDFailsReferentialCheck(t *testing.T) {
	t.Parallel()

	in := cleanInputs()
	bad := "P9"
	in.Enriched[0].ProductID = &bad

	g := New("", "", zap.NewNop())
	if g.RunChecks(in) {
		t.Fatalf("RunChecks() = true, want false")
	}
	r := resultByName(t, g.Results(), "Product ID Consistency")
	if r.Status != StatusFailed {
		t.Fatalf("Product ID Consistency = %s, want FAILED", r.Status)
	}
	if !strings.Contains(r.Details, "Found 1 invalid product IDs") {
		t.Fatalf("details = %q, want 1 invalid ID", r.Details)
	}
}

func TestNullProductIDDoesNotTripReferentialCheck(t *testing.T) {
	t.Parallel()

	// Left-join rows with null product_id carry no value to validate.
	in := cleanInputs()
	in.Enriched[0].ProductID = nil

	g := New("", "", zap.NewNop())
	g.RunChecks(in)
	r := resultByName(t, g.Results(), "Product ID Consistency")
	if r.Status != StatusPassed {
		t.Fatalf("Product ID Consistency = %s, want PASSED for null product_id", r.Status)
	}
}

func TestTotalSalesToleranceBoundary(t *testing.T) {
	t.Parallel()

	in := cleanInputs()
	in.Enriched[0].TotalSales = 20.01 // exactly at tolerance: allowed

	g := New("", "", zap.NewNop())
	g.RunChecks(in)
	if got := resultByName(t, g.Results(), "Total Sales Calculation").Status; got != StatusPassed {
		t.Fatalf("Total Sales Calculation at 0.01 = %s, want PASSED", got)
	}

	in.Enriched[0].TotalSales = 20.05
	g2 := New("", "", zap.NewNop())
	g2.RunChecks(in)
	r := resultByName(t, g2.Results(), "Total Sales Calculation")
	if r.Status != StatusFailed {
		t.Fatalf("Total Sales Calculation past tolerance = %s, want FAILED", r.Status)
	}
	if !strings.Contains(r.Details, "Found 1 incorrect") {
		t.Fatalf("details = %q, want 1 incorrect calculation", r.Details)
	}
}

func TestRunErrorsOnMissingInputs(t *testing.T) {
	t.Parallel()

	g := New(t.TempDir(), "nope.parquet", zap.NewNop())
	if _, err := g.Run(); err == nil {
		t.Fatalf("Run() error = nil, want load error for missing inputs")
	}
	if len(g.Results()) != 0 {
		t.Fatalf("results = %v, want none after fatal load error", g.Results())
	}
}

func TestSummaryFormat(t *testing.T) {
	t.Parallel()

	results := []CheckResult{
		{CheckName: "Missing Sale IDs", Status: StatusPassed, Details: "Found 0 missing sale IDs"},
		{CheckName: "Negative Values", Status: StatusFailed, Details: "Found 1 negative quantities and 0 negative prices"},
	}
	s := Summary(results)
	for _, want := range []string{
		"=== Data Quality Check Summary ===",
		"Check: Missing Sale IDs",
		"Status: FAILED",
		"Total Checks: 2",
		"Passed: 1",
		"Failed: 1",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("Summary missing %q:\n%s", want, s)
		}
	}
}
