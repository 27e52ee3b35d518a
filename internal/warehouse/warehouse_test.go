package warehouse

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/schema"
)

func testLoader() *Loader {
	return newLoader(nil, Config{Path: "test.duckdb", Table: "sales_data"}, zap.NewNop())
}

func TestStateTransitionsAreGuarded(t *testing.T) {
	t.Parallel()

	l := testLoader()
	ctx := context.Background()

	// Every operation except CreateSchema is out of order from UNINITIALIZED.
	if err := l.Load(ctx, nil); err == nil {
		t.Fatalf("Load() before CreateSchema: error = nil, want invalid state")
	}
	if err := l.Index(ctx); err == nil {
		t.Fatalf("Index() before Load: error = nil, want invalid state")
	}
	if err := l.BuildViews(ctx); err == nil {
		t.Fatalf("BuildViews() before Index: error = nil, want invalid state")
	}
	if l.State() != StateUninitialized {
		t.Fatalf("state after rejected transitions = %s, want UNINITIALIZED", l.State())
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	want := map[State]string{
		StateUninitialized: "UNINITIALIZED",
		StateSchemaCreated: "SCHEMA_CREATED",
		StateLoaded:        "LOADED",
		StateIndexed:       "INDEXED",
		StateViewsBuilt:    "VIEWS_BUILT",
		StateDone:          "DONE",
	}
	for s, name := range want {
		if got := s.String(); got != name {
			t.Fatalf("State(%d).String() = %q, want %q", int(s), got, name)
		}
	}
}

func TestInsertArgsDerivesPartitionColumns(t *testing.T) {
	t.Parallel()

	pid := "P1"
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	row := schema.EnrichedSale{
		SaleID:                 "42",
		ProductID:              &pid,
		SaleDate:               "2023-11-05",
		Quantity:               3,
		PriceSale:              9.99,
		TotalSales:             29.97,
		IngestionTimestampSale: ts,
	}

	args, err := insertArgs(row)
	if err != nil {
		t.Fatalf("insertArgs() error = %v", err)
	}
	if len(args) != len(schema.WarehouseColumns) {
		t.Fatalf("insertArgs() len = %d, want %d", len(args), len(schema.WarehouseColumns))
	}
	if got := args[len(args)-2]; got != 2023 {
		t.Fatalf("sale_year = %v, want 2023", got)
	}
	if got := args[len(args)-1]; got != 11 {
		t.Fatalf("sale_month = %v, want 11", got)
	}
	// Nil pointer columns surface as SQL NULLs.
	if args[5] != nil || args[6] != nil || args[7] != nil || args[10] != nil {
		t.Fatalf("nil product-side fields did not map to NULL: %v", args)
	}
	if got := args[1]; got != "P1" {
		t.Fatalf("product_id = %v, want P1", got)
	}
}

func TestInsertArgsRejectsBadSaleDate(t *testing.T) {
	t.Parallel()

	row := schema.EnrichedSale{SaleID: "1", SaleDate: "not-a-date"}
	if _, err := insertArgs(row); err == nil {
		t.Fatalf("insertArgs() error = nil, want parse failure")
	}
}

func TestLoadErrorUnwraps(t *testing.T) {
	t.Parallel()

	inner := errors.New("duplicate key")
	err := &LoadError{Op: "load", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(LoadError, inner) = false, want true")
	}

	var le *LoadError
	var wrapped error = err
	if !errors.As(wrapped, &le) {
		t.Fatalf("errors.As(err, *LoadError) = false, want true")
	}
	if le.Op != "load" {
		t.Fatalf("Op = %q, want load", le.Op)
	}
}

func TestNewLoaderValidatesConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, _, err := NewLoader(ctx, Config{Path: "", Table: "sales_data"}, zap.NewNop()); err == nil {
		t.Fatalf("NewLoader() with empty path: error = nil, want error")
	}
	if _, _, err := NewLoader(ctx, Config{Path: "test.duckdb", Table: " "}, zap.NewNop()); err == nil {
		t.Fatalf("NewLoader() with blank table: error = nil, want error")
	}
}

func TestStagingTableName(t *testing.T) {
	t.Parallel()

	l := testLoader()
	if got := l.staging(); got != "sales_data_staging" {
		t.Fatalf("staging() = %q, want sales_data_staging", got)
	}
}

func enrichedRow(id string) schema.EnrichedSale {
	pid := "P1"
	price := 10.0
	name := "Widget"
	cat := "Home"
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pts := ts.Add(-time.Hour)
	return schema.EnrichedSale{
		SaleID:                    id,
		ProductID:                 &pid,
		SaleDate:                  "2023-01-01",
		Quantity:                  2,
		PriceSale:                 10.0,
		PriceProduct:              &price,
		ProductName:               &name,
		Category:                  &cat,
		TotalSales:                20.0,
		IngestionTimestampSale:    ts,
		IngestionTimestampProduct: &pts,
	}
}

func TestLoadDuplicateSaleIDLeavesLiveTableUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{Path: filepath.Join(t.TempDir(), "wh.db"), Table: "sales_data"}

	// Seed a live table with one committed row.
	l, closeFn, err := NewLoader(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if err := l.CreateSchema(ctx); err != nil {
		closeFn()
		t.Fatalf("CreateSchema() error = %v", err)
	}
	if err := l.Load(ctx, []schema.EnrichedSale{enrichedRow("1")}); err != nil {
		closeFn()
		t.Fatalf("Load() error = %v", err)
	}
	closeFn()

	// A later run whose snapshot violates the primary key must fail with
	// *LoadError and leave the previously committed table intact.
	l2, closeFn2, err := NewLoader(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	defer closeFn2()
	if err := l2.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}

	err = l2.Load(ctx, []schema.EnrichedSale{enrichedRow("2"), enrichedRow("2")})
	if err == nil {
		t.Fatalf("Load() error = nil, want primary key violation")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if l2.State() != StateSchemaCreated {
		t.Fatalf("state after failed load = %s, want SCHEMA_CREATED", l2.State())
	}

	var n int
	if err := l2.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales_data").Scan(&n); err != nil {
		t.Fatalf("count live rows: %v", err)
	}
	if n != 1 {
		t.Fatalf("live table rows = %d, want 1 (prior load preserved)", n)
	}
	var saleID string
	if err := l2.db.QueryRowContext(ctx, "SELECT sale_id FROM sales_data").Scan(&saleID); err != nil {
		t.Fatalf("read live row: %v", err)
	}
	if saleID != "1" {
		t.Fatalf("live sale_id = %q, want the previously committed row", saleID)
	}
}
