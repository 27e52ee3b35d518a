// Package warehouse implements the gold-layer loader: a DuckDB-backed
// repository that rebuilds the sales_data table from the silver snapshot,
// builds its secondary indexes, and (re)creates the two summary views.
//
// A run is a state machine of discrete, idempotent transitions:
//
//	UNINITIALIZED → SCHEMA_CREATED → LOADED → INDEXED → VIEWS_BUILT → DONE
//
// The load lands in a shadow table which is swapped into the live name in a
// single transaction, so a reader never observes a dropped-but-not-yet-
// reloaded table: visibility is all-or-nothing and a failed load leaves the
// prior table state undisturbed.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// DuckDB driver.
	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"salesetl/internal/schema"
	"salesetl/internal/transform"
)

// State identifies the loader's position in the per-run state machine.
type State int

const (
	StateUninitialized State = iota
	StateSchemaCreated
	StateLoaded
	StateIndexed
	StateViewsBuilt
	StateDone
)

var stateNames = map[State]string{
	StateUninitialized: "UNINITIALIZED",
	StateSchemaCreated: "SCHEMA_CREATED",
	StateLoaded:        "LOADED",
	StateIndexed:       "INDEXED",
	StateViewsBuilt:    "VIEWS_BUILT",
	StateDone:          "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// LoadError reports a failed load transition: a primary-key or not-null
// violation, an unparseable partition date, or a failed bulk insert.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("warehouse: %s: %v", e.Op, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Config locates the warehouse store.
type Config struct {
	Path  string // database file path
	Table string // live table name, e.g. "sales_data"
}

// Loader owns the warehouse table's schema and contents for one run.
type Loader struct {
	db    *sql.DB
	cfg   Config
	log   *zap.Logger
	state State
}

// NewLoader opens the DuckDB store and returns a Loader plus a close function
// that must run on every exit path (the connection is an exclusive resource
// held for exactly one run).
func NewLoader(ctx context.Context, cfg Config, log *zap.Logger) (*Loader, func(), error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, nil, fmt.Errorf("warehouse: database path must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, nil, fmt.Errorf("warehouse: table name must not be empty")
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("warehouse: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("warehouse: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return newLoader(db, cfg, log), closeFn, nil
}

// newLoader wires a Loader around an open handle. Split out for tests of the
// state machine that never touch a database.
func newLoader(db *sql.DB, cfg Config, log *zap.Logger) *Loader {
	return &Loader{db: db, cfg: cfg, log: log, state: StateUninitialized}
}

// State returns the loader's current state.
func (l *Loader) State() State { return l.state }

func (l *Loader) staging() string { return l.cfg.Table + "_staging" }

func (l *Loader) requireState(op string, want State) error {
	if l.state != want {
		return fmt.Errorf("warehouse: %s: invalid state %s, want %s", op, l.state, want)
	}
	return nil
}

// CreateSchema (re)creates the shadow table with the exact warehouse schema.
// The live table is not touched here; it survives until a successful load
// swaps the shadow in.
func (l *Loader) CreateSchema(ctx context.Context) error {
	if err := l.requireState("create schema", StateUninitialized); err != nil {
		return err
	}
	if _, err := l.db.ExecContext(ctx, schema.DropTableSQL(l.staging())); err != nil {
		return fmt.Errorf("warehouse: drop staging: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, schema.CreateTableSQL(l.staging())); err != nil {
		return fmt.Errorf("warehouse: create staging: %w", err)
	}
	l.state = StateSchemaCreated
	l.log.Info("created warehouse schema", zap.String("table", l.staging()))
	return nil
}

// Load derives the sale_year/sale_month partition columns, bulk-inserts every
// snapshot row into the shadow table inside one transaction, and swaps the
// shadow into the live name. Constraint violations surface as *LoadError and
// leave the live table untouched.
func (l *Loader) Load(ctx context.Context, rows []schema.EnrichedSale) error {
	if err := l.requireState("load", StateSchemaCreated); err != nil {
		return err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("warehouse: begin load tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, schema.InsertSQL(l.staging()))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("warehouse: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args, err := insertArgs(row)
		if err != nil {
			_ = tx.Rollback()
			return &LoadError{Op: "load", Err: err}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return &LoadError{Op: "load", Err: fmt.Errorf("insert sale_id=%s: %w", row.SaleID, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &LoadError{Op: "load", Err: fmt.Errorf("commit: %w", err)}
	}

	// Swap: drop the old live table and rename the shadow in, atomically.
	swap, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("warehouse: begin swap tx: %w", err)
	}
	if _, err := swap.ExecContext(ctx, schema.DropTableSQL(l.cfg.Table)); err != nil {
		_ = swap.Rollback()
		return fmt.Errorf("warehouse: drop live table: %w", err)
	}
	if _, err := swap.ExecContext(ctx, schema.RenameTableSQL(l.staging(), l.cfg.Table)); err != nil {
		_ = swap.Rollback()
		return fmt.Errorf("warehouse: swap staging into place: %w", err)
	}
	if err := swap.Commit(); err != nil {
		return fmt.Errorf("warehouse: commit swap: %w", err)
	}

	l.state = StateLoaded
	l.log.Info("loaded warehouse table",
		zap.String("table", l.cfg.Table),
		zap.Int("rows", len(rows)))
	return nil
}

// Index creates the four secondary indexes. All statements are IF NOT EXISTS,
// so repeated invocation is safe.
func (l *Loader) Index(ctx context.Context) error {
	if err := l.requireState("index", StateLoaded); err != nil {
		return err
	}
	for _, stmtSQL := range schema.IndexSQL(l.cfg.Table) {
		if _, err := l.db.ExecContext(ctx, stmtSQL); err != nil {
			return fmt.Errorf("warehouse: create index: %w", err)
		}
	}
	l.state = StateIndexed
	l.log.Info("created warehouse indexes", zap.String("table", l.cfg.Table))
	return nil
}

// BuildViews (re)creates the monthly_sales and category_performance views.
func (l *Loader) BuildViews(ctx context.Context) error {
	if err := l.requireState("build views", StateIndexed); err != nil {
		return err
	}
	for _, stmtSQL := range schema.ViewSQL(l.cfg.Table) {
		if _, err := l.db.ExecContext(ctx, stmtSQL); err != nil {
			return fmt.Errorf("warehouse: create view: %w", err)
		}
	}
	l.state = StateViewsBuilt
	l.log.Info("created summary views", zap.String("table", l.cfg.Table))
	return nil
}

// Run executes the complete load from the silver snapshot and drives the
// state machine to DONE.
func (l *Loader) Run(ctx context.Context, snapshotPath string) error {
	rows, err := transform.ReadSnapshot(snapshotPath)
	if err != nil {
		l.log.Error("reading snapshot failed", zap.Error(err))
		return fmt.Errorf("warehouse: %w", err)
	}
	l.log.Info("loaded snapshot rows", zap.Int("rows", len(rows)))

	if err := l.CreateSchema(ctx); err != nil {
		l.log.Error("schema creation failed", zap.Error(err))
		return err
	}
	if err := l.Load(ctx, rows); err != nil {
		l.log.Error("load failed", zap.Error(err))
		return err
	}
	if err := l.Index(ctx); err != nil {
		l.log.Error("index creation failed", zap.Error(err))
		return err
	}
	if err := l.BuildViews(ctx); err != nil {
		l.log.Error("view creation failed", zap.Error(err))
		return err
	}

	l.state = StateDone
	l.log.Info("warehouse load completed", zap.String("state", l.state.String()))
	return nil
}

// insertArgs flattens an enriched row into the warehouse column order,
// deriving the partition columns from sale_date.
func insertArgs(row schema.EnrichedSale) ([]any, error) {
	saleDate, err := time.Parse(schema.DateLayout, row.SaleDate)
	if err != nil {
		return nil, fmt.Errorf("sale_id=%s: parse sale_date %q: %w", row.SaleID, row.SaleDate, err)
	}
	return []any{
		row.SaleID,
		nullable(row.ProductID),
		saleDate,
		row.Quantity,
		row.PriceSale,
		nullable(row.PriceProduct),
		nullable(row.ProductName),
		nullable(row.Category),
		row.TotalSales,
		row.IngestionTimestampSale,
		nullable(row.IngestionTimestampProduct),
		saleDate.Year(),
		int(saleDate.Month()),
	}, nil
}

// nullable converts a pointer field to its driver value: NULL when nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
