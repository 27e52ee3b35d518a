// Package transform implements the silver-layer transformation: cleaning the
// staged sales feed, enriching it against the product catalog, and persisting
// the canonical snapshot.
//
// The transformer is the only writer of the silver snapshot. Each run fully
// replaces the artifact; downstream readers never observe a partial file
// because the write goes to a temp path and is renamed into place.
package transform

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salesetl/internal/ingest"
	"salesetl/internal/schema"
)

// Transformer owns the bronze → silver transition.
type Transformer struct {
	bronzeDir    string
	snapshotPath string
	log          *zap.Logger
}

// New returns a Transformer reading bronzeDir and writing the snapshot at
// snapshotPath.
func New(bronzeDir, snapshotPath string, log *zap.Logger) *Transformer {
	return &Transformer{
		bronzeDir:    bronzeDir,
		snapshotPath: snapshotPath,
		log:          log,
	}
}

// Clean removes every sale missing product_id or sale_date. Order is
// preserved. The removed count is logged, never an error: incomplete records
// are expected input.
func (t *Transformer) Clean(sales []schema.Sale) []schema.Sale {
	kept := make([]schema.Sale, 0, len(sales))
	for _, s := range sales {
		if s.ProductID == nil || s.SaleDate == nil {
			continue
		}
		kept = append(kept, s)
	}
	t.log.Info("cleaned sales",
		zap.Int("initial", len(sales)),
		zap.Int("removed", len(sales)-len(kept)),
		zap.Int("remaining", len(kept)))
	return kept
}

// Enrich left-joins cleaned sales onto the product catalog keyed on
// product_id, splits the two price columns into price_sale/price_product,
// derives total_sales = quantity × price_sale with decimal arithmetic, and
// projects onto the canonical enriched column set.
//
// It returns a *schema.SchemaError when a join key is absent from either
// input: a cleaned sale must carry product_id and sale_date, and every
// catalog entry must carry product_id. That is shape drift, not dirty data.
func (t *Transformer) Enrich(cleaned []schema.Sale, products []schema.Product) ([]schema.EnrichedSale, error) {
	if err := schema.EnrichedContract().Validate(); err != nil {
		return nil, err
	}

	byID := make(map[string]schema.Product, len(products))
	for _, p := range products {
		if p.ProductID == "" {
			return nil, &schema.SchemaError{Dataset: "products", Column: "product_id", Reason: "join key is empty"}
		}
		byID[p.ProductID] = p
	}

	enriched := make([]schema.EnrichedSale, 0, len(cleaned))
	for _, s := range cleaned {
		if s.ProductID == nil {
			return nil, &schema.SchemaError{Dataset: "sales", Column: "product_id", Reason: "join key is null after cleaning"}
		}
		if s.SaleDate == nil {
			return nil, &schema.SchemaError{Dataset: "sales", Column: "sale_date", Reason: "required column is null after cleaning"}
		}

		priceSale := s.Price.Round(2)
		total := priceSale.Mul(decimal.NewFromInt(s.Quantity)).Round(2)

		row := schema.EnrichedSale{
			SaleID:                 s.SaleID,
			ProductID:              s.ProductID,
			SaleDate:               *s.SaleDate,
			Quantity:               s.Quantity,
			PriceSale:              priceSale.InexactFloat64(),
			TotalSales:             total.InexactFloat64(),
			IngestionTimestampSale: s.IngestionTimestamp,
		}

		// Left join: unmatched product IDs leave the product-side columns
		// null. The quality gate reports them as referential violations.
		if p, ok := byID[*s.ProductID]; ok {
			priceProduct := p.Price.Round(2).InexactFloat64()
			name := p.ProductName
			category := p.Category
			ts := p.IngestionTimestamp
			row.PriceProduct = &priceProduct
			row.ProductName = &name
			row.Category = &category
			row.IngestionTimestampProduct = &ts
		}

		enriched = append(enriched, row)
	}

	t.log.Info("enriched sales",
		zap.Int("rows", len(enriched)),
		zap.Int("catalog_size", len(byID)))
	return enriched, nil
}

// Run executes the complete transformation: read bronze, clean, enrich,
// persist.
func (t *Transformer) Run() error {
	sales, products, err := ingest.ReadBronze(t.bronzeDir)
	if err != nil {
		t.log.Error("reading bronze data failed", zap.Error(err))
		return fmt.Errorf("transform: %w", err)
	}
	t.log.Info("read bronze data",
		zap.Int("sales", len(sales)),
		zap.Int("products", len(products)))

	cleaned := t.Clean(sales)

	enriched, err := t.Enrich(cleaned, products)
	if err != nil {
		t.log.Error("enrichment failed", zap.Error(err))
		return fmt.Errorf("transform: %w", err)
	}

	if err := t.Persist(enriched); err != nil {
		t.log.Error("persisting snapshot failed", zap.Error(err))
		return fmt.Errorf("transform: %w", err)
	}

	t.log.Info("transformation completed", zap.Int("rows", len(enriched)))
	return nil
}
