// Package generate produces the synthetic raw-layer data set: a product
// catalog and a sales feed referencing it. Roughly 10% of sales are emitted
// with a missing product_id or sale_date so the downstream cleaning and
// quality stages have something to do.
package generate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"salesetl/internal/schema"
)

// Generator writes synthetic sales and product records to the raw layer.
type Generator struct {
	rawDir string
	faker  *gofakeit.Faker
	log    *zap.Logger
}

// New returns a Generator writing into rawDir. seed 0 selects a random seed.
func New(rawDir string, seed uint64, log *zap.Logger) *Generator {
	return &Generator{
		rawDir: rawDir,
		faker:  gofakeit.New(seed),
		log:    log,
	}
}

// Products generates n catalog entries. Product IDs take the "P" + 8 hex
// shape so referential-integrity failures are easy to fabricate in tests
// ("P9" can never collide with a generated ID).
func (g *Generator) Products(n int) []schema.Product {
	products := make([]schema.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, schema.Product{
			ProductID:   "P" + uuid.NewString()[:8],
			ProductName: g.faker.ProductName(),
			Category:    g.faker.RandomString(schema.Categories),
			Price:       decimal.NewFromFloat(g.faker.Price(10.0, 1000.0)).Round(2),
		})
	}
	g.log.Info("generated products", zap.Int("count", len(products)))
	return products
}

// Sales generates n sales drawn from the given catalog. Sale dates fall
// within calendar year 2023. About 10% of records lose either their
// product_id or their sale_date.
func (g *Generator) Sales(products []schema.Product, n int) []schema.Sale {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	sales := make([]schema.Sale, 0, n)
	for i := 0; i < n; i++ {
		p := products[g.faker.IntRange(0, len(products)-1)]
		productID := p.ProductID
		date := start.AddDate(0, 0, g.faker.IntRange(0, 364)).Format(schema.DateLayout)

		s := schema.Sale{
			SaleID:    fmt.Sprintf("%d", i+1),
			ProductID: &productID,
			SaleDate:  &date,
			Quantity:  int64(g.faker.IntRange(1, 10)),
			Price:     p.Price,
		}

		if g.faker.Float32Range(0, 1) < 0.10 {
			if g.faker.Bool() {
				s.SaleDate = nil
			} else {
				s.ProductID = nil
			}
		}
		sales = append(sales, s)
	}
	g.log.Info("generated sales", zap.Int("count", len(sales)))
	return sales
}

// Run generates the full raw data set and writes both artifacts.
func (g *Generator) Run(numProducts, numSales int) error {
	products := g.Products(numProducts)
	if err := g.writeJSON("product_data.json", products); err != nil {
		return err
	}

	sales := g.Sales(products, numSales)
	if err := g.writeJSON("sales_data.json", sales); err != nil {
		return err
	}

	g.log.Info("data generation completed",
		zap.Int("products", len(products)),
		zap.Int("sales", len(sales)))
	return nil
}

func (g *Generator) writeJSON(name string, data any) error {
	path := filepath.Join(g.rawDir, name)
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	g.log.Info("saved raw data", zap.String("path", path))
	return nil
}
