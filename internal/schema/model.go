// Package schema is the catalog for the sales pipeline: the typed staged
// records, the canonical enriched column set shared by the transformer,
// quality gate, and warehouse loader, and the warehouse DDL.
//
// The staged layers move records through fixed shapes:
//
//	raw/bronze  JSON arrays of Sale and Product
//	silver      parquet snapshot of EnrichedSale
//	gold        the sales_data warehouse table (+ derived views)
//
// Nullable staged fields are pointers so that "absent in the input" is
// distinguishable from a zero value; the cleaning step is what promotes
// product_id and sale_date to required.
package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date layout used by sale_date in every layer.
const DateLayout = "2006-01-02"

// Categories is the fixed enumeration product categories are drawn from.
var Categories = []string{"Electronics", "Clothing", "Books", "Home", "Sports"}

// Sale is a staged sales record. product_id and sale_date are nullable until
// cleaning; quantity and price are non-negative by contract (the quality gate
// verifies, it does not assume).
type Sale struct {
	SaleID             string          `json:"sale_id" db:"sale_id"`
	ProductID          *string         `json:"product_id" db:"product_id"`
	SaleDate           *string         `json:"sale_date" db:"sale_date"` // DateLayout
	Quantity           int64           `json:"quantity" db:"quantity"`
	Price              decimal.Decimal `json:"price" db:"price"`
	IngestionTimestamp time.Time       `json:"ingestion_timestamp,omitzero" db:"ingestion_timestamp"`
}

// Product is a staged product reference record. ProductID is unique within
// the catalog.
type Product struct {
	ProductID          string          `json:"product_id" db:"product_id"`
	ProductName        string          `json:"product_name" db:"product_name"`
	Category           string          `json:"category" db:"category"`
	Price              decimal.Decimal `json:"price" db:"price"`
	IngestionTimestamp time.Time       `json:"ingestion_timestamp,omitzero" db:"ingestion_timestamp"`
}

// EnrichedSale is the canonical silver-layer record: a cleaned sale joined
// (left outer) onto its product, with the two price columns disambiguated and
// total_sales derived. Product-side fields stay nil when the join found no
// match. Monetary values are rounded to 2 decimal places before they reach
// this shape.
//
// The parquet tags define the silver snapshot format; field order here is the
// canonical column order.
type EnrichedSale struct {
	SaleID                    string     `parquet:"sale_id" json:"sale_id" db:"sale_id"`
	ProductID                 *string    `parquet:"product_id,optional" json:"product_id" db:"product_id"`
	SaleDate                  string     `parquet:"sale_date" json:"sale_date" db:"sale_date"`
	Quantity                  int64      `parquet:"quantity" json:"quantity" db:"quantity"`
	PriceSale                 float64    `parquet:"price_sale" json:"price_sale" db:"price_sale"`
	PriceProduct              *float64   `parquet:"price_product,optional" json:"price_product" db:"price_product"`
	ProductName               *string    `parquet:"product_name,optional" json:"product_name" db:"product_name"`
	Category                  *string    `parquet:"category,optional" json:"category" db:"category"`
	TotalSales                float64    `parquet:"total_sales" json:"total_sales" db:"total_sales"`
	IngestionTimestampSale    time.Time  `parquet:"ingestion_timestamp_sale,timestamp(millisecond)" json:"ingestion_timestamp_sale" db:"ingestion_timestamp_sale"`
	IngestionTimestampProduct *time.Time `parquet:"ingestion_timestamp_product,optional" json:"ingestion_timestamp_product" db:"ingestion_timestamp_product"`
}

// EnrichedColumns is the canonical enriched column set, in order. The
// transformer projects onto exactly these columns and the warehouse table
// starts with them (followed by the two partition columns).
var EnrichedColumns = []string{
	"sale_id",
	"product_id",
	"sale_date",
	"quantity",
	"price_sale",
	"price_product",
	"product_name",
	"category",
	"total_sales",
	"ingestion_timestamp_sale",
	"ingestion_timestamp_product",
}

// WarehouseColumns is the full gold-layer column set: the enriched columns
// plus the sale_year/sale_month partition columns derived at load time.
var WarehouseColumns = append(append([]string{}, EnrichedColumns...), "sale_year", "sale_month")
