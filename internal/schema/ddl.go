package schema

import "fmt"

// Warehouse DDL. The column names, order, and types below are the bit-exact
// gold-layer contract: monetary fields are DECIMAL so aggregation does not
// accumulate floating-point drift, sale_date is DATE while the two ingestion
// timestamps are TIMESTAMP, and sale_id is the primary key.

// CreateTableSQL returns the CREATE TABLE statement for the warehouse table
// under the given name. The name is parameterized so the loader can build a
// staging (shadow) table with the identical shape and swap it in atomically.
func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
    sale_id VARCHAR PRIMARY KEY,
    product_id VARCHAR,
    sale_date DATE,
    quantity INTEGER,
    price_sale DECIMAL(10,2),
    price_product DECIMAL(10,2),
    product_name VARCHAR,
    category VARCHAR,
    total_sales DECIMAL(12,2),
    ingestion_timestamp_sale TIMESTAMP,
    ingestion_timestamp_product TIMESTAMP,
    sale_year INTEGER,
    sale_month INTEGER
)`, table)
}

// DropTableSQL returns an idempotent DROP for the given table.
func DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
}

// RenameTableSQL returns the ALTER statement that swaps a staging table into
// the live name.
func RenameTableSQL(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", from, to)
}

// IndexSQL returns the four secondary-index statements for the warehouse
// table. All are CREATE INDEX IF NOT EXISTS, so repeated invocation is safe.
func IndexSQL(table string) []string {
	return []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_sale_date ON %s(sale_date)", table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_product_id ON %s(product_id)", table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_category ON %s(category)", table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_time_partition ON %s(sale_year, sale_month)", table),
	}
}

// ViewSQL returns the two derived summary views over the warehouse table,
// both CREATE OR REPLACE so rebuilds are idempotent.
func ViewSQL(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE OR REPLACE VIEW monthly_sales AS
SELECT
    sale_year,
    sale_month,
    COUNT(*) AS total_transactions,
    SUM(quantity) AS total_quantity,
    SUM(total_sales) AS total_revenue,
    AVG(total_sales) AS avg_transaction_value
FROM %s
GROUP BY sale_year, sale_month
ORDER BY sale_year, sale_month`, table),
		fmt.Sprintf(`CREATE OR REPLACE VIEW category_performance AS
SELECT
    category,
    COUNT(DISTINCT product_id) AS total_products,
    SUM(quantity) AS total_quantity_sold,
    SUM(total_sales) AS total_revenue,
    AVG(price_sale) AS avg_price
FROM %s
GROUP BY category
ORDER BY total_revenue DESC`, table),
	}
}

// InsertSQL returns the parameterized INSERT statement covering the full
// warehouse column set, in canonical order.
func InsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (
    sale_id, product_id, sale_date, quantity, price_sale,
    price_product, product_name, category, total_sales,
    ingestion_timestamp_sale, ingestion_timestamp_product,
    sale_year, sale_month
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
}
