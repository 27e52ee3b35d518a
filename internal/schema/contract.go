package schema

import "fmt"

// Field describes one column of the enriched contract.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "text" | "integer" | "decimal" | "date" | "timestamp"
	Required bool   `json:"required,omitempty"`
}

// Contract is the fixed relational contract for the enriched record. The
// transformer checks its projection against this at the silver boundary and
// the warehouse table is generated from it, so the two can never drift apart.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// SchemaError reports a column missing from (or mistyped in) a record set at
// a join/projection boundary. It aborts the current stage.
type SchemaError struct {
	Dataset string // e.g. "sales", "products", "enriched"
	Column  string
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: column %q: %s", e.Dataset, e.Column, e.Reason)
}

// EnrichedContract returns the contract for the canonical enriched record.
// Field order matches EnrichedColumns.
func EnrichedContract() Contract {
	return Contract{
		Name: "enriched_sales",
		Fields: []Field{
			{Name: "sale_id", Type: "text", Required: true},
			{Name: "product_id", Type: "text"},
			{Name: "sale_date", Type: "date", Required: true},
			{Name: "quantity", Type: "integer", Required: true},
			{Name: "price_sale", Type: "decimal", Required: true},
			{Name: "price_product", Type: "decimal"},
			{Name: "product_name", Type: "text"},
			{Name: "category", Type: "text"},
			{Name: "total_sales", Type: "decimal", Required: true},
			{Name: "ingestion_timestamp_sale", Type: "timestamp", Required: true},
			{Name: "ingestion_timestamp_product", Type: "timestamp"},
		},
	}
}

// Validate checks that the contract covers exactly the canonical enriched
// column set, in order. It exists to catch shape drift between the contract
// and the column list when either is edited.
func (c Contract) Validate() error {
	if len(c.Fields) != len(EnrichedColumns) {
		return &SchemaError{
			Dataset: c.Name,
			Column:  "",
			Reason:  fmt.Sprintf("contract has %d fields, canonical set has %d", len(c.Fields), len(EnrichedColumns)),
		}
	}
	for i, f := range c.Fields {
		if f.Name != EnrichedColumns[i] {
			return &SchemaError{
				Dataset: c.Name,
				Column:  f.Name,
				Reason:  fmt.Sprintf("position %d: want column %q", i, EnrichedColumns[i]),
			}
		}
	}
	return nil
}
