// Package ingest copies the raw layer into the bronze layer, stamping every
// record with the wall-clock ingestion_timestamp and folding product text
// fields to a normalized form (trimmed, combining marks removed).
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"salesetl/internal/schema"
)

// Ingestor moves raw artifacts to bronze.
type Ingestor struct {
	rawDir    string
	bronzeDir string
	log       *zap.Logger
	now       func() time.Time
}

// New returns an Ingestor reading rawDir and writing bronzeDir.
func New(rawDir, bronzeDir string, log *zap.Logger) *Ingestor {
	return &Ingestor{
		rawDir:    rawDir,
		bronzeDir: bronzeDir,
		log:       log,
		now:       time.Now,
	}
}

// foldText trims whitespace and strips combining marks (NFD, remove Mn, NFC)
// so product text compares consistently downstream.
func foldText(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return folded
}

// Run ingests both entities. It fails on the first unreadable or structurally
// malformed artifact; partial bronze output from a failed run is overwritten
// by the next successful one.
func (i *Ingestor) Run() error {
	stamp := i.now().UTC().Truncate(time.Millisecond)

	var sales []schema.Sale
	if err := readJSON(filepath.Join(i.rawDir, "sales_data.json"), &sales); err != nil {
		return err
	}
	for k := range sales {
		sales[k].IngestionTimestamp = stamp
	}
	if err := i.writeJSON("sales_data.json", sales); err != nil {
		return err
	}
	i.log.Info("ingested sales", zap.Int("count", len(sales)), zap.Time("ingestion_timestamp", stamp))

	var products []schema.Product
	if err := readJSON(filepath.Join(i.rawDir, "product_data.json"), &products); err != nil {
		return err
	}
	for k := range products {
		products[k].ProductName = foldText(products[k].ProductName)
		products[k].Category = strings.TrimSpace(products[k].Category)
		products[k].IngestionTimestamp = stamp
	}
	if err := i.writeJSON("product_data.json", products); err != nil {
		return err
	}
	i.log.Info("ingested products", zap.Int("count", len(products)), zap.Time("ingestion_timestamp", stamp))

	return nil
}

func readJSON(path string, v any) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (i *Ingestor) writeJSON(name string, v any) error {
	path := filepath.Join(i.bronzeDir, name)
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadBronze loads both bronze artifacts; it is shared by the transformer and
// the quality gate. A missing artifact surfaces as a wrapped os error, so
// callers can test errors.Is(err, os.ErrNotExist).
func ReadBronze(bronzeDir string) ([]schema.Sale, []schema.Product, error) {
	var sales []schema.Sale
	if err := readJSON(filepath.Join(bronzeDir, "sales_data.json"), &sales); err != nil {
		return nil, nil, err
	}
	var products []schema.Product
	if err := readJSON(filepath.Join(bronzeDir, "product_data.json"), &products); err != nil {
		return nil, nil, err
	}
	return sales, products, nil
}
