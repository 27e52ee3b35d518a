package transform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"salesetl/internal/schema"
)

// Persist writes the enriched set as a snappy-compressed parquet file,
// fully replacing any prior snapshot. The write lands on a temp path first
// and is renamed over the target, so a failed run leaves the previous valid
// snapshot in place.
func (t *Transformer) Persist(enriched []schema.EnrichedSale) error {
	dir := filepath.Dir(t.snapshotPath)
	tmp, err := os.CreateTemp(dir, ".transformed_sales-*.parquet")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after successful rename

	w := parquet.NewGenericWriter[schema.EnrichedSale](tmp, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(enriched); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot rows: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("close snapshot writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	body, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("fingerprint snapshot: %w", err)
	}
	fingerprint := xxh3.Hash(body)

	if err := os.Rename(tmpPath, t.snapshotPath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	t.log.Info("saved silver snapshot",
		zap.String("path", t.snapshotPath),
		zap.Int("rows", len(enriched)),
		zap.String("fingerprint", fmt.Sprintf("%016x", fingerprint)))
	return nil
}

// ReadSnapshot loads the full enriched snapshot. It is used by the quality
// gate and the warehouse loader; the transformer remains the only writer.
func ReadSnapshot(path string) ([]schema.EnrichedSale, error) {
	rows, err := parquet.ReadFile[schema.EnrichedSale](path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return rows, nil
}
