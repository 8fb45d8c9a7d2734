// Package pipeline persists extracted listings, one file per item.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-crawl-ebay/models"
)

// ItemWriter is the persistence sink for extracted listings. Persist
// must be safe for concurrent use and idempotent per item ID.
type ItemWriter interface {
	Persist(item *models.Listing) error
	Count() (int, error)
	Close() error
}

// JSONDirWriter stores each listing as <dataDir>/<store>/<itemID>.json.
// Writes go through a temp file and a rename, so a record file is
// either absent or complete, and rewriting an item ID replaces the
// whole record.
type JSONDirWriter struct {
	dir string
}

// NewJSONDirWriter creates the per-store namespace directory.
func NewJSONDirWriter(dataDir, store string) (*JSONDirWriter, error) {
	dir := filepath.Join(dataDir, store)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %q: %w", dir, err)
	}
	return &JSONDirWriter{dir: dir}, nil
}

// Dir returns the namespace directory records are written to.
func (w *JSONDirWriter) Dir() string {
	return w.dir
}

// Persist writes one listing keyed by its item ID.
func (w *JSONDirWriter) Persist(item *models.Listing) error {
	if item == nil || item.ItemID == "" {
		return fmt.Errorf("listing has no item id")
	}

	data, err := json.MarshalIndent(item, "", "    ")
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ItemID, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(w.dir, "."+item.ItemID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for item %s: %w", item.ItemID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write item %s: %w", item.ItemID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file for item %s: %w", item.ItemID, err)
	}

	final := filepath.Join(w.dir, item.ItemID+".json")
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename item %s into place: %w", item.ItemID, err)
	}
	return nil
}

// Count re-enumerates the record files currently in the namespace,
// including any left by earlier runs.
func (w *JSONDirWriter) Count() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read data directory %q: %w", w.dir, err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

// Close is a no-op; each Persist call owns its own file handle.
func (w *JSONDirWriter) Close() error {
	return nil
}
