package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/aluiziolira/go-crawl-ebay/models"
)

// recordingWriter is an in-memory ItemWriter that can fail selected
// item IDs.
type recordingWriter struct {
	mu      sync.Mutex
	items   map[string]*models.Listing
	failIDs map[string]bool
}

func newRecordingWriter(failIDs ...string) *recordingWriter {
	fail := make(map[string]bool, len(failIDs))
	for _, id := range failIDs {
		fail[id] = true
	}
	return &recordingWriter{
		items:   make(map[string]*models.Listing),
		failIDs: fail,
	}
}

func (w *recordingWriter) Persist(item *models.Listing) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failIDs[item.ItemID] {
		return fmt.Errorf("disk full for %s", item.ItemID)
	}
	w.items[item.ItemID] = item
	return nil
}

func (w *recordingWriter) Count() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items), nil
}

func (w *recordingWriter) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPersistPageWritesWholeBatch(t *testing.T) {
	writer := newRecordingWriter()
	p, err := NewPipeline(writer, discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	items := []*models.Listing{
		sampleListing("1", "a"),
		sampleListing("2", "b"),
		sampleListing("3", "c"),
	}

	saved := p.PersistPage(context.Background(), items)
	if saved != 3 {
		t.Fatalf("saved = %d, want 3", saved)
	}
	if p.Saved() != 3 {
		t.Fatalf("total saved = %d, want 3", p.Saved())
	}
	if count, _ := writer.Count(); count != 3 {
		t.Fatalf("writer holds %d items, want 3", count)
	}
}

func TestPersistPageFailureDoesNotAbortBatch(t *testing.T) {
	writer := newRecordingWriter("2")
	p, err := NewPipeline(writer, discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	items := []*models.Listing{
		sampleListing("1", "a"),
		sampleListing("2", "b"),
		sampleListing("3", "c"),
	}

	saved := p.PersistPage(context.Background(), items)
	if saved != 2 {
		t.Fatalf("saved = %d, want 2", saved)
	}
	if p.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", p.Failed())
	}
	if _, ok := writer.items["2"]; ok {
		t.Fatal("failed item should not be present")
	}
}

func TestPersistPageEmptyBatch(t *testing.T) {
	p, err := NewPipeline(newRecordingWriter(), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if saved := p.PersistPage(context.Background(), nil); saved != 0 {
		t.Fatalf("saved = %d, want 0", saved)
	}
}

func TestPersistPageAccumulatesAcrossPages(t *testing.T) {
	writer := newRecordingWriter()
	p, err := NewPipeline(writer, discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	p.PersistPage(context.Background(), []*models.Listing{sampleListing("1", "a")})
	p.PersistPage(context.Background(), []*models.Listing{
		sampleListing("2", "b"),
		// Same key again: still written, later record wins.
		sampleListing("1", "a-rewritten"),
	})

	if p.Saved() != 3 {
		t.Fatalf("total saved = %d, want 3", p.Saved())
	}
	if count, _ := writer.Count(); count != 2 {
		t.Fatalf("distinct items = %d, want 2", count)
	}
	if writer.items["1"].Title != "a-rewritten" {
		t.Fatalf("title = %q, want the rewrite to win", writer.items["1"].Title)
	}
}
