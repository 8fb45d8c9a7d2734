package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aluiziolira/go-crawl-ebay/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

const seenCacheSize = 4096

// Pipeline fans out listing writes to the underlying ItemWriter. One
// page's listings are dispatched concurrently; PersistPage returns only
// after every write has resolved. A failed write never aborts the rest
// of the batch.
type Pipeline struct {
	writer ItemWriter
	logger *slog.Logger

	// seen tracks recently persisted item IDs so duplicates across
	// pages can be surfaced at debug level. Duplicates are still
	// written; the later record wins.
	seen *lru.Cache[string, struct{}]

	saved  int64
	failed int64
}

// NewPipeline builds a pipeline around the given sink.
func NewPipeline(writer ItemWriter, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seen, err := lru.New[string, struct{}](seenCacheSize)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		writer: writer,
		logger: logger,
		seen:   seen,
	}, nil
}

// PersistPage writes all listings from one page and waits for the
// batch to finish. It returns the number of records durably written.
func (p *Pipeline) PersistPage(ctx context.Context, items []*models.Listing) int {
	if len(items) == 0 {
		return 0
	}

	var saved int64
	var wg sync.WaitGroup
	for _, item := range items {
		if item == nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if _, dup := p.seen.Get(item.ItemID); dup {
			p.logger.Debug("rewriting previously saved item",
				slog.String("item_id", item.ItemID),
			)
		}

		wg.Add(1)
		go func(item *models.Listing) {
			defer wg.Done()
			if err := p.writer.Persist(item); err != nil {
				atomic.AddInt64(&p.failed, 1)
				p.logger.Error("persist item failed",
					slog.String("item_id", item.ItemID),
					slog.Any("error", err),
				)
				return
			}
			atomic.AddInt64(&saved, 1)
			p.seen.Add(item.ItemID, struct{}{})
			p.logger.Debug("saved item",
				slog.String("item_id", item.ItemID),
				slog.String("title", item.Title),
			)
		}(item)
	}
	wg.Wait()

	atomic.AddInt64(&p.saved, saved)
	return int(saved)
}

// Saved returns the total number of records written so far.
func (p *Pipeline) Saved() int {
	return int(atomic.LoadInt64(&p.saved))
}

// Failed returns the total number of write failures so far.
func (p *Pipeline) Failed() int {
	return int(atomic.LoadInt64(&p.failed))
}

// Close releases the underlying sink.
func (p *Pipeline) Close() error {
	return p.writer.Close()
}
