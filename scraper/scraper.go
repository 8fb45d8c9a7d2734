// Package scraper drives the page-by-page crawl of a storefront.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-crawl-ebay/config"
	"github.com/aluiziolira/go-crawl-ebay/models"
	"github.com/aluiziolira/go-crawl-ebay/parser"
	"github.com/aluiziolira/go-crawl-ebay/pipeline"
)

// Crawler walks a storefront's pagination chain sequentially: each
// page is fetched, its listings extracted and persisted, and the next
// page discovered from the parsed document. Page N+1 is never fetched
// before page N's records have all been written.
type Crawler struct {
	cfg     *config.Config
	fetcher Fetcher
	logger  *slog.Logger
	base    *url.URL

	Metrics *Metrics
}

// NewCrawler builds a crawler from cfg. The logger is the crawler's
// diagnostics sink; nil falls back to slog.Default.
func NewCrawler(cfg *config.Config, logger *slog.Logger) (*Crawler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := url.Parse(cfg.StartURL())
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}

	fetcher, err := newCollyFetcher(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("initialized crawler",
		slog.String("store", cfg.StoreName),
		slog.String("start_url", cfg.StartURL()),
	)

	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		base:    base,
		Metrics: NewMetrics(),
	}, nil
}

// Run crawls the storefront until no next-page link remains, streaming
// each page's listings through the pipeline. A fetch failure stops the
// whole crawl: without the failed page's document there is no way to
// discover the next link.
func (c *Crawler) Run(ctx context.Context, p *pipeline.Pipeline) (*models.CrawlResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.CrawlResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}

	c.logger.Info("starting crawl",
		slog.String("store", c.cfg.StoreName),
		slog.String("condition_filter", c.cfg.Condition),
	)

	pageURL := c.cfg.StartURL()
	for pageURL != "" {
		if err := ctx.Err(); err != nil {
			result.EndTime = time.Now()
			return result, err
		}

		c.logger.Info("processing page",
			slog.Int("page", result.PagesCrawled+1),
			slog.String("url", pageURL),
		)

		doc, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			label := errorTypeLabel(err)
			c.Metrics.IncError(label)
			result.ErrorsByType[label]++
			result.FailedURL = pageURL
			result.EndTime = time.Now()
			c.logger.Error("failed to fetch page",
				slog.String("url", pageURL),
				slog.String("category", label),
				slog.Any("error", err),
			)
			return result, fmt.Errorf("fetch %s: %w", pageURL, err)
		}

		saved := c.processPage(ctx, doc, p, result)

		result.PagesCrawled++
		c.Metrics.IncPages()
		c.logger.Info("extracted new items from page",
			slog.Int("page", result.PagesCrawled),
			slog.Int("new_items", saved),
		)

		next, ok := parser.NextPageURL(doc, c.base)
		if !ok {
			c.logger.Info("no more pages to process")
			break
		}
		c.logger.Info("found next page", slog.String("url", next))
		pageURL = next

		if c.cfg.Delay > 0 {
			select {
			case <-time.After(c.cfg.Delay):
			case <-ctx.Done():
				result.EndTime = time.Now()
				return result, ctx.Err()
			}
		}
	}

	result.ItemsFailed = p.Failed()
	result.EndTime = time.Now()
	c.logger.Info("crawl completed",
		slog.String("store", c.cfg.StoreName),
		slog.Int("pages", result.PagesCrawled),
		slog.Int("items", result.ItemsSaved),
	)
	return result, nil
}

func (c *Crawler) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, pageURL)
	c.Metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// processPage extracts one parsed page, reports the extraction
// diagnostics, and fans the surviving records out to the pipeline.
func (c *Crawler) processPage(ctx context.Context, doc *goquery.Document, p *pipeline.Pipeline, result *models.CrawlResult) int {
	page := parser.ExtractListings(doc, c.base, c.cfg.Condition)

	c.logger.Info("found items on page", slog.Int("count", page.Found))
	if page.NoURL > 0 {
		c.logger.Debug("skipped items without a product link",
			slog.Int("count", page.NoURL),
		)
	}
	if page.Filtered > 0 {
		c.logger.Debug("skipped items not matching condition filter",
			slog.Int("count", page.Filtered),
			slog.String("filter", c.cfg.Condition),
		)
	}
	for _, badURL := range page.BadURLs {
		c.logger.Warn("could not extract item id from url",
			slog.String("url", badURL),
		)
	}

	result.ItemsFound += page.Found
	result.ItemsFiltered += page.Filtered
	result.ItemsInvalid += page.NoURL + len(page.BadURLs)
	c.Metrics.AddItems("found", page.Found)
	c.Metrics.AddItems("filtered", page.Filtered)
	c.Metrics.AddItems("invalid", page.NoURL+len(page.BadURLs))

	if len(page.Items) == 0 {
		return 0
	}

	c.logger.Info("saving items", slog.Int("count", len(page.Items)))
	saved := p.PersistPage(ctx, page.Items)
	result.ItemsSaved += saved
	c.Metrics.AddItems("saved", saved)
	c.Metrics.AddItems("failed", len(page.Items)-saved)
	return saved
}
