package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/aluiziolira/go-crawl-ebay/config"
	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves the raw markup of one results page. Implementations
// carry their own header set and timeouts.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// collyFetcher fetches pages through a synchronous colly collector.
// Fetches are serialized; the crawl processes one page at a time.
type collyFetcher struct {
	collector *colly.Collector

	mu   sync.Mutex
	body []byte
	err  error
}

func newCollyFetcher(cfg *config.Config) (*collyFetcher, error) {
	parsed, err := url.Parse(cfg.StartURL())
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("start url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	f := &collyFetcher{collector: collector}
	collector.OnResponse(func(r *colly.Response) {
		f.body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		f.err = classifyError(err, statusCode)
	})
	return f, nil
}

// Fetch retrieves one page. Any transport failure, including a non-2xx
// status, comes back as a classified error.
func (f *collyFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.body, f.err = nil, nil

	if err := f.collector.Visit(pageURL); err != nil {
		if f.err != nil {
			return nil, f.err
		}
		return nil, classifyError(err, 0)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}
