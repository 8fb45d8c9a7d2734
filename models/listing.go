// Package models defines data structures for the crawler.
package models

import "time"

// Listing represents one product entry extracted from a storefront
// results page. ItemID is the persistence key and is always derived
// from ProductURL.
type Listing struct {
	ItemID     string `json:"item_id"`
	Title      string `json:"title"`
	Condition  string `json:"condition"`
	Price      string `json:"price"`
	ProductURL string `json:"product_url"`
}

// CrawlResult holds the overall result of a crawl.
type CrawlResult struct {
	StartTime     time.Time
	EndTime       time.Time
	PagesCrawled  int
	ItemsFound    int
	ItemsFiltered int
	ItemsInvalid  int
	ItemsSaved    int
	ItemsFailed   int
	FailedURL     string
	ErrorsByType  map[string]int
}
