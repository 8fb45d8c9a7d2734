package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-crawl-ebay/models"
)

const (
	itemSelector      = "li.s-item"
	titleSelector     = "div.s-item__title"
	priceSelector     = "span.s-item__price"
	linkSelector      = "a.s-item__link"
	conditionSelector = "span.SECONDARY_INFO"
	nextSelector      = "a.pagination__next"
)

// Page holds the outcome of extracting one result page.
type Page struct {
	Items    []*models.Listing
	Found    int      // listing nodes located on the page
	Filtered int      // dropped by the condition filter
	NoURL    int      // nodes without a product link
	BadURLs  []string // product URLs without an extractable item ID
}

// ExtractListings walks every listing node on the page and returns the
// records that survive the per-field fallbacks, the condition filter,
// and item-ID derivation. It has no side effects; the caller owns all
// diagnostics for the tallies it returns.
func ExtractListings(doc *goquery.Document, base *url.URL, filter string) *Page {
	page := &Page{}

	doc.Find(itemSelector).Each(func(_ int, node *goquery.Selection) {
		page.Found++

		href, ok := node.Find(linkSelector).First().Attr("href")
		if !ok || href == "" {
			page.NoURL++
			return
		}
		productURL, err := base.Parse(href)
		if err != nil {
			page.NoURL++
			return
		}

		condition := textOrDefault(node, conditionSelector, "Unknown")
		if !MatchesCondition(condition, filter) {
			page.Filtered++
			return
		}

		itemID := ExtractItemID(productURL.String())
		if itemID == "" {
			page.BadURLs = append(page.BadURLs, productURL.String())
			return
		}

		page.Items = append(page.Items, &models.Listing{
			ItemID:     itemID,
			Title:      textOrDefault(node, titleSelector, "No title"),
			Condition:  condition,
			Price:      NormalizePrice(textOrDefault(node, priceSelector, "0.00")),
			ProductURL: productURL.String(),
		})
	})

	return page
}

// NextPageURL locates the pagination link on the page and resolves it
// against the storefront base URL. The second return value is false
// when the page is the last in the chain.
func NextPageURL(doc *goquery.Document, base *url.URL) (string, bool) {
	href, ok := doc.Find(nextSelector).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	next, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	return next.String(), true
}

func textOrDefault(node *goquery.Selection, selector, fallback string) string {
	text := strings.TrimSpace(node.Find(selector).First().Text())
	if text == "" {
		return fallback
	}
	return text
}
