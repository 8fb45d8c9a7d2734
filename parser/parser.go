// Package parser extracts listing records from storefront result pages.
package parser

import (
	"regexp"
	"strings"
)

var (
	itemIDRe   = regexp.MustCompile(`/itm/(\d+)`)
	nonPriceRe = regexp.MustCompile(`[^\d.]`)
)

// ExtractItemID derives the item identifier from a product URL. The
// identifier is the numeric path segment following "/itm/". An empty
// string means the URL does not carry one.
func ExtractItemID(productURL string) string {
	match := itemIDRe.FindStringSubmatch(productURL)
	if match == nil {
		return ""
	}
	return match[1]
}

// NormalizePrice strips currency symbols and thousands separators,
// keeping digits and the decimal point. Range prices ("$10 to $20")
// keep only the lower bound.
func NormalizePrice(price string) string {
	price = strings.TrimSpace(price)
	if low, _, found := strings.Cut(price, " to "); found {
		price = low
	}
	return nonPriceRe.ReplaceAllString(price, "")
}

// MatchesCondition reports whether a listing's condition passes the
// filter. An empty filter passes everything.
func MatchesCondition(condition, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.EqualFold(condition, filter)
}
