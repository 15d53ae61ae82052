package cache

import (
	"fmt"
	"strings"
)

// coordinates are rounded to 4 decimals (~11 m) so nearby taps share an entry.
func positionSuffix(lat, long float64) string {
	return fmt.Sprintf("lat:%.4f:long:%.4f", lat, long)
}

// cache key for the flat (all-time average) price response at a position.
func FlatPricesKey(lat, long float64) string {
	return "prices:flat:" + positionSuffix(lat, long)
}

// cache key for the per-year price response at a position.
func YearPricesKey(lat, long float64) string {
	return "prices:years:" + positionSuffix(lat, long)
}

// NormalizePostcode upper-cases a UK postcode and collapses inner whitespace to one space.
func NormalizePostcode(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
