package sale

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LineTotal computes quantity * price with one historical quirk kept for
// compatibility: a priced line with zero or negative quantity counts as
// quantity one, so quick single-item sales typed as just a price still total
// correctly.
func LineTotal(quantity, pricePerUnit float64) float64 {
	if pricePerUnit <= 0 {
		return 0
	}

	if quantity <= 0 {
		quantity = 1
	}

	return quantity * pricePerUnit
}

// GrandTotal sums line totals.
func GrandTotal(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.TotalPrice
	}

	return total
}

// ParseItems decodes the persisted line-item column. Current rows hold a
// JSON array; rows written before the schema migration hold the legacy
// delimited form "name,qty,price,total" with segments joined by ';'.
// Malformed legacy segments are skipped rather than failing the sale.
func ParseItems(raw string) []LineItem {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var items []LineItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items
		}
	}

	return parseLegacyItems(raw)
}

func parseLegacyItems(raw string) []LineItem {
	var items []LineItem

	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		parts := strings.Split(segment, ",")
		if len(parts) < 4 {
			continue
		}

		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}

		total, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			continue
		}

		items = append(items, LineItem{
			// The legacy format never carried the item ID.
			ItemName:     strings.TrimSpace(parts[0]),
			Quantity:     qty,
			PricePerUnit: price,
			TotalPrice:   total,
		})
	}

	return items
}

// EncodeItems renders line items to the JSON form the store persists.
func EncodeItems(items []LineItem) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}

	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
