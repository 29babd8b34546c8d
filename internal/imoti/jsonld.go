package imoti

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"netita/server/internal/models"
)

// partialListing is what a single source managed to recover. Nil means "not found".
type partialListing struct {
	Price         *float64
	PriceCurrency *models.Currency
	AreaM2        *float64
	District      *string
	PropertyType  *string
	YearBuilt     *int
}

// fromStructuredData reads application/ld+json blocks. The first JSON object found wins,
// even when it carries none of the fields we need.
func fromStructuredData(doc *goquery.Document) partialListing {
	var result partialListing
	found := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return true
		}

		candidates, ok := parsed.([]any)
		if !ok {
			candidates = []any{parsed}
		}
		for _, c := range candidates {
			node, ok := c.(map[string]any)
			if !ok {
				continue
			}
			result = listingFromNode(node)
			found = true
			return false
		}
		return true
	})

	if !found {
		return partialListing{}
	}
	return result
}

func listingFromNode(node map[string]any) partialListing {
	offer := firstObject(coalesce(node["offers"], node["Offers"]))

	var price, currency, area any
	if offer != nil {
		price = offer["price"]
		currency = coalesce(offer["priceCurrency"], offer["price_currency"])
	}
	price = coalesce(price, node["price"])
	currency = coalesce(currency, node["priceCurrency"], node["price_currency"])

	if floorSize, ok := node["floorSize"].(map[string]any); ok {
		area = floorSize["value"]
	}
	area = coalesce(area, node["floorSize"], node["area"])

	out := partialListing{
		Price:     jsonNumber(price),
		AreaM2:    jsonNumber(area),
		YearBuilt: truncPositive(jsonNumber(truthy(node["yearBuilt"], node["founded"]))),
	}

	if s, ok := currency.(string); ok {
		out.PriceCurrency = NormalizeCurrency(s)
	}
	if s, ok := truthy(node["@type"], node["propertyType"], node["category"]).(string); ok {
		out.PropertyType = nonEmpty(NormalizeSpace(s))
	}
	out.District = districtFromNode(node)

	return out
}

func districtFromNode(node map[string]any) *string {
	address := truthy(node["address"], node["location"])
	if obj, ok := address.(map[string]any); ok {
		if s, ok := truthy(obj["addressLocality"], obj["addressRegion"]).(string); ok {
			return nonEmpty(NormalizeSpace(s))
		}
	}
	if s, ok := node["address"].(string); ok {
		return nonEmpty(NormalizeSpace(s))
	}
	return nil
}

// coalesce returns the first value that is present (not nil).
func coalesce(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// truthy returns the first value that is neither nil, false, zero nor an empty string.
func truthy(values ...any) any {
	for _, v := range values {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
		case float64:
			if t == 0 {
				continue
			}
		case bool:
			if !t {
				continue
			}
		}
		return v
	}
	return nil
}

func firstObject(v any) map[string]any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	obj, _ := v.(map[string]any)
	return obj
}

func jsonNumber(v any) *float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case string:
		return ToNumberLoose(t)
	default:
		return nil
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
