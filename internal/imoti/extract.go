package imoti

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"netita/server/internal/apperr"
	"netita/server/internal/models"
)

const (
	codeExtractionFailed     = "EXTRACTION_FAILED"
	CodeExtractionIncomplete = "EXTRACTION_INCOMPLETE"
)

// sources are the per-page views the field cascade draws from.
type sources struct {
	structured partialListing
	body       string
	meta       string
	url        urlHints
}

// Extract recovers the listing fields from raw HTML. Each field is resolved on its own:
// structured data first, then body text, then meta tags, then (district and type only)
// the listing URL. It fails unless price, area, district and property type are all found.
func Extract(html, sourceURL string) (*models.ExtractedListing, error) {
	if strings.TrimSpace(html) == "" {
		return nil, apperr.Extraction(codeExtractionFailed, "No HTML provided for extraction")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &apperr.Error{
			Kind:    apperr.KindExtraction,
			Code:    codeExtractionFailed,
			Message: "Could not parse listing HTML",
			Err:     err,
		}
	}

	src := sources{
		structured: fromStructuredData(doc),
		body:       renderedText(doc.Find("body")),
		meta:       metaText(doc),
		url:        fromListingURL(sourceURL),
	}
	return resolve(src)
}

func resolve(src sources) (*models.ExtractedListing, error) {
	bodyPrice := PickTotalPrice(src.body)
	metaPrice := PickTotalPrice(src.meta)

	price := firstOf(src.structured.Price, amountValue(bodyPrice), amountValue(metaPrice))
	currency := firstOf(src.structured.PriceCurrency, amountCurrency(bodyPrice), amountCurrency(metaPrice))
	area := firstOf(src.structured.AreaM2, PickArea(src.body), PickMetaArea(src.meta))
	district := firstOf(src.structured.District, PickDistrict(src.body), src.url.District)
	propertyType := firstOf(src.structured.PropertyType, PickPropertyType(src.body), src.url.PropertyType)
	yearBuilt := firstOf(src.structured.YearBuilt, PickYearBuilt(src.body))
	floor := PickFloor(src.body)

	if !positive(price) || !positive(area) || district == nil || propertyType == nil {
		return nil, apperr.Extraction(CodeExtractionIncomplete,
			"Missing required fields (price, area, district, property type)")
	}

	return &models.ExtractedListing{
		Price:         math.Round(*price),
		PriceCurrency: currency,
		AreaM2:        *area,
		District:      *district,
		PropertyType:  *propertyType,
		Floor:         floor,
		YearBuilt:     yearBuilt,
	}, nil
}

// firstOf returns the first non-nil candidate.
func firstOf[T any](candidates ...*T) *T {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func positive(n *float64) bool {
	return n != nil && *n > 0
}

func amountValue(a *Amount) *float64 {
	if a == nil {
		return nil
	}
	return &a.Value
}

func amountCurrency(a *Amount) *models.Currency {
	if a == nil {
		return nil
	}
	return a.Currency
}

// metaText joins og:title with the first non-empty description meta tag.
func metaText(doc *goquery.Document) string {
	title := metaContent(doc, `meta[property="og:title"]`)
	desc := metaContent(doc, `meta[property="og:description"]`, `meta[name="description"]`)

	var parts []string
	for _, p := range []string{title, desc} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return NormalizeSpace(strings.Join(parts, " "))
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := NormalizeSpace(doc.Find(sel).First().AttrOr("content", "")); v != "" {
			return v
		}
	}
	return ""
}
