package imoti

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"netita/server/internal/models"
)

// Pattern fragments shared by the Bulgarian label regexes. Go's \b is ASCII-only, so
// token boundaries are spelled out with Unicode classes instead.
const (
	currencyToken = `(€|EUR|лв\.?|BGN)`
	tokenEnd      = `(?:[^\p{L}\p{N}]|$)`
	areaUnit      = `(кв\.?\s*м|m2|㎡)`
	nextLabel     = `(?:\s+(?:Цена|Площ|Квадратура|Етаж|Строителство|Година|Тип|Вид|Имот|Район|Квартал)|\s*$)`

	// A label must stand as its own word: "Кв" is not the start of "Квадратура".
	labelStart = `(?:^|[^\p{L}])`
	labelEnd   = `(?:[^\p{L}]|$)`

	// Characters after a price inspected for a per-area marker.
	perAreaWindow = 24
)

var (
	whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

	labeledPrice = regexp.MustCompile(`(?i)(Обща\s*цена|Цена)\s*[:\-]?\s*([0-9][0-9\s.,]+)\s*` + currencyToken + tokenEnd)
	genericPrice = regexp.MustCompile(`(?i)([0-9][0-9\s.,]{3,})\s*` + currencyToken + tokenEnd)

	labeledArea = regexp.MustCompile(`(?i)(Обща\s+площ|Площ|Квадратура)\s*[:\-]?\s*([0-9][0-9\s.,]*)\s*` + areaUnit)
	bareArea    = regexp.MustCompile(`(?i)([0-9][0-9\s.,]*)\s*` + areaUnit + tokenEnd)

	labeledDistrict = regexp.MustCompile(`(?i)` + labelStart + `(Район|Квартал|Кв\.|Кв|Р-н)` + labelEnd + `\s*[:\-]?\s*([A-Za-zА-Яа-я]{2}[A-Za-zА-Яа-я0-9\s\-]*?)` + nextLabel)
	labeledType     = regexp.MustCompile(`(?i)` + labelStart + `(Тип\s*имот|Вид\s*имот|Имот)` + labelEnd + `\s*[:\-]?\s*([A-Za-zА-Яа-я]{2}[A-Za-zА-Яа-я\s\-]*?)` + nextLabel)

	labeledFloor    = regexp.MustCompile(`(?i)(Етаж)\s*[:\-]?\s*(\d{1,2})`)
	labeledYear     = regexp.MustCompile(`(?i)(Година\s*на\s*строителство|Година\s*строителство)\s*[:\-]?\s*(\d{4})`)
	constructedYear = regexp.MustCompile(`(?i)(Строителство)\s*[:\-]?\s*(\d{4})`)

	perAreaMarkers = []*regexp.Regexp{
		regexp.MustCompile(`/\s*(m2|㎡)`),
		regexp.MustCompile(`/\s*м\s*2`),
		regexp.MustCompile(`/\s*м²`),
		regexp.MustCompile(`(?:^|\s)на\s*(кв\.?\s*м|m2|㎡)`),
		regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(кв\.?\s*м|m2|㎡|м²)(?:[^\p{L}\p{N}]|$)`),
	}
)

// Amount is a price candidate found in free text.
type Amount struct {
	Value    float64
	Currency *models.Currency
}

// NormalizeSpace collapses whitespace runs into single spaces and trims the result.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ToNumberLoose parses "150 000,50"-style numbers. It returns nil when nothing numeric remains.
func ToNumberLoose(s string) *float64 {
	s = whitespace.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// NormalizeCurrency maps a currency token to BGN or EUR.
func NormalizeCurrency(token string) *models.Currency {
	t := strings.ToUpper(strings.TrimSpace(token))
	var c models.Currency
	switch {
	case t == "":
		return nil
	case strings.Contains(t, "BGN") || strings.Contains(t, "ЛВ"):
		c = models.CurrencyBGN
	case strings.Contains(t, "EUR") || strings.Contains(t, "€"):
		c = models.CurrencyEUR
	default:
		return nil
	}
	return &c
}

// LooksPerArea reports whether the text right after offset reads like a per-m² rate.
// Only the first perAreaWindow runes up to the next digit are inspected.
func LooksPerArea(text string, offset int) bool {
	if offset < 0 || offset > len(text) {
		return false
	}
	tail := []rune(text[offset:])
	if len(tail) > perAreaWindow {
		tail = tail[:perAreaWindow]
	}
	// A unit after another number belongs to that number ("€ Площ 50 кв.м").
	for i, r := range tail {
		if unicode.IsDigit(r) && (i == 0 || !unicode.IsLetter(tail[i-1])) {
			tail = tail[:i]
			break
		}
	}
	window := strings.ToLower(string(tail))

	for _, marker := range perAreaMarkers {
		if marker.MatchString(window) {
			return true
		}
	}
	return false
}

// PickTotalPrice returns the first labeled total price, then the first unlabeled
// "amount + currency" match. Candidates followed by a per-area marker are skipped.
func PickTotalPrice(text string) *Amount {
	if text == "" {
		return nil
	}
	if a := firstPrice(text, labeledPrice, 2, 3); a != nil {
		return a
	}
	return firstPrice(text, genericPrice, 1, 2)
}

func firstPrice(text string, re *regexp.Regexp, amountGroup, currencyGroup int) *Amount {
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		currencyEnd := m[2*currencyGroup+1]
		if LooksPerArea(text, currencyEnd) {
			continue
		}
		value := ToNumberLoose(text[m[2*amountGroup]:m[2*amountGroup+1]])
		if value == nil || *value == 0 {
			continue
		}
		return &Amount{
			Value:    *value,
			Currency: NormalizeCurrency(text[m[2*currencyGroup]:currencyEnd]),
		}
	}
	return nil
}

// PickArea returns the labeled area or, failing that, the first "number + unit".
func PickArea(text string) *float64 {
	if m := labeledArea.FindStringSubmatch(text); m != nil {
		return ToNumberLoose(m[2])
	}
	if m := bareArea.FindStringSubmatch(text); m != nil {
		return ToNumberLoose(m[1])
	}
	return nil
}

// PickMetaArea only accepts unlabeled "number + unit" matches.
func PickMetaArea(text string) *float64 {
	if m := bareArea.FindStringSubmatch(text); m != nil {
		return ToNumberLoose(m[1])
	}
	return nil
}

func PickDistrict(text string) *string {
	return pickLabeledText(text, labeledDistrict)
}

func PickPropertyType(text string) *string {
	return pickLabeledText(text, labeledType)
}

func PickFloor(text string) *int {
	return pickLabeledInt(text, labeledFloor)
}

func PickYearBuilt(text string) *int {
	if y := pickLabeledInt(text, labeledYear); y != nil {
		return y
	}
	return pickLabeledInt(text, constructedYear)
}

func pickLabeledText(text string, re *regexp.Regexp) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := NormalizeSpace(m[2])
	if v == "" {
		return nil
	}
	return &v
}

func pickLabeledInt(text string, re *regexp.Regexp) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return truncPositive(ToNumberLoose(m[2]))
}

// truncPositive drops the fractional part; zero counts as missing.
func truncPositive(n *float64) *int {
	if n == nil {
		return nil
	}
	v := int(math.Trunc(*n))
	if v == 0 {
		return nil
	}
	return &v
}
