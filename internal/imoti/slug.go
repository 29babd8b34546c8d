package imoti

import (
	"net/url"
	"strings"
	"unicode"
)

// urlHints carries what the listing path alone tells us.
type urlHints struct {
	District     *string
	PropertyType *string
}

// fromListingURL reads /<locale>/obiava/<deal>/<city>/<district>/<type>/<id>.
// The city segment is skipped; districts are benchmarked by name alone.
func fromListingURL(sourceURL string) urlHints {
	if sourceURL == "" {
		return urlHints{}
	}
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return urlHints{}
	}

	parts := pathSegments(parsed.Path)
	idx := -1
	for i, p := range parts {
		if strings.EqualFold(p, adSegment) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return urlHints{}
	}

	at := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	var hints urlHints
	hints.District = nonEmpty(titleizeSlug(at(idx + 3)))
	hints.PropertyType = nonEmpty(mapTypeSlug(at(idx + 4)))
	return hints
}

var typeSlugs = []struct {
	category string
	needles  []string
}{
	{"Studio", []string{"ednostaen", "studio"}},
	{"Apartment", []string{"dvustaen", "tristaen", "mnogostaen"}},
	{"House", []string{"kyshta", "kushta", "house"}},
	{"Office", []string{"ofis", "office"}},
	{"Garage", []string{"garaj", "garage"}},
	{"Penthouse", []string{"penthaus", "penthouse", "mezonet"}},
}

func mapTypeSlug(slug string) string {
	s := strings.ToLower(slug)
	if s == "" {
		return ""
	}
	for _, t := range typeSlugs {
		for _, needle := range t.needles {
			if strings.Contains(s, needle) {
				return t.category
			}
		}
	}
	return titleizeSlug(slug)
}

// titleizeSlug turns "suha-reka" into "Suha Reka".
func titleizeSlug(slug string) string {
	s := NormalizeSpace(strings.ReplaceAll(slug, "-", " "))
	runes := []rune(s)
	for i, r := range runes {
		if i == 0 || !isWordRune(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
