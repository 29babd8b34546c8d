package imoti

import (
	"net/url"
	"regexp"
	"strings"

	"netita/server/internal/apperr"
)

const (
	// DefaultDomain is the listing site the analyzer accepts.
	DefaultDomain = "imoti.net"

	codeInvalidURL = "INVALID_URL"

	adSegment     = "obiava"
	searchSegment = "obiavi"
	adSegmentStem = "obiav"
)

var localeSegment = regexp.MustCompile(`^(?i:bg|en|ru)$`)

// HostPolicy decides whether a hostname belongs to the allow-listed domain.
type HostPolicy struct {
	Domain string
}

// NewHostPolicy returns a policy for domain, falling back to DefaultDomain.
func NewHostPolicy(domain string) HostPolicy {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		domain = DefaultDomain
	}
	return HostPolicy{Domain: domain}
}

// Allowed reports whether host equals the domain or is one of its subdomains.
func (p HostPolicy) Allowed(host string) bool {
	host = strings.ToLower(host)
	return host == p.Domain || strings.HasSuffix(host, "."+p.Domain)
}

// Validator turns raw user input into a canonical listing URL.
type Validator struct {
	hosts HostPolicy
}

func NewValidator(hosts HostPolicy) *Validator {
	return &Validator{hosts: hosts}
}

// Hosts returns the policy the validator enforces.
func (v *Validator) Hosts() HostPolicy {
	return v.hosts
}

// Validate checks raw and returns the canonical absolute URL of a single listing page.
func (v *Validator) Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperr.Validation(codeInvalidURL, "URL is required")
	}

	// A pasted URL shortened with an ellipsis cannot point at a real listing.
	if strings.Contains(trimmed, "...") || strings.Contains(trimmed, "…") {
		return "", apperr.Validation(codeInvalidURL, `Please paste the full `+v.hosts.Domain+` listing URL (no "...").`)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", apperr.Validation(codeInvalidURL, "Invalid URL format")
	}

	if !strings.EqualFold(parsed.Scheme, "https") {
		return "", apperr.Validation(codeInvalidURL, "Only https URLs are allowed")
	}

	if !v.hosts.Allowed(parsed.Hostname()) {
		return "", apperr.Validation(codeInvalidURL, "Only "+v.hosts.Domain+" URLs are allowed")
	}

	if parsed.User != nil {
		return "", apperr.Validation(codeInvalidURL, "Credentials in URL are not allowed")
	}

	parsed.Scheme = "https"
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	switch classifyPath(parsed.Path) {
	case pathHomepage:
		return "", apperr.Validation(codeInvalidURL,
			"Please paste a specific "+v.hosts.Domain+" listing URL (not the homepage).")
	case pathLocaleLanding:
		return "", apperr.Validation(codeInvalidURL,
			"Please paste a specific "+v.hosts.Domain+" property listing URL (a single ad page), not a language landing page like /bg.")
	case pathSearchResults:
		return "", apperr.Validation(codeInvalidURL,
			"This looks like a search/results page (/"+searchSegment+"/). Please open a single property ad and paste that URL.")
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed.String(), nil
}

type pathKind int

const (
	pathListing pathKind = iota
	pathHomepage
	pathLocaleLanding
	pathSearchResults
)

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func classifyPath(path string) pathKind {
	segments := pathSegments(path)
	if len(segments) == 0 {
		return pathHomepage
	}

	hasAd, hasSearch, mentionsAds := false, false, false
	for _, s := range segments {
		lower := strings.ToLower(s)
		switch lower {
		case adSegment:
			hasAd = true
		case searchSegment:
			hasSearch = true
		}
		if strings.HasPrefix(lower, adSegmentStem) {
			mentionsAds = true
		}
	}

	if localeSegment.MatchString(segments[0]) && !mentionsAds {
		return pathLocaleLanding
	}
	if hasSearch && !hasAd {
		return pathSearchResults
	}
	return pathListing
}
