package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"netita/server/internal/apperr"
	"netita/server/internal/imoti"
)

const (
	DefaultTimeout      = 12 * time.Second
	DefaultMaxBytes     = 1_000_000
	DefaultMaxRedirects = 10

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "bg-BG,bg;q=0.9,en;q=0.8"
)

const (
	CodeFetchFailed        = "UPSTREAM_FETCH_FAILED"
	CodeTimeout            = "UPSTREAM_TIMEOUT"
	CodeRedirectFailed     = "UPSTREAM_REDIRECT_FAILED"
	CodeRedirectDisallowed = "UPSTREAM_REDIRECT_DISALLOWED"
	CodeRedirectLoop       = "UPSTREAM_REDIRECT_LOOP"
	CodeTooManyRedirects   = "UPSTREAM_TOO_MANY_REDIRECTS"
	CodeBadStatus          = "UPSTREAM_BAD_STATUS"
	CodeNotHTML            = "UPSTREAM_NOT_HTML"
	CodeTooLarge           = "UPSTREAM_TOO_LARGE"
)

// Options tunes the fetcher. Zero values fall back to the defaults above.
type Options struct {
	Timeout      time.Duration
	MaxBytes     int64
	MaxRedirects int

	// Transport replaces http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
}

// Fetcher downloads listing pages from untrusted upstream sites. Redirects are followed by
// hand so that every hop is checked against the host policy.
type Fetcher struct {
	logger       *logrus.Logger
	hosts        imoti.HostPolicy
	client       *http.Client
	timeout      time.Duration
	maxBytes     int64
	maxRedirects int
}

func NewFetcher(logger *logrus.Logger, hosts imoti.HostPolicy, opts Options) *Fetcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	return &Fetcher{
		logger: logger,
		hosts:  hosts,
		client: &http.Client{
			Transport: opts.Transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:      opts.Timeout,
		maxBytes:     opts.MaxBytes,
		maxRedirects: opts.MaxRedirects,
	}
}

// Fetch returns the page at rawURL as UTF-8 text. One deadline covers every redirect hop
// and the body read.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return "", apperr.Upstream(CodeFetchFailed, "Failed to fetch upstream URL", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	visited := map[string]bool{current.String(): true}

	for hop := 0; hop <= f.maxRedirects; hop++ {
		f.logger.WithFields(logrus.Fields{
			"url": current.String(),
			"hop": hop,
		}).Debug("Fetching upstream page")

		resp, err := f.get(ctx, current)
		if err != nil {
			return "", err
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			discard(resp)

			next, err := f.nextHop(current, location)
			if err != nil {
				return "", err
			}
			if visited[next.String()] {
				return "", apperr.Upstream(CodeRedirectLoop, "Upstream redirect loop detected", nil)
			}
			visited[next.String()] = true
			current = next
			continue
		}

		return f.readHTML(ctx, resp)
	}

	return "", apperr.Upstream(CodeTooManyRedirects, "Too many redirects", nil)
}

func (f *Fetcher) get(ctx context.Context, target *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, apperr.Upstream(CodeFetchFailed, "Failed to fetch upstream URL", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	return resp, nil
}

// nextHop resolves a Location header and applies the same scheme and host rules as the
// initial URL.
func (f *Fetcher) nextHop(current *url.URL, location string) (*url.URL, error) {
	if location == "" {
		return nil, apperr.Upstream(CodeRedirectFailed, "Upstream redirect missing Location header", nil)
	}
	next, err := current.Parse(location)
	if err != nil {
		return nil, apperr.Upstream(CodeRedirectFailed, "Upstream redirect has an invalid Location header", err)
	}
	if next.Scheme != "https" || !f.hosts.Allowed(next.Hostname()) || next.User != nil {
		f.logger.WithField("location", next.Redacted()).Warn("Refusing upstream redirect")
		return nil, apperr.Upstream(CodeRedirectDisallowed, "Upstream redirected to a disallowed host", nil)
	}
	next.Fragment = ""
	next.RawFragment = ""
	return next, nil
}

func (f *Fetcher) readHTML(ctx context.Context, resp *http.Response) (string, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Upstream(CodeBadStatus, fmt.Sprintf("Upstream responded with %d", resp.StatusCode), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", apperr.Upstream(CodeNotHTML, "Upstream did not return HTML", nil)
	}

	// Reading one byte past the cap is enough to tell an oversized body apart.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", transportError(ctx, err)
	}
	if int64(len(raw)) > f.maxBytes {
		return "", apperr.Upstream(CodeTooLarge, "Upstream HTML too large", nil)
	}

	return decode(raw, contentType), nil
}

// decode converts the body to UTF-8 using the Content-Type charset, a BOM or a <meta> hint.
func decode(raw []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" {
		return string(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Upstream(CodeTimeout, "Upstream request timed out", err)
	}
	return apperr.Upstream(CodeFetchFailed, "Failed to fetch upstream URL", err)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
