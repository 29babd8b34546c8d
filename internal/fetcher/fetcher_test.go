package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netita/server/internal/apperr"
	"netita/server/internal/imoti"
)

const startURL = "https://www.imoti.net/bg/obiava/prodava/sofia/lozenets/dvustaen/1234567"

type handlerFunc func(req *http.Request) (*http.Response, error)

// scriptedTransport answers requests from a fixed URL -> response table.
type scriptedTransport struct {
	mu     sync.Mutex
	routes map[string]handlerFunc
	calls  []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.URL.String())
	h, ok := s.routes[req.URL.String()]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected request to %s", req.URL)
	}
	return h(req)
}

func respond(req *http.Request, status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func page(contentType, body string) handlerFunc {
	return func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusOK, http.Header{"Content-Type": {contentType}}, body), nil
	}
}

func redirect(status int, location string) handlerFunc {
	return func(req *http.Request) (*http.Response, error) {
		h := http.Header{}
		if location != "" {
			h.Set("Location", location)
		}
		return respond(req, status, h, ""), nil
	}
}

func statusOnly(status int) handlerFunc {
	return func(req *http.Request) (*http.Response, error) {
		return respond(req, status, http.Header{"Content-Type": {"text/html"}}, "error"), nil
	}
}

func newTestFetcher(routes map[string]handlerFunc, opts Options) (*Fetcher, *scriptedTransport) {
	transport := &scriptedTransport{routes: routes}
	opts.Transport = transport
	return NewFetcher(logrus.New(), imoti.NewHostPolicy(""), opts), transport
}

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		routes   map[string]handlerFunc
		opts     Options
		expected string
		code     string
		errMsg   string
	}{
		{
			name: "html page",
			routes: map[string]handlerFunc{
				startURL: page("text/html; charset=utf-8", "<html>ok</html>"),
			},
			expected: "<html>ok</html>",
		},
		{
			name: "follows allowed redirects",
			routes: map[string]handlerFunc{
				startURL:                        redirect(http.StatusMovedPermanently, "https://imoti.net/bg/obiava/1"),
				"https://imoti.net/bg/obiava/1": redirect(http.StatusFound, "/bg/obiava/2#photos"),
				"https://imoti.net/bg/obiava/2": page("text/html", "<p>final</p>"),
			},
			expected: "<p>final</p>",
		},
		{
			name: "redirect to foreign host",
			routes: map[string]handlerFunc{
				startURL: redirect(http.StatusFound, "https://evil.com/steal"),
			},
			code: CodeRedirectDisallowed,
		},
		{
			name: "redirect to lookalike host",
			routes: map[string]handlerFunc{
				startURL: redirect(http.StatusFound, "https://notimoti.net/bg/obiava/1"),
			},
			code: CodeRedirectDisallowed,
		},
		{
			name: "redirect downgrades to http",
			routes: map[string]handlerFunc{
				startURL: redirect(http.StatusFound, "http://www.imoti.net/bg/obiava/1"),
			},
			code: CodeRedirectDisallowed,
		},
		{
			name: "redirect without location",
			routes: map[string]handlerFunc{
				startURL: redirect(http.StatusFound, ""),
			},
			code: CodeRedirectFailed,
		},
		{
			name: "redirect loop",
			routes: map[string]handlerFunc{
				startURL:                            redirect(http.StatusFound, "https://www.imoti.net/bg/obiava/a"),
				"https://www.imoti.net/bg/obiava/a": redirect(http.StatusFound, startURL),
			},
			code: CodeRedirectLoop,
		},
		{
			name: "bad status",
			routes: map[string]handlerFunc{
				startURL: statusOnly(http.StatusNotFound),
			},
			code:   CodeBadStatus,
			errMsg: "Upstream responded with 404",
		},
		{
			name: "not html",
			routes: map[string]handlerFunc{
				startURL: page("application/json", `{"ok":true}`),
			},
			code: CodeNotHTML,
		},
		{
			name: "missing content type",
			routes: map[string]handlerFunc{
				startURL: page("", "<html></html>"),
			},
			code: CodeNotHTML,
		},
		{
			name: "body at the cap",
			routes: map[string]handlerFunc{
				startURL: page("text/html", strings.Repeat("a", 10)),
			},
			opts:     Options{MaxBytes: 10},
			expected: strings.Repeat("a", 10),
		},
		{
			name: "body over the cap",
			routes: map[string]handlerFunc{
				startURL: page("text/html", strings.Repeat("a", 11)),
			},
			opts: Options{MaxBytes: 10},
			code: CodeTooLarge,
		},
		{
			name: "transport failure",
			routes: map[string]handlerFunc{
				startURL: func(*http.Request) (*http.Response, error) {
					return nil, fmt.Errorf("connection refused")
				},
			},
			code: CodeFetchFailed,
		},
		{
			name: "windows-1251 page",
			routes: map[string]handlerFunc{
				startURL: page("text/html; charset=windows-1251", "<p>\xd6\xe5\xed\xe0</p>"),
			},
			expected: "<p>Цена</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(tt.routes, tt.opts)

			got, err := f.Fetch(context.Background(), startURL)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, tt.code), "unexpected error: %v", err)
				assert.Equal(t, http.StatusBadGateway, apperr.Status(err))
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func redirectChain(length int) map[string]handlerFunc {
	routes := map[string]handlerFunc{}
	hop := func(i int) string {
		if i == 0 {
			return startURL
		}
		return fmt.Sprintf("https://www.imoti.net/bg/obiava/hop/%d", i)
	}
	for i := 0; i < length; i++ {
		routes[hop(i)] = redirect(http.StatusFound, hop(i+1))
	}
	routes[hop(length)] = page("text/html", "<p>end</p>")
	return routes
}

func TestFetcher_RedirectCap(t *testing.T) {
	f, transport := newTestFetcher(redirectChain(DefaultMaxRedirects), Options{})
	got, err := f.Fetch(context.Background(), startURL)
	require.NoError(t, err)
	assert.Equal(t, "<p>end</p>", got)
	assert.Len(t, transport.calls, DefaultMaxRedirects+1)

	f, transport = newTestFetcher(redirectChain(DefaultMaxRedirects+1), Options{})
	_, err = f.Fetch(context.Background(), startURL)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, CodeTooManyRedirects), "unexpected error: %v", err)
	assert.Len(t, transport.calls, DefaultMaxRedirects+1)
}

func TestFetcher_Timeout(t *testing.T) {
	routes := map[string]handlerFunc{
		startURL: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
	f, _ := newTestFetcher(routes, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := f.Fetch(context.Background(), startURL)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, CodeTimeout), "unexpected error: %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetcher_BrowserHeaders(t *testing.T) {
	var seen http.Header
	routes := map[string]handlerFunc{
		startURL: func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Clone()
			return respond(req, http.StatusOK, http.Header{"Content-Type": {"text/html"}}, "ok"), nil
		},
	}
	f, _ := newTestFetcher(routes, Options{})

	_, err := f.Fetch(context.Background(), startURL)
	require.NoError(t, err)
	assert.Contains(t, seen.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, acceptLanguage, seen.Get("Accept-Language"))
	assert.Equal(t, "no-cache", seen.Get("Cache-Control"))
}
