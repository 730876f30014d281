// Package fetch retrieves and normalizes document text from web pages
// and local files ahead of indexing.
package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	ragerr "github.com/ragtime-dev/ragtime/internal/errors"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// MaxBodyBytes caps the response body read per page.
const MaxBodyBytes = 10 << 20 // 10 MiB

var (
	scriptRe  = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style.*?</style>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Fetcher downloads web pages and extracts their visible text.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher with the given per-request timeout.
// A non-positive timeout uses the default.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// FetchText downloads the page at url and returns its visible text with
// markup stripped and whitespace collapsed. Failures come back as fetch
// errors so indexing can skip the page and continue.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", ragerr.FetchError(url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", ragerr.FetchError(url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", ragerr.FetchError(url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return "", ragerr.FetchError(url, err)
	}

	return ExtractText(string(body)), nil
}

// ExtractText strips scripts, styles, comments and tags from HTML,
// decodes entities and collapses runs of whitespace to single spaces.
// Plain text passes through with only whitespace normalization.
func ExtractText(raw string) string {
	text := scriptRe.ReplaceAllString(raw, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = commentRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
