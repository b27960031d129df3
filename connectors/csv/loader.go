package csv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"pr-dashboard/domain/pr"
)

// ErrFetch marks a failure to obtain the raw CSV text. It is terminal for
// the load attempt; nothing retries it.
var ErrFetch = errors.New("fetch pr data")

// Loader fetches the PR data from a local path or an http(s) URL.
type Loader struct {
	source string
	quoted bool
	client *http.Client
}

// NewLoader builds a Loader. token, when set, is sent as a bearer token on
// remote fetches. quoted switches to RFC 4180 parsing.
func NewLoader(source, token string, quoted bool) *Loader {
	return &Loader{source: source, quoted: quoted, client: NewHTTPClient(token)}
}

// NewHTTPClient returns a client that revalidates cached responses with
// ETag/Last-Modified and optionally authenticates with a static token.
func NewHTTPClient(token string) *http.Client {
	var rt http.RoundTripper = httpcache.NewMemoryCacheTransport()
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rt,
		}
	}
	return &http.Client{Transport: rt, Timeout: 30 * time.Second}
}

// WithHTTPClient replaces the client used for remote sources.
func (l *Loader) WithHTTPClient(c *http.Client) *Loader {
	l.client = c
	return l
}

// Source returns the configured location.
func (l *Loader) Source() string { return l.source }

// Load fetches and parses the data. Fetch problems wrap ErrFetch.
func (l *Loader) Load(ctx context.Context) ([]pr.Record, error) {
	text, err := l.fetch(ctx)
	if err != nil {
		slog.Error("load.fetch.error", "source", l.source, "error", err)
		return nil, err
	}
	if !l.quoted {
		recs := Parse(text)
		slog.Info("load.done", "source", l.source, "records", len(recs))
		return recs, nil
	}
	recs, err := ParseQuoted(text)
	if err != nil {
		slog.Error("load.parse.error", "source", l.source, "error", err)
		return nil, fmt.Errorf("parse %s: %w", l.source, err)
	}
	slog.Info("load.done", "source", l.source, "records", len(recs), "quoted", true)
	return recs, nil
}

func (l *Loader) fetch(ctx context.Context) (string, error) {
	if !isRemote(l.source) {
		b, err := os.ReadFile(l.source)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return string(b), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: HTTP error! status: %d", ErrFetch, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	slog.Debug("load.fetch.done", "source", l.source, "bytes", len(b), "cached", resp.Header.Get(httpcache.XFromCache) != "")
	return string(b), nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
