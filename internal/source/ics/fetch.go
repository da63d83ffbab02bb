// Package ics implements the read-only remote calendar source backed by
// an ICS subscription feed.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const fetchTimeout = 15 * time.Second

// Fetcher downloads ICS payloads with conditional requests. ETag and
// Last-Modified validators plus the last good body are kept in memory,
// so an unchanged feed costs one 304 round trip and a failed fetch
// falls back to the previous payload.
type Fetcher struct {
	client *http.Client

	mu           sync.Mutex
	etag         string
	lastModified string
	body         []byte
}

// NewFetcher constructs a Fetcher. The client is optional; nil uses a
// default with a request timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Fetcher{client: client}
}

// Fetch retrieves the feed at rawURL. The boolean reports whether the
// returned body came from the in-memory cache rather than the network.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	if rawURL == "" {
		return nil, false, errors.New("ics: feed url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ics: build request: %w", err)
	}

	f.mu.Lock()
	if f.etag != "" {
		req.Header.Set("If-None-Match", f.etag)
	}
	if f.lastModified != "" {
		req.Header.Set("If-Modified-Since", f.lastModified)
	}
	cached := f.body
	f.mu.Unlock()

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("ics: fetch %s: %w", RedactURL(rawURL), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("ics: read body: %w", err)
		}
		f.mu.Lock()
		f.etag = resp.Header.Get("ETag")
		f.lastModified = resp.Header.Get("Last-Modified")
		f.body = body
		f.mu.Unlock()
		return body, false, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, false, errors.New("ics: 304 Not Modified without a cached body")
		}
		return cached, true, nil

	default:
		if len(cached) > 0 {
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("ics: fetch %s: %s", RedactURL(rawURL), resp.Status)
	}
}

// RedactURL strips the path and query from a feed URL so private tokens
// never reach the logs.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
