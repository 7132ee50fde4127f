// Package fetch downloads topic pages and reduces them to plain text that
// can seed scenario generation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single page download.
const DefaultTimeout = 30 * time.Second

const (
	userAgent    = "Mozilla/5.0 (compatible; ParallaxReel/1.0; +topic-fetch)"
	maxPageBytes = 8 << 20
)

// Page is a downloaded document. HTML is truncated at 8 MiB.
type Page struct {
	URL         string
	Status      int
	ContentType string
	HTML        string
}

// Error describes a failed download, render or extraction of a topic page.
type Error struct {
	URL    string
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s %s: HTTP status %d", e.Op, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.URL)
}

func (e *Error) Unwrap() error { return e.Err }

// Client downloads topic pages over plain HTTP.
type Client struct {
	http   *http.Client
	header http.Header
}

// NewClient returns a client with the given request timeout; zero uses
// DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml")
	return &Client{http: &http.Client{Timeout: timeout}, header: h}
}

// Get downloads rawURL. A non-2xx answer returns the page together with an
// *Error carrying the status.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "parse", Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &Error{URL: rawURL, Op: "parse", Err: fmt.Errorf("not an http(s) URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "get", Err: err}
	}
	req.Header = c.header.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "get", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "read", Err: err}
	}

	page := &Page{
		URL:         rawURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        string(body),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, &Error{URL: rawURL, Op: "get", Status: resp.StatusCode}
	}
	return page, nil
}
