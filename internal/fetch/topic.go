package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jonathan/parallax-reel/internal/logging"
)

// DefaultTopicCacheTTL keeps extracted topic text for repeated lookups in one process.
const DefaultTopicCacheTTL = 30 * time.Minute

// thinPage is the extracted length below which a page is assumed to be
// rendered by JavaScript.
const thinPage = 500

var errNoText = errors.New("page has no readable text")

// RenderFunc renders a page with JavaScript and returns its HTML.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// TopicFetcherConfig configures a TopicFetcher. Zero values use defaults.
type TopicFetcherConfig struct {
	Client        *Client
	UseBrowser    bool
	RenderTimeout time.Duration
	CacheTTL      time.Duration
	// Render replaces HeadlessRender, mainly in tests.
	Render RenderFunc
}

// TopicFetcher turns a topic URL into readable text.
type TopicFetcher struct {
	client        *Client
	useBrowser    bool
	renderTimeout time.Duration
	render        RenderFunc
	texts         *cache.Cache
}

// NewTopicFetcher creates a fetcher. A nil config fetches over plain HTTP
// without browser fallback.
func NewTopicFetcher(cfg *TopicFetcherConfig) *TopicFetcher {
	if cfg == nil {
		cfg = &TopicFetcherConfig{}
	}
	f := &TopicFetcher{
		client:        cfg.Client,
		useBrowser:    cfg.UseBrowser,
		renderTimeout: cfg.RenderTimeout,
		render:        cfg.Render,
	}
	if f.client == nil {
		f.client = NewClient(DefaultTimeout)
	}
	if f.renderTimeout == 0 {
		f.renderTimeout = DefaultRenderTimeout
	}
	if f.render == nil {
		f.render = HeadlessRender
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultTopicCacheTTL
	}
	f.texts = cache.New(ttl, 2*ttl)
	return f
}

// TopicText downloads url and extracts its prose. Thin pages are rendered
// in a headless browser when that is enabled; a failed render keeps the
// plain text.
func (f *TopicFetcher) TopicText(ctx context.Context, url string) (string, error) {
	if text, ok := f.texts.Get(url); ok {
		return text.(string), nil
	}
	logger := logging.FromContext(ctx)
	site := DetectSite(url)

	page, err := f.client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := Extract(page.HTML, site)
	if err != nil {
		return "", &Error{URL: url, Op: "extract", Err: err}
	}

	if f.useBrowser && len(strings.TrimSpace(text)) < thinPage {
		logger.Info("topic page looks client-rendered, rendering in browser", "url", url, "chars", len(text))
		html, err := f.render(ctx, url, f.renderTimeout)
		switch {
		case err != nil:
			logger.Warn("browser render failed, keeping plain text", "url", url, "error", err)
		default:
			if rendered, err := Extract(html, site); err == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}

	if text == "" {
		return "", &Error{URL: url, Op: "extract", Err: errNoText}
	}
	f.texts.SetDefault(url, text)
	return text, nil
}
