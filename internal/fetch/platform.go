package fetch

import (
	"net/url"
	"strings"
)

// Site is a known family of topic pages with its own layout.
type Site string

const (
	SiteWikipedia Site = "wikipedia"
	SiteMedium    Site = "medium"
	SiteHabr      Site = "habr"
	SiteGeneric   Site = "generic"
)

// DetectSite identifies the site family from a URL.
func DetectSite(urlStr string) Site {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SiteGeneric
	}
	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org"):
		return SiteWikipedia
	case host == "medium.com" || strings.HasSuffix(host, ".medium.com"):
		return SiteMedium
	case host == "habr.com" || strings.HasSuffix(host, ".habr.com"):
		return SiteHabr
	default:
		return SiteGeneric
	}
}

// Selectors returns the content selectors for a site, most specific first.
func (s Site) Selectors() []string {
	switch s {
	case SiteWikipedia:
		return []string{"#mw-content-text", "#bodyContent"}
	case SiteMedium:
		return []string{"article section", "article"}
	case SiteHabr:
		return []string{".article-formatted-body", "article"}
	default:
		return []string{"main", "article", "[role=main]", "#content", ".content", ".post-body"}
	}
}

// Noise returns site-specific elements to strip before extraction.
func (s Site) Noise() []string {
	switch s {
	case SiteWikipedia:
		return []string{".reference", ".mw-editsection", ".navbox", ".infobox", "#toc", ".reflist", ".hatnote"}
	case SiteMedium:
		return []string{".pw-responses", "[data-testid='headerClapButton']"}
	case SiteHabr:
		return []string{".tm-article-poll", ".tm-votes-meter"}
	default:
		return nil
	}
}
