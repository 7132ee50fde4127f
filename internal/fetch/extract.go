package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that never carry topic prose.
const boilerplate = "nav, footer, header, aside, form, script, style, noscript, svg, iframe, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup"

// Text-bearing blocks collected from the content container, in document order.
const blocks = "h1, h2, h3, p, li, blockquote"

// Extract returns the readable text of a page laid out as site, one block
// per line. When the container has no block elements its raw text is used.
func Extract(html string, site Site) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find(boilerplate).Remove()
	if noise := site.Noise(); len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	root := container(doc, site.Selectors())

	var lines []string
	root.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are read through their outermost parent.
		if s.ParentsFiltered("p, li, blockquote").Length() > 0 {
			return
		}
		if line := collapse(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		for _, l := range strings.Split(root.Text(), "\n") {
			if l = collapse(l); l != "" {
				lines = append(lines, l)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func container(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return doc.Find("body")
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
