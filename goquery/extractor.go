// Package goquery implements HTML text and link extraction using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitechat"
	"golang.org/x/net/html"
)

var _ sitechat.Extractor = (*Extractor)(nil)

// invisible lists elements whose text is never shown to a reader.
const invisible = "script, style, noscript"

// Extractor extracts the visible text of an HTML page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the visible text of the body, or of
// the whole document when it has no body. Text nodes are joined with single
// spaces and every whitespace run is collapsed.
func (e *Extractor) Extract(rawHTML string) (*sitechat.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sitechat.Errorf(sitechat.EINVALID, "failed to parse HTML: %v", err)
	}

	title := collapse(doc.Find("title").First().Text())

	doc.Find(invisible).Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	for _, n := range root.Nodes {
		parts = collectText(n, parts)
	}

	return &sitechat.ExtractResult{
		Title: title,
		Text:  collapse(strings.Join(parts, " ")),
	}, nil
}

// collectText appends the data of every text node below n in document order.
func collectText(n *html.Node, parts []string) []string {
	if n.Type == html.TextNode {
		return append(parts, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(c, parts)
	}
	return parts
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
