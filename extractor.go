package sitechat

// ExtractResult holds the text extracted from an HTML page.
type ExtractResult struct {
	// Title is the document title, if any.
	Title string

	// Text is the visible text of the page: script, style and noscript
	// content removed, text nodes joined by single spaces, whitespace
	// runs collapsed and the result trimmed.
	Text string
}

// Extractor extracts visible text from HTML pages.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// LinkSelector extracts links from HTML.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns absolute HTTP(S) URLs of all
	// anchors, fragments stripped, in document order without duplicates.
	// The baseURL is used to resolve relative URLs.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
