package sitechat

import "strings"

// AssembleContext renders pages into a single labeled text block.
// Each page becomes its URL in square brackets followed by its content
// on the next line; pages are separated by a blank line. Nothing is
// truncated, ranked or deduplicated.
//
// Returns ENOTREADY if there are no pages.
func AssembleContext(pages []*Page) (string, error) {
	if len(pages) == 0 {
		return "", Errorf(ENOTREADY, "No information available")
	}

	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("[")
		sb.WriteString(p.URL)
		sb.WriteString("]\n")
		sb.WriteString(p.Content)
	}
	return sb.String(), nil
}
