package crawl

import "fmt"

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatChars formats a character count in human-readable form.
func FormatChars(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM chars", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk chars", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d chars", n)
	}
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// Summary describes a finished session on one line.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%d of %d pages saved (%s, %s), stopped: %s",
		r.Saved, r.Visited, FormatChars(r.Chars), FormatTokens(r.Tokens), r.Reason)
	if r.Failed > 0 || r.Skipped > 0 {
		s += fmt.Sprintf(", %d failed, %d skipped", r.Failed, r.Skipped)
	}
	if r.Queued > 0 {
		s += fmt.Sprintf(", %d of %d discovered URLs not visited", r.Queued, r.Discovered)
	}
	return s
}
