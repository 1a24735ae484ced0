package crawl

import (
	"net/url"
	"strings"
)

// DomainMatcher reports whether a URL belongs to the crawled site.
type DomainMatcher func(rawURL string) bool

// MatchDomain returns a DomainMatcher accepting HTTP(S) URLs whose host is
// domain or one of its subdomains. Matching is case-insensitive and ignores ports.
func MatchDomain(domain string) DomainMatcher {
	domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	return func(rawURL string) bool {
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		host := strings.ToLower(u.Hostname())
		return host == domain || strings.HasSuffix(host, "."+domain)
	}
}

// StartURL returns the root URL of domain.
func StartURL(domain string) string {
	return "https://" + strings.TrimSpace(domain) + "/"
}
