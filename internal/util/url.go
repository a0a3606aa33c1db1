package util

import (
	"net/url"
	"strings"
)

// WebsiteFromURL derives the canonical website name from a raw URL:
// hostname, lowercased, without a leading "www.". data: URLs and anything
// unparsable yield the empty string.
func WebsiteFromURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "data:") {
		return ""
	}
	// Prepend a scheme when absent so parsing succeeds
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// FileExtension returns the lowercased final dot-segment of a filename,
// or "" when the name has no extension.
func FileExtension(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(parts[len(parts)-1])
}
