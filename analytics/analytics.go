// Package analytics derives read-only statistical views from a page's
// request records. Every transform is pure: empty input yields empty,
// zero-total structures, never an error.
package analytics

import (
	"net/url"
	"strings"
)

const (
	msHour = 3_600_000
	msDay  = 86_400_000
	msWeek = 604_800_000
)

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// extractFilename returns the last path segment of a URL, or "" when the URL
// has no usable path.
func extractFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	return p
}
