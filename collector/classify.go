package collector

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
)

// Resource classifications reported in records and the breakdown.
const (
	ResourceScript     = "script"
	ResourceStylesheet = "stylesheet"
	ResourceImage      = "image"
	ResourceFont       = "font"
	ResourceXHR        = "xhr"
	ResourceOther      = "other"
)

// wellCachedLifetimeMs is assigned to resources whose caching policy is
// unknown. They are treated as well-cached, never as uncached, so they don't
// pollute the problematic-resource report.
const wellCachedLifetimeMs = int64(365 * 24 * time.Hour / time.Millisecond)

// classifyResource maps a request to one of the resource classifications.
// The fetch type wins for XHR-style requests; otherwise the MIME type is
// consulted first, then the URL extension.
func classifyResource(cdpType network.ResourceType, mimeType, rawURL string) string {
	switch cdpType {
	case network.ResourceTypeXHR, network.ResourceTypeFetch:
		return ResourceXHR
	}

	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "javascript"), strings.Contains(mime, "ecmascript"):
		return ResourceScript
	case mime == "text/css":
		return ResourceStylesheet
	case strings.HasPrefix(mime, "image/"):
		return ResourceImage
	case strings.HasPrefix(mime, "font/"),
		strings.Contains(mime, "font-woff"),
		mime == "application/vnd.ms-fontobject":
		return ResourceFont
	}

	switch extOf(rawURL) {
	case ".js", ".mjs", ".cjs":
		return ResourceScript
	case ".css":
		return ResourceStylesheet
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".avif", ".bmp":
		return ResourceImage
	case ".woff", ".woff2", ".ttf", ".otf", ".eot":
		return ResourceFont
	}

	return ResourceOther
}

func extOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}

// measurable reports whether a request URL takes part in the measurement.
// data: and blob: URIs never touch the network and are excluded from both
// the request count and the records.
func measurable(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return !strings.HasPrefix(lower, "data:") && !strings.HasPrefix(lower, "blob:")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// cacheLifetimeMs derives the effective freshness lifetime in milliseconds
// from response headers. Priority follows RFC 9111: no-store/no-cache mean
// no lifetime, s-maxage and max-age win over Expires. A response without
// any caching headers yields wellCachedLifetimeMs.
func cacheLifetimeMs(headers network.Headers) int64 {
	cc := strings.ToLower(headerValue(headers, "cache-control"))
	if cc != "" {
		if strings.Contains(cc, "no-store") || strings.Contains(cc, "no-cache") {
			return 0
		}
		if ma, ok := ccDirectiveSeconds(cc, "s-maxage"); ok {
			return ma * 1000
		}
		if ma, ok := ccDirectiveSeconds(cc, "max-age"); ok {
			return ma * 1000
		}
	}

	expires := headerValue(headers, "expires")
	if expires != "" {
		exp, err := http1DateParse(expires)
		if err != nil {
			// An invalid Expires (e.g. "0") means already stale.
			return 0
		}
		date := time.Now()
		if d := headerValue(headers, "date"); d != "" {
			if parsed, err := http1DateParse(d); err == nil {
				date = parsed
			}
		}
		ms := exp.Sub(date).Milliseconds()
		if ms < 0 {
			return 0
		}
		return ms
	}

	return wellCachedLifetimeMs
}

func ccDirectiveSeconds(cc, directive string) (int64, bool) {
	for _, part := range strings.Split(cc, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, directive+"=") {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimPrefix(part, directive+"="), 10, 64)
		if err != nil || v < 0 {
			return 0, true
		}
		return v, true
	}
	return 0, false
}

func http1DateParse(v string) (time.Time, error) {
	return time.Parse(time.RFC1123, v)
}

// headerValue performs a case-insensitive header lookup on a CDP header map.
func headerValue(headers network.Headers, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
