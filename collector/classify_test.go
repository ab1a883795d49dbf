package collector

import (
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
)

func TestClassifyResource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cdpType network.ResourceType
		mime    string
		url     string
		want    string
	}{
		{"xhr_type", network.ResourceTypeXHR, "application/json", "https://a.test/api", ResourceXHR},
		{"fetch_type", network.ResourceTypeFetch, "application/json", "https://a.test/api", ResourceXHR},
		{"mime_script", network.ResourceTypeScript, "application/javascript", "https://a.test/x", ResourceScript},
		{"mime_script_text", "", "text/javascript", "https://a.test/x", ResourceScript},
		{"mime_css", "", "text/css", "https://a.test/x", ResourceStylesheet},
		{"mime_image", "", "image/png", "https://a.test/x", ResourceImage},
		{"mime_font", "", "font/woff2", "https://a.test/x", ResourceFont},
		{"mime_font_legacy", "", "application/font-woff", "https://a.test/x", ResourceFont},
		{"ext_script", "", "application/octet-stream", "https://a.test/bundle.js?v=3", ResourceScript},
		{"ext_css", "", "", "https://a.test/app.css", ResourceStylesheet},
		{"ext_image", "", "", "https://a.test/logo.svg", ResourceImage},
		{"ext_font", "", "", "https://a.test/fira.woff2", ResourceFont},
		{"other", "", "text/html", "https://a.test/page", ResourceOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyResource(tt.cdpType, tt.mime, tt.url))
		})
	}
}

func TestMeasurable(t *testing.T) {
	t.Parallel()

	assert.True(t, measurable("https://a.test/x.js"))
	assert.True(t, measurable("http://a.test/"))
	assert.False(t, measurable("data:image/png;base64,AAA"))
	assert.False(t, measurable("blob:https://a.test/123-456"))
	assert.False(t, measurable("DATA:text/plain,x"))
}

func TestCacheLifetimeMs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers network.Headers
		want    int64
	}{
		{"no_store", network.Headers{"Cache-Control": "no-store"}, 0},
		{"no_cache", network.Headers{"cache-control": "no-cache, max-age=600"}, 0},
		{"max_age", network.Headers{"Cache-Control": "public, max-age=600"}, 600_000},
		{"s_maxage_wins", network.Headers{"Cache-Control": "max-age=60, s-maxage=120"}, 120_000},
		{"bad_max_age", network.Headers{"Cache-Control": "max-age=nope"}, 0},
		{"no_headers_is_well_cached", network.Headers{}, wellCachedLifetimeMs},
		{"invalid_expires", network.Headers{"Expires": "0"}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cacheLifetimeMs(tt.headers))
		})
	}

	t.Run("expires_with_date", func(t *testing.T) {
		t.Parallel()
		date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		exp := date.Add(2 * time.Hour)
		got := cacheLifetimeMs(network.Headers{
			"Date":    date.Format(time.RFC1123),
			"Expires": exp.Format(time.RFC1123),
		})
		assert.Equal(t, int64(2*time.Hour/time.Millisecond), got)
	})

	t.Run("expires_in_past", func(t *testing.T) {
		t.Parallel()
		date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		got := cacheLifetimeMs(network.Headers{
			"Date":    date.Format(time.RFC1123),
			"Expires": date.Add(-time.Hour).Format(time.RFC1123),
		})
		assert.Zero(t, got)
	})
}

func TestRecordSizeBytes(t *testing.T) {
	t.Parallel()

	// Zero transfer size falls back to resource size, never silently zero.
	r := RequestRecord{TransferSize: 0, ResourceSize: 2048}
	assert.Equal(t, int64(2048), r.SizeBytes())

	r = RequestRecord{TransferSize: 512, ResourceSize: 2048}
	assert.Equal(t, int64(512), r.SizeBytes())
}

func TestBreakdownOf(t *testing.T) {
	t.Parallel()

	records := []RequestRecord{
		{ResourceType: ResourceScript, TransferSize: 100},
		{ResourceType: ResourceScript, TransferSize: 0, ResourceSize: 50},
		{ResourceType: ResourceImage, TransferSize: 10},
	}
	b := BreakdownOf(records)

	assert.Equal(t, ResourceTypeCount{Count: 2, Bytes: 150}, b[ResourceScript])
	assert.Equal(t, ResourceTypeCount{Count: 1, Bytes: 10}, b[ResourceImage])
	assert.NotContains(t, b, ResourceFont)

	assert.Empty(t, BreakdownOf(nil))
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateURL("https://example.com/page"))
	assert.NoError(t, validateURL("http://example.com"))

	for _, bad := range []string{"ftp://example.com", "file:///etc/passwd", "example.com", ""} {
		err := validateURL(bad)
		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr, "url %q", bad)
	}
}
