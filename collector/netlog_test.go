package collector

import (
	"context"
	"testing"
	"time"

	"github.com/greenweb/ecoscan/cdp"
	"github.com/greenweb/ecoscan/log"

	cdpext "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monoTime(sec float64) *cdpext.MonotonicTime {
	ts := cdpext.MonotonicTime(time.Unix(0, int64(sec*float64(time.Second))))
	return &ts
}

func feed(r *networkRecorder, data interface{}) {
	r.onEvent(&cdp.Event{Data: data})
}

func TestNetworkRecorderBasicRequest(t *testing.T) {
	t.Parallel()

	r := newNetworkRecorder(log.NullLogger())

	feed(r, &network.EventRequestWillBeSent{
		RequestID: "1",
		Request:   &network.Request{URL: "https://cdn.test/app.js", InitialPriority: network.ResourcePriorityHigh},
		Type:      network.ResourceTypeScript,
		Timestamp: monoTime(10.0),
	})
	feed(r, &network.EventResponseReceived{
		RequestID: "1",
		Response: &network.Response{
			URL:      "https://cdn.test/app.js",
			Status:   200,
			MimeType: "application/javascript",
			Protocol: "h2",
			Headers:  network.Headers{"Cache-Control": "max-age=600"},
		},
	})
	feed(r, &network.EventDataReceived{RequestID: "1", DataLength: 1000})
	feed(r, &network.EventDataReceived{RequestID: "1", DataLength: 500})
	feed(r, &network.EventLoadingFinished{RequestID: "1", EncodedDataLength: 900, Timestamp: monoTime(10.25)})

	records := r.records()
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "https://cdn.test/app.js", rec.URL)
	assert.Equal(t, "cdn.test", rec.Domain)
	assert.Equal(t, "h2", rec.Protocol)
	assert.Equal(t, int64(200), rec.StatusCode)
	assert.Equal(t, ResourceScript, rec.ResourceType)
	assert.Equal(t, int64(900), rec.TransferSize)
	assert.Equal(t, int64(1500), rec.ResourceSize)
	assert.Equal(t, int64(900), rec.SizeBytes())
	assert.Equal(t, int64(600_000), rec.CacheLifetimeMs)
	assert.False(t, rec.FromCache)
	assert.InDelta(t, 0, rec.StartTime, 1e-6)
	assert.InDelta(t, 250, rec.EndTime, 1e-6)
	assert.InDelta(t, 250, rec.Duration, 1e-6)
}

func TestNetworkRecorderRedirectHops(t *testing.T) {
	t.Parallel()

	r := newNetworkRecorder(log.NullLogger())

	feed(r, &network.EventRequestWillBeSent{
		RequestID: "1",
		Request:   &network.Request{URL: "http://a.test/"},
		Type:      network.ResourceTypeDocument,
		Timestamp: monoTime(5.0),
	})
	// The redirect reuses the request ID and carries the first hop's response.
	feed(r, &network.EventRequestWillBeSent{
		RequestID: "1",
		Request:   &network.Request{URL: "https://a.test/"},
		Type:      network.ResourceTypeDocument,
		Timestamp: monoTime(5.1),
		RedirectResponse: &network.Response{
			Status:   301,
			Protocol: "http/1.1",
			Headers:  network.Headers{"Cache-Control": "no-store"},
		},
	})
	feed(r, &network.EventResponseReceived{
		RequestID: "1",
		Response:  &network.Response{Status: 200, Protocol: "h2", Headers: network.Headers{}},
	})
	feed(r, &network.EventLoadingFinished{RequestID: "1", EncodedDataLength: 5000, Timestamp: monoTime(5.4)})

	records := r.records()
	require.Len(t, records, 2)

	assert.Equal(t, int64(301), records[0].StatusCode)
	assert.Equal(t, "http://a.test/", records[0].URL)
	assert.Zero(t, records[0].CacheLifetimeMs)

	assert.Equal(t, int64(200), records[1].StatusCode)
	assert.Equal(t, "https://a.test/", records[1].URL)
	assert.Equal(t, int64(5000), records[1].TransferSize)
}

func TestNetworkRecorderExcludesSyntheticSchemes(t *testing.T) {
	t.Parallel()

	r := newNetworkRecorder(log.NullLogger())

	urls := map[network.RequestID]string{
		"1": "https://a.test/x.png",
		"2": "data:image/png;base64,AAAA",
		"3": "blob:https://a.test/9f2e",
	}
	for id, u := range urls {
		feed(r, &network.EventRequestWillBeSent{
			RequestID: id,
			Request:   &network.Request{URL: u},
			Timestamp: monoTime(1.0),
		})
	}

	records := r.records()
	require.Len(t, records, 1)
	assert.Equal(t, "https://a.test/x.png", records[0].URL)
}

func TestNetworkRecorderNoResponseIsWellCached(t *testing.T) {
	t.Parallel()

	r := newNetworkRecorder(log.NullLogger())

	feed(r, &network.EventRequestWillBeSent{
		RequestID: "1",
		Request:   &network.Request{URL: "https://a.test/slow.js"},
		Timestamp: monoTime(1.0),
	})
	feed(r, &network.EventLoadingFailed{RequestID: "1", Timestamp: monoTime(2.0)})

	records := r.records()
	require.Len(t, records, 1)
	assert.Equal(t, wellCachedLifetimeMs, records[0].CacheLifetimeMs)
	assert.Zero(t, records[0].TransferSize)
}

func TestNetworkRecorderStopReturnsPromptly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := cdp.NewClient(ctx, log.NullLogger())

	r := newNetworkRecorder(log.NullLogger())
	r.start(cdp.WithSessionID(ctx, "session-1"), client)

	// Both the explicit stop and the deferred one must return without
	// exhausting the drain guard while the run context is still live.
	begin := time.Now()
	r.stop()
	r.stop()
	assert.Less(t, time.Since(begin), 500*time.Millisecond)

	select {
	case <-r.done:
	default:
		t.Fatal("recorder consumer still running after stop")
	}
}

func TestNetworkRecorderFromCacheFlag(t *testing.T) {
	t.Parallel()

	r := newNetworkRecorder(log.NullLogger())

	feed(r, &network.EventRequestWillBeSent{
		RequestID: "1",
		Request:   &network.Request{URL: "https://a.test/cached.css"},
		Timestamp: monoTime(1.0),
	})
	feed(r, &network.EventResponseReceived{
		RequestID: "1",
		Response:  &network.Response{Status: 200, FromDiskCache: true, Headers: network.Headers{}},
	})

	records := r.records()
	require.Len(t, records, 1)
	assert.True(t, records[0].FromCache)
}
