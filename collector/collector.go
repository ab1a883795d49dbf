// Package collector drives a browser through the EcoIndex navigation
// protocol and extracts the raw page metrics the scoring engine consumes.
package collector

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/greenweb/ecoscan/browser"
	"github.com/greenweb/ecoscan/cdp"
	"github.com/greenweb/ecoscan/ecoindex"
	"github.com/greenweb/ecoscan/log"

	"github.com/chromedp/cdproto"
	cdppage "github.com/chromedp/cdproto/page"
)

// Viewport fixed for every run. Scores are only comparable across identical
// viewports.
const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// Options bound the navigation protocol. The settle delay is part of the
// measurement methodology and is fixed, not content-adaptive.
type Options struct {
	// RenderTimeout bounds the wait for the load event.
	RenderTimeout time.Duration
	// FirstPaintTimeout bounds the wait for the first paint.
	FirstPaintTimeout time.Duration
	// SettleDelay is the fixed wait before and after the scroll gesture.
	SettleDelay time.Duration
	// ScrollSpeed is the scroll gesture speed in pixels/second.
	ScrollSpeed int64
}

// DefaultOptions returns the published protocol timings.
func DefaultOptions() Options {
	return Options{
		RenderTimeout:     45 * time.Second,
		FirstPaintTimeout: 30 * time.Second,
		SettleDelay:       3 * time.Second,
		ScrollSpeed:       1600,
	}
}

// Result is the stabilized page's extracted raw data.
type Result struct {
	Metrics   ecoindex.PageMetrics
	Requests  []RequestRecord
	Breakdown ResourceBreakdown
	// TTFBMs is time-to-first-byte from the navigation-timing entry.
	TTFBMs float64
}

// Collector runs the measurement protocol on a single browser. One
// Collector performs one run at a time; concurrent runs need their own
// browser instances.
type Collector struct {
	browser *browser.Browser
	opts    Options
	logger  *log.Logger
}

// New returns a Collector driving the given browser.
func New(b *browser.Browser, opts Options, logger *log.Logger) *Collector {
	return &Collector{browser: b, opts: opts, logger: logger}
}

// Collect navigates to rawURL following the exact protocol and extracts the
// raw metrics. Each step is ordered and awaited; every wait is bounded.
func (c *Collector) Collect(ctx context.Context, rawURL string) (*Result, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	client := c.browser.Client

	targetID, err := client.Target.CreateTarget(ctx, "about:blank")
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	sessionID, err := client.Target.AttachToTarget(ctx, targetID)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	sctx := cdp.WithSessionID(ctx, sessionID)

	// Step 1: cold-cache network capture, before any navigation.
	if err := client.Network.Enable(sctx); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if err := client.Network.SetCacheDisabled(sctx, true); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	// Step 2: fixed viewport, no mobile emulation.
	if err := client.Emulation.SetDeviceMetricsOverride(sctx, viewportWidth, viewportHeight, 1, false); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	if err := client.Page.Enable(sctx); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if err := client.Page.SetLifecycleEventsEnabled(sctx, true); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	recorder := newNetworkRecorder(c.logger)
	recorder.start(sctx, client)
	defer recorder.stop()

	lifecycleCh, cancelLifecycle := client.Subscribe(sctx,
		cdproto.EventPageLoadEventFired,
		cdproto.EventPageLifecycleEvent,
	)
	defer cancelLifecycle()

	// Step 3: navigate and wait for load, bounded by the render and
	// first-paint timeouts.
	c.logger.Debugf("Collector:Collect", "navigating to %q", rawURL)
	if _, err := client.Page.Navigate(sctx, rawURL, ""); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if err := c.awaitLoaded(sctx, lifecycleCh); err != nil {
		return nil, err
	}

	// Step 4: fixed settle, one full-height scroll, fixed settle. This
	// triggers lazily-loaded resources deterministically.
	if err := sleepCtx(sctx, c.opts.SettleDelay); err != nil {
		return nil, err
	}
	if err := c.scrollStabilize(sctx); err != nil {
		return nil, err
	}
	if err := sleepCtx(sctx, c.opts.SettleDelay); err != nil {
		return nil, err
	}

	// Step 5: extract metrics from the stabilized page.
	var domCount int
	if err := client.Runtime.Evaluate(sctx, domElementCountScript, &domCount); err != nil {
		return nil, &MetricsError{Op: "dom count", Err: err}
	}
	var htmlSize int64
	if err := client.Runtime.Evaluate(sctx, htmlSizeScript, &htmlSize); err != nil {
		return nil, &MetricsError{Op: "html size", Err: err}
	}
	var ttfb float64
	if err := client.Runtime.Evaluate(sctx, ttfbScript, &ttfb); err != nil {
		return nil, &MetricsError{Op: "ttfb", Err: err}
	}

	recorder.stop()
	records := recorder.records()

	var totalBytes int64
	for _, r := range records {
		totalBytes += r.SizeBytes()
	}
	totalBytes += htmlSize

	metrics := ecoindex.PageMetrics{
		DOMElements: domCount,
		Requests:    len(records),
		SizeKB:      float64(totalBytes) / 1000, // 1000-byte kilobytes
	}

	c.logger.Infof("Collector:Collect",
		"url:%q dom:%d requests:%d sizeKb:%.1f ttfbMs:%.1f",
		rawURL, metrics.DOMElements, metrics.Requests, metrics.SizeKB, ttfb)

	return &Result{
		Metrics:   metrics,
		Requests:  records,
		Breakdown: BreakdownOf(records),
		TTFBMs:    ttfb,
	}, nil
}

// awaitLoaded waits until the page fired both its first paint and its load
// event. Exceeding either bound is a NavigationTimeoutError.
func (c *Collector) awaitLoaded(ctx context.Context, lifecycleCh <-chan *cdp.Event) error {
	renderTimer := time.NewTimer(c.opts.RenderTimeout)
	defer renderTimer.Stop()
	paintTimer := time.NewTimer(c.opts.FirstPaintTimeout)
	defer paintTimer.Stop()

	var sawLoad, sawPaint bool
	for !sawLoad || !sawPaint {
		select {
		case evt := <-lifecycleCh:
			switch ev := evt.Data.(type) {
			case *cdppage.EventLoadEventFired:
				sawLoad = true
			case *cdppage.EventLifecycleEvent:
				switch ev.Name {
				case "firstPaint", "firstContentfulPaint":
					sawPaint = true
				case "load":
					sawLoad = true
				}
			}
		case <-paintTimer.C:
			if !sawPaint {
				return &NavigationTimeoutError{Stage: "first-paint", Timeout: c.opts.FirstPaintTimeout}
			}
		case <-renderTimer.C:
			if !sawLoad {
				return &NavigationTimeoutError{Stage: "render", Timeout: c.opts.RenderTimeout}
			}
		case <-ctx.Done():
			return &NetworkError{Err: ctx.Err()}
		}
	}
	return nil
}

// scrollStabilize issues one continuous top-to-bottom scroll gesture sized
// to the full document height.
func (c *Collector) scrollStabilize(ctx context.Context) error {
	var height float64
	if err := c.browser.Client.Runtime.Evaluate(ctx, documentHeightScript, &height); err != nil {
		return &MetricsError{Op: "document height", Err: err}
	}
	if height <= viewportHeight {
		return nil
	}

	// A negative Y distance scrolls downwards.
	err := c.browser.Client.Input.SynthesizeScrollGesture(
		ctx, viewportWidth/2, viewportHeight/2, -(height - viewportHeight), c.opts.ScrollSpeed,
	)
	if err != nil {
		return &MetricsError{Op: "scroll", Err: err}
	}
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &NetworkError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &NetworkError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &NetworkError{URL: rawURL, Err: fmt.Errorf("missing host")}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return &NetworkError{Err: ctx.Err()}
	}
}
