package collector

import (
	"context"
	"sync"
	"time"

	"github.com/greenweb/ecoscan/cdp"
	"github.com/greenweb/ecoscan/log"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/network"
)

// requestState accumulates the network events belonging to one request until
// the run completes.
type requestState struct {
	url          string
	priority     string
	resourceType network.ResourceType
	mimeType     string
	protocol     string
	status       int64
	fromCache    bool
	transfer     int64
	resource     int64
	cacheMs      int64 // -1 until a response is seen
	start        time.Time
	end          time.Time
}

// networkRecorder captures the page's network log from CDP events. One
// recorder serves exactly one run.
type networkRecorder struct {
	logger *log.Logger

	mu       sync.Mutex
	reqs     map[network.RequestID]*requestState
	order    []*requestState
	navStart time.Time

	cancelSub func()
	quit      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func newNetworkRecorder(logger *log.Logger) *networkRecorder {
	return &networkRecorder{
		logger: logger,
		reqs:   make(map[network.RequestID]*requestState),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// start subscribes to the session's network events (the session ID comes
// from ctx) and consumes them until stop is called.
func (r *networkRecorder) start(ctx context.Context, client *cdp.Client) {
	evtCh, cancel := client.Subscribe(ctx,
		cdproto.EventNetworkRequestWillBeSent,
		cdproto.EventNetworkResponseReceived,
		cdproto.EventNetworkDataReceived,
		cdproto.EventNetworkLoadingFinished,
		cdproto.EventNetworkLoadingFailed,
	)
	r.cancelSub = cancel

	go func() {
		defer close(r.done)
		for {
			select {
			case evt := <-evtCh:
				r.onEvent(evt)
			case <-r.quit:
				// Consume what was buffered before the unsubscribe, then
				// exit.
				for {
					select {
					case evt := <-evtCh:
						r.onEvent(evt)
					default:
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stop unsubscribes, signals the consumer and waits for it to drain. Safe to
// call more than once.
func (r *networkRecorder) stop() {
	r.stopOnce.Do(func() {
		if r.cancelSub != nil {
			r.cancelSub()
		}
		close(r.quit)
	})
	select {
	case <-r.done:
	case <-time.After(time.Second):
		// The consumer only blocks on an empty channel; this is a guard,
		// not an expected path.
		r.logger.Warnf("collector", "network recorder did not drain in time")
	}
}

func (r *networkRecorder) onEvent(evt *cdp.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev := evt.Data.(type) {
	case *network.EventRequestWillBeSent:
		r.onRequestWillBeSent(ev)
	case *network.EventResponseReceived:
		if st, ok := r.reqs[ev.RequestID]; ok {
			fillResponse(st, ev.Response)
		}
	case *network.EventDataReceived:
		if st, ok := r.reqs[ev.RequestID]; ok {
			st.resource += ev.DataLength
		}
	case *network.EventLoadingFinished:
		if st, ok := r.reqs[ev.RequestID]; ok {
			st.transfer = int64(ev.EncodedDataLength)
			st.end = ev.Timestamp.Time()
		}
	case *network.EventLoadingFailed:
		if st, ok := r.reqs[ev.RequestID]; ok {
			st.end = ev.Timestamp.Time()
		}
	}
}

func (r *networkRecorder) onRequestWillBeSent(ev *network.EventRequestWillBeSent) {
	start := ev.Timestamp.Time()
	if r.navStart.IsZero() || start.Before(r.navStart) {
		r.navStart = start
	}

	if prev, ok := r.reqs[ev.RequestID]; ok && ev.RedirectResponse != nil {
		// A redirect reuses the request ID. Seal the previous hop as its
		// own request and start a fresh state for the new URL.
		fillResponse(prev, ev.RedirectResponse)
		prev.end = start
		delete(r.reqs, ev.RequestID)
	}

	st := &requestState{
		url:          ev.Request.URL,
		priority:     string(ev.Request.InitialPriority),
		resourceType: ev.Type,
		cacheMs:      -1,
		start:        start,
	}
	r.reqs[ev.RequestID] = st
	r.order = append(r.order, st)
}

func fillResponse(st *requestState, resp *network.Response) {
	if resp == nil {
		return
	}
	st.status = resp.Status
	st.mimeType = resp.MimeType
	st.protocol = resp.Protocol
	st.fromCache = resp.FromDiskCache || resp.FromPrefetchCache
	st.cacheMs = cacheLifetimeMs(resp.Headers)
}

// records seals the captured log into immutable request records, in capture
// order. data: and blob: URIs are dropped here.
func (r *networkRecorder) records() []RequestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RequestRecord, 0, len(r.order))
	for _, st := range r.order {
		if !measurable(st.url) {
			continue
		}

		cacheMs := st.cacheMs
		if cacheMs < 0 {
			// No response seen for this URL; treat it as well-cached
			// rather than uncached.
			cacheMs = wellCachedLifetimeMs
		}

		startMs := st.start.Sub(r.navStart).Seconds() * 1000
		var endMs, durMs float64
		if !st.end.IsZero() {
			endMs = st.end.Sub(r.navStart).Seconds() * 1000
			durMs = endMs - startMs
		}

		out = append(out, RequestRecord{
			URL:             st.url,
			Domain:          hostOf(st.url),
			Protocol:        st.protocol,
			StatusCode:      st.status,
			MimeType:        st.mimeType,
			ResourceType:    classifyResource(st.resourceType, st.mimeType, st.url),
			TransferSize:    st.transfer,
			ResourceSize:    st.resource,
			Priority:        st.priority,
			StartTime:       startMs,
			EndTime:         endMs,
			Duration:        durMs,
			FromCache:       st.fromCache,
			CacheLifetimeMs: cacheMs,
		})
	}
	return out
}
