package collector

import (
	"context"
	"testing"
	"time"

	"github.com/greenweb/ecoscan/cdp"
	"github.com/greenweb/ecoscan/log"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollector(renderTimeout, firstPaintTimeout time.Duration) *Collector {
	opts := DefaultOptions()
	opts.RenderTimeout = renderTimeout
	opts.FirstPaintTimeout = firstPaintTimeout
	return New(nil, opts, log.NullLogger())
}

func TestAwaitLoadedFirstPaintTimeout(t *testing.T) {
	t.Parallel()

	c := testCollector(200*time.Millisecond, 20*time.Millisecond)
	ch := make(chan *cdp.Event)

	err := c.awaitLoaded(context.Background(), ch)

	var terr *NavigationTimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "first-paint", terr.Stage)
	assert.Equal(t, 20*time.Millisecond, terr.Timeout)
	assert.Equal(t, "NAVIGATION_TIMEOUT", terr.Code())
}

func TestAwaitLoadedRenderTimeout(t *testing.T) {
	t.Parallel()

	c := testCollector(50*time.Millisecond, 20*time.Millisecond)
	ch := make(chan *cdp.Event, 1)
	// The page painted but never fired its load event.
	ch <- &cdp.Event{Data: &cdppage.EventLifecycleEvent{Name: "firstPaint"}}

	err := c.awaitLoaded(context.Background(), ch)

	var terr *NavigationTimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "render", terr.Stage)
	assert.Equal(t, 50*time.Millisecond, terr.Timeout)
}

func TestAwaitLoadedCompletes(t *testing.T) {
	t.Parallel()

	c := testCollector(time.Second, time.Second)
	ch := make(chan *cdp.Event, 2)
	ch <- &cdp.Event{Data: &cdppage.EventLifecycleEvent{Name: "firstContentfulPaint"}}
	ch <- &cdp.Event{Data: &cdppage.EventLoadEventFired{}}

	assert.NoError(t, c.awaitLoaded(context.Background(), ch))
}

func TestAwaitLoadedContextCancelled(t *testing.T) {
	t.Parallel()

	c := testCollector(time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.awaitLoaded(ctx, make(chan *cdp.Event))

	var nerr *NetworkError
	require.ErrorAs(t, err, &nerr)
}
