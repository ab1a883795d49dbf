package cdp

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/target"
)

// Event is a decoded CDP event together with the session it originated from.
type Event struct {
	Name      cdproto.MethodType
	Data      interface{}
	SessionID target.SessionID
}

type eventSub struct {
	sessionID string
	ch        chan *Event
	done      chan struct{}
}

type eventWatcher struct {
	ctx    context.Context
	subsMu sync.RWMutex
	subs   map[cdproto.MethodType][]*eventSub
}

func newEventWatcher(ctx context.Context) *eventWatcher {
	return &eventWatcher{
		ctx:  ctx,
		subs: make(map[cdproto.MethodType][]*eventSub),
	}
}

// subscribe registers a channel for the given event types, filtered by
// session ID when one is given. The returned cancel function unsubscribes
// and releases the channel.
//
// The channel is buffered generously: network events arrive in bursts and a
// dropped event would corrupt the request accounting.
func (w *eventWatcher) subscribe(sessionID string, events ...cdproto.MethodType) (<-chan *Event, func()) {
	sub := &eventSub{
		sessionID: sessionID,
		ch:        make(chan *Event, 512),
		done:      make(chan struct{}),
	}

	w.subsMu.Lock()
	for _, evt := range events {
		w.subs[evt] = append(w.subs[evt], sub)
	}
	w.subsMu.Unlock()

	cancel := func() {
		w.subsMu.Lock()
		defer w.subsMu.Unlock()
		select {
		case <-sub.done:
			return
		default:
		}
		close(sub.done)
		for _, evt := range events {
			subs := w.subs[evt]
			for i, s := range subs {
				if s == sub {
					w.subs[evt] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
		}
	}

	return sub.ch, cancel
}

func (w *eventWatcher) notify(evt *Event) {
	w.subsMu.RLock()
	subs := make([]*eventSub, len(w.subs[evt.Name]))
	copy(subs, w.subs[evt.Name])
	w.subsMu.RUnlock()

	for _, sub := range subs {
		if sub.sessionID != "" && sub.sessionID != string(evt.SessionID) {
			continue
		}
		select {
		case sub.ch <- evt:
		case <-sub.done:
		case <-w.ctx.Done():
			return
		}
	}
}
