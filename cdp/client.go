package cdp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/greenweb/ecoscan/cdp/domains"
	"github.com/greenweb/ecoscan/log"

	"github.com/chromedp/cdproto"
	cdpext "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/mailru/easyjson"
)

// Ensure Client can execute cdproto actions.
var _ cdpext.Executor = &Client{}

// Client manages CDP communication with the browser.
type Client struct {
	ctx    context.Context
	logger *log.Logger

	Browser   domains.Browser
	Emulation domains.Emulation
	Input     domains.Input
	Network   domains.Network
	Page      domains.Page
	Runtime   domains.Runtime
	Target    domains.Target

	conn      *connection
	msgID     int64
	sendCh    chan *cdproto.Message
	msgSubsMu sync.Mutex
	msgSubs   map[int64]chan *cdproto.Message
	errorCh   chan error
	done      chan struct{}

	watcher *eventWatcher
	wsURL   string
}

// NewClient returns a new Client that is unusable until a CDP connection is
// established with Connect.
func NewClient(ctx context.Context, logger *log.Logger) *Client {
	c := &Client{
		ctx:     ctx,
		logger:  logger,
		sendCh:  make(chan *cdproto.Message, 32), // buffered to avoid blocking in Execute
		msgSubs: make(map[int64]chan *cdproto.Message),
		errorCh: make(chan error, 1),
		done:    make(chan struct{}),
		watcher: newEventWatcher(ctx),
	}

	c.Browser = domains.NewBrowser(c)
	c.Emulation = domains.NewEmulation(c)
	c.Input = domains.NewInput(c)
	c.Network = domains.NewNetwork(c)
	c.Page = domains.NewPage(c)
	c.Runtime = domains.NewRuntime(c)
	c.Target = domains.NewTarget(c)

	return c
}

// Connect to the browser that exposes a CDP API at wsURL.
func (c *Client) Connect(wsURL string) (err error) {
	if c.wsURL != "" {
		return fmt.Errorf("CDP connection already established to %q", c.wsURL)
	}

	if c.conn, err = newConnection(c.ctx, wsURL, c.logger); err != nil {
		return err
	}
	c.logger.Debugf("cdp", "established CDP connection to %q", wsURL)
	c.wsURL = wsURL

	go c.recvLoop()
	go c.sendLoop()

	return nil
}

// Disconnect closes the connection to the browser's CDP API.
func (c *Client) Disconnect() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Done is closed when the connection to the browser is lost.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Execute implements cdproto's Executor and performs a synchronous send and
// receive. The session ID on ctx, if any, routes the message to the
// corresponding target.
func (c *Client) Execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	c.logger.Debugf("cdp:Execute", "wsURL:%q method:%q", c.wsURL, method)

	id := atomic.AddInt64(&c.msgID, 1)

	recvCh := make(chan *cdproto.Message, 1)
	c.msgSubsMu.Lock()
	c.msgSubs[id] = recvCh
	c.msgSubsMu.Unlock()
	defer func() {
		c.msgSubsMu.Lock()
		delete(c.msgSubs, id)
		c.msgSubsMu.Unlock()
	}()

	var buf []byte
	if params != nil {
		var err error
		if buf, err = easyjson.Marshal(params); err != nil {
			return fmt.Errorf("encoding %q params: %w", method, err)
		}
	}
	msg := &cdproto.Message{
		ID:     id,
		Method: cdproto.MethodType(method),
		Params: buf,
	}
	if sid := GetSessionID(ctx); sid != "" {
		msg.SessionID = target.SessionID(sid)
	}

	select {
	case c.sendCh <- msg:
	case err := <-c.errorCh:
		return err
	case <-c.done:
		return errors.New("connection to browser lost")
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}

	select {
	case reply := <-recvCh:
		switch {
		case reply == nil:
			return errors.New("nil CDP reply")
		case reply.Error != nil:
			return reply.Error
		case res != nil:
			return easyjson.Unmarshal(reply.Result, res)
		}
	case err := <-c.errorCh:
		return err
	case <-c.done:
		return errors.New("connection to browser lost")
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}

	return nil
}

// Subscribe returns a channel notified for the given CDP events on the
// session carried by ctx (all sessions when none is set), and a cancel
// function that unsubscribes.
func (c *Client) Subscribe(ctx context.Context, events ...cdproto.MethodType) (<-chan *Event, func()) {
	return c.watcher.subscribe(GetSessionID(ctx), events...)
}

func (c *Client) recvLoop() {
	defer close(c.done)

	for {
		msg, err := c.conn.readMessage()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && c.ctx.Err() == nil {
				c.logger.Debugf("cdp:recvLoop", "wsURL:%q err:%v", c.wsURL, err)
			}
			return
		}

		switch {
		case msg.Method != "":
			evt, err := cdproto.UnmarshalMessage(msg)
			if err != nil {
				c.logger.Errorf("cdp", "unmarshaling CDP event %q: %v", msg.Method, err)
				continue
			}
			c.watcher.notify(&Event{
				Name:      msg.Method,
				Data:      evt,
				SessionID: msg.SessionID,
			})
		case msg.ID > 0:
			c.msgSubsMu.Lock()
			ch, ok := c.msgSubs[msg.ID]
			if ok {
				delete(c.msgSubs, msg.ID)
			}
			c.msgSubsMu.Unlock()
			if !ok {
				// Reply for a caller that already gave up (timeout).
				continue
			}
			select {
			case ch <- msg:
			case <-c.ctx.Done():
				return
			}
		default:
			c.logger.Warnf("cdp", "ignoring malformed incoming CDP message: %#v", msg)
		}
	}
}

func (c *Client) sendLoop() {
	for {
		select {
		case msg := <-c.sendCh:
			if err := c.conn.writeMessage(msg); err != nil {
				select {
				case c.errorCh <- err:
				default:
				}
			}
		case <-c.done:
			return
		case <-c.ctx.Done():
			_ = c.conn.Close()
			return
		}
	}
}
