package cdp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/greenweb/ecoscan/log"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jwriter"
)

// connection wraps the WebSocket transport that carries CDP messages.
// Gorilla websocket connections support one concurrent reader and one
// concurrent writer, which the Client's loops guarantee.
type connection struct {
	ws     *websocket.Conn
	logger *log.Logger

	closeOnce sync.Once
	closeErr  error
}

func newConnection(ctx context.Context, wsURL string, logger *log.Logger) (*connection, error) {
	wd := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		// CDP messages carry full response bodies and embedded scripts.
		ReadBufferSize:  1 << 20,
		WriteBufferSize: 1 << 20,
		Proxy:           http.ProxyFromEnvironment,
	}

	ws, _, err := wd.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dialing DevTools URL %q: %w", wsURL, err)
	}

	return &connection{ws: ws, logger: logger}, nil
}

// readMessage blocks until a full CDP message is read from the wire.
func (c *connection) readMessage() (*cdproto.Message, error) {
	_, buf, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading CDP message: %w", err)
	}

	var msg cdproto.Message
	if err := easyjson.Unmarshal(buf, &msg); err != nil {
		return nil, fmt.Errorf("decoding CDP message: %w", err)
	}

	return &msg, nil
}

func (c *connection) writeMessage(msg *cdproto.Message) error {
	var encoder jwriter.Writer
	msg.MarshalEasyJSON(&encoder)
	if err := encoder.Error; err != nil {
		return fmt.Errorf("encoding CDP message %d: %w", msg.ID, err)
	}
	buf, err := encoder.BuildBytes()
	if err != nil {
		return fmt.Errorf("building CDP message %d: %w", msg.ID, err)
	}

	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("writing CDP message %d: %w", msg.ID, err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing CDP message %d: %w", msg.ID, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flushing CDP message %d: %w", msg.ID, err)
	}

	return nil
}

// Close closes the underlying WebSocket. Safe to call more than once.
func (c *connection) Close() error {
	c.closeOnce.Do(func() {
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second),
		)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
