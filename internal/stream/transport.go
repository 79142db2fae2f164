package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one open push stream for a single work order.
type Conn interface {
	// ReadMessage blocks until the next pushed payload or a transport error.
	ReadMessage() ([]byte, error)
	Close() error
}

// Filter narrows the stream server-side via query parameters.
type Filter struct {
	Level string
	Step  string
}

// Dialer opens the push stream for a work-order id.
type Dialer interface {
	Dial(ctx context.Context, workOrderID string) (Conn, error)
}

// PermanentError wraps a transport failure that must not be retried: the
// manager tears down all per-id state instead of scheduling a reconnect.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "stream: permanent transport failure: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err signals the transport will never recover.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

const handshakeTimeout = 10 * time.Second

// WSDialer opens work-order log streams over WebSocket against the
// executor's base URL.
type WSDialer struct {
	BaseURL string // e.g. http://executor:9090
	Filter  Filter
}

func (d *WSDialer) Dial(ctx context.Context, workOrderID string) (Conn, error) {
	streamURL, err := d.buildURL(workOrderID)
	if err != nil {
		return nil, &PermanentError{Err: err}
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		if resp != nil && resourceGone(resp.StatusCode) {
			return nil, &PermanentError{Err: fmt.Errorf("work order stream rejected: %s", resp.Status)}
		}
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// buildURL maps http(s) to ws(s) and attaches the optional filters.
func (d *WSDialer) buildURL(workOrderID string) (string, error) {
	parsed, err := url.Parse(d.BaseURL)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	parsed.Path = "/api/v1/workorders/" + url.PathEscape(workOrderID) + "/logs/stream"

	q := parsed.Query()
	if d.Filter.Level != "" {
		q.Set("level", d.Filter.Level)
	}
	if d.Filter.Step != "" {
		q.Set("step", d.Filter.Step)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// resourceGone reports handshake rejections that mean the work order's
// stream no longer exists, as opposed to the server being briefly down.
func resourceGone(status int) bool {
	return status == http.StatusNotFound || status == http.StatusGone
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		// A deliberate close frame ends the stream for good; anything else
		// (reset, timeout, abnormal closure) is worth retrying.
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return nil, &PermanentError{Err: err}
		}
		return nil, err
	}
	return payload, nil
}

func (c *wsConn) Close() error {
	deadline := time.Now().Add(2 * time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
