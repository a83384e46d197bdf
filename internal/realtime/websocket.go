package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Reconnection policy: bounded attempts with a doubling delay.  The numbers
// match the backend's expectations for browser clients.
const (
	connectTimeout   = 10 * time.Second
	reconnectInitial = 500 * time.Millisecond
	reconnectMax     = 2 * time.Second
	reconnectLimit   = 10
)

// WebSocketTransport is the preferred push transport.  It owns one
// connection to the /showtimes namespace and keeps it alive with a bounded
// reconnect loop; every state change is surfaced as a synthetic frame so the
// channel above never has to care about socket lifetimes.
type WebSocketTransport struct {
	url string
	log *zap.SugaredLogger

	// reconnect policy, overridable before Connect
	backoffInitial time.Duration
	backoffMax     time.Duration
	maxAttempts    int

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	events chan Frame
}

// NewWebSocketTransport builds a transport for baseURL (http(s) scheme is
// rewritten to ws(s)) and the given namespace, e.g. "/showtimes".
func NewWebSocketTransport(baseURL, namespace string, log *zap.SugaredLogger) *WebSocketTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	url := baseURL
	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return &WebSocketTransport{
		url:            url + namespace,
		log:            log.Named("ws"),
		backoffInitial: reconnectInitial,
		backoffMax:     reconnectMax,
		maxAttempts:    reconnectLimit,
		events:         make(chan Frame, 16),
	}
}

// Connect starts the connection state machine and returns immediately.  The
// first successful dial produces a connect frame; failed attempts produce
// connect_error frames.  When the attempt budget is exhausted the events
// channel is closed.
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go t.run(ctx)
	return nil
}

// Events returns the inbound frame stream.
func (t *WebSocketTransport) Events() <-chan Frame {
	return t.events
}

// Emit writes one frame to the socket.  Returns an error while disconnected;
// callers treat that as droppable intent, not a failure.
func (t *WebSocketTransport) Emit(event string, data any) error {
	frame, err := marshalFrame(event, data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return errors.New("not connected")
	}
	return t.conn.WriteJSON(frame)
}

// Close tears the connection down and stops the reconnect loop.  Idempotent.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// run dials, reads until failure, and redials with doubling backoff until
// the attempt budget runs out or Close is called.
func (t *WebSocketTransport) run(ctx context.Context) {
	defer close(t.events)

	backoff := t.backoffInitial
	attempts := 0
	for {
		if t.isClosed() || ctx.Err() != nil {
			return
		}
		conn, err := t.dial(ctx)
		if err != nil {
			attempts++
			t.log.Debugf("connect attempt %d failed: %v", attempts, err)
			t.push(Frame{Event: EventConnectError})
			if attempts >= t.maxAttempts {
				t.log.Warnf("giving up after %d attempts", attempts)
				return
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < t.backoffMax {
				backoff *= 2
				if backoff > t.backoffMax {
					backoff = t.backoffMax
				}
			}
			continue
		}
		backoff = t.backoffInitial // reset after successful connect
		attempts = 0

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			_ = conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()

		t.push(Frame{Event: EventConnect})
		t.readLoop(conn)
		if t.isClosed() {
			return
		}
		t.push(Frame{Event: EventDisconnect})
	}
}

func (t *WebSocketTransport) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	dialer := websocket.Dialer{HandshakeTimeout: connectTimeout}
	conn, _, err := dialer.DialContext(dialCtx, t.url, nil)
	return conn, err
}

// readLoop delivers wire frames until the connection drops.
func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			_ = conn.Close()
			return
		}
		t.push(frame)
	}
}

// push forwards a frame, dropping it when the consumer has fallen behind.
// Seat updates are wholesale replacements, so a dropped intermediate frame
// is superseded by the next one.
func (t *WebSocketTransport) push(frame Frame) {
	select {
	case t.events <- frame:
	default:
		t.log.Debugf("event buffer full, dropping %s", frame.Event)
	}
}

func (t *WebSocketTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
