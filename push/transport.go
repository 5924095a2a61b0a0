package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skbidisigma1/groupme-cli/errors"
)

// State is the lifecycle state of a push connection
type State int32

const (
	// StateDisconnected means no connection attempt has been made or the
	// connection is gone
	StateDisconnected State = iota
	// StateHandshaking means the protocol handshake is in flight
	StateHandshaking
	// StateSubscribing means channel subscriptions are being established
	StateSubscribing
	// StateLive means the receive loop is streaming events
	StateLive
	// StateFailed means the connection terminated on an error
	StateFailed
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transport owns one websocket connection to the push endpoint. It is not
// safe for concurrent Send calls; the session sequences all sends before
// the receive loop starts. Close is safe to call from any goroutine and
// is idempotent.
type Transport struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	conn      *websocket.Conn
	closeOnce sync.Once
	state     atomic.Int32
}

// TransportOption is a functional option for configuring the Transport
type TransportOption func(*Transport)

// WithHandshakeTimeout bounds the websocket dial
func WithHandshakeTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.dialer.HandshakeTimeout = d
		}
	}
}

// WithTransportLogger sets a custom logger for the transport
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransport creates a Transport for the given endpoint URL. No
// connection is made until Dial.
func NewTransport(url string, opts ...TransportOption) *Transport {
	t := &Transport{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 45 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "transport")
	return t
}

// State returns the current connection state
func (t *Transport) State() State {
	return State(t.state.Load())
}

func (t *Transport) setState(s State) {
	t.state.Store(int32(s))
}

// Dial establishes the websocket connection. The caller must Close on
// every exit path once Dial succeeds.
func (t *Transport) Dial(ctx context.Context) error {
	if t.conn != nil {
		return errors.WrapInvalid(errors.ErrAlreadyConnected, "transport", "Dial", "check state")
	}

	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		t.setState(StateFailed)
		return errors.WrapTransport(fmt.Errorf("dial %s: %w", t.url, err),
			"transport", "Dial", "establish connection")
	}

	t.conn = conn
	t.setState(StateHandshaking)
	t.logger.Debug("connected", "url", t.url)
	return nil
}

// Send writes one JSON message to the connection
func (t *Transport) Send(v any) error {
	if t.conn == nil {
		return errors.WrapTransport(errors.ErrNotConnected, "transport", "Send", "check connection")
	}
	if err := t.conn.WriteJSON(v); err != nil {
		t.setState(StateFailed)
		return errors.WrapTransport(err, "transport", "Send", "write frame")
	}
	return nil
}

// Receive blocks until one raw frame arrives or the connection fails.
// The frame is either a single protocol object or a JSON array batch.
func (t *Transport) Receive() (json.RawMessage, error) {
	if t.conn == nil {
		return nil, errors.WrapTransport(errors.ErrNotConnected, "transport", "Receive", "check connection")
	}
	_, raw, err := t.conn.ReadMessage()
	if err != nil {
		t.setState(StateFailed)
		return nil, errors.WrapTransport(err, "transport", "Receive", "read frame")
	}
	return raw, nil
}

// Close releases the connection. Safe to call multiple times and from
// any goroutine; only the first call closes the socket.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.conn != nil {
			// Best-effort close frame so the server releases the
			// subscription promptly, then tear down the socket.
			deadline := time.Now().Add(time.Second)
			_ = t.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			err = t.conn.Close()
		}
		if t.State() != StateFailed {
			t.setState(StateDisconnected)
		}
		t.logger.Debug("closed", "url", t.url)
	})
	return err
}
