package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/pkg/timestamp"
)

// handshakeRequest is the first message of every session
type handshakeRequest struct {
	Channel                  string       `json:"channel"`
	Version                  string       `json:"version"`
	SupportedConnectionTypes []string     `json:"supportedConnectionTypes"`
	Ext                      handshakeExt `json:"ext"`
}

// handshakeExt carries the authentication extension: the opaque bearer
// credential and the request timestamp
type handshakeExt struct {
	AccessToken string `json:"access_token"`
	Timestamp   int64  `json:"timestamp"`
}

// subscribeRequest subscribes one channel using the session id assigned
// at handshake
type subscribeRequest struct {
	Channel      string `json:"channel"`
	ClientID     string `json:"clientId"`
	Subscription string `json:"subscription"`
}

// SessionConfig carries everything a session needs: no ambient lookups.
type SessionConfig struct {
	// URL is the push endpoint.
	URL string
	// Token is the bearer credential sent in the handshake extension.
	Token string
	// Channels are the subscriptions to establish, e.g. "/user/123".
	Channels []string
}

// Session drives the subscribe protocol over one Transport. States
// advance Init -> Handshaking -> Subscribed -> Streaming -> Closed; any
// transport failure while streaming is terminal, there is no auto-resume.
type Session struct {
	cfg       SessionConfig
	transport *Transport
	logger    *slog.Logger
	metrics   *Metrics

	clientID string
}

// SessionOption is a functional option for configuring the Session
type SessionOption func(*Session)

// WithLogger sets a custom logger for the session
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus metrics to the session
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithTransport replaces the transport (tests)
func WithTransport(t *Transport) SessionOption {
	return func(s *Session) {
		s.transport = t
	}
}

// NewSession creates a session. No connection is made until Open.
func NewSession(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	if cfg.URL == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: push url required", errors.ErrInvalidConfig),
			"session", "NewSession", "validate config")
	}
	if cfg.Token == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingToken, "session", "NewSession", "validate config")
	}
	if len(cfg.Channels) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: at least one channel required", errors.ErrInvalidConfig),
			"session", "NewSession", "validate config")
	}

	s := &Session{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		s.transport = NewTransport(cfg.URL, WithTransportLogger(s.logger))
	}
	s.logger = s.logger.With("component", "session")
	return s, nil
}

// ClientID returns the server-assigned session identifier, empty before
// a successful handshake
func (s *Session) ClientID() string {
	return s.clientID
}

// Open connects, performs the handshake, subscribes every configured
// channel, and starts the receive loop. On success the returned Stream
// delivers events until ctx is cancelled or the transport fails; either
// way the connection is closed exactly once. On error the connection is
// already closed.
func (s *Session) Open(ctx context.Context) (*Stream, error) {
	if err := s.transport.Dial(ctx); err != nil {
		return nil, err
	}

	if err := s.handshake(); err != nil {
		_ = s.transport.Close()
		return nil, err
	}

	s.transport.setState(StateSubscribing)
	for _, ch := range s.cfg.Channels {
		if err := s.subscribe(ch); err != nil {
			_ = s.transport.Close()
			return nil, err
		}
	}

	s.transport.setState(StateLive)
	s.metrics.trackSessionOpen()
	s.logger.Info("session live", "channels", len(s.cfg.Channels))

	stream := newStream()
	go s.watchCancel(ctx, stream)
	go s.receiveLoop(ctx, stream)
	return stream, nil
}

// handshake sends the handshake request and extracts the session id from
// the reply, which may be a single object or a batch
func (s *Session) handshake() error {
	req := handshakeRequest{
		Channel:                  channelHandshake,
		Version:                  "1.0",
		SupportedConnectionTypes: []string{"websocket"},
		Ext: handshakeExt{
			AccessToken: s.cfg.Token,
			Timestamp:   timestamp.Now(),
		},
	}
	if err := s.transport.Send(req); err != nil {
		return err
	}

	raw, err := s.transport.Receive()
	if err != nil {
		return err
	}
	envelopes, _, err := decodeFrame(raw)
	if err != nil {
		return errors.WrapProtocol(err, "session", "handshake", "decode reply")
	}

	clientID, err := extractClientID(envelopes)
	if err != nil {
		return err
	}
	s.clientID = clientID
	s.logger.Debug("handshake complete")
	return nil
}

// extractClientID scans a reply batch for the handshake entry carrying
// the session identifier
func extractClientID(envelopes []Envelope) (string, error) {
	for _, env := range envelopes {
		if env.Channel != channelHandshake {
			continue
		}
		if env.Rejected() {
			return "", errors.WrapProtocol(
				fmt.Errorf("%w: %s", errors.ErrHandshakeFailed, env.Error),
				"session", "handshake", "check reply")
		}
		if env.ClientID != "" {
			return env.ClientID, nil
		}
	}
	return "", errors.WrapProtocol(errors.ErrNoSessionID, "session", "handshake", "extract session id")
}

// subscribe establishes one channel subscription and validates the ack.
// An ack with successful=false surfaces as a protocol error rather than
// being silently discarded.
func (s *Session) subscribe(channel string) error {
	req := subscribeRequest{
		Channel:      channelSubscribe,
		ClientID:     s.clientID,
		Subscription: channel,
	}
	if err := s.transport.Send(req); err != nil {
		return err
	}

	raw, err := s.transport.Receive()
	if err != nil {
		return err
	}
	envelopes, _, err := decodeFrame(raw)
	if err != nil {
		return errors.WrapProtocol(err, "session", "subscribe", "decode ack")
	}
	for _, env := range envelopes {
		if env.Channel == channelSubscribe && env.Rejected() {
			return errors.WrapProtocol(
				fmt.Errorf("%w: channel %s: %s", errors.ErrSubscribeFailed, channel, env.Error),
				"session", "subscribe", "check ack")
		}
	}
	s.logger.Debug("subscribed", "channel", channel)
	return nil
}

// watchCancel ties caller cancellation to the connection: closing the
// socket unblocks the pending Receive in the loop
func (s *Session) watchCancel(ctx context.Context, stream *Stream) {
	select {
	case <-ctx.Done():
	case <-stream.done:
	}
	_ = s.transport.Close()
}

// receiveLoop is the unbounded receive loop: every frame may be a batch;
// each batch is demultiplexed into zero or more envelopes, each envelope
// into at most one event. The loop suspends at Receive until the next
// frame; it does not poll.
func (s *Session) receiveLoop(ctx context.Context, stream *Stream) {
	defer s.metrics.trackSessionClose()

	for {
		raw, err := s.transport.Receive()
		if err != nil {
			// A read error after cancellation is the expected
			// teardown path, not a transport failure.
			if ctx.Err() != nil || stream.closed() {
				stream.finish(nil)
			} else {
				stream.finish(err)
			}
			return
		}
		s.metrics.trackFrame()

		envelopes, skipped, err := decodeFrame(raw)
		if err != nil {
			// Unparsable frame: skipped, not fatal.
			s.metrics.trackMalformed(1)
			s.logger.Warn("skipping malformed frame", "error", err)
			continue
		}
		s.metrics.trackMalformed(skipped)

		for _, env := range envelopes {
			payload, ok := Extract(env)
			if !ok {
				continue // protocol control traffic
			}
			ev, err := parseEvent(payload, timestamp.Now())
			if err != nil {
				s.metrics.trackMalformed(1)
				s.logger.Warn("skipping malformed event payload", "channel", env.Channel, "error", err)
				continue
			}
			if !stream.deliver(ctx, ev) {
				stream.finish(nil)
				return
			}
			s.metrics.trackEvent(ev.Kind())
		}
	}
}

// Stream is a lazy, non-restartable sequence of events produced by an
// open session. Events has no defined end under normal operation: it
// closes only on transport failure or caller cancellation, after which
// Err reports the terminal error (nil for clean cancellation).
type Stream struct {
	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	err       error
	finished  bool
	closeOnce sync.Once
}

func newStream() *Stream {
	return &Stream{
		// Unbuffered: one event in flight, the caller paces the loop.
		events: make(chan Event),
		done:   make(chan struct{}),
	}
}

// Events returns the event channel. It is closed when the stream ends.
func (st *Stream) Events() <-chan Event {
	return st.events
}

// Err returns the terminal error after Events is closed: nil for clean
// cancellation, a transport error otherwise.
func (st *Stream) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// Close cancels the stream from the consumer side. Idempotent.
func (st *Stream) Close() {
	st.closeOnce.Do(func() {
		close(st.done)
	})
}

func (st *Stream) closed() bool {
	select {
	case <-st.done:
		return true
	default:
		return false
	}
}

// deliver hands one event to the consumer, giving up on cancellation
func (st *Stream) deliver(ctx context.Context, ev Event) bool {
	select {
	case st.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-st.done:
		return false
	}
}

// finish records the terminal error and closes the event channel exactly once
func (st *Stream) finish(err error) {
	st.mu.Lock()
	if st.finished {
		st.mu.Unlock()
		return
	}
	st.finished = true
	st.err = err
	st.mu.Unlock()

	st.Close()
	close(st.events)
}
