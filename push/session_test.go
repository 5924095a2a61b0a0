package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/errors"
	"github.com/skbidisigma1/groupme-cli/metric"
)

// fayeHandler is a minimal in-process push server: it answers the
// handshake and subscribe, then plays back the scripted frames.
type fayeHandler struct {
	t             *testing.T
	clientID      string
	rejectSub     bool
	frames        []string
	gotToken      chan string
	subscriptions chan string
}

func newFayeHandler(t *testing.T) *fayeHandler {
	return &fayeHandler{
		t:             t,
		clientID:      "client-1",
		gotToken:      make(chan string, 4),
		subscriptions: make(chan string, 4),
	}
}

func (h *fayeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Handshake.
	var hs handshakeRequest
	if err := conn.ReadJSON(&hs); err != nil {
		return
	}
	h.gotToken <- hs.Ext.AccessToken
	ok := true
	reply := []map[string]any{
		{"channel": channelHandshake, "clientId": h.clientID, "successful": ok},
		{"channel": channelConnect, "successful": ok},
	}
	if err := conn.WriteJSON(reply); err != nil {
		return
	}

	// Subscribes.
	for {
		var sub subscribeRequest
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		if sub.Channel != channelSubscribe {
			continue
		}
		h.subscriptions <- sub.Subscription
		ack := map[string]any{
			"channel":      channelSubscribe,
			"subscription": sub.Subscription,
			"successful":   !h.rejectSub,
		}
		if h.rejectSub {
			ack["error"] = "403 forbidden channel"
		}
		if err := conn.WriteJSON(ack); err != nil {
			return
		}
		break
	}

	for _, frame := range h.frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}

	// Hold the connection open until the client hangs up.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func openTestSession(t *testing.T, ctx context.Context, h *fayeHandler) (*Session, *Stream) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	session, err := NewSession(SessionConfig{
		URL:      wsURL(srv),
		Token:    "tok-1",
		Channels: []string{"/user/123"},
	})
	require.NoError(t, err)

	stream, err := session.Open(ctx)
	require.NoError(t, err)
	return session, stream
}

func TestSessionOpenHandshakeAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFayeHandler(t)
	session, stream := openTestSession(t, ctx, h)
	defer stream.Close()

	assert.Equal(t, "client-1", session.ClientID())
	assert.Equal(t, "tok-1", <-h.gotToken)
	assert.Equal(t, "/user/123", <-h.subscriptions)
	assert.Equal(t, StateLive, session.transport.State())
}

func TestSessionDeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFayeHandler(t)
	h.frames = []string{
		// Control traffic carries no payload and yields no event.
		`{"channel":"/meta/connect","successful":true}`,
		`{"channel":"/user/123","data":{"type":"line.create","alert":"alice: hi","subject":{"id":"m1","text":"hi"}}}`,
		`[{"channel":"/user/123","data":{"type":"like.create"}},{"channel":"/user/123","ext":{"data":{"type":"ping"}}}]`,
	}
	_, stream := openTestSession(t, ctx, h)
	defer stream.Close()

	ev := <-stream.Events()
	assert.Equal(t, KindMessage, ev.Kind())
	assert.Equal(t, "alice: hi", ev.Alert)
	assert.NotZero(t, ev.Received)

	var subject struct {
		ID string `json:"id"`
	}
	require.NoError(t, ev.DecodeSubject(&subject))
	assert.Equal(t, "m1", subject.ID)

	assert.Equal(t, KindLike, (<-stream.Events()).Kind())
	assert.Equal(t, KindPing, (<-stream.Events()).Kind())
}

func TestSessionSkipsMalformedFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFayeHandler(t)
	h.frames = []string{
		`this is not json`,
		`[17, {"channel":"/user/123","data":{"type":"ping"}}]`,
	}
	_, stream := openTestSession(t, ctx, h)
	defer stream.Close()

	// The malformed frame and the non-object entry are skipped; the
	// valid envelope still comes through.
	ev := <-stream.Events()
	assert.Equal(t, KindPing, ev.Kind())
}

func TestSessionCancelClosesStreamCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	h := newFayeHandler(t)
	_, stream := openTestSession(t, ctx, h)

	cancel()

	select {
	case _, open := <-stream.Events():
		assert.False(t, open, "events channel should close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after cancellation")
	}
	assert.NoError(t, stream.Err())
}

func TestSessionStreamCloseIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFayeHandler(t)
	_, stream := openTestSession(t, ctx, h)

	stream.Close()
	stream.Close()

	select {
	case _, open := <-stream.Events():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close")
	}
	assert.NoError(t, stream.Err())
}

func TestSessionSubscribeRejected(t *testing.T) {
	h := newFayeHandler(t)
	h.rejectSub = true
	srv := httptest.NewServer(h)
	defer srv.Close()

	session, err := NewSession(SessionConfig{
		URL:      wsURL(srv),
		Token:    "tok-1",
		Channels: []string{"/user/123"},
	})
	require.NoError(t, err)

	_, err = session.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSubscribeFailed)
	assert.True(t, errors.IsProtocol(err))
}

func TestSessionHandshakeWithoutClientID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hs handshakeRequest
		if err := conn.ReadJSON(&hs); err != nil {
			return
		}
		_ = conn.WriteJSON([]map[string]any{{"channel": channelConnect, "successful": true}})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	session, err := NewSession(SessionConfig{
		URL:      wsURL(srv),
		Token:    "tok-1",
		Channels: []string{"/user/123"},
	})
	require.NoError(t, err)

	_, err = session.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoSessionID)
}

func TestSessionServerDropSurfacesTransportError(t *testing.T) {
	drop := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var hs handshakeRequest
		if err := conn.ReadJSON(&hs); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{
			"channel": channelHandshake, "clientId": "client-1", "successful": true,
		})
		var sub subscribeRequest
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{
			"channel": channelSubscribe, "subscription": sub.Subscription, "successful": true,
		})
		<-drop
		conn.Close() // abrupt drop, no close frame
	}))
	defer srv.Close()

	session, err := NewSession(SessionConfig{
		URL:      wsURL(srv),
		Token:    "tok-1",
		Channels: []string{"/user/123"},
	})
	require.NoError(t, err)

	stream, err := session.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	close(drop)

	select {
	case _, open := <-stream.Events():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after server drop")
	}
	assert.Error(t, stream.Err())
}

func TestSessionMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFayeHandler(t)
	h.frames = []string{
		`this is not json`,
		`{"channel":"/user/123","data":{"type":"line.create","alert":"alice: hi"}}`,
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m := NewMetrics(metric.NewRegistry(), "watch")
	session, err := NewSession(SessionConfig{
		URL:      wsURL(srv),
		Token:    "tok-1",
		Channels: []string{"/user/123"},
	}, WithMetrics(m))
	require.NoError(t, err)

	stream, err := session.Open(ctx)
	require.NoError(t, err)
	defer stream.Close()

	ev := <-stream.Events()
	assert.Equal(t, KindMessage, ev.Kind())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.sessionsOpen))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.malformedFrames))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.framesReceived), float64(1))
	assert.Eventually(t, func() bool {
		delivered := testutil.ToFloat64(m.eventsDelivered.WithLabelValues(KindMessage.String()))
		return delivered == 1
	}, time.Second, 10*time.Millisecond)
}

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(SessionConfig{Token: "t", Channels: []string{"/user/1"}})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = NewSession(SessionConfig{URL: "ws://x", Channels: []string{"/user/1"}})
	assert.ErrorIs(t, err, errors.ErrMissingToken)

	_, err = NewSession(SessionConfig{URL: "ws://x", Token: "t"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
