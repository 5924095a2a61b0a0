package push

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skbidisigma1/groupme-cli/errors"
)

func TestDecodeFrameSingleObject(t *testing.T) {
	envelopes, skipped, err := decodeFrame(json.RawMessage(`{"channel":"/user/123","data":{"type":"ping"}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "/user/123", envelopes[0].Channel)
}

func TestDecodeFrameBatch(t *testing.T) {
	raw := json.RawMessage(`[
		{"channel":"/meta/connect","successful":true},
		{"channel":"/user/123","data":{"type":"ping"}}
	]`)
	envelopes, skipped, err := decodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, envelopes, 2)
	assert.Equal(t, "/meta/connect", envelopes[0].Channel)
	assert.Equal(t, "/user/123", envelopes[1].Channel)
}

func TestDecodeFrameSkipsNonObjectEntries(t *testing.T) {
	raw := json.RawMessage(`[{"channel":"/user/123"}, 42, "noise", {"channel":"/meta/connect"}]`)
	envelopes, skipped, err := decodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, envelopes, 2)
}

func TestDecodeFrameInvalidJSON(t *testing.T) {
	_, _, err := decodeFrame(json.RawMessage(`[{"channel":`))
	assert.Error(t, err)
}

func TestExtractPrefersDataField(t *testing.T) {
	env := Envelope{
		Data: json.RawMessage(`{"type":"line.create"}`),
		Ext:  json.RawMessage(`{"data":{"type":"ping"}}`),
	}
	payload, ok := Extract(env)
	require.True(t, ok)

	var ev Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, "line.create", ev.Type)
}

func TestExtractFallsBackToExtData(t *testing.T) {
	env := Envelope{Ext: json.RawMessage(`{"data":{"type":"like.create"}}`)}
	payload, ok := Extract(env)
	require.True(t, ok)

	var ev Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, "like.create", ev.Type)
}

func TestExtractNoPayload(t *testing.T) {
	_, ok := Extract(Envelope{Channel: "/user/123"})
	assert.False(t, ok)

	_, ok = Extract(Envelope{Data: json.RawMessage(`null`)})
	assert.False(t, ok)
}

func TestExtractClientID(t *testing.T) {
	envelopes := []Envelope{
		{Channel: channelHandshake, ClientID: "abc"},
		{Channel: channelConnect},
	}
	id, err := extractClientID(envelopes)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestExtractClientIDMissing(t *testing.T) {
	_, err := extractClientID([]Envelope{{Channel: channelConnect}})
	assert.ErrorIs(t, err, errors.ErrNoSessionID)
	assert.True(t, errors.IsProtocol(err))
}

func TestExtractClientIDRejected(t *testing.T) {
	no := false
	_, err := extractClientID([]Envelope{
		{Channel: channelHandshake, Successful: &no, Error: "401 unauthorized"},
	})
	assert.ErrorIs(t, err, errors.ErrHandshakeFailed)
}

func TestEventKind(t *testing.T) {
	cases := map[string]EventKind{
		"line.create":           KindMessage,
		"direct_message.create": KindMessage,
		"like.create":           KindLike,
		"membership.create":     KindMembership,
		"ping":                  KindPing,
		"something.else":        KindUnknown,
	}
	for tag, want := range cases {
		assert.Equal(t, want, Event{Type: tag}.Kind(), "type %q", tag)
	}
}

func TestEventDecodeSubject(t *testing.T) {
	ev := Event{
		Type:    "line.create",
		Subject: json.RawMessage(`{"id":"m1","text":"hi"}`),
	}
	var msg struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	require.NoError(t, ev.DecodeSubject(&msg))
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "hi", msg.Text)

	assert.Error(t, Event{}.DecodeSubject(&msg))
}
