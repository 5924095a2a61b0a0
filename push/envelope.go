package push

import (
	"bytes"
	"encoding/json"
)

// Protocol meta-channels.
const (
	channelHandshake = "/meta/handshake"
	channelConnect   = "/meta/connect"
	channelSubscribe = "/meta/subscribe"
)

// Envelope is one message unit of the publish/subscribe wire protocol.
// Envelopes are transient: decoded from a frame, consumed, and discarded.
type Envelope struct {
	Channel      string          `json:"channel"`
	ClientID     string          `json:"clientId,omitempty"`
	Successful   *bool           `json:"successful,omitempty"`
	Subscription string          `json:"subscription,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Ext          json.RawMessage `json:"ext,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// IsMeta reports whether the envelope is protocol control traffic
func (e Envelope) IsMeta() bool {
	return e.Channel == channelHandshake ||
		e.Channel == channelConnect ||
		e.Channel == channelSubscribe
}

// Rejected reports whether the envelope is an explicit failure ack
func (e Envelope) Rejected() bool {
	return e.Successful != nil && !*e.Successful
}

// decodeFrame turns one raw frame into envelopes. A frame is either a
// single object or an array of objects; non-object entries are skipped
// and counted so the session can track malformed traffic without
// failing the stream.
func decodeFrame(raw json.RawMessage) (envelopes []Envelope, skipped int, err error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, 1, nil
	}

	if trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, 0, err
		}
		for _, entry := range entries {
			env, ok := decodeEnvelope(entry)
			if !ok {
				skipped++
				continue
			}
			envelopes = append(envelopes, env)
		}
		return envelopes, skipped, nil
	}

	env, ok := decodeEnvelope(trimmed)
	if !ok {
		return nil, 1, nil
	}
	return []Envelope{env}, 0, nil
}

// decodeEnvelope decodes one entry, rejecting non-object JSON values
func decodeEnvelope(raw json.RawMessage) (Envelope, bool) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

// envelopeExt mirrors the extension block of an envelope; some servers
// tuck the application payload under ext.data instead of data.
type envelopeExt struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// Extract is the event demultiplexer: it pulls the application payload
// out of an envelope. The direct data field wins; otherwise the payload
// nested inside the extension data is used. Envelopes carrying neither
// are protocol control traffic and yield no event.
func Extract(env Envelope) (json.RawMessage, bool) {
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data, true
	}
	if len(env.Ext) > 0 {
		var ext envelopeExt
		if err := json.Unmarshal(env.Ext, &ext); err == nil &&
			len(ext.Data) > 0 && !bytes.Equal(ext.Data, []byte("null")) {
			return ext.Data, true
		}
	}
	return nil, false
}
