package push

import (
	"encoding/json"

	"github.com/skbidisigma1/groupme-cli/errors"
)

// EventKind classifies the domain event extracted from an envelope
type EventKind int

const (
	// KindUnknown is any type tag not recognized below
	KindUnknown EventKind = iota
	// KindMessage is a new message posted to a group or chat
	KindMessage
	// KindLike is a favorite added to a message
	KindLike
	// KindMembership is a membership change (join, add, remove)
	KindMembership
	// KindPing is server keepalive traffic
	KindPing
)

// String returns the string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindLike:
		return "like"
	case KindMembership:
		return "membership"
	case KindPing:
		return "ping"
	default:
		return "unknown"
	}
}

// Event is the application-level event extracted from an envelope. The
// type tag discriminates the shape of Subject; Decode unpacks it into a
// caller-supplied struct (typically api.Message for message events).
type Event struct {
	// Type is the provider's event type tag, e.g. "line.create",
	// "like.create", "membership.create", "ping".
	Type string `json:"type"`
	// Alert is the human-readable notification line, when present.
	Alert string `json:"alert,omitempty"`
	// Subject is the event payload: the message, the like, the
	// membership change.
	Subject json.RawMessage `json:"subject,omitempty"`
	// Received is when this client pulled the event off the wire,
	// epoch seconds.
	Received int64 `json:"-"`
}

// Kind maps the provider's type tag onto a stable enum
func (e Event) Kind() EventKind {
	switch e.Type {
	case "line.create", "direct_message.create", "message.create":
		return KindMessage
	case "like.create", "favorite":
		return KindLike
	case "membership.create", "membership.update", "membership.destroy":
		return KindMembership
	case "ping":
		return KindPing
	default:
		return KindUnknown
	}
}

// DecodeSubject unmarshals the subject payload into out
func (e Event) DecodeSubject(out any) error {
	if len(e.Subject) == 0 {
		return errors.WrapInvalid(errors.ErrEmptyResponse, "event", "DecodeSubject", "check subject")
	}
	if err := json.Unmarshal(e.Subject, out); err != nil {
		return errors.WrapInvalid(err, "event", "DecodeSubject", "decode subject")
	}
	return nil
}

// parseEvent decodes an extracted payload into an Event, stamping the
// receive time
func parseEvent(payload json.RawMessage, now int64) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	ev.Received = now
	return ev, nil
}
