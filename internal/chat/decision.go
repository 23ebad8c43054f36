package chat

import (
	"bytes"
	"encoding/json"
	"strings"
)

// endSentinel is the literal query value signaling end-of-conversation.
const endSentinel = "END"

// TurnReply is the payload returned to the caller for one turn. Query is the
// model's raw query value (null, the end sentinel, or a booking object) and
// is echoed back verbatim.
type TurnReply struct {
	Reply string          `json:"reply"`
	Query json.RawMessage `json:"query"`
}

// DecisionKind discriminates what a turn's query asks the system to do.
type DecisionKind string

const (
	DecisionNone DecisionKind = "none"
	DecisionEnd  DecisionKind = "end"
	DecisionBook DecisionKind = "book"
)

// Booking carries the appointment fields of a create-appointment command,
// taken verbatim from the model's query object.
type Booking struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Decision is the discriminated interpretation of a TurnReply's query. The
// model mixes a string sentinel and an object payload in the same field, so
// the shape is resolved here, once, against the untrusted raw value.
type Decision struct {
	Kind    DecisionKind
	Booking *Booking
}

// ParseReply decodes the reasoning service's raw text into a TurnReply.
// Three tiers: the whole text as JSON; the first {...} span embedded in
// surrounding prose; and finally the raw text as a plain reply with a null
// query. A parse failure never escapes to the caller.
func ParseReply(raw string) TurnReply {
	if reply, ok := decodeReply(raw); ok {
		return reply
	}
	if span, ok := jsonSpan(raw); ok {
		if reply, ok := decodeReply(span); ok {
			return reply
		}
	}
	return TurnReply{Reply: raw, Query: nil}
}

func decodeReply(text string) (TurnReply, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply TurnReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return TurnReply{}, false
	}
	return reply, true
}

// jsonSpan returns the first '{' through the last '}' of the text.
func jsonSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Decision interprets the query value. A JSON string equal to the end
// sentinel ends the conversation; any other string is ignored; a JSON object
// is a booking command; null or absent means no command.
func (r TurnReply) Decision() Decision {
	q := bytes.TrimSpace(r.Query)
	if len(q) == 0 || bytes.Equal(q, []byte("null")) {
		return Decision{Kind: DecisionNone}
	}

	var sentinel string
	if err := json.Unmarshal(q, &sentinel); err == nil {
		if sentinel == endSentinel {
			return Decision{Kind: DecisionEnd}
		}
		return Decision{Kind: DecisionNone}
	}

	if q[0] == '{' {
		var booking Booking
		if err := json.Unmarshal(q, &booking); err == nil {
			return Decision{Kind: DecisionBook, Booking: &booking}
		}
	}
	return Decision{Kind: DecisionNone}
}
