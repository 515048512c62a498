package eventstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultEvent is the event name assumed when a frame carries no
// "event:" line.
const DefaultEvent = "message"

// Frame is one protocol unit: an event name and its payload.
type Frame struct {
	Event string
	Data  Payload
}

// Payload is the tagged result of decoding a frame body: either a parsed
// JSON value or, when decoding fails, the raw trimmed text. Consumers
// must handle both shapes.
type Payload struct {
	raw    string
	value  any
	isJSON bool
}

// IsNull reports whether the frame carried no usable data (empty body or
// the literal null token).
func (p Payload) IsNull() bool {
	return p.raw == ""
}

// Value returns the decoded JSON value, the raw text when the body was
// not valid JSON, or nil for empty payloads.
func (p Payload) Value() any {
	if p.isJSON {
		return p.value
	}
	if p.raw != "" {
		return p.raw
	}
	return nil
}

// Object returns the payload as a JSON object, if it is one.
func (p Payload) Object() (map[string]any, bool) {
	obj, ok := p.value.(map[string]any)
	return obj, ok && p.isJSON
}

// Text returns the raw trimmed payload text.
func (p Payload) Text() string {
	return p.raw
}

// Unmarshal decodes the payload JSON into v.
func (p Payload) Unmarshal(v any) error {
	if !p.isJSON {
		return fmt.Errorf("eventstream: payload is not JSON")
	}
	return json.Unmarshal([]byte(p.raw), v)
}

// parseFrame extracts the event name and payload text from one frame
// block. Multiple data lines are concatenated without a separator.
func parseFrame(block string) Frame {
	event := DefaultEvent
	var data strings.Builder
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	return Frame{Event: event, Data: parsePayload(data.String())}
}

func parsePayload(text string) Payload {
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return Payload{}
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Payload{raw: text}
	}
	return Payload{raw: text, value: v, isJSON: true}
}
