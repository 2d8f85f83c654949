package outline

import (
	"bytes"
	"encoding/json"
)

// MessageType tags an inbound or outbound envelope.
type MessageType string

const (
	MessageUpdate      MessageType = "update"
	MessageScroll      MessageType = "scroll"
	MessageConfig      MessageType = "config"
	MessageChangeDepth MessageType = "changeDepth"
	MessageFocus       MessageType = "focus"

	MessageGoto MessageType = "goto"
)

// Message is the inbound envelope. Data is decoded lazily by the router
// according to Type.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes data into an envelope of the given type.
func NewMessage(typ MessageType, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Data: raw}, nil
}

// UpdateData carries an ordered patch batch.
type UpdateData struct {
	Patches []Patch `json:"patches"`
}

// ScrollData names the node to bring into view: a visual class such as
// "focus" or "in-view", or an identity key.
type ScrollData struct {
	Follow string `json:"follow"`
}

// ConfigData replaces the panel configuration.
type ConfigData struct {
	Color map[string]string `json:"color"`
	Depth *float64          `json:"depth,omitempty"`
	Debug *bool             `json:"debug,omitempty"`
}

// ChangeDepthData adjusts the max depth by Delta.
type ChangeDepthData struct {
	Delta int `json:"delta"`
}

// PatchType tags a Patch.
type PatchType string

const (
	PatchUpdate PatchType = "update"
	PatchMove   PatchType = "move"
	PatchInsert PatchType = "insert"
	PatchDelete PatchType = "delete"
)

// Patch is one tree edit scoped to the node named by Selector.
type Patch struct {
	Selector string          `json:"selector"`
	Type     PatchType       `json:"type"`
	Property string          `json:"property,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Nodes    []SymbolNode    `json:"nodes,omitempty"`
	Before   *SymbolNode     `json:"before"`
}

// StringValue returns the patch value in attribute form: strings verbatim,
// every other JSON value as its literal text, nil when absent or null.
func (p Patch) StringValue() *string {
	raw := bytes.TrimSpace(p.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return &s
	}
	s = string(raw)
	return &s
}

// NewUpdatePatch builds an attribute update with a JSON-encodable value. A nil
// value clears the attribute.
func NewUpdatePatch(selector string, attr Attr, value any) Patch {
	p := Patch{Selector: selector, Type: PatchUpdate, Property: attr.String()}
	if value == nil {
		return p
	}
	if raw, err := json.Marshal(value); err == nil {
		p.Value = raw
	}
	return p
}

// OutboundMessage is sent from the panel to the host.
type OutboundMessage struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// GotoData asks the host to reveal a position.
type GotoData struct {
	Position Position `json:"position"`
}

// NewGotoMessage builds the navigation request for pos.
func NewGotoMessage(pos Position) OutboundMessage {
	return OutboundMessage{Type: MessageGoto, Data: GotoData{Position: pos}}
}

// Poster delivers outbound messages to the host.
type Poster interface {
	Post(msg OutboundMessage) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(OutboundMessage) error

// Post calls f.
func (f PosterFunc) Post(msg OutboundMessage) error { return f(msg) }
