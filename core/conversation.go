package core

import (
	"bytes"
	"encoding/json"
)

// Conversation is a single raw conversation record from a bulk chat export.
// Conversations are read-only inputs; the extractor never mutates them.
type Conversation struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Mapping NodeMap `json:"mapping"`
}

// NodeEntry pairs a node identifier with its node, preserving the position the
// pair held in the source document.
type NodeEntry struct {
	ID   string
	Node Node
}

// NodeMap is the conversation's node mapping. JSON objects carry no order
// guarantee, but the export's node order approximates turn order, so the
// mapping is decoded into an ordered sequence rather than a Go map.
type NodeMap []NodeEntry

// UnmarshalJSON decodes the mapping object while preserving key order.
// Values that are not objects degrade to empty nodes instead of failing.
func (m *NodeMap) UnmarshalJSON(data []byte) error {
	*m = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		// null or a non-object value: nothing to iterate over
		return nil
	}

	entries := NodeMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var node Node
		// Malformed node values contribute an empty node, not an error.
		_ = json.Unmarshal(raw, &node)
		entries = append(entries, NodeEntry{ID: key, Node: node})
	}

	*m = entries
	return nil
}

// MarshalJSON encodes the mapping back to a JSON object in stored order.
func (m NodeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(entry.Node)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Node is a single entry in the conversation mapping. Nodes without a message
// contribute nothing to extraction.
type Node struct {
	Message *ChatMessage `json:"message"`
}

// ChatMessage is a message attached to a mapping node.
type ChatMessage struct {
	Author  Author  `json:"author"`
	Content Content `json:"content"`
}

// Author identifies the message speaker.
type Author struct {
	Role string `json:"role"`
}

// Content is the ordered sequence of message parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one element of a message's content. Parts are either plain strings
// or structured objects carrying a "text" field; anything else contributes no
// text.
type Part struct {
	Text    string
	HasText bool
}

// UnmarshalJSON accepts a JSON string, an object with a string "text" field,
// or any other value (which yields an empty part). It never returns an error
// for a well-formed JSON value.
func (p *Part) UnmarshalJSON(data []byte) error {
	p.Text, p.HasText = "", false

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text, p.HasText = s, true
		return nil
	}

	var obj struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Text != nil {
		p.Text, p.HasText = *obj.Text, true
	}
	return nil
}

// MarshalJSON writes the part back as a plain string, or null when the part
// carries no text.
func (p Part) MarshalJSON() ([]byte, error) {
	if !p.HasText {
		return []byte("null"), nil
	}
	return json.Marshal(p.Text)
}
