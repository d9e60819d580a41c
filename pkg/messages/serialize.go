package messages

import (
	"encoding/json"
	"fmt"
)

// SerializeMessage encodes a message as a JSON text frame.
func SerializeMessage(m *Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return b, nil
}

// DeserializeMessage decodes a JSON text frame into a message. It fails on
// structurally malformed frames; a well-formed frame with an unrecognized
// type deserializes fine and is the caller's to ignore.
func DeserializeMessage(data []byte) (*Message, error) {
	m := &Message{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	return m, nil
}
