package models

import "encoding/json"

// Envelope frames live events on the plain WebSocket transport:
// {"event": "newMessage", "data": {...}}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope wraps msg for event.
func NewEnvelope(event string, msg Message) (Envelope, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// Message decodes the payload.
func (e Envelope) Message() (Message, error) {
	var msg Message
	err := json.Unmarshal(e.Data, &msg)
	return msg, err
}
