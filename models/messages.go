package models

import (
	"strings"
	"time"
)

// Message is a single direct message between two matched users.
type Message struct {
	MessageID string `json:"messageId,omitempty"` // Assigned by the store
	// Idempotency key generated by the sending client
	ClientID   string    `json:"clientId,omitempty"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessagesTable is the DynamoDB table name for direct messages
const MessagesTable = "Messages"

// PairKey returns the conversation key for an unordered pair of users.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "#" + b
}

// Between reports whether the message belongs to the conversation of a and b.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Validate checks the fields a sender must supply.
func (m Message) Validate() bool {
	return m.SenderID != "" && m.ReceiverID != "" && m.SenderID != m.ReceiverID && strings.TrimSpace(m.Body) != ""
}
