package models

// ✅ Interaction Types
const (
	InteractionTypeLike    = "like"
	InteractionTypeDislike = "dislike"
	InteractionTypeRose    = "rose"
)

// ✅ Interaction / Match Statuses
const (
	StatusPending  = "pending"
	StatusMatch    = "match"
	StatusDeclined = "declined"
	StatusActive   = "active"
)

// Live channel events
const (
	EventSendMessage = "sendMessage"
	EventNewMessage  = "newMessage"
)
