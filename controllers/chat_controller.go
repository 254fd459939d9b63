package controllers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/models"
	"vibin/utils"
)

// ChatController serves history and sending over REST.
type ChatController struct {
	Store chat.MessageStore
}

func NewChatController(store chat.MessageStore) *ChatController {
	return &ChatController{Store: store}
}

// HandleGetHistory returns the conversation between senderId and receiverId.
// The acting user must be one of the two.
func (c *ChatController) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	senderID := query.Get("senderId")
	receiverID := query.Get("receiverId")
	if senderID == "" || receiverID == "" {
		utils.WriteError(w, apperrors.ErrInvalidParticipants)
		return
	}
	if acting := utils.ActingUser(r); acting != senderID && acting != receiverID {
		utils.WriteError(w, apperrors.Unauthorized("not a participant of this conversation"))
		return
	}

	var since time.Time
	if raw := query.Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			utils.WriteError(w, apperrors.InvalidArg("since must be an RFC3339 timestamp"))
			return
		}
		since = parsed
	}

	messages, err := c.Store.History(r.Context(), senderID, receiverID, since)
	if err != nil {
		log.Error().Err(err).Str("sender", senderID).Str("receiver", receiverID).Msg("❌ Error fetching messages")
		utils.WriteError(w, apperrors.TransportFailure("failed to fetch messages", err))
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, messages)
}

// SendMessageRequest is the body of POST /api/chat/messages.
type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Body       string `json:"body"`
	ClientID   string `json:"clientId"`
}

type SendMessageResponse struct {
	Status    string         `json:"status"`
	MessageID string         `json:"messageId"`
	Message   models.Message `json:"message"`
}

// HandleSendMessage persists a message sent by the acting user.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := utils.CheckActingUser(r, req.SenderID); err != nil {
		utils.WriteError(w, err)
		return
	}

	msg := models.Message{
		ClientID:   req.ClientID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
	}
	if req.ReceiverID == "" || req.ReceiverID == req.SenderID {
		utils.WriteError(w, apperrors.ErrInvalidParticipants)
		return
	}
	if !msg.Validate() {
		utils.WriteError(w, apperrors.InvalidArg("message body is required"))
		return
	}

	log.Debug().Str("sender", req.SenderID).Str("receiver", req.ReceiverID).Str("clientId", req.ClientID).Msg("📩 Received message request")
	stored, err := c.Store.Send(r.Context(), msg)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeUnknown {
			err = apperrors.TransportFailure("failed to send message", err)
		}
		log.Error().Err(err).Msg("❌ Failed to send message")
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, SendMessageResponse{
		Status:    "success",
		MessageID: stored.MessageID,
		Message:   stored,
	})
}
