package controllers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"vibin/models"
	"vibin/utils"
)

// Interactions records likes and roses.
type Interactions interface {
	Like(ctx context.Context, sender, receiver string) (string, error)
	Rose(ctx context.Context, sender, receiver string, message *string) error
}

// InteractionController handles likes and roses.
type InteractionController struct {
	Interactions Interactions
}

func NewInteractionController(interactions Interactions) *InteractionController {
	return &InteractionController{Interactions: interactions}
}

type InteractionRequest struct {
	SenderHandle   string  `json:"senderHandle"`
	ReceiverHandle string  `json:"receiverHandle"`
	Message        *string `json:"message,omitempty"`
}

type InteractionResponse struct {
	Status  string `json:"status"`
	MatchID string `json:"matchId,omitempty"`
}

// HandleLike likes receiverHandle. The response carries the match id when
// the like was mutual.
func (ic *InteractionController) HandleLike(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInteraction(w, r)
	if !ok {
		return
	}

	matchID, err := ic.Interactions.Like(r.Context(), req.SenderHandle, req.ReceiverHandle)
	if err != nil {
		log.Error().Err(err).Str("sender", req.SenderHandle).Msg("❌ Failed to record like")
		utils.WriteError(w, err)
		return
	}

	resp := InteractionResponse{Status: models.StatusPending}
	if matchID != "" {
		resp = InteractionResponse{Status: models.StatusMatch, MatchID: matchID}
	}
	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// HandleRose sends a rose. Non-subscribers get 401 so the app can show the
// upsell.
func (ic *InteractionController) HandleRose(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInteraction(w, r)
	if !ok {
		return
	}

	if err := ic.Interactions.Rose(r.Context(), req.SenderHandle, req.ReceiverHandle, req.Message); err != nil {
		log.Warn().Err(err).Str("sender", req.SenderHandle).Msg("⚠️ Rose not sent")
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, InteractionResponse{Status: "success"})
}

func decodeInteraction(w http.ResponseWriter, r *http.Request) (InteractionRequest, bool) {
	var req InteractionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return req, false
	}
	if err := utils.CheckActingUser(r, req.SenderHandle); err != nil {
		utils.WriteError(w, err)
		return req, false
	}
	return req, true
}
