package controllers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/chat"
	"vibin/models"
	"vibin/utils"
)

// MatchLister loads a user's matches with the counterpart profiles.
type MatchLister interface {
	GetMatchesWithProfiles(ctx context.Context, userHandle string) ([]models.MatchWithProfile, error)
}

// InboxController groups a user's matches into your-turn / their-turn.
type InboxController struct {
	Matches     MatchLister
	Categorizer *chat.Categorizer
}

func NewInboxController(matches MatchLister, categorizer *chat.Categorizer) *InboxController {
	return &InboxController{Matches: matches, Categorizer: categorizer}
}

// HandleGetInbox categorizes userId's matches. sort=recency orders each
// bucket by last message.
func (c *InboxController) HandleGetInbox(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.WriteError(w, apperrors.InvalidArg("userId is required"))
		return
	}
	if err := utils.CheckActingUser(r, userID); err != nil {
		utils.WriteError(w, err)
		return
	}

	matches, err := c.Matches.GetMatchesWithProfiles(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("❌ Error fetching matches for inbox")
		utils.WriteError(w, apperrors.TransportFailure("failed to fetch matches", err))
		return
	}

	categorizer := *c.Categorizer
	if r.URL.Query().Get("sort") == "recency" {
		categorizer.SortByRecency = true
	}
	buckets, err := categorizer.Categorize(r.Context(), userID, matches)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, buckets)
}
