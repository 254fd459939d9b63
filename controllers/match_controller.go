package controllers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"vibin/apperrors"
	"vibin/utils"
)

// MatchController handles HTTP requests for match-related actions
type MatchController struct {
	Matches MatchLister
}

func NewMatchController(matches MatchLister) *MatchController {
	return &MatchController{Matches: matches}
}

// HandleGetMatches returns the user's matches with the other user's profile.
func (mc *MatchController) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.WriteError(w, apperrors.InvalidArg("userId is required"))
		return
	}
	if err := utils.CheckActingUser(r, userID); err != nil {
		utils.WriteError(w, err)
		return
	}

	matches, err := mc.Matches.GetMatchesWithProfiles(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("❌ Error fetching matches")
		utils.WriteError(w, apperrors.TransportFailure("failed to fetch matches", err))
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, matches)
}
