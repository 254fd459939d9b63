package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"vibin/models"
	"vibin/utils"
)

type ProfileGetter interface {
	GetUserProfile(ctx context.Context, userHandle string) (*models.UserProfile, error)
}

type UserProfileController struct {
	Profiles ProfileGetter
}

func NewUserProfileController(profiles ProfileGetter) *UserProfileController {
	return &UserProfileController{Profiles: profiles}
}

// HandleGetProfile returns the profile at /api/profile/{userHandle}
func (pc *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := pc.Profiles.GetUserProfile(r.Context(), mux.Vars(r)["userHandle"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, profile)
}
