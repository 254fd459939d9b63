package routes

import (
	"github.com/gorilla/mux"

	"vibin/controllers"
)

func RegisterUserProfileRoutes(api *mux.Router, profiles controllers.ProfileGetter) {
	controller := controllers.NewUserProfileController(profiles)
	api.HandleFunc("/profile/{userHandle}", controller.HandleGetProfile).Methods("GET")
}
