package routes

import (
	"github.com/gorilla/mux"

	"vibin/controllers"
)

// RegisterInteractionRoutes sets up likes and roses under /api/interactions
func RegisterInteractionRoutes(api *mux.Router, interactions controllers.Interactions) {
	controller := controllers.NewInteractionController(interactions)

	interactionRouter := api.PathPrefix("/interactions").Subrouter()
	interactionRouter.HandleFunc("/like", controller.HandleLike).Methods("POST")
	interactionRouter.HandleFunc("/rose", controller.HandleRose).Methods("POST")
}
