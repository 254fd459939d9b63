package routes

import (
	"github.com/gorilla/mux"

	"vibin/controllers"
)

// RegisterMatchRoutes sets up routes for match-related operations
func RegisterMatchRoutes(api *mux.Router, matches controllers.MatchLister) {
	controller := controllers.NewMatchController(matches)
	api.HandleFunc("/match", controller.HandleGetMatches).Methods("GET")
}
