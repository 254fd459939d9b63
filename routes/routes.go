package routes

import (
	"github.com/gorilla/mux"

	"vibin/chat"
	"vibin/controllers"
	"vibin/utils"
)

// Services are the backends the REST API is served from.
type Services struct {
	Chat         chat.MessageStore
	Categorizer  *chat.Categorizer
	Matches      controllers.MatchLister
	Interactions controllers.Interactions
	Profiles     controllers.ProfileGetter
	Photos       controllers.PhotoURLs
}

// NewRouter registers the public routes and the authenticated /api routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(utils.RequireUser)

	RegisterChatRoutes(api, s.Chat, s.Matches, s.Categorizer)
	RegisterMatchRoutes(api, s.Matches)
	RegisterInteractionRoutes(api, s.Interactions)
	RegisterUserProfileRoutes(api, s.Profiles)
	if s.Photos != nil {
		RegisterS3Routes(api, s.Photos)
	}
	return r
}
