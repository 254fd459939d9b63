package routes

import (
	"github.com/gorilla/mux"

	"vibin/chat"
	"vibin/controllers"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(api *mux.Router, store chat.MessageStore, matches controllers.MatchLister, categorizer *chat.Categorizer) {
	chatController := controllers.NewChatController(store)
	inboxController := controllers.NewInboxController(matches, categorizer)

	chatRouter := api.PathPrefix("/chat").Subrouter()
	chatRouter.HandleFunc("/history", chatController.HandleGetHistory).Methods("GET")
	chatRouter.HandleFunc("/messages", chatController.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/inbox", inboxController.HandleGetInbox).Methods("GET")
}
