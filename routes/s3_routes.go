package routes

import (
	"github.com/gorilla/mux"

	"vibin/controllers"
)

// RegisterS3Routes sets up routes for profile photo URLs
func RegisterS3Routes(api *mux.Router, photos controllers.PhotoURLs) {
	controller := controllers.NewPhotoController(photos)

	photoRouter := api.PathPrefix("/photos").Subrouter()
	photoRouter.HandleFunc("/upload-url", controller.HandleUploadURL).Methods("POST")
	photoRouter.HandleFunc("/read-url", controller.HandleReadURL).Methods("POST")
}
