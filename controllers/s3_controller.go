package controllers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"vibin/utils"
)

// PhotoURLs presigns S3 URLs for profile photos.
type PhotoURLs interface {
	GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error)
	GenerateReadURL(ctx context.Context, key string) (string, error)
}

type PhotoController struct {
	Photos PhotoURLs
}

func NewPhotoController(photos PhotoURLs) *PhotoController {
	return &PhotoController{Photos: photos}
}

// HandleUploadURL generates a presigned URL for S3 uploads
func (pc *PhotoController) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.WriteError(w, err)
		return
	}

	url, key, err := pc.Photos.GenerateUploadURL(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		log.Error().Err(err).Str("file", payload.FileName).Msg("❌ Error generating pre-signed URL")
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "fileName": key})
}

// HandleReadURL generates a presigned URL for reading S3 objects
func (pc *PhotoController) HandleReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.WriteError(w, err)
		return
	}

	url, err := pc.Photos.GenerateReadURL(r.Context(), payload.Key)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
