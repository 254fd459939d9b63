package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"vibin/apperrors"
)

// WriteJSONResponse writes v as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("❌ Error encoding response")
	}
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code"`
}

// WriteError maps err onto its status code. Errors outside the taxonomy are
// reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	message := err.Error()
	if code == apperrors.CodeUnknown {
		code = apperrors.CodeInternal
		message = "internal server error"
	}
	WriteJSONResponse(w, code.HTTPStatus(), ErrorResponse{Error: message, Code: code})
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidArg("invalid request body")
	}
	return nil
}
