package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
)

func SendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, models.APIResponse{
		Status:  "error",
		Message: message,
	})
}

func SendSuccessResponse(w http.ResponseWriter, response models.APIResponse) {
	if response.Status == "" {
		response.Status = "success"
	}
	SendJSON(w, http.StatusOK, response)
}

// SendAuthError and SendAuthOK write the {error} and {ok} bodies the auth
// routes answer with.
func SendAuthError(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, models.AuthErrorResponse{Error: message})
}

func SendAuthOK(w http.ResponseWriter, ok bool, session *models.Session) {
	SendJSON(w, http.StatusOK, models.AuthOKResponse{OK: ok, Session: session})
}
