// Package httputil centralizes the JSON response shapes of the API.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithJSON writes payload with the given status code.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// RespondWithError writes a standardized error body.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

func AuthenticationError(w http.ResponseWriter) {
	RespondWithError(w, http.StatusUnauthorized, "No autenticado")
}

func AuthorizationError(w http.ResponseWriter) {
	RespondWithError(w, http.StatusForbidden, "Sin permisos suficientes")
}

func BadRequestError(w http.ResponseWriter, message string) {
	RespondWithError(w, http.StatusBadRequest, message)
}

func NotFoundError(w http.ResponseWriter, message string) {
	RespondWithError(w, http.StatusNotFound, message)
}

func RateLimitError(w http.ResponseWriter) {
	RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
}

// InternalError hides the underlying failure unless debug mode is on.
func InternalError(w http.ResponseWriter, err error, debug bool) {
	log.Error().Err(err).Msg("internal server error")
	if debug && err != nil {
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	RespondWithError(w, http.StatusInternalServerError, "Contacte al administrador")
}
