package api

import (
	"encoding/json"
	"errors"
	"github.com/larkhq/larkd/wifi"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		a.log.Errorf("Could not respond with JSON: %v", err)
	}
}

func (a *Api) jsonError(w http.ResponseWriter, message string, code int) {
	a.jsonResponse(w, &errorResponse{Error: message}, code)
}

// statusForError picks the HTTP status matching a wifi error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, wifi.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, wifi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, wifi.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, wifi.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
