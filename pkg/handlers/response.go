package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope every analysis endpoint returns on failure.
// Code is a stable machine-readable token ("no_usable_data", "too_large",
// "not_found"); Message carries the human-readable detail.
type ErrorBody struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status and returns
// any encoding error.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// ErrorResponse writes the standard error envelope.
func ErrorResponse(w http.ResponseWriter, status int, code, message string) error {
	return WriteJSON(w, status, ErrorBody{Code: code, Message: message})
}
