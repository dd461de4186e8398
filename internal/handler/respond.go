package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// messageResponse is the body of every non-entity response.
type messageResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

func respondValidation(w http.ResponseWriter, details []string) {
	respondJSON(w, http.StatusBadRequest, messageResponse{
		Message: "validation error",
		Details: details,
	})
}

func respondInternal(w http.ResponseWriter) {
	respondMessage(w, http.StatusInternalServerError, "something went wrong")
}

// decodeJSON reads a bounded request body into v. A malformed or empty body
// is a client error.
func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body) //nolint:errcheck

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(v); err != nil {
		return errors.New("invalid request body")
	}

	return nil
}
