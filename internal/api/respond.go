package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"crm-bridge/internal/crm"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps the core failure taxonomy onto HTTP statuses:
// invalid input and missing connections are the caller's problem,
// provider failures surface as bad gateway, anything else is a 500.
func respondError(w http.ResponseWriter, err error) {
	var reqErr *crm.RequestError
	var malformed *crm.MalformedResponseError

	switch {
	case crm.IsInvalidInput(err), errors.Is(err, crm.ErrNotConnected):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &reqErr), errors.As(err, &malformed):
		log.Printf("Provider call failed: %v", err)
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// callerID returns the caller-supplied user identifier. It is an
// opaque, trusted string; no identity system sits behind it.
func callerID(r *http.Request) string {
	if userID := r.URL.Query().Get("userId"); userID != "" {
		return userID
	}
	return "test-user"
}
