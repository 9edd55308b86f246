package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-bridge/internal/crm"
	"crm-bridge/internal/token"
)

// HandleProviderLogin redirects the caller to the provider's consent
// page. The caller-supplied userId rides along as the OAuth state and
// comes back verbatim in the callback; it is trusted as-is.
func HandleProviderLogin(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := crm.ParseProvider(chi.URLParam(r, "provider"))
		if err != nil {
			respondError(w, err)
			return
		}

		auth, err := registry.Auth(provider)
		if err != nil {
			respondError(w, err)
			return
		}

		http.Redirect(w, r, auth.AuthorizationURL(callerID(r)), http.StatusFound)
	}
}

// HandleProviderCallback completes the authorization-code exchange and
// persists the resulting connection.
func HandleProviderCallback(tokens *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := crm.ParseProvider(chi.URLParam(r, "provider"))
		if err != nil {
			respondError(w, err)
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "callback is missing code or state"})
			return
		}

		// state doubles as the userId for the connection.
		conn, err := tokens.CompleteAuthorization(r.Context(), provider, code, state)
		if err != nil {
			respondError(w, err)
			return
		}

		log.Printf("Connected %s for user %s", provider, conn.UserID)

		resp := map[string]interface{}{
			"message": string(provider) + " connected successfully",
			"crm":     string(provider),
			"userId":  conn.UserID,
		}
		if conn.InstanceURL != nil {
			resp["instanceUrl"] = *conn.InstanceURL
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
