package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-bridge/internal/crm"
)

// List handlers: read-only windowed listing per provider. The adapter
// is resolved once from the route's provider segment and never
// re-dispatched deeper.

func resolveAdapter(registry *crm.Registry, r *http.Request) (crm.Adapter, error) {
	provider, err := crm.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		return nil, err
	}
	return registry.Adapter(provider)
}

// HandleListContacts returns the provider's ten most recent contacts
func HandleListContacts(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapter, err := resolveAdapter(registry, r)
		if err != nil {
			respondError(w, err)
			return
		}

		contacts, err := adapter.ListContacts(r.Context(), callerID(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, contacts)
	}
}

// HandleListCompanies returns the provider's ten most recent companies
func HandleListCompanies(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapter, err := resolveAdapter(registry, r)
		if err != nil {
			respondError(w, err)
			return
		}

		companies, err := adapter.ListCompanies(r.Context(), callerID(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, companies)
	}
}

// HandleListDeals returns the provider's ten most recent deals
func HandleListDeals(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapter, err := resolveAdapter(registry, r)
		if err != nil {
			respondError(w, err)
			return
		}

		deals, err := adapter.ListDeals(r.Context(), callerID(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, deals)
	}
}
