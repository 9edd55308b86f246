package api

import (
	"encoding/json"
	"net/http"

	"crm-bridge/internal/crm"
	"crm-bridge/internal/models"
)

// Push handlers: create and update normalized entities against
// whichever provider the request body's crm tag names. The tag is
// matched case-insensitively and resolved once, before the core runs.

func adapterForTag(registry *crm.Registry, tag string) (crm.Adapter, error) {
	provider, err := crm.ParseProvider(tag)
	if err != nil {
		return nil, err
	}
	return registry.Adapter(provider)
}

// HandlePushContact creates a contact in the CRM named by the body
func HandlePushContact(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contact models.Contact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "contact body required"})
			return
		}

		adapter, err := adapterForTag(registry, contact.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.CreateContact(r.Context(), callerID(r), &contact)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":       adapter.Provider().String(),
			"message":   "Contact created",
			"contactId": id,
		})
	}
}

// HandleUpdateContact updates a contact; the body must carry the id
func HandleUpdateContact(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contact models.Contact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "contact body required"})
			return
		}

		adapter, err := adapterForTag(registry, contact.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.UpdateContact(r.Context(), callerID(r), &contact)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":       adapter.Provider().String(),
			"message":   "Contact updated",
			"contactId": id,
		})
	}
}

// HandlePushCompany creates a company in the CRM named by the body
func HandlePushCompany(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var company models.Company
		if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "company body required"})
			return
		}

		adapter, err := adapterForTag(registry, company.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.CreateCompany(r.Context(), callerID(r), &company)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":       adapter.Provider().String(),
			"message":   "Company created",
			"companyId": id,
		})
	}
}

// HandleUpdateCompany updates a company; the body must carry the id
func HandleUpdateCompany(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var company models.Company
		if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "company body required"})
			return
		}

		adapter, err := adapterForTag(registry, company.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.UpdateCompany(r.Context(), callerID(r), &company)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":       adapter.Provider().String(),
			"message":   "Company updated",
			"companyId": id,
		})
	}
}

// HandlePushDeal creates a deal in the CRM named by the body
func HandlePushDeal(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var deal models.Deal
		if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "deal body required"})
			return
		}

		adapter, err := adapterForTag(registry, deal.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.CreateDeal(r.Context(), callerID(r), &deal)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":     adapter.Provider().String(),
			"message": "Deal created",
			"dealId":  id,
		})
	}
}

// HandleUpdateDeal updates a deal; the body must carry the id
func HandleUpdateDeal(registry *crm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var deal models.Deal
		if err := json.NewDecoder(r.Body).Decode(&deal); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "deal body required"})
			return
		}

		adapter, err := adapterForTag(registry, deal.CRM)
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := adapter.UpdateDeal(r.Context(), callerID(r), &deal)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"crm":     adapter.Provider().String(),
			"message": "Deal updated",
			"dealId":  id,
		})
	}
}
