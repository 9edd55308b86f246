package models

// Normalized, provider-agnostic CRM entities. Every record carries the
// provider tag it came from (or should be pushed to) and the
// provider-native id, present only after creation or read. Optional
// fields are pointers: nil means "not supplied" on create and
// "leave unchanged" on update.

// Contact is the normalized CRM contact
type Contact struct {
	ID        string  `json:"id,omitempty"`
	CRM       string  `json:"crm,omitempty"`
	Type      string  `json:"type,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Company   *string `json:"company,omitempty"` // read-only, derived by the provider
	Owner     *string `json:"owner,omitempty"`   // read-only, derived by the provider
}

// Company is the normalized CRM company (Salesforce Account)
type Company struct {
	ID     string  `json:"id,omitempty"`
	CRM    string  `json:"crm,omitempty"`
	Type   string  `json:"type,omitempty"`
	Name   *string `json:"name,omitempty"`
	Domain *string `json:"domain,omitempty"` // maps to Website on Salesforce
	Owner  *string `json:"owner,omitempty"`  // read-only, derived by the provider
}

// Deal is the normalized CRM deal (Salesforce Opportunity)
type Deal struct {
	ID       string   `json:"id,omitempty"`
	CRM      string   `json:"crm,omitempty"`
	Type     string   `json:"type,omitempty"`
	DealName *string  `json:"dealName,omitempty"`
	Stage    *string  `json:"stage,omitempty"`
	Pipeline *string  `json:"pipeline,omitempty"` // HubSpot only
	Amount   *float64 `json:"amount,omitempty"`
	Owner    *string  `json:"owner,omitempty"` // read-only, derived by the provider
}
