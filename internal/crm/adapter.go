package crm

import (
	"context"
	"time"

	"crm-bridge/internal/models"
)

// Credentials is the normalized token material handed to the token
// manager. Auth adapters translate their provider's raw token response
// into this shape immediately after the HTTP call, so nothing above
// them branches on provider identity.
type Credentials struct {
	AccessToken  string
	RefreshToken string    // empty on refresh when the provider did not rotate it
	ExpiresAt    time.Time // absolute UTC expiry computed by the adapter
	InstanceURL  string    // Salesforce API base; empty for HubSpot
	PortalID     string    // HubSpot portal id; empty for Salesforce
}

// AuthAdapter is the provider-specific OAuth capability: building the
// authorization URL and performing the code-exchange and refresh calls.
//
// The state string passed to AuthorizationURL round-trips through the
// provider verbatim and doubles as the userId for the resulting
// connection. That is a trust boundary inherited from the system this
// gateway fronts, not a security mechanism; it is deliberately left
// unsigned.
type AuthAdapter interface {
	Provider() Provider
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (Credentials, error)
}

// Adapter is the uniform CRUD contract both CRM backends satisfy.
// Every operation resolves a valid access token first and fails with
// ErrNotConnected before any provider call when none exists. List
// operations return a fixed window of 10 records ordered by
// provider-native creation descending; callers needing more must page
// inside an adapter implementation, a capability intentionally not
// exposed here.
type Adapter interface {
	Provider() Provider

	ListContacts(ctx context.Context, userID string) ([]models.Contact, error)
	CreateContact(ctx context.Context, userID string, contact *models.Contact) (string, error)
	UpdateContact(ctx context.Context, userID string, contact *models.Contact) (string, error)

	ListCompanies(ctx context.Context, userID string) ([]models.Company, error)
	CreateCompany(ctx context.Context, userID string, company *models.Company) (string, error)
	UpdateCompany(ctx context.Context, userID string, company *models.Company) (string, error)

	ListDeals(ctx context.Context, userID string) ([]models.Deal, error)
	CreateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error)
	UpdateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error)
}
