package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-bridge/internal/config"
	"crm-bridge/internal/crm"
	"crm-bridge/internal/models"
	"crm-bridge/internal/token"
)

// fakeAdapter is a recording crm.Adapter. Each operation stores the
// userID it was called with and returns the configured result.
type fakeAdapter struct {
	provider crm.Provider

	lastUserID string
	calls      int

	contacts  []models.Contact
	companies []models.Company
	deals     []models.Deal
	createdID string
	err       error
}

func (f *fakeAdapter) Provider() crm.Provider { return f.provider }

func (f *fakeAdapter) record(userID string) {
	f.lastUserID = userID
	f.calls++
}

func (f *fakeAdapter) ListContacts(_ context.Context, userID string) ([]models.Contact, error) {
	f.record(userID)
	return f.contacts, f.err
}

func (f *fakeAdapter) CreateContact(_ context.Context, userID string, _ *models.Contact) (string, error) {
	f.record(userID)
	return f.createdID, f.err
}

func (f *fakeAdapter) UpdateContact(_ context.Context, userID string, contact *models.Contact) (string, error) {
	f.record(userID)
	if contact.ID == "" {
		return "", crm.ErrMissingID
	}
	return contact.ID, f.err
}

func (f *fakeAdapter) ListCompanies(_ context.Context, userID string) ([]models.Company, error) {
	f.record(userID)
	return f.companies, f.err
}

func (f *fakeAdapter) CreateCompany(_ context.Context, userID string, _ *models.Company) (string, error) {
	f.record(userID)
	return f.createdID, f.err
}

func (f *fakeAdapter) UpdateCompany(_ context.Context, userID string, company *models.Company) (string, error) {
	f.record(userID)
	if company.ID == "" {
		return "", crm.ErrMissingID
	}
	return company.ID, f.err
}

func (f *fakeAdapter) ListDeals(_ context.Context, userID string) ([]models.Deal, error) {
	f.record(userID)
	return f.deals, f.err
}

func (f *fakeAdapter) CreateDeal(_ context.Context, userID string, _ *models.Deal) (string, error) {
	f.record(userID)
	return f.createdID, f.err
}

func (f *fakeAdapter) UpdateDeal(_ context.Context, userID string, deal *models.Deal) (string, error) {
	f.record(userID)
	if deal.ID == "" {
		return "", crm.ErrMissingID
	}
	return deal.ID, f.err
}

// fakeAuth is a stub crm.AuthAdapter for the login and callback routes.
type fakeAuth struct {
	provider crm.Provider
	loginURL string
	creds    crm.Credentials
	err      error
}

func (f *fakeAuth) Provider() crm.Provider { return f.provider }

func (f *fakeAuth) AuthorizationURL(state string) string {
	return f.loginURL + "?state=" + state
}

func (f *fakeAuth) ExchangeCode(context.Context, string) (crm.Credentials, error) {
	return f.creds, f.err
}

func (f *fakeAuth) Refresh(context.Context, string) (crm.Credentials, error) {
	return f.creds, f.err
}

// memStore keeps connections in a map keyed by user+provider.
type memStore struct {
	rows map[string]*models.OAuthConnection
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*models.OAuthConnection)}
}

func (s *memStore) Upsert(_ context.Context, conn *models.OAuthConnection) (*models.OAuthConnection, error) {
	s.rows[conn.UserID+"/"+conn.Provider] = conn
	return conn, nil
}

func (s *memStore) Find(_ context.Context, userID, provider string) (*models.OAuthConnection, error) {
	return s.rows[userID+"/"+provider], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:        8080,
		Environment: "development",
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

func newTestRouter(t *testing.T, adapters []crm.Adapter, auths []crm.AuthAdapter, store token.ConnectionStore) http.Handler {
	t.Helper()

	registry := crm.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	for _, a := range auths {
		registry.RegisterAuth(a)
	}

	tokens := token.NewManager(store, auths...)
	return NewRouter(testConfig(), registry, tokens)
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, nil, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, nil, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestPushContactDispatchesOnBodyTag(t *testing.T) {
	hubspot := &fakeAdapter{provider: crm.ProviderHubSpot, createdID: "hs-101"}
	salesforce := &fakeAdapter{provider: crm.ProviderSalesforce, createdID: "sf-101"}
	router := newTestRouter(t, []crm.Adapter{hubspot, salesforce}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodPost, "/push/contact?userId=u-42", map[string]string{
		"crm":       "hubspot",
		"firstName": "Grace",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hubspot", resp["crm"])
	assert.Equal(t, "hs-101", resp["contactId"])

	assert.Equal(t, 1, hubspot.calls)
	assert.Equal(t, "u-42", hubspot.lastUserID)
	assert.Zero(t, salesforce.calls)
}

func TestPushContactTagIsCaseInsensitive(t *testing.T) {
	hubspot := &fakeAdapter{provider: crm.ProviderHubSpot, createdID: "hs-102"}
	router := newTestRouter(t, []crm.Adapter{hubspot}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodPost, "/push/contact", map[string]string{
		"crm":       "HubSpot",
		"firstName": "Grace",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, hubspot.calls)
}

func TestPushContactUnknownTag(t *testing.T) {
	router := newTestRouter(t, nil, nil, newMemStore())

	rec := doJSON(t, router, http.MethodPost, "/push/contact", map[string]string{
		"crm": "pipedrive",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDealWithoutID(t *testing.T) {
	hubspot := &fakeAdapter{provider: crm.ProviderHubSpot}
	router := newTestRouter(t, []crm.Adapter{hubspot}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodPut, "/push/deal", map[string]string{
		"crm":   "hubspot",
		"stage": "closedwon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListContactsDefaultsCaller(t *testing.T) {
	email := "grace@example.com"
	salesforce := &fakeAdapter{
		provider: crm.ProviderSalesforce,
		contacts: []models.Contact{{ID: "003A", CRM: "salesforce", Email: &email}},
	}
	router := newTestRouter(t, []crm.Adapter{salesforce}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/crm/salesforce/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test-user", salesforce.lastUserID)

	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "003A", contacts[0].ID)
}

func TestListDealsUnknownProvider(t *testing.T) {
	router := newTestRouter(t, nil, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/crm/zoho/deals", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNotConnectedIsCallerError(t *testing.T) {
	hubspot := &fakeAdapter{provider: crm.ProviderHubSpot, err: crm.ErrNotConnected}
	router := newTestRouter(t, []crm.Adapter{hubspot}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/crm/hubspot/deals", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderFailureIsBadGateway(t *testing.T) {
	hubspot := &fakeAdapter{
		provider: crm.ProviderHubSpot,
		err: &crm.RequestError{
			Provider:   crm.ProviderHubSpot,
			Operation:  "list contacts",
			StatusCode: http.StatusInternalServerError,
		},
	}
	router := newTestRouter(t, []crm.Adapter{hubspot}, nil, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/crm/hubspot/contacts", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLoginRedirectCarriesCaller(t *testing.T) {
	auth := &fakeAuth{provider: crm.ProviderHubSpot, loginURL: "https://app.hubspot.com/oauth/authorize"}
	router := newTestRouter(t, nil, []crm.AuthAdapter{auth}, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/auth/hubspot/login?userId=u-7", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.hubspot.com/oauth/authorize?state=u-7", rec.Header().Get("Location"))
}

func TestCallbackRequiresCodeAndState(t *testing.T) {
	auth := &fakeAuth{provider: crm.ProviderHubSpot}
	router := newTestRouter(t, nil, []crm.AuthAdapter{auth}, newMemStore())

	rec := doJSON(t, router, http.MethodGet, "/auth/hubspot/callback?code=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/auth/hubspot/callback?state=u-7", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackPersistsConnection(t *testing.T) {
	store := newMemStore()
	instanceURL := "https://na1.salesforce.com"
	auth := &fakeAuth{
		provider: crm.ProviderSalesforce,
		creds: crm.Credentials{
			AccessToken:  "sf-access",
			RefreshToken: "sf-refresh",
			ExpiresAt:    time.Now().UTC().Add(2 * time.Hour),
			InstanceURL:  instanceURL,
		},
	}
	router := newTestRouter(t, nil, []crm.AuthAdapter{auth}, store)

	rec := doJSON(t, router, http.MethodGet, "/auth/salesforce/callback?code=abc&state=u-7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "salesforce", resp["crm"])
	assert.Equal(t, "u-7", resp["userId"])
	assert.Equal(t, instanceURL, resp["instanceUrl"])

	conn, err := store.Find(context.Background(), "u-7", "salesforce")
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, "sf-access", conn.AccessToken)
}
