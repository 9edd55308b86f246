package salesforce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"crm-bridge/internal/crm"
	"crm-bridge/internal/models"
	"crm-bridge/internal/token"
)

const listPageSize = 10

// closeDateOffsetDays is applied to every created Opportunity.
// Salesforce requires a CloseDate on create; the gateway fixes it at
// issuance date + 30 days and does not expose it to callers.
const closeDateOffsetDays = 30

// Client is the Salesforce CRM adapter. The API base (instance URL) is
// per-connection, so every operation fetches the stored connection
// (with a fresh token) through the token manager.
type Client struct {
	tokens     *token.Manager
	apiVersion string
	client     *http.Client
	now        func() time.Time
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithClock overrides the clock used for CloseDate computation (tests)
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates the Salesforce CRM adapter
func NewClient(tokens *token.Manager, apiVersion string, opts ...ClientOption) *Client {
	c := &Client{
		tokens:     tokens,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider identifies this adapter
func (c *Client) Provider() crm.Provider {
	return crm.ProviderSalesforce
}

type relatedName struct {
	Name string `json:"Name"`
}

type contactRecord struct {
	ID        string       `json:"Id"`
	FirstName string       `json:"FirstName"`
	LastName  string       `json:"LastName"`
	Email     string       `json:"Email"`
	Account   *relatedName `json:"Account"`
	Owner     *relatedName `json:"Owner"`
}

type accountRecord struct {
	ID      string       `json:"Id"`
	Name    string       `json:"Name"`
	Website string       `json:"Website"`
	Owner   *relatedName `json:"Owner"`
}

type opportunityRecord struct {
	ID        string       `json:"Id"`
	Name      string       `json:"Name"`
	StageName string       `json:"StageName"`
	Amount    *float64     `json:"Amount"`
	Owner     *relatedName `json:"Owner"`
}

type createResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// ListContacts returns the ten most recently created contacts
func (c *Client) ListContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	soql := "SELECT Id, FirstName, LastName, Email, Account.Name, Owner.Name FROM Contact " +
		"ORDER BY CreatedDate DESC LIMIT 10"

	var result struct {
		Records []contactRecord `json:"records"`
	}
	if err := c.query(ctx, userID, soql, &result); err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(result.Records))
	for _, r := range result.Records {
		contacts = append(contacts, models.Contact{
			ID:        r.ID,
			CRM:       crm.ProviderSalesforce.String(),
			Type:      "contact",
			FirstName: optional(r.FirstName),
			LastName:  optional(r.LastName),
			Email:     optional(r.Email),
			Company:   relName(r.Account),
			Owner:     relName(r.Owner),
		})
	}
	return contacts, nil
}

// CreateContact creates a Contact and returns its Salesforce id
func (c *Client) CreateContact(ctx context.Context, userID string, contact *models.Contact) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "FirstName", contact.FirstName)
	setField(payload, "LastName", contact.LastName)
	setField(payload, "Email", contact.Email)

	return c.create(ctx, userID, "Contact", payload)
}

// UpdateContact patches only the supplied contact fields
func (c *Client) UpdateContact(ctx context.Context, userID string, contact *models.Contact) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "FirstName", contact.FirstName)
	setField(payload, "LastName", contact.LastName)
	setField(payload, "Email", contact.Email)

	return c.update(ctx, userID, "Contact", contact.ID, payload)
}

// ListCompanies returns the ten most recently created accounts
func (c *Client) ListCompanies(ctx context.Context, userID string) ([]models.Company, error) {
	soql := "SELECT Id, Name, Website, Owner.Name FROM Account ORDER BY CreatedDate DESC LIMIT 10"

	var result struct {
		Records []accountRecord `json:"records"`
	}
	if err := c.query(ctx, userID, soql, &result); err != nil {
		return nil, err
	}

	companies := make([]models.Company, 0, len(result.Records))
	for _, r := range result.Records {
		companies = append(companies, models.Company{
			ID:     r.ID,
			CRM:    crm.ProviderSalesforce.String(),
			Type:   "company",
			Name:   optional(r.Name),
			Domain: optional(r.Website),
			Owner:  relName(r.Owner),
		})
	}
	return companies, nil
}

// CreateCompany creates an Account and returns its Salesforce id. The
// normalized domain field maps to the Account's Website.
func (c *Client) CreateCompany(ctx context.Context, userID string, company *models.Company) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "Name", company.Name)
	setField(payload, "Website", company.Domain)

	return c.create(ctx, userID, "Account", payload)
}

// UpdateCompany patches only the supplied company fields
func (c *Client) UpdateCompany(ctx context.Context, userID string, company *models.Company) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "Name", company.Name)
	setField(payload, "Website", company.Domain)

	return c.update(ctx, userID, "Account", company.ID, payload)
}

// ListDeals returns the ten most recently created opportunities
func (c *Client) ListDeals(ctx context.Context, userID string) ([]models.Deal, error) {
	soql := "SELECT Id, Name, StageName, Amount, Owner.Name FROM Opportunity " +
		"ORDER BY CreatedDate DESC LIMIT 10"

	var result struct {
		Records []opportunityRecord `json:"records"`
	}
	if err := c.query(ctx, userID, soql, &result); err != nil {
		return nil, err
	}

	deals := make([]models.Deal, 0, len(result.Records))
	for _, r := range result.Records {
		deals = append(deals, models.Deal{
			ID:       r.ID,
			CRM:      crm.ProviderSalesforce.String(),
			Type:     "deal",
			DealName: optional(r.Name),
			Stage:    optional(r.StageName),
			Amount:   r.Amount,
			Owner:    relName(r.Owner),
		})
	}
	return deals, nil
}

// CreateDeal creates an Opportunity. StageName defaults to
// "Prospecting" when the caller omits a stage, and CloseDate is fixed
// at issuance date + 30 days.
func (c *Client) CreateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "Name", deal.DealName)
	if deal.Stage != nil && *deal.Stage != "" {
		payload["StageName"] = *deal.Stage
	} else {
		payload["StageName"] = "Prospecting"
	}
	if deal.Amount != nil {
		payload["Amount"] = *deal.Amount
	}
	payload["CloseDate"] = c.now().UTC().AddDate(0, 0, closeDateOffsetDays).Format("2006-01-02")

	return c.create(ctx, userID, "Opportunity", payload)
}

// UpdateDeal patches only the supplied deal fields
func (c *Client) UpdateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error) {
	payload := map[string]interface{}{}
	setField(payload, "Name", deal.DealName)
	setField(payload, "StageName", deal.Stage)
	if deal.Amount != nil {
		payload["Amount"] = *deal.Amount
	}

	return c.update(ctx, userID, "Opportunity", deal.ID, payload)
}

// connection resolves a connection with a fresh access token and a
// usable instance URL.
func (c *Client) connection(ctx context.Context, userID string) (*models.OAuthConnection, error) {
	conn, err := c.tokens.Connection(ctx, crm.ProviderSalesforce, userID)
	if err != nil {
		return nil, err
	}
	if conn.InstanceURL == nil || *conn.InstanceURL == "" {
		return nil, &crm.MalformedResponseError{Provider: crm.ProviderSalesforce, Missing: "instance_url"}
	}
	return conn, nil
}

func (c *Client) query(ctx context.Context, userID, soql string, out interface{}) error {
	conn, err := c.connection(ctx, userID)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/services/data/%s/query?q=%s",
		*conn.InstanceURL, c.apiVersion, url.QueryEscape(soql))

	return crm.DoJSON(ctx, c.client, crm.ProviderSalesforce, "query", http.MethodGet, endpoint, conn.AccessToken, nil, out)
}

func (c *Client) create(ctx context.Context, userID, object string, payload map[string]interface{}) (string, error) {
	conn, err := c.connection(ctx, userID)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/services/data/%s/sobjects/%s", *conn.InstanceURL, c.apiVersion, object)

	var resp createResponse
	if err := crm.DoJSON(ctx, c.client, crm.ProviderSalesforce, "create "+object, http.MethodPost, endpoint, conn.AccessToken, payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &crm.MalformedResponseError{Provider: crm.ProviderSalesforce, Missing: "id"}
	}
	return resp.ID, nil
}

func (c *Client) update(ctx context.Context, userID, object, id string, payload map[string]interface{}) (string, error) {
	if id == "" {
		return "", crm.ErrMissingID
	}
	if len(payload) == 0 {
		return "", crm.ErrNoFields
	}

	conn, err := c.connection(ctx, userID)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/services/data/%s/sobjects/%s/%s", *conn.InstanceURL, c.apiVersion, object, id)

	// Salesforce PATCH returns 204 with no body on success.
	if err := crm.DoJSON(ctx, c.client, crm.ProviderSalesforce, "update "+object, http.MethodPatch, endpoint, conn.AccessToken, payload, nil); err != nil {
		return "", err
	}
	return id, nil
}

func setField(payload map[string]interface{}, name string, value *string) {
	if value != nil && *value != "" {
		payload[name] = *value
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func relName(r *relatedName) *string {
	if r == nil || r.Name == "" {
		return nil
	}
	return &r.Name
}
