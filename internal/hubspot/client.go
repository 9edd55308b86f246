package hubspot

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"crm-bridge/internal/crm"
	"crm-bridge/internal/models"
	"crm-bridge/internal/token"
)

const defaultAPIBaseURL = "https://api.hubapi.com"

const listPageSize = 10

// Client is the HubSpot CRM adapter. Every operation resolves a fresh
// access token through the token manager before touching the HubSpot
// API.
type Client struct {
	tokens  *token.Manager
	baseURL string
	client  *http.Client
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithAPIBaseURL overrides the HubSpot API base (tests)
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates the HubSpot CRM adapter
func NewClient(tokens *token.Manager, opts ...ClientOption) *Client {
	c := &Client{
		tokens:  tokens,
		baseURL: defaultAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider identifies this adapter
func (c *Client) Provider() crm.Provider {
	return crm.ProviderHubSpot
}

type objectResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type searchResponse struct {
	Results []objectResponse `json:"results"`
	Total   int              `json:"total"`
}

type searchRequest struct {
	Limit      int          `json:"limit"`
	Sorts      []searchSort `json:"sorts"`
	Properties []string     `json:"properties"`
}

type searchSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

type propertiesPayload struct {
	Properties map[string]string `json:"properties"`
}

// ListContacts returns the ten most recently created contacts
func (c *Client) ListContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	results, err := c.search(ctx, userID, "contacts", []string{"firstname", "lastname", "email", "company", "hubspot_owner_id"})
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(results))
	for _, obj := range results {
		contacts = append(contacts, models.Contact{
			ID:        obj.ID,
			CRM:       crm.ProviderHubSpot.String(),
			Type:      "contact",
			FirstName: prop(obj.Properties, "firstname"),
			LastName:  prop(obj.Properties, "lastname"),
			Email:     prop(obj.Properties, "email"),
			Company:   prop(obj.Properties, "company"),
			Owner:     prop(obj.Properties, "hubspot_owner_id"),
		})
	}
	return contacts, nil
}

// CreateContact creates a contact and returns its HubSpot id
func (c *Client) CreateContact(ctx context.Context, userID string, contact *models.Contact) (string, error) {
	props := map[string]string{}
	setProp(props, "firstname", contact.FirstName)
	setProp(props, "lastname", contact.LastName)
	setProp(props, "email", contact.Email)

	return c.create(ctx, userID, "contacts", props)
}

// UpdateContact patches only the supplied contact fields
func (c *Client) UpdateContact(ctx context.Context, userID string, contact *models.Contact) (string, error) {
	props := map[string]string{}
	setProp(props, "firstname", contact.FirstName)
	setProp(props, "lastname", contact.LastName)
	setProp(props, "email", contact.Email)

	return c.update(ctx, userID, "contacts", contact.ID, props)
}

// ListCompanies returns the ten most recently created companies
func (c *Client) ListCompanies(ctx context.Context, userID string) ([]models.Company, error) {
	results, err := c.search(ctx, userID, "companies", []string{"name", "domain", "hubspot_owner_id"})
	if err != nil {
		return nil, err
	}

	companies := make([]models.Company, 0, len(results))
	for _, obj := range results {
		companies = append(companies, models.Company{
			ID:     obj.ID,
			CRM:    crm.ProviderHubSpot.String(),
			Type:   "company",
			Name:   prop(obj.Properties, "name"),
			Domain: prop(obj.Properties, "domain"),
			Owner:  prop(obj.Properties, "hubspot_owner_id"),
		})
	}
	return companies, nil
}

// CreateCompany creates a company and returns its HubSpot id
func (c *Client) CreateCompany(ctx context.Context, userID string, company *models.Company) (string, error) {
	props := map[string]string{}
	setProp(props, "name", company.Name)
	setProp(props, "domain", company.Domain)

	return c.create(ctx, userID, "companies", props)
}

// UpdateCompany patches only the supplied company fields
func (c *Client) UpdateCompany(ctx context.Context, userID string, company *models.Company) (string, error) {
	props := map[string]string{}
	setProp(props, "name", company.Name)
	setProp(props, "domain", company.Domain)

	return c.update(ctx, userID, "companies", company.ID, props)
}

// ListDeals returns the ten most recently created deals. HubSpot hands
// amounts back as strings; unparsable or missing amounts map to a nil
// Amount, never zero.
func (c *Client) ListDeals(ctx context.Context, userID string) ([]models.Deal, error) {
	results, err := c.search(ctx, userID, "deals", []string{"dealname", "dealstage", "pipeline", "amount", "hubspot_owner_id"})
	if err != nil {
		return nil, err
	}

	deals := make([]models.Deal, 0, len(results))
	for _, obj := range results {
		deals = append(deals, models.Deal{
			ID:       obj.ID,
			CRM:      crm.ProviderHubSpot.String(),
			Type:     "deal",
			DealName: prop(obj.Properties, "dealname"),
			Stage:    prop(obj.Properties, "dealstage"),
			Pipeline: prop(obj.Properties, "pipeline"),
			Amount:   parseAmount(obj.Properties["amount"]),
			Owner:    prop(obj.Properties, "hubspot_owner_id"),
		})
	}
	return deals, nil
}

// CreateDeal creates a deal, defaulting the stage to HubSpot's initial
// pipeline stage when the caller omits one.
func (c *Client) CreateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error) {
	props := map[string]string{}
	setProp(props, "dealname", deal.DealName)
	setProp(props, "pipeline", deal.Pipeline)
	if deal.Stage != nil && *deal.Stage != "" {
		props["dealstage"] = *deal.Stage
	} else {
		props["dealstage"] = "appointmentscheduled"
	}
	if deal.Amount != nil {
		props["amount"] = strconv.FormatFloat(*deal.Amount, 'f', -1, 64)
	}

	return c.create(ctx, userID, "deals", props)
}

// UpdateDeal patches only the supplied deal fields
func (c *Client) UpdateDeal(ctx context.Context, userID string, deal *models.Deal) (string, error) {
	props := map[string]string{}
	setProp(props, "dealname", deal.DealName)
	setProp(props, "dealstage", deal.Stage)
	setProp(props, "pipeline", deal.Pipeline)
	if deal.Amount != nil {
		props["amount"] = strconv.FormatFloat(*deal.Amount, 'f', -1, 64)
	}

	return c.update(ctx, userID, "deals", deal.ID, props)
}

func (c *Client) search(ctx context.Context, userID, object string, properties []string) ([]objectResponse, error) {
	accessToken, err := c.tokens.ResolveAccessToken(ctx, crm.ProviderHubSpot, userID)
	if err != nil {
		return nil, err
	}

	payload := searchRequest{
		Limit:      listPageSize,
		Sorts:      []searchSort{{PropertyName: "createdate", Direction: "DESCENDING"}},
		Properties: properties,
	}

	var resp searchResponse
	endpoint := c.baseURL + "/crm/v3/objects/" + object + "/search"
	if err := crm.DoJSON(ctx, c.client, crm.ProviderHubSpot, "list "+object, http.MethodPost, endpoint, accessToken, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) create(ctx context.Context, userID, object string, props map[string]string) (string, error) {
	accessToken, err := c.tokens.ResolveAccessToken(ctx, crm.ProviderHubSpot, userID)
	if err != nil {
		return "", err
	}

	var resp objectResponse
	endpoint := c.baseURL + "/crm/v3/objects/" + object
	if err := crm.DoJSON(ctx, c.client, crm.ProviderHubSpot, "create "+object, http.MethodPost, endpoint, accessToken, propertiesPayload{Properties: props}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &crm.MalformedResponseError{Provider: crm.ProviderHubSpot, Missing: "id"}
	}
	return resp.ID, nil
}

func (c *Client) update(ctx context.Context, userID, object, id string, props map[string]string) (string, error) {
	if id == "" {
		return "", crm.ErrMissingID
	}
	if len(props) == 0 {
		return "", crm.ErrNoFields
	}

	accessToken, err := c.tokens.ResolveAccessToken(ctx, crm.ProviderHubSpot, userID)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/crm/v3/objects/" + object + "/" + id
	if err := crm.DoJSON(ctx, c.client, crm.ProviderHubSpot, "update "+object, http.MethodPatch, endpoint, accessToken, propertiesPayload{Properties: props}, nil); err != nil {
		return "", err
	}
	// HubSpot never reassigns identity on update.
	return id, nil
}

func setProp(props map[string]string, name string, value *string) {
	if value != nil && *value != "" {
		props[name] = *value
	}
}

func prop(props map[string]string, name string) *string {
	if v, ok := props[name]; ok && v != "" {
		return &v
	}
	return nil
}

func parseAmount(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
