package salesforce

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"crm-bridge/internal/config"
	"crm-bridge/internal/crm"
)

const (
	defaultAuthorizeURL = "https://login.salesforce.com/services/oauth2/authorize"
	defaultTokenURL     = "https://login.salesforce.com/services/oauth2/token"
)

// tokenLifetime is the assumed validity window for Salesforce access
// tokens. Salesforce's token response carries no expires_in field, so
// the gateway fixes a flat two-hour window from issuance. This is a
// deliberate approximation carried over from the system this gateway
// replaces, not a provider-documented lifetime.
const tokenLifetime = 2 * time.Hour

// Auth is the Salesforce OAuth adapter
type Auth struct {
	cfg          config.SalesforceConfig
	authorizeURL string
	tokenURL     string
	client       *http.Client
	now          func() time.Time
}

// AuthOption customizes an Auth adapter
type AuthOption func(*Auth)

// WithAuthEndpoints overrides the authorize and token URLs (tests)
func WithAuthEndpoints(authorizeURL, tokenURL string) AuthOption {
	return func(a *Auth) {
		a.authorizeURL = authorizeURL
		a.tokenURL = tokenURL
	}
}

// NewAuth creates the Salesforce auth adapter
func NewAuth(cfg config.SalesforceConfig, opts ...AuthOption) *Auth {
	a := &Auth{
		cfg:          cfg,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider identifies this adapter
func (a *Auth) Provider() crm.Provider {
	return crm.ProviderSalesforce
}

// AuthorizationURL builds the Salesforce consent URL. The state value
// round-trips through Salesforce verbatim and is trusted as the userId
// in the callback.
func (a *Auth) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", a.cfg.ClientID)
	params.Set("redirect_uri", a.cfg.RedirectURI)
	params.Set("state", state)

	return a.authorizeURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	InstanceURL  string `json:"instance_url"`
	ID           string `json:"id"`
	TokenType    string `json:"token_type"`
	IssuedAt     string `json:"issued_at"`
	Signature    string `json:"signature"`
}

// ExchangeCode trades an authorization code for tokens
func (a *Auth) ExchangeCode(ctx context.Context, code string) (crm.Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("redirect_uri", a.cfg.RedirectURI)

	return a.requestToken(ctx, "token exchange", form)
}

// Refresh trades a refresh token for a new access token. Salesforce
// does not rotate refresh tokens; the response normally omits
// refresh_token and the zero value tells the token manager to keep
// the stored one.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (crm.Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)

	return a.requestToken(ctx, "token refresh", form)
}

func (a *Auth) requestToken(ctx context.Context, op string, form url.Values) (crm.Credentials, error) {
	var resp tokenResponse
	if err := crm.PostForm(ctx, a.client, crm.ProviderSalesforce, op, a.tokenURL, form, &resp); err != nil {
		return crm.Credentials{}, err
	}
	if resp.AccessToken == "" {
		return crm.Credentials{}, &crm.MalformedResponseError{Provider: crm.ProviderSalesforce, Missing: "access_token"}
	}

	return crm.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    a.now().UTC().Add(tokenLifetime),
		InstanceURL:  resp.InstanceURL,
	}, nil
}
