package hubspot

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"crm-bridge/internal/config"
	"crm-bridge/internal/crm"
)

const (
	defaultAuthorizeURL = "https://app.hubspot.com/oauth/authorize"
	defaultTokenURL     = "https://api.hubapi.com/oauth/v1/token"
)

// Auth is the HubSpot OAuth adapter. It builds the authorization URL
// and performs the code-exchange and refresh calls, normalizing
// HubSpot's token response (which carries an explicit expires_in)
// into crm.Credentials.
type Auth struct {
	cfg          config.HubSpotConfig
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

// NewAuth creates the HubSpot auth adapter
func NewAuth(cfg config.HubSpotConfig, opts ...AuthOption) *Auth {
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
	return crm.ProviderHubSpot
}

// AuthorizationURL builds the HubSpot consent URL. The state value
// round-trips through HubSpot verbatim and is trusted as the userId
// in the callback.
func (a *Auth) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", a.cfg.ClientID)
	params.Set("redirect_uri", a.cfg.RedirectURI)
	params.Set("scope", a.cfg.Scopes)
	params.Set("state", state)

	return a.authorizeURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ExchangeCode trades an authorization code for tokens
func (a *Auth) ExchangeCode(ctx context.Context, code string) (crm.Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("redirect_uri", a.cfg.RedirectURI)
	form.Set("code", code)

	return a.requestToken(ctx, "token exchange", form)
}

// Refresh trades a refresh token for a new access token
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
	if err := crm.PostForm(ctx, a.client, crm.ProviderHubSpot, op, a.tokenURL, form, &resp); err != nil {
		return crm.Credentials{}, err
	}
	if resp.AccessToken == "" {
		return crm.Credentials{}, &crm.MalformedResponseError{Provider: crm.ProviderHubSpot, Missing: "access_token"}
	}

	return crm.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    a.now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}
