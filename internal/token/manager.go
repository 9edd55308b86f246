package token

import (
	"context"
	"fmt"
	"time"

	"crm-bridge/internal/crm"
	"crm-bridge/internal/models"
)

// RefreshMargin is how far before the stored expiry a token is treated
// as stale. Tokens within this window are refreshed before use, which
// keeps us clear of provider-side clock skew. The constant is part of
// the observable contract and must not change.
const RefreshMargin = 2 * time.Minute

// ConnectionStore is the credential persistence the manager writes
// through. Satisfied by store.ConnectionStore.
type ConnectionStore interface {
	Upsert(ctx context.Context, conn *models.OAuthConnection) (*models.OAuthConnection, error)
	Find(ctx context.Context, userID, provider string) (*models.OAuthConnection, error)
}

// Manager owns the OAuth credential lifecycle: exchanging an
// authorization code for tokens, persisting them, and refreshing an
// access token transparently when it nears expiry.
//
// No locking is applied around refresh: two callers racing past the
// expiry threshold may both hit the provider's refresh endpoint. The
// store's last-writer-wins upsert means the final row holds whichever
// refresh finished last, and both in-flight tokens stay valid until
// the provider's own expiry, so the race costs a redundant call, not
// a failure.
type Manager struct {
	store ConnectionStore
	auth  map[crm.Provider]crm.AuthAdapter
	now   func() time.Time
}

// NewManager creates a token manager over the given store and auth
// adapters.
func NewManager(store ConnectionStore, adapters ...crm.AuthAdapter) *Manager {
	auth := make(map[crm.Provider]crm.AuthAdapter, len(adapters))
	for _, a := range adapters {
		auth[a.Provider()] = a
	}
	return &Manager{
		store: store,
		auth:  auth,
		now:   time.Now,
	}
}

// CompleteAuthorization exchanges an authorization code for tokens via
// the provider's auth adapter and persists the resulting connection.
// Re-authorization for an already-connected pair overwrites the stored
// tokens in place.
func (m *Manager) CompleteAuthorization(ctx context.Context, provider crm.Provider, code, userID string) (*models.OAuthConnection, error) {
	adapter, ok := m.auth[provider]
	if !ok {
		return nil, crm.ErrUnknownProvider
	}

	creds, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	conn := connectionFromCredentials(provider, userID, creds)
	return m.store.Upsert(ctx, conn)
}

// ResolveAccessToken returns a valid access token for (provider,
// userID), refreshing through the provider when the stored token is
// within RefreshMargin of expiry. A missing connection fails with
// crm.ErrNotConnected before any network call.
func (m *Manager) ResolveAccessToken(ctx context.Context, provider crm.Provider, userID string) (string, error) {
	adapter, ok := m.auth[provider]
	if !ok {
		return "", crm.ErrUnknownProvider
	}

	conn, err := m.store.Find(ctx, userID, provider.String())
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", fmt.Errorf("%w: %s", crm.ErrNotConnected, provider)
	}

	if conn.ExpiresAt.After(m.now().Add(RefreshMargin)) {
		return conn.AccessToken, nil
	}

	creds, err := adapter.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		return "", err
	}

	conn.AccessToken = creds.AccessToken
	conn.ExpiresAt = creds.ExpiresAt
	// Providers may not rotate the refresh token; keep the stored one
	// unless a new one arrived.
	if creds.RefreshToken != "" {
		conn.RefreshToken = creds.RefreshToken
	}
	if creds.InstanceURL != "" {
		conn.InstanceURL = &creds.InstanceURL
	}
	if creds.PortalID != "" {
		conn.PortalID = &creds.PortalID
	}

	if _, err := m.store.Upsert(ctx, conn); err != nil {
		return "", err
	}

	return conn.AccessToken, nil
}

// Connection returns the stored connection for (provider, userID)
// after ensuring its access token is fresh. Adapters that need more
// than the bare token (Salesforce reads its API base from the
// connection) use this instead of ResolveAccessToken.
func (m *Manager) Connection(ctx context.Context, provider crm.Provider, userID string) (*models.OAuthConnection, error) {
	if _, err := m.ResolveAccessToken(ctx, provider, userID); err != nil {
		return nil, err
	}
	conn, err := m.store.Find(ctx, userID, provider.String())
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: %s", crm.ErrNotConnected, provider)
	}
	return conn, nil
}

func connectionFromCredentials(provider crm.Provider, userID string, creds crm.Credentials) *models.OAuthConnection {
	conn := &models.OAuthConnection{
		UserID:       userID,
		Provider:     provider.String(),
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
	}
	if creds.InstanceURL != "" {
		conn.InstanceURL = &creds.InstanceURL
	}
	if creds.PortalID != "" {
		conn.PortalID = &creds.PortalID
	}
	return conn
}
