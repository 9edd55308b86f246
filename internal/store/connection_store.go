package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"crm-bridge/internal/models"
)

// ConnectionStore is the persistence layer for OAuth connections.
// Pure data access: upsert and exact-match lookup, one row per
// (user_id, provider) pair.
type ConnectionStore struct {
	db *gorm.DB
}

// NewConnectionStore creates a connection store backed by db
func NewConnectionStore(db *gorm.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// Upsert inserts the connection when no row exists for its
// (UserID, Provider) pair, otherwise overwrites the token fields of
// the existing row and bumps updated_at, leaving id and created_at
// untouched. The token manager is the sole writer; uniqueness of the
// pair is enforced here by looking up before writing, not by a
// database constraint.
func (s *ConnectionStore) Upsert(ctx context.Context, conn *models.OAuthConnection) (*models.OAuthConnection, error) {
	existing, err := s.Find(ctx, conn.UserID, conn.Provider)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.db.WithContext(ctx).Create(conn).Error; err != nil {
			return nil, fmt.Errorf("failed to insert connection: %w", err)
		}
		return conn, nil
	}

	existing.AccessToken = conn.AccessToken
	existing.RefreshToken = conn.RefreshToken
	existing.ExpiresAt = conn.ExpiresAt
	existing.InstanceURL = conn.InstanceURL
	existing.PortalID = conn.PortalID

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return existing, nil
}

// Find returns the connection for (userID, provider), or nil when none
// exists. Absence is a normal outcome, not an error.
func (s *ConnectionStore) Find(ctx context.Context, userID, provider string) (*models.OAuthConnection, error) {
	var conn models.OAuthConnection
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up connection: %w", err)
	}
	return &conn, nil
}
