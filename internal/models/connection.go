package models

import "time"

// OAuthConnection is the persisted OAuth credential record for one
// (user, provider) pair. It is created on the first successful
// authorization-code exchange and mutated in place on every refresh
// and re-authorization; the core never deletes it.
type OAuthConnection struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"user_id" gorm:"not null;index:idx_connections_user_provider"`
	Provider     string    `json:"provider" gorm:"not null;index:idx_connections_user_provider"`
	AccessToken  string    `json:"-" gorm:"not null"`
	RefreshToken string    `json:"-" gorm:"not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	InstanceURL  *string   `json:"instance_url,omitempty"` // Salesforce API base; nil for HubSpot
	PortalID     *string   `json:"portal_id,omitempty"`    // HubSpot portal; nil for Salesforce
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for OAuthConnection
func (OAuthConnection) TableName() string {
	return "oauth_connections"
}
