package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"crm-bridge/internal/models"
	"crm-bridge/internal/token"
)

// ConnectionAudit logs per-provider connection counts and how many
// tokens are inside the refresh margin. Read-only bookkeeping; it
// never triggers a refresh — refresh stays on the request path.
type ConnectionAudit struct {
	db *gorm.DB
}

// NewConnectionAudit creates a new connection audit job
func NewConnectionAudit(db *gorm.DB) *ConnectionAudit {
	return &ConnectionAudit{db: db}
}

type auditRow struct {
	Provider string
	Total    int64
}

// Run executes one audit pass
func (a *ConnectionAudit) Run() {
	var rows []auditRow
	err := a.db.Model(&models.OAuthConnection{}).
		Select("provider, COUNT(*) AS total").
		Group("provider").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Connection audit failed: %v", err)
		return
	}

	threshold := time.Now().UTC().Add(token.RefreshMargin)

	for _, row := range rows {
		var stale int64
		err := a.db.Model(&models.OAuthConnection{}).
			Where("provider = ? AND expires_at <= ?", row.Provider, threshold).
			Count(&stale).Error
		if err != nil {
			log.Printf("Connection audit failed for %s: %v", row.Provider, err)
			continue
		}

		log.Printf("Connections audit: provider=%s total=%d due_for_refresh=%d", row.Provider, row.Total, stale)
	}
}
