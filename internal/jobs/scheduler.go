package jobs

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewScheduler creates a new job scheduler
func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		db:   db,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	audit := NewConnectionAudit(s.db)

	// Audit stored connections every hour at minute 5
	s.cron.AddFunc("5 * * * *", func() {
		audit.Run()
	})

	s.cron.Start()
	log.Println("Job scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Job scheduler stopped")
}
