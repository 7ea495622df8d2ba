package jobs

import (
	"log"

	"case_law_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SessionCleanupSpec is the schedule of the expired session sweep
const SessionCleanupSpec = "@hourly"

// StartScheduler registers the background jobs and starts the scheduler.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(SessionCleanupSpec, func() { CleanupSessions(database) }); err != nil {
		return nil, err
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return c, nil
}

// CleanupSessions removes expired admin sessions
func CleanupSessions(database *gorm.DB) {
	if err := services.CleanupExpiredSessions(database); err != nil {
		log.Printf("[CRON] Session cleanup failed: %v", err)
	}
}
