// services/scheduler.go
package services

import (
	"log"
	"time"

	"mood-journal-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartReconciliationScheduler runs a nightly pass over recently active
// users, rebuilding their streaks from the recorded day markers. The marker
// replay is the authoritative computation; the incremental path can drift
// when dates were ever logged out of order.
func (s *GamificationService) StartReconciliationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(func() {
			since := time.Now().AddDate(0, 0, -2)
			var stats []models.UserStats
			if err := s.DB.Where("updated_at >= ?", since).Find(&stats).Error; err != nil {
				log.Printf("[Reconcile] DB error: %v", err)
				return
			}

			for _, st := range stats {
				if _, err := s.RebuildStreaks(st.ExternalUserID); err != nil {
					log.Printf("[Reconcile] Failed to rebuild streaks for %s: %v", st.ExternalUserID, err)
				}
			}
			log.Printf("✅ [Reconcile] Nightly streak rebuild done (%d users)", len(stats))
		}),
	)
}
