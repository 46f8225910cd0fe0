// workers/ledger_audit_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"mood-journal-system/models"

	"gorm.io/gorm"
)

// LedgerAuditor periodically checks the engine's core invariant: every
// user's total_points must equal the sum of points_earned over their ledger
// entries. The ledger is the source of truth, so drift means a bug or a
// manual edit; the auditor only reports, it never writes.
type LedgerAuditor struct {
	DB *gorm.DB
}

func NewLedgerAuditor(db *gorm.DB) *LedgerAuditor {
	return &LedgerAuditor{DB: db}
}

type ledgerSum struct {
	ExternalUserID string
	Total          int64
}

// AuditOnce compares stats totals against ledger sums for users active since
// the given time and returns how many mismatches were found.
func (a *LedgerAuditor) AuditOnce(since time.Time) (int, error) {
	var stats []models.UserStats
	if err := a.DB.Where("updated_at >= ?", since).Find(&stats).Error; err != nil {
		return 0, err
	}
	if len(stats) == 0 {
		return 0, nil
	}

	userIDs := make([]string, 0, len(stats))
	for _, st := range stats {
		userIDs = append(userIDs, st.ExternalUserID)
	}

	var sums []ledgerSum
	if err := a.DB.Model(&models.PointsLog{}).
		Select("external_user_id, COALESCE(SUM(points_earned), 0) AS total").
		Where("external_user_id IN ?", userIDs).
		Group("external_user_id").
		Scan(&sums).Error; err != nil {
		return 0, err
	}

	sumByUser := make(map[string]int64, len(sums))
	for _, s := range sums {
		sumByUser[s.ExternalUserID] = s.Total
	}

	mismatches := 0
	for _, st := range stats {
		if sumByUser[st.ExternalUserID] != st.TotalPoints {
			mismatches++
			log.Printf("⚠️ [AUDIT] Ledger drift for %s: stats=%d ledger=%d",
				st.ExternalUserID, st.TotalPoints, sumByUser[st.ExternalUserID])
		}
	}
	return mismatches, nil
}

// PollLedger runs the audit on a fixed interval until the context is done.
func PollLedger(ctx context.Context, auditor *LedgerAuditor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			since := time.Now().Add(-2 * interval)
			if n, err := auditor.AuditOnce(since); err != nil {
				log.Printf("❌ [AUDIT] Ledger audit failed: %v", err)
			} else if n > 0 {
				log.Printf("⚠️ [AUDIT] %d user(s) with ledger drift", n)
			}
		case <-ctx.Done():
			log.Println("⏹️ Ledger auditor stopped")
			return
		}
	}
}
