package services

import (
	"errors"
	"log"
	"time"

	"mood-journal-system/models"

	"gorm.io/gorm"
)

type AchievementService struct {
	DB      *gorm.DB
	Config  Config
	Streaks *StreakService
}

func NewAchievementService(db *gorm.DB, cfg Config, streaks *StreakService) *AchievementService {
	return &AchievementService{DB: db, Config: cfg, Streaks: streaks}
}

// UnlockResult reports one achievement unlocked during a scan, with the tier
// bonus still to be credited. Bonuses are collected here and applied by the
// caller in a second pass so criteria in the same scan all see the same
// snapshot of the stats row.
type UnlockResult struct {
	Achievement models.Achievement
	Bonus       int64
}

// CheckAll evaluates the catalog slice relevant to the triggering event:
// the category inferred from the event type plus "milestone", which any
// action can unlock. Runs inside the caller's transaction against an
// already-locked stats row.
func (s *AchievementService) CheckAll(tx *gorm.DB, stats *models.UserStats, eventType string, now time.Time) ([]UnlockResult, error) {
	categories := []string{models.CategoryMilestone}
	if cat := s.Config.CategoryForEvent(eventType); cat != "" && cat != models.CategoryMilestone {
		categories = append(categories, cat)
	}

	var achievements []models.Achievement
	if err := tx.Where("is_active = ? AND category IN ?", true, categories).
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	return s.checkCandidates(tx, stats, achievements, eventType, now)
}

// CheckAllAchievements scans the full catalog regardless of trigger —
// the backfill/admin recomputation path.
func (s *AchievementService) CheckAllAchievements(tx *gorm.DB, stats *models.UserStats, now time.Time) ([]UnlockResult, error) {
	var achievements []models.Achievement
	if err := tx.Where("is_active = ?", true).Find(&achievements).Error; err != nil {
		return nil, err
	}
	return s.checkCandidates(tx, stats, achievements, "", now)
}

func (s *AchievementService) checkCandidates(tx *gorm.DB, stats *models.UserStats, achievements []models.Achievement, eventType string, now time.Time) ([]UnlockResult, error) {
	ctx := EvalContext{
		Stats:     stats,
		EventType: eventType,
		Now:       now,
		MonthMarkers: func(streakType string) (*time.Time, int) {
			last, count, err := s.Streaks.MonthMarkers(tx, stats.ExternalUserID, streakType)
			if err != nil {
				return nil, 0
			}
			return last, count
		},
	}

	var results []UnlockResult
	for i := range achievements {
		unlocked, err := s.checkAndUnlock(tx, stats, &achievements[i], ctx)
		if err != nil {
			return nil, err
		}
		if unlocked {
			results = append(results, UnlockResult{
				Achievement: achievements[i],
				Bonus:       s.Config.TierBonuses[achievements[i].Tier],
			})
		}
	}
	return results, nil
}

// checkAndUnlock is idempotent: an existing unlock short-circuits, and a
// racing concurrent insert losing on the (user, achievement) unique index is
// treated as already-unlocked, never as an error or a double bonus.
func (s *AchievementService) checkAndUnlock(tx *gorm.DB, stats *models.UserStats, ach *models.Achievement, ctx EvalContext) (bool, error) {
	var count int64
	if err := tx.Model(&models.UserAchievement{}).
		Where("external_user_id = ? AND achievement_id = ?", stats.ExternalUserID, ach.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	met, progress := CompileCriteria(ach).Met(ctx)
	if !met {
		return false, nil
	}

	unlock := models.UserAchievement{
		ExternalUserID: stats.ExternalUserID,
		AchievementID:  ach.ID,
		Progress:       &progress,
	}
	if err := tx.Create(&unlock).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil // concurrent caller got there first
		}
		return false, err
	}

	log.Printf("🏆 Achievement unlocked: %s → %s", ach.Key, stats.ExternalUserID)
	return true, nil
}

// ListForUser returns the user's unlocked achievements plus the still-locked
// visible ones, for presentation.
func (s *AchievementService) ListForUser(externalUserID string) (unlocked []models.UserAchievement, available []models.Achievement, err error) {
	if err = s.DB.Preload("Achievement").
		Where("external_user_id = ?", externalUserID).
		Order("unlocked_at DESC").
		Find(&unlocked).Error; err != nil {
		return nil, nil, err
	}

	unlockedIDs := make([]string, 0, len(unlocked))
	for _, ua := range unlocked {
		unlockedIDs = append(unlockedIDs, ua.AchievementID)
	}

	q := s.DB.Where("is_active = ? AND secret = ?", true, false)
	if len(unlockedIDs) > 0 {
		q = q.Where("id NOT IN ?", unlockedIDs)
	}
	if err = q.Order("category, tier").Find(&available).Error; err != nil {
		return nil, nil, err
	}
	return unlocked, available, nil
}
