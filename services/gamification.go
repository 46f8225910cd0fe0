package services

import (
	"fmt"
	"log"
	"time"

	"mood-journal-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxUnlockDepth bounds the unlock → bonus points → unlock feedback loop.
// Bonuses collected in one pass are applied together, then the catalog is
// re-scanned at most this many times, so termination is structural.
const maxUnlockDepth = 3

// Source is an optional back-reference from a ledger entry to the record
// that triggered it (a mood entry, a blog post, an event RSVP, ...).
type Source struct {
	Type string
	ID   string
}

type GamificationService struct {
	DB           *gorm.DB
	Config       Config
	Streaks      *StreakService
	Achievements *AchievementService
}

func NewGamificationService(db *gorm.DB, cfg Config) *GamificationService {
	streaks := NewStreakService(db, cfg)
	return &GamificationService{
		DB:           db,
		Config:       cfg,
		Streaks:      streaks,
		Achievements: NewAchievementService(db, cfg, streaks),
	}
}

// EnsureStatsRecord ensures a UserStats row exists (idempotent)
func (s *GamificationService) EnsureStatsRecord(externalUserID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = models.UserStats{
			ExternalUserID: externalUserID,
			CurrentLevel:   1,
		}
		stats.PointsToNextLevel = PointsToNextLevel(s.Config, 1, 0)
		if err := s.DB.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AwardPoints is the single entry point for "this user did X": it computes
// the points, and atomically updates the total, the activity counter, the
// level, the ledger, and any achievement unlocks the event causes. Either
// everything commits or nothing does. Returns the points computed for the
// event itself (achievement tier bonuses land on top, in the same
// transaction, with their own ledger entries).
func (s *GamificationService) AwardPoints(externalUserID, eventType string, source *Source, metadata map[string]interface{}) (int64, error) {
	points := PointsForEvent(s.Config, eventType, streakMetaFrom(metadata))
	if points == 0 {
		return 0, nil // unknown event type — no ledger entry, not an error
	}

	if _, err := s.EnsureStatsRecord(externalUserID); err != nil {
		return 0, err
	}

	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Row lock so concurrent awards for the same user serialize; without
		// it two transactions read the same total and the second Save
		// overwrites the first's increment.
		var stats models.UserStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).First(&stats).Error; err != nil {
			return fmt.Errorf("stats record not found for %s", externalUserID)
		}

		stats.TotalPoints += points
		bumpCounter(&stats, eventType)
		s.refreshLevel(&stats, now)

		entry := models.PointsLog{
			ExternalUserID: externalUserID,
			EventType:      eventType,
			PointsEarned:   points,
			Metadata:       datatypes.JSONMap(metadata),
		}
		if source != nil {
			entry.SourceType = source.Type
			entry.SourceID = source.ID
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		unlocks, err := s.Achievements.CheckAll(tx, &stats, eventType, now)
		if err != nil {
			return err
		}
		if err := s.applyUnlocks(tx, &stats, unlocks, now); err != nil {
			return err
		}

		if err := tx.Save(&stats).Error; err != nil {
			return err
		}

		log.Printf("🎮 Points awarded: %s → +%d (%s), total=%d, lvl=%d",
			externalUserID, points, eventType, stats.TotalPoints, stats.CurrentLevel)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return points, nil
}

// applyUnlocks credits tier bonuses collected during an evaluation pass,
// then re-scans for unlocks the new totals may have caused, up to
// maxUnlockDepth re-scans. Unlock rows were already created by the evaluator
// and every one of them gets its bonus here, including rows from the final
// re-scan: the depth cap stops further re-scanning, never crediting, so an
// unlock row cannot commit without its ledger entry.
func (s *GamificationService) applyUnlocks(tx *gorm.DB, stats *models.UserStats, unlocks []UnlockResult, now time.Time) error {
	for depth := 0; len(unlocks) > 0; depth++ {
		credited, err := s.creditUnlocks(tx, stats, unlocks)
		if err != nil {
			return err
		}
		if credited == 0 || depth >= maxUnlockDepth {
			return nil
		}
		s.refreshLevel(stats, now)

		next, err := s.Achievements.CheckAll(tx, stats, models.EventAchievementUnlocked, now)
		if err != nil {
			return err
		}
		unlocks = next
	}
	return nil
}

// creditUnlocks applies the tier bonuses for one batch of unlocks and writes
// their ledger entries. Returns the total points credited.
func (s *GamificationService) creditUnlocks(tx *gorm.DB, stats *models.UserStats, unlocks []UnlockResult) (int64, error) {
	var credited int64
	for _, u := range unlocks {
		if u.Bonus <= 0 {
			continue
		}
		stats.TotalPoints += u.Bonus
		credited += u.Bonus

		entry := models.PointsLog{
			ExternalUserID: stats.ExternalUserID,
			EventType:      models.EventAchievementUnlocked,
			PointsEarned:   u.Bonus,
			SourceType:     "achievement",
			SourceID:       u.Achievement.ID,
			Metadata: datatypes.JSONMap{
				"achievement_key": u.Achievement.Key,
				"tier":            u.Achievement.Tier,
			},
		}
		if err := tx.Create(&entry).Error; err != nil {
			return credited, err
		}
	}
	return credited, nil
}

// refreshLevel recomputes the level from the current total. Level changes in
// either direction (a decrease can follow an external correction) are applied
// and logged, never treated as errors.
func (s *GamificationService) refreshLevel(stats *models.UserStats, now time.Time) {
	newLevel := LevelFromPoints(s.Config, stats.TotalPoints)
	if newLevel != stats.CurrentLevel {
		log.Printf("⬆️ Level change: %s → L%d (was L%d)", stats.ExternalUserID, newLevel, stats.CurrentLevel)
		if newLevel > stats.CurrentLevel {
			t := now
			stats.LastLevelUpAt = &t
		}
		stats.CurrentLevel = newLevel
	}
	stats.PointsToNextLevel = PointsToNextLevel(s.Config, stats.CurrentLevel, stats.TotalPoints)
}

// UpdateMoodStreak advances the mood streak for a dated journal entry and
// returns the resulting streak length. A crossed milestone awards its bonus
// through AwardPoints after the streak transaction commits, so the streak
// update never recurses into the scoring path.
func (s *GamificationService) UpdateMoodStreak(externalUserID string, date time.Time) (int, error) {
	return s.updateStreak(externalUserID, models.StreakTypeMood, models.EventMoodStreakMilestone, date)
}

// UpdateWritingStreak is the writing-type counterpart of UpdateMoodStreak.
func (s *GamificationService) UpdateWritingStreak(externalUserID string, date time.Time) (int, error) {
	return s.updateStreak(externalUserID, models.StreakTypeWriting, models.EventWritingStreakMilestone, date)
}

func (s *GamificationService) updateStreak(externalUserID, streakType, milestoneEvent string, date time.Time) (int, error) {
	if _, err := s.EnsureStatsRecord(externalUserID); err != nil {
		return 0, err
	}

	var change StreakChange
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var stats models.UserStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).First(&stats).Error; err != nil {
			return fmt.Errorf("stats record not found for %s", externalUserID)
		}

		var err error
		change, err = s.Streaks.UpdateWithin(tx, &stats, streakType, date)
		if err != nil {
			return err
		}
		if !change.NewDay {
			return nil
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return 0, err
	}

	if change.Milestone > 0 {
		_, err := s.AwardPoints(externalUserID, milestoneEvent, nil, map[string]interface{}{
			"streak_type": streakType,
			"streak_days": change.Milestone,
		})
		if err != nil {
			return change.Current, err
		}
	}
	return change.Current, nil
}

// RebuildStreaks replays both streak types from their day markers — the
// backfill path for histories logged out of order.
func (s *GamificationService) RebuildStreaks(externalUserID string) (*models.UserStats, error) {
	if _, err := s.EnsureStatsRecord(externalUserID); err != nil {
		return nil, err
	}

	var rebuilt models.UserStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).First(&rebuilt).Error; err != nil {
			return err
		}
		for _, streakType := range []string{models.StreakTypeMood, models.StreakTypeWriting} {
			if err := s.Streaks.RebuildWithin(tx, &rebuilt, streakType); err != nil {
				return err
			}
		}
		return tx.Save(&rebuilt).Error
	})
	if err != nil {
		return nil, err
	}
	return &rebuilt, nil
}

// RecheckAchievements runs the unrestricted catalog scan for one user —
// the admin/backfill recomputation path.
func (s *GamificationService) RecheckAchievements(externalUserID string) (int, error) {
	if _, err := s.EnsureStatsRecord(externalUserID); err != nil {
		return 0, err
	}

	now := time.Now()
	unlocked := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var stats models.UserStats
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).First(&stats).Error; err != nil {
			return err
		}

		unlocks, err := s.Achievements.CheckAllAchievements(tx, &stats, now)
		if err != nil {
			return err
		}
		unlocked = len(unlocks)
		if err := s.applyUnlocks(tx, &stats, unlocks, now); err != nil {
			return err
		}
		return tx.Save(&stats).Error
	})
	if err != nil {
		return 0, err
	}
	return unlocked, nil
}

// Snapshot is the read-only view handed to presentation:
// aggregate stats, unlocked + still-available achievements, recent ledger.
type Snapshot struct {
	Stats         *models.UserStats        `json:"stats"`
	Unlocked      []models.UserAchievement `json:"unlocked"`
	Available     []models.Achievement     `json:"available"`
	RecentEntries []models.PointsLog       `json:"recent_entries"`
}

func (s *GamificationService) GetSnapshot(externalUserID string) (*Snapshot, error) {
	stats, err := s.EnsureStatsRecord(externalUserID)
	if err != nil {
		return nil, err
	}

	unlocked, available, err := s.Achievements.ListForUser(externalUserID)
	if err != nil {
		return nil, err
	}

	var recent []models.PointsLog
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(20).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	return &Snapshot{Stats: stats, Unlocked: unlocked, Available: available, RecentEntries: recent}, nil
}

// GetPointsHistory returns the paginated ledger for a user.
func (s *GamificationService) GetPointsHistory(externalUserID string, page, size int) ([]models.PointsLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	s.DB.Model(&models.PointsLog{}).Where("external_user_id = ?", externalUserID).Count(&total)

	var entries []models.PointsLog
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func streakMetaFrom(metadata map[string]interface{}) *StreakMeta {
	if metadata == nil {
		return nil
	}
	streakType, ok := metadata["streak_type"].(string)
	if !ok {
		return nil
	}
	days, ok := intParam(metadata, "streak_days")
	if !ok {
		return nil
	}
	return &StreakMeta{StreakType: streakType, StreakDays: int(days)}
}

func bumpCounter(stats *models.UserStats, eventType string) {
	switch eventType {
	case models.EventMoodLogged:
		stats.TotalMoodsLogged++
	case models.EventGreatMood:
		stats.TotalGreatMoods++
	case models.EventPostWritten:
		stats.TotalPostsWritten++
	case models.EventNoteWritten:
		stats.TotalNotesWritten++
	case models.EventEventAttended:
		stats.TotalEventsAttended++
	case models.EventCardSent:
		stats.TotalCardsSent++
	}
}
