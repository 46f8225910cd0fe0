package services

import (
	"time"

	"mood-journal-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakState is the per-(user, streak-type) state machine state.
type StreakState struct {
	Current int
	Longest int
	Last    *time.Time
}

// StreakChange is the outcome of advancing the state machine by one date.
type StreakChange struct {
	StreakState
	NewDay    bool // a day marker should be recorded
	Milestone int  // milestone day count crossed on this call, 0 if none
}

// DateOnly truncates a timestamp to its calendar date (UTC midnight), the
// granularity streaks operate on.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AdvanceStreak applies one dated log to a streak state:
//   - no prior date → start at 1
//   - next calendar day → continue, check milestones
//   - same day again → no-op (idempotent)
//   - anything else (gap or out-of-order date) → reset to 1, longest kept
//
// Incremental updates assume dates arrive in non-decreasing order; feeding a
// past date resets the streak. Backfill goes through RecalculateFromHistory
// over the recorded day markers instead.
func AdvanceStreak(cfg Config, streakType string, state StreakState, date time.Time) StreakChange {
	day := DateOnly(date)
	out := StreakChange{StreakState: state}

	if state.Last != nil && day.Equal(DateOnly(*state.Last)) {
		return out // already logged today
	}

	switch {
	case state.Last == nil:
		out.Current = 1
	case day.Equal(DateOnly(*state.Last).AddDate(0, 0, 1)):
		out.Current = state.Current + 1
		for _, m := range cfg.StreakMilestones[streakType] {
			if out.Current == m {
				out.Milestone = m
				break
			}
		}
	default:
		out.Current = 1
	}

	if out.Current > out.Longest {
		out.Longest = out.Current
	}
	out.Last = &day
	out.NewDay = true
	return out
}

// RecalculateFromHistory replays an ordered date sequence through the same
// transition rules and returns the rebuilt state. Given the full history in
// order it agrees exactly with incremental AdvanceStreak calls.
func RecalculateFromHistory(cfg Config, streakType string, dates []time.Time) StreakState {
	var state StreakState
	for _, d := range dates {
		state = AdvanceStreak(cfg, streakType, state, d).StreakState
	}
	return state
}

type StreakService struct {
	DB     *gorm.DB
	Config Config
}

func NewStreakService(db *gorm.DB, cfg Config) *StreakService {
	return &StreakService{DB: db, Config: cfg}
}

// UpdateWithin advances the streak on an already-locked stats row inside the
// caller's transaction: mutates the stats fields and records the day marker.
// Re-inserting an existing (user, type, date) marker is a no-op, not an error.
func (s *StreakService) UpdateWithin(tx *gorm.DB, stats *models.UserStats, streakType string, date time.Time) (StreakChange, error) {
	current, longest, last := stats.StreakFor(streakType)
	change := AdvanceStreak(s.Config, streakType, StreakState{Current: current, Longest: longest, Last: last}, date)

	if !change.NewDay {
		return change, nil
	}

	stats.SetStreak(streakType, change.Current, change.Longest, change.Last)

	marker := models.StreakDay{
		ExternalUserID: stats.ExternalUserID,
		StreakType:     streakType,
		Date:           *change.Last,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker).Error; err != nil {
		return change, err
	}
	return change, nil
}

// RebuildWithin recalculates one streak type from its recorded day markers
// (the authoritative backfill path) and writes the result onto the stats row.
func (s *StreakService) RebuildWithin(tx *gorm.DB, stats *models.UserStats, streakType string) error {
	var markers []models.StreakDay
	if err := tx.Where("external_user_id = ? AND streak_type = ?", stats.ExternalUserID, streakType).
		Order("date ASC").
		Find(&markers).Error; err != nil {
		return err
	}

	dates := make([]time.Time, 0, len(markers))
	for _, m := range markers {
		dates = append(dates, m.Date)
	}

	state := RecalculateFromHistory(s.Config, streakType, dates)
	stats.SetStreak(streakType, state.Current, state.Longest, state.Last)
	return nil
}

// MonthMarkers returns, for the calendar month containing the most recent
// marker of the given type, that latest date and how many days of the month
// have markers. Used by perfect-month criteria.
func (s *StreakService) MonthMarkers(tx *gorm.DB, externalUserID, streakType string) (*time.Time, int, error) {
	var latest models.StreakDay
	err := tx.Where("external_user_id = ? AND streak_type = ?", externalUserID, streakType).
		Order("date DESC").
		First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	day := DateOnly(latest.Date)
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var count int64
	if err := tx.Model(&models.StreakDay{}).
		Where("external_user_id = ? AND streak_type = ? AND date >= ? AND date < ?",
			externalUserID, streakType, monthStart, nextMonth).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}
	return &day, int(count), nil
}
