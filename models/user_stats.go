package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStats tracks gamified progression for each user (denormalized for performance).
// Totals are derived state: they must always equal the sum over the points log,
// which is why they are only ever mutated together with a log append, in one
// transaction.
type UserStats struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	TotalPoints       int64 `json:"total_points" gorm:"default:0"`
	CurrentLevel      int   `json:"current_level" gorm:"default:1"`
	PointsToNextLevel int64 `json:"points_to_next_level" gorm:"default:0"`

	// Day streaks, one pair per tracked activity type
	CurrentMoodStreak    int        `json:"current_mood_streak" gorm:"default:0"`
	LongestMoodStreak    int        `json:"longest_mood_streak" gorm:"default:0"`
	LastMoodDate         *time.Time `json:"last_mood_date,omitempty"`
	CurrentWritingStreak int        `json:"current_writing_streak" gorm:"default:0"`
	LongestWritingStreak int        `json:"longest_writing_streak" gorm:"default:0"`
	LastWritingDate      *time.Time `json:"last_writing_date,omitempty"`

	// Activity counters
	TotalMoodsLogged    int64 `json:"total_moods_logged" gorm:"default:0"`
	TotalGreatMoods     int64 `json:"total_great_moods" gorm:"default:0"`
	TotalPostsWritten   int64 `json:"total_posts_written" gorm:"default:0"`
	TotalNotesWritten   int64 `json:"total_notes_written" gorm:"default:0"`
	TotalEventsAttended int64 `json:"total_events_attended" gorm:"default:0"`
	TotalCardsSent      int64 `json:"total_cards_sent" gorm:"default:0"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// BeforeCreate assigns the primary key; the DB is not relied on for UUIDs.
func (s *UserStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// StreakFor returns the streak triple for the given streak type.
// Unknown types read as an empty streak.
func (s *UserStats) StreakFor(streakType string) (current, longest int, last *time.Time) {
	switch streakType {
	case StreakTypeMood:
		return s.CurrentMoodStreak, s.LongestMoodStreak, s.LastMoodDate
	case StreakTypeWriting:
		return s.CurrentWritingStreak, s.LongestWritingStreak, s.LastWritingDate
	}
	return 0, 0, nil
}

// SetStreak writes the streak triple back for the given streak type.
func (s *UserStats) SetStreak(streakType string, current, longest int, last *time.Time) {
	switch streakType {
	case StreakTypeMood:
		s.CurrentMoodStreak = current
		s.LongestMoodStreak = longest
		s.LastMoodDate = last
	case StreakTypeWriting:
		s.CurrentWritingStreak = current
		s.LongestWritingStreak = longest
		s.LastWritingDate = last
	}
}

// CounterFor returns the named activity counter, used by count criteria.
// Unknown fields read as 0 so a mistyped criteria can never unlock anything.
func (s *UserStats) CounterFor(field string) int64 {
	switch field {
	case "total_moods_logged":
		return s.TotalMoodsLogged
	case "total_great_moods":
		return s.TotalGreatMoods
	case "total_posts_written":
		return s.TotalPostsWritten
	case "total_notes_written":
		return s.TotalNotesWritten
	case "total_events_attended":
		return s.TotalEventsAttended
	case "total_cards_sent":
		return s.TotalCardsSent
	case "total_points":
		return s.TotalPoints
	case "current_level":
		return int64(s.CurrentLevel)
	case "longest_mood_streak":
		return int64(s.LongestMoodStreak)
	case "longest_writing_streak":
		return int64(s.LongestWritingStreak)
	}
	return 0
}
