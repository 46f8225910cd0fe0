package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types the engine recognizes. Anything else scores zero and leaves
// no trace in the log.
const (
	EventMoodLogged    = "mood_logged"
	EventGreatMood     = "great_mood"
	EventPostWritten   = "post_written"
	EventNoteWritten   = "note_written"
	EventEventAttended = "event_attended"
	EventCardSent      = "card_sent"

	EventMoodStreakMilestone    = "mood_streak_milestone"
	EventWritingStreakMilestone = "writing_streak_milestone"
	EventAchievementUnlocked    = "achievement_unlocked"
)

// Streak types
const (
	StreakTypeMood    = "mood"
	StreakTypeWriting = "writing"
)

// PointsLog is the append-only audit trail of every point-earning event.
// Rows are created once and never updated or deleted; the sum of PointsEarned
// per user is the source of truth for UserStats.TotalPoints.
type PointsLog struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	EventType    string `gorm:"index;not null" json:"event_type"`
	PointsEarned int64  `gorm:"not null" json:"points_earned"` // always >= 0

	// Optional reference back to the record that triggered the event
	// (a mood entry, a blog post, an event RSVP, ...).
	SourceType string `json:"source_type,omitempty"`
	SourceID   string `json:"source_id,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (l *PointsLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// StreakDay records that a streak was active on a calendar date. The unique
// tuple makes re-logging the same day a no-op at the storage level, and the
// rows double as the replay history for streak backfill.
type StreakDay struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"index;not null;index:idx_streak_day_unique,unique" json:"external_user_id"`
	StreakType     string    `gorm:"not null;index:idx_streak_day_unique,unique" json:"streak_type"`
	Date           time.Time `gorm:"type:date;not null;index:idx_streak_day_unique,unique" json:"date"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *StreakDay) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
