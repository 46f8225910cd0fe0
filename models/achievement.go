package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Achievement tiers, in ascending bonus order. TierNone means the
// achievement carries no bonus points of its own.
const (
	TierNone     = ""
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// Achievement categories. The evaluator scans the category inferred from the
// triggering event plus CategoryMilestone, which any action can unlock.
const (
	CategoryMood      = "mood"
	CategoryWriting   = "writing"
	CategorySocial    = "social"
	CategoryMilestone = "milestone"
)

// Criteria variant tags. Anything else evaluates to "not met".
const (
	CriteriaCount        = "count"
	CriteriaStreak       = "streak"
	CriteriaEvent        = "event"
	CriteriaTimeBased    = "time_based"
	CriteriaPerfectMonth = "perfect_month"
)

// Achievement: static catalog (seeded at startup, read-only at runtime)
type Achievement struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Key          string `gorm:"uniqueIndex;not null" json:"key"` // e.g., "first-entry", "week-streak"
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	IconURL      string `gorm:"type:text" json:"icon_url"`
	Category     string `gorm:"index;not null" json:"category"`
	Tier         string `gorm:"type:varchar(16);default:''" json:"tier"`
	PointsReward int64  `gorm:"default:0" json:"points_reward"`

	// CriteriaType selects the evaluator variant; CriteriaParams carries its
	// parameters, e.g. {"field": "total_moods_logged", "threshold": 30}
	// or {"streak_type": "mood", "days": 7} or {"hour_before": 7}.
	CriteriaType   string            `gorm:"not null" json:"criteria_type"`
	CriteriaParams datatypes.JSONMap `gorm:"type:jsonb" json:"criteria_params"`

	// Secret achievements are hidden from the available list until unlocked.
	Secret   bool `gorm:"default:false" json:"secret"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// UserAchievement: unlocked instance. The composite unique index makes
// unlocking idempotent — a racing second insert fails the constraint and is
// ignored. Rows are never updated or deleted once created.
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;index:idx_user_achievement_unique,unique" json:"external_user_id"`
	AchievementID  string    `gorm:"not null;index:idx_user_achievement_unique,unique" json:"achievement_id"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`

	// Progress value at unlock time, when the criteria had one (e.g. the
	// counter or streak length that crossed the threshold).
	Progress *int64 `json:"progress,omitempty"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == "" {
		ua.ID = uuid.NewString()
	}
	return nil
}
