package services

import (
	"log"

	"mood-journal-system/models"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultAchievements is the seed catalog. Keys are slugged from names at
// seed time; criteria land in jsonb and are compiled when read back.
var DefaultAchievements = []models.Achievement{
	// mood
	{
		Name: "First Entry", Description: "Logged your very first mood",
		Category: models.CategoryMood, Tier: models.TierBronze,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_moods_logged", "threshold": 1},
	},
	{
		Name: "Mood Historian", Description: "Logged 30 moods",
		Category: models.CategoryMood, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_moods_logged", "threshold": 30},
	},
	{
		Name: "Sunny Hundred", Description: "Recorded 100 great moods",
		Category: models.CategoryMood, Tier: models.TierGold,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_great_moods", "threshold": 100},
	},
	{
		Name: "Week of Feelings", Description: "Kept a 7-day mood streak",
		Category: models.CategoryMood, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaStreak,
		CriteriaParams: datatypes.JSONMap{"streak_type": models.StreakTypeMood, "days": 7},
	},
	{
		Name: "Month of Feelings", Description: "Kept a 30-day mood streak",
		Category: models.CategoryMood, Tier: models.TierGold,
		CriteriaType:   models.CriteriaStreak,
		CriteriaParams: datatypes.JSONMap{"streak_type": models.StreakTypeMood, "days": 30},
	},
	{
		Name: "Perfect Month", Description: "Logged a mood every single day of a month",
		Category: models.CategoryMood, Tier: models.TierPlatinum,
		CriteriaType:   models.CriteriaPerfectMonth,
		CriteriaParams: datatypes.JSONMap{"streak_type": models.StreakTypeMood},
	},
	{
		Name: "Early Bird", Description: "Logged a mood before 7 in the morning",
		Category: models.CategoryMood, Tier: models.TierBronze, Secret: true,
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_before": 7},
	},
	{
		Name: "Night Owl", Description: "Logged a mood after 11 at night",
		Category: models.CategoryMood, Tier: models.TierBronze, Secret: true,
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_after": 23},
	},

	// writing
	{
		Name: "First Post", Description: "Published your first blog post",
		Category: models.CategoryWriting, Tier: models.TierBronze,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_posts_written", "threshold": 1},
	},
	{
		Name: "Prolific Writer", Description: "Published 25 blog posts",
		Category: models.CategoryWriting, Tier: models.TierGold,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_posts_written", "threshold": 25},
	},
	{
		Name: "Note Taker", Description: "Wrote 50 notes",
		Category: models.CategoryWriting, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_notes_written", "threshold": 50},
	},
	{
		Name: "Writing Habit", Description: "Kept a 7-day writing streak",
		Category: models.CategoryWriting, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaStreak,
		CriteriaParams: datatypes.JSONMap{"streak_type": models.StreakTypeWriting, "days": 7},
	},

	// social
	{
		Name: "Out and About", Description: "Attended your first event",
		Category: models.CategorySocial, Tier: models.TierBronze,
		CriteriaType:   models.CriteriaEvent,
		CriteriaParams: datatypes.JSONMap{"event_type": models.EventEventAttended},
	},
	{
		Name: "Social Butterfly", Description: "Attended 10 events",
		Category: models.CategorySocial, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_events_attended", "threshold": 10},
	},
	{
		Name: "Tet Spirit", Description: "Sent 5 Tet greeting cards",
		Category: models.CategorySocial, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_cards_sent", "threshold": 5},
	},

	// milestone — scanned on every action
	{
		Name: "Getting Started", Description: "Earned your first 100 points",
		Category: models.CategoryMilestone, Tier: models.TierBronze,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_points", "threshold": 100},
	},
	{
		Name: "Point Collector", Description: "Earned 1000 points",
		Category: models.CategoryMilestone, Tier: models.TierSilver,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_points", "threshold": 1000},
	},
	{
		Name: "Halfway There", Description: "Reached level 5",
		Category: models.CategoryMilestone, Tier: models.TierGold,
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "current_level", "threshold": 5},
	},
}

// SeedAchievements upserts the default catalog, keyed by slug. Existing rows
// keep their unlock history; definitions are refreshed in place. The listed
// points reward mirrors the tier bonus schedule so the catalog can be shown
// without consulting the config.
func SeedAchievements(db *gorm.DB, cfg Config) error {
	for i := range DefaultAchievements {
		a := DefaultAchievements[i]
		if a.Key == "" {
			a.Key = slug.Make(a.Name)
		}
		if a.PointsReward == 0 {
			a.PointsReward = cfg.TierBonuses[a.Tier]
		}
		a.IsActive = true
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "tier", "points_reward",
				"criteria_type", "criteria_params", "secret", "is_active",
			}),
		}).Create(&a).Error; err != nil {
			return err
		}
	}
	log.Printf("✅ Achievement catalog seeded (%d definitions)", len(DefaultAchievements))
	return nil
}
