package services

import "mood-journal-system/models"

// Config holds every tunable rule table of the gamification engine. It is
// built once at startup and passed into service constructors; the engine
// never reads rule tables from globals, so tests can swap in small tables.
type Config struct {
	// EventPoints: base points per recognized event type. Unknown event
	// types score zero and are not an error.
	EventPoints map[string]int64

	// LevelThresholds: ascending cumulative-points boundaries.
	// Index 0 is level 1's requirement and must be 0. Max level is
	// len(LevelThresholds).
	LevelThresholds []int64

	// StreakMilestones: day counts per streak type at which a one-off
	// milestone bonus event is emitted.
	StreakMilestones map[string][]int

	// StreakDailyBonus: per-day bonus rate used when a milestone bonus is
	// awarded (bonus = streak_days × rate).
	StreakDailyBonus map[string]int64

	// TierBonuses: fixed bonus points credited when an achievement of the
	// given tier unlocks.
	TierBonuses map[string]int64

	// EventCategories: event-type prefix → achievement category, used to
	// narrow the evaluator's scan per event.
	EventCategories map[string]string
}

// MaxLevel returns the highest reachable level.
func (c Config) MaxLevel() int {
	return len(c.LevelThresholds)
}

// CategoryForEvent maps an event type to the achievement category it can
// unlock, by longest matching prefix. Empty means only the always-scanned
// milestone category applies.
func (c Config) CategoryForEvent(eventType string) string {
	best := ""
	bestLen := 0
	for prefix, cat := range c.EventCategories {
		if len(prefix) > bestLen && len(eventType) >= len(prefix) && eventType[:len(prefix)] == prefix {
			best = cat
			bestLen = len(prefix)
		}
	}
	return best
}

// DefaultConfig mirrors the production rule tables (tunable via env later).
var DefaultConfig = Config{
	EventPoints: map[string]int64{
		models.EventMoodLogged:    10,
		models.EventGreatMood:     5,  // on top of mood_logged
		models.EventPostWritten:   50,
		models.EventNoteWritten:   20,
		models.EventEventAttended: 30,
		models.EventCardSent:      15,
	},
	LevelThresholds: []int64{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000},
	StreakMilestones: map[string][]int{
		models.StreakTypeMood:    {3, 7, 14, 30, 60, 100, 365},
		models.StreakTypeWriting: {3, 7, 14, 30},
	},
	StreakDailyBonus: map[string]int64{
		models.StreakTypeMood:    2,
		models.StreakTypeWriting: 5,
	},
	TierBonuses: map[string]int64{
		models.TierBronze:   25,
		models.TierSilver:   75,
		models.TierGold:     200,
		models.TierPlatinum: 500,
	},
	EventCategories: map[string]string{
		"mood_":    models.CategoryMood,
		"great_":   models.CategoryMood,
		"post_":    models.CategoryWriting,
		"note_":    models.CategoryWriting,
		"writing_": models.CategoryWriting,
		"event_":   models.CategorySocial,
		"card_":    models.CategorySocial,
	},
}
