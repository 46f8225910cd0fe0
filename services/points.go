package services

// StreakMeta carries streak context on milestone bonus events.
type StreakMeta struct {
	StreakType string
	StreakDays int
}

// PointsForEvent computes the points an event is worth: configured base for
// the event type (0 for unrecognized types — not an error) plus a streak
// bonus when the event carries streak metadata.
func PointsForEvent(cfg Config, eventType string, streak *StreakMeta) int64 {
	base := cfg.EventPoints[eventType]
	var bonus int64
	if streak != nil && streak.StreakType != "" && streak.StreakDays > 0 {
		bonus = int64(streak.StreakDays) * cfg.StreakDailyBonus[streak.StreakType]
	}
	return base + bonus
}

// LevelFromPoints maps cumulative points to a level: the highest index i
// such that total >= thresholds[i], clamped to the configured max level.
// Monotonic in total — more points never lowers the level.
func LevelFromPoints(cfg Config, total int64) int {
	level := 1
	for i, threshold := range cfg.LevelThresholds {
		if total >= threshold {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// PointsToNextLevel returns how many points remain until the next level,
// or 0 when level is already the max. Callers recompute the level first, so
// the result is never negative.
func PointsToNextLevel(cfg Config, level int, total int64) int64 {
	if level >= cfg.MaxLevel() {
		return 0
	}
	remaining := cfg.LevelThresholds[level] - total
	if remaining < 0 {
		return 0
	}
	return remaining
}
