package services

import (
	"testing"

	"mood-journal-system/models"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		EventPoints: map[string]int64{
			models.EventMoodLogged:  10,
			models.EventPostWritten: 50,
		},
		LevelThresholds: []int64{0, 100, 250, 500},
		StreakMilestones: map[string][]int{
			models.StreakTypeMood: {7, 30},
		},
		StreakDailyBonus: map[string]int64{
			models.StreakTypeMood:    2,
			models.StreakTypeWriting: 5,
		},
		TierBonuses: map[string]int64{
			models.TierBronze: 25,
			models.TierSilver: 75,
			models.TierGold:   200,
		},
		EventCategories: map[string]string{
			"mood_": models.CategoryMood,
			"post_": models.CategoryWriting,
		},
	}
}

func TestPointsForEvent(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, int64(10), PointsForEvent(cfg, models.EventMoodLogged, nil))
	assert.Equal(t, int64(50), PointsForEvent(cfg, models.EventPostWritten, nil))

	// unknown event types score zero, they are not an error
	assert.Equal(t, int64(0), PointsForEvent(cfg, "mystery_event", nil))

	// streak metadata adds days × per-day rate on top of the base
	bonus := PointsForEvent(cfg, models.EventMoodStreakMilestone, &StreakMeta{
		StreakType: models.StreakTypeMood,
		StreakDays: 7,
	})
	assert.Equal(t, int64(14), bonus) // base 0 + 7×2

	// incomplete metadata contributes nothing
	assert.Equal(t, int64(10), PointsForEvent(cfg, models.EventMoodLogged, &StreakMeta{StreakType: models.StreakTypeMood}))
	assert.Equal(t, int64(10), PointsForEvent(cfg, models.EventMoodLogged, &StreakMeta{StreakDays: 3}))
}

func TestLevelFromPoints(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		total int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2}, // exact boundary
		{249, 2},
		{250, 3},
		{500, 4},
		{1_000_000, 4}, // clamped to max level
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFromPoints(cfg, tc.total), "total=%d", tc.total)
	}

	// monotonic: more points never lowers the level
	prev := 0
	for total := int64(0); total <= 600; total += 7 {
		lvl := LevelFromPoints(cfg, total)
		assert.GreaterOrEqual(t, lvl, prev)
		prev = lvl
	}
}

func TestPointsToNextLevel(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, int64(100), PointsToNextLevel(cfg, 1, 0))
	assert.Equal(t, int64(145), PointsToNextLevel(cfg, 2, 105))
	assert.Equal(t, int64(0), PointsToNextLevel(cfg, 4, 9999)) // max level
	// transient overshoot before level recompute clamps to zero
	assert.Equal(t, int64(0), PointsToNextLevel(cfg, 1, 150))
}

func TestCategoryForEvent(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, models.CategoryMood, cfg.CategoryForEvent(models.EventMoodLogged))
	assert.Equal(t, models.CategoryMood, cfg.CategoryForEvent(models.EventMoodStreakMilestone))
	assert.Equal(t, models.CategoryWriting, cfg.CategoryForEvent(models.EventPostWritten))
	assert.Equal(t, "", cfg.CategoryForEvent(models.EventAchievementUnlocked))
	assert.Equal(t, "", cfg.CategoryForEvent("unrelated"))
}
