package services

import (
	"testing"
	"time"

	"mood-journal-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func evalCtx(stats *models.UserStats, eventType string, now time.Time) EvalContext {
	return EvalContext{Stats: stats, EventType: eventType, Now: now}
}

func TestCountCriteria(t *testing.T) {
	ach := &models.Achievement{
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_moods_logged", "threshold": float64(30)},
	}
	crit := CompileCriteria(ach)

	met, progress := crit.Met(evalCtx(&models.UserStats{TotalMoodsLogged: 29}, "", time.Now()))
	assert.False(t, met)
	assert.Equal(t, int64(29), progress)

	met, progress = crit.Met(evalCtx(&models.UserStats{TotalMoodsLogged: 30}, "", time.Now()))
	assert.True(t, met)
	assert.Equal(t, int64(30), progress)

	// unknown counter field never unlocks
	bad := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: datatypes.JSONMap{"field": "total_unicorns", "threshold": float64(1)},
	})
	met, _ = bad.Met(evalCtx(&models.UserStats{TotalMoodsLogged: 100}, "", time.Now()))
	assert.False(t, met)
}

func TestStreakCriteria(t *testing.T) {
	crit := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaStreak,
		CriteriaParams: datatypes.JSONMap{"streak_type": "mood", "days": float64(7)},
	})

	met, _ := crit.Met(evalCtx(&models.UserStats{CurrentMoodStreak: 6}, "", time.Now()))
	assert.False(t, met)
	met, progress := crit.Met(evalCtx(&models.UserStats{CurrentMoodStreak: 8}, "", time.Now()))
	assert.True(t, met)
	assert.Equal(t, int64(8), progress)
}

func TestEventCriteria(t *testing.T) {
	crit := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaEvent,
		CriteriaParams: datatypes.JSONMap{"event_type": models.EventEventAttended},
	})

	met, _ := crit.Met(evalCtx(&models.UserStats{}, models.EventEventAttended, time.Now()))
	assert.True(t, met)
	met, _ = crit.Met(evalCtx(&models.UserStats{}, models.EventMoodLogged, time.Now()))
	assert.False(t, met)
}

func TestTimeBasedCriteria(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, time.June, 1, hour, 30, 0, 0, time.UTC)
	}

	early := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_before": float64(7)},
	})
	met, _ := early.Met(evalCtx(nil, "", at(6)))
	assert.True(t, met)
	met, _ = early.Met(evalCtx(nil, "", at(7))) // bound is strict
	assert.False(t, met)

	late := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_after": float64(23)},
	})
	met, _ = late.Met(evalCtx(nil, "", at(23))) // strictly after 23 only
	assert.False(t, met)

	later := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_after": float64(21)},
	})
	met, _ = later.Met(evalCtx(nil, "", at(23)))
	assert.True(t, met)

	// with both bounds set, only hour_before is enforced
	both := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: datatypes.JSONMap{"hour_before": float64(7), "hour_after": float64(22)},
	})
	met, _ = both.Met(evalCtx(nil, "", at(23)))
	assert.False(t, met)
	met, _ = both.Met(evalCtx(nil, "", at(5)))
	assert.True(t, met)
}

func TestPerfectMonthCriteria(t *testing.T) {
	crit := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaPerfectMonth,
		CriteriaParams: datatypes.JSONMap{"streak_type": "mood"},
	})

	lastOfApril := day(2025, time.April, 30)
	ctx := EvalContext{
		Stats: &models.UserStats{},
		Now:   time.Now(),
		MonthMarkers: func(string) (*time.Time, int) {
			return &lastOfApril, 30
		},
	}
	met, progress := crit.Met(ctx)
	assert.True(t, met)
	assert.Equal(t, int64(30), progress)

	// same count but latest marker is not the month's last day
	midMonth := day(2025, time.April, 29)
	ctx.MonthMarkers = func(string) (*time.Time, int) { return &midMonth, 29 }
	met, _ = crit.Met(ctx)
	assert.False(t, met)

	// full-length month requires all 31 days
	lastOfMay := day(2025, time.May, 31)
	ctx.MonthMarkers = func(string) (*time.Time, int) { return &lastOfMay, 30 }
	met, _ = crit.Met(ctx)
	assert.False(t, met)

	// no marker history at all
	ctx.MonthMarkers = func(string) (*time.Time, int) { return nil, 0 }
	met, _ = crit.Met(ctx)
	assert.False(t, met)
}

func TestCriteriaCompiledFromStoredParams(t *testing.T) {
	// Params read back from a jsonb column decode numbers as json.Number,
	// not float64; compiled criteria must accept both shapes.
	scan := func(raw string) datatypes.JSONMap {
		var params datatypes.JSONMap
		require.NoError(t, params.Scan([]byte(raw)))
		return params
	}

	count := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaCount,
		CriteriaParams: scan(`{"field": "total_moods_logged", "threshold": 3}`),
	})
	met, progress := count.Met(evalCtx(&models.UserStats{TotalMoodsLogged: 3}, "", time.Now()))
	assert.True(t, met)
	assert.Equal(t, int64(3), progress)

	streak := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaStreak,
		CriteriaParams: scan(`{"streak_type": "mood", "days": 7}`),
	})
	met, _ = streak.Met(evalCtx(&models.UserStats{CurrentMoodStreak: 7}, "", time.Now()))
	assert.True(t, met)

	early := CompileCriteria(&models.Achievement{
		CriteriaType:   models.CriteriaTimeBased,
		CriteriaParams: scan(`{"hour_before": 7}`),
	})
	met, _ = early.Met(evalCtx(nil, "", time.Date(2025, time.June, 1, 6, 30, 0, 0, time.UTC)))
	assert.True(t, met)
}

func TestMalformedCriteriaNeverMet(t *testing.T) {
	cases := []*models.Achievement{
		{CriteriaType: "unknown_variant"},
		{CriteriaType: models.CriteriaCount}, // missing params
		{CriteriaType: models.CriteriaCount, CriteriaParams: datatypes.JSONMap{"field": "total_moods_logged"}},
		{CriteriaType: models.CriteriaCount, CriteriaParams: datatypes.JSONMap{"field": "total_moods_logged", "threshold": "lots"}},
		{CriteriaType: models.CriteriaStreak, CriteriaParams: datatypes.JSONMap{"days": float64(0)}},
		{CriteriaType: models.CriteriaEvent, CriteriaParams: datatypes.JSONMap{}},
		{CriteriaType: models.CriteriaTimeBased, CriteriaParams: datatypes.JSONMap{}},
	}

	stats := &models.UserStats{TotalMoodsLogged: 10_000, CurrentMoodStreak: 500}
	for _, ach := range cases {
		met, _ := CompileCriteria(ach).Met(evalCtx(stats, models.EventMoodLogged, time.Now()))
		assert.False(t, met, "criteria %q should never be met", ach.CriteriaType)
	}
}
