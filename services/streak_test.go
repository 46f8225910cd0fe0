package services

import (
	"testing"
	"time"

	"mood-journal-system/models"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	cfg := testConfig()

	var state StreakState
	start := day(2025, time.March, 1)
	for i := 0; i < 10; i++ {
		change := AdvanceStreak(cfg, models.StreakTypeMood, state, start.AddDate(0, 0, i))
		assert.True(t, change.NewDay)
		assert.Equal(t, i+1, change.Current)
		assert.GreaterOrEqual(t, change.Longest, change.Current)
		state = change.StreakState
	}
	assert.Equal(t, 10, state.Current)
	assert.Equal(t, 10, state.Longest)
}

func TestAdvanceStreakSameDayIsNoop(t *testing.T) {
	cfg := testConfig()

	d := day(2025, time.March, 5)
	state := AdvanceStreak(cfg, models.StreakTypeMood, StreakState{}, d).StreakState

	change := AdvanceStreak(cfg, models.StreakTypeMood, state, d)
	assert.False(t, change.NewDay)
	assert.Equal(t, 1, change.Current)
	assert.Equal(t, 1, change.Longest)

	// different time of the same calendar day is still the same day
	change = AdvanceStreak(cfg, models.StreakTypeMood, state, d.Add(23*time.Hour))
	assert.False(t, change.NewDay)
	assert.Equal(t, 1, change.Current)
}

func TestAdvanceStreakGapResets(t *testing.T) {
	cfg := testConfig()

	// build a 7-day streak
	var state StreakState
	start := day(2025, time.March, 1)
	for i := 0; i < 7; i++ {
		state = AdvanceStreak(cfg, models.StreakTypeMood, state, start.AddDate(0, 0, i)).StreakState
	}
	assert.Equal(t, 7, state.Current)

	// three days later: reset to 1, longest preserved
	change := AdvanceStreak(cfg, models.StreakTypeMood, state, start.AddDate(0, 0, 9))
	assert.True(t, change.NewDay)
	assert.Equal(t, 1, change.Current)
	assert.Equal(t, 7, change.Longest)

	// a date before the last logged one also resets
	change = AdvanceStreak(cfg, models.StreakTypeMood, state, start.AddDate(0, 0, 3))
	assert.Equal(t, 1, change.Current)
	assert.Equal(t, 7, change.Longest)
}

func TestAdvanceStreakMilestone(t *testing.T) {
	cfg := testConfig() // mood milestones at 7 and 30

	var state StreakState
	start := day(2025, time.March, 1)
	milestones := []int{}
	for i := 0; i < 10; i++ {
		change := AdvanceStreak(cfg, models.StreakTypeMood, state, start.AddDate(0, 0, i))
		if change.Milestone > 0 {
			milestones = append(milestones, change.Milestone)
		}
		state = change.StreakState
	}
	// exactly one milestone fired, on the 7th day
	assert.Equal(t, []int{7}, milestones)
}

func TestRecalculateMatchesIncremental(t *testing.T) {
	cfg := testConfig()

	histories := [][]time.Time{
		{},
		{day(2025, time.January, 1)},
		{ // run, duplicate day, gap, second run
			day(2025, time.January, 1),
			day(2025, time.January, 2),
			day(2025, time.January, 2),
			day(2025, time.January, 3),
			day(2025, time.January, 7),
			day(2025, time.January, 8),
		},
		{ // month boundary
			day(2025, time.January, 30),
			day(2025, time.January, 31),
			day(2025, time.February, 1),
			day(2025, time.February, 2),
		},
	}

	for _, dates := range histories {
		var incremental StreakState
		for _, d := range dates {
			incremental = AdvanceStreak(cfg, models.StreakTypeMood, incremental, d).StreakState
		}
		replayed := RecalculateFromHistory(cfg, models.StreakTypeMood, dates)
		assert.Equal(t, incremental.Current, replayed.Current)
		assert.Equal(t, incremental.Longest, replayed.Longest)
	}
}
