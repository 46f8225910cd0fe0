package services

import (
	"encoding/json"
	"strconv"
	"time"

	"mood-journal-system/models"
)

// EvalContext is the stable snapshot criteria are evaluated against: the
// user's aggregate stats, the triggering event, and its wall-clock time.
// MonthMarkers lazily looks up the day-marker history a perfect-month
// criteria needs; it may be nil when no marker store is in play.
type EvalContext struct {
	Stats        *models.UserStats
	EventType    string
	Now          time.Time
	MonthMarkers func(streakType string) (last *time.Time, count int)
}

// Criteria is one compiled unlock condition. Met never errors: unmet,
// malformed, or unknown conditions all evaluate to false. The returned
// progress is the value that crossed the threshold, when the variant has one.
type Criteria interface {
	Met(ctx EvalContext) (met bool, progress int64)
}

// CompileCriteria resolves an achievement's stored criteria into its
// evaluator once, when the catalog is read, instead of re-interpreting tags
// on every check. Unrecognized or malformed definitions compile to a
// criteria that is never met.
func CompileCriteria(a *models.Achievement) Criteria {
	params := map[string]interface{}(a.CriteriaParams)
	switch a.CriteriaType {
	case models.CriteriaCount:
		field, ok := strParam(params, "field")
		threshold, ok2 := intParam(params, "threshold")
		if !ok || !ok2 || threshold <= 0 {
			return neverMet{}
		}
		return countCriteria{field: field, threshold: threshold}
	case models.CriteriaStreak:
		streakType, ok := strParam(params, "streak_type")
		days, ok2 := intParam(params, "days")
		if !ok || !ok2 || days <= 0 {
			return neverMet{}
		}
		return streakCriteria{streakType: streakType, days: int(days)}
	case models.CriteriaEvent:
		eventType, ok := strParam(params, "event_type")
		if !ok || eventType == "" {
			return neverMet{}
		}
		return eventCriteria{eventType: eventType}
	case models.CriteriaTimeBased:
		c := timeCriteria{}
		if v, ok := intParam(params, "hour_before"); ok {
			h := int(v)
			c.hourBefore = &h
		}
		if v, ok := intParam(params, "hour_after"); ok {
			h := int(v)
			c.hourAfter = &h
		}
		if c.hourBefore == nil && c.hourAfter == nil {
			return neverMet{}
		}
		return c
	case models.CriteriaPerfectMonth:
		streakType, ok := strParam(params, "streak_type")
		if !ok || streakType == "" {
			streakType = models.StreakTypeMood
		}
		return perfectMonthCriteria{streakType: streakType}
	}
	return neverMet{}
}

type neverMet struct{}

func (neverMet) Met(EvalContext) (bool, int64) { return false, 0 }

// countCriteria: a named counter on the aggregate stats reached a threshold.
type countCriteria struct {
	field     string
	threshold int64
}

func (c countCriteria) Met(ctx EvalContext) (bool, int64) {
	if ctx.Stats == nil {
		return false, 0
	}
	value := ctx.Stats.CounterFor(c.field)
	return value >= c.threshold, value
}

// streakCriteria: the current streak of a type reached a day count.
type streakCriteria struct {
	streakType string
	days       int
}

func (c streakCriteria) Met(ctx EvalContext) (bool, int64) {
	if ctx.Stats == nil {
		return false, 0
	}
	current, _, _ := ctx.Stats.StreakFor(c.streakType)
	return current >= c.days, int64(current)
}

// eventCriteria: the triggering event's type matches.
type eventCriteria struct {
	eventType string
}

func (c eventCriteria) Met(ctx EvalContext) (bool, int64) {
	return ctx.EventType == c.eventType, 0
}

// timeCriteria: the event's wall-clock hour falls before/after a bound.
// When both bounds are set only hour_before is enforced — the bounds were
// never combined into a range and existing catalogs rely on that.
type timeCriteria struct {
	hourBefore *int
	hourAfter  *int
}

func (c timeCriteria) Met(ctx EvalContext) (bool, int64) {
	hour := ctx.Now.Hour()
	if c.hourBefore != nil {
		return hour < *c.hourBefore, int64(hour)
	}
	if c.hourAfter != nil {
		return hour > *c.hourAfter, int64(hour)
	}
	return false, 0
}

// perfectMonthCriteria: the latest day marker of the type is the last day of
// its calendar month, and every day of that month has a marker.
type perfectMonthCriteria struct {
	streakType string
}

func (c perfectMonthCriteria) Met(ctx EvalContext) (bool, int64) {
	if ctx.MonthMarkers == nil {
		return false, 0
	}
	last, count := ctx.MonthMarkers(c.streakType)
	if last == nil {
		return false, 0
	}
	daysInMonth := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
	return last.Day() == daysInMonth && count == daysInMonth, int64(count)
}

func strParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intParam tolerates every numeric shape a criteria value can arrive in:
// jsonb columns decode numbers as json.Number, literal maps carry Go ints or
// floats, and hand-edited catalogs sometimes quote them.
func intParam(params map[string]interface{}, key string) (int64, bool) {
	switch v := params[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}
