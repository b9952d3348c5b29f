package engine

import (
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// ValidateRule checks a recurrence rule at construction time, before it is
// persisted or expanded. A nil rule is valid and means a single occurrence.
func ValidateRule(rule *models.RecurrenceRule) error {
	if rule == nil {
		return nil
	}
	switch rule.Kind {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	case models.RecurrenceCustom:
		switch rule.IntervalUnit {
		case models.UnitDays, models.UnitWeeks, models.UnitMonths:
		default:
			return validationf("interval_unit", "must be DAYS, WEEKS or MONTHS for CUSTOM rules, got %q", rule.IntervalUnit)
		}
	default:
		return validationf("kind", "unknown recurrence kind %q", rule.Kind)
	}

	if rule.Kind != models.RecurrenceNone && rule.Interval < 1 {
		return validationf("interval", "must be >= 1, got %d", rule.Interval)
	}

	switch rule.EndCondition {
	case models.EndNever:
		if rule.EndDate != nil || rule.OccurrenceCount != 0 {
			return validationf("end_condition", "NEVER must not carry end_date or occurrence_count")
		}
	case models.EndUntilDate:
		if rule.EndDate == nil {
			return validationf("end_date", "required when end_condition is UNTIL_DATE")
		}
		if rule.OccurrenceCount != 0 {
			return validationf("occurrence_count", "must not be set when end_condition is UNTIL_DATE")
		}
	case models.EndAfterCount:
		if rule.OccurrenceCount < 1 {
			return validationf("occurrence_count", "must be >= 1 when end_condition is AFTER_COUNT, got %d", rule.OccurrenceCount)
		}
		if rule.EndDate != nil {
			return validationf("end_date", "must not be set when end_condition is AFTER_COUNT")
		}
	default:
		return validationf("end_condition", "unknown end condition %q", rule.EndCondition)
	}
	return nil
}

// Expand turns a recurrence rule and anchor date into the ordered sequence
// of scheduled dates. Pure: the same inputs always yield the same sequence.
// The rule must already be validated. A nil rule or kind NONE yields exactly
// the anchor date. For AFTER_COUNT rules the horizon does not apply; the
// sequence always holds exactly OccurrenceCount dates.
func Expand(rule *models.RecurrenceRule, anchor, horizon time.Time) []time.Time {
	anchor = dateOnly(anchor)
	horizon = dateOnly(horizon)

	if rule == nil || rule.Kind == models.RecurrenceNone {
		return []time.Time{anchor}
	}

	limit := horizon
	byCount := rule.EndCondition == models.EndAfterCount
	if rule.EndCondition == models.EndUntilDate {
		end := dateOnly(*rule.EndDate)
		if end.Before(limit) {
			limit = end
		}
	}

	var dates []time.Time
	for k := 0; ; k++ {
		d := stepDate(rule, anchor, k)
		if byCount {
			if len(dates) == rule.OccurrenceCount {
				break
			}
		} else if d.After(limit) {
			break
		}
		// Month clamping can in theory land two steps on the same day;
		// the sequence stays strictly increasing and deduplicated.
		if len(dates) == 0 || d.After(dates[len(dates)-1]) {
			dates = append(dates, d)
		}
	}
	return dates
}

// stepDate computes the k-th occurrence date from the original anchor, so
// month clamping never accumulates drift across steps.
func stepDate(rule *models.RecurrenceRule, anchor time.Time, k int) time.Time {
	n := k * rule.Interval
	switch rule.Kind {
	case models.RecurrenceDaily:
		return anchor.AddDate(0, 0, n)
	case models.RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case models.RecurrenceMonthly:
		return addMonthsClamped(anchor, n)
	case models.RecurrenceCustom:
		switch rule.IntervalUnit {
		case models.UnitDays:
			return anchor.AddDate(0, 0, n)
		case models.UnitWeeks:
			return anchor.AddDate(0, 0, 7*n)
		default:
			return addMonthsClamped(anchor, n)
		}
	}
	return anchor
}

// addMonthsClamped adds calendar months, clamping the day to the target
// month's last valid day instead of letting the overflow spill into the
// next month the way AddDate does (Jan 31 + 1 month = Feb 28/29, not Mar 3).
func addMonthsClamped(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Location())
}

// daysInMonth returns the number of days in the month of d.
func daysInMonth(d time.Time) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, d.Location()).Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
