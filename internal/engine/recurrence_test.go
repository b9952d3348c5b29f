package engine

import (
	"testing"
	"time"

	"github.com/ekomarov/planfact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func untilDate(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    *models.RecurrenceRule
		wantErr string
	}{
		{
			name: "nil rule is a one-time occurrence",
			rule: nil,
		},
		{
			name: "valid monthly never-ending",
			rule: &models.RecurrenceRule{Kind: models.RecurrenceMonthly, Interval: 1, EndCondition: models.EndNever},
		},
		{
			name: "valid custom weeks after count",
			rule: &models.RecurrenceRule{
				Kind: models.RecurrenceCustom, Interval: 2, IntervalUnit: models.UnitWeeks,
				EndCondition: models.EndAfterCount, OccurrenceCount: 5,
			},
		},
		{
			name:    "interval below one",
			rule:    &models.RecurrenceRule{Kind: models.RecurrenceDaily, Interval: 0, EndCondition: models.EndNever},
			wantErr: "interval must be >= 1",
		},
		{
			name:    "custom without unit",
			rule:    &models.RecurrenceRule{Kind: models.RecurrenceCustom, Interval: 1, EndCondition: models.EndNever},
			wantErr: "interval_unit",
		},
		{
			name:    "until date without end date",
			rule:    &models.RecurrenceRule{Kind: models.RecurrenceWeekly, Interval: 1, EndCondition: models.EndUntilDate},
			wantErr: "end_date required",
		},
		{
			name: "after count without count",
			rule: &models.RecurrenceRule{Kind: models.RecurrenceWeekly, Interval: 1, EndCondition: models.EndAfterCount},
			wantErr: "occurrence_count",
		},
		{
			name: "never with stray end date",
			rule: &models.RecurrenceRule{
				Kind: models.RecurrenceDaily, Interval: 1,
				EndCondition: models.EndNever, EndDate: untilDate(2026, time.June, 1),
			},
			wantErr: "NEVER must not carry",
		},
		{
			name: "until date with stray count",
			rule: &models.RecurrenceRule{
				Kind: models.RecurrenceDaily, Interval: 1,
				EndCondition: models.EndUntilDate, EndDate: untilDate(2026, time.June, 1), OccurrenceCount: 3,
			},
			wantErr: "occurrence_count must not be set",
		},
		{
			name:    "unknown kind",
			rule:    &models.RecurrenceRule{Kind: "FORTNIGHTLY", Interval: 1, EndCondition: models.EndNever},
			wantErr: "unknown recurrence kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpand_OneTime(t *testing.T) {
	anchor := date(2026, time.March, 15)
	horizon := date(2027, time.March, 15)

	assert.Equal(t, []time.Time{anchor}, Expand(nil, anchor, horizon))

	rule := &models.RecurrenceRule{Kind: models.RecurrenceNone, EndCondition: models.EndNever}
	assert.Equal(t, []time.Time{anchor}, Expand(rule, anchor, horizon))
}

func TestExpand_DailyAndWeekly(t *testing.T) {
	anchor := date(2026, time.March, 1)

	daily := &models.RecurrenceRule{Kind: models.RecurrenceDaily, Interval: 3, EndCondition: models.EndNever}
	assert.Equal(t, []time.Time{
		date(2026, time.March, 1),
		date(2026, time.March, 4),
		date(2026, time.March, 7),
		date(2026, time.March, 10),
	}, Expand(daily, anchor, date(2026, time.March, 10)))

	weekly := &models.RecurrenceRule{Kind: models.RecurrenceWeekly, Interval: 2, EndCondition: models.EndNever}
	assert.Equal(t, []time.Time{
		date(2026, time.March, 1),
		date(2026, time.March, 15),
		date(2026, time.March, 29),
	}, Expand(weekly, anchor, date(2026, time.April, 1)))
}

func TestExpand_MonthlyClampsToShortMonths(t *testing.T) {
	// Anchored on the 31st: short months clamp to their last day, and the
	// following occurrence is computed from the original day 31, not from
	// the clamped date.
	rule := &models.RecurrenceRule{Kind: models.RecurrenceMonthly, Interval: 1, EndCondition: models.EndNever}
	got := Expand(rule, date(2026, time.January, 31), date(2026, time.June, 30))

	assert.Equal(t, []time.Time{
		date(2026, time.January, 31),
		date(2026, time.February, 28),
		date(2026, time.March, 31),
		date(2026, time.April, 30),
		date(2026, time.May, 31),
		date(2026, time.June, 30),
	}, got)
}

func TestExpand_MonthlyLeapFebruary(t *testing.T) {
	rule := &models.RecurrenceRule{Kind: models.RecurrenceMonthly, Interval: 1, EndCondition: models.EndNever}
	got := Expand(rule, date(2027, time.December, 30), date(2028, time.March, 30))

	assert.Equal(t, []time.Time{
		date(2027, time.December, 30),
		date(2028, time.January, 30),
		date(2028, time.February, 29), // leap year
		date(2028, time.March, 30),
	}, got)
}

func TestExpand_CustomMonths(t *testing.T) {
	rule := &models.RecurrenceRule{
		Kind: models.RecurrenceCustom, Interval: 3, IntervalUnit: models.UnitMonths,
		EndCondition: models.EndNever,
	}
	got := Expand(rule, date(2026, time.January, 31), date(2026, time.December, 31))

	assert.Equal(t, []time.Time{
		date(2026, time.January, 31),
		date(2026, time.April, 30),
		date(2026, time.July, 31),
		date(2026, time.October, 31),
	}, got)
}

func TestExpand_AfterCountIgnoresHorizon(t *testing.T) {
	rule := &models.RecurrenceRule{
		Kind: models.RecurrenceWeekly, Interval: 1,
		EndCondition: models.EndAfterCount, OccurrenceCount: 10,
	}
	// Horizon well before the tenth week: count still wins.
	got := Expand(rule, date(2026, time.May, 1), date(2026, time.May, 2))
	require.Len(t, got, 10)
	assert.Equal(t, date(2026, time.May, 1), got[0])
	assert.Equal(t, date(2026, time.July, 3), got[9])
}

func TestExpand_UntilDateStopsAtEarlierBound(t *testing.T) {
	rule := &models.RecurrenceRule{
		Kind: models.RecurrenceDaily, Interval: 1,
		EndCondition: models.EndUntilDate, EndDate: untilDate(2026, time.March, 3),
	}

	// End date before horizon.
	got := Expand(rule, date(2026, time.March, 1), date(2026, time.March, 31))
	assert.Len(t, got, 3)

	// Horizon before end date.
	got = Expand(rule, date(2026, time.March, 1), date(2026, time.March, 2))
	assert.Len(t, got, 2)
}

func TestExpand_Deterministic(t *testing.T) {
	rule := &models.RecurrenceRule{Kind: models.RecurrenceMonthly, Interval: 2, EndCondition: models.EndNever}
	anchor := date(2026, time.August, 31)
	horizon := date(2028, time.August, 31)

	first := Expand(rule, anchor, horizon)
	second := Expand(rule, anchor, horizon)
	assert.Equal(t, first, second)

	// Strictly increasing, no duplicates.
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].After(first[i-1]))
	}
}
