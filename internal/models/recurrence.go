package models

import "time"

// RecurrenceKind defines how a planned transaction repeats.
type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "NONE"
	RecurrenceDaily   RecurrenceKind = "DAILY"
	RecurrenceWeekly  RecurrenceKind = "WEEKLY"
	RecurrenceMonthly RecurrenceKind = "MONTHLY"
	RecurrenceCustom  RecurrenceKind = "CUSTOM"
)

// IntervalUnit is the step unit for CUSTOM recurrence.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "DAYS"
	UnitWeeks  IntervalUnit = "WEEKS"
	UnitMonths IntervalUnit = "MONTHS"
)

// EndCondition defines when a recurrence stops producing occurrences.
type EndCondition string

const (
	EndNever      EndCondition = "NEVER"
	EndUntilDate  EndCondition = "UNTIL_DATE"
	EndAfterCount EndCondition = "AFTER_COUNT"
)

// RecurrenceRule describes the repetition schedule of a planned transaction.
// EndDate is set iff EndCondition is UNTIL_DATE, OccurrenceCount iff AFTER_COUNT.
type RecurrenceRule struct {
	Kind            RecurrenceKind `json:"kind"`
	Interval        int            `json:"interval"`
	IntervalUnit    IntervalUnit   `json:"interval_unit,omitempty"`
	EndCondition    EndCondition   `json:"end_condition"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	OccurrenceCount int            `json:"occurrence_count,omitempty"`
}
