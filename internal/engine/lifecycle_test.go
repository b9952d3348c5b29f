package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/ekomarov/planfact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID int64 = 1

func seedPlanned(s *fakeStore, p models.PlannedTransaction) *models.PlannedTransaction {
	if p.ID == 0 {
		p.ID = int64(len(s.planned) + 1)
	}
	if p.UserID == 0 {
		p.UserID = testUserID
	}
	s.planned[p.ID] = &p
	return &p
}

func seedPendingOccurrence(s *fakeStore, plannedID int64, day time.Time, amount float64) *models.Occurrence {
	occ := &models.Occurrence{
		PlannedID:       plannedID,
		ScheduledDate:   day,
		ScheduledAmount: amount,
		Status:          models.OccurrencePending,
	}
	_ = s.CreateOccurrence(occ)
	return s.occurrences[occ.ID]
}

func TestMaterialize_CreatesPendingOccurrences(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	seedPlanned(s, models.PlannedTransaction{
		Amount: 500, Direction: models.DirectionOutflow, IsActive: true,
		AnchorDate: date(2026, time.September, 1),
		Rule: &models.RecurrenceRule{
			Kind: models.RecurrenceMonthly, Interval: 1, EndCondition: models.EndNever,
		},
	})

	created, err := e.Materialize(testUserID, date(2026, time.September, 1))
	require.NoError(t, err)
	// 12-month horizon: Sep 2026 through Sep 2027 inclusive.
	assert.Equal(t, 13, created)

	for _, occ := range s.occurrences {
		assert.Equal(t, models.OccurrencePending, occ.Status)
		assert.Equal(t, 500.0, occ.ScheduledAmount)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	seedPlanned(s, models.PlannedTransaction{
		Amount: 100, Direction: models.DirectionInflow, IsActive: true,
		AnchorDate: date(2026, time.September, 7),
		Rule: &models.RecurrenceRule{
			Kind: models.RecurrenceWeekly, Interval: 1, EndCondition: models.EndNever,
		},
	})

	first, err := e.Materialize(testUserID, date(2026, time.September, 7))
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := e.Materialize(testUserID, date(2026, time.September, 7))
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Len(t, s.occurrences, first)
}

func TestMaterialize_AdvancingHorizonAddsOnlyNewDates(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	seedPlanned(s, models.PlannedTransaction{
		Amount: 100, Direction: models.DirectionInflow, IsActive: true,
		AnchorDate: date(2026, time.September, 1),
		Rule: &models.RecurrenceRule{
			Kind: models.RecurrenceMonthly, Interval: 1, EndCondition: models.EndNever,
		},
	})

	first, err := e.Materialize(testUserID, date(2026, time.September, 1))
	require.NoError(t, err)

	later, err := e.Materialize(testUserID, date(2026, time.November, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, later)
	assert.Len(t, s.occurrences, first+2)
}

func TestMaterialize_SkipsInactiveAndOneTime(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	seedPlanned(s, models.PlannedTransaction{
		ID: 1, Amount: 100, Direction: models.DirectionInflow, IsActive: false,
		AnchorDate: date(2026, time.September, 1),
		Rule: &models.RecurrenceRule{
			Kind: models.RecurrenceDaily, Interval: 1, EndCondition: models.EndNever,
		},
	})
	seedPlanned(s, models.PlannedTransaction{
		ID: 2, Amount: 250, Direction: models.DirectionOutflow, IsActive: true,
		AnchorDate: date(2026, time.October, 15),
		// No rule: exactly one occurrence at the anchor date.
	})

	created, err := e.Materialize(testUserID, date(2026, time.September, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	for _, occ := range s.occurrences {
		assert.Equal(t, int64(2), occ.PlannedID)
		assert.Equal(t, date(2026, time.October, 15), occ.ScheduledDate)
	}
}

func TestExecute_PostsTransactionAndResolves(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{
		CategoryID: 42, Amount: 150, Direction: models.DirectionOutflow, IsActive: true,
		Description: "rent",
	})
	occ := seedPendingOccurrence(s, p.ID, date(2026, time.September, 10), 150)

	tx, err := e.Execute(occ.ID, date(2026, time.September, 11), 165.50)
	require.NoError(t, err)

	assert.Equal(t, 165.50, tx.Amount)
	assert.Equal(t, models.DirectionOutflow, tx.Direction)
	assert.Equal(t, int64(42), tx.CategoryID)
	assert.Equal(t, "rent", tx.Description)
	assert.Equal(t, date(2026, time.September, 11), tx.Date)

	got := s.occurrences[occ.ID]
	assert.Equal(t, models.OccurrenceExecuted, got.Status)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, tx.ID, *got.TransactionID)
	require.NotNil(t, got.ExecutedAmount)
	assert.Equal(t, 165.50, *got.ExecutedAmount)
	assert.Nil(t, got.SkipReason)
}

func TestExecute_LifecycleMonotone(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionInflow, IsActive: true})
	occ := seedPendingOccurrence(s, p.ID, date(2026, time.September, 10), 100)

	_, err := e.Execute(occ.ID, date(2026, time.September, 10), 100)
	require.NoError(t, err)

	// Once resolved, every further execute or skip must fail.
	_, err = e.Execute(occ.ID, date(2026, time.September, 12), 100)
	assert.ErrorIs(t, err, ErrLifecycleViolation)
	err = e.Skip(occ.ID, nil)
	assert.ErrorIs(t, err, ErrLifecycleViolation)

	// And only one transaction was posted.
	assert.Len(t, s.transactions, 1)
}

func TestSkip_StoresReasonAndIsTerminal(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionOutflow, IsActive: true})
	occ := seedPendingOccurrence(s, p.ID, date(2026, time.September, 10), 100)

	reason := "paid in cash"
	require.NoError(t, e.Skip(occ.ID, &reason))

	got := s.occurrences[occ.ID]
	assert.Equal(t, models.OccurrenceSkipped, got.Status)
	require.NotNil(t, got.SkipReason)
	assert.Equal(t, "paid in cash", *got.SkipReason)
	assert.Nil(t, got.TransactionID)

	_, err := e.Execute(occ.ID, date(2026, time.September, 10), 100)
	assert.ErrorIs(t, err, ErrLifecycleViolation)
	assert.Empty(t, s.transactions)
}

func TestExecute_Validation(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)

	_, err := e.Execute(1, date(2026, time.September, 10), 0)
	assert.True(t, IsValidation(err))

	_, err = e.Execute(999, date(2026, time.September, 10), 50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecute_RollsBackWhenPostingFails(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionOutflow, IsActive: true})
	occ := seedPendingOccurrence(s, p.ID, date(2026, time.September, 10), 100)

	s.postErr = errors.New("connection reset")
	_, err := e.Execute(occ.ID, date(2026, time.September, 10), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	// The occurrence mutation rolled back with the failed posting.
	assert.Equal(t, models.OccurrencePending, s.occurrences[occ.ID].Status)
}

func TestListPending_TwoBucketOrdering(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionOutflow, IsActive: true})

	today := date(2026, time.September, 20)
	// Seeded out of order on purpose.
	up2 := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, 2), 100)
	over5 := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, -5), 100)
	up1 := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, 1), 100)
	over3 := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, -3), 100)

	got, err := e.ListPending(testUserID, today, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Overdue ascending first, then upcoming ascending; a 5-day-late item
	// precedes tomorrow's no matter how late it is.
	assert.Equal(t, over5.ID, got[0].ID)
	assert.Equal(t, over3.ID, got[1].ID)
	assert.Equal(t, up1.ID, got[2].ID)
	assert.Equal(t, up2.ID, got[3].ID)
}

func TestListPending_TodayIsUpcomingAndLimitApplies(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionOutflow, IsActive: true})

	today := date(2026, time.September, 20)
	onToday := seedPendingOccurrence(s, p.ID, today, 100)
	overdue := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, -1), 100)
	seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, 3), 100)

	got, err := e.ListPending(testUserID, today, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, overdue.ID, got[0].ID)
	assert.Equal(t, onToday.ID, got[1].ID)
}

func TestListPending_ExcludesResolved(t *testing.T) {
	s := newFakeStore()
	e := newTestEngine(s)
	p := seedPlanned(s, models.PlannedTransaction{Amount: 100, Direction: models.DirectionOutflow, IsActive: true})

	today := date(2026, time.September, 20)
	occ := seedPendingOccurrence(s, p.ID, today, 100)
	keep := seedPendingOccurrence(s, p.ID, today.AddDate(0, 0, 1), 100)
	require.NoError(t, e.Skip(occ.ID, nil))

	got, err := e.ListPending(testUserID, today, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)
}
