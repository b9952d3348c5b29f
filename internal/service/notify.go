package service

import (
	"fmt"
	"time"
)

// gapAlertWindowDays is how far ahead the daily job scans for cash gaps.
const gapAlertWindowDays = 30

// RunDailyMaintenance is invoked by the scheduler once a day: it penalizes
// overdue loan payments, advances every user's materialization horizon and
// sends reminder/alert mails. Per-user failures are logged and skipped so
// one broken mailbox does not stall the whole run.
func (s *Service) RunDailyMaintenance(now time.Time) error {
	penaltyRate := s.config.PenaltyMarginPercent
	if rate, err := s.rates.GetKeyRate(); err != nil {
		s.log.Warnf("Key rate unavailable, using margin %.2f%% alone: %v", penaltyRate, err)
	} else {
		penaltyRate += rate
	}
	if n, err := s.repo.MarkOverdueLoanPayments(now, penaltyRate); err != nil {
		return fmt.Errorf("failed to mark overdue loan payments: %w", err)
	} else if n > 0 {
		s.log.Infof("Marked %d loan payments overdue at %.2f%% penalty", n, penaltyRate)
	}

	users, err := s.repo.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if _, err := s.engine.Materialize(u.ID, now); err != nil {
			s.log.Errorf("Materialization failed for user %d: %v", u.ID, err)
			continue
		}
		if err := s.sendOccurrenceReminders(u.ID, u.Email, u.Username, now); err != nil {
			s.log.Errorf("Reminders failed for user %d: %v", u.ID, err)
		}
		if err := s.sendCashGapAlert(u.ID, u.Email, u.Username, now); err != nil {
			s.log.Errorf("Cash gap alert failed for user %d: %v", u.ID, err)
		}
	}
	return nil
}

// sendOccurrenceReminders mails the user about overdue occurrences and
// those due within the configured reminder window.
func (s *Service) sendOccurrenceReminders(userID int64, email, username string, now time.Time) error {
	pending, err := s.engine.ListPending(userID, now, 0)
	if err != nil {
		return err
	}
	windowEnd := now.AddDate(0, 0, s.config.ReminderDays)
	for _, occ := range pending {
		if occ.ScheduledDate.After(windowEnd) {
			break
		}
		overdue := occ.ScheduledDate.Before(now.Truncate(24 * time.Hour))
		if err := s.mailer.SendOccurrenceReminder(email, username, occ.ScheduledDate, occ.ScheduledAmount, "", overdue); err != nil {
			return err
		}
	}
	return nil
}

// sendCashGapAlert mails the user when the projected balance goes negative
// anywhere in the next gapAlertWindowDays days.
func (s *Service) sendCashGapAlert(userID int64, email, username string, now time.Time) error {
	gaps, err := s.engine.DetectCashGaps(userID, now, now.AddDate(0, 0, gapAlertWindowDays))
	if err != nil {
		return err
	}
	if len(gaps) == 0 {
		return nil
	}
	forecast, err := s.engine.ForecastBalance(userID, gaps[0])
	if err != nil {
		return err
	}
	return s.mailer.SendCashGapAlert(email, username, gaps[0], len(gaps), forecast.ProjectedBalance)
}
