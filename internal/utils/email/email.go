package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/ekomarov/planfact/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendOccurrenceReminder mails the user about a scheduled payment that is
// due soon or already overdue.
func (s *Sender) SendOccurrenceReminder(to, username string, scheduledDate time.Time, amount float64, description string, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = "Overdue Planned Payment"
	} else {
		e.Subject = "Upcoming Planned Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if overdue {
		body += fmt.Sprintf(
			"Your planned payment of %.2f was scheduled for %s and has not been settled yet.\n"+
				"Execute or skip it to keep your forecast accurate.\n",
			amount, scheduledDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your planned payment of %.2f is scheduled for %s.\n"+
				"Make sure sufficient funds are available.\n",
			amount, scheduledDate.Format("2006-01-02"),
		)
	}
	if description != "" {
		body += fmt.Sprintf("Description: %s\n", description)
	}
	body += "\nBest regards,\nPlanfact"
	e.Text = []byte(body)

	return s.send(e)
}

// SendCashGapAlert mails the user about a projected negative balance.
func (s *Sender) SendCashGapAlert(to, username string, firstGap time.Time, gapDays int, projectedBalance float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Cash Gap Warning"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your projected balance goes negative on %s (%.2f) and stays negative for %d day(s) in the next month.\n"+
			"Consider moving or skipping planned payments to cover the gap.\n"+
			"\nBest regards,\nPlanfact",
		username, firstGap.Format("2006-01-02"), projectedBalance, gapDays,
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
