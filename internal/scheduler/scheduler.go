package scheduler

import (
	"time"

	"github.com/ekomarov/planfact/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the daily maintenance job: penalizing overdue loan
// payments, advancing materialization horizons and sending reminders.
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// New creates a scheduler with the daily job registered at 00:10.
func New(svc *service.Service, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}
	if _, err := s.cron.AddFunc("10 0 * * *", s.runDaily); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron loop and runs maintenance once immediately, so a
// service restarted after downtime catches up without waiting for midnight.
func (s *Scheduler) Start() {
	go s.runDaily()
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runDaily() {
	if err := s.svc.RunDailyMaintenance(time.Now()); err != nil {
		s.log.Errorf("Daily maintenance failed: %v", err)
	}
}
