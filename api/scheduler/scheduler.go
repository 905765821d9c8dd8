package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rightsdesk/docket-api/config"
)

// Scheduler owns the cron process that fires the daily reminder job
type Scheduler struct {
	cron      *cron.Cron
	job       *ReminderJob
	spec      string
	runBudget time.Duration
}

// NewScheduler creates a new scheduler around the reminder job
func NewScheduler(conf *config.Config, job *ReminderJob) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		job:       job,
		spec:      conf.SchedulerSpec,
		runBudget: conf.RunBudget,
	}
}

// Start begins the scheduler with the daily reminder job registered
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(s.spec, s.runDaily)
	if err != nil {
		zap.S().Errorw("failed to register reminder job", "error", err)
		return
	}

	s.cron.Start()
	zap.S().Infow("reminder scheduler started", "spec", s.spec)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("reminder scheduler stopped")
}

// runDaily runs one reminder pass with the wall-clock date under the run budget
func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runBudget)
	defer cancel()

	report, err := s.job.Run(ctx, time.Now())
	if err != nil {
		zap.S().Errorw("scheduled reminder run aborted",
			"runId", report.RunID,
			"error", err,
		)
		return
	}
	if report.Failures > 0 {
		zap.S().Warnw("scheduled reminder run finished with failures",
			"runId", report.RunID,
			"attempts", report.Attempts,
			"failures", report.Failures,
		)
	}
}
