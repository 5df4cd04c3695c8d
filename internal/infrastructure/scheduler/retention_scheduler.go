// Package scheduler runs the account retention jobs on cron expressions.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/identitykit/account-service/internal/core/ports"
)

// Config controls the retention schedule and the per-run retry policy.
type Config struct {
	Enabled            bool
	UserCleanupCron    string
	UserHardDeleteCron string
	MaxRetries         int
	RetryBaseDelay     time.Duration
}

// RetentionScheduler triggers the two retention sweeps: soft-deleting
// accounts whose verification window lapsed, and physically removing
// accounts whose soft-delete retention lapsed. A failed run is retried with
// a growing delay; when every attempt fails the run is abandoned and the
// next scheduled run picks up the same rows.
type RetentionScheduler struct {
	config   *Config
	accounts ports.AccountService
	cron     *cron.Cron
	logger   *logrus.Logger
	// sleep is replaced in tests
	sleep func(time.Duration)
}

func NewRetentionScheduler(config *Config, accounts ports.AccountService, logger *logrus.Logger) *RetentionScheduler {
	return &RetentionScheduler{
		config:   config,
		accounts: accounts,
		cron:     cron.New(),
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// Start registers the cron entries and starts the scheduler. It returns
// without error when the scheduler is disabled.
func (s *RetentionScheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("retention scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.UserCleanupCron, func() {
		s.runJob("unverified_cleanup", s.accounts.DeleteExpiredUnverifiedAccounts)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.config.UserHardDeleteCron, func() {
		s.runJob("hard_delete", s.accounts.HardDeleteExpiredDeletedAccounts)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"cleanup_cron":     s.config.UserCleanupCron,
		"hard_delete_cron": s.config.UserHardDeleteCron,
	}).Info("retention scheduler started")

	return nil
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("retention scheduler stopped")
}

// runJob executes one retention sweep with retries. Attempts are spaced by
// RetryBaseDelay times the attempt number. The final failure is logged and
// swallowed so one bad night never kills the process.
func (s *RetentionScheduler) runJob(name string, job func(ctx context.Context) (int, error)) {
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		count, err := job(context.Background())
		if err == nil {
			jobRuns.WithLabelValues(name, "success").Inc()
			s.logger.WithFields(logrus.Fields{
				"job":     name,
				"count":   count,
				"attempt": attempt,
			}).Info("retention job completed")
			return
		}

		lastErr = err
		s.logger.WithError(err).WithFields(logrus.Fields{
			"job":     name,
			"attempt": attempt,
		}).Warn("retention job attempt failed")

		if attempt < attempts {
			s.sleep(s.config.RetryBaseDelay * time.Duration(attempt))
		}
	}

	jobRuns.WithLabelValues(name, "failure").Inc()
	s.logger.WithError(lastErr).WithFields(logrus.Fields{
		"job":      name,
		"attempts": attempts,
	}).Error("retention job failed, giving up until next run")
}
