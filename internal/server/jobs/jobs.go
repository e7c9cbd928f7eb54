// Package jobs runs periodic maintenance on a robfig/cron scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

// Schedules use the six-field form with a leading seconds column.
const (
	purgeTokensSchedule = "0 * * * * *"   // every minute
	sweepLimitsSchedule = "0 */5 * * * *" // every five minutes
)

// TokenPurger deletes expired password reset tokens.
type TokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// Sweeper drops rate limit windows that ended before now.
type Sweeper interface {
	Sweep(now time.Time) int
}

// MasterDataSyncer bumps the version of active master data.
type MasterDataSyncer interface {
	Sync(ctx context.Context) (*services.MasterDataSnapshot, error)
}

// Options selects the jobs to register. Nil members are skipped and an
// empty MasterDataSyncSpec disables the master data job.
type Options struct {
	Tokens             TokenPurger
	Limiters           []Sweeper
	MasterData         MasterDataSyncer
	MasterDataSyncSpec string
}

type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// NewScheduler registers the jobs in opts. Jobs run with ctx, so cancelling
// it aborts in-flight database work.
func NewScheduler(ctx context.Context, opts Options, logger logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		ctx:    ctx,
		cron:   cron.New(),
		opts:   opts,
		logger: logger.With("module", "jobs"),
		now:    time.Now,
	}

	if opts.Tokens != nil {
		if err := s.cron.AddFunc(purgeTokensSchedule, s.purgeTokens); err != nil {
			return nil, fmt.Errorf("schedule token purge: %w", err)
		}
	}
	if len(opts.Limiters) > 0 {
		if err := s.cron.AddFunc(sweepLimitsSchedule, s.sweepLimiters); err != nil {
			return nil, fmt.Errorf("schedule limiter sweep: %w", err)
		}
	}
	if opts.MasterData != nil && opts.MasterDataSyncSpec != "" {
		if err := s.cron.AddFunc(opts.MasterDataSyncSpec, s.syncMasterData); err != nil {
			return nil, fmt.Errorf("schedule master data sync %q: %w", opts.MasterDataSyncSpec, err)
		}
	}
	return s, nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.logger.Info(s.ctx, "starting scheduler", "jobs", s.Len())
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info(context.Background(), "scheduler stopped")
}

func (s *Scheduler) purgeTokens() {
	n, err := s.opts.Tokens.PurgeExpiredResetTokens(s.ctx)
	if err != nil {
		s.logger.Error(s.ctx, "failed to purge reset tokens", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug(s.ctx, "purged expired reset tokens", "count", n)
	}
}

func (s *Scheduler) sweepLimiters() {
	now := s.now()
	var n int
	for _, l := range s.opts.Limiters {
		n += l.Sweep(now)
	}
	if n > 0 {
		s.logger.Debug(s.ctx, "swept rate limit windows", "count", n)
	}
}

func (s *Scheduler) syncMasterData() {
	snap, err := s.opts.MasterData.Sync(s.ctx)
	if err != nil {
		s.logger.Error(s.ctx, "scheduled master data sync failed", "error", err)
		return
	}
	s.logger.Info(s.ctx, "master data synced", "records", snap.TotalRecords)
}
