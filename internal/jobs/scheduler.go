// Package jobs runs the periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"strconv"
	"time"

	"bithra/internal/logger"
	"bithra/internal/metrics"

	"github.com/robfig/cron/v3"
)

type negotiationExpirer interface {
	ExpireStale(now time.Time) (int64, error)
}

type leaderboardRebuilder interface {
	Rebuild(ctx context.Context) error
}

const (
	expirySchedule  = "@every 1m"
	rebuildSchedule = "@hourly"
	jobTimeout      = 2 * time.Minute
)

type Scheduler struct {
	cron         *cron.Cron
	negotiations negotiationExpirer
	leaderboard  leaderboardRebuilder
	now          func() time.Time
}

func NewScheduler(negotiations negotiationExpirer, leaderboard leaderboardRebuilder) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		negotiations: negotiations,
		leaderboard:  leaderboard,
		now:          time.Now,
	}
}

// Start registers the jobs, rebuilds the leaderboard once and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(expirySchedule, s.ExpireNegotiations); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(rebuildSchedule, s.RebuildLeaderboards); err != nil {
		return err
	}
	go s.RebuildLeaderboards()
	s.cron.Start()
	logger.Component("jobs").WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
	return nil
}

// Stop waits for running jobs to finish or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) ExpireNegotiations() {
	n, err := s.negotiations.ExpireStale(s.now())
	record("expire_negotiations", err)
	log := logger.Component("jobs").WithField("job", "expire_negotiations")
	if err != nil {
		log.WithError(err).Error("job failed")
		return
	}
	if n > 0 {
		log.WithField("expired", n).Info("expired stale negotiations")
	}
}

func (s *Scheduler) RebuildLeaderboards() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	err := s.leaderboard.Rebuild(ctx)
	record("rebuild_leaderboards", err)
	if err != nil {
		logger.Component("jobs").WithField("job", "rebuild_leaderboards").WithError(err).Error("job failed")
	}
}

func record(job string, err error) {
	metrics.JobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}
