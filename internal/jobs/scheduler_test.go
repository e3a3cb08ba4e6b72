package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"bithra/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calledAt time.Time
	err      error
}

func (f *fakeExpirer) ExpireStale(now time.Time) (int64, error) {
	f.calledAt = now
	return 3, f.err
}

type fakeRebuilder struct {
	calls chan struct{}
	err   error
}

func (f *fakeRebuilder) Rebuild(ctx context.Context) error {
	f.calls <- struct{}{}
	return f.err
}

func TestExpireNegotiations_UsesClockAndRecordsResult(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := &fakeExpirer{}
	s := NewScheduler(exp, &fakeRebuilder{calls: make(chan struct{}, 1)})
	s.now = func() time.Time { return fixed }

	ok := metrics.JobRuns.WithLabelValues("expire_negotiations", "true")
	failed := metrics.JobRuns.WithLabelValues("expire_negotiations", "false")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	s.ExpireNegotiations()
	assert.Equal(t, fixed, exp.calledAt)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))

	exp.err = errors.New("db down")
	s.ExpireNegotiations()
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestStart_RebuildsLeaderboardImmediately(t *testing.T) {
	rb := &fakeRebuilder{calls: make(chan struct{}, 1)}
	s := NewScheduler(&fakeExpirer{}, rb)
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	select {
	case <-rb.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("leaderboard was not rebuilt on start")
	}
	assert.Len(t, s.cron.Entries(), 2)
}

func TestRebuildLeaderboards_RecordsFailure(t *testing.T) {
	rb := &fakeRebuilder{calls: make(chan struct{}, 1), err: errors.New("redis down")}
	s := NewScheduler(&fakeExpirer{}, rb)

	failed := metrics.JobRuns.WithLabelValues("rebuild_leaderboards", "false")
	before := testutil.ToFloat64(failed)
	s.RebuildLeaderboards()
	<-rb.calls
	assert.Equal(t, before+1, testutil.ToFloat64(failed))
}
