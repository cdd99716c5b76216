package scrape

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pingcap/cache-monitoring/component/cachestat"
	"github.com/pingcap/cache-monitoring/component/cachestat/mock"
	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/component/cachestat/source"
	"github.com/pingcap/cache-monitoring/config"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// recorder keeps every presented report.
type recorder struct {
	sync.Mutex
	reports []presenter.CycleReport
}

func (r *recorder) Present(_ context.Context, report presenter.CycleReport) error {
	r.Lock()
	defer r.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *recorder) count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.reports)
}

func (r *recorder) last() presenter.CycleReport {
	r.Lock()
	defer r.Unlock()
	return r.reports[len(r.reports)-1]
}

func setupConfig(t *testing.T, intervalUnits int) {
	oldUnit := timeUnit
	oldCfg := config.GetGlobalConfig()
	timeUnit = 10 * time.Millisecond
	t.Cleanup(func() {
		timeUnit = oldUnit
		config.StoreGlobalConfig(oldCfg)
	})

	cfg := config.GetDefaultConfig()
	cfg.Cache.IntervalSeconds = intervalUnits
	cfg.Cache.TimeoutSeconds = 100
	cfg.Cache.Denominator = config.DenominatorUsedSum
	config.StoreGlobalConfig(cfg)
}

func newSource() *mock.MemSource {
	return mock.NewMemSource(2000000).AddObject("app", mock.Object{
		Name: "users",
		Stats: source.ObjectStats{
			InCacheBytes: 1000000,
			Indexes:      []source.IndexStats{{Name: "by_email", InCacheBytes: 200000}},
		},
	})
}

func TestManager(t *testing.T) {
	setupConfig(t, 1)

	rec := &recorder{}
	latest := presenter.NewLatest()
	manager := NewManager(cachestat.NewPipeline(newSource()), presenter.Multi(rec, latest))
	require.Equal(t, CycleStatusIdle, manager.LastCycle().Status)
	manager.Start()
	defer manager.Close()

	require.Eventually(t, func() bool {
		return rec.count() >= 3
	}, 5*time.Second, 10*time.Millisecond)

	report := rec.last()
	require.Equal(t, cachestat.DenominatorUsedSum, report.Summary.Mode)
	require.Equal(t, int64(1200000), report.Summary.Denominator)
	require.Len(t, report.Summary.Samples, 2)
	require.False(t, report.Time.IsZero())

	_, ok := latest.Get()
	require.True(t, ok)

	// the denominator mode is read again before every cycle
	config.UpdateGlobalConfig(func(cfg config.Config) config.Config {
		cfg.Cache.Denominator = config.DenominatorConfiguredTotal
		return cfg
	})
	require.Eventually(t, func() bool {
		return rec.last().Summary.Mode == cachestat.DenominatorConfiguredTotal
	}, 5*time.Second, 10*time.Millisecond)
	summary := rec.last().Summary
	require.Equal(t, int64(2000000), summary.Denominator)
	require.Equal(t, cachestat.UnusedCacheLabel, summary.Samples[len(summary.Samples)-1].Label)

	info := manager.LastCycle()
	require.NotEqual(t, CycleStatusFailed, info.Status)
	require.NoError(t, info.Err)
}

func TestManagerContinuesAfterFailedCycle(t *testing.T) {
	setupConfig(t, 1)

	src := newSource()
	src.SetErr(errors.Wrap(source.ErrReconnectNeeded, "list databases"))
	rec := &recorder{}
	reconnectBefore := testutil.ToFloat64(cyclesTotal.WithLabelValues(resultReconnectNeeded))
	errorBefore := testutil.ToFloat64(cyclesTotal.WithLabelValues(resultError))

	manager := NewManager(cachestat.NewPipeline(src), rec)
	manager.Start()
	defer manager.Close()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(cyclesTotal.WithLabelValues(resultReconnectNeeded)) >= reconnectBefore+2
	}, 5*time.Second, 10*time.Millisecond)
	info := manager.LastCycle()
	require.True(t, errors.Is(info.Err, source.ErrReconnectNeeded))
	require.Equal(t, 0, rec.count())

	src.SetErr(errors.New("not authorized on admin"))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(cyclesTotal.WithLabelValues(resultError)) > errorBefore
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, 0, rec.count())

	src.SetErr(nil)
	require.Eventually(t, func() bool {
		return rec.count() > 0
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return manager.LastCycle().Err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestManagerCloseAbortsWait(t *testing.T) {
	setupConfig(t, 360000)

	rec := &recorder{}
	manager := NewManager(cachestat.NewPipeline(newSource()), rec)
	manager.Start()
	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, 5*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		manager.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not abort the wait")
	}
	require.Equal(t, 1, rec.count())
	require.Equal(t, CycleStatusFinished, manager.LastCycle().Status)
}

func TestManagerIntervalChangeRestartsWait(t *testing.T) {
	setupConfig(t, 360000)

	rec := &recorder{}
	manager := NewManager(cachestat.NewPipeline(newSource()), rec)
	manager.Start()
	defer manager.Close()
	require.Eventually(t, func() bool {
		return rec.count() == 1
	}, 5*time.Second, 10*time.Millisecond)

	config.UpdateGlobalConfig(func(cfg config.Config) config.Config {
		cfg.Cache.IntervalSeconds = 1
		return cfg
	})
	require.Eventually(t, func() bool {
		return rec.count() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

// blockingSource never answers until its context is done.
type blockingSource struct {
	*mock.MemSource
	started chan struct{}
	once    sync.Once
}

func (s *blockingSource) ListDatabaseNames(ctx context.Context) ([]string, error) {
	s.once.Do(func() { close(s.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestManagerCloseAbortsCycle(t *testing.T) {
	setupConfig(t, 1)

	src := &blockingSource{MemSource: newSource(), started: make(chan struct{})}
	rec := &recorder{}
	successBefore := testutil.ToFloat64(cyclesTotal.WithLabelValues(resultSuccess))
	errorBefore := testutil.ToFloat64(cyclesTotal.WithLabelValues(resultError))

	manager := NewManager(cachestat.NewPipeline(src), rec)
	manager.Start()
	select {
	case <-src.started:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not start")
	}
	manager.Close()

	require.Equal(t, 0, rec.count())
	require.Equal(t, CycleStatusIdle, manager.LastCycle().Status)
	require.Equal(t, successBefore, testutil.ToFloat64(cyclesTotal.WithLabelValues(resultSuccess)))
	require.Equal(t, errorBefore, testutil.ToFloat64(cyclesTotal.WithLabelValues(resultError)))
}

func TestManagerCycleTimeout(t *testing.T) {
	setupConfig(t, 1)
	config.UpdateGlobalConfig(func(cfg config.Config) config.Config {
		cfg.Cache.TimeoutSeconds = 1
		return cfg
	})

	src := &blockingSource{MemSource: newSource(), started: make(chan struct{})}
	manager := NewManager(cachestat.NewPipeline(src), &recorder{})
	manager.Start()
	defer manager.Close()

	require.Eventually(t, func() bool {
		info := manager.LastCycle()
		return info.Status == CycleStatusFailed && errors.Is(info.Err, context.DeadlineExceeded)
	}, 5*time.Second, 10*time.Millisecond)

	// a running cycle never carries the error of the previous one
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		info := manager.LastCycle()
		if info.Status != CycleStatusFailed {
			require.NoError(t, info.Err, info.Status.String())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManagerConfigChangeBeforeStart(t *testing.T) {
	setupConfig(t, 360000)

	rec := &recorder{}
	manager := NewManager(cachestat.NewPipeline(newSource()), rec)
	config.UpdateGlobalConfig(func(cfg config.Config) config.Config {
		cfg.Cache.IntervalSeconds = 1
		cfg.Cache.Denominator = config.DenominatorConfiguredTotal
		return cfg
	})
	manager.Start()
	defer manager.Close()

	require.Eventually(t, func() bool {
		return rec.count() >= 2
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, cachestat.DenominatorConfiguredTotal, rec.last().Summary.Mode)
}

func TestCycleStatusString(t *testing.T) {
	require.Equal(t, "idle", CycleStatusIdle.String())
	require.Equal(t, "running", CycleStatusRunning.String())
	require.Equal(t, "finished", CycleStatusFinished.String())
	require.Equal(t, "failed", CycleStatusFailed.String())
	require.Equal(t, "unknown", CycleStatus(42).String())
}
