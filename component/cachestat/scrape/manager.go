package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/pingcap/cache-monitoring/component/cachestat"
	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/component/cachestat/source"
	"github.com/pingcap/cache-monitoring/config"
	"github.com/pingcap/cache-monitoring/utils"

	"github.com/pingcap/log"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// timeUnit scales the configured interval and timeout.
var timeUnit = time.Second

type CycleStatus int64

const (
	CycleStatusIdle CycleStatus = iota
	CycleStatusRunning
	CycleStatusFinished
	CycleStatusFailed
)

func (s CycleStatus) String() string {
	switch s {
	case CycleStatusIdle:
		return "idle"
	case CycleStatusRunning:
		return "running"
	case CycleStatusFinished:
		return "finished"
	case CycleStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type CycleInfo struct {
	Status CycleStatus
	Start  time.Time
	Err    error
}

// Manager runs statistics cycles one after another: collect, aggregate,
// present, then wait for the configured interval. A failed cycle never stops
// the loop, the next cycle runs on schedule.
type Manager struct {
	pipeline  *cachestat.Pipeline
	presenter presenter.Presenter

	config         config.Cache
	configChangeCh config.Subscriber

	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastCycle atomic.Pointer[CycleInfo]
}

func NewManager(pipeline *cachestat.Pipeline, p presenter.Presenter) *Manager {
	cfgSub := config.Subscribe()
	getCurCfg := <-cfgSub
	cfg := getCurCfg()

	m := &Manager{
		pipeline:       pipeline,
		presenter:      p,
		config:         cfg.Cache,
		configChangeCh: cfgSub,
	}
	m.lastCycle.Store(&CycleInfo{Status: CycleStatusIdle})
	return m
}

func (m *Manager) Start() {
	cfg := m.config
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go utils.GoWithRecovery(func() {
		defer m.wg.Done()
		m.run(ctx)
	}, nil)
	log.Info("cache statistics manager started",
		zap.Int("interval-seconds", cfg.IntervalSeconds),
		zap.String("denominator", cfg.Denominator))
}

// Close aborts the running cycle or wait and returns after the loop exits.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	config.Unsubscribe(m.configChangeCh)
	log.Info("cache statistics manager stopped")
}

// LastCycle returns the status of the running or the last finished cycle.
// Status and error always come from the same cycle.
func (m *Manager) LastCycle() CycleInfo {
	return *m.lastCycle.Load()
}

func (m *Manager) run(ctx context.Context) {
	for {
		m.drainConfigChange()
		m.runCycle(ctx)
		if !m.wait(ctx) {
			return
		}
	}
}

func (m *Manager) drainConfigChange() {
	select {
	case getCfg := <-m.configChangeCh:
		m.config = getCfg().Cache
	default:
	}
}

// wait blocks for one interval. It restarts from zero when the interval is
// changed, and returns false once ctx is done.
func (m *Manager) wait(ctx context.Context) bool {
	timer := time.NewTimer(time.Duration(m.config.IntervalSeconds) * timeUnit)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case getCfg := <-m.configChangeCh:
			oldInterval := m.config.IntervalSeconds
			m.config = getCfg().Cache
			if m.config.IntervalSeconds != oldInterval {
				log.Info("cache statistics interval changed",
					zap.Int("old", oldInterval),
					zap.Int("new", m.config.IntervalSeconds))
				timer.Reset(time.Duration(m.config.IntervalSeconds) * timeUnit)
			}
		}
	}
}

func (m *Manager) runCycle(ctx context.Context) {
	cfg := m.config
	start := time.Now()
	m.lastCycle.Store(&CycleInfo{Status: CycleStatusRunning, Start: start})

	cycleCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*timeUnit)
	defer cancel()
	summary, err := m.pipeline.RunCycle(cycleCtx, cachestat.CycleOptions{
		Mode:        cachestat.DenominatorMode(cfg.Denominator),
		Concurrency: cfg.Concurrency,
	})
	if err == nil {
		err = m.presenter.Present(cycleCtx, presenter.CycleReport{
			Summary:  summary,
			Time:     start,
			Duration: time.Since(start),
		})
		if err != nil {
			err = errors.Wrap(err, "present cache summary")
		}
	}
	cost := time.Since(start)

	if ctx.Err() != nil {
		// closing
		m.lastCycle.Store(&CycleInfo{Status: CycleStatusIdle, Start: start})
		log.Debug("cache statistics cycle canceled", zap.Error(err))
		return
	}

	cycleDuration.Observe(cost.Seconds())
	if err == nil {
		m.lastCycle.Store(&CycleInfo{Status: CycleStatusFinished, Start: start})
		cyclesTotal.WithLabelValues(resultSuccess).Inc()
		log.Debug("cache statistics cycle finished",
			zap.Int("samples", len(summary.Samples)),
			zap.Duration("cost", cost))
		return
	}

	m.lastCycle.Store(&CycleInfo{Status: CycleStatusFailed, Start: start, Err: err})
	if errors.Is(err, source.ErrReconnectNeeded) {
		cyclesTotal.WithLabelValues(resultReconnectNeeded).Inc()
		log.Warn("lost connection to the cluster, retry in the next cycle",
			zap.Duration("cost", cost),
			zap.Error(err))
		return
	}
	cyclesTotal.WithLabelValues(resultError).Inc()
	log.Error("cache statistics cycle failed",
		zap.Duration("cost", cost),
		zap.Error(err))
}
