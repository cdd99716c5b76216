package presenter

import (
	"context"
	"time"

	"github.com/pingcap/cache-monitoring/component/cachestat"

	"go.uber.org/multierr"
)

// CycleReport is the outcome of one successful cycle.
type CycleReport struct {
	Summary  cachestat.CacheSummary `json:"summary"`
	Time     time.Time              `json:"time"`
	Duration time.Duration          `json:"duration"`
}

// Presenter consumes the summary of every successful cycle. Present must
// not keep a reference to the samples slice beyond the call unless it
// never modifies it.
type Presenter interface {
	Present(ctx context.Context, report CycleReport) error
}

// UsagePercent returns the share of the denominator held by used cache, in
// percent. It reports false when the denominator is zero.
func UsagePercent(summary cachestat.CacheSummary) (float64, bool) {
	return SharePercent(summary.UsedSum, summary.Denominator)
}

// SharePercent returns value as a percentage of denominator. It reports
// false when the denominator is zero.
func SharePercent(value, denominator int64) (float64, bool) {
	if denominator <= 0 {
		return 0, false
	}
	return float64(value) * 100 / float64(denominator), true
}

type multi []Presenter

// Multi fans a report out to every presenter. All presenters run even when
// one of them fails; the errors are combined.
func Multi(presenters ...Presenter) Presenter {
	return multi(presenters)
}

func (m multi) Present(ctx context.Context, report CycleReport) error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Present(ctx, report))
	}
	return err
}
