package presenter

import (
	"context"

	"go.uber.org/atomic"
)

// Latest keeps the most recent report for readers outside the cycle loop.
type Latest struct {
	report atomic.Pointer[CycleReport]
}

func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) Present(_ context.Context, report CycleReport) error {
	l.report.Store(&report)
	return nil
}

// Get returns the latest report, or false before the first successful cycle.
func (l *Latest) Get() (CycleReport, bool) {
	r := l.report.Load()
	if r == nil {
		return CycleReport{}, false
	}
	return *r, true
}
