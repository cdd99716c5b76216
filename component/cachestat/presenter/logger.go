package presenter

import (
	"context"
	"fmt"

	"github.com/pingcap/cache-monitoring/component/cachestat"

	"github.com/dustin/go-humanize"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Logger writes the cycle totals to the log, and every sample at debug level.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = log.L()
	}
	return &Logger{logger: logger}
}

func (l *Logger) Present(_ context.Context, report CycleReport) error {
	summary := report.Summary
	for _, s := range summary.Samples {
		l.logger.Debug("cache sample", zap.String("label", s.Label), zap.Int64("bytes", s.Value))
	}
	l.logger.Info("cache usage",
		zap.String("mode", string(summary.Mode)),
		zap.Int("samples", len(summary.Samples)),
		zap.Duration("cost", report.Duration))
	for _, line := range SummaryLines(summary) {
		l.logger.Info(line)
	}
	return nil
}

// SummaryLines renders the totals of a summary as human readable lines.
func SummaryLines(summary cachestat.CacheSummary) []string {
	usage := "N/A"
	if percent, ok := UsagePercent(summary); ok {
		usage = fmt.Sprintf("%.2f%%", percent)
	}
	return []string{
		fmt.Sprintf("Total Cache Size: %s bytes", humanize.Comma(summary.TotalConfigured)),
		fmt.Sprintf("Total Used Cache: %s bytes", humanize.Comma(summary.UsedSum)),
		fmt.Sprintf("Cache Usage: %s", usage),
	}
}
