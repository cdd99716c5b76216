package http

import (
	"net/http"

	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/component/cachestat/scrape"
	"github.com/pingcap/cache-monitoring/config"

	"github.com/gin-gonic/gin"
)

type CycleStatusGetter interface {
	LastCycle() scrape.CycleInfo
}

func HTTPService(g *gin.RouterGroup, latest *presenter.Latest, status CycleStatusGetter) {
	g.GET("/summary", func(c *gin.Context) {
		handleSummary(c, latest)
	})
	g.GET("/denominator", handleDenominator)
	g.GET("/status", func(c *gin.Context) {
		handleStatus(c, status)
	})
}

type Sample struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
	// Percent is the share of the denominator, null when it is zero.
	Percent *float64 `json:"percent"`
}

type Summary struct {
	Mode            string   `json:"mode"`
	Denominator     int64    `json:"denominator"`
	UsedSum         int64    `json:"used_sum"`
	TotalConfigured int64    `json:"total_configured"`
	UsagePercent    *float64 `json:"usage_percent"`
	Timestamp       int64    `json:"timestamp"`
	DurationMs      int64    `json:"duration_ms"`
	Samples         []Sample `json:"samples"`
}

func handleSummary(c *gin.Context, latest *presenter.Latest) {
	report, ok := latest.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "no cache statistics cycle has finished yet",
		})
		return
	}
	c.JSON(http.StatusOK, buildSummary(report))
}

func buildSummary(report presenter.CycleReport) Summary {
	summary := report.Summary
	res := Summary{
		Mode:            string(summary.Mode),
		Denominator:     summary.Denominator,
		UsedSum:         summary.UsedSum,
		TotalConfigured: summary.TotalConfigured,
		Timestamp:       report.Time.Unix(),
		DurationMs:      report.Duration.Milliseconds(),
		Samples:         make([]Sample, 0, len(summary.Samples)),
	}
	if percent, ok := presenter.UsagePercent(summary); ok {
		res.UsagePercent = &percent
	}
	for _, s := range summary.Samples {
		sample := Sample{Label: s.Label, Value: s.Value}
		if percent, ok := presenter.SharePercent(s.Value, summary.Denominator); ok {
			sample.Percent = &percent
		}
		res.Samples = append(res.Samples, sample)
	}
	return res
}

func handleDenominator(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode": config.GetGlobalConfig().Cache.Denominator,
	})
}

func handleStatus(c *gin.Context, status CycleStatusGetter) {
	info := status.LastCycle()
	res := gin.H{
		"status": info.Status.String(),
	}
	if !info.Start.IsZero() {
		res["start"] = info.Start.Unix()
	}
	if info.Err != nil {
		res["error"] = info.Err.Error()
	}
	c.JSON(http.StatusOK, res)
}
