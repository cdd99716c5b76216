package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pingcap/cache-monitoring/component/cachestat"
	"github.com/pingcap/cache-monitoring/component/cachestat/presenter"
	"github.com/pingcap/cache-monitoring/component/cachestat/scrape"
	"github.com/pingcap/cache-monitoring/config"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fixedStatus scrape.CycleInfo

func (s fixedStatus) LastCycle() scrape.CycleInfo {
	return scrape.CycleInfo(s)
}

func newRouter(latest *presenter.Latest, status CycleStatusGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	HTTPService(router.Group("/cache"), latest, status)
	return router
}

func get(t *testing.T, router *gin.Engine, path string, res interface{}) int {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	if res != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), res))
	}
	return w.Code
}

func TestSummary(t *testing.T) {
	latest := presenter.NewLatest()
	router := newRouter(latest, fixedStatus{})

	var errRes map[string]string
	require.Equal(t, http.StatusServiceUnavailable, get(t, router, "/cache/summary", &errRes))
	require.Equal(t, "error", errRes["status"])

	start := time.Unix(1700000000, 0)
	err := latest.Present(context.Background(), presenter.CycleReport{
		Summary: cachestat.Aggregate([]cachestat.CacheSample{
			{Label: "app.users", Value: 1000000},
			{Label: "app.users (index: by_email)", Value: 200000},
		}, 2000000, cachestat.DenominatorConfiguredTotal),
		Time:     start,
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	var res Summary
	require.Equal(t, http.StatusOK, get(t, router, "/cache/summary", &res))
	require.Equal(t, "configured_total", res.Mode)
	require.Equal(t, int64(2000000), res.Denominator)
	require.Equal(t, int64(1200000), res.UsedSum)
	require.Equal(t, int64(2000000), res.TotalConfigured)
	require.Equal(t, int64(1700000000), res.Timestamp)
	require.Equal(t, int64(1500), res.DurationMs)
	require.NotNil(t, res.UsagePercent)
	require.InDelta(t, 60.0, *res.UsagePercent, 1e-9)
	require.Len(t, res.Samples, 3)
	require.Equal(t, "app.users", res.Samples[0].Label)
	require.InDelta(t, 50.0, *res.Samples[0].Percent, 1e-9)
	require.InDelta(t, 10.0, *res.Samples[1].Percent, 1e-9)
	require.Equal(t, cachestat.UnusedCacheLabel, res.Samples[2].Label)
	require.InDelta(t, 40.0, *res.Samples[2].Percent, 1e-9)
}

func TestSummaryZeroDenominator(t *testing.T) {
	latest := presenter.NewLatest()
	router := newRouter(latest, fixedStatus{})
	err := latest.Present(context.Background(), presenter.CycleReport{
		Summary: cachestat.Aggregate([]cachestat.CacheSample{
			{Label: "app.empty", Value: 0},
		}, 0, cachestat.DenominatorUsedSum),
		Time: time.Now(),
	})
	require.NoError(t, err)

	var res map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, router, "/cache/summary", &res))
	require.Nil(t, res["usage_percent"])
	samples := res["samples"].([]interface{})
	require.Len(t, samples, 1)
	require.Nil(t, samples[0].(map[string]interface{})["percent"])
}

func TestDenominator(t *testing.T) {
	oldCfg := config.GetGlobalConfig()
	defer config.StoreGlobalConfig(oldCfg)

	router := newRouter(presenter.NewLatest(), fixedStatus{})
	config.UpdateGlobalConfig(func(cfg config.Config) config.Config {
		cfg.Cache.Denominator = config.DenominatorConfiguredTotal
		return cfg
	})

	var res map[string]string
	require.Equal(t, http.StatusOK, get(t, router, "/cache/denominator", &res))
	require.Equal(t, "configured_total", res["mode"])
}

func TestStatus(t *testing.T) {
	router := newRouter(presenter.NewLatest(), fixedStatus{})
	var res map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, router, "/cache/status", &res))
	require.Equal(t, map[string]interface{}{"status": "idle"}, res)

	router = newRouter(presenter.NewLatest(), fixedStatus{
		Status: scrape.CycleStatusFailed,
		Start:  time.Unix(1700000000, 0),
		Err:    errors.New("connection to the cluster lost"),
	})
	res = nil
	require.Equal(t, http.StatusOK, get(t, router, "/cache/status", &res))
	require.Equal(t, "failed", res["status"])
	require.Equal(t, float64(1700000000), res["start"])
	require.Equal(t, "connection to the cluster lost", res["error"])
}
