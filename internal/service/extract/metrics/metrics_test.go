package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveExtraction("naver", "succeeded", 2*time.Second)
	m.ObserveExtraction("naver", "succeeded", time.Second)
	m.ObserveExtraction("coupang", "upstream_failed", time.Second)
	m.ObserveStrategy("naver", "naver_api", true, 300*time.Millisecond)
	m.ObserveStrategy("naver", "headless", false, 5*time.Second)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveSessionRefresh("refreshed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.extractions.WithLabelValues("naver", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("coupang", "upstream_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("naver", "naver_api", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategies.WithLabelValues("naver", "headless", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionRefreshes.WithLabelValues("refreshed")))

	count, err := testutil.GatherAndCount(reg, "product_extractor_extraction_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "vendor 라벨별 히스토그램 2개")
}

func TestMetrics_Nil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtraction("naver", "succeeded", time.Second)
		m.ObserveStrategy("naver", "headless", true, time.Second)
		m.ObserveCache(true)
		m.ObserveSessionRefresh("failed")
	})
}

func TestRegisterBrowserGauges(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	inUse := 1.0
	RegisterBrowserGauges(reg, func() float64 { return inUse }, func() float64 { return 2 })

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
	}
	assert.Equal(t, 1.0, values["product_extractor_browser_pages_in_use"])
	assert.Equal(t, 2.0, values["product_extractor_browser_pages_capacity"])
}
