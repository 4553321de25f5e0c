// Package metrics 추출 파이프라인의 Prometheus 수집기를 제공합니다.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "product_extractor"

// Metrics 추출 요청, 전략, 캐시, 쿠키 갱신 지표입니다. nil Metrics 의 메서드는 아무것도 하지 않습니다.
type Metrics struct {
	extractions      *prometheus.CounterVec
	extractDuration  *prometheus.HistogramVec
	strategies       *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	sessionRefreshes *prometheus.CounterVec
}

// New reg 에 수집기를 등록한 Metrics 를 생성합니다. reg 가 nil 이면 기본 레지스트리를 사용합니다.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of extraction requests by vendor and outcome.",
		}, []string{"vendor", "outcome"}),

		extractDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extraction requests.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 90},
		}, []string{"vendor"}),

		strategies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_runs_total",
			Help:      "Total number of strategy runs by vendor, strategy and status.",
		}, []string{"vendor", "strategy", "status"}),

		strategyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strategy_duration_seconds",
			Help:      "Duration of individual strategy runs.",
			Buckets:   []float64{0.05, 0.25, 1, 3, 5, 10, 30},
		}, []string{"vendor", "strategy"}),

		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups by result.",
		}, []string{"result"}),

		sessionRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refreshes_total",
			Help:      "Total number of Naver cookie refresh attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveExtraction 추출 요청 하나의 결과를 기록합니다.
func (m *Metrics) ObserveExtraction(vendor, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(vendor, outcome).Inc()
	m.extractDuration.WithLabelValues(vendor).Observe(d.Seconds())
}

// ObserveStrategy 전략 실행 하나의 결과를 기록합니다.
func (m *Metrics) ObserveStrategy(vendor, strategy string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "failure"
	if ok {
		status = "success"
	}
	m.strategies.WithLabelValues(vendor, strategy, status).Inc()
	m.strategyDuration.WithLabelValues(vendor, strategy).Observe(d.Seconds())
}

// ObserveCache 캐시 조회 결과를 기록합니다.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveSessionRefresh 쿠키 갱신 결과를 기록합니다.
func (m *Metrics) ObserveSessionRefresh(outcome string) {
	if m == nil {
		return
	}
	m.sessionRefreshes.WithLabelValues(outcome).Inc()
}

// RegisterBrowserGauges 브라우저 풀 사용 현황을 읽는 GaugeFunc 를 등록합니다.
func RegisterBrowserGauges(reg prometheus.Registerer, inUse, capacity func() float64) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "browser_pages_in_use",
		Help:      "Number of headless browser pages currently open.",
	}, inUse)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "browser_pages_capacity",
		Help:      "Maximum number of concurrently open headless browser pages.",
	}, capacity)
}
