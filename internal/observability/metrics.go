package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clawshield/clawshield/internal/scan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	rejectionsTotal   *prometheus.CounterVec
	scansTotal        *prometheus.CounterVec
	ruleTriggersTotal *prometheus.CounterVec
	scanScore         *prometheus.HistogramVec
	requestDuration   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clawshield_requests_total", Help: "Total API requests"},
			[]string{"route", "method", "code"},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clawshield_rejections_total", Help: "Scan requests rejected before scanning"},
			[]string{"reason"},
		),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clawshield_scans_total", Help: "Completed scans"},
			[]string{"pack", "risk"},
		),
		ruleTriggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "clawshield_rule_triggers_total", Help: "Triggered rules"},
			[]string{"rule_id", "severity", "pack"},
		),
		scanScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clawshield_scan_score",
				Help:    "Distribution of clamped scan scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"pack"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clawshield_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.requestsTotal,
		m.rejectionsTotal,
		m.scansTotal,
		m.ruleTriggersTotal,
		m.scanScore,
		m.requestDuration,
	)

	return m
}

func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveScan(result scan.Result) {
	if m == nil {
		return
	}

	packName := string(result.Pack)
	m.scansTotal.WithLabelValues(packName, string(result.Risk)).Inc()
	m.scanScore.WithLabelValues(packName).Observe(float64(result.Score))

	for _, f := range result.Findings {
		m.ruleTriggersTotal.WithLabelValues(f.RuleID, string(f.Severity), packName).Inc()
	}
}
