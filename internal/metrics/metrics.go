// Package metrics holds the proxy's process-wide counters: total/successful/
// failed requests, quota errors, and retry attempts. Counters are updated
// with atomic fetch-add and read with a relaxed load, matching the
// concurrency model's "no cross-request locks beyond TokenSource and
// Metrics" rule.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe for concurrent use; every field is updated atomically.
type Metrics struct {
	totalRequests      atomic.Int64
	successfulRequests atomic.Int64
	failedRequests     atomic.Int64
	quotaErrors        atomic.Int64
	retryAttempts      atomic.Int64
}

// New returns a zeroed Metrics instance.
func New() *Metrics { return &Metrics{} }

func (m *Metrics) RecordSuccess() {
	m.totalRequests.Add(1)
	m.successfulRequests.Add(1)
}

func (m *Metrics) RecordFailure() {
	m.totalRequests.Add(1)
	m.failedRequests.Add(1)
}

func (m *Metrics) RecordQuotaError() { m.quotaErrors.Add(1) }

func (m *Metrics) RecordRetryAttempt() { m.retryAttempts.Add(1) }

// Snapshot is a point-in-time read of every counter plus the derived
// success rate.
type Snapshot struct {
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`
	QuotaErrors        int64 `json:"quota_errors"`
	RetryAttempts      int64 `json:"retry_attempts"`
	SuccessRate        int64 `json:"success_rate"`
}

// Snapshot reads every counter. SuccessRate is 100 when there has been no
// traffic yet, otherwise round(100 * successful/total).
func (m *Metrics) Snapshot() Snapshot {
	total := m.totalRequests.Load()
	success := m.successfulRequests.Load()

	rate := int64(100)
	if total > 0 {
		rate = (100*success + total/2) / total
	}

	return Snapshot{
		TotalRequests:      total,
		SuccessfulRequests: success,
		FailedRequests:     m.failedRequests.Load(),
		QuotaErrors:        m.quotaErrors.Load(),
		RetryAttempts:      m.retryAttempts.Load(),
		SuccessRate:        rate,
	}
}

// Collector mirrors Metrics as a set of Prometheus gauges for the /metrics
// endpoint, polling the atomic counters on each Collect call rather than
// duplicating state.
type Collector struct {
	metrics *Metrics

	totalDesc   *prometheus.Desc
	successDesc *prometheus.Desc
	failureDesc *prometheus.Desc
	quotaDesc   *prometheus.Desc
	retryDesc   *prometheus.Desc
	successRate *prometheus.Desc
}

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics:     m,
		totalDesc:   prometheus.NewDesc("modelmux_requests_total", "Total chat-completion requests handled.", nil, nil),
		successDesc: prometheus.NewDesc("modelmux_requests_successful_total", "Successful chat-completion requests.", nil, nil),
		failureDesc: prometheus.NewDesc("modelmux_requests_failed_total", "Failed chat-completion requests.", nil, nil),
		quotaDesc:   prometheus.NewDesc("modelmux_quota_errors_total", "Upstream quota-exhaustion errors observed.", nil, nil),
		retryDesc:   prometheus.NewDesc("modelmux_retry_attempts_total", "Retry backoffs issued by the dispatcher.", nil, nil),
		successRate: prometheus.NewDesc("modelmux_success_rate", "Rounded percentage of successful requests.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalDesc
	ch <- c.successDesc
	ch <- c.failureDesc
	ch <- c.quotaDesc
	ch <- c.retryDesc
	ch <- c.successRate
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.CounterValue, float64(snap.TotalRequests))
	ch <- prometheus.MustNewConstMetric(c.successDesc, prometheus.CounterValue, float64(snap.SuccessfulRequests))
	ch <- prometheus.MustNewConstMetric(c.failureDesc, prometheus.CounterValue, float64(snap.FailedRequests))
	ch <- prometheus.MustNewConstMetric(c.quotaDesc, prometheus.CounterValue, float64(snap.QuotaErrors))
	ch <- prometheus.MustNewConstMetric(c.retryDesc, prometheus.CounterValue, float64(snap.RetryAttempts))
	ch <- prometheus.MustNewConstMetric(c.successRate, prometheus.GaugeValue, float64(snap.SuccessRate))
}
