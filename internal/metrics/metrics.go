// Package metrics Prometheus 指标：核对批次、行结果与 HTTP 请求
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"billcheck/internal/model"
)

const namespace = "billcheck"

// Metrics 指标集合，使用独立的 Registry
type Metrics struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	rows        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	diffAmount  *prometheus.GaugeVec

	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// New 创建并注册指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs completed.",
		}, []string{"mode"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Bill rows processed, by outcome.",
		}, []string{"mode", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Reconciliation run latencies in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"mode"}),
		diffAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_diff_amount",
			Help:      "Total diff amount (billed - computed) of the last run.",
		}, []string{"mode"}),
		reqCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_count_total",
			Help:      "Total number of HTTP requests made.",
		}, []string{"status", "endpoint", "method"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
		}, []string{"status", "endpoint", "method"}),
	}
	m.registry.MustRegister(m.runs, m.rows, m.runDuration, m.diffAmount, m.reqCount, m.reqDuration)
	return m
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RunFinished 记录一次核对的结果
func (m *Metrics) RunFinished(mode model.Mode, stats model.CalculationStats, elapsed time.Duration) {
	md := string(mode)
	m.runs.WithLabelValues(md).Inc()
	m.rows.WithLabelValues(md, "matched").Add(float64(stats.MatchedRows))
	m.rows.WithLabelValues(md, "mismatched").Add(float64(stats.MismatchedRows))
	m.rows.WithLabelValues(md, "error").Add(float64(stats.ErrorRows))
	m.runDuration.WithLabelValues(md).Observe(elapsed.Seconds())
	m.diffAmount.WithLabelValues(md).Set(stats.TotalDiffAmount.InexactFloat64())
}

// Handler /metrics 处理器
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware 记录 HTTP 请求数与耗时；endpoint 取路由模板
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		lvs := []string{strconv.Itoa(c.Writer.Status()), endpoint, c.Request.Method}
		m.reqCount.WithLabelValues(lvs...).Inc()
		m.reqDuration.WithLabelValues(lvs...).Observe(time.Since(start).Seconds())
	}
}
