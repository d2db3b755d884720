// Package metrics Prometheus 指标
// 所有方法对 nil 接收者安全，未启用指标时可直接传 nil
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ytth"

// Metrics 应用指标集合，使用独立 Registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	storeWrites    *prometheus.CounterVec
	snapshots      prometheus.Counter
	seeds          prometheus.Counter
	subscribeFails prometheus.Counter
	wsClients      prometheus.Gauge
	wsSlowClients  prometheus.Counter
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "远端存储写入次数",
		}, []string{"collection", "result"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_received_total",
			Help:      "收到的数据快照数",
		}),
		seeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_runs_total",
			Help:      "写入默认数据的次数",
		}),
		subscribeFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_errors_total",
			Help:      "订阅错误次数",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "当前 WebSocket 连接数",
		}),
		wsSlowClients: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_slow_clients_dropped_total",
			Help:      "因发送缓冲已满被断开的 WebSocket 连接数",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.storeWrites,
		m.snapshots, m.seeds, m.subscribeFails, m.wsClients, m.wsSlowClients,
	)
	return m
}

// Registry 供测试读取指标
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler /metrics 暴露端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware 记录请求数与耗时，route 使用 gin 的路由模板避免高基数
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveStoreWrite 记录一次集合写入
func (m *Metrics) ObserveStoreWrite(collection string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeWrites.WithLabelValues(collection, result).Inc()
}

func (m *Metrics) IncSnapshot() {
	if m != nil {
		m.snapshots.Inc()
	}
}

func (m *Metrics) IncSeed() {
	if m != nil {
		m.seeds.Inc()
	}
}

func (m *Metrics) IncSubscriptionError() {
	if m != nil {
		m.subscribeFails.Inc()
	}
}

func (m *Metrics) SetWSClients(n int) {
	if m != nil {
		m.wsClients.Set(float64(n))
	}
}

func (m *Metrics) IncWSSlowClient() {
	if m != nil {
		m.wsSlowClients.Inc()
	}
}
