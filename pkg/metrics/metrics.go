// Package metrics 提供 Prometheus helper，覆盖执行核心的业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/tradeexecution/pkg/logger"
)

var invalidMetricChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Metrics 指标集合
type Metrics struct {
	// 生成的执行计划总数
	PlansTotal prometheus.Counter
	// 每个计划的切片数分布
	SlicesPerPlan prometheus.Histogram
	// 冰山订单总数
	IcebergOrdersTotal prometheus.Counter
	// 场所路由请求总数
	VenueRoutesTotal prometheus.Counter
	// 暗池路由请求总数
	DarkRoutesTotal prometheus.Counter
	// 生成的执行报告总数
	ReportsTotal prometheus.Counter
	// 执行质量评分分布
	QualityScore prometheus.Histogram
}

// New 创建指标实例，服务名中的非法字符替换为下划线
func New(serviceName string) *Metrics {
	serviceName = invalidMetricChars.ReplaceAllString(serviceName, "_")
	return &Metrics{
		PlansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "execution_plans_total",
			Help:      "Total execution plans generated",
		}),
		SlicesPerPlan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "slices_per_plan",
			Help:      "Number of slices per execution plan",
			Buckets:   []float64{2, 5, 10, 20, 50, 100, 200},
		}),
		IcebergOrdersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "iceberg_orders_total",
			Help:      "Total iceberg orders created",
		}),
		VenueRoutesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "venue_routes_total",
			Help:      "Total lit venue routing requests",
		}),
		DarkRoutesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "dark_routes_total",
			Help:      "Total dark pool routing requests",
		}),
		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "execution_reports_total",
			Help:      "Total execution reports produced",
		}),
		QualityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: serviceName,
			Name:      "execution_quality_score",
			Help:      "Execution quality score distribution",
			Buckets:   []float64{50, 60, 65, 70, 75, 80, 85, 90, 95, 100},
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.PlansTotal,
		m.SlicesPerPlan,
		m.IcebergOrdersTotal,
		m.VenueRoutesTotal,
		m.DarkRoutesTotal,
		m.ReportsTotal,
		m.QualityScore,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()
}
