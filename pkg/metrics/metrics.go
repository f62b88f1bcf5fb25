package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 报名操作计数
	enrollmentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollment_operations_total",
			Help: "Total number of enrollment operations",
		},
		[]string{"result"}, // result: created, rejected_full, rejected_duplicate, rejected_inactive
	)

	// 支付 Webhook 事件计数
	webhookEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Total number of payment webhook events received",
		},
		[]string{"event_type", "outcome"}, // outcome: processed, ignored, failed
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求延迟
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncrementEnrollment 记录一次报名操作结果
func IncrementEnrollment(result string) {
	enrollmentCount.WithLabelValues(result).Inc()
}

// IncrementWebhookEvent 记录一次支付 Webhook 事件
func IncrementWebhookEvent(eventType, outcome string) {
	webhookEventCount.WithLabelValues(eventType, outcome).Inc()
}
