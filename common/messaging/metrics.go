package messaging

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标定义
// 命名遵循 {service}_{subsystem}_{name} 规范
var (
	messageProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "community_bot",
			Subsystem: "messaging",
			Name:      "messages_processed_total",
			Help:      "处理的消息总数（按 topic 与结果区分）",
		},
		[]string{"service", "topic", "status"},
	)

	messageProcessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "community_bot",
			Subsystem: "messaging",
			Name:      "message_process_duration_seconds",
			Help:      "单条消息处理耗时",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "topic"},
	)
)

// newMetricsMiddleware 创建 Prometheus 指标中间件
// 挂在 Router 上，统计每条消息的处理耗时和结果
func newMetricsMiddleware(serviceName string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			topic := msg.Metadata.Get("topic")

			start := time.Now()
			produced, err := h(msg)
			duration := time.Since(start)

			messageProcessDuration.WithLabelValues(serviceName, topic).Observe(duration.Seconds())

			status := "success"
			if err != nil {
				status = "error"
			}
			messageProcessedTotal.WithLabelValues(serviceName, topic, status).Inc()

			return produced, err
		}
	}
}
