package cron

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 生命周期调度指标
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "community_bot",
		Subsystem: "lifecycle",
		Name:      "tick_duration_seconds",
		Help:      "单轮生命周期扫描耗时",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	remindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "community_bot",
		Subsystem: "lifecycle",
		Name:      "reminders_sent_total",
		Help:      "已发送的提醒数量",
	}, []string{"kind"})

	eventsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "community_bot",
		Subsystem: "lifecycle",
		Name:      "events_completed_total",
		Help:      "已自动完结的活动数量",
	})

	attendanceMarked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "community_bot",
		Subsystem: "lifecycle",
		Name:      "attendance_marked_total",
		Help:      "出席采集标记的人次",
	})

	tickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "community_bot",
		Subsystem: "lifecycle",
		Name:      "tick_errors_total",
		Help:      "生命周期扫描中的错误数量",
	}, []string{"stage"})
)
