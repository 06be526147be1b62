// Package cache 提供通用缓存工具
//
// 设计原则：
//   - Key 命名规范：{业务}:{模块}:{标识}，如 event:view:123
//   - 随机 TTL 防止缓存雪崩
//   - 与 Redis 客户端配合使用
package cache

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/mathx"
)

// ==================== 默认配置 ====================

const (
	// DefaultTTL 默认缓存过期时间（5 分钟）
	DefaultTTL = 5 * time.Minute

	// LongTTL 长缓存过期时间（30 分钟，适用于变化少的数据）
	LongTTL = 30 * time.Minute

	// DefaultJitter 默认 TTL 抖动系数（±10%）
	DefaultJitter = 0.1
)

// unstable 随机数生成器，用于 TTL 抖动
var unstable = mathx.NewUnstable(DefaultJitter)

// ==================== TTL 工具函数 ====================

// RandomTTL 生成带抖动的 TTL，防止缓存雪崩
//
// 大量缓存同时设置相同 TTL 会在同一时间过期，请求集中穿透到 DB。
// 添加 ±10% 随机抖动，使过期时间分散。
func RandomTTL(base time.Duration) time.Duration {
	return time.Duration(unstable.AroundDuration(base))
}

// RandomTTLSeconds 返回带抖动的 TTL（秒数），用于 Redis SETEX
func RandomTTLSeconds(base time.Duration) int {
	return int(RandomTTL(base).Seconds())
}

// ==================== Key 生成函数 ====================

// EventViewKey 活动视图缓存 Key
//
// 格式：event:view:{id}
// TTL：5min ± 10%
// 用途：缓存活动渲染视图（面板/命令响应共用）
func EventViewKey(id uint64) string {
	return fmt.Sprintf("event:view:%d", id)
}

// UserStatsKey 用户参与统计缓存 Key
//
// 格式：event:stats:user:{id}
// TTL：5min ± 10%
func UserStatsKey(userID uint64) string {
	return fmt.Sprintf("event:stats:user:%d", userID)
}
