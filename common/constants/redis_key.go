package constants

import "time"

// Redis Key 前缀规范
// 格式: {业务}:{模块}:{具体标识}
// 示例: event:view:123, event:lock:lifecycle:tick

const (
	// ============ 活动服务 Redis Key ============

	// CacheEventViewPrefix 活动视图缓存前缀
	CacheEventViewPrefix = "event:view:"
	// LockLifecyclePrefix 生命周期定时任务分布式锁前缀
	LockLifecyclePrefix = "event:lock:lifecycle:"
	// LockRsvpPrefix 报名分布式锁前缀
	LockRsvpPrefix = "event:lock:rsvp:"
	// RsvpLimiterKey 报名限流器 Key
	RsvpLimiterKey = "event:rsvp:limiter"

	// ============ 在场网关 Redis Key ============

	// PresenceVenuePrefix 场地在场集合前缀
	// 格式: presence:venue:{venueRef} -> SET(userID)
	PresenceVenuePrefix = "presence:venue:"
	// PresenceUserPrefix 用户在场状态前缀
	PresenceUserPrefix = "presence:user:"
)

// ============ 缓存过期时间 ============

const (
	// CacheExpireDefault 默认缓存过期时间
	CacheExpireDefault = 30 * time.Minute
	// CacheExpireShort 短期缓存（热点数据）
	CacheExpireShort = 5 * time.Minute
	// LockExpireDefault 分布式锁默认过期时间
	LockExpireDefault = 10 * time.Second
	// PresenceKeyExpire 在场镜像 Key 过期时间
	PresenceKeyExpire = 6 * time.Hour
)
