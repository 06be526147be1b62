package config

import (
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

type Config struct {
	service.ServiceConf // go-zero 基础服务配置（含 Log、Telemetry 等）

	// 数据存储
	MySQL    MySQLConfig     // MySQL 配置
	BizRedis redis.RedisConf // 业务 Redis 配置（分布式锁、视图缓存）

	// 消息中间件（与平台适配层交换事件）
	Messaging MessagingConfig

	// 生命周期调度
	Lifecycle LifecycleConfig

	// 报名限流/熔断
	RsvpLimit   RsvpLimitConfig
	RsvpBreaker RsvpBreakerConfig
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	Host            string `json:",default=127.0.0.1"`
	Port            int    `json:",default=3306"`
	Username        string
	Password        string
	Database        string
	MaxOpenConns    int `json:",default=100"`  // 最大打开连接数
	MaxIdleConns    int `json:",default=10"`   // 最大空闲连接数
	ConnMaxLifetime int `json:",default=3600"` // 连接生命周期（秒）
}

// MessagingConfig 消息中间件配置（Redis Streams）
type MessagingConfig struct {
	Enabled  bool   `json:",default=true"`
	Addr     string `json:",default=localhost:6379"`
	Password string `json:",optional"`
	DB       int    `json:",default=0"`
}

// LifecycleConfig 生命周期调度配置
// 窗口宽度必须不小于 3 倍执行间隔，否则迟到的一轮可能整窗跳过
type LifecycleConfig struct {
	IntervalSeconds      int `json:",default=60"`  // 执行间隔（秒）
	GraceMinutes         int `json:",default=60"`  // 开始后多少分钟判定完结（完结前做最终出席采集）
	CaptureWindowMinutes int `json:",default=180"` // 连续出席采集窗口（分钟）
	StaleSessionHours    int `json:",default=6"`   // 在场会话超时回收（小时）
}

// RsvpLimitConfig 报名限流配置
type RsvpLimitConfig struct {
	Rate  int `json:",default=100"` // 每秒允许的请求数
	Burst int `json:",default=200"` // 突发容量
}

// RsvpBreakerConfig 报名熔断配置
type RsvpBreakerConfig struct {
	Name string `json:",default=event-rsvp"` // 熔断器名称
}
