package svc

import (
	"fmt"
	"time"

	"community-bot/app/event/bot/internal/cache"
	"community-bot/app/event/bot/internal/config"
	"community-bot/app/event/bot/internal/mq"
	"community-bot/app/event/bot/internal/platform"
	"community-bot/app/event/model"
	"community-bot/common/constants"
	"community-bot/common/messaging"

	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServiceContext struct {
	Config config.Config

	// 数据存储
	DB    *gorm.DB     // MySQL 连接
	Redis *redis.Redis // Redis 客户端

	// 高并发、熔断限流组件
	RsvpLimiter *limit.TokenLimiter
	RsvpBreaker breaker.Breaker

	// Model 层
	EventModel            *model.EventModel
	RsvpModel             *model.EventRsvpModel
	LifecycleFlagModel    *model.LifecycleFlagModel
	AttendanceRecordModel *model.AttendanceRecordModel
	PresenceSessionModel  *model.PresenceSessionModel
	StatsModel            *model.StatsModel

	// 缓存层
	ViewCache *cache.EventViewCache

	// 消息中间件（平台适配层事件交换，可禁用）
	Messaging *messaging.Client
	Producer  *mq.Producer

	// 平台协作组件（默认 Noop，适配层启动时注入真实实现）
	Resolver   platform.Resolver
	DateParser platform.DateParser
	Workspace  platform.Workspace
}

func NewServiceContext(c config.Config) *ServiceContext {
	// 1. 初始化数据库连接
	db := initDB(c.MySQL)

	// 2. 初始化业务 Redis（分布式锁、视图缓存）
	rds := initRedis(c.BizRedis)

	// 3. 初始化限流/熔断
	rsvpLimiter := limit.NewTokenLimiter(
		c.RsvpLimit.Rate,
		c.RsvpLimit.Burst,
		rds,
		constants.RsvpLimiterKey,
	)
	rsvpBreaker := breaker.NewBreaker(
		breaker.WithName(c.RsvpBreaker.Name),
	)

	// 4. 初始化消息中间件（可禁用，禁用时 Producer 为 nil 安全）
	var msgClient *messaging.Client
	if c.Messaging.Enabled {
		msgCfg := messaging.DefaultConfig()
		msgCfg.ServiceName = c.Name
		msgCfg.Redis.Addr = c.Messaging.Addr
		msgCfg.Redis.Password = c.Messaging.Password
		msgCfg.Redis.DB = c.Messaging.DB

		var err error
		msgClient, err = messaging.NewClient(msgCfg)
		if err != nil {
			logx.Errorf("消息中间件初始化失败，事件发布降级为关闭: %v", err)
			msgClient = nil
		}
	}

	return &ServiceContext{
		Config: c,

		// 数据存储
		DB:    db,
		Redis: rds,

		// 限流/熔断
		RsvpLimiter: rsvpLimiter,
		RsvpBreaker: rsvpBreaker,

		// Model 层
		EventModel:            model.NewEventModel(db),
		RsvpModel:             model.NewEventRsvpModel(db),
		LifecycleFlagModel:    model.NewLifecycleFlagModel(db),
		AttendanceRecordModel: model.NewAttendanceRecordModel(db),
		PresenceSessionModel:  model.NewPresenceSessionModel(db),
		StatsModel:            model.NewStatsModel(db),

		// 缓存层
		ViewCache: cache.NewEventViewCache(rds),

		// 消息中间件
		Messaging: msgClient,
		Producer:  mq.NewProducer(msgClient),

		// 平台协作组件（默认 Noop）
		Resolver:   platform.NewNoopResolver(),
		DateParser: platform.NewNoopDateParser(),
		Workspace:  platform.NewNoopWorkspace(),
	}
}

// SetPlatform 注入平台适配层实现（替换默认 Noop）
func (s *ServiceContext) SetPlatform(r platform.Resolver, p platform.DateParser, w platform.Workspace) {
	if r != nil {
		s.Resolver = r
	}
	if p != nil {
		s.DateParser = p
	}
	if w != nil {
		s.Workspace = w
	}
}

// ==================== 初始化函数 ====================

// initDB 初始化数据库连接
func initDB(mysqlConf config.MySQLConfig) *gorm.DB {
	dsn := buildMySQLDSN(mysqlConf)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logx.Errorf("连接数据库失败: %v", err)
		panic(err)
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	maxOpenConns := mysqlConf.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 100
	}
	maxIdleConns := mysqlConf.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10
	}
	connMaxLifetime := mysqlConf.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 3600
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	logx.Info("数据库连接成功")
	return db
}

// initRedis 初始化 Redis 连接
func initRedis(c redis.RedisConf) *redis.Redis {
	rds := redis.MustNewRedis(c)
	logx.Info("Redis 连接成功")
	return rds
}

func buildMySQLDSN(c config.MySQLConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}
