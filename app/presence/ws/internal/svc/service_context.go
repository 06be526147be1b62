package svc

import (
	"fmt"
	"time"

	"community-bot/app/event/model"
	"community-bot/app/presence/ws/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ServiceContext 服务上下文
type ServiceContext struct {
	Config      config.Config
	JwtAuth     *JwtAuth
	RedisClient *redis.Client

	// 在场会话落库，出席采集从这里读取
	SessionModel *model.PresenceSessionModel
}

// NewServiceContext 创建服务上下文
func NewServiceContext(c config.Config) *ServiceContext {
	db := initDB(c.MySQL)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Host,
		Password: c.Redis.Pass,
		DB:       c.Redis.DB,
	})

	return &ServiceContext{
		Config:       c,
		JwtAuth:      NewJwtAuth(c.Auth.AccessSecret),
		RedisClient:  redisClient,
		SessionModel: model.NewPresenceSessionModel(db),
	}
}

// initDB 初始化数据库连接
func initDB(c config.MySQLConf) *gorm.DB {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database,
	)
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logx.Errorf("连接数据库失败: %v", err)
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetime) * time.Second)

	logx.Info("数据库连接成功")
	return db
}
