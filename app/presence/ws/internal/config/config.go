package config

import (
	"github.com/zeromicro/go-zero/rest"
)

// Config 在场网关服务配置
type Config struct {
	rest.RestConf

	// MySQL 配置（在场会话落库，供出席采集读取）
	MySQL MySQLConf

	// Redis 配置（在场名单镜像）
	Redis RedisConf

	// JWT 认证配置
	Auth AuthConf

	// WebSocket 配置
	WebSocket WebSocketConf
}

// MySQLConf 数据库配置
type MySQLConf struct {
	Host            string `json:",default=127.0.0.1"`
	Port            int    `json:",default=3306"`
	Username        string
	Password        string
	Database        string
	MaxOpenConns    int `json:",default=50"`
	MaxIdleConns    int `json:",default=10"`
	ConnMaxLifetime int `json:",default=3600"`
}

// RedisConf Redis 配置
type RedisConf struct {
	Host string
	Pass string `json:",optional"`
	DB   int    `json:",default=0"`
}

// AuthConf 认证配置
type AuthConf struct {
	AccessSecret string
	AccessExpire int64
}

// WebSocketConf WebSocket 配置
type WebSocketConf struct {
	// 最大连接数
	MaxConnections int `json:",default=10000"`
	// 读取超时（秒）
	ReadTimeout int `json:",default=60"`
	// 写入超时（秒）
	WriteTimeout int `json:",default=10"`
	// 心跳间隔（秒）
	HeartbeatInterval int `json:",default=30"`
}
