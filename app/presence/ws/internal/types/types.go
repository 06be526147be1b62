package types

import "encoding/json"

// MessageType 消息类型
type MessageType string

const (
	// 客户端 -> 服务端
	TypePing  MessageType = "ping"           // 心跳
	TypeAuth  MessageType = "auth"           // 认证
	TypeJoin  MessageType = "presence.join"  // 进入活动频道
	TypeLeave MessageType = "presence.leave" // 离开活动频道

	// 服务端 -> 客户端
	TypePong        MessageType = "pong"         // 心跳响应
	TypeAuthSuccess MessageType = "auth_success" // 认证成功
	TypeAuthFailed  MessageType = "auth_failed"  // 认证失败
	TypeAck         MessageType = "ack"          // 操作确认
	TypeError       MessageType = "error"        // 错误消息
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`           // 消息类型
	Timestamp int64           `json:"timestamp"`      // 时间戳
	Data      json.RawMessage `json:"data,omitempty"` // 消息数据
}

// AuthData 认证数据
type AuthData struct {
	Token string `json:"token"` // JWT Token
}

// JoinData 进入频道数据
type JoinData struct {
	VenueRef string `json:"venue_ref"` // 活动频道引用
}

// LeaveData 离开频道数据
type LeaveData struct {
	VenueRef string `json:"venue_ref"` // 活动频道引用
}

// AckData 确认数据
type AckData struct {
	Action   string `json:"action"`    // 确认的客户端操作
	VenueRef string `json:"venue_ref"` // 相关频道
	Success  bool   `json:"success"`   // 是否成功
}

// ErrorData 错误数据
type ErrorData struct {
	Code    int    `json:"code"`    // 错误码
	Message string `json:"message"` // 错误信息
}
