// Package hub 管理在场网关的 WebSocket 连接。
//
// 在场语义：
//   - 客户端进入/离开活动语音频道时上报 presence.join / presence.leave
//   - 会话落库（供出席采集读取），Redis 维护一份频道在场名单镜像
//   - 连接断开视为离开所有频道，避免僵尸会话
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"community-bot/app/presence/ws/internal/types"
	"community-bot/common/constants"
)

var (
	ErrSendBufferFull = errors.New("发送缓冲区已满")
	ErrClientClosed   = errors.New("连接已关闭")
)

// PresenceHandler 在场消息处理器接口
type PresenceHandler interface {
	HandleAuth(client *Client, msg *types.WSMessage) error
	HandleJoin(client *Client, msg *types.WSMessage) error
	HandleLeave(client *Client, msg *types.WSMessage) error
	HandleDisconnect(client *Client)
}

// Hub 连接管理中心
type Hub struct {
	// 已注册的客户端
	clients map[uint64]*Client // userID -> Client

	// 注册请求
	register chan *Client

	// 注销请求
	unregister chan *Client

	// 在场消息处理器
	handler PresenceHandler

	// Redis 客户端（在场名单镜像）
	redisClient *redis.Client

	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub(handler PresenceHandler, redisClient *redis.Client) *Hub {
	return &Hub{
		clients:     make(map[uint64]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		handler:     handler,
		redisClient: redisClient,
	}
}

// Run 运行 Hub
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			logx.Info("Hub 正在关闭")
			return
		}
	}
}

// Register 获取注册通道
func (h *Hub) Register() chan<- *Client {
	return h.register
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.userID != 0 {
		// 如果用户已有连接，关闭旧连接（写协程收到信号后自行收尾）
		if oldClient, exists := h.clients[client.userID]; exists {
			oldClient.Close()
		}
		h.clients[client.userID] = client
		logx.Infof("用户 %d 已连接", client.userID)
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if client.userID != 0 {
		if current, exists := h.clients[client.userID]; exists && current == client {
			delete(h.clients, client.userID)
			logx.Infof("用户 %d 已断开连接", client.userID)
		}
	}
	h.mu.Unlock()
	client.Close()

	// 断开即离开所有在场频道，防止僵尸会话
	if client.userID != 0 {
		h.handler.HandleDisconnect(client)
	}
}

// BindClient 认证成功后把客户端挂到用户ID上
func (h *Hub) BindClient(client *Client) {
	h.register <- client
}

// handleClientMessage 处理客户端消息
func (h *Hub) handleClientMessage(client *Client, msg *types.WSMessage) {
	var err error

	switch msg.Type {
	case types.TypePing:
		// 心跳响应
		client.SendMessage(&types.WSMessage{
			Type:      types.TypePong,
			Timestamp: time.Now().Unix(),
		})
		return

	case types.TypeAuth:
		err = h.handler.HandleAuth(client, msg)

	case types.TypeJoin:
		err = h.handler.HandleJoin(client, msg)

	case types.TypeLeave:
		err = h.handler.HandleLeave(client, msg)

	default:
		client.SendError(400, "未知的消息类型")
		return
	}

	if err != nil {
		logx.Errorf("处理消息错误: %v", err)
		client.SendError(500, err.Error())
	}
}

// GetOnlineUserCount 获取在线用户数
func (h *Hub) GetOnlineUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ==================== 在场名单 Redis 镜像 ====================

// MirrorJoin 把用户写入频道在场集合
func (h *Hub) MirrorJoin(ctx context.Context, venueRef string, userID uint64) {
	key := constants.PresenceVenuePrefix + venueRef
	if err := h.redisClient.SAdd(ctx, key, userID).Err(); err != nil {
		logx.Errorf("在场镜像写入失败: venue=%s, user=%d, err=%v", venueRef, userID, err)
		return
	}
	h.redisClient.Expire(ctx, key, constants.PresenceKeyExpire)
}

// MirrorLeave 把用户移出频道在场集合
func (h *Hub) MirrorLeave(ctx context.Context, venueRef string, userID uint64) {
	key := constants.PresenceVenuePrefix + venueRef
	if err := h.redisClient.SRem(ctx, key, userID).Err(); err != nil {
		logx.Errorf("在场镜像移除失败: venue=%s, user=%d, err=%v", venueRef, userID, err)
	}
}
