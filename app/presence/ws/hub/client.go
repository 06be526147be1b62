package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"community-bot/app/presence/ws/internal/types"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second
	// 心跳超时时间
	pongWait = 60 * time.Second
	// Ping 间隔 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10
	// 最大消息大小（在场帧都很小）
	maxMessageSize = 4 * 1024
)

// Client WebSocket 客户端
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{} // 关闭信号，send 通道本身永不 close
	userID   uint64
	venues   map[string]bool // 当前在场的活动频道
	mu       sync.RWMutex
	once     sync.Once
	isAuthed bool
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		venues: make(map[string]bool),
	}
}

// Close 标记连接关闭并通知写协程退出（可重复调用）
//
// 不直接 close(send)：并发中的 SendMessage 可能正在向它写入，
// 向已关闭通道发送会 panic。改为关闭 done，由写协程收尾。
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logx.Errorf("WebSocket 错误: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 批量写入队列中的消息
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msg *types.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		logx.Errorf("用户 %d 的发送缓冲区已满", c.userID)
		return ErrSendBufferFull
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(message []byte) {
	var msg types.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.SendError(400, "消息格式错误")
		return
	}

	// 未认证只能发送认证消息和心跳
	if !c.IsAuthed() && msg.Type != types.TypeAuth && msg.Type != types.TypePing {
		c.SendError(401, "未授权，请先认证")
		return
	}

	c.hub.handleClientMessage(c, &msg)
}

// SendError 发送错误消息
func (c *Client) SendError(code int, message string) {
	errData := types.ErrorData{
		Code:    code,
		Message: message,
	}
	data, _ := json.Marshal(errData)

	msg := &types.WSMessage{
		Type:      types.TypeError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	c.SendMessage(msg)
}

// SetUserID 设置用户ID
func (c *Client) SetUserID(userID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// GetUserID 获取用户ID
func (c *Client) GetUserID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetAuthed 设置认证状态
func (c *Client) SetAuthed(authed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isAuthed = authed
}

// IsAuthed 是否已认证
func (c *Client) IsAuthed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isAuthed
}

// EnterVenue 记录进入频道
func (c *Client) EnterVenue(venueRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.venues[venueRef] = true
}

// ExitVenue 记录离开频道
func (c *Client) ExitVenue(venueRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.venues, venueRef)
}

// OpenVenues 当前在场的所有频道
func (c *Client) OpenVenues() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.venues))
	for ref := range c.venues {
		out = append(out, ref)
	}
	return out
}
