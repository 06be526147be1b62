package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"community-bot/app/event/bot/internal/types"
	"community-bot/common/errorx"
	"community-bot/common/messaging"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/zeromicro/go-zero/core/logx"
)

// RsvpHandler RSVP 请求处理能力（由 logic 层实现，避免包级循环依赖）
type RsvpHandler interface {
	Handle(ctx context.Context, req *types.SetRsvpStatusReq) error
}

// RsvpRequestedConsumer RSVP 请求命令消费者
//
// 平台适配层把按钮点击、斜杠命令、HTTP 调用统一折算成
// rsvp.requested 命令投递到此处，所有入口共享同一套语义。
type RsvpRequestedConsumer struct {
	handler RsvpHandler
	logger  logx.Logger
}

// NewRsvpRequestedConsumer 创建 RSVP 命令消费者
func NewRsvpRequestedConsumer(handler RsvpHandler) *RsvpRequestedConsumer {
	return &RsvpRequestedConsumer{
		handler: handler,
		logger:  logx.WithContext(context.Background()),
	}
}

// Subscribe 订阅 rsvp.requested 命令
func (c *RsvpRequestedConsumer) Subscribe(msgClient *messaging.Client) {
	if msgClient == nil {
		return
	}
	msgClient.Subscribe(messaging.TopicRsvpRequested, "event-rsvp-handler", c.handleRsvpRequested)
	c.logger.Info("已订阅 rsvp.requested 命令")
}

func (c *RsvpRequestedConsumer) handleRsvpRequested(msg *message.Message) error {
	var cmd messaging.RsvpRequestedCommand
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		c.logger.Errorf("解析 RSVP 命令失败: %v", err)
		return messaging.NewNonRetryableError(fmt.Errorf("解析命令失败: %w", err))
	}

	c.logger.Infof("收到 RSVP 命令: event_id=%d, user_id=%d, status=%d", cmd.EventID, cmd.UserID, cmd.Status)

	err := c.handler.Handle(msg.Context(), &types.SetRsvpStatusReq{
		EventID: cmd.EventID,
		UserID:  cmd.UserID,
		Status:  int8(cmd.Status),
	})
	if err != nil {
		// 业务校验失败是确定性失败，重试不会改变结果
		if _, ok := err.(*errorx.BizError); ok {
			c.logger.Infof("RSVP 命令被拒绝: event_id=%d, user_id=%d, err=%v", cmd.EventID, cmd.UserID, err)
			return messaging.NewNonRetryableError(err)
		}
		c.logger.Errorf("RSVP 命令处理失败: event_id=%d, user_id=%d, err=%v", cmd.EventID, cmd.UserID, err)
		return messaging.NewRetryableError(err)
	}
	return nil
}
