package mq

import (
	"context"
	"encoding/json"
	"time"

	"community-bot/app/event/model"
	"community-bot/common/messaging"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// Producer 活动服务消息发布器
// nil 安全：Producer 或 Client 为 nil 时所有方法静默返回
type Producer struct {
	client *messaging.Client
}

// NewProducer 创建消息发布器
func NewProducer(client *messaging.Client) *Producer {
	if client == nil {
		return nil
	}
	return &Producer{client: client}
}

// publishAsync 异步发布事件（核心方法）
// - 开新 goroutine，不阻塞调用方
// - defer recover 防 panic 传播
// - 3 秒超时防 goroutine 泄漏
// - 发布失败只记日志，不回滚已提交的状态变更（宁可漏发一条，不可重复骚扰）
func (p *Producer) publishAsync(topic string, payload interface{}) {
	if p == nil || p.client == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logx.Errorf("[MQ-Producer] panic recovered: topic=%s, err=%v", topic, r)
			}
		}()

		data, err := json.Marshal(payload)
		if err != nil {
			logx.Errorf("[MQ-Producer] 序列化失败: topic=%s, err=%v", topic, err)
			return
		}

		pubCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := p.client.Publish(pubCtx, topic, data); err != nil {
			logx.Errorf("[MQ-Producer] 发布失败: topic=%s, err=%v", topic, err)
			return
		}

		logx.Infof("[MQ-Producer] 发布成功: topic=%s, size=%d", topic, len(data))
	}()
}

// ==================== 活动事件（平台适配层消费）====================

// PublishEventCreated 发布活动创建事件
func (p *Producer) PublishEventCreated(ctx context.Context, ev *model.Event) {
	p.publishAsync(messaging.TopicEventCreated, messaging.EventCreatedEvent{
		EventID:       ev.ID,
		CreatorID:     ev.CreatorID,
		Title:         ev.Title,
		Category:      int(ev.Category),
		ScheduledTime: time.Unix(ev.ScheduledTime, 0).UTC(),
		Capacity:      ev.Capacity,
		CreatedAt:     time.Now(),
	})
}

// PublishEventUpdated 发布活动修改事件
func (p *Producer) PublishEventUpdated(ctx context.Context, eventID, updatedBy uint64) {
	p.publishAsync(messaging.TopicEventUpdated, messaging.EventUpdatedEvent{
		EventID:   eventID,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now(),
	})
}

// PublishEventDeleted 发布活动删除事件（携带待清理的平台锚点）
func (p *Producer) PublishEventDeleted(ctx context.Context, ev *model.Event) {
	p.publishAsync(messaging.TopicEventDeleted, messaging.EventDeletedEvent{
		EventID:         ev.ID,
		VenueRef:        ev.VenueRef,
		RoleRef:         ev.RoleRef,
		MessageRef:      ev.MessageRef,
		AnnouncementRef: ev.AnnouncementRef,
		DeletedAt:       time.Now(),
	})
}

// PublishMemberJoined 发布加入事件（确认/候补 → 授予身份组）
func (p *Producer) PublishMemberJoined(ctx context.Context, eventID, userID uint64, status int8, roleRef string) {
	p.publishAsync(messaging.TopicMemberJoined, messaging.MemberJoinedEvent{
		EventID:  eventID,
		UserID:   userID,
		Status:   int(status),
		RoleRef:  roleRef,
		JoinedAt: time.Now(),
	})
}

// PublishMemberLeft 发布退出事件（待定/不参加 → 收回身份组）
func (p *Producer) PublishMemberLeft(ctx context.Context, eventID, userID uint64, roleRef string) {
	p.publishAsync(messaging.TopicMemberLeft, messaging.MemberLeftEvent{
		EventID: eventID,
		UserID:  userID,
		RoleRef: roleRef,
		LeftAt:  time.Now(),
	})
}

// PublishReminder 发布提醒事件
// targetUserIDs 为空表示面向频道广播
func (p *Producer) PublishReminder(ctx context.Context, ev *model.Event, kind string, targetUserIDs []uint64) {
	p.publishAsync(messaging.TopicEventReminder, messaging.ReminderEvent{
		EventID:       ev.ID,
		Kind:          kind,
		Title:         ev.Title,
		ScheduledTime: time.Unix(ev.ScheduledTime, 0).UTC(),
		VenueRef:      ev.VenueRef,
		TargetUserIDs: targetUserIDs,
		FiredAt:       time.Now(),
	})
}

// PublishCompleted 发布完结总结事件
func (p *Producer) PublishCompleted(ctx context.Context, ev *model.Event, roster []messaging.CompletedAttendee) {
	p.publishAsync(messaging.TopicEventCompleted, messaging.CompletedEvent{
		ReportID:    uuid.New().String(),
		EventID:     ev.ID,
		Title:       ev.Title,
		VenueRef:    ev.VenueRef,
		RoleRef:     ev.RoleRef,
		Roster:      roster,
		CompletedAt: time.Now(),
	})
}

// Close 关闭 Producer 底层客户端
func (p *Producer) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
