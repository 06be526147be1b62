package logic

import (
	"context"
	"time"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/bot/internal/types"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type UpdateEventLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewUpdateEventLogic 创建活动修改逻辑
func NewUpdateEventLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateEventLogic {
	return &UpdateEventLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// UpdateEvent 修改活动（标题/描述/类别/时间/名额）
//
// 关键语义：
//   - 改期时在同一事务内重置全部提醒标记，新时间的提醒重新生效
//   - 名额调大时立即触发候补补位，调小不得低于当前确认人数
//   - 已完结活动不可修改
func (l *UpdateEventLogic) UpdateEvent(req *types.UpdateEventReq) (*model.Event, error) {
	if req.EventID == 0 || req.OperatorID == 0 {
		return nil, errorx.New(errorx.CodeInvalidParams)
	}
	if req.ScheduledTime != 0 && req.ScheduledTime <= time.Now().Unix() {
		return nil, errorx.ErrScheduleInvalid()
	}

	var (
		updated    *model.Event
		promotions []promotion
	)
	err := l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
		event, err := l.svcCtx.EventModel.FindByIDForUpdate(l.ctx, tx, req.EventID)
		if err != nil {
			return err
		}
		if !event.IsActive() {
			return model.ErrEventStatusInvalid
		}

		rescheduled := req.ScheduledTime != 0 && req.ScheduledTime != event.ScheduledTime
		capacityGrew := req.Capacity != 0 && req.Capacity > event.Capacity

		// 名额调小不得低于当前确认人数，否则确认名单持久超员且无法自愈
		if req.Capacity != 0 && req.Capacity < event.Capacity {
			if err := checkCapacityShrink(l.ctx, l.svcCtx.RsvpModel, tx, event.ID, req.Capacity); err != nil {
				return err
			}
		}

		if req.Title != "" {
			event.Title = req.Title
		}
		if req.Description != "" {
			event.Description = req.Description
		}
		if req.Category != 0 {
			event.Category = req.Category
		}
		if req.ScheduledTime != 0 {
			event.ScheduledTime = req.ScheduledTime
		}
		if req.Capacity != 0 {
			event.Capacity = req.Capacity
		}

		if err := tx.Model(&model.Event{}).
			Where("id = ? AND version = ?", event.ID, event.Version).
			Updates(map[string]interface{}{
				"title":          event.Title,
				"description":    event.Description,
				"category":       event.Category,
				"scheduled_time": event.ScheduledTime,
				"capacity":       event.Capacity,
				"version":        gorm.Expr("version + 1"),
			}).Error; err != nil {
			return err
		}
		event.Version++

		// 改期：重置全部提醒标记，确保新时间的提醒重新触发
		if rescheduled {
			if err := l.svcCtx.LifecycleFlagModel.ResetAll(l.ctx, tx, event.ID); err != nil {
				return err
			}
		}

		// 名额调大：候补队头依次补位
		if capacityGrew {
			promoted, err := promoteWaitlist(l.ctx, l.svcCtx.RsvpModel, tx, event)
			if err != nil {
				return err
			}
			promotions = promoted
		}

		updated = event
		return nil
	})
	if err != nil {
		switch err {
		case model.ErrEventNotFound:
			return nil, errorx.ErrEventNotFound()
		case model.ErrEventStatusInvalid:
			return nil, errorx.ErrEventCompleted()
		case model.ErrCapacityBelowRoster:
			return nil, errorx.ErrCapacityShrink()
		default:
			l.Errorf("活动修改失败: eventId=%d, err=%v", req.EventID, err)
			return nil, errorx.ErrDBError(err)
		}
	}

	// 事务外联动：缓存失效、补位通知、面板刷新、修改事件
	l.svcCtx.ViewCache.Invalidate(l.ctx, updated.ID)
	for _, p := range promotions {
		l.svcCtx.Producer.PublishMemberJoined(l.ctx, updated.ID, p.userID, model.RsvpConfirmed, updated.RoleRef)
	}
	if updated.MessageRef != "" {
		content := NewCreateEventLogic(l.ctx, l.svcCtx).panelContent(updated)
		if err := l.svcCtx.Workspace.EditMessage(l.ctx, updated.MessageRef, content); err != nil {
			l.Errorf("刷新报名面板失败: eventId=%d, err=%v", updated.ID, err)
		}
	}
	l.svcCtx.Producer.PublishEventUpdated(l.ctx, updated.ID, req.OperatorID)

	l.Infof("活动修改成功: eventId=%d, operator=%d", updated.ID, req.OperatorID)
	return updated, nil
}
