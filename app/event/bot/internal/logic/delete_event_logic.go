package logic

import (
	"context"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type DeleteEventLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewDeleteEventLogic 创建活动删除逻辑
func NewDeleteEventLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteEventLogic {
	return &DeleteEventLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// DeleteEvent 删除活动（级联清理）
//
// 同一事务内删除活动、名单、生命周期标记与出席记录，
// 平台侧锚点（频道/身份组/面板）在事务提交后异步清理。
func (l *DeleteEventLogic) DeleteEvent(eventID, operatorID uint64) error {
	if eventID == 0 {
		return errorx.New(errorx.CodeInvalidParams)
	}

	var event *model.Event
	err := l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
		ev, err := l.svcCtx.EventModel.FindByIDForUpdate(l.ctx, tx, eventID)
		if err != nil {
			return err
		}
		event = ev

		if err := l.svcCtx.RsvpModel.DeleteByEvent(l.ctx, tx, eventID); err != nil {
			return err
		}
		if err := l.svcCtx.LifecycleFlagModel.DeleteByEvent(l.ctx, tx, eventID); err != nil {
			return err
		}
		if err := l.svcCtx.AttendanceRecordModel.DeleteByEvent(l.ctx, tx, eventID); err != nil {
			return err
		}
		return l.svcCtx.EventModel.Delete(l.ctx, tx, eventID)
	})
	if err != nil {
		if err == model.ErrEventNotFound {
			return errorx.ErrEventNotFound()
		}
		l.Errorf("活动删除失败: eventId=%d, err=%v", eventID, err)
		return errorx.ErrDBError(err)
	}

	// 事务外联动
	l.svcCtx.ViewCache.Invalidate(l.ctx, eventID)
	l.cleanupAnchors(event)
	l.svcCtx.Producer.PublishEventDeleted(l.ctx, event)

	l.Infof("活动删除成功: eventId=%d, operator=%d", eventID, operatorID)
	return nil
}

// cleanupAnchors 清理平台侧锚点（尽力而为）
func (l *DeleteEventLogic) cleanupAnchors(event *model.Event) {
	for _, ref := range []string{event.MessageRef, event.AnnouncementRef, event.RoleRef, event.VenueRef} {
		if ref == "" {
			continue
		}
		if err := l.svcCtx.Workspace.Delete(l.ctx, ref); err != nil {
			l.Errorf("清理平台锚点失败: eventId=%d, ref=%s, err=%v", event.ID, ref, err)
		}
	}
}
