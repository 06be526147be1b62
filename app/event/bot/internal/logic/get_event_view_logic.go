package logic

import (
	"context"
	"sort"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/bot/internal/types"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
)

type GetEventViewLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewGetEventViewLogic 创建活动视图查询逻辑
func NewGetEventViewLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetEventViewLogic {
	return &GetEventViewLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetEventView 获取活动渲染视图（带缓存）
//
// 面板刷新、命令响应、HTTP API 共用同一份视图数据，
// 任何 UI 入口看到的名单都一致。
func (l *GetEventViewLogic) GetEventView(eventID uint64) (*types.EventView, error) {
	if eventID == 0 {
		return nil, errorx.New(errorx.CodeInvalidParams)
	}

	view, err := l.svcCtx.ViewCache.Get(l.ctx, eventID, func(ctx context.Context) (*types.EventView, error) {
		return l.buildView(ctx, eventID)
	})
	if err != nil {
		if err == model.ErrEventNotFound {
			return nil, errorx.ErrEventNotFound()
		}
		l.Errorf("活动视图装配失败: eventId=%d, err=%v", eventID, err)
		return nil, errorx.ErrDBError(err)
	}
	return view, nil
}

// buildView 回源装配视图
func (l *GetEventViewLogic) buildView(ctx context.Context, eventID uint64) (*types.EventView, error) {
	event, err := l.svcCtx.EventModel.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rsvps, err := l.svcCtx.RsvpModel.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return AssembleEventView(event, rsvps), nil
}

// AssembleEventView 由活动与名单装配视图（纯函数）
//
// 名单按状态分组；确认与候补组内按最后一次状态变更时间升序，
// 候补组的顺序即补位顺序。
func AssembleEventView(event *model.Event, rsvps []model.EventRsvp) *types.EventView {
	view := &types.EventView{
		EventID:       event.ID,
		Title:         event.Title,
		Description:   event.Description,
		Category:      event.Category,
		CategoryText:  model.CategoryText[event.Category],
		ScheduledTime: event.ScheduledTime,
		Capacity:      event.Capacity,
		Status:        event.Status,
		CreatorID:     event.CreatorID,
		VenueRef:      event.VenueRef,
		MessageRef:    event.MessageRef,
		RoleRef:       event.RoleRef,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}

	groups := map[int8]*[]types.RosterEntry{
		model.RsvpConfirmed: &view.Confirmed,
		model.RsvpWaitlist:  &view.Waitlist,
		model.RsvpMaybe:     &view.Maybe,
		model.RsvpAbsent:    &view.Absent,
	}
	for _, r := range rsvps {
		bucket, ok := groups[r.Status]
		if !ok {
			continue
		}
		*bucket = append(*bucket, types.RosterEntry{
			UserID:    r.UserID,
			UpdatedAt: r.UpdatedAt,
		})
	}
	for _, bucket := range groups {
		entries := *bucket
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].UpdatedAt != entries[j].UpdatedAt {
				return entries[i].UpdatedAt < entries[j].UpdatedAt
			}
			return entries[i].UserID < entries[j].UserID
		})
	}

	if event.Capacity > 0 && uint32(len(view.Confirmed)) < event.Capacity {
		view.FreeSlots = event.Capacity - uint32(len(view.Confirmed))
	}
	return view
}
