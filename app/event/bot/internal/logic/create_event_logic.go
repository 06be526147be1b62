package logic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/bot/internal/types"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
)

type CreateEventLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewCreateEventLogic 创建活动创建逻辑
func NewCreateEventLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateEventLogic {
	return &CreateEventLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CreateEvent 创建活动
//
// 流程：
//  1. 活动名称/时间交由注入的解析器处理，核心不做文本归一化
//  2. 名额取请求值，缺省回落到解析出的默认名额
//  3. 落库后由平台侧创建专属频道、身份组与报名面板（尽力而为）
//  4. 创建者自动以"参加"身份入列
func (l *CreateEventLogic) CreateEvent(req *types.CreateEventReq) (*model.Event, error) {
	if req.CreatorID == 0 || strings.TrimSpace(req.ActivityText) == "" {
		return nil, errorx.New(errorx.CodeInvalidParams)
	}

	// 1. 解析活动名称
	resolved, err := l.svcCtx.Resolver.ResolveActivity(l.ctx, req.ActivityText)
	if err != nil {
		l.Infof("活动名称解析失败: text=%q, err=%v", req.ActivityText, err)
		return nil, errorx.ErrEventNotResolved()
	}

	// 2. 解析活动时间（必须在未来）
	scheduledAt, err := l.svcCtx.DateParser.ParseDatetime(l.ctx, req.TimeText)
	if err != nil {
		l.Infof("活动时间解析失败: text=%q, err=%v", req.TimeText, err)
		return nil, errorx.ErrScheduleInvalid()
	}
	if !scheduledAt.After(time.Now()) {
		return nil, errorx.ErrScheduleInvalid()
	}

	// 3. 确定名额：请求值优先，缺省用解析出的默认名额；两者都没有则拒绝
	capacity := req.Capacity
	if capacity == 0 {
		capacity = resolved.DefaultCapacity
	}
	if capacity == 0 {
		return nil, errorx.ErrCapacityInvalid()
	}

	event := &model.Event{
		Title:         resolved.CanonicalName,
		Description:   req.Description,
		Category:      resolved.Category,
		ScheduledTime: scheduledAt.Unix(),
		Capacity:      capacity,
		CreatorID:     req.CreatorID,
		Status:        model.StatusActive,
	}
	if err := l.svcCtx.EventModel.Create(l.ctx, event); err != nil {
		l.Errorf("活动落库失败: title=%s, err=%v", event.Title, err)
		return nil, errorx.ErrDBError(err)
	}

	// 4. 初始化生命周期标记（惰性创建亦可，这里提前建好）
	if _, err := l.svcCtx.LifecycleFlagModel.GetOrCreate(l.ctx, event.ID); err != nil {
		l.Errorf("生命周期标记初始化失败: eventId=%d, err=%v", event.ID, err)
	}

	// 5. 平台侧装配：频道、身份组、报名面板（任何一步失败不影响活动本身）
	l.provisionWorkspace(event)

	// 6. 创建者自动报名"参加"
	if _, err := NewSetRsvpStatusLogic(l.ctx, l.svcCtx).SetRsvpStatus(&types.SetRsvpStatusReq{
		EventID: event.ID,
		UserID:  req.CreatorID,
		Status:  model.RsvpConfirmed,
	}); err != nil {
		l.Errorf("创建者自动报名失败: eventId=%d, userId=%d, err=%v", event.ID, req.CreatorID, err)
	}

	// 7. 发布创建事件
	l.svcCtx.Producer.PublishEventCreated(l.ctx, event)

	l.Infof("活动创建成功: eventId=%d, title=%s, scheduledAt=%d, capacity=%d",
		event.ID, event.Title, event.ScheduledTime, event.Capacity)
	return event, nil
}

// provisionWorkspace 创建平台侧锚点并回写
func (l *CreateEventLogic) provisionWorkspace(event *model.Event) {
	venueRef, err := l.svcCtx.Workspace.CreateVenue(l.ctx, event.Title, event.Category)
	if err != nil {
		l.Errorf("创建活动频道失败: eventId=%d, err=%v", event.ID, err)
	}

	roleRef, err := l.svcCtx.Workspace.CreateRoleAnchor(l.ctx, event.Title)
	if err != nil {
		l.Errorf("创建活动身份组失败: eventId=%d, err=%v", event.ID, err)
	}

	var messageRef string
	if venueRef != "" {
		messageRef, err = l.svcCtx.Workspace.SendMessage(l.ctx, venueRef, l.panelContent(event))
		if err != nil {
			l.Errorf("发布报名面板失败: eventId=%d, err=%v", event.ID, err)
		}
	}

	if venueRef == "" && roleRef == "" && messageRef == "" {
		return
	}
	if err := l.svcCtx.EventModel.UpdateAnchors(l.ctx, event.ID, venueRef, "", messageRef, roleRef); err != nil {
		l.Errorf("回写平台锚点失败: eventId=%d, err=%v", event.ID, err)
		return
	}
	event.VenueRef = venueRef
	event.MessageRef = messageRef
	event.RoleRef = roleRef
}

// panelContent 报名面板文案（适配层可按需重新渲染，这里给出兜底文本）
func (l *CreateEventLogic) panelContent(event *model.Event) string {
	return fmt.Sprintf("【%s】%s\n时间: %s\n名额: %d",
		model.CategoryText[event.Category],
		event.Title,
		time.Unix(event.ScheduledTime, 0).Format("2006-01-02 15:04"),
		event.Capacity,
	)
}
