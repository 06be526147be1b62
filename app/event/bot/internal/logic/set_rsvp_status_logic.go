package logic

import (
	"context"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/bot/internal/types"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type SetRsvpStatusLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewSetRsvpStatusLogic 创建 RSVP 状态变更逻辑
func NewSetRsvpStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SetRsvpStatusLogic {
	return &SetRsvpStatusLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// SetRsvpStatus 设置用户对活动的 RSVP 状态
//
// 语义：
//   - 同一用户对同一活动只有一条记录，重复操作为覆盖（幂等）
//   - 满员时请求"参加"自动降级为候补，排队按最后一次状态变更时间先到先得
//   - 任何释放确认名额的变更在同一事务内触发候补队头补位
//   - 名单变更后的身份组授予/收回与面板刷新交给平台适配层，失败不回滚名单
func (l *SetRsvpStatusLogic) SetRsvpStatus(req *types.SetRsvpStatusReq) (*types.SetRsvpStatusResp, error) {
	if req.EventID == 0 || req.UserID == 0 {
		return nil, errorx.New(errorx.CodeInvalidParams)
	}
	if !model.IsValidRsvpStatus(req.Status) {
		return nil, errorx.ErrRsvpStatusInvalid()
	}

	// ==================== 第一步：限流检查 ====================
	if !l.svcCtx.RsvpLimiter.AllowCtx(l.ctx) {
		return nil, errorx.ErrRsvpLimited()
	}

	var (
		outcome *rsvpOutcome
		event   *model.Event
	)

	// ==================== 第二步：熔断保护下的事务 ====================
	err := l.svcCtx.RsvpBreaker.DoWithFallbackAcceptable(
		func() error {
			return l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
				// 行锁定活动，序列化同一活动的并发 RSVP
				ev, err := l.svcCtx.EventModel.FindByIDForUpdate(l.ctx, tx, req.EventID)
				if err != nil {
					return err
				}
				if !ev.IsActive() {
					return model.ErrEventStatusInvalid
				}
				event = ev

				// 状态机判定与落库
				out, err := applyRsvpChange(l.ctx, l.svcCtx.RsvpModel, tx, ev, req.UserID, req.Status)
				if err != nil {
					return err
				}
				outcome = out
				return nil
			})
		},
		func(err error) error {
			return breaker.ErrServiceUnavailable
		},
		func(err error) bool {
			// 业务校验失败不计入熔断统计
			return err == nil ||
				err == model.ErrEventNotFound ||
				err == model.ErrEventStatusInvalid
		},
	)
	if err != nil {
		switch err {
		case model.ErrEventNotFound:
			return nil, errorx.ErrEventNotFound()
		case model.ErrEventStatusInvalid:
			return nil, errorx.ErrEventCompleted()
		case breaker.ErrServiceUnavailable:
			l.Errorf("RSVP 熔断触发: eventId=%d, userId=%d", req.EventID, req.UserID)
			return nil, errorx.New(errorx.CodeServiceUnavailable)
		default:
			l.Errorf("RSVP 写入失败: eventId=%d, userId=%d, err=%v", req.EventID, req.UserID, err)
			return nil, errorx.ErrDBError(err)
		}
	}

	// ==================== 第三步：事务外的平台侧联动 ====================
	l.afterCommit(event, req.UserID, outcome.oldStatus, outcome.effective, outcome.promotions)

	resp := &types.SetRsvpStatusResp{
		EffectiveStatus:   outcome.effective,
		PromotionOccurred: len(outcome.promotions) > 0,
	}
	for _, p := range outcome.promotions {
		resp.PromotedUserIDs = append(resp.PromotedUserIDs, p.userID)
	}
	return resp, nil
}

// PromoteEvent 对单个活动独立执行一次候补补位
//
// 补位通常由报名变更在事务内触发，此入口供调度器每轮兜底调用：
// 名单被外部直改或补位事务半途失败时，下一轮即可自愈。
func (l *SetRsvpStatusLogic) PromoteEvent(ctx context.Context, eventID uint64) error {
	var (
		promotions []promotion
		event      *model.Event
	)
	err := l.svcCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ev, err := l.svcCtx.EventModel.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !ev.IsActive() {
			return nil
		}
		event = ev

		promoted, err := promoteWaitlist(ctx, l.svcCtx.RsvpModel, tx, ev)
		if err != nil {
			return err
		}
		promotions = promoted
		return nil
	})
	if err != nil {
		return err
	}
	if len(promotions) == 0 || event == nil {
		return nil
	}

	l.svcCtx.ViewCache.Invalidate(ctx, event.ID)
	for _, p := range promotions {
		l.svcCtx.Producer.PublishMemberJoined(ctx, event.ID, p.userID, model.RsvpConfirmed, event.RoleRef)
	}
	return nil
}

// afterCommit 名单落库后的平台侧联动（尽力而为，失败只记日志）
func (l *SetRsvpStatusLogic) afterCommit(ev *model.Event, userID uint64, oldStatus, effective int8, promotions []promotion) {
	if ev == nil {
		return
	}

	// 1. 视图缓存失效
	l.svcCtx.ViewCache.Invalidate(l.ctx, ev.ID)

	// 2. 身份组授予/收回（确认与候补持有，待定与不参加不持有）
	held, holds := model.HoldsRole(oldStatus), model.HoldsRole(effective)
	if ev.RoleRef != "" {
		if holds && !held {
			if err := l.svcCtx.Workspace.GrantAccess(l.ctx, userID, ev.RoleRef); err != nil {
				l.Errorf("授予身份组失败: eventId=%d, userId=%d, err=%v", ev.ID, userID, err)
			}
		}
		if held && !holds {
			if err := l.svcCtx.Workspace.RevokeAccess(l.ctx, userID, ev.RoleRef); err != nil {
				l.Errorf("收回身份组失败: eventId=%d, userId=%d, err=%v", ev.ID, userID, err)
			}
		}
	}

	// 3. 发布名单变更事件（适配层据此刷新面板、私信补位用户）
	if oldStatus != effective {
		if holds {
			l.svcCtx.Producer.PublishMemberJoined(l.ctx, ev.ID, userID, effective, ev.RoleRef)
		} else {
			l.svcCtx.Producer.PublishMemberLeft(l.ctx, ev.ID, userID, ev.RoleRef)
		}
	}
	for _, p := range promotions {
		l.svcCtx.Producer.PublishMemberJoined(l.ctx, ev.ID, p.userID, model.RsvpConfirmed, ev.RoleRef)
	}
}
