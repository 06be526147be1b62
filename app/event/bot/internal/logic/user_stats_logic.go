package logic

import (
	"context"
	"time"

	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/model"
	"community-bot/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
)

type UserStatsLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewUserStatsLogic 创建用户参与统计逻辑
func NewUserStatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UserStatsLogic {
	return &UserStatsLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// UserStats 查询用户参与统计
//
// sinceDays 为 0 时统计全部历史；仅统计已完结的活动
func (l *UserStatsLogic) UserStats(userID uint64, sinceDays int) (*model.UserParticipationStats, error) {
	if userID == 0 {
		return nil, errorx.New(errorx.CodeInvalidParams)
	}

	var since int64
	if sinceDays > 0 {
		since = time.Now().AddDate(0, 0, -sinceDays).Unix()
	}

	stats, err := l.svcCtx.StatsModel.UserStats(l.ctx, userID, since)
	if err != nil {
		l.Errorf("用户统计查询失败: userId=%d, err=%v", userID, err)
		return nil, errorx.ErrDBError(err)
	}
	return stats, nil
}
