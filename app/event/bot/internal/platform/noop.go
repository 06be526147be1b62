package platform

import (
	"context"
	"time"

	"community-bot/common/errorx"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// ==================== 空实现 ====================
// 未挂载真实适配层时的兜底：Workspace 生成本地 ref 并记日志，
// Resolver/DateParser 直接拒绝。用于本地联调和测试环境。

// NoopWorkspace 仅记日志的 Workspace 实现
type NoopWorkspace struct{}

func NewNoopWorkspace() *NoopWorkspace {
	return &NoopWorkspace{}
}

func (w *NoopWorkspace) CreateVenue(ctx context.Context, name string, category int8) (string, error) {
	ref := "venue-" + uuid.New().String()
	logx.WithContext(ctx).Infof("[NoopWorkspace] 创建频道: name=%s, ref=%s", name, ref)
	return ref, nil
}

func (w *NoopWorkspace) CreateRoleAnchor(ctx context.Context, name string) (string, error) {
	ref := "role-" + uuid.New().String()
	logx.WithContext(ctx).Infof("[NoopWorkspace] 创建身份组: name=%s, ref=%s", name, ref)
	return ref, nil
}

func (w *NoopWorkspace) SendMessage(ctx context.Context, target, content string) (string, error) {
	ref := "msg-" + uuid.New().String()
	logx.WithContext(ctx).Infof("[NoopWorkspace] 发送消息: target=%s, ref=%s", target, ref)
	return ref, nil
}

func (w *NoopWorkspace) EditMessage(ctx context.Context, messageRef, content string) error {
	logx.WithContext(ctx).Infof("[NoopWorkspace] 编辑消息: ref=%s", messageRef)
	return nil
}

func (w *NoopWorkspace) Delete(ctx context.Context, ref string) error {
	logx.WithContext(ctx).Infof("[NoopWorkspace] 删除锚点: ref=%s", ref)
	return nil
}

func (w *NoopWorkspace) GrantAccess(ctx context.Context, userID uint64, roleRef string) error {
	logx.WithContext(ctx).Infof("[NoopWorkspace] 授予身份组: userId=%d, ref=%s", userID, roleRef)
	return nil
}

func (w *NoopWorkspace) RevokeAccess(ctx context.Context, userID uint64, roleRef string) error {
	logx.WithContext(ctx).Infof("[NoopWorkspace] 收回身份组: userId=%d, ref=%s", userID, roleRef)
	return nil
}

// NoopResolver 拒绝一切解析请求的 Resolver
type NoopResolver struct{}

func NewNoopResolver() *NoopResolver {
	return &NoopResolver{}
}

func (r *NoopResolver) ResolveActivity(ctx context.Context, text string) (*ResolvedActivity, error) {
	return nil, errorx.ErrEventNotResolved()
}

// NoopDateParser 拒绝一切解析请求的 DateParser
type NoopDateParser struct{}

func NewNoopDateParser() *NoopDateParser {
	return &NoopDateParser{}
}

func (p *NoopDateParser) ParseDatetime(ctx context.Context, text string) (time.Time, error) {
	return time.Time{}, errorx.ErrScheduleInvalid()
}
