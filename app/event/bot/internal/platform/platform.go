// Package platform 定义核心对平台适配层的依赖面。
//
// 核心不直接触碰任何聊天平台 API：频道/身份组的创建删除、消息收发、
// 自然语言解析全部抽象成接口，由适配层实现并注入。按钮、斜杠命令、
// HTTP API 等任何交互入口最终都折算到同一套核心操作上。
package platform

import (
	"context"
	"time"
)

// ResolvedActivity 活动名称解析结果
type ResolvedActivity struct {
	CanonicalName   string // 规范名
	Category        int8   // model.CategoryXxx
	DefaultCapacity uint32 // 0 表示该活动没有默认名额
}

// Resolver 活动名称解析能力（外部实现，核心不做任何文本归一化）
type Resolver interface {
	ResolveActivity(ctx context.Context, text string) (*ResolvedActivity, error)
}

// DateParser 自然语言时间解析能力（外部实现）
type DateParser interface {
	ParseDatetime(ctx context.Context, text string) (time.Time, error)
}

// Workspace 平台侧频道/身份组/消息操作能力
// 所有返回的 ref 都是适配层持有语义的不透明标识，核心只存储与透传
type Workspace interface {
	CreateVenue(ctx context.Context, name string, category int8) (venueRef string, err error)
	CreateRoleAnchor(ctx context.Context, name string) (roleRef string, err error)
	SendMessage(ctx context.Context, target, content string) (messageRef string, err error)
	EditMessage(ctx context.Context, messageRef, content string) error
	Delete(ctx context.Context, ref string) error
	GrantAccess(ctx context.Context, userID uint64, roleRef string) error
	RevokeAccess(ctx context.Context, userID uint64, roleRef string) error
}
