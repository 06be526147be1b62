package messaging

import "time"

// ==================== Topic 定义 ====================

const (
	// 核心 → 平台适配层（渲染、频道/身份组操作由适配层执行）
	TopicEventCreated   = "event.created"
	TopicEventUpdated   = "event.updated"
	TopicEventDeleted   = "event.deleted"
	TopicMemberJoined   = "event.member.joined"
	TopicMemberLeft     = "event.member.left"
	TopicEventReminder  = "event.reminder"
	TopicEventCompleted = "event.completed"

	// 平台适配层 → 核心（按钮/命令交互统一折算成 RSVP 请求）
	TopicRsvpRequested = "rsvp.requested"
)

// ==================== 提醒类型 ====================

const (
	ReminderDayBefore    = "day_before"    // 提前24小时
	ReminderHoursBefore  = "hours_before"  // 提前4小时
	ReminderStartingSoon = "starting_soon" // 提前1小时（已确认名单）
	ReminderLastCall     = "last_call"     // 提前1小时（未满员补位召集）
)

// ==================== 事件结构体 ====================
// 字段类型必须与平台适配层消费者完全匹配（uint64 ID + time.Time）

// EventCreatedEvent 活动创建事件
// 消费者：平台适配层（创建频道/身份组并发布报名面板）
type EventCreatedEvent struct {
	EventID       uint64    `json:"event_id"`
	CreatorID     uint64    `json:"creator_id"`
	Title         string    `json:"title"`
	Category      int       `json:"category"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Capacity      uint32    `json:"capacity"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventUpdatedEvent 活动修改事件
// 消费者：平台适配层（刷新报名面板）
type EventUpdatedEvent struct {
	EventID   uint64    `json:"event_id"`
	UpdatedBy uint64    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventDeletedEvent 活动删除事件
// 消费者：平台适配层（删除频道/身份组/面板）
type EventDeletedEvent struct {
	EventID         uint64    `json:"event_id"`
	VenueRef        string    `json:"venue_ref"`
	RoleRef         string    `json:"role_ref"`
	MessageRef      string    `json:"message_ref"`
	AnnouncementRef string    `json:"announcement_ref"`
	DeletedAt       time.Time `json:"deleted_at"`
}

// MemberJoinedEvent 用户加入事件（已确认或候补）
// 消费者：平台适配层（授予活动身份组）
type MemberJoinedEvent struct {
	EventID  uint64    `json:"event_id"`
	UserID   uint64    `json:"user_id"`
	Status   int       `json:"status"` // constants.RsvpStatusXxx
	RoleRef  string    `json:"role_ref"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberLeftEvent 用户退出事件（待定/不参加）
// 消费者：平台适配层（收回活动身份组）
type MemberLeftEvent struct {
	EventID uint64    `json:"event_id"`
	UserID  uint64    `json:"user_id"`
	RoleRef string    `json:"role_ref"`
	LeftAt  time.Time `json:"left_at"`
}

// ReminderEvent 提醒事件
// 消费者：平台适配层（向频道或已确认名单推送提醒文案）
type ReminderEvent struct {
	EventID       uint64    `json:"event_id"`
	Kind          string    `json:"kind"` // ReminderXxx
	Title         string    `json:"title"`
	ScheduledTime time.Time `json:"scheduled_time"`
	VenueRef      string    `json:"venue_ref"`
	TargetUserIDs []uint64  `json:"target_user_ids,omitempty"` // 为空表示面向频道
	FiredAt       time.Time `json:"fired_at"`
}

// CompletedEvent 活动完结事件（含总结报告）
// 消费者：平台适配层（发布总结并清理频道/身份组）
type CompletedEvent struct {
	ReportID    string              `json:"report_id"`
	EventID     uint64              `json:"event_id"`
	Title       string              `json:"title"`
	VenueRef    string              `json:"venue_ref"`
	RoleRef     string              `json:"role_ref"`
	Roster      []CompletedAttendee `json:"roster"`
	CompletedAt time.Time           `json:"completed_at"`
}

// CompletedAttendee 总结报告中的单个参与者
type CompletedAttendee struct {
	UserID      uint64 `json:"user_id"`
	Attended    bool   `json:"attended"`
	FirstSeenAt int64  `json:"first_seen_at,omitempty"`
}

// RsvpRequestedCommand RSVP 请求命令
// 生产者：平台适配层（按钮/命令/API 统一入口）
type RsvpRequestedCommand struct {
	EventID     uint64    `json:"event_id"`
	UserID      uint64    `json:"user_id"`
	Status      int       `json:"status"` // constants.RsvpStatusXxx
	RequestedAt time.Time `json:"requested_at"`
}
