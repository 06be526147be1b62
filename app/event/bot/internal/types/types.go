package types

// ==================== 请求结构体 ====================

// CreateEventReq 创建活动请求
// ActivityText / TimeText 交由适配层注入的 Resolver / DateParser 解析
type CreateEventReq struct {
	CreatorID    uint64 `json:"creator_id"`
	ActivityText string `json:"activity_text"`
	TimeText     string `json:"time_text"`
	Description  string `json:"description"`
	Capacity     uint32 `json:"capacity"` // 0 = 使用解析出的默认名额
}

// UpdateEventReq 管理员修改活动请求
type UpdateEventReq struct {
	EventID       uint64 `json:"event_id"`
	OperatorID    uint64 `json:"operator_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      int8   `json:"category"`
	ScheduledTime int64  `json:"scheduled_time"`
	Capacity      uint32 `json:"capacity"`
}

// SetRsvpStatusReq RSVP 请求（按钮/命令/MQ 统一入口）
type SetRsvpStatusReq struct {
	EventID uint64 `json:"event_id"`
	UserID  uint64 `json:"user_id"`
	Status  int8   `json:"status"` // model.RsvpXxx
}

// SetRsvpStatusResp RSVP 结果
type SetRsvpStatusResp struct {
	EffectiveStatus   int8     `json:"effective_status"`   // 实际落库状态（满员时 confirmed 会降级为 waitlist）
	PromotionOccurred bool     `json:"promotion_occurred"` // 本次变更是否触发了候补补位
	PromotedUserIDs   []uint64 `json:"promoted_user_ids,omitempty"`
}

// ==================== 视图结构体 ====================

// RosterEntry 名单中的一个用户
type RosterEntry struct {
	UserID    uint64 `json:"user_id"`
	UpdatedAt int64  `json:"updated_at"` // 最后一次状态变更时间(毫秒)
}

// EventView 活动渲染视图（任何 UI 绑定共用同一份数据）
type EventView struct {
	EventID       uint64 `json:"event_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      int8   `json:"category"`
	CategoryText  string `json:"category_text"`
	ScheduledTime int64  `json:"scheduled_time"`
	Capacity      uint32 `json:"capacity"`
	Status        int8   `json:"status"`
	CreatorID     uint64 `json:"creator_id"`

	VenueRef   string `json:"venue_ref"`
	MessageRef string `json:"message_ref"`
	RoleRef    string `json:"role_ref"`

	Confirmed []RosterEntry `json:"confirmed"`
	Waitlist  []RosterEntry `json:"waitlist"`
	Maybe     []RosterEntry `json:"maybe"`
	Absent    []RosterEntry `json:"absent"`
	FreeSlots uint32        `json:"free_slots"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}
