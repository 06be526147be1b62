// ============================================================================
// 状态常量定义
// ============================================================================
//
// 说明：
//   定义项目中所有状态码常量，避免魔法数字
//
// ============================================================================

package constants

// ==================== 活动状态（状态机） ====================
//
// 状态流转：
//   Active(1) -> Completed(2)
//   终态不可逆：Completed 之后不再接受任何报名/提醒操作
//

const (
	EventStatusActive    = 1 // 进行中（可报名）
	EventStatusCompleted = 2 // 已完结（终态）
)

// EventStatusMap 活动状态映射
var EventStatusMap = map[int]string{
	EventStatusActive:    "进行中",
	EventStatusCompleted: "已完结",
}

// ==================== 报名状态 ====================

const (
	RsvpStatusConfirmed = 1 // 已确认（占名额）
	RsvpStatusWaitlist  = 2 // 候补
	RsvpStatusMaybe     = 3 // 待定
	RsvpStatusAbsent    = 4 // 不参加
)

// RsvpStatusMap 报名状态映射
var RsvpStatusMap = map[int]string{
	RsvpStatusConfirmed: "已确认",
	RsvpStatusWaitlist:  "候补",
	RsvpStatusMaybe:     "待定",
	RsvpStatusAbsent:    "不参加",
}

// ==================== 出席状态 ====================

const (
	AttendanceStatusAbsent  = 0 // 未出席（默认）
	AttendanceStatusPresent = 1 // 已出席
)

// ==================== 活动类别 ====================

const (
	EventCategoryRaid    = 1 // 团队副本
	EventCategoryDungeon = 2 // 小队副本
	EventCategoryPvp     = 3 // 竞技
	EventCategoryOther   = 4 // 其他
)

// EventCategoryMap 活动类别映射
var EventCategoryMap = map[int]string{
	EventCategoryRaid:    "团队副本",
	EventCategoryDungeon: "小队副本",
	EventCategoryPvp:     "竞技",
	EventCategoryOther:   "其他",
}

// ==================== 布尔状态 ====================

const (
	No  = 0 // 否
	Yes = 1 // 是
)

// ==================== 分页默认值 ====================

const (
	DefaultPage     = 1   // 默认页码
	DefaultPageSize = 20  // 默认每页条数
	MaxPageSize     = 100 // 最大每页条数
)
