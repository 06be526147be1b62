package model

import (
	"errors"

	mysqlerr "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

//  活动状态常量

const (
	StatusActive    int8 = 1 // 进行中（可报名、可提醒）
	StatusCompleted int8 = 2 // 已完结（终态，不可逆）
)

// StatusText 状态文本映射
var StatusText = map[int8]string{
	StatusActive:    "进行中",
	StatusCompleted: "已完结",
}

// 活动类别

const (
	CategoryRaid    int8 = 1 // 团队副本
	CategoryDungeon int8 = 2 // 小队副本
	CategoryPvp     int8 = 3 // 竞技
	CategoryOther   int8 = 4 // 其他
)

// CategoryText 类别文本映射
var CategoryText = map[int8]string{
	CategoryRaid:    "团队副本",
	CategoryDungeon: "小队副本",
	CategoryPvp:     "竞技",
	CategoryOther:   "其他",
}

// 报名状态

const (
	RsvpConfirmed int8 = 1 // 已确认（占名额）
	RsvpWaitlist  int8 = 2 // 候补（FIFO 等待补位）
	RsvpMaybe     int8 = 3 // 待定
	RsvpAbsent    int8 = 4 // 不参加
)

// RsvpStatusText 报名状态文本映射
var RsvpStatusText = map[int8]string{
	RsvpConfirmed: "已确认",
	RsvpWaitlist:  "候补",
	RsvpMaybe:     "待定",
	RsvpAbsent:    "不参加",
}

// IsValidRsvpStatus 判断报名状态是否合法
func IsValidRsvpStatus(status int8) bool {
	_, ok := RsvpStatusText[status]
	return ok
}

// HoldsRole 判断该报名状态是否持有活动身份组（已确认/候补授予，其余收回）
func HoldsRole(status int8) bool {
	return status == RsvpConfirmed || status == RsvpWaitlist
}

// 出席状态

const (
	AttendanceAbsent  int8 = 0 // 未出席（默认）
	AttendancePresent int8 = 1 // 已出席
)

// 分页参数

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Pagination 分页请求
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// IsDuplicateKeyErr 判断是否为唯一索引冲突
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlerr.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
