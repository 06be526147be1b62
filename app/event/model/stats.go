package model

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 参与度统计 ====================
// 排名/声望模块消费的历史聚合查询，只读，不属于核心状态机

// UserParticipationStats 用户在统计窗口内的参与度汇总
type UserParticipationStats struct {
	UserID    uint64 `json:"user_id"`
	Created   int64  `json:"created"`   // 创建且已完结的活动数
	Confirmed int64  `json:"confirmed"` // 确认报名数
	Attended  int64  `json:"attended"`  // 实际出席数
	NoShows   int64  `json:"no_shows"`  // 确认但未出席数
}

// StatsModel 参与度统计查询
type StatsModel struct {
	db *gorm.DB
}

func NewStatsModel(db *gorm.DB) *StatsModel {
	return &StatsModel{db: db}
}

// UserStats 统计单个用户自 since（unix秒）以来的参与度
//
// 三项计数共用同一窗口口径：已完结活动 + scheduled_time 落在窗口内。
// 口径不一致时 NoShows = Confirmed - Attended 会跨窗口相减，结果失真。
func (m *StatsModel) UserStats(ctx context.Context, userID uint64, since int64) (*UserParticipationStats, error) {
	stats := &UserParticipationStats{UserID: userID}

	err := m.db.WithContext(ctx).
		Model(&Event{}).
		Where("creator_id = ? AND status = ? AND scheduled_time >= ?",
			userID, StatusCompleted, since).
		Count(&stats.Created).Error
	if err != nil {
		return nil, err
	}

	err = m.db.WithContext(ctx).
		Table("event_rsvps r").
		Joins("INNER JOIN events e ON e.id = r.event_id").
		Where("r.user_id = ? AND r.status = ? AND e.status = ? AND e.scheduled_time >= ?",
			userID, RsvpConfirmed, StatusCompleted, since).
		Count(&stats.Confirmed).Error
	if err != nil {
		return nil, err
	}

	err = m.db.WithContext(ctx).
		Table("attendance_records a").
		Joins("INNER JOIN events e ON e.id = a.event_id").
		Where("a.user_id = ? AND a.status = ? AND e.status = ? AND e.scheduled_time >= ?",
			userID, AttendancePresent, StatusCompleted, since).
		Count(&stats.Attended).Error
	if err != nil {
		return nil, err
	}

	stats.NoShows = stats.Confirmed - stats.Attended
	if stats.NoShows < 0 {
		stats.NoShows = 0
	}
	return stats, nil
}

// NoShowUserIDs 查询某活动确认报名但未出席的用户
// SQL: SELECT r.user_id FROM event_rsvps r
//
//	LEFT JOIN attendance_records a ON a.event_id = r.event_id AND a.user_id = r.user_id
//	WHERE r.event_id = ? AND r.status = confirmed
//	AND (a.id IS NULL OR a.status != present)
func (m *StatsModel) NoShowUserIDs(ctx context.Context, eventID uint64) ([]uint64, error) {
	var userIDs []uint64
	err := m.db.WithContext(ctx).
		Table("event_rsvps r").
		Select("r.user_id").
		Joins("LEFT JOIN attendance_records a ON a.event_id = r.event_id AND a.user_id = r.user_id").
		Where("r.event_id = ? AND r.status = ?", eventID, RsvpConfirmed).
		Where("a.id IS NULL OR a.status != ?", AttendancePresent).
		Pluck("r.user_id", &userIDs).Error
	return userIDs, err
}
