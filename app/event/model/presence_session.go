package model

import (
	"context"

	"gorm.io/gorm"
)

// ==================== PresenceSession 在场会话模型 ====================

// 语音频道进出记录。以前的实现把"谁在频道里"放在进程内 map，
// 重启即丢、退出事件漏掉就永久泄漏；改为落库的开闭区间：
// EndedAt = 0 表示会话仍开着，调度器会回收超时未关的会话。
type PresenceSession struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID   uint64 `gorm:"index:idx_user_venue,priority:1;not null;comment:用户ID" json:"user_id"`
	VenueRef string `gorm:"type:varchar(64);index:idx_user_venue,priority:2;index:idx_venue_open,priority:1;not null;comment:语音频道引用" json:"venue_ref"`

	StartedAt int64 `gorm:"not null;comment:进入时间(unix秒)" json:"started_at"`
	EndedAt   int64 `gorm:"default:0;index:idx_venue_open,priority:2;comment:离开时间(unix秒,0=仍在场)" json:"ended_at"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

func (PresenceSession) TableName() string {
	return "presence_sessions"
}

// ==================== PresenceSessionModel 数据访问层 ====================

type PresenceSessionModel struct {
	db *gorm.DB
}

func NewPresenceSessionModel(db *gorm.DB) *PresenceSessionModel {
	return &PresenceSessionModel{db: db}
}

// Open 打开会话（进入频道）
// 同一用户同一频道若已有未关会话，先关掉再开新的，避免重复计时
func (m *PresenceSessionModel) Open(ctx context.Context, userID uint64, venueRef string, now int64) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PresenceSession{}).
			Where("user_id = ? AND venue_ref = ? AND ended_at = 0", userID, venueRef).
			Update("ended_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&PresenceSession{
			UserID:    userID,
			VenueRef:  venueRef,
			StartedAt: now,
		}).Error
	})
}

// Close 关闭会话（离开频道）
// 没有未关会话时是无害空操作：重复离开事件不报错
func (m *PresenceSessionModel) Close(ctx context.Context, userID uint64, venueRef string, now int64) error {
	return m.db.WithContext(ctx).
		Model(&PresenceSession{}).
		Where("user_id = ? AND venue_ref = ? AND ended_at = 0", userID, venueRef).
		Update("ended_at", now).Error
}

// OpenUserIDsByVenue 查询某频道当前在场的用户ID集合
func (m *PresenceSessionModel) OpenUserIDsByVenue(ctx context.Context, venueRef string) ([]uint64, error) {
	var userIDs []uint64
	err := m.db.WithContext(ctx).
		Model(&PresenceSession{}).
		Distinct("user_id").
		Where("venue_ref = ? AND ended_at = 0", venueRef).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// CloseStale 回收长期未关的会话（漏掉离开事件时的兜底）
func (m *PresenceSessionModel) CloseStale(ctx context.Context, olderThan, now int64) (int64, error) {
	result := m.db.WithContext(ctx).
		Model(&PresenceSession{}).
		Where("ended_at = 0 AND started_at < ?", olderThan).
		Update("ended_at", now)
	return result.RowsAffected, result.Error
}
