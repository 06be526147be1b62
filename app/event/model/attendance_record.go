package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 错误定义 ====================

var (
	ErrAttendanceNotFound = errors.New("出席记录不存在")
)

// ==================== AttendanceRecord 出席记录模型 ====================

// 每个 (活动, 用户) 仅一行。缺省即未出席——已确认但从未被观测到的用户
// 不需要单独"标记缺席"，没有记录就是缺席。
// FirstSeenAt 只在首次观测时写入，此后任何重复采集都不覆盖（幂等）。
type AttendanceRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	EventID uint64 `gorm:"uniqueIndex:uk_event_user,priority:1;index:idx_event_id;not null;comment:活动ID" json:"event_id"`
	UserID  uint64 `gorm:"uniqueIndex:uk_event_user,priority:2;not null;comment:用户ID" json:"user_id"`

	Status      int8  `gorm:"default:0;comment:出席状态: 0未出席 1已出席" json:"status"`
	FirstSeenAt int64 `gorm:"default:0;comment:首次观测到在场的时间(unix秒)" json:"first_seen_at"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// ==================== AttendanceRecordModel 数据访问层 ====================

type AttendanceRecordModel struct {
	db *gorm.DB
}

func NewAttendanceRecordModel(db *gorm.DB) *AttendanceRecordModel {
	return &AttendanceRecordModel{db: db}
}

// MarkPresent 记录用户出席（幂等 upsert）
// 已有记录时仅 absent→present 推进一次；first_seen_at 为 0 才写入，
// 之后的重复采集不会改动它
func (m *AttendanceRecordModel) MarkPresent(ctx context.Context, eventID, userID uint64, seenAt int64) error {
	record := &AttendanceRecord{
		EventID:     eventID,
		UserID:      userID,
		Status:      AttendancePresent,
		FirstSeenAt: seenAt,
	}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":        AttendancePresent,
				"first_seen_at": gorm.Expr("IF(first_seen_at = 0, VALUES(first_seen_at), first_seen_at)"),
			}),
		}).
		Create(record).Error
}

// FindByEventUser 根据活动ID和用户ID查询
func (m *AttendanceRecordModel) FindByEventUser(ctx context.Context, eventID, userID uint64) (*AttendanceRecord, error) {
	var record AttendanceRecord
	err := m.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListByEvent 获取活动全部出席记录
func (m *AttendanceRecordModel) ListByEvent(ctx context.Context, eventID uint64) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := m.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("first_seen_at ASC").
		Find(&records).Error
	return records, err
}

// CountPresentByEvent 统计活动实际出席人数
func (m *AttendanceRecordModel) CountPresentByEvent(ctx context.Context, eventID uint64) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&AttendanceRecord{}).
		Where("event_id = ? AND status = ?", eventID, AttendancePresent).
		Count(&count).Error
	return count, err
}

// DeleteByEvent 删除活动全部出席记录（级联删除，事务内使用）
func (m *AttendanceRecordModel) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint64) error {
	return tx.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&AttendanceRecord{}).Error
}
