package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 错误定义 ====================

var (
	ErrRsvpNotFound      = errors.New("报名记录不存在")
	ErrRsvpStatusInvalid = errors.New("报名状态无效")
)

// ==================== EventRsvp 报名记录模型 ====================

// 每个 (活动, 用户) 仅一行，重复操作原地覆盖，不保留历史。
// UpdatedAt 即"最后一次状态变更时间"，候补补位按它升序（严格 FIFO）。
// 使用毫秒精度，避免同秒并发写入打乱补位顺序。
type EventRsvp struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	EventID uint64 `gorm:"uniqueIndex:uk_event_user,priority:1;index:idx_event_id;not null;comment:活动ID" json:"event_id"`
	UserID  uint64 `gorm:"uniqueIndex:uk_event_user,priority:2;index:idx_user_id;not null;comment:用户ID" json:"user_id"`

	Status int8 `gorm:"not null;comment:报名状态: 1确认 2候补 3待定 4不参加" json:"status"`

	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli;index:idx_event_updated" json:"updated_at"`
}

func (EventRsvp) TableName() string {
	return "event_rsvps"
}

// ==================== EventRsvpModel 数据访问层 ====================

type EventRsvpModel struct {
	db *gorm.DB
}

func NewEventRsvpModel(db *gorm.DB) *EventRsvpModel {
	return &EventRsvpModel{db: db}
}

// Upsert 写入报名记录（不存在则插入，存在则覆盖状态，事务内使用）
// 唯一索引 uk_event_user 保证并发下不会出现同一用户两行记录
func (m *EventRsvpModel) Upsert(ctx context.Context, tx *gorm.DB, rsvp *EventRsvp) error {
	if !IsValidRsvpStatus(rsvp.Status) {
		return ErrRsvpStatusInvalid
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(rsvp).Error
}

// FindByEventUser 根据活动ID和用户ID查询（事务内可传 tx，否则传 nil）
func (m *EventRsvpModel) FindByEventUser(ctx context.Context, tx *gorm.DB, eventID, userID uint64) (*EventRsvp, error) {
	db := m.db
	if tx != nil {
		db = tx
	}
	var rsvp EventRsvp
	err := db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&rsvp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRsvpNotFound
		}
		return nil, err
	}
	return &rsvp, nil
}

// CountByEventStatus 统计活动内某状态的人数（事务内可传 tx，否则传 nil）
func (m *EventRsvpModel) CountByEventStatus(ctx context.Context, tx *gorm.DB, eventID uint64, status int8) (int64, error) {
	db := m.db
	if tx != nil {
		db = tx
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&EventRsvp{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

// CountConfirmedExcluding 统计已确认人数，排除指定用户
// 容量校验用：同一用户重复确认不应占用两个名额
func (m *EventRsvpModel) CountConfirmedExcluding(ctx context.Context, tx *gorm.DB, eventID, userID uint64) (int64, error) {
	db := m.db
	if tx != nil {
		db = tx
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&EventRsvp{}).
		Where("event_id = ? AND status = ? AND user_id != ?", eventID, RsvpConfirmed, userID).
		Count(&count).Error
	return count, err
}

// FirstWaitlisted 取最早进入候补的记录（严格 FIFO：updated_at 升序，id 升序兜底）
func (m *EventRsvpModel) FirstWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint64) (*EventRsvp, error) {
	db := m.db
	if tx != nil {
		db = tx
	}
	var rsvp EventRsvp
	err := db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, RsvpWaitlist).
		Order("updated_at ASC, id ASC").
		First(&rsvp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRsvpNotFound
		}
		return nil, err
	}
	return &rsvp, nil
}

// UpdateStatusByID 更新单条记录状态（补位事务内使用）
func (m *EventRsvpModel) UpdateStatusByID(ctx context.Context, tx *gorm.DB, id uint64, status int8) error {
	if !IsValidRsvpStatus(status) {
		return ErrRsvpStatusInvalid
	}
	result := tx.WithContext(ctx).
		Model(&EventRsvp{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRsvpNotFound
	}
	return nil
}

// ListByEvent 获取活动全部报名记录（视图渲染用，按最后变更时间升序）
func (m *EventRsvpModel) ListByEvent(ctx context.Context, eventID uint64) ([]EventRsvp, error) {
	var rsvps []EventRsvp
	err := m.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("updated_at ASC, id ASC").
		Find(&rsvps).Error
	return rsvps, err
}

// ConfirmedUserIDs 获取活动已确认用户ID列表
func (m *EventRsvpModel) ConfirmedUserIDs(ctx context.Context, eventID uint64) ([]uint64, error) {
	var userIDs []uint64
	err := m.db.WithContext(ctx).
		Model(&EventRsvp{}).
		Where("event_id = ? AND status = ?", eventID, RsvpConfirmed).
		Order("updated_at ASC, id ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// DeleteByEvent 删除活动全部报名记录（级联删除，事务内使用）
func (m *EventRsvpModel) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint64) error {
	return tx.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&EventRsvp{}).Error
}
