package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ==================== 错误定义 ====================

var (
	ErrFlagNotFound      = errors.New("生命周期标记不存在")
	ErrFlagColumnInvalid = errors.New("未知的生命周期标记")
)

// ==================== 标记列名 ====================
// 新增提醒窗口时在此登记列名，并同步扩展表结构

const (
	FlagReminder24h = "reminder_24h_sent"
	FlagReminder4h  = "reminder_4h_sent"
	FlagReminder1h  = "reminder_1h_sent"
)

// flagColumns 合法列名白名单（防止拼接注入）
var flagColumns = map[string]bool{
	FlagReminder24h: true,
	FlagReminder4h:  true,
	FlagReminder1h:  true,
}

// ==================== LifecycleFlag 生命周期标记模型 ====================

// 一个活动一行，调度器首次评估时懒创建。
// 每个标记只允许 false→true 一次，除管理员重排外永不回退。
type LifecycleFlag struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID uint64 `gorm:"uniqueIndex:uk_event_id;not null;comment:活动ID" json:"event_id"`

	Reminder24hSent bool `gorm:"default:false;comment:提前24小时提醒已发" json:"reminder_24h_sent"`
	Reminder4hSent  bool `gorm:"default:false;comment:提前4小时提醒已发" json:"reminder_4h_sent"`
	Reminder1hSent  bool `gorm:"default:false;comment:提前1小时提醒已发" json:"reminder_1h_sent"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LifecycleFlag) TableName() string {
	return "lifecycle_flags"
}

// IsSet 按列名读取标记值
func (f *LifecycleFlag) IsSet(column string) bool {
	switch column {
	case FlagReminder24h:
		return f.Reminder24hSent
	case FlagReminder4h:
		return f.Reminder4hSent
	case FlagReminder1h:
		return f.Reminder1hSent
	default:
		return false
	}
}

// ==================== LifecycleFlagModel 数据访问层 ====================

type LifecycleFlagModel struct {
	db *gorm.DB
}

func NewLifecycleFlagModel(db *gorm.DB) *LifecycleFlagModel {
	return &LifecycleFlagModel{db: db}
}

// GetOrCreate 获取标记行，不存在则创建（幂等：唯一索引兜底并发）
func (m *LifecycleFlagModel) GetOrCreate(ctx context.Context, eventID uint64) (*LifecycleFlag, error) {
	var flag LifecycleFlag
	err := m.db.WithContext(ctx).
		Where(LifecycleFlag{EventID: eventID}).
		FirstOrCreate(&flag).Error
	if err != nil {
		// 并发懒创建撞唯一索引，重读既有行
		if IsDuplicateKeyErr(err) {
			err = m.db.WithContext(ctx).
				Where("event_id = ?", eventID).
				First(&flag).Error
			if err != nil {
				return nil, err
			}
			return &flag, nil
		}
		return nil, err
	}
	return &flag, nil
}

// SetFlag 置位单个标记（仅 false→true 生效一次）
// 返回本次是否真正置位：并发双写时只有一方拿到 true，天然 at-most-once
func (m *LifecycleFlagModel) SetFlag(ctx context.Context, eventID uint64, column string) (bool, error) {
	if !flagColumns[column] {
		return false, ErrFlagColumnInvalid
	}
	result := m.db.WithContext(ctx).
		Model(&LifecycleFlag{}).
		Where("event_id = ? AND "+column+" = ?", eventID, false).
		Update(column, true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetAll 管理员重排专用：一条 UPDATE 同时清空全部标记
// 部分清空会打乱提醒节奏，必须原子完成
func (m *LifecycleFlagModel) ResetAll(ctx context.Context, tx *gorm.DB, eventID uint64) error {
	db := m.db
	if tx != nil {
		db = tx
	}
	result := db.WithContext(ctx).
		Model(&LifecycleFlag{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			FlagReminder24h: false,
			FlagReminder4h:  false,
			FlagReminder1h:  false,
		})
	if result.Error != nil {
		return result.Error
	}
	// 标记行尚未懒创建时无需清空
	return nil
}

// DeleteByEvent 删除活动的标记行（级联删除，事务内使用）
func (m *LifecycleFlagModel) DeleteByEvent(ctx context.Context, tx *gorm.DB, eventID uint64) error {
	return tx.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&LifecycleFlag{}).Error
}
