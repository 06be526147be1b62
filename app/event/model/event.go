package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== 错误定义 ====================

var (
	ErrEventNotFound         = errors.New("活动不存在")
	ErrEventStatusInvalid    = errors.New("活动状态不允许此操作")
	ErrEventConcurrentUpdate = errors.New("并发更新冲突，请重试")
	ErrCapacityBelowRoster   = errors.New("名额不得低于当前确认人数")
)

// ==================== Event 活动模型 ====================

type Event struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 基本信息
	Title       string `gorm:"type:varchar(100);not null;comment:活动标题(规范名)" json:"title"`
	Description string `gorm:"type:text;comment:活动说明" json:"description"`
	Category    int8   `gorm:"default:4;index:idx_category_status,priority:1;comment:类别: 1团本 2小队 3竞技 4其他" json:"category"`

	// 时间与名额
	ScheduledTime int64  `gorm:"index:idx_status_time,priority:2;not null;comment:开始时间(unix秒,UTC)" json:"scheduled_time"`
	Capacity      uint32 `gorm:"not null;comment:确认名额上限(>=1)" json:"capacity"`

	// 创建者
	CreatorID uint64 `gorm:"index;not null;comment:创建者用户ID" json:"creator_id"`

	// 平台锚点（由适配层创建并持有语义，核心只透传）
	VenueRef        string `gorm:"type:varchar(64);default:'';comment:语音频道引用" json:"venue_ref"`
	AnnouncementRef string `gorm:"type:varchar(64);default:'';comment:公告频道引用" json:"announcement_ref"`
	MessageRef      string `gorm:"type:varchar(64);default:'';comment:报名面板消息引用" json:"message_ref"`
	RoleRef         string `gorm:"type:varchar(64);default:'';comment:活动身份组引用" json:"role_ref"`

	// 状态
	Status int8 `gorm:"default:1;index:idx_category_status,priority:2;index:idx_status_time,priority:1;comment:状态: 1进行中 2已完结" json:"status"`

	// 乐观锁
	Version uint32 `gorm:"default:0;comment:乐观锁版本号" json:"version"`

	// 时间戳
	CreatedAt int64          `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt int64          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return "events"
}

// StatusText 获取状态文本
func (e *Event) StatusText() string {
	if text, ok := StatusText[e.Status]; ok {
		return text
	}
	return "未知"
}

// IsActive 判断是否仍接受报名与提醒
func (e *Event) IsActive() bool {
	return e.Status == StatusActive
}

// ==================== EventModel 数据访问层 ====================

type EventModel struct {
	db *gorm.DB
}

func NewEventModel(db *gorm.DB) *EventModel {
	return &EventModel{db: db}
}

// Create 创建活动
func (m *EventModel) Create(ctx context.Context, event *Event) error {
	return m.db.WithContext(ctx).Create(event).Error
}

// FindByID 根据ID查询（包含软删除检查）
func (m *EventModel) FindByID(ctx context.Context, id uint64) (*Event, error) {
	var event Event
	err := m.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate 查询并加行锁（报名/补位事务内使用）
func (m *EventModel) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint64) (*Event, error) {
	var event Event
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListActive 查询全部进行中的活动（调度器每轮使用）
func (m *EventModel) ListActive(ctx context.Context) ([]Event, error) {
	var events []Event
	err := m.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("scheduled_time ASC").
		Find(&events).Error
	return events, err
}

// ListByCreator 查询某用户创建的活动
func (m *EventModel) ListByCreator(ctx context.Context, creatorID uint64, p *Pagination) ([]Event, error) {
	p.Normalize()
	var events []Event
	err := m.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("scheduled_time DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&events).Error
	return events, err
}

// Update 更新活动（带乐观锁）
func (m *EventModel) Update(ctx context.Context, event *Event) error {
	result := m.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND version = ?", event.ID, event.Version).
		Updates(map[string]interface{}{
			"title":          event.Title,
			"description":    event.Description,
			"category":       event.Category,
			"scheduled_time": event.ScheduledTime,
			"capacity":       event.Capacity,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventConcurrentUpdate
	}
	return nil
}

// UpdateAnchors 回填平台锚点（适配层创建频道/身份组后调用）
func (m *EventModel) UpdateAnchors(ctx context.Context, id uint64, venueRef, announcementRef, messageRef, roleRef string) error {
	result := m.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"venue_ref":        venueRef,
			"announcement_ref": announcementRef,
			"message_ref":      messageRef,
			"role_ref":         roleRef,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// MarkCompleted 标记完结（仅 Active→Completed，幂等：重复调用第二次影响0行）
func (m *EventModel) MarkCompleted(ctx context.Context, id uint64) (bool, error) {
	result := m.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]interface{}{
			"status":  StatusCompleted,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除活动（事务内使用，级联删除由 logic 层统一编排）
func (m *EventModel) Delete(ctx context.Context, tx *gorm.DB, id uint64) error {
	result := tx.WithContext(ctx).Unscoped().Delete(&Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
