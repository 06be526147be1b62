package logic

import (
	"context"

	"community-bot/app/event/model"

	"gorm.io/gorm"
)

// ==================== 报名状态机核心 ====================
// 名单判定与数据访问解耦：事务内只依赖 rsvpStore 暴露的能力，
// *model.EventRsvpModel 原样满足该接口，测试用内存实现替换。

// rsvpStore 报名引擎依赖的记录访问能力
type rsvpStore interface {
	FindByEventUser(ctx context.Context, tx *gorm.DB, eventID, userID uint64) (*model.EventRsvp, error)
	CountByEventStatus(ctx context.Context, tx *gorm.DB, eventID uint64, status int8) (int64, error)
	CountConfirmedExcluding(ctx context.Context, tx *gorm.DB, eventID, userID uint64) (int64, error)
	FirstWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint64) (*model.EventRsvp, error)
	UpdateStatusByID(ctx context.Context, tx *gorm.DB, id uint64, status int8) error
	Upsert(ctx context.Context, tx *gorm.DB, rsvp *model.EventRsvp) error
}

// promotion 事务内产生的一次候补补位
type promotion struct {
	rsvpID uint64
	userID uint64
}

// rsvpOutcome 一次状态变更在事务内的判定结果
type rsvpOutcome struct {
	oldStatus  int8 // 0 表示此前无记录
	effective  int8
	changed    bool // false 表示幂等短路，未落库
	promotions []promotion
}

// applyRsvpChange 在事务内执行一次 RSVP 状态变更
//
// 判定顺序是语义关键：先算实际落库状态（满员降级候补），再做幂等短路。
// 候补中的用户在满员时重复点"参加"，实际状态仍是候补，必须短路掉——
// 否则 upsert 会刷新 updated_at，把他挤到候补队尾。
func applyRsvpChange(ctx context.Context, store rsvpStore, tx *gorm.DB, ev *model.Event, userID uint64, reqStatus int8) (*rsvpOutcome, error) {
	out := &rsvpOutcome{}

	// 1. 读取现有记录（无则视为首次报名）
	existing, err := store.FindByEventUser(ctx, tx, ev.ID, userID)
	if err != nil && err != model.ErrRsvpNotFound {
		return nil, err
	}
	if existing != nil {
		out.oldStatus = existing.Status
	}

	// 2. 计算实际落库状态（满员降级候补）
	out.effective = reqStatus
	if reqStatus == model.RsvpConfirmed && ev.Capacity > 0 {
		confirmed, err := store.CountConfirmedExcluding(ctx, tx, ev.ID, userID)
		if err != nil {
			return nil, err
		}
		if confirmed >= int64(ev.Capacity) {
			out.effective = model.RsvpWaitlist
		}
	}

	// 3. 幂等短路：实际状态未变化则不落库、不动排队时间、不触发补位
	if existing != nil && existing.Status == out.effective {
		return out, nil
	}

	// 4. 落库（upsert，更新时间即候补排队时间）
	if err := store.Upsert(ctx, tx, &model.EventRsvp{
		EventID: ev.ID,
		UserID:  userID,
		Status:  out.effective,
	}); err != nil {
		return nil, err
	}
	out.changed = true

	// 5. 若本次变更释放了确认名额，候补队头补位
	if out.oldStatus == model.RsvpConfirmed && out.effective != model.RsvpConfirmed {
		promoted, err := promoteWaitlist(ctx, store, tx, ev)
		if err != nil {
			return nil, err
		}
		out.promotions = promoted
	}

	return out, nil
}

// promoteWaitlist 候补补位（事务内执行）
//
// 先到先得：按最后一次状态变更时间升序取队头。循环补位直到
// 确认名额占满或候补队列为空（容量被调大时一次补多人）。
func promoteWaitlist(ctx context.Context, store rsvpStore, tx *gorm.DB, ev *model.Event) ([]promotion, error) {
	if ev.Capacity == 0 {
		return nil, nil
	}

	var promoted []promotion
	for {
		confirmed, err := store.CountByEventStatus(ctx, tx, ev.ID, model.RsvpConfirmed)
		if err != nil {
			return nil, err
		}
		if confirmed >= int64(ev.Capacity) {
			break
		}

		head, err := store.FirstWaitlisted(ctx, tx, ev.ID)
		if err != nil {
			if err == model.ErrRsvpNotFound {
				break
			}
			return nil, err
		}

		if err := store.UpdateStatusByID(ctx, tx, head.ID, model.RsvpConfirmed); err != nil {
			return nil, err
		}
		promoted = append(promoted, promotion{rsvpID: head.ID, userID: head.UserID})
	}
	return promoted, nil
}

// checkCapacityShrink 名额调小校验：不得低于当前确认人数
//
// 确认名单永远不超额（补位瞬间除外），调小越过确认人数会造成
// 无法自愈的持久超员，直接拒绝，让管理员先清退再调小。
func checkCapacityShrink(ctx context.Context, store rsvpStore, tx *gorm.DB, eventID uint64, newCapacity uint32) error {
	confirmed, err := store.CountByEventStatus(ctx, tx, eventID, model.RsvpConfirmed)
	if err != nil {
		return err
	}
	if int64(newCapacity) < confirmed {
		return model.ErrCapacityBelowRoster
	}
	return nil
}
