package logic

import (
	"context"
	"errors"
	"testing"

	"community-bot/app/event/model"

	"gorm.io/gorm"
)

// ==================== 测试替身 ====================

// fakeRsvpStore 内存报名表。UpdatedAt 用单调递增计数代替毫秒时间戳，
// 每次落库自增，和真实 DAO 的 autoUpdateTime 行为一致。
type fakeRsvpStore struct {
	rows   []*model.EventRsvp
	nextID uint64
	clock  int64
}

var _ rsvpStore = (*fakeRsvpStore)(nil)
var _ rsvpStore = (*model.EventRsvpModel)(nil)

func (s *fakeRsvpStore) tick() int64 {
	s.clock++
	return s.clock
}

func (s *fakeRsvpStore) row(eventID, userID uint64) *model.EventRsvp {
	for _, r := range s.rows {
		if r.EventID == eventID && r.UserID == userID {
			return r
		}
	}
	return nil
}

func (s *fakeRsvpStore) FindByEventUser(_ context.Context, _ *gorm.DB, eventID, userID uint64) (*model.EventRsvp, error) {
	if r := s.row(eventID, userID); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, model.ErrRsvpNotFound
}

func (s *fakeRsvpStore) CountByEventStatus(_ context.Context, _ *gorm.DB, eventID uint64, status int8) (int64, error) {
	var n int64
	for _, r := range s.rows {
		if r.EventID == eventID && r.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *fakeRsvpStore) CountConfirmedExcluding(_ context.Context, _ *gorm.DB, eventID, userID uint64) (int64, error) {
	var n int64
	for _, r := range s.rows {
		if r.EventID == eventID && r.Status == model.RsvpConfirmed && r.UserID != userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeRsvpStore) FirstWaitlisted(_ context.Context, _ *gorm.DB, eventID uint64) (*model.EventRsvp, error) {
	var head *model.EventRsvp
	for _, r := range s.rows {
		if r.EventID != eventID || r.Status != model.RsvpWaitlist {
			continue
		}
		if head == nil || r.UpdatedAt < head.UpdatedAt ||
			(r.UpdatedAt == head.UpdatedAt && r.ID < head.ID) {
			head = r
		}
	}
	if head == nil {
		return nil, model.ErrRsvpNotFound
	}
	cp := *head
	return &cp, nil
}

func (s *fakeRsvpStore) UpdateStatusByID(_ context.Context, _ *gorm.DB, id uint64, status int8) error {
	for _, r := range s.rows {
		if r.ID == id {
			r.Status = status
			r.UpdatedAt = s.tick()
			return nil
		}
	}
	return model.ErrRsvpNotFound
}

func (s *fakeRsvpStore) Upsert(_ context.Context, _ *gorm.DB, rsvp *model.EventRsvp) error {
	if !model.IsValidRsvpStatus(rsvp.Status) {
		return model.ErrRsvpStatusInvalid
	}
	if r := s.row(rsvp.EventID, rsvp.UserID); r != nil {
		r.Status = rsvp.Status
		r.UpdatedAt = s.tick()
		return nil
	}
	s.nextID++
	now := s.tick()
	s.rows = append(s.rows, &model.EventRsvp{
		ID:        s.nextID,
		EventID:   rsvp.EventID,
		UserID:    rsvp.UserID,
		Status:    rsvp.Status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

// ==================== 测试辅助 ====================

func mustApply(t *testing.T, store *fakeRsvpStore, ev *model.Event, userID uint64, status int8) *rsvpOutcome {
	t.Helper()
	out, err := applyRsvpChange(context.Background(), store, nil, ev, userID, status)
	if err != nil {
		t.Fatalf("applyRsvpChange(user=%d, status=%d) 意外失败: %v", userID, status, err)
	}
	return out
}

func promotedUsers(promotions []promotion) []uint64 {
	var ids []uint64
	for _, p := range promotions {
		ids = append(ids, p.userID)
	}
	return ids
}

// ==================== 状态机测试 ====================

// 满员后请求"参加"降级为候补，确认人数不超过名额
func TestApplyRsvpChangeFullEventDowngrades(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 1}

	if out := mustApply(t, store, ev, 100, model.RsvpConfirmed); out.effective != model.RsvpConfirmed {
		t.Fatalf("首位报名应确认, got status=%d", out.effective)
	}
	out := mustApply(t, store, ev, 200, model.RsvpConfirmed)
	if out.effective != model.RsvpWaitlist {
		t.Fatalf("满员后报名应降级候补, got status=%d", out.effective)
	}
	if !out.changed {
		t.Fatal("首次降级候补应落库")
	}

	confirmed, _ := store.CountByEventStatus(context.Background(), nil, ev.ID, model.RsvpConfirmed)
	if confirmed != 1 {
		t.Fatalf("确认人数 = %d, want 1", confirmed)
	}
}

// 已确认用户重复点"参加"是彻底的空操作
func TestApplyRsvpChangeConfirmedRepeatIsNoop(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 2}

	mustApply(t, store, ev, 100, model.RsvpConfirmed)
	before := store.row(ev.ID, 100).UpdatedAt

	out := mustApply(t, store, ev, 100, model.RsvpConfirmed)
	if out.changed || out.effective != model.RsvpConfirmed {
		t.Fatalf("重复确认应短路, changed=%v, effective=%d", out.changed, out.effective)
	}
	if after := store.row(ev.ID, 100).UpdatedAt; after != before {
		t.Fatalf("短路不应改写记录, updated_at %d -> %d", before, after)
	}
}

// 候补用户在满员时重复点"参加"不得刷新排队时间：
// 实际落库状态仍是候补，必须按实际状态短路，否则会被挤到队尾
func TestApplyRsvpChangeWaitlistRepeatKeepsQueuePosition(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 1}

	mustApply(t, store, ev, 100, model.RsvpConfirmed) // 占满
	mustApply(t, store, ev, 200, model.RsvpConfirmed) // 候补队头
	mustApply(t, store, ev, 300, model.RsvpConfirmed) // 候补第二
	queuedAt := store.row(ev.ID, 200).UpdatedAt

	out := mustApply(t, store, ev, 200, model.RsvpConfirmed)
	if out.changed {
		t.Fatal("满员时候补用户重复确认应短路")
	}
	if out.effective != model.RsvpWaitlist {
		t.Fatalf("实际状态应仍为候补, got %d", out.effective)
	}
	if now := store.row(ev.ID, 200).UpdatedAt; now != queuedAt {
		t.Fatalf("排队时间被刷新: %d -> %d", queuedAt, now)
	}

	// 名额释放后补位的必须是先排队的 200，而不是 300
	freed := mustApply(t, store, ev, 100, model.RsvpAbsent)
	if got := promotedUsers(freed.promotions); len(got) != 1 || got[0] != 200 {
		t.Fatalf("补位用户 = %v, want [200]", got)
	}
}

// 释放确认名额触发严格先到先得的补位
func TestApplyRsvpChangePromotionFifo(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 2}

	mustApply(t, store, ev, 100, model.RsvpConfirmed)
	mustApply(t, store, ev, 200, model.RsvpConfirmed)
	mustApply(t, store, ev, 300, model.RsvpConfirmed) // 候补
	mustApply(t, store, ev, 400, model.RsvpConfirmed) // 候补

	out := mustApply(t, store, ev, 100, model.RsvpAbsent)
	if got := promotedUsers(out.promotions); len(got) != 1 || got[0] != 300 {
		t.Fatalf("第一次释放补位 = %v, want [300]", got)
	}

	out = mustApply(t, store, ev, 200, model.RsvpMaybe)
	if got := promotedUsers(out.promotions); len(got) != 1 || got[0] != 400 {
		t.Fatalf("第二次释放补位 = %v, want [400]", got)
	}

	confirmed, _ := store.CountByEventStatus(context.Background(), nil, ev.ID, model.RsvpConfirmed)
	if confirmed != 2 {
		t.Fatalf("确认人数 = %d, want 2", confirmed)
	}
}

// 转待定/不参加不触发补位：候补和待定本就不占名额
func TestApplyRsvpChangeNonConfirmedLeaveNoPromotion(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 1}

	mustApply(t, store, ev, 100, model.RsvpConfirmed)
	mustApply(t, store, ev, 200, model.RsvpConfirmed) // 候补
	mustApply(t, store, ev, 300, model.RsvpConfirmed) // 候补

	out := mustApply(t, store, ev, 300, model.RsvpAbsent)
	if len(out.promotions) != 0 {
		t.Fatalf("候补退出不应触发补位, got %v", promotedUsers(out.promotions))
	}
	if r := store.row(ev.ID, 200); r.Status != model.RsvpWaitlist {
		t.Fatalf("队头状态被意外改动: %d", r.Status)
	}
}

// 名额调大后一次补多人，顺序仍是先到先得
func TestPromoteWaitlistFillsGrownCapacity(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 1}

	mustApply(t, store, ev, 100, model.RsvpConfirmed)
	mustApply(t, store, ev, 200, model.RsvpConfirmed) // 候补
	mustApply(t, store, ev, 300, model.RsvpConfirmed) // 候补

	ev.Capacity = 3
	promoted, err := promoteWaitlist(context.Background(), store, nil, ev)
	if err != nil {
		t.Fatalf("promoteWaitlist 失败: %v", err)
	}
	if got := promotedUsers(promoted); len(got) != 2 || got[0] != 200 || got[1] != 300 {
		t.Fatalf("补位顺序 = %v, want [200 300]", got)
	}
}

// 名额调小不得低于当前确认人数
func TestCheckCapacityShrinkRejectsBelowConfirmed(t *testing.T) {
	store := &fakeRsvpStore{}
	ev := &model.Event{ID: 1, Capacity: 3}

	mustApply(t, store, ev, 100, model.RsvpConfirmed)
	mustApply(t, store, ev, 200, model.RsvpConfirmed)
	mustApply(t, store, ev, 300, model.RsvpConfirmed)

	err := checkCapacityShrink(context.Background(), store, nil, ev.ID, 2)
	if !errors.Is(err, model.ErrCapacityBelowRoster) {
		t.Fatalf("调小到确认人数以下应拒绝, got %v", err)
	}
	if err := checkCapacityShrink(context.Background(), store, nil, ev.ID, 3); err != nil {
		t.Fatalf("调小到确认人数应允许, got %v", err)
	}
}
