// Package attendance 实现出席采集。
//
// 采集语义：
//   - 只统计已确认名单与在场用户的交集，旁观者不计入
//   - 标记幂等：首次在场时间只写一次，重复采集不覆盖
//   - 单个用户标记失败不中断整轮采集
package attendance

import (
	"context"

	"community-bot/app/event/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// RosterStore 名单读取能力
type RosterStore interface {
	ConfirmedUserIDs(ctx context.Context, eventID uint64) ([]uint64, error)
}

// PresenceStore 在场用户读取能力
type PresenceStore interface {
	OpenUserIDsByVenue(ctx context.Context, venueRef string) ([]uint64, error)
}

// RecordStore 出席记录写入能力
type RecordStore interface {
	MarkPresent(ctx context.Context, eventID, userID uint64, seenAt int64) error
	ListByEvent(ctx context.Context, eventID uint64) ([]model.AttendanceRecord, error)
}

// Tracker 出席采集器
type Tracker struct {
	roster   RosterStore
	presence PresenceStore
	records  RecordStore
}

// NewTracker 创建出席采集器
func NewTracker(roster RosterStore, presence PresenceStore, records RecordStore) *Tracker {
	return &Tracker{
		roster:   roster,
		presence: presence,
		records:  records,
	}
}

// Capture 执行一次出席采集
//
// 返回本轮新标记（或重复标记）的用户数
func (t *Tracker) Capture(ctx context.Context, eventID uint64, venueRef string, now int64) (int, error) {
	if venueRef == "" {
		// 没有绑定频道的活动无从采集
		return 0, nil
	}

	confirmed, err := t.roster.ConfirmedUserIDs(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if len(confirmed) == 0 {
		return 0, nil
	}

	present, err := t.presence.OpenUserIDsByVenue(ctx, venueRef)
	if err != nil {
		return 0, err
	}
	if len(present) == 0 {
		return 0, nil
	}

	// 已确认名单 ∩ 在场用户
	attendees := Intersect(confirmed, present)

	marked := 0
	for _, userID := range attendees {
		if err := t.records.MarkPresent(ctx, eventID, userID, now); err != nil {
			logx.WithContext(ctx).Errorf("[Attendance] 出席标记失败: eventId=%d, userId=%d, err=%v", eventID, userID, err)
			continue
		}
		marked++
	}
	return marked, nil
}

// Roster 汇总活动的出席报告名单
//
// 返回已确认名单中每个用户的出席情况（未出席的 FirstSeenAt 为 0）
func (t *Tracker) Roster(ctx context.Context, eventID uint64) ([]Attendee, error) {
	confirmed, err := t.roster.ConfirmedUserIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}

	records, err := t.records.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]int64, len(records))
	for _, r := range records {
		if r.Status == model.AttendancePresent {
			seen[r.UserID] = r.FirstSeenAt
		}
	}

	roster := make([]Attendee, 0, len(confirmed))
	for _, userID := range confirmed {
		firstSeen, attended := seen[userID]
		roster = append(roster, Attendee{
			UserID:      userID,
			Attended:    attended,
			FirstSeenAt: firstSeen,
		})
	}
	return roster, nil
}

// Attendee 出席报告中的单个用户
type Attendee struct {
	UserID      uint64
	Attended    bool
	FirstSeenAt int64
}

// Intersect 求两个用户集合的交集（保持第一个集合的顺序）
func Intersect(a, b []uint64) []uint64 {
	set := make(map[uint64]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	var out []uint64
	for _, id := range a {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
