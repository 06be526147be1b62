package attendance

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"community-bot/app/event/model"
)

// ==================== 测试替身 ====================

type fakeRoster struct {
	confirmed map[uint64][]uint64
}

func (f *fakeRoster) ConfirmedUserIDs(_ context.Context, eventID uint64) ([]uint64, error) {
	return f.confirmed[eventID], nil
}

type fakePresence struct {
	byVenue map[string][]uint64
}

func (f *fakePresence) OpenUserIDsByVenue(_ context.Context, venueRef string) ([]uint64, error) {
	return f.byVenue[venueRef], nil
}

type fakeRecords struct {
	records map[uint64]map[uint64]*model.AttendanceRecord // eventID -> userID -> record
	failFor map[uint64]bool                               // 指定用户标记失败
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		records: make(map[uint64]map[uint64]*model.AttendanceRecord),
		failFor: make(map[uint64]bool),
	}
}

func (f *fakeRecords) MarkPresent(_ context.Context, eventID, userID uint64, seenAt int64) error {
	if f.failFor[userID] {
		return errors.New("write failed")
	}
	if f.records[eventID] == nil {
		f.records[eventID] = make(map[uint64]*model.AttendanceRecord)
	}
	if existing, ok := f.records[eventID][userID]; ok {
		// 首次在场时间只写一次
		if existing.FirstSeenAt == 0 {
			existing.FirstSeenAt = seenAt
		}
		existing.Status = model.AttendancePresent
		return nil
	}
	f.records[eventID][userID] = &model.AttendanceRecord{
		EventID:     eventID,
		UserID:      userID,
		Status:      model.AttendancePresent,
		FirstSeenAt: seenAt,
	}
	return nil
}

func (f *fakeRecords) ListByEvent(_ context.Context, eventID uint64) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, r := range f.records[eventID] {
		out = append(out, *r)
	}
	return out, nil
}

// ==================== 测试 ====================

func TestCaptureIntersectsConfirmedAndPresent(t *testing.T) {
	roster := &fakeRoster{confirmed: map[uint64][]uint64{1: {10, 20, 30}}}
	presence := &fakePresence{byVenue: map[string][]uint64{"venue-a": {20, 30, 99}}}
	records := newFakeRecords()
	tracker := NewTracker(roster, presence, records)

	marked, err := tracker.Capture(context.Background(), 1, "venue-a", 1000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}

	// 旁观者 99 不计入
	if _, ok := records.records[1][99]; ok {
		t.Fatal("bystander must not be marked")
	}
	// 未到场的 10 不计入
	if _, ok := records.records[1][10]; ok {
		t.Fatal("absent user must not be marked")
	}
	if records.records[1][20].FirstSeenAt != 1000 {
		t.Fatalf("first seen not recorded: %+v", records.records[1][20])
	}
}

func TestCaptureIdempotentFirstSeen(t *testing.T) {
	roster := &fakeRoster{confirmed: map[uint64][]uint64{1: {10}}}
	presence := &fakePresence{byVenue: map[string][]uint64{"v": {10}}}
	records := newFakeRecords()
	tracker := NewTracker(roster, presence, records)

	if _, err := tracker.Capture(context.Background(), 1, "v", 1000); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if _, err := tracker.Capture(context.Background(), 1, "v", 2000); err != nil {
		t.Fatalf("second capture: %v", err)
	}

	if got := records.records[1][10].FirstSeenAt; got != 1000 {
		t.Fatalf("first seen must keep initial value, got %d", got)
	}
}

func TestCaptureSkipsWithoutVenue(t *testing.T) {
	tracker := NewTracker(&fakeRoster{}, &fakePresence{}, newFakeRecords())
	marked, err := tracker.Capture(context.Background(), 1, "", 1000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if marked != 0 {
		t.Fatalf("expected no marks without venue, got %d", marked)
	}
}

func TestCaptureIsolatesPerUserFailure(t *testing.T) {
	roster := &fakeRoster{confirmed: map[uint64][]uint64{1: {10, 20}}}
	presence := &fakePresence{byVenue: map[string][]uint64{"v": {10, 20}}}
	records := newFakeRecords()
	records.failFor[10] = true
	tracker := NewTracker(roster, presence, records)

	marked, err := tracker.Capture(context.Background(), 1, "v", 1000)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 marked despite failure, got %d", marked)
	}
	if _, ok := records.records[1][20]; !ok {
		t.Fatal("healthy user must still be marked")
	}
}

func TestRosterReportsAbsentees(t *testing.T) {
	roster := &fakeRoster{confirmed: map[uint64][]uint64{1: {10, 20}}}
	presence := &fakePresence{byVenue: map[string][]uint64{"v": {10}}}
	records := newFakeRecords()
	tracker := NewTracker(roster, presence, records)

	if _, err := tracker.Capture(context.Background(), 1, "v", 1000); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	got, err := tracker.Roster(context.Background(), 1)
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	want := []Attendee{
		{UserID: 10, Attended: true, FirstSeenAt: 1000},
		{UserID: 20, Attended: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("roster mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestIntersectKeepsFirstOrder(t *testing.T) {
	got := Intersect([]uint64{3, 1, 2}, []uint64{2, 3})
	want := []uint64{3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
