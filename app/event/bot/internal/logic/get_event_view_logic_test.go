package logic

import (
	"testing"

	"community-bot/app/event/model"
)

func rsvpAt(userID uint64, status int8, at int64) model.EventRsvp {
	return model.EventRsvp{
		EventID:   1,
		UserID:    userID,
		Status:    status,
		UpdatedAt: at,
	}
}

func TestAssembleEventViewGroupsAndSorts(t *testing.T) {
	event := &model.Event{
		ID:       1,
		Title:    "周五团本",
		Category: model.CategoryRaid,
		Capacity: 3,
		Status:   model.StatusActive,
	}
	rsvps := []model.EventRsvp{
		rsvpAt(30, model.RsvpConfirmed, 3000),
		rsvpAt(10, model.RsvpConfirmed, 1000),
		rsvpAt(40, model.RsvpWaitlist, 4000),
		rsvpAt(20, model.RsvpWaitlist, 2000),
		rsvpAt(50, model.RsvpMaybe, 5000),
		rsvpAt(60, model.RsvpAbsent, 6000),
	}

	view := AssembleEventView(event, rsvps)

	if len(view.Confirmed) != 2 || len(view.Waitlist) != 2 || len(view.Maybe) != 1 || len(view.Absent) != 1 {
		t.Fatalf("grouping mismatch: %+v", view)
	}
	// 组内按最后一次状态变更时间升序，候补组顺序即补位顺序
	if view.Confirmed[0].UserID != 10 || view.Confirmed[1].UserID != 30 {
		t.Fatalf("confirmed order mismatch: %+v", view.Confirmed)
	}
	if view.Waitlist[0].UserID != 20 || view.Waitlist[1].UserID != 40 {
		t.Fatalf("waitlist order mismatch: %+v", view.Waitlist)
	}
	if view.FreeSlots != 1 {
		t.Fatalf("expected 1 free slot, got %d", view.FreeSlots)
	}
	if view.CategoryText != "团队副本" {
		t.Fatalf("category text mismatch: %s", view.CategoryText)
	}
}

func TestAssembleEventViewSameTimestampTiebreak(t *testing.T) {
	event := &model.Event{ID: 1, Capacity: 5, Status: model.StatusActive}
	rsvps := []model.EventRsvp{
		rsvpAt(20, model.RsvpConfirmed, 1000),
		rsvpAt(10, model.RsvpConfirmed, 1000),
	}

	view := AssembleEventView(event, rsvps)
	if view.Confirmed[0].UserID != 10 || view.Confirmed[1].UserID != 20 {
		t.Fatalf("tiebreak must be deterministic: %+v", view.Confirmed)
	}
}

func TestAssembleEventViewOverCapacityReportsNoFreeSlots(t *testing.T) {
	// 补位中途的瞬时超员不能渲染出负的剩余名额
	event := &model.Event{ID: 1, Capacity: 1, Status: model.StatusActive}
	rsvps := []model.EventRsvp{
		rsvpAt(10, model.RsvpConfirmed, 1000),
		rsvpAt(20, model.RsvpConfirmed, 2000),
	}

	view := AssembleEventView(event, rsvps)
	if view.FreeSlots != 0 {
		t.Fatalf("over-capacity view must report 0 free slots, got %d", view.FreeSlots)
	}
	if len(view.Confirmed) != 2 {
		t.Fatalf("confirmed mismatch: %+v", view.Confirmed)
	}
}

func TestAssembleEventViewFullEvent(t *testing.T) {
	event := &model.Event{ID: 1, Capacity: 2, Status: model.StatusActive}
	rsvps := []model.EventRsvp{
		rsvpAt(10, model.RsvpConfirmed, 1000),
		rsvpAt(20, model.RsvpConfirmed, 2000),
		rsvpAt(30, model.RsvpWaitlist, 3000),
	}

	view := AssembleEventView(event, rsvps)
	if view.FreeSlots != 0 {
		t.Fatalf("full event must report 0 free slots, got %d", view.FreeSlots)
	}
}
