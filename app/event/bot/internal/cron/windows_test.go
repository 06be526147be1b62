package cron

import (
	"testing"
	"time"

	"community-bot/app/event/model"
	"community-bot/common/messaging"
)

// 活动开始时间固定，用相对偏移构造"当前时间"
const scheduled = int64(1_000_000_000)

func at(offsetBefore time.Duration) int64 {
	return scheduled - int64(offsetBefore.Seconds())
}

func kinds(ws []reminderWindow) []string {
	var out []string
	for _, w := range ws {
		out = append(out, w.kind)
	}
	return out
}

func TestDueRemindersAtExactOffsets(t *testing.T) {
	cases := []struct {
		name   string
		now    int64
		expect string
	}{
		{"24h前窗口开启", at(24 * time.Hour), messaging.ReminderDayBefore},
		{"24h前窗口内", at(24*time.Hour - 20*time.Minute), messaging.ReminderDayBefore},
		{"4h前窗口开启", at(4 * time.Hour), messaging.ReminderHoursBefore},
		{"1h前窗口开启", at(time.Hour), messaging.ReminderStartingSoon},
		{"1h前窗口内", at(time.Hour - 10*time.Minute), messaging.ReminderStartingSoon},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due := dueReminders(tc.now, scheduled, &model.LifecycleFlag{})
			if len(due) != 1 || due[0].kind != tc.expect {
				t.Fatalf("expected [%s], got %v", tc.expect, kinds(due))
			}
		})
	}
}

func TestDueRemindersOutsideWindows(t *testing.T) {
	cases := []struct {
		name string
		now  int64
	}{
		{"远早于任何窗口", at(48 * time.Hour)},
		{"24h窗口已过", at(24*time.Hour - 31*time.Minute)},
		{"4h窗口已过", at(4*time.Hour - 16*time.Minute)},
		{"窗口间隙", at(2 * time.Hour)},
		{"活动已开始", scheduled + 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if due := dueReminders(tc.now, scheduled, &model.LifecycleFlag{}); len(due) != 0 {
				t.Fatalf("expected no reminders, got %v", kinds(due))
			}
		})
	}
}

func TestDueRemindersSkipSentFlags(t *testing.T) {
	flags := &model.LifecycleFlag{Reminder24hSent: true}
	if due := dueReminders(at(24*time.Hour), scheduled, flags); len(due) != 0 {
		t.Fatalf("sent reminder must be skipped, got %v", kinds(due))
	}

	// 其他档不受影响
	if due := dueReminders(at(time.Hour), scheduled, flags); len(due) != 1 {
		t.Fatalf("expected starting_soon, got %v", kinds(due))
	}
}

func TestDueRemindersSkippedAfterDowntime(t *testing.T) {
	// 停机错过 24h 与 4h 窗口后恢复：不补发过期提醒
	now := at(30 * time.Minute)
	if due := dueReminders(now, scheduled, &model.LifecycleFlag{}); len(due) != 0 {
		t.Fatalf("missed windows must not fire late, got %v", kinds(due))
	}
}

func TestCaptureWindow(t *testing.T) {
	window := 3 * time.Hour
	if inCaptureWindow(scheduled-1, scheduled, window) {
		t.Fatal("capture must not start before scheduled time")
	}
	if !inCaptureWindow(scheduled, scheduled, window) {
		t.Fatal("capture window opens at scheduled time")
	}
	if !inCaptureWindow(scheduled+int64(window.Seconds())-1, scheduled, window) {
		t.Fatal("capture window includes last second")
	}
	if inCaptureWindow(scheduled+int64(window.Seconds()), scheduled, window) {
		t.Fatal("capture window must close")
	}
}

func TestCompletionDue(t *testing.T) {
	grace := time.Hour
	if completionDue(scheduled+3599, scheduled, grace) {
		t.Fatal("completion must wait out the grace period")
	}
	if !completionDue(scheduled+3600, scheduled, grace) {
		t.Fatal("completion due after grace period")
	}
}

func TestWindowWidthsCoverTickCadence(t *testing.T) {
	// 窗口宽度不小于 3 倍默认执行间隔，迟到一轮不会整窗错过
	minWidth := 3 * time.Duration(defaultIntervalSeconds) * time.Second
	for _, w := range reminderWindows {
		if w.width < minWidth {
			t.Fatalf("window %s width %v below %v", w.kind, w.width, minWidth)
		}
	}
}
