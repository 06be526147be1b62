package cron

import (
	"time"

	"community-bot/app/event/model"
	"community-bot/common/messaging"
)

// reminderWindow 一个提醒触发窗口
//
// 触发条件：now ∈ [scheduled-offset, scheduled-offset+width)
// 窗口宽度必须不小于 3 倍执行间隔，迟到的一轮才不会整窗错过；
// 停机超过窗口宽度时该档提醒直接跳过，不在事后补发过期提醒。
// 每档提醒由对应的持久化标记保证至多发一次。
type reminderWindow struct {
	kind          string        // messaging.ReminderXxx
	flagColumn    string        // model.FlagReminderXxx
	offset        time.Duration // 距活动开始的提前量
	width         time.Duration // 窗口宽度
	capacityGated bool          // true: 满员时不发、不置标记（满员的活动无需拉人）
	targeted      bool          // true: 发给已确认名单；false: 面向频道
	lastCall      bool          // 未满员时附带面向频道的补位召集
}

// reminderWindows 提醒窗口表（按触发先后排列）
var reminderWindows = []reminderWindow{
	{
		kind:          messaging.ReminderDayBefore,
		flagColumn:    model.FlagReminder24h,
		offset:        24 * time.Hour,
		width:         30 * time.Minute,
		capacityGated: true,
	},
	{
		kind:          messaging.ReminderHoursBefore,
		flagColumn:    model.FlagReminder4h,
		offset:        4 * time.Hour,
		width:         15 * time.Minute,
		capacityGated: true,
	},
	{
		kind:       messaging.ReminderStartingSoon,
		flagColumn: model.FlagReminder1h,
		offset:     time.Hour,
		width:      15 * time.Minute,
		targeted:   true,
		lastCall:   true,
	},
}

// inWindow 判断单个提醒窗口是否到期
func (w reminderWindow) inWindow(now, scheduled int64) bool {
	open := scheduled - int64(w.offset.Seconds())
	return now >= open && now < open+int64(w.width.Seconds())
}

// dueReminders 返回本轮到期且尚未发送的提醒窗口
//
// flags 为当前已持久化的发送标记，命中过的窗口直接跳过。
// 真正的至多一次保证在落库的条件更新上，这里只是减少无效尝试。
func dueReminders(now, scheduled int64, flags *model.LifecycleFlag) []reminderWindow {
	var due []reminderWindow
	for _, w := range reminderWindows {
		if flags != nil && flags.IsSet(w.flagColumn) {
			continue
		}
		if w.inWindow(now, scheduled) {
			due = append(due, w)
		}
	}
	return due
}

// inCaptureWindow 判断是否处于出席采集窗口 [scheduled, scheduled+captureWindow)
func inCaptureWindow(now, scheduled int64, captureWindow time.Duration) bool {
	return now >= scheduled && now < scheduled+int64(captureWindow.Seconds())
}

// completionDue 判断活动是否到达完结时刻（开始后 grace 宽限期）
func completionDue(now, scheduled int64, grace time.Duration) bool {
	return now >= scheduled+int64(grace.Seconds())
}
