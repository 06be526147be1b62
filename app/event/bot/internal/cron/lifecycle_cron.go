package cron

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"community-bot/app/event/bot/internal/attendance"
	"community-bot/app/event/bot/internal/cache"
	"community-bot/app/event/bot/internal/config"
	"community-bot/app/event/bot/internal/mq"
	"community-bot/app/event/model"
	"community-bot/common/constants"
	"community-bot/common/messaging"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// ==================== 常量定义 ====================

const (
	// 分布式锁配置
	lockKey           = constants.LockLifecyclePrefix + "tick"
	lockExpireSeconds = 60 // 锁过期时间（秒）

	// 默认执行间隔（秒）
	defaultIntervalSeconds = 60
)

// unlockScript 仅当 owner 匹配时才删除锁
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end`

// ==================== LifecycleCron 生命周期定时任务 ====================

// WaitlistPromoter 候补补位能力（由 logic 层实现）
//
// 补位主要由报名变更触发，调度器每轮独立再补一次，
// 兜住错过的变更（如适配层直改数据库）。
type WaitlistPromoter interface {
	PromoteEvent(ctx context.Context, eventID uint64) error
}

// LifecycleCron 活动生命周期自动流转定时任务
//
// 职责：
//   - 每轮先做一次候补补位兜底，再按提醒窗口表发送 24h/4h/1h 提醒
//     （持久化标记保证至多一次）
//   - 活动开始后的出席采集窗口内周期性采集在场名单
//   - 宽限期结束后自动完结活动并发布总结报告
//   - 回收超时未关闭的在场会话
//
// 执行策略：
//   - 默认每分钟执行一次，整轮共用同一个时间快照
//   - Redis 分布式锁保证多实例部署时只有一个实例执行
//   - 单个活动处理失败不影响其他活动
type LifecycleCron struct {
	redis     *redis.Redis
	conf      config.LifecycleConfig
	events    *model.EventModel
	rsvps     *model.EventRsvpModel
	flags     *model.LifecycleFlagModel
	sessions  *model.PresenceSessionModel
	tracker   *attendance.Tracker
	producer  *mq.Producer
	viewCache *cache.EventViewCache
	promoter  WaitlistPromoter

	intervalSeconds int
	stopChan        chan struct{}
	running         atomic.Bool
	stopOnce        sync.Once
	ownerID         string // 分布式锁 owner 标识（防止误删他人锁）
}

// NewLifecycleCron 创建生命周期定时任务
func NewLifecycleCron(
	rds *redis.Redis,
	conf config.LifecycleConfig,
	events *model.EventModel,
	rsvps *model.EventRsvpModel,
	flags *model.LifecycleFlagModel,
	sessions *model.PresenceSessionModel,
	tracker *attendance.Tracker,
	producer *mq.Producer,
	viewCache *cache.EventViewCache,
	promoter WaitlistPromoter,
) *LifecycleCron {
	interval := conf.IntervalSeconds
	if interval <= 0 {
		interval = defaultIntervalSeconds
	}
	return &LifecycleCron{
		redis:           rds,
		conf:            conf,
		events:          events,
		rsvps:           rsvps,
		flags:           flags,
		sessions:        sessions,
		tracker:         tracker,
		producer:        producer,
		viewCache:       viewCache,
		promoter:        promoter,
		intervalSeconds: interval,
		stopChan:        make(chan struct{}),
		ownerID:         uuid.New().String(),
	}
}

// Start 启动定时任务
func (c *LifecycleCron) Start() {
	// CAS 操作：只有从 false → true 时才启动，天然防重入
	if !c.running.CompareAndSwap(false, true) {
		logx.Info("[LifecycleCron] 定时任务已在运行中，跳过重复启动")
		return
	}

	logx.Infof("[LifecycleCron] 启动生命周期定时任务，执行间隔: %d 秒, owner: %s", c.intervalSeconds, c.ownerID)

	go func() {
		// 启动后立即执行一次
		c.execute()

		ticker := time.NewTicker(time.Duration(c.intervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.execute()
			case <-c.stopChan:
				logx.Info("[LifecycleCron] 定时任务已停止")
				return
			}
		}
	}()
}

// Stop 停止定时任务
func (c *LifecycleCron) Stop() {
	if !c.running.Load() {
		return
	}
	// sync.Once 保证 close(stopChan) 只执行一次
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.running.Store(false)
}

// RunOnce 手动执行一次扫描（供测试/运维使用）
func (c *LifecycleCron) RunOnce() {
	logx.Info("[LifecycleCron] 手动触发生命周期扫描")
	c.execute()
}

// execute 执行一轮扫描
func (c *LifecycleCron) execute() {
	ctx := context.Background()

	// 分布式锁：多实例只有一个执行
	locked, err := c.tryLock(ctx)
	if err != nil {
		logx.Errorf("[LifecycleCron] 获取锁失败: key=%s, err=%v", lockKey, err)
		return
	}
	if !locked {
		return
	}
	defer c.unlock(ctx)

	start := time.Now()
	defer func() {
		tickDuration.Observe(time.Since(start).Seconds())
	}()

	// 整轮共用同一个时间快照，窗口判定不受扫描耗时漂移影响
	now := start.Unix()

	// 1. 回收超时未关闭的在场会话
	c.reapStaleSessions(ctx, now)

	// 2. 逐个处理进行中的活动
	events, err := c.events.ListActive(ctx)
	if err != nil {
		logx.Errorf("[LifecycleCron] 查询进行中活动失败: %v", err)
		tickErrors.WithLabelValues("list").Inc()
		return
	}
	for i := range events {
		if err := c.processOne(ctx, now, &events[i]); err != nil {
			logx.Errorf("[LifecycleCron] 处理活动 %d 失败: %v", events[i].ID, err)
			tickErrors.WithLabelValues("process").Inc()
			continue // 单个失败不影响其他
		}
	}
}

// processOne 处理单个活动的生命周期
func (c *LifecycleCron) processOne(ctx context.Context, now int64, ev *model.Event) error {
	// 0. 候补补位兜底（提醒名单按补位后的结果计算）
	if c.promoter != nil {
		if err := c.promoter.PromoteEvent(ctx, ev.ID); err != nil {
			logx.Errorf("[LifecycleCron] 候补补位失败: eventId=%d, err=%v", ev.ID, err)
			tickErrors.WithLabelValues("promote").Inc()
		}
	}

	// 1. 提醒窗口
	flags, err := c.flags.GetOrCreate(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("读取生命周期标记失败: %w", err)
	}
	for _, w := range dueReminders(now, ev.ScheduledTime, flags) {
		c.fireReminder(ctx, ev, w)
	}

	// 2. 出席采集窗口
	captureWindow := time.Duration(c.conf.CaptureWindowMinutes) * time.Minute
	if inCaptureWindow(now, ev.ScheduledTime, captureWindow) {
		marked, err := c.tracker.Capture(ctx, ev.ID, ev.VenueRef, now)
		if err != nil {
			logx.Errorf("[LifecycleCron] 出席采集失败: eventId=%d, err=%v", ev.ID, err)
			tickErrors.WithLabelValues("capture").Inc()
		} else if marked > 0 {
			attendanceMarked.Add(float64(marked))
		}
	}

	// 3. 完结判定
	grace := time.Duration(c.conf.GraceMinutes) * time.Minute
	if completionDue(now, ev.ScheduledTime, grace) {
		return c.complete(ctx, now, ev)
	}
	return nil
}

// fireReminder 发送单档提醒
//
// 顺序固定：先尝试发送，再写持久化标记，发布失败不阻止标记写入。
// 标记写失败时下一轮会重发（宁可偶发重复，不可让标记在发送前就挡住提醒）。
// 满员门槛档在满员时既不发送也不置标记：窗口内有人退出仍可触发。
func (c *LifecycleCron) fireReminder(ctx context.Context, ev *model.Event, w reminderWindow) {
	confirmed := int64(-1)
	if w.capacityGated || w.lastCall {
		count, err := c.rsvps.CountByEventStatus(ctx, nil, ev.ID, model.RsvpConfirmed)
		if err != nil {
			logx.Errorf("[LifecycleCron] 统计确认人数失败: eventId=%d, err=%v", ev.ID, err)
			tickErrors.WithLabelValues("reminder").Inc()
			return
		}
		confirmed = count
	}
	full := ev.Capacity > 0 && confirmed >= int64(ev.Capacity)
	if w.capacityGated && full {
		return
	}

	var targets []uint64
	if w.targeted {
		ids, err := c.rsvps.ConfirmedUserIDs(ctx, ev.ID)
		if err != nil {
			logx.Errorf("[LifecycleCron] 查询确认名单失败: eventId=%d, err=%v", ev.ID, err)
		} else {
			targets = ids
		}
	}
	c.producer.PublishReminder(ctx, ev, w.kind, targets)
	remindersSent.WithLabelValues(w.kind).Inc()

	// 未满员时附带补位召集（与主提醒共用同一个标记）
	if w.lastCall && !full {
		c.producer.PublishReminder(ctx, ev, messaging.ReminderLastCall, nil)
		remindersSent.WithLabelValues(messaging.ReminderLastCall).Inc()
	}

	won, err := c.flags.SetFlag(ctx, ev.ID, w.flagColumn)
	if err != nil {
		logx.Errorf("[LifecycleCron] 写提醒标记失败: eventId=%d, flag=%s, err=%v", ev.ID, w.flagColumn, err)
		tickErrors.WithLabelValues("flag").Inc()
		return
	}
	if !won {
		logx.Infof("[LifecycleCron] 提醒标记已被其他实例置位: eventId=%d, flag=%s", ev.ID, w.flagColumn)
		return
	}
	logx.Infof("[LifecycleCron] 提醒已发送: eventId=%d, kind=%s, targets=%d", ev.ID, w.kind, len(targets))
}

// complete 完结活动
//
// MarkCompleted 带状态条件，只有赢得状态更新的轮次发布总结报告。
func (c *LifecycleCron) complete(ctx context.Context, now int64, ev *model.Event) error {
	// 完结前做最后一次出席采集，兜住窗口边缘的在场用户
	if marked, err := c.tracker.Capture(ctx, ev.ID, ev.VenueRef, now); err == nil && marked > 0 {
		attendanceMarked.Add(float64(marked))
	}

	won, err := c.events.MarkCompleted(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("活动完结失败: %w", err)
	}
	if !won {
		// 已被其他实例完结
		return nil
	}
	eventsCompleted.Inc()
	c.viewCache.Invalidate(ctx, ev.ID)

	// 汇总出席报告并发布总结
	roster, err := c.tracker.Roster(ctx, ev.ID)
	if err != nil {
		logx.Errorf("[LifecycleCron] 汇总出席报告失败: eventId=%d, err=%v", ev.ID, err)
		roster = nil
	}
	attendees := make([]messaging.CompletedAttendee, 0, len(roster))
	for _, a := range roster {
		attendees = append(attendees, messaging.CompletedAttendee{
			UserID:      a.UserID,
			Attended:    a.Attended,
			FirstSeenAt: a.FirstSeenAt,
		})
	}
	c.producer.PublishCompleted(ctx, ev, attendees)

	logx.Infof("[LifecycleCron] 活动已完结: eventId=%d, title=%s, roster=%d", ev.ID, ev.Title, len(attendees))
	return nil
}

// reapStaleSessions 回收超时未关闭的在场会话
func (c *LifecycleCron) reapStaleSessions(ctx context.Context, now int64) {
	staleHours := c.conf.StaleSessionHours
	if staleHours <= 0 {
		return
	}
	olderThan := now - int64(staleHours)*3600
	closed, err := c.sessions.CloseStale(ctx, olderThan, now)
	if err != nil {
		logx.Errorf("[LifecycleCron] 回收在场会话失败: %v", err)
		tickErrors.WithLabelValues("reap").Inc()
		return
	}
	if closed > 0 {
		logx.Infof("[LifecycleCron] 回收超时在场会话: %d 条", closed)
	}
}

// ==================== 分布式锁 ====================

// tryLock 尝试获取分布式锁
func (c *LifecycleCron) tryLock(ctx context.Context) (bool, error) {
	// SETNX + EXPIRE 原子操作，value 存入 ownerID
	ok, err := c.redis.SetnxExCtx(ctx, lockKey, c.ownerID, lockExpireSeconds)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// unlock 释放分布式锁（仅 owner 匹配时才删除）
func (c *LifecycleCron) unlock(ctx context.Context) {
	result, err := c.redis.EvalCtx(ctx, unlockScript, []string{lockKey}, c.ownerID)
	if err != nil {
		logx.Errorf("[LifecycleCron] 释放锁失败: key=%s, err=%v", lockKey, err)
		return
	}
	// result == 0 表示锁已被其他实例持有（过期后被抢占），属正常现象
	if fmt.Sprintf("%v", result) == "0" {
		logx.Infof("[LifecycleCron] 锁已被其他实例持有，跳过释放: key=%s", lockKey)
	}
}
