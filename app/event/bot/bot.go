/**
 * @projectName: CommunityBot
 * @package: main
 * @className: EventBot
 * @author: E同学
 * @description: 活动机器人服务入口，提供活动生命周期、RSVP名单与出席统计服务
 * @date: 2026-08-12
 * @version: 1.0
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"community-bot/app/event/bot/internal/attendance"
	botconfig "community-bot/app/event/bot/internal/config"
	"community-bot/app/event/bot/internal/cron"
	"community-bot/app/event/bot/internal/logic"
	"community-bot/app/event/bot/internal/mq"
	"community-bot/app/event/bot/internal/svc"
	"community-bot/app/event/bot/internal/types"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

// 配置文件路径
var configFile = flag.String("f", "etc/bot.yaml", "the config file")

func main() {
	flag.Parse()

	// 加载配置
	var c botconfig.Config
	conf.MustLoad(*configFile, &c)
	c.MustSetUp()

	// 创建服务上下文（依赖注入）
	svcCtx := svc.NewServiceContext(c)
	defer func() {
		if svcCtx.Messaging != nil {
			_ = svcCtx.Messaging.Close()
		}
	}()

	// 启动生命周期定时任务
	lifecycleCron := newLifecycleCron(svcCtx)
	lifecycleCron.Start()
	defer lifecycleCron.Stop()

	// 启动 MQ 消费者
	startMQConsumer(svcCtx)

	fmt.Printf("Starting event bot service (%s)...\n", c.Name)
	waitForShutdown()
}

// newLifecycleCron 装配生命周期定时任务
func newLifecycleCron(svcCtx *svc.ServiceContext) *cron.LifecycleCron {
	tracker := attendance.NewTracker(
		svcCtx.RsvpModel,
		svcCtx.PresenceSessionModel,
		svcCtx.AttendanceRecordModel,
	)
	return cron.NewLifecycleCron(
		svcCtx.Redis,
		svcCtx.Config.Lifecycle,
		svcCtx.EventModel,
		svcCtx.RsvpModel,
		svcCtx.LifecycleFlagModel,
		svcCtx.PresenceSessionModel,
		tracker,
		svcCtx.Producer,
		svcCtx.ViewCache,
		logic.NewSetRsvpStatusLogic(context.Background(), svcCtx),
	)
}

// startMQConsumer 启动 MQ 消费者（异步）
func startMQConsumer(svcCtx *svc.ServiceContext) {
	if svcCtx.Messaging == nil {
		logx.Info("消息中间件未启用，跳过 MQ 消费者")
		return
	}

	// rsvp.requested 命令消费者
	rsvpConsumer := mq.NewRsvpRequestedConsumer(&rsvpCommandHandler{svcCtx: svcCtx})
	rsvpConsumer.Subscribe(svcCtx.Messaging)

	// 在 goroutine 中启动消息路由
	go func() {
		logx.Info("MQ 消费者服务启动中...")
		if err := svcCtx.Messaging.Run(context.Background()); err != nil {
			logx.Errorf("MQ 消息路由停止: %v", err)
		}
	}()

	// 等待 Router 启动
	go func() {
		<-svcCtx.Messaging.Running()
		logx.Info("MQ 消费者服务已启动")
	}()
}

// rsvpCommandHandler 把 MQ 命令转接到 RSVP 逻辑层
type rsvpCommandHandler struct {
	svcCtx *svc.ServiceContext
}

func (h *rsvpCommandHandler) Handle(ctx context.Context, req *types.SetRsvpStatusReq) error {
	_, err := logic.NewSetRsvpStatusLogic(ctx, h.svcCtx).SetRsvpStatus(req)
	return err
}

// waitForShutdown 监听系统信号，优雅关闭
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logx.Infof("收到信号 %v，服务退出", sig)
}
