/**
 * @projectName: CommunityBot
 * @package: main
 * @className: PresenceWS
 * @author: E同学
 * @description: 在场网关服务入口，维护活动频道的实时在场名单
 * @date: 2026-08-12
 * @version: 1.0
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"community-bot/app/presence/ws/hub"
	"community-bot/app/presence/ws/internal/config"
	"community-bot/app/presence/ws/internal/handler"
	"community-bot/app/presence/ws/internal/logic"
	"community-bot/app/presence/ws/internal/svc"
)

var configFile = flag.String("f", "etc/presence.yaml", "the config file")

func main() {
	flag.Parse()

	// 加载配置
	var c config.Config
	conf.MustLoad(*configFile, &c)

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)

	// 创建在场消息处理器与 Hub（互相引用，构造后补绑）
	presenceLogic := logic.NewPresenceLogic(context.Background(), svcCtx)
	h := hub.NewHub(presenceLogic, svcCtx.RedisClient)
	presenceLogic.SetHub(h)

	// 启动 Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.WebSocketHandler(svcCtx, h))

	// 健康检查
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 在线用户数查询
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"online_users":%d}`, h.GetOnlineUserCount())
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", c.Host, c.Port),
		Handler: mux,
	}

	// 启动服务器
	go func() {
		logx.Infof("在场网关服务启动在 %s:%d", c.Host, c.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Errorf("服务器错误: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logx.Info("正在关闭服务器...")
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logx.Errorf("服务器关闭错误: %v", err)
	}

	logx.Info("服务器已停止")
}
