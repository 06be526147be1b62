package logic

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"community-bot/app/presence/ws/hub"
	"community-bot/app/presence/ws/internal/svc"
	"community-bot/app/presence/ws/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

// PresenceLogic 在场消息处理器
//
// 会话以 MySQL 为准（出席采集从库里读），Redis 镜像只服务于
// 实时查询，两者写入失败互不影响。
type PresenceLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	hub    *hub.Hub
	logx.Logger
}

// NewPresenceLogic 创建在场消息处理器
func NewPresenceLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PresenceLogic {
	return &PresenceLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// SetHub 注入 Hub（Hub 与处理器互相引用，构造后补绑）
func (l *PresenceLogic) SetHub(h *hub.Hub) {
	l.hub = h
}

// HandleAuth 处理认证
func (l *PresenceLogic) HandleAuth(client *hub.Client, msg *types.WSMessage) error {
	var data types.AuthData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errors.New("认证数据格式错误")
	}

	userID, err := l.svcCtx.JwtAuth.ParseToken(data.Token)
	if err != nil {
		client.SendMessage(&types.WSMessage{
			Type:      types.TypeAuthFailed,
			Timestamp: time.Now().Unix(),
		})
		return nil
	}

	client.SetUserID(userID)
	client.SetAuthed(true)
	l.hub.BindClient(client)

	client.SendMessage(&types.WSMessage{
		Type:      types.TypeAuthSuccess,
		Timestamp: time.Now().Unix(),
	})
	l.Infof("用户 %d 认证成功", userID)
	return nil
}

// HandleJoin 处理进入频道
func (l *PresenceLogic) HandleJoin(client *hub.Client, msg *types.WSMessage) error {
	var data types.JoinData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.VenueRef == "" {
		return errors.New("进入频道数据格式错误")
	}

	userID := client.GetUserID()
	now := time.Now().Unix()

	if err := l.svcCtx.SessionModel.Open(l.ctx, userID, data.VenueRef, now); err != nil {
		l.Errorf("在场会话落库失败: user=%d, venue=%s, err=%v", userID, data.VenueRef, err)
		return errors.New("进入频道失败")
	}

	client.EnterVenue(data.VenueRef)
	l.hub.MirrorJoin(l.ctx, data.VenueRef, userID)

	l.sendAck(client, "join", data.VenueRef)
	return nil
}

// HandleLeave 处理离开频道
func (l *PresenceLogic) HandleLeave(client *hub.Client, msg *types.WSMessage) error {
	var data types.LeaveData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.VenueRef == "" {
		return errors.New("离开频道数据格式错误")
	}

	userID := client.GetUserID()
	now := time.Now().Unix()

	if err := l.svcCtx.SessionModel.Close(l.ctx, userID, data.VenueRef, now); err != nil {
		l.Errorf("在场会话关闭失败: user=%d, venue=%s, err=%v", userID, data.VenueRef, err)
		return errors.New("离开频道失败")
	}

	client.ExitVenue(data.VenueRef)
	l.hub.MirrorLeave(l.ctx, data.VenueRef, userID)

	l.sendAck(client, "leave", data.VenueRef)
	return nil
}

// HandleDisconnect 连接断开，关闭该用户所有在场会话
func (l *PresenceLogic) HandleDisconnect(client *hub.Client) {
	userID := client.GetUserID()
	now := time.Now().Unix()

	for _, venueRef := range client.OpenVenues() {
		if err := l.svcCtx.SessionModel.Close(l.ctx, userID, venueRef, now); err != nil {
			l.Errorf("断连清理会话失败: user=%d, venue=%s, err=%v", userID, venueRef, err)
			continue
		}
		l.hub.MirrorLeave(l.ctx, venueRef, userID)
	}
}

func (l *PresenceLogic) sendAck(client *hub.Client, action, venueRef string) {
	data, _ := json.Marshal(types.AckData{
		Action:   action,
		VenueRef: venueRef,
		Success:  true,
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeAck,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}
