// Package cache 提供活动服务的缓存层实现
//
// 设计原则：
//   - singleflight 防止缓存击穿
//   - 空值缓存防止缓存穿透
//   - 失效采用单次删除策略
//   - 随机 TTL 防止缓存雪崩
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"community-bot/app/event/bot/internal/types"
	"community-bot/app/event/model"
	commonCache "community-bot/common/cache"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"golang.org/x/sync/singleflight"
)

// nullValuePlaceholder 空值标记，用于防止缓存穿透
const nullValuePlaceholder = "{\"null\":true}"

// Loader 视图装配函数（缓存未命中时回源）
type Loader func(ctx context.Context) (*types.EventView, error)

// EventViewCache 活动视图缓存
//
// 缓存策略：
//   - Key: event:view:{id}
//   - TTL: 5min ± 10%
//   - 失效时机: 任何报名变更、活动修改/删除、候补补位后主动删除
type EventViewCache struct {
	rds     *redis.Redis
	sfGroup singleflight.Group
}

// NewEventViewCache 创建活动视图缓存
func NewEventViewCache(rds *redis.Redis) *EventViewCache {
	return &EventViewCache{rds: rds}
}

// Get 获取活动视图（带缓存）
//
// 流程：
//  1. 查询 Redis 缓存
//  2. 缓存命中：反序列化返回（空值标记按不存在处理）
//  3. 缓存未命中：singleflight 回源装配，写入缓存
func (c *EventViewCache) Get(ctx context.Context, eventID uint64, load Loader) (*types.EventView, error) {
	if c == nil || c.rds == nil {
		return load(ctx)
	}

	key := commonCache.EventViewKey(eventID)

	// 1. 尝试从缓存获取
	val, err := c.rds.GetCtx(ctx, key)
	if err != nil && !errors.Is(err, redis.Nil) {
		// Redis 错误，降级回源
		logx.WithContext(ctx).Errorf("[EventViewCache] Redis 错误，降级查 DB: key=%s, err=%v", key, err)
		return load(ctx)
	}

	// 2. 缓存命中
	if val != "" {
		if val == nullValuePlaceholder {
			return nil, model.ErrEventNotFound
		}

		var view types.EventView
		if err := json.Unmarshal([]byte(val), &view); err != nil {
			logx.WithContext(ctx).Errorf("[EventViewCache] 反序列化失败: key=%s, err=%v", key, err)
			// 删除损坏的缓存，下次重建
			_, _ = c.rds.DelCtx(ctx, key)
			return load(ctx)
		}
		return &view, nil
	}

	// 3. 缓存未命中，singleflight 保护回源
	result, err, _ := c.sfGroup.Do(key, func() (interface{}, error) {
		view, err := load(ctx)
		if err != nil {
			if errors.Is(err, model.ErrEventNotFound) {
				// 写入空值标记，短 TTL 防止穿透
				_ = c.rds.SetexCtx(ctx, key, nullValuePlaceholder, 60)
			}
			return nil, err
		}

		data, marshalErr := json.Marshal(view)
		if marshalErr != nil {
			logx.WithContext(ctx).Errorf("[EventViewCache] 序列化失败: eventId=%d, err=%v", eventID, marshalErr)
			return view, nil
		}
		ttl := commonCache.RandomTTLSeconds(commonCache.DefaultTTL)
		if setErr := c.rds.SetexCtx(ctx, key, string(data), ttl); setErr != nil {
			logx.WithContext(ctx).Errorf("[EventViewCache] 写入缓存失败: key=%s, err=%v", key, setErr)
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.EventView), nil
}

// Invalidate 删除活动视图缓存
//
// 调用时机：报名状态变更、候补补位、活动修改/完结/删除之后
func (c *EventViewCache) Invalidate(ctx context.Context, eventID uint64) {
	if c == nil || c.rds == nil {
		return
	}
	key := commonCache.EventViewKey(eventID)
	if _, err := c.rds.DelCtx(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("[EventViewCache] 删除缓存失败: key=%s, err=%v", key, err)
	}
}
