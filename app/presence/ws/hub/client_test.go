package hub

import (
	"sync"
	"testing"
	"time"

	"community-bot/app/presence/ws/internal/types"
)

// 被顶替的连接由 Hub 关闭时，并发中的 SendMessage 不得 panic：
// send 通道永不 close，关闭只通过 done 信号传递
func TestClientCloseRacesWithSend(t *testing.T) {
	c := NewClient(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				c.SendMessage(&types.WSMessage{
					Type:      types.TypePong,
					Timestamp: time.Now().Unix(),
				})
			}
		}()
	}

	c.Close()
	c.Close() // 重复关闭幂等
	wg.Wait()

	if err := c.SendMessage(&types.WSMessage{Type: types.TypePong}); err != ErrClientClosed {
		t.Fatalf("关闭后发送应返回 ErrClientClosed, got %v", err)
	}
}

// 缓冲区写满时返回错误而不是阻塞
func TestClientSendBufferFull(t *testing.T) {
	c := NewClient(nil, nil)

	var err error
	for i := 0; i < cap(c.send)+1; i++ {
		err = c.SendMessage(&types.WSMessage{Type: types.TypePong})
	}
	if err != ErrSendBufferFull {
		t.Fatalf("缓冲区满应返回 ErrSendBufferFull, got %v", err)
	}
}
