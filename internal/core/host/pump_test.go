package host

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splash-p2p/go-splash/pkg/interfaces"
)

// TestEventPump_PreservesOrder push 不阻塞且保持顺序
func TestEventPump_PreservesOrder(t *testing.T) {
	p := newEventPump(1, 1000)

	// 消费者未启动时 push 也不阻塞
	for i := 0; i < 500; i++ {
		p.push(interfaces.MessageReceived{Data: []byte{byte(i % 256), byte(i / 256)}})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.run(ctx) }()

	for i := 0; i < 500; i++ {
		select {
		case ev := <-p.out:
			msg, ok := ev.(interfaces.MessageReceived)
			require.True(t, ok)
			assert.Equal(t, []byte{byte(i % 256), byte(i / 256)}, msg.Data)
		case <-time.After(time.Second):
			t.Fatalf("timed out at event %d", i)
		}
	}
}

func TestEventPump_DropsOverLimit(t *testing.T) {
	p := newEventPump(1, 3)
	for i := 0; i < 10; i++ {
		p.push(interfaces.MessageReceived{Data: []byte{byte(i)}})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.queue, 3)
	assert.Equal(t, uint64(7), p.dropped)
}

// TestEventPump_KeepsConnEventsOverLimit 积压时连接事件照常入队
func TestEventPump_KeepsConnEventsOverLimit(t *testing.T) {
	p := newEventPump(1, 2)
	for i := 0; i < 5; i++ {
		p.push(interfaces.MessageReceived{Data: []byte{byte(i)}})
	}
	p.push(interfaces.ConnectionEstablished{Peer: peer.ID("a")})
	p.push(interfaces.ConnectionClosed{Peer: peer.ID("a")})
	p.push(interfaces.PeerIdentified{Peer: peer.ID("a")})

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.queue, 4)
	assert.Equal(t, interfaces.ConnectionEstablished{Peer: peer.ID("a")}, p.queue[2])
	assert.Equal(t, interfaces.ConnectionClosed{Peer: peer.ID("a")}, p.queue[3])
	assert.Equal(t, uint64(4), p.dropped)
}

// TestEventPump_ClosesOnCancel ctx 取消后关闭输出通道，之后的 push 被忽略
func TestEventPump_ClosesOnCancel(t *testing.T) {
	p := newEventPump(1, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = p.run(ctx)
		close(done)
	}()

	p.push(interfaces.ConnectionEstablished{Peer: peer.ID("a")})
	<-p.out
	cancel()
	<-done

	_, ok := <-p.out
	assert.False(t, ok)

	p.push(interfaces.ConnectionEstablished{Peer: peer.ID("b")})
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.queue)
}
