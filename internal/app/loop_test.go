package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/discovery/coordinator"
	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/types"
)

// ============================================================================
//                              Mock 网络
// ============================================================================

type mockNetwork struct {
	self   peer.ID
	events chan interfaces.NetworkEvent

	mu         sync.Mutex
	publishErr error
	published  [][]byte
	added      map[peer.ID][]string
	lookups    int
	external   []string
}

var _ interfaces.Network = (*mockNetwork)(nil)

func newMockNetwork(t *testing.T) *mockNetwork {
	t.Helper()
	self, err := peer.Decode("12D3KooWM1So76jzugAettgrfA1jfcaKA66EAE6k1zwAT3oVzcnK")
	require.NoError(t, err)
	return &mockNetwork{
		self:   self,
		events: make(chan interfaces.NetworkEvent, 256),
		added:  make(map[peer.ID][]string),
	}
}

func (m *mockNetwork) LocalPeer() peer.ID {
	return m.self
}

func (m *mockNetwork) Events() <-chan interfaces.NetworkEvent {
	return m.events
}

func (m *mockNetwork) Close() error {
	return nil
}

func (m *mockNetwork) Publish(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, data)
	return nil
}

func (m *mockNetwork) AddAddress(p peer.ID, addr ma.Multiaddr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added[p] = append(m.added[p], addr.String())
}

func (m *mockNetwork) FindClosestPeers(peer.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
}

func (m *mockNetwork) AddExternalAddress(addr ma.Multiaddr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.external = append(m.external, addr.String())
}

func (m *mockNetwork) lookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

// ============================================================================
//                              测试辅助
// ============================================================================

type harness struct {
	net     *mockNetwork
	gate    *dissemination.Gate
	metrics *metrics.Counters
	loop    *Loop
	cancel  context.CancelFunc
	result  chan error
}

func startLoop(t *testing.T, interval time.Duration) *harness {
	t.Helper()

	n := newMockNetwork(t)
	m := metrics.New()
	gate := dissemination.NewGate(n, m)
	coord, err := coordinator.New(n, n, &coordinator.Config{Interval: interval, QueryTimeout: time.Second})
	require.NoError(t, err)

	h := &harness{
		net:     n,
		gate:    gate,
		metrics: m,
		loop:    NewLoop(n, gate, coord, m),
		result:  make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.result <- h.loop.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *harness) next(t *testing.T) types.NodeEvent {
	t.Helper()
	select {
	case ev, ok := <-h.loop.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func testOffer(t *testing.T, payload string) string {
	t.Helper()
	conv, err := bech32.ConvertBits([]byte(payload), 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.EncodeM("offer", conv)
	require.NoError(t, err)
	return s
}

// ============================================================================
//                              测试
// ============================================================================

// TestLoop_InitializedFirst Initialized 总是第一个事件
func TestLoop_InitializedFirst(t *testing.T) {
	h := startLoop(t, time.Hour)

	// 在循环启动前就已排队的网络事件也排在 Initialized 之后
	h.net.events <- interfaces.ConnectionEstablished{Peer: h.net.self}

	ev := h.next(t)
	assert.Equal(t, types.Initialized{PeerID: h.net.self}, ev)
	assert.Equal(t, types.KindPeerConnected, h.next(t).Kind())
}

func TestLoop_RunTwice(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)
	assert.ErrorIs(t, h.loop.Run(context.Background()), ErrAlreadyRunning)
}

func TestLoop_BroadcastSubmitted(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	o := testOffer(t, "hello")
	require.NoError(t, h.gate.Submit(context.Background(), o))

	assert.Equal(t, types.OfferBroadcasted{Offer: []byte(o)}, h.next(t))
	assert.Equal(t, uint64(1), h.metrics.Snapshot().OffersBroadcasted)
}

// TestLoop_DuplicateBroadcast 同一 offer 提交两次产生两个成功事件
func TestLoop_DuplicateBroadcast(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	o := testOffer(t, "same")
	require.NoError(t, h.gate.Submit(context.Background(), o))
	require.NoError(t, h.gate.Submit(context.Background(), o))

	assert.Equal(t, types.KindOfferBroadcasted, h.next(t).Kind())
	assert.Equal(t, types.KindOfferBroadcasted, h.next(t).Kind())
}

func TestLoop_BroadcastFailure(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	h.net.mu.Lock()
	h.net.publishErr = errors.New("insufficient peers")
	h.net.mu.Unlock()

	o := testOffer(t, "lonely")
	require.NoError(t, h.gate.Submit(context.Background(), o))

	ev := h.next(t)
	failed, ok := ev.(types.OfferBroadcastFailed)
	require.True(t, ok)
	assert.Equal(t, []byte(o), failed.Offer)
	assert.Equal(t, uint64(0), h.metrics.Snapshot().OffersBroadcasted)

	// 失败不影响后续事件
	h.net.events <- interfaces.ConnectionEstablished{Peer: h.net.self}
	assert.Equal(t, types.KindPeerConnected, h.next(t).Kind())
}

func TestLoop_ConnectionEvents(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	p := h.net.self
	h.net.events <- interfaces.ConnectionEstablished{Peer: p}
	h.net.events <- interfaces.ConnectionEstablished{Peer: p}
	h.net.events <- interfaces.ConnectionClosed{Peer: p}

	assert.Equal(t, types.PeerConnected{PeerID: p}, h.next(t))
	assert.Equal(t, types.PeerConnected{PeerID: p}, h.next(t))
	assert.Equal(t, types.PeerDisconnected{PeerID: p}, h.next(t))

	snap := h.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.Peers)
	assert.Equal(t, uint64(2), snap.TotalConnections)
}

// TestLoop_InboundMessages 非 offer 载荷静默丢弃
func TestLoop_InboundMessages(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	h.net.events <- interfaces.MessageReceived{From: h.net.self, Data: []byte("garbage")}
	h.net.events <- interfaces.MessageReceived{From: h.net.self, Data: []byte("offer1abc")}

	assert.Equal(t, types.OfferReceived{Offer: []byte("offer1abc")}, h.next(t))
	assert.Equal(t, uint64(1), h.metrics.Snapshot().OffersReceived)
}

func TestLoop_IdentifyAndListen(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	remote := h.net.self
	h.net.events <- interfaces.PeerIdentified{
		Peer: remote,
		ListenAddrs: []ma.Multiaddr{
			ma.StringCast("/ip4/127.0.0.1/tcp/4001"),
			ma.StringCast("/ip4/8.8.8.8/tcp/4001"),
		},
		ObservedAddr: ma.StringCast("/ip4/203.0.113.7/tcp/4001"),
	}
	listen := ma.StringCast("/ip4/0.0.0.0/tcp/4001")
	h.net.events <- interfaces.ListenAddressAdded{Addr: listen}

	// identify 不产生事件，下一个事件就是监听地址
	assert.Equal(t, types.NewListenAddress{Addr: listen}, h.next(t))

	h.net.mu.Lock()
	defer h.net.mu.Unlock()
	assert.Equal(t, []string{"/ip4/8.8.8.8/tcp/4001"}, h.net.added[remote])
	assert.Equal(t, []string{"/ip4/203.0.113.7/tcp/4001"}, h.net.external)
}

func TestLoop_DiscoveryTicks(t *testing.T) {
	h := startLoop(t, 5*time.Millisecond)
	h.next(t)

	assert.Eventually(t, func() bool {
		return h.net.lookupCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

// TestLoop_FirstLookupImmediate 启动后不等待一个完整周期就发起发现
func TestLoop_FirstLookupImmediate(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	assert.Eventually(t, func() bool {
		return h.net.lookupCount() == 1
	}, time.Second, 5*time.Millisecond)
}

// TestLoop_BackPressure 输出通道满时循环停止消费网络事件
func TestLoop_BackPressure(t *testing.T) {
	h := startLoop(t, time.Hour)

	const total = 150
	for i := 0; i < total; i++ {
		h.net.events <- interfaces.ConnectionEstablished{Peer: h.net.self}
	}

	// Initialized 占一个位置，循环最多再处理 EventCapacity 个事件后阻塞
	assert.Eventually(t, func() bool {
		return len(h.loop.Events()) == EventCapacity
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, EventCapacity, len(h.loop.Events()))
	assert.Greater(t, len(h.net.events), 0)

	// 消费后继续推进，且顺序不变
	assert.Equal(t, types.KindInitialized, h.next(t).Kind())
	for i := 0; i < total; i++ {
		assert.Equal(t, types.KindPeerConnected, h.next(t).Kind())
	}
	assert.Equal(t, uint64(total), h.metrics.Snapshot().TotalConnections)
}

func TestLoop_StopsOnCancel(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	h.cancel()

	select {
	case err := <-h.result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	<-h.loop.Done()

	_, ok := <-h.loop.Events()
	assert.False(t, ok)
}

// TestLoop_CancelWhileBlocked 阻塞在事件输出上时也能退出
func TestLoop_CancelWhileBlocked(t *testing.T) {
	h := startLoop(t, time.Hour)
	for i := 0; i < EventCapacity+10; i++ {
		h.net.events <- interfaces.ConnectionEstablished{Peer: h.net.self}
	}
	assert.Eventually(t, func() bool {
		return len(h.loop.Events()) == EventCapacity
	}, 2*time.Second, 5*time.Millisecond)

	h.cancel()
	select {
	case err := <-h.result:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop while blocked")
	}
}

func TestLoop_NetworkClosed(t *testing.T) {
	h := startLoop(t, time.Hour)
	h.next(t)

	close(h.net.events)

	select {
	case err := <-h.result:
		assert.ErrorIs(t, err, ErrNetworkClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
