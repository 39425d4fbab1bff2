package api

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	splash "github.com/splash-p2p/go-splash"
	"github.com/splash-p2p/go-splash/config"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/types"
)

type stubNetwork struct {
	self   peer.ID
	events chan interfaces.NetworkEvent
}

func (n *stubNetwork) LocalPeer() peer.ID                     { return n.self }
func (n *stubNetwork) Events() <-chan interfaces.NetworkEvent { return n.events }
func (n *stubNetwork) Close() error                           { return nil }
func (n *stubNetwork) Publish(context.Context, []byte) error  { return nil }
func (n *stubNetwork) AddAddress(peer.ID, ma.Multiaddr)       {}
func (n *stubNetwork) FindClosestPeers(peer.ID)               {}
func (n *stubNetwork) AddExternalAddress(ma.Multiaddr)        {}

func TestModule(t *testing.T) {
	net := &stubNetwork{self: testPeer(t), events: make(chan interfaces.NetworkEvent, 4)}

	cfg := config.NewConfig()
	cfg.Network.KnownPeers = []string{"/ip4/1.2.3.4/tcp/4001/p2p/12D3KooWCLvBXPohyMUKhbRrkcfRRkMLDfnCqyCjNSk6qyfjLMJ8"}
	cfg.API.ListenAddr = "127.0.0.1:0"

	seen := make(chan types.NodeEvent, 8)
	var server *Server
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() interfaces.Network { return net }),
		fx.Provide(fx.Annotate(
			func() EventHandler { return EventHandlerFunc(func(ev types.NodeEvent) { seen <- ev }) },
			fx.ResultTags(`group:"event_handlers"`),
		)),
		splash.Module(),
		Module(),
		fx.Populate(&server),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, server)
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	select {
	case ev := <-seen:
		assert.Equal(t, types.Initialized{PeerID: net.self}, ev)
	case <-time.After(5 * time.Second):
		t.Fatal("no event dispatched")
	}
}

func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	assert.Nil(t, ProvideHook(cfg))

	cfg.Hook.URL = "http://localhost:5000/offers"
	h := ProvideHook(cfg)
	require.NotNil(t, h)
	h.Close()

	assert.Nil(t, ProvideServer(ServerParams{Config: config.NewConfig()}))
}
