package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/splash-p2p/go-splash/pkg/types"
)

// printer 把节点事件打印到控制台
type printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, errOut: errOut}
}

// HandleEvent 实现 api.EventHandler
func (p *printer) HandleEvent(ev types.NodeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case types.Initialized:
		fmt.Fprintf(p.out, "Our Peer ID: %s\n", e.PeerID)
	case types.NewListenAddress:
		fmt.Fprintf(p.out, "Listening on: %s\n", e.Addr)
	case types.PeerConnected:
		fmt.Fprintf(p.out, "Connected to peer: %s\n", e.PeerID)
	case types.PeerDisconnected:
		fmt.Fprintf(p.out, "Disconnected from peer: %s\n", e.PeerID)
	case types.OfferReceived:
		fmt.Fprintf(p.out, "Received Offer: %s\n", e.Offer)
	case types.OfferBroadcasted:
		fmt.Fprintf(p.out, "Broadcasting Offer: %s\n", e.Offer)
	case types.OfferBroadcastFailed:
		fmt.Fprintf(p.errOut, "Broadcasting offer failed: %s\n", e.Reason())
	}
}
