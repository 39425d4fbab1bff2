package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splash-p2p/go-splash/pkg/types"
)

func TestPrinter(t *testing.T) {
	id, err := peer.Decode("12D3KooWM1So76jzugAettgrfA1jfcaKA66EAE6k1zwAT3oVzcnK")
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	p := newPrinter(&out, &errOut)

	p.HandleEvent(types.Initialized{PeerID: id})
	p.HandleEvent(types.NewListenAddress{Addr: ma.StringCast("/ip4/127.0.0.1/tcp/11511")})
	p.HandleEvent(types.PeerConnected{PeerID: id})
	p.HandleEvent(types.OfferReceived{Offer: []byte("offer1abc")})
	p.HandleEvent(types.OfferBroadcasted{Offer: []byte("offer1def")})
	p.HandleEvent(types.PeerDisconnected{PeerID: id})
	p.HandleEvent(types.OfferBroadcastFailed{Offer: []byte("offer1def"), Err: errors.New("no peers")})

	assert.Equal(t, ""+
		"Our Peer ID: "+id.String()+"\n"+
		"Listening on: /ip4/127.0.0.1/tcp/11511\n"+
		"Connected to peer: "+id.String()+"\n"+
		"Received Offer: offer1abc\n"+
		"Broadcasting Offer: offer1def\n"+
		"Disconnected from peer: "+id.String()+"\n",
		out.String())
	assert.Equal(t, "Broadcasting offer failed: no peers\n", errOut.String())
}
