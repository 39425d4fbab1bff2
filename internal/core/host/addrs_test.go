package host

import (
	"testing"

	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strs(addrs []ma.Multiaddr) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func TestExternalAddrs_DedupAndEvict(t *testing.T) {
	e := newExternalAddrs(2)

	assert.True(t, e.add(ma.StringCast("/ip4/1.1.1.1/tcp/1")))
	assert.False(t, e.add(ma.StringCast("/ip4/1.1.1.1/tcp/1")))
	assert.True(t, e.add(ma.StringCast("/ip4/2.2.2.2/tcp/1")))
	assert.True(t, e.add(ma.StringCast("/ip4/3.3.3.3/tcp/1")))

	assert.Equal(t, []string{"/ip4/2.2.2.2/tcp/1", "/ip4/3.3.3.3/tcp/1"}, strs(e.list()))
}

func TestExternalAddrs_Factory(t *testing.T) {
	e := newExternalAddrs(8)
	e.add(ma.StringCast("/ip4/203.0.113.1/tcp/4001"))
	e.add(ma.StringCast("/ip4/10.0.0.1/tcp/4001"))

	got := e.factory([]ma.Multiaddr{
		ma.StringCast("/ip4/10.0.0.1/tcp/4001"),
		ma.StringCast("/ip4/127.0.0.1/tcp/4001"),
	})
	assert.Equal(t, []string{
		"/ip4/10.0.0.1/tcp/4001",
		"/ip4/127.0.0.1/tcp/4001",
		"/ip4/203.0.113.1/tcp/4001",
	}, strs(got))
}

func TestExpandWith(t *testing.T) {
	ifaces := []ma.Multiaddr{
		ma.StringCast("/ip4/127.0.0.1"),
		ma.StringCast("/ip4/192.168.1.5"),
		ma.StringCast("/ip6/::1"),
	}

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"ip4 any", "/ip4/0.0.0.0/tcp/4001", []string{"/ip4/127.0.0.1/tcp/4001", "/ip4/192.168.1.5/tcp/4001"}},
		{"ip6 any", "/ip6/::/tcp/4001", []string{"/ip6/::1/tcp/4001"}},
		{"specific", "/ip4/8.8.8.8/tcp/4001", []string{"/ip4/8.8.8.8/tcp/4001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandWith(ma.StringCast(tt.in), ifaces)
			assert.ElementsMatch(t, tt.want, strs(got))
		})
	}
}

// TestExpandWith_NoInterfaces 没有同族网卡地址时原样返回
func TestExpandWith_NoInterfaces(t *testing.T) {
	got := expandWith(ma.StringCast("/ip6/::/tcp/1"), []ma.Multiaddr{ma.StringCast("/ip4/127.0.0.1")})
	assert.Equal(t, []string{"/ip6/::/tcp/1"}, strs(got))
}

func TestMessageID(t *testing.T) {
	a := MessageID(&pb.Message{Data: []byte("offer1abc"), From: []byte("x")})
	b := MessageID(&pb.Message{Data: []byte("offer1abc"), From: []byte("y")})
	c := MessageID(&pb.Message{Data: []byte("offer1abd")})

	assert.Equal(t, a, b, "same payload from different peers must share an id")
	assert.NotEqual(t, a, c)
	require.Len(t, a, 64)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", PayloadID(nil))
}
