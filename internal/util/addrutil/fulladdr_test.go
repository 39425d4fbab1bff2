package addrutil

import (
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPeerID = "12D3KooWM1So76jzugAettgrfA1jfcaKA66EAE6k1zwAT3oVzcnK"

func TestSplitPeerAddr(t *testing.T) {
	addr := ma.StringCast("/ip4/1.2.3.4/tcp/4001/p2p/" + testPeerID)

	id, transport, err := SplitPeerAddr(addr)
	require.NoError(t, err)
	assert.Equal(t, testPeerID, id.String())
	assert.Equal(t, "/ip4/1.2.3.4/tcp/4001", transport.String())
}

func TestSplitPeerAddr_Invalid(t *testing.T) {
	_, _, err := SplitPeerAddr(nil)
	assert.ErrorIs(t, err, ErrEmptyAddress)

	_, _, err = SplitPeerAddr(ma.StringCast("/ip4/1.2.3.4/tcp/4001"))
	assert.ErrorIs(t, err, ErrMissingPeerID)

	// /p2p 不在末尾
	_, _, err = SplitPeerAddr(ma.StringCast("/p2p/" + testPeerID + "/p2p-circuit"))
	assert.ErrorIs(t, err, ErrMissingPeerID)
}

func TestParsePeerAddrs(t *testing.T) {
	got, err := ParsePeerAddrs([]string{"/ip4/1.2.3.4/tcp/4001/p2p/" + testPeerID})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = ParsePeerAddrs([]string{"/ip4/1.2.3.4/tcp/4001"})
	assert.ErrorIs(t, err, ErrMissingPeerID)

	_, err = ParsePeerAddrs([]string{"not-an-addr"})
	assert.Error(t, err)
}

func TestParseAddrs(t *testing.T) {
	got, err := ParseAddrs([]string{"/ip4/0.0.0.0/tcp/0", "/ip6/::/tcp/0"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ParseAddrs([]string{"garbage"})
	assert.Error(t, err)
}
