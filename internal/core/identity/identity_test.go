package identity

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peerOf(t *testing.T, data []byte) peer.ID {
	t.Helper()
	key, err := Unmarshal(data)
	require.NoError(t, err)
	id, err := peer.IDFromPrivateKey(key)
	require.NoError(t, err)
	return id
}

// TestRoundTrip 保存再加载后 PeerID 不变
func TestRoundTrip(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)
	want, err := peer.IDFromPrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, Save(key, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	got, err := peer.IDFromPrivateKey(loaded)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.True(t, key.Equals(loaded))
}

// TestMarshal_NumericArray 文件中的 identity 是数字数组
func TestMarshal_NumericArray(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	data, err := Marshal(key)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"identity":[`), s)
	assert.True(t, strings.HasSuffix(s, `]}`), s)
	// protobuf 编码的 Ed25519 私钥以 0x08 0x01 开头
	assert.True(t, strings.HasPrefix(s, `{"identity":[8,1,`), s)

	original, err := peer.IDFromPrivateKey(key)
	require.NoError(t, err)
	assert.Equal(t, original, peerOf(t, data))
}

func TestMarshal_Nil(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, ErrNilPrivateKey)
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"base64 string", `{"identity":"CAESQ"}`},
		{"empty array", `{"identity":[]}`},
		{"missing field", `{}`},
		{"out of range", `{"identity":[8,1,256]}`},
		{"negative", `{"identity":[8,-1]}`},
		{"not a key", `{"identity":[1,2,3,4]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidKeyFile)
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLoadOrCreate_CreatesAndReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	first, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	second, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, first.Equals(second))
}

// TestLoadOrCreate_CorruptFile 损坏文件回退到新身份且不覆盖原文件
func TestLoadOrCreate_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0600))

	key, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{corrupt", string(data))
}

func TestLoadOrCreate_UnwritableDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "identity.json")
	_, _, err := LoadOrCreate(path)
	assert.Error(t, err)
}

// TestSave_ReplacesWithoutLeftovers 覆盖已有文件且不留下临时文件
func TestSave_ReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	key, err := Generate()
	require.NoError(t, err)
	require.NoError(t, Save(key, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, key.Equals(loaded))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "identity.json", entries[0].Name())
}

func TestSave_MissingDir(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "missing-dir", "identity.json")
	err = Save(key, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, strings.HasPrefix(err.Error(), "identity: write "), err.Error())
}
