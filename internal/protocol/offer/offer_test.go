package offer

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeOffer 生成 bech32m 编码的测试 offer
func encodeOffer(t *testing.T, payload []byte) string {
	t.Helper()
	conv, err := bech32.ConvertBits(payload, 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.EncodeM("offer", conv)
	require.NoError(t, err)
	return s
}

func TestValidate_Valid(t *testing.T) {
	s := encodeOffer(t, []byte("a small trade"))

	raw, err := Validate(s)
	require.NoError(t, err)
	assert.Equal(t, []byte(s), raw)
	assert.True(t, strings.HasPrefix(s, Tag))
}

// TestValidate_LongerThanBech32Limit 测试超过 90 字符的 offer
func TestValidate_LongerThanBech32Limit(t *testing.T) {
	s := encodeOffer(t, make([]byte, 4096))
	require.Greater(t, len(s), 90)

	_, err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_Bech32Classic(t *testing.T) {
	conv, err := bech32.ConvertBits([]byte("classic"), 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode("offer", conv)
	require.NoError(t, err)

	_, err = Validate(s)
	assert.NoError(t, err)
}

func TestValidate_TooLarge(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"exactly one byte over", MaxSize + 1},
		{"far over", MaxSize * 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(strings.Repeat("q", tt.size))
			assert.ErrorIs(t, err, ErrOfferTooLarge)
		})
	}
}

// TestValidate_SizeCheckedFirst 测试大小检查先于格式检查
func TestValidate_SizeCheckedFirst(t *testing.T) {
	_, err := Validate(strings.Repeat("!", MaxSize+1))
	assert.ErrorIs(t, err, ErrOfferTooLarge)
}

func TestValidate_InvalidFormat(t *testing.T) {
	valid := encodeOffer(t, []byte("checksum me"))
	// 改动最后一个字符破坏校验和
	last := valid[len(valid)-1]
	flipped := byte('q')
	if last == 'q' {
		flipped = 'p'
	}
	corrupted := valid[:len(valid)-1] + string(flipped)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain text", "hello world"},
		{"no separator", "offerqqqqqq"},
		{"bad checksum", corrupted},
		{"mixed case", "Offer1" + valid[6:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.input)
			assert.ErrorIs(t, err, ErrInvalidOfferFormat)
		})
	}
}

func TestHasTag(t *testing.T) {
	assert.True(t, HasTag([]byte("offer1abc")))
	assert.True(t, HasTag([]byte("offer1")))
	assert.False(t, HasTag([]byte("offer")))
	assert.False(t, HasTag([]byte("xoffer1")))
	assert.False(t, HasTag(nil))
}
