package identity

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/libp2p/go-libp2p/core/crypto"

	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("core/identity")

// ============================================================================
//                              密钥生成
// ============================================================================

// Generate 生成新的 Ed25519 身份
func Generate() (crypto.PrivKey, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate key: %w", err)
	}
	return priv, nil
}

// ============================================================================
//                              文件格式
// ============================================================================

// keyFile 身份文件结构
type keyFile struct {
	Identity byteArray `json:"identity"`
}

// byteArray 以 JSON 数字数组编解码的字节串
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	nums := make([]uint16, len(b))
	for i, v := range b {
		nums[i] = uint16(v)
	}
	return json.Marshal(nums)
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, v := range nums {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Marshal 编码为身份文件内容
func Marshal(key crypto.PrivKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}
	raw, err := crypto.MarshalPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("identity: encode key: %w", err)
	}
	return json.Marshal(keyFile{Identity: raw})
}

// Unmarshal 解析身份文件内容
func Unmarshal(data []byte) (crypto.PrivKey, error) {
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	if len(kf.Identity) == 0 {
		return nil, fmt.Errorf("%w: empty identity", ErrInvalidKeyFile)
	}
	key, err := crypto.UnmarshalPrivateKey(kf.Identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	return key, nil
}

// ============================================================================
//                              持久化
// ============================================================================

// Save 保存身份到文件（原子写入，权限 0600）
func Save(key crypto.PrivKey, path string) error {
	data, err := Marshal(key)
	if err != nil {
		return err
	}
	return writeKeyFile(path, data, 0600)
}

// Load 从文件加载身份
func Load(path string) (crypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return Unmarshal(data)
}

// LoadOrCreate 加载身份文件，不存在时生成并保存
//
// 文件内容无效时记录警告并返回新生成的身份，原文件保持不变。
// created 表示返回的身份是否为新生成。
func LoadOrCreate(path string) (key crypto.PrivKey, created bool, err error) {
	key, err = Load(path)
	switch {
	case err == nil:
		return key, false, nil

	case errors.Is(err, ErrKeyNotFound):
		key, err = Generate()
		if err != nil {
			return nil, false, err
		}
		if err := Save(key, path); err != nil {
			return nil, false, fmt.Errorf("identity: save %s: %w", path, err)
		}
		logger.Info("已生成新身份", "path", path)
		return key, true, nil

	case errors.Is(err, ErrInvalidKeyFile):
		logger.Warn("身份文件无效，使用临时身份", "path", path, "error", err)
		key, err = Generate()
		if err != nil {
			return nil, false, err
		}
		return key, true, nil

	default:
		return nil, false, fmt.Errorf("identity: read %s: %w", path, err)
	}
}
