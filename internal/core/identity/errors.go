package identity

import "errors"

var (
	// ErrNilPrivateKey 私钥为 nil
	ErrNilPrivateKey = errors.New("identity: private key is nil")

	// ErrKeyNotFound 身份文件不存在
	ErrKeyNotFound = errors.New("identity: key file not found")

	// ErrInvalidKeyFile 身份文件内容无效
	ErrInvalidKeyFile = errors.New("identity: invalid key file")
)
