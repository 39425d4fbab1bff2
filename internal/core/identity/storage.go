package identity

import (
	"fmt"
	"os"
	"path/filepath"
)

// keyFileTempPattern 写入过程中的临时文件名，与身份文件位于同一目录
const keyFileTempPattern = ".splash-identity-*.tmp"

// writeKeyFile 以 perm 权限替换 path 处的身份文件
//
// 内容先落盘到同目录临时文件，再 rename 到目标路径，读者只会看到旧文件或完整的新文件。
// 任一步失败都会清理临时文件。
func writeKeyFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), keyFileTempPattern)
	if err != nil {
		return fmt.Errorf("identity: write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fillKeyFile(tmp, data, perm); err != nil {
		return fmt.Errorf("identity: write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("identity: replace %s: %w", path, err)
	}
	return nil
}

// fillKeyFile 写入、设置权限并同步，总是关闭 f
func fillKeyFile(f *os.File, data []byte, perm os.FileMode) error {
	_, err := f.Write(data)
	if err == nil {
		err = f.Chmod(perm)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
