package cfgm

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ErrProjectRootNotFound 未找到包含 go.mod 的目录。
var ErrProjectRootNotFound = errors.New("project root not found")

// FindProjectRoot 返回调用方源文件所在模块的根目录（go.mod 所在目录）。
//
// skip 含义与 [runtime.Caller] 一致，0 表示调用 FindProjectRoot 的函数。
// 调用方源文件不在本机（如部署后的二进制）时，退回到从当前工作目录向上查找。
func FindProjectRoot(skip int) (string, error) {
	if _, file, _, ok := runtime.Caller(skip + 1); ok {
		if root, err := findGoMod(filepath.Dir(file)); err == nil {
			return root, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return findGoMod(wd)
}

func findGoMod(dir string) (string, error) {
	for {
		if info, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrProjectRootNotFound
		}
		dir = parent
	}
}
