package cfgvars

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// FileSource 将变量名视为文件路径，文件内容即变量值。
//
// 相对路径基于 BaseDir 解析；内容末尾的单个换行会被去掉，便于挂载的 secret 文件。
// 文件不存在时返回未定义；其它读取错误（权限不足、路径是目录）由 [FileSource.LookupErr]
// 返回，解码时报告为 [ErrLookup]。
//
// 注意：不要对不可信输入使用，它可以读取任意文件。
type FileSource struct {
	BaseDir string
}

// Lookup 实现 [Source]，读取错误记录日志后视为未定义。
func (f FileSource) Lookup(name string) (string, bool) {
	value, ok, err := f.LookupErr(name)
	if err != nil {
		slog.Warn("Read variable file failed", "name", name, "error", err)

		return "", false
	}

	return value, ok
}

// LookupErr 实现 [FallibleSource]。
func (f FileSource) LookupErr(name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}

	content, err := os.ReadFile(path) //nolint:gosec // path comes from the config author
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	value := string(content)
	value = strings.TrimSuffix(value, "\n")
	value = strings.TrimSuffix(value, "\r")

	return value, true, nil
}

// DotenvSource 读取一个或多个 .env 文件并返回静态来源。
//
// 多个文件中重复的变量以后出现的为准（与 godotenv.Read 一致）。
func DotenvSource(paths ...string) (MapSource, error) {
	if len(paths) == 0 {
		return MapSource{}, nil
	}

	vars, err := godotenv.Read(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env files: %w", err)
	}

	return MapSource(vars), nil
}
