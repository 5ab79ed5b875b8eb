// Package version 提供构建信息与 version 子命令。
//
// 构建时通过 ldflags 注入：
//
//	go build -ldflags "-X github.com/lwmacct/251207-go-pkg-cfgvars/internal/version.Version=v1.2.3"
package version

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

var (
	// AppRawName 应用名称，用于默认配置路径与命令名。
	AppRawName = "cfgvars"
	// Version 版本号。
	Version = ""
	// Commit 构建时的 git commit。
	Commit = ""
	// BuildTime 构建时间。
	BuildTime = ""
)

// GetVersion 返回版本号，未注入时使用模块版本，仍为空则返回 "dev"。
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// Command version 子命令
var Command = &cli.Command{
	Name:  "version",
	Usage: "显示版本信息",
	Action: func(_ context.Context, cmd *cli.Command) error {
		w := cmd.Root().Writer
		_, _ = fmt.Fprintf(w, "%s %s\n", AppRawName, GetVersion())
		if Commit != "" {
			_, _ = fmt.Fprintf(w, "commit:  %s\n", Commit)
		}
		if BuildTime != "" {
			_, _ = fmt.Fprintf(w, "built:   %s\n", BuildTime)
		}
		_, _ = fmt.Fprintf(w, "go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

		return nil
	},
}
