// Package server 提供 HTTP 服务器命令。
package server

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
)

// Command 服务器命令
var Command = NewCommand()

// NewCommand 创建服务器命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Usage:  "加载配置（含 ${NAME} 替换）并启动 HTTP 服务器",
		Action: action,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径，按顺序查找，命中首个即停止（默认搜索 ./.cfgvars.yaml 等）",
			},
			&cli.StringFlag{
				Name:    "server-addr",
				Aliases: []string{"a"},
				Value:   command.Defaults.Server.Addr,
				Usage:   "服务器监听地址",
			},
			&cli.StringFlag{
				Name:  "server-docs",
				Value: command.Defaults.Server.Docs,
				Usage: "VitePress 文档目录路径",
			},
			&cli.DurationFlag{
				Name:  "server-timeout",
				Value: command.Defaults.Server.Timeout,
				Usage: "HTTP 读写超时",
			},
			&cli.DurationFlag{
				Name:  "server-idletime",
				Value: command.Defaults.Server.Idletime,
				Usage: "HTTP 空闲超时",
			},
			&cli.StringFlag{
				Name:  "redis-url",
				Value: command.Defaults.Redis.URL,
				Usage: "Redis URL，可写作 ${REDIS_URL}",
			},
		},
	}
}
