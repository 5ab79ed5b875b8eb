// Package render 提供 render 命令：替换配置文件中的占位符并输出结果。
package render

import (
	"github.com/urfave/cli/v3"
)

// Command render 命令
var Command = NewCommand()

// NewCommand 创建 render 命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "替换配置文件中的 ${NAME} 并输出结果",
		ArgsUsage: "<config-file|->",
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "json",
				Usage:   "输出格式 (json, yaml)",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "只输出匹配的部分，gjson 路径语法（如 redis.password）",
			},
		},
	}
}
