// Package check 提供 check 命令：列出配置文件中的占位符并检查变量是否已定义。
package check

import (
	"github.com/urfave/cli/v3"
)

// Command check 命令
var Command = NewCommand()

// NewCommand 创建 check 命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "列出 ${NAME} 占位符及其状态，不输出变量值",
		ArgsUsage: "<config-file|->",
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schema",
				Usage: "替换后按 JSON Schema 校验",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "禁用颜色输出",
			},
		},
	}
}
