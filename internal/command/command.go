// Package command 提供各子命令共享的 flags 与辅助函数。
package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/config"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars/format"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// SourceFlags 返回变量源相关的 flags，挂在根命令上，对子命令可见。
//
// 每次调用返回新的 flag 实例，flag 会保存解析状态，不能在多个命令间共享。
func SourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   "从 .env 文件读取变量，可多次指定，后者覆盖前者",
			Sources: cli.EnvVars("CFGVARS_ENV_FILE"),
		},
		&cli.StringFlag{
			Name:    "secrets-dir",
			Usage:   "变量名对应该目录下的文件，文件内容即变量值（如 /run/secrets）",
			Sources: cli.EnvVars("CFGVARS_SECRETS_DIR"),
		},
	}
}

// DelimiterFlags 返回占位符前后缀 flags。
func DelimiterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "prefix",
			Value: cfgvars.DefaultRecognizer.Prefix,
			Usage: "占位符前缀",
		},
		&cli.StringFlag{
			Name:  "suffix",
			Value: cfgvars.DefaultRecognizer.Suffix,
			Usage: "占位符后缀",
		},
	}
}

// Source 根据 flags 组合变量源。
//
// 查找顺序：进程环境变量 → .env 文件 → secrets 目录。
func Source(cmd *cli.Command) (cfgvars.Source, error) {
	var dotenv cfgvars.Source
	if files := cmd.StringSlice("env-file"); len(files) > 0 {
		vars, err := cfgvars.DotenvSource(files...)
		if err != nil {
			return nil, err
		}
		dotenv = vars
	}

	var secrets cfgvars.Source
	if dir := cmd.String("secrets-dir"); dir != "" {
		secrets = cfgvars.FileSource{BaseDir: dir}
	}

	return cfgvars.Layered(cfgvars.EnvSource{}, dotenv, secrets), nil
}

// DecodeOptions 根据 flags 生成解码选项。
func DecodeOptions(cmd *cli.Command) []cfgvars.Option {
	if !cmd.IsSet("prefix") && !cmd.IsSet("suffix") {
		return nil
	}

	prefix, suffix := cmd.String("prefix"), cmd.String("suffix")
	if prefix == "" {
		slog.Warn("Empty placeholder prefix, using default delimiters", "suffix", suffix)
	}

	return []cfgvars.Option{cfgvars.WithDelimiters(prefix, suffix)}
}

// Recognizer 返回 flags 生效后的占位符识别器，与 [DecodeOptions] 一致。
func Recognizer(cmd *cli.Command) cfgvars.Recognizer {
	return cfgvars.RecognizerOf(DecodeOptions(cmd)...)
}

// ReadDocument 读取第一个参数指定的配置文件，"-" 表示标准输入（按 YAML 解析）。
// HCL 中的变量引用按 --prefix/--suffix 渲染为占位符。
func ReadDocument(cmd *cli.Command) (string, any, error) {
	if cmd.NArg() < 1 {
		return "", nil, cli.Exit("missing config file argument", 2)
	}
	path := cmd.Args().First()

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.Root().Reader)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is given by the user
	}
	if err != nil {
		return path, nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := format.ForPath(path, data, Recognizer(cmd)).Decode()
	if err != nil {
		return path, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return path, doc, nil
}
