package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"
)

// LogFlags 返回日志相关的全局 flags。
func LogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "日志级别 (debug, info, warn, error)",
			Sources: cli.EnvVars("CFGVARS_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "日志格式 (text, json)",
			Sources: cli.EnvVars("CFGVARS_LOG_FORMAT"),
		},
	}
}

// SetupLogger 作为根命令的 Before 钩子，按 flags 设置默认 logger。
// 日志写入 ErrWriter，标准输出只留给命令结果。
func SetupLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger, err := NewLogger(cmd.Root().ErrWriter, cmd.String("log-level"), cmd.String("log-format"))
	if err != nil {
		return ctx, cli.Exit(err.Error(), 2)
	}
	slog.SetDefault(logger)

	slog.DebugContext(ctx, "Logger initialized",
		slog.String("level", cmd.String("log-level")),
		slog.String("format", cmd.String("log-format")),
	)

	return ctx, nil
}

// NewLogger 按级别与格式创建 logger。
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
