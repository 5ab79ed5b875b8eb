package main

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	app "github.com/lwmacct/251207-go-pkg-cfgvars/internal/command/server"
)

func main() {
	cmd := app.NewCommand()
	cmd.Flags = slices.Concat(cmd.Flags, command.LogFlags(), command.SourceFlags(), command.DelimiterFlags())
	cmd.Before = command.SetupLogger

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
