package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command/check"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command/render"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command/server"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    version.AppRawName,
		Usage:   "配置占位符替换工具",
		Version: version.GetVersion(),
		Flags:   slices.Concat(command.LogFlags(), command.SourceFlags(), command.DelimiterFlags()),
		Before:  command.SetupLogger,
		Commands: []*cli.Command{
			version.Command,
			render.Command,
			check.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
