package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

func action(_ context.Context, cmd *cli.Command) error {
	path, doc, err := command.ReadDocument(cmd)
	if err != nil {
		return err
	}

	src, err := command.Source(cmd)
	if err != nil {
		return err
	}

	resolved, err := cfgvars.Resolve(doc, src, command.DecodeOptions(cmd)...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Rendered document", "path", path)

	return write(cmd.Root().Writer, resolved, cmd.String("output"), cmd.String("query"))
}

// write 按格式输出文档，query 非空时只输出匹配部分。
func write(w io.Writer, doc any, output, query string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if query != "" {
		result := gjson.GetBytes(data, query)
		if !result.Exists() {
			return cli.Exit(fmt.Sprintf("query %q matched nothing", query), 1)
		}
		if result.Type == gjson.String {
			_, err = fmt.Fprintln(w, result.String())

			return err
		}
		data = []byte(result.Raw)
	}

	switch output {
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)

		return err
	case "yaml":
		// 经 JSON 中转，json.Number 与各种 map 类型统一为 YAML 原生标量
		var v any
		if err := yamlv3.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
		enc := yamlv3.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return cli.Exit(fmt.Sprintf("unsupported output format %q", output), 2)
	}
}
