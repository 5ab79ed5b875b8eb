package check

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

// Status 占位符状态。
type Status string

// 占位符状态取值。
const (
	StatusDefined   Status = "defined"
	StatusUndefined Status = "undefined"
	StatusMalformed Status = "malformed"
	// StatusUnreadable 变量源查找失败，如 secret 文件不可读。
	StatusUnreadable Status = "unreadable"
)

// Result 单个占位符的检查结果。
type Result struct {
	cfgvars.Reference

	Status     Status
	Suggestion string // 未定义时最接近的已知变量名
	Err        error  // 查找失败的原因
}

func action(_ context.Context, cmd *cli.Command) error {
	path, doc, err := command.ReadDocument(cmd)
	if err != nil {
		return err
	}

	src, err := command.Source(cmd)
	if err != nil {
		return err
	}
	opts := command.DecodeOptions(cmd)

	results := Check(doc, src, opts...)
	slog.Debug("Checked placeholders", "path", path, "count", len(results))

	w := cmd.Root().Writer
	p := newPrinter(w, !cmd.Bool("no-color"))
	failed := p.results(results)

	if schemaPath := cmd.String("schema"); schemaPath != "" && !failed {
		verrs, err := validate(doc, src, schemaPath, opts...)
		if err != nil {
			return err
		}
		failed = p.schema(schemaPath, verrs)
	}

	if failed {
		return cli.Exit(fmt.Sprintf("%s: check failed", path), 1)
	}

	return nil
}

// Check 按文档顺序检查每个占位符。
func Check(doc any, src cfgvars.Source, opts ...cfgvars.Option) []Result {
	var names []string
	if namer, ok := src.(cfgvars.Namer); ok {
		names = namer.Names()
	}

	refs := cfgvars.Placeholders(doc, opts...)
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		r := Result{Reference: ref}
		if ref.Name == "" {
			r.Status = StatusMalformed
			results = append(results, r)

			continue
		}

		_, ok, err := cfgvars.LookupErr(src, ref.Name)
		switch {
		case err != nil:
			r.Status = StatusUnreadable
			r.Err = err
		case ok:
			r.Status = StatusDefined
		default:
			r.Status = StatusUndefined
			r.Suggestion = suggest(ref.Name, names)
		}
		results = append(results, r)
	}

	return results
}

// suggest 返回与 name 最接近的变量名。
//
// 先把 name 当作模式匹配已知变量（REDIS_PASS → REDIS_PASSWORD），
// 再反过来把已知变量当作模式匹配 name（REDIS_PASSWORDS → REDIS_PASSWORD）。
func suggest(name string, names []string) string {
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		return matches[0].Str
	}

	best, bestScore := "", 0
	for _, candidate := range names {
		matches := fuzzy.Find(candidate, []string{name})
		if len(matches) > 0 && (best == "" || matches[0].Score > bestScore) {
			best, bestScore = candidate, matches[0].Score
		}
	}

	return best
}

// validate 替换占位符后按 JSON Schema 校验，返回叶子层的校验错误。
func validate(doc any, src cfgvars.Source, schemaPath string, opts ...cfgvars.Option) ([]*jsonschema.ValidationError, error) {
	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schemaPath, err)
	}

	resolved, err := cfgvars.Resolve(doc, src, opts...)
	if err != nil {
		return nil, err
	}

	// 经 JSON 中转，得到 jsonschema 接受的值类型
	data, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	err = schema.Validate(v)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}

	return leaves(ve), nil
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}

	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leaves(cause)...)
	}

	return out
}

type printer struct {
	w                     io.Writer
	ok, warn, fail, faint *color.Color
}

// newPrinter 仅在输出为终端时启用颜色。
func newPrinter(w io.Writer, colorize bool) *printer {
	p := &printer{
		w:     w,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
	}

	f, isFile := w.(*os.File)
	if !colorize || !isFile || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.faint} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.faint} {
			c.EnableColor()
		}
	}

	return p
}

// results 输出占位符列表，存在未定义、格式错误或不可读的占位符时返回 true。
func (p *printer) results(results []Result) bool {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(p.w, "no placeholders found")

		return false
	}

	var undefined, malformed, unreadable int
	for _, r := range results {
		path := string(r.Path)
		if path == "" {
			path = "."
		}

		switch r.Status {
		case StatusDefined:
			_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.ok.Sprintf("%-9s", r.Status), path, r.Token)
		case StatusUndefined:
			undefined++
			_, _ = fmt.Fprintf(p.w, "%s %s %s", p.fail.Sprintf("%-9s", r.Status), path, r.Token)
			if r.Suggestion != "" {
				_, _ = p.faint.Fprintf(p.w, " (did you mean %s?)", r.Suggestion)
			}
			_, _ = fmt.Fprintln(p.w)
		case StatusMalformed:
			malformed++
			_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.warn.Sprintf("%-9s", r.Status), path, r.Token)
		case StatusUnreadable:
			unreadable++
			_, _ = fmt.Fprintf(p.w, "%s %s %s", p.fail.Sprintf("%-9s", r.Status), path, r.Token)
			_, _ = p.faint.Fprintf(p.w, " (%v)", r.Err)
			_, _ = fmt.Fprintln(p.w)
		}
	}

	_, _ = fmt.Fprintf(p.w, "%d placeholders, %d undefined, %d malformed", len(results), undefined, malformed)
	if unreadable > 0 {
		_, _ = fmt.Fprintf(p.w, ", %d unreadable", unreadable)
	}
	_, _ = fmt.Fprintln(p.w)

	return undefined > 0 || malformed > 0 || unreadable > 0
}

// schema 输出校验错误，存在错误时返回 true。
func (p *printer) schema(schemaPath string, verrs []*jsonschema.ValidationError) bool {
	if len(verrs) == 0 {
		_, _ = fmt.Fprintf(p.w, "%s schema %s\n", p.ok.Sprintf("%-9s", "valid"), schemaPath)

		return false
	}

	for _, ve := range verrs {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		_, _ = fmt.Fprintf(p.w, "%s %s %s\n", p.fail.Sprintf("%-9s", "invalid"), loc, ve.Message)
	}

	return true
}
