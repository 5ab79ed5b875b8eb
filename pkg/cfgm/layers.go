package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars/format"
)

// searchPaths 返回按 baseDir 解析后的配置文件候选路径。
func (o *options) searchPaths() []string {
	paths := o.configPaths
	if len(paths) == 0 {
		paths = DefaultPaths(o.appName)
	}
	if o.baseDir == "" {
		return paths
	}

	resolved := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			resolved[i] = p
		} else {
			resolved[i] = filepath.Join(o.baseDir, p)
		}
	}

	return resolved
}

// applyFile 合并首个可读的配置文件，返回其路径；没有命中时返回空字符串。
//
// 文件中的 ${NAME} 保留为字符串，HCL 的变量引用按解码选项中的分隔符渲染。
func applyFile(config map[string]any, o *options, known []string) (string, error) {
	r := cfgvars.RecognizerOf(o.decodeOpts...)

	for _, path := range o.searchPaths() {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			continue
		}

		doc, err := format.Object(format.ForPath(path, content, r))
		if err != nil {
			return "", fmt.Errorf("parse config file %s: %w", path, err)
		}
		for _, key := range unknownKeys(doc, known) {
			slog.Warn("Unknown config key", "path", path, "key", key)
		}
		mergeMaps(config, doc)

		return path, nil
	}

	return "", nil
}

// envBindings 根据配置 key 生成变量名映射。
//
// 转换规则：key 中的 "." 和 "-" 转为 "_"，转为大写并加上前缀。
//
// 示例 (前缀 "APP_")：
//   - client.rev-auth-user → APP_CLIENT_REV_AUTH_USER
//   - server.idle-timeout → APP_SERVER_IDLE_TIMEOUT
func envBindings(prefix string, keys []string) map[string]string {
	upper := strings.NewReplacer(".", "_", "-", "_")
	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[prefix+strings.ToUpper(upper.Replace(key))] = key
	}

	return bindings
}

// applyEnv 从 src 读取带前缀的变量写入配置 map，返回写入的数量。
//
// 只绑定标量字段；值为空视为未设置。写入的是原始文本，
// 由解码阶段按字段 Kind 严格转换，值本身也可以是 ${NAME} 占位符。
func applyEnv(config map[string]any, src cfgvars.Source, prefix string, fields []field) int {
	var keys []string
	for _, f := range fields {
		if f.Kind != cfgvars.KindInvalid {
			keys = append(keys, f.Key)
		}
	}

	applied := 0
	for name, key := range envBindings(prefix, keys) {
		val, ok := src.Lookup(name)
		if !ok || val == "" {
			continue
		}
		setByPath(config, key, val)
		applied++
		slog.Debug("Loaded env binding", "env", name, "path", key)
	}

	return applied
}

// flagName 将配置 key 转为 CLI flag 名称，仅替换 "." 为 "-"。
//
//   - server.url → --server-url
//   - tls.skip_verify → --tls-skip_verify
func flagName(key string) string {
	return strings.ReplaceAll(key, ".", "-")
}

// scalarFlags 按字段 Kind 读取 flag 值。
var scalarFlags = map[cfgvars.Kind]func(cmd *cli.Command, name string) any{
	cfgvars.KindBool:    func(cmd *cli.Command, name string) any { return cmd.Bool(name) },
	cfgvars.KindInt:     func(cmd *cli.Command, name string) any { return cmd.Int(name) },
	cfgvars.KindInt8:    func(cmd *cli.Command, name string) any { return cmd.Int8(name) },
	cfgvars.KindInt16:   func(cmd *cli.Command, name string) any { return cmd.Int16(name) },
	cfgvars.KindInt32:   func(cmd *cli.Command, name string) any { return cmd.Int32(name) },
	cfgvars.KindInt64:   func(cmd *cli.Command, name string) any { return cmd.Int64(name) },
	cfgvars.KindUint:    func(cmd *cli.Command, name string) any { return cmd.Uint(name) },
	cfgvars.KindUint8:   func(cmd *cli.Command, name string) any { return cmd.Uint8(name) },
	cfgvars.KindUint16:  func(cmd *cli.Command, name string) any { return cmd.Uint16(name) },
	cfgvars.KindUint32:  func(cmd *cli.Command, name string) any { return cmd.Uint32(name) },
	cfgvars.KindUint64:  func(cmd *cli.Command, name string) any { return cmd.Uint64(name) },
	cfgvars.KindFloat32: func(cmd *cli.Command, name string) any { return cmd.Float32(name) },
	cfgvars.KindFloat64: func(cmd *cli.Command, name string) any { return cmd.Float64(name) },
	cfgvars.KindAny:     func(cmd *cli.Command, name string) any { return cmd.Value(name) },

	// 以下按文本读取，解码阶段按字段 Kind 严格转换
	cfgvars.KindString: stringFlag,
	cfgvars.KindBytes:  stringFlag,
	cfgvars.KindChar:   stringFlag,
	cfgvars.KindText:   stringFlag,
}

func stringFlag(cmd *cli.Command, name string) any {
	return cmd.String(name)
}

// applyFlags 将用户显式设置的 CLI flags 写入配置 map（最高优先级）。
//
// time.Duration 与 time.Time 使用对应的 flag 类型，其余文本类型
// （如 net.IP、slog.Level）按字符串读取，由 TextUnmarshaler 解析。
// 字符串类 flag 的值同样参与 ${NAME} 替换。
func applyFlags(cmd *cli.Command, config map[string]any, fields []field) {
	for _, f := range fields {
		name := flagName(f.Key)
		if !cmd.IsSet(name) {
			continue
		}

		if val, ok := flagValue(cmd, name, f); ok {
			setByPath(config, f.Key, val)
		}
	}
}

func flagValue(cmd *cli.Command, name string, f field) (any, bool) {
	switch {
	case f.Type == reflect.TypeFor[time.Duration]():
		return cmd.Duration(name), true
	case f.Type == reflect.TypeFor[time.Time]():
		return cmd.Timestamp(name), true
	case f.Kind == cfgvars.KindInvalid:
		return compositeFlagValue(cmd, name, f.Type)
	}

	get, ok := scalarFlags[f.Kind]
	if !ok {
		return nil, false
	}

	return get(cmd, name), true
}

// compositeFlagValue 处理 slice 与 map[string]string 字段。
func compositeFlagValue(cmd *cli.Command, name string, typ reflect.Type) (any, bool) {
	if typ.Kind() == reflect.Map {
		if typ.Key().Kind() == reflect.String && typ.Elem().Kind() == reflect.String {
			return cmd.StringMap(name), true
		}

		return nil, false
	}
	if typ.Kind() != reflect.Slice {
		return nil, false
	}

	elem, _ := cfgvars.KindOf(typ.Elem())
	switch elem {
	case cfgvars.KindString:
		return cmd.StringSlice(name), true
	case cfgvars.KindInt:
		return cmd.IntSlice(name), true
	case cfgvars.KindInt8:
		return cmd.Int8Slice(name), true
	case cfgvars.KindInt16:
		return cmd.Int16Slice(name), true
	case cfgvars.KindInt32:
		return cmd.Int32Slice(name), true
	case cfgvars.KindInt64:
		return cmd.Int64Slice(name), true
	case cfgvars.KindUint:
		return cmd.UintSlice(name), true
	case cfgvars.KindUint16:
		return cmd.Uint16Slice(name), true
	case cfgvars.KindUint32:
		return cmd.Uint32Slice(name), true
	case cfgvars.KindUint64:
		return cmd.Uint64Slice(name), true
	case cfgvars.KindFloat32:
		return cmd.Float32Slice(name), true
	case cfgvars.KindFloat64:
		return cmd.Float64Slice(name), true
	case cfgvars.KindText:
		// 如 []time.Duration、[]net.IP，逐项交给文本 hook
		return cmd.StringSlice(name), true
	default:
		return nil, false
	}
}

// unknownKeys 返回文件中未在配置结构体里定义的 key（已排序）。
//
// map 类型字段下的子 key 视为已定义，如 labels.env 归属 labels。
func unknownKeys(doc map[string]any, known []string) []string {
	var unknown []string
	walkKeys(doc, "", func(key string) {
		if !slices.ContainsFunc(known, func(k string) bool {
			return key == k || strings.HasPrefix(key, k+".")
		}) {
			unknown = append(unknown, key)
		}
	})
	slices.Sort(unknown)

	return unknown
}

// walkKeys 对文档中的每个叶子 key 调用 fn，空对象本身视为叶子。
func walkKeys(doc map[string]any, prefix string, fn func(key string)) {
	for key, value := range doc {
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			walkKeys(child, key, fn)

			continue
		}
		fn(key)
	}
}
