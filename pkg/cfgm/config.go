package cfgm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

// DefaultPaths 返回默认配置文件的搜索顺序。
//
// appName 可选，提供后会追加应用专属路径。
// 返回顺序即查找顺序，先命中的文件生效。
//
// 优先级 (从高到低)：
//  1. ./.appname.yaml - 当前目录应用配置
//  2. ~/.appname.yaml - 用户主目录配置
//  3. /etc/appname/config.yaml - 系统级配置
//  4. config.yaml - 当前目录通用配置
//  5. config/config.yaml - 子目录通用配置
func DefaultPaths(appName ...string) []string {
	var paths []string

	if len(appName) > 0 && appName[0] != "" {
		name := appName[0]
		// 当前目录应用配置 (最高优先级)
		paths = append(paths, "."+name+".yaml")
		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "."+name+".yaml"))
		}
		// 系统配置目录
		paths = append(paths, "/etc/"+name+"/config.yaml")
	}

	// 当前目录通用配置 (最低优先级)
	paths = append(paths, "config.yaml", "config/config.yaml")

	return paths
}

// Load 读取配置并按优先级合并。
//
// 优先级 (从低到高)：
//  1. 默认值 - defaultConfig
//  2. 配置文件 - [WithConfigPaths] / [WithAppName]
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]
//
// 配置 key 由 json tag 定义，YAML、JSON 与 HCL 共享同一套 key。
// 配置文件按顺序查找，命中首个文件即停止。
//
// 合并后的值中整值为 ${NAME} 的字符串会从变量源（默认环境变量，见 [WithSource]）
// 解析并按字段类型转换，变量未定义或无法转换时返回 *cfgvars.Error。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	return load(defaultConfig, 1, opts...)
}

// load 是内部加载实现，callerSkip 用于控制 FindProjectRoot 的跳过层数。
// 各入口函数会根据自身调用深度传入合适的 skip 值。
func load[T any](defaultConfig T, callerSkip int, opts ...Option) (*T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.callerSkip > 0 {
		callerSkip = o.callerSkip
	}
	if !o.baseDirSet {
		if root, err := FindProjectRoot(callerSkip + 1); err == nil {
			o.baseDir = root
		}
	}

	fields := slices.Collect(leafFields(reflect.TypeOf(defaultConfig)))
	known := fieldKeys(fields)

	// 1️⃣ 默认值
	config := defaultsMap(defaultConfig)

	// 2️⃣ 配置文件 (命中首个即停止)
	path, err := applyFile(config, o, known)
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("Loaded config from file", "path", path, "substitution", !o.noSubstitution)
	} else {
		slog.Debug("No config file found, using defaults")
	}

	// 3️⃣ 带前缀的变量，key 由配置结构体生成
	if o.envPrefix != "" {
		n := applyEnv(config, o.envSourceOrDefault(), o.envPrefix, fields)
		slog.Debug("Applied env bindings", "prefix", o.envPrefix, "count", n)
	}

	// 4️⃣ CLI flags (仅用户明确指定的)
	if o.cmd != nil {
		applyFlags(o.cmd, config, fields)
	}

	var cfg T
	if o.noSubstitution {
		err = decodeConfigMap(config, &cfg)
	} else {
		err = cfgvars.DecodeInto(config, &cfg, o.source, o.decodeOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadCmd 是 [Load] 的便捷版本，适用于 CLI 场景。
//
// 它会注入 [WithCommand]，appName 非空时额外注入 [WithAppName]。
//
// 等价于：
//
//	cfgm.Load(defaultConfig,
//	    cfgm.WithCommand(cmd),
//	    cfgm.WithAppName(appName),  // 如果 appName 非空
//	    opts...,
//	)
//
// 示例：
//
//	// 带应用名（推荐）
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "myapp",
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
//
//	// 不带应用名
//	cfg, err := cfgm.LoadCmd(cmd, DefaultConfig(), "")
func LoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) (*T, error) {
	return load(defaultConfig, 1, cmdOptions(cmd, appName, opts)...)
}

// MustLoad 调用 [Load] 并在失败时 panic，适合启动阶段。
//
// 示例：
//
//	cfg := cfgm.MustLoad(DefaultConfig(),
//	    cfgm.WithAppName("myapp"),
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
func MustLoad[T any](defaultConfig T, opts ...Option) *T {
	cfg, err := load(defaultConfig, 1, opts...)
	if err != nil {
		panic(fmt.Sprintf("cfgm: failed to load config: %v", err))
	}

	return cfg
}

// MustLoadCmd 调用 [LoadCmd] 并在失败时 panic，适合启动阶段。
//
// 示例：
//
//	cfg := cfgm.MustLoadCmd(cmd, DefaultConfig(), "myapp",
//	    cfgm.WithEnvPrefix("MYAPP_"),
//	)
func MustLoadCmd[T any](cmd *cli.Command, defaultConfig T, appName string, opts ...Option) *T {
	cfg, err := load(defaultConfig, 1, cmdOptions(cmd, appName, opts)...)
	if err != nil {
		panic(fmt.Sprintf("cfgm: failed to load config: %v", err))
	}

	return cfg
}

// cmdOptions 在用户选项之前注入命令与应用名，用户选项可覆盖它们。
func cmdOptions(cmd *cli.Command, appName string, opts []Option) []Option {
	base := []Option{WithCommand(cmd)}
	if appName != "" {
		base = append(base, WithAppName(appName))
	}

	return append(base, opts...)
}
