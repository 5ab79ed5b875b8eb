package cfgvars

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// Source 按名称查找变量值。
//
// 未定义的变量返回 ok=false，不返回错误；缺失由解码层报告为 [ErrUndefinedVariable]。
// 实现必须支持并发读取，多次查找之间没有顺序要求。
type Source interface {
	Lookup(name string) (value string, ok bool)
}

// FallibleSource 由查找本身可能失败的 Source 实现（如读取文件）。
//
// 解码层优先调用 LookupErr，err 非 nil 时报告为 [ErrLookup]，
// 而不是把 I/O 故障当作未定义变量。
type FallibleSource interface {
	Source
	LookupErr(name string) (value string, ok bool, err error)
}

// LookupErr 查找变量，src 实现 [FallibleSource] 时返回其查找错误。
func LookupErr(src Source, name string) (string, bool, error) {
	if f, ok := src.(FallibleSource); ok {
		return f.LookupErr(name)
	}
	v, ok := src.Lookup(name)

	return v, ok, nil
}

// Namer 由可以列出已知变量名的 Source 实现，用于给出拼写建议。
type Namer interface {
	Names() []string
}

// SourceFunc 将函数适配为 [Source]。
type SourceFunc func(name string) (string, bool)

// Lookup 实现 [Source]。
func (f SourceFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// EnvSource 从进程环境变量读取，不做缓存，两次查找之间的环境变更可见。
type EnvSource struct{}

// Lookup 实现 [Source]。
func (EnvSource) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	return os.LookupEnv(name)
}

// Names 返回当前环境中的变量名（已排序）。
func (EnvSource) Names() []string {
	environ := os.Environ()
	names := make([]string, 0, len(environ))
	for _, env := range environ {
		if name, _, ok := strings.Cut(env, "="); ok && name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names
}

// MapSource 使用静态表提供变量，构造后只读。
type MapSource map[string]string

// Lookup 实现 [Source]。
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]

	return v, ok
}

// Names 返回表中的变量名（已排序）。
func (m MapSource) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// LayeredSource 按顺序查找，第一个定义了该变量的来源生效。
type LayeredSource []Source

// Layered 组合多个来源，靠前的优先级更高。nil 来源会被忽略。
func Layered(sources ...Source) LayeredSource {
	layers := make(LayeredSource, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			layers = append(layers, src)
		}
	}

	return layers
}

// Lookup 实现 [Source]。
func (l LayeredSource) Lookup(name string) (string, bool) {
	for _, src := range l {
		if v, ok := src.Lookup(name); ok {
			return v, true
		}
	}

	return "", false
}

// LookupErr 实现 [FallibleSource]，某一层查找失败时立即返回该错误，不再查找后续层。
func (l LayeredSource) LookupErr(name string) (string, bool, error) {
	for _, src := range l {
		v, ok, err := LookupErr(src, name)
		if err != nil || ok {
			return v, ok, err
		}
	}

	return "", false, nil
}

// Names 合并所有实现了 [Namer] 的来源的变量名（去重、排序）。
func (l LayeredSource) Names() []string {
	seen := make(map[string]struct{})
	for _, src := range l {
		namer, ok := src.(Namer)
		if !ok {
			continue
		}
		for _, name := range namer.Names() {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
