package cfgvars

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

var anyType = reflect.TypeFor[any]()

// Path 是文档树中某个值的路径，格式与结构体解码错误一致："redis.password"、"servers[0].port"。
type Path string

// Append 追加 map key。
func (p Path) Append(name string) Path {
	if p == "" {
		return Path(name)
	}

	return Path(string(p) + "." + name)
}

// AppendIndex 追加序列下标。
func (p Path) AppendIndex(idx int) Path {
	return Path(string(p) + "[" + strconv.Itoa(idx) + "]")
}

// Join 拼接相对路径，rel 可以以 "[n]" 开头。
func (p Path) Join(rel Path) Path {
	switch {
	case p == "":
		return rel
	case rel == "":
		return p
	case strings.HasPrefix(string(rel), "["):
		return p + rel
	}

	return p + "." + rel
}

// Resolve 对文档树做无类型替换，返回新的树，原树不修改。
//
// 占位符按 [Infer] 推断类型（"6379" → uint64），非占位符字符串与原生标量原样保留。
// map 的 key 不参与替换。返回遇到的第一个错误，错误时结果为 nil。
func Resolve(doc any, src Source, opts ...Option) (any, error) {
	o := newOptions(opts)
	s := substituter{src: orEnv(src), rec: o.recognizer}

	return s.resolve(doc, "")
}

func (s substituter) resolve(v any, path Path) (any, error) {
	switch value := v.(type) {
	case string:
		p, ok := s.rec.Recognize(value)
		if !ok {
			return value, nil
		}
		r, err := s.substitute(p, value, KindAny, anyType)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Path = string(path)
			}

			return nil, err
		}

		return r, nil
	case map[string]any:
		result := make(map[string]any, len(value))
		for _, key := range slices.Sorted(maps.Keys(value)) {
			r, err := s.resolve(value[key], path.Append(key))
			if err != nil {
				return nil, err
			}
			result[key] = r
		}

		return result, nil
	case map[any]any:
		result := make(map[any]any, len(value))
		for _, key := range sortedKeys(value) {
			r, err := s.resolve(value[key], path.Append(fmt.Sprint(key)))
			if err != nil {
				return nil, err
			}
			result[key] = r
		}

		return result, nil
	case []any:
		result := make([]any, 0, len(value))
		for idx, elem := range value {
			r, err := s.resolve(elem, path.AppendIndex(idx))
			if err != nil {
				return nil, err
			}
			result = append(result, r)
		}

		return result, nil
	}

	return v, nil
}

// Reference 是文档中的一个占位符引用。
type Reference struct {
	Path  Path
	Name  string // 变量名，"${}" 时为空
	Token string // 原始文本
}

// Placeholders 列出文档树中所有整值占位符。
//
// map 按 key 排序访问，序列按下标访问，结果顺序稳定。
func Placeholders(doc any, opts ...Option) []Reference {
	o := newOptions(opts)

	var refs []Reference
	walk(doc, "", func(path Path, text string) {
		if p, ok := o.recognizer.Recognize(text); ok {
			refs = append(refs, Reference{Path: path, Name: p.Name, Token: text})
		}
	})

	return refs
}

// walk 按确定顺序访问树中所有字符串标量。
func walk(v any, path Path, fn func(Path, string)) {
	switch value := v.(type) {
	case string:
		fn(path, value)
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(value)) {
			walk(value[key], path.Append(key), fn)
		}
	case map[any]any:
		for _, key := range sortedKeys(value) {
			walk(value[key], path.Append(fmt.Sprint(key)), fn)
		}
	case []any:
		for idx, elem := range value {
			walk(elem, path.AppendIndex(idx), fn)
		}
	}
}

func sortedKeys(m map[any]any) []any {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b any) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})

	return keys
}
