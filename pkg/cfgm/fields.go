package cfgm

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

// field 是配置结构体的一个叶子字段。
type field struct {
	Key   string // 以 "." 连接的 json tag 路径，如 server.idle-timeout
	Index []int  // 用于 reflect.Value.FieldByIndexErr
	Type  reflect.Type
	Kind  cfgvars.Kind // 复合类型（slice、map）为 KindInvalid
}

// leafFields 按声明顺序遍历 typ 的叶子字段。
//
// 叶子的判定与占位符替换一致：[cfgvars.KindOf] 认定的标量（含 time.Duration、
// time.Time 等文本类型）以及 slice、map 都是叶子，其余结构体继续展开。
// 没有 json tag 或 tag 为 "-" 的字段被跳过。
func leafFields(typ reflect.Type) iter.Seq[field] {
	return func(yield func(field) bool) {
		walkFields(indirectType(typ), "", nil, yield)
	}
}

func walkFields(typ reflect.Type, prefix string, index []int, yield func(field) bool) bool {
	if typ.Kind() != reflect.Struct {
		return true
	}

	for i := range typ.NumField() {
		sf := typ.Field(i)
		key := tagKey(sf.Tag)
		if !sf.IsExported() || key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		idx := append(index[:len(index):len(index)], i)

		elem := indirectType(sf.Type)
		kind, scalar := cfgvars.KindOf(elem)
		if elem.Kind() == reflect.Struct && !scalar {
			if !walkFields(elem, key, idx, yield) {
				return false
			}

			continue
		}

		if !yield(field{Key: key, Index: idx, Type: elem, Kind: kind}) {
			return false
		}
	}

	return true
}

// tagKey 返回 json tag 中的名称部分。
func tagKey(tag reflect.StructTag) string {
	name, _, _ := strings.Cut(tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// collectConfigKeys 返回配置结构体的叶子 key（如 client.rev-auth-user）。
func collectConfigKeys[T any](defaultConfig T) []string {
	return fieldKeys(slices.Collect(leafFields(reflect.TypeOf(defaultConfig))))
}

func fieldKeys(fields []field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}

	return keys
}

// defaultsMap 将默认配置展开为 key 树，作为最低优先级的一层。
//
// map 字段转为 map[string]any，使配置文件中的条目与默认条目合并；
// nil 指针下的字段没有默认值，直接跳过。
func defaultsMap(cfg any) map[string]any {
	out := make(map[string]any)

	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return out
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return out
	}

	for f := range leafFields(v.Type()) {
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			continue
		}
		setByPath(out, f.Key, plainValue(fv))
	}

	return out
}

// plainValue 解开指针，并把 map 转为可合并的 map[string]any。
func plainValue(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Map {
		return v.Interface()
	}
	if v.IsNil() {
		return nil
	}

	out := make(map[string]any, v.Len())
	it := v.MapRange()
	for it.Next() {
		out[fmt.Sprint(it.Key().Interface())] = plainValue(it.Value())
	}

	return out
}
