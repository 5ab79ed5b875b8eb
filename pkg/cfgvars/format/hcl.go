package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// envRoot 是 HCL 中引用变量的对象名，env.NAME 等价于 "${NAME}"。
const envRoot = "env"

var errNotSyntaxBody = errors.New("unsupported HCL body")

// HCL 返回 HCL 文档解码器，filename 仅用于诊断信息。
//
// 转换规则：
//   - 属性按表达式求值，数字转为 json.Number
//   - block 按类型与 label 逐层嵌套：server "api" { ... } → server.api
//   - 同名无 label 的 block 重复出现时转为列表
//   - 同一路径上 block 形状冲突（列表与带 label 的 block 混用）返回错误
//   - 变量引用按 r 的分隔符保留为占位符：password = "${REDIS_PASSWORD}" 与
//     password = env.REDIS_PASSWORD 都得到字符串 "${REDIS_PASSWORD}"
//
// r 应与解码时使用的 [cfgvars.WithDelimiters] 一致，零值表示默认分隔符。
func HCL(data []byte, filename string, r cfgvars.Recognizer) cfgvars.Decoder {
	return cfgvars.DecoderFunc(func() (any, error) {
		file, diags := hclparse.NewParser().ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("decode hcl: %w", diags)
		}

		body, ok := file.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("decode hcl: %w", errNotSyntaxBody)
		}

		return bodyToMap(body, r)
	})
}

// shape 记录 body 内某一路径上已放置的值的来源。
type shape int

const (
	shapeAttr  shape = iota + 1 // 属性
	shapeGroup                  // 按 label 展开的中间对象
	shapeBlock                  // block 体或重复 block 组成的列表
)

func (s shape) String() string {
	switch s {
	case shapeAttr:
		return "attribute"
	case shapeGroup:
		return "labeled block"
	default:
		return "block"
	}
}

func bodyToMap(body *hclsyntax.Body, r cfgvars.Recognizer) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	shapes := make(map[string]shape, len(body.Attributes)+len(body.Blocks))

	for _, name := range slices.Sorted(maps.Keys(body.Attributes)) {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(placeholderContext(attr.Expr, r))
		if diags.HasErrors() {
			return nil, fmt.Errorf("decode hcl: %w", diags)
		}
		v, err := ctyToAny(val)
		if err != nil {
			return nil, fmt.Errorf("decode hcl: attribute %q: %w", name, err)
		}
		out[name] = v
		shapes[shapeKey([]string{name})] = shapeAttr
	}

	for _, block := range body.Blocks {
		child, err := bodyToMap(block.Body, r)
		if err != nil {
			return nil, err
		}

		keys := append([]string{block.Type}, block.Labels...)
		parent := out
		for i, key := range keys[:len(keys)-1] {
			path := shapeKey(keys[:i+1])
			switch shapes[path] {
			case 0:
				next := make(map[string]any)
				parent[key] = next
				shapes[path] = shapeGroup
				parent = next
			case shapeGroup:
				parent = parent[key].(map[string]any)
			default:
				return nil, blockConflict(block, keys[:i+1], shapes[path])
			}
		}

		last := keys[len(keys)-1]
		path := shapeKey(keys)
		switch shapes[path] {
		case 0:
			parent[last] = child
			shapes[path] = shapeBlock
		case shapeBlock:
			if list, ok := parent[last].([]any); ok {
				parent[last] = append(list, child)
			} else {
				parent[last] = []any{parent[last], child}
			}
		default:
			return nil, blockConflict(block, keys, shapes[path])
		}
	}

	return out, nil
}

// blockConflict 报告 block 路径已被其它形状的值占用，
// 例如重复的无 label block 之后又出现同类型带 label 的 block。
func blockConflict(block *hclsyntax.Block, keys []string, existing shape) error {
	return fmt.Errorf("decode hcl: %s: block %q conflicts with %s at %q",
		block.DefRange(), block.Type, existing, strings.Join(keys, "."))
}

// shapeKey 以 NUL 连接路径，label 中的 "." 不会与层级混淆。
func shapeKey(keys []string) string {
	return strings.Join(keys, "\x00")
}

// placeholderContext 将表达式引用的每个变量绑定为按 r 渲染的占位符文本。
func placeholderContext(expr hcl.Expression, r cfgvars.Recognizer) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	envAttrs := make(map[string]cty.Value)

	for _, trav := range expr.Variables() {
		root := trav.RootName()
		if root != envRoot {
			vars[root] = cty.StringVal(cfgvars.Placeholder{Name: root}.Format(r))

			continue
		}
		if len(trav) > 1 {
			if attr, ok := trav[1].(hcl.TraverseAttr); ok {
				envAttrs[attr.Name] = cty.StringVal(cfgvars.Placeholder{Name: attr.Name}.Format(r))
			}
		}
	}
	if len(envAttrs) > 0 {
		vars[envRoot] = cty.ObjectVal(envAttrs)
	}

	return &hcl.EvalContext{Variables: vars}
}

// ctyToAny 经由 JSON 编码将 cty 值转为普通 Go 值。
func ctyToAny(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}

	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}
