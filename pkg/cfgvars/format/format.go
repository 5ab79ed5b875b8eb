// Package format 提供 [cfgvars.Decoder] 的 JSON、YAML 与 HCL 实现。
//
// 解码结果统一为 map[string]any、[]any 与标量组成的树，
// 占位符 "${NAME}" 以字符串形式保留，由 cfgvars 在构建结构体时替换。
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

// ErrNotObject 文档根节点不是对象。
var ErrNotObject = errors.New("config root must be object")

// ForPath 按扩展名选择解码器：.json、.hcl/.tf，其余按 YAML 处理。
// r 仅影响 HCL 中变量引用渲染出的占位符，见 [HCL]。
func ForPath(path string, data []byte, r cfgvars.Recognizer) cfgvars.Decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON(data)
	case ".hcl", ".tf":
		return HCL(data, path, r)
	default:
		return YAML(data)
	}
}

// Object 解码文档并要求根节点为对象，空文档返回空 map。
func Object(dec cfgvars.Decoder) (map[string]any, error) {
	doc, err := dec.Decode()
	if err != nil {
		return nil, err
	}

	switch root := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return root, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, doc)
	}
}
