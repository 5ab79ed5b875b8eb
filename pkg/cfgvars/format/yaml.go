package format

import (
	"fmt"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
	yamlv3 "go.yaml.in/yaml/v3"
)

// YAML 返回 YAML 文档解码器，非字符串 key 统一转为字符串。
func YAML(data []byte) cfgvars.Decoder {
	return cfgvars.DecoderFunc(func() (any, error) {
		var raw any
		if err := yamlv3.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}

		return normalizeMapKeys(raw), nil
	})
}

func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = normalizeMapKeys(value)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	default:
		return val
	}
}
