package cfgm

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// mergeMaps 将 src 深度合并进 dst，对象逐 key 合并，其余值整体覆盖。
func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		child, isObject := value.(map[string]any)
		if existing, ok := dst[key].(map[string]any); isObject && ok {
			mergeMaps(existing, child)

			continue
		}
		dst[key] = value
	}
}

// setByPath 按 "." 分隔的路径写入值，沿途缺失或非对象的节点替换为新对象。
func setByPath(dst map[string]any, path string, value any) {
	for {
		head, rest, nested := strings.Cut(path, ".")
		if !nested {
			dst[head] = value

			return
		}

		next, ok := dst[head].(map[string]any)
		if !ok {
			next = make(map[string]any)
			dst[head] = next
		}
		dst, path = next, rest
	}
}

// decodeConfigMap 不做占位符替换的宽松解码，用于 [WithoutSubstitution]。
//
// ${...} 原样进入字符串字段；"7000" 这类文本按弱类型规则转为数字或布尔。
func decodeConfigMap(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
