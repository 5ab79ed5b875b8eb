package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgvars"
)

var errTrailingData = errors.New("unexpected data after top-level value")

// JSON 返回 JSON 文档解码器。
//
// 数字保持为 json.Number，由结构构建器按字段类型转换，不经过占位符替换。
func JSON(data []byte) cfgvars.Decoder {
	return cfgvars.DecoderFunc(func() (any, error) {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		var doc any
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json: %w", errTrailingData)
		}

		return doc, nil
	})
}
