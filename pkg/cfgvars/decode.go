package cfgvars

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decoder 是自描述的文档解码器，产出由 map[string]any、[]any 与标量组成的树。
//
// 实现见 format 子包（JSON、YAML、HCL）。
type Decoder interface {
	Decode() (any, error)
}

// DecoderFunc 将函数适配为 [Decoder]。
type DecoderFunc func() (any, error)

func (f DecoderFunc) Decode() (any, error) {
	return f()
}

// Decode 从 dec 读取文档并构建 T，${NAME} 占位符从 src 解析并按字段类型严格转换。
//
// src 为 nil 时使用 [EnvSource]。任一错误都会返回 nil 与第一个错误：
// 替换失败为带字段路径的 *[Error]，解码器自身的错误原样包装返回。
//
// 示例：
//
//	type Redis struct {
//		Host     string `json:"host"`
//		Port     uint16 `json:"port"`
//		Password string `json:"password"`
//	}
//	cfg, err := cfgvars.Decode[Redis](format.YAML(data), cfgvars.EnvSource{})
func Decode[T any](dec Decoder, src Source, opts ...Option) (*T, error) {
	doc, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return DecodeValue[T](doc, src, opts...)
}

// DecodeValue 与 [Decode] 相同，但输入是已解析的文档树。
func DecodeValue[T any](doc any, src Source, opts ...Option) (*T, error) {
	var out T
	if err := DecodeInto(doc, &out, src, opts...); err != nil {
		return nil, err
	}

	return &out, nil
}

// DecodeInto 将文档树解码到 out（必须是指针）。
//
// 出错时 out 可能已被部分写入，调用方应丢弃。
func DecodeInto(doc any, out any, src Source, opts ...Option) error {
	o := newOptions(opts)
	s := substituter{src: orEnv(src), rec: o.recognizer}

	hooks := append([]mapstructure.DecodeHookFunc{
		mapstructure.DecodeHookFuncValue(s.hook),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	}, o.hooks...)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(hooks...),
		Result:      out,
		TagName:     o.tagName,
		ErrorUnused: o.errorUnused,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return firstError(err)
	}

	return nil
}

func orEnv(src Source) Source {
	if src == nil {
		return EnvSource{}
	}

	return src
}

// firstError 从 mapstructure 聚合的错误树中取出第一个字段错误。
//
// 替换失败返回补全了路径的 *Error，其它字段错误原样包装。
func firstError(err error) error {
	leaf := firstDecodeError(err)
	if leaf == nil {
		return fmt.Errorf("decode: %w", err)
	}

	var e *Error
	if errors.As(leaf, &e) {
		e.Path = string(Path(leaf.Name()).Join(Path(e.Path)))

		return e
	}

	return fmt.Errorf("decode: %w", leaf)
}

// firstDecodeError 深度优先查找最内层的 *mapstructure.DecodeError。
func firstDecodeError(err error) *mapstructure.DecodeError {
	if err == nil {
		return nil
	}

	var children []error
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		children = x.Unwrap()
	case interface{ Unwrap() error }:
		children = []error{x.Unwrap()}
	}

	for _, child := range children {
		if leaf := firstDecodeError(child); leaf != nil {
			return leaf
		}
	}

	if de, ok := err.(*mapstructure.DecodeError); ok {
		return de
	}

	return nil
}
