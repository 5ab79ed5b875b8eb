package cfgvars

import "github.com/go-viper/mapstructure/v2"

// options 解码选项。
type options struct {
	recognizer  Recognizer
	tagName     string // 结构体字段标签名，默认 json
	errorUnused bool   // 文档中存在结构体未使用的 key 时报错
	hooks       []mapstructure.DecodeHookFunc
}

// Option 解码选项函数。
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		recognizer: DefaultRecognizer,
		tagName:    "json",
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithDelimiters 修改占位符的前后缀。
//
// 示例：
//
//	cfgvars.WithDelimiters("${env:", "}") // 识别 ${env:NAME}
//	cfgvars.WithDelimiters("$", "")       // 识别 $NAME
//
// 前缀为空时整个选项不生效，suffix 同样被忽略，见 [Recognizer]。
func WithDelimiters(prefix, suffix string) Option {
	return func(o *options) {
		if prefix == "" {
			return
		}
		o.recognizer = Recognizer{Prefix: prefix, Suffix: suffix}
	}
}

// RecognizerOf 返回 opts 生效后的占位符识别器，
// 供需要在解码前渲染占位符的调用方（如 format.HCL）使用。
func RecognizerOf(opts ...Option) Recognizer {
	return newOptions(opts).recognizer
}

// WithTagName 设置结构体字段标签名，默认 "json"，与 YAML/JSON 共享同一套 key。
func WithTagName(name string) Option {
	return func(o *options) {
		o.tagName = name
	}
}

// WithErrorUnused 文档中出现结构体未定义的 key 时返回错误。
func WithErrorUnused() Option {
	return func(o *options) {
		o.errorUnused = true
	}
}

// WithHooks 在替换与内置转换之后追加 mapstructure decode hook。
func WithHooks(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}
