package cfgvars

import "strings"

// Placeholder 是一次识别出的变量引用。
type Placeholder struct {
	Name string
}

// Recognizer 按前后缀识别占位符，默认 "${" 与 "}"。
//
// Prefix 为空时整个 Recognizer 视为默认值，Suffix 一并被忽略：
// Recognizer{Suffix: "]"} 识别的仍是 ${NAME}。没有前缀无法区分占位符与普通文本，
// 因此不支持只有后缀的形式。Suffix 可以单独为空，如 {Prefix: "$"} 识别 $NAME。
type Recognizer struct {
	Prefix string
	Suffix string
}

// DefaultRecognizer 识别 ${NAME} 形式的占位符。
var DefaultRecognizer = Recognizer{Prefix: "${", Suffix: "}"}

// Recognize 使用默认分隔符识别占位符，见 [Recognizer.Recognize]。
func Recognize(s string) (Placeholder, bool) {
	return DefaultRecognizer.Recognize(s)
}

// Recognize 判断 s 是否整体为单个占位符。
//
// 规则：
//   - 整个字符串必须是 Prefix + NAME + Suffix，前后不能有其它字符
//   - NAME 不做字符集校验，合法性由变量源决定
//   - NAME 中出现前缀或后缀视为非占位符（如 "${A}${B}"、"${${A}}"）
//   - "${}" 会被识别为空名称占位符，由调用方报告为 [ErrMalformedPlaceholder]
//
// 纯函数，不修改输入。
func (r Recognizer) Recognize(s string) (Placeholder, bool) {
	r = r.orDefault()

	if len(s) < len(r.Prefix)+len(r.Suffix) {
		return Placeholder{}, false
	}
	name, ok := strings.CutPrefix(s, r.Prefix)
	if !ok {
		return Placeholder{}, false
	}
	name, ok = strings.CutSuffix(name, r.Suffix)
	if !ok {
		return Placeholder{}, false
	}
	if strings.Contains(name, r.Prefix) || (r.Suffix != "" && strings.Contains(name, r.Suffix)) {
		return Placeholder{}, false
	}

	return Placeholder{Name: name}, true
}

// Format 以 r 的分隔符渲染占位符，用于错误信息。
func (p Placeholder) Format(r Recognizer) string {
	r = r.orDefault()

	return r.Prefix + p.Name + r.Suffix
}

// String 以默认分隔符渲染占位符。
func (p Placeholder) String() string {
	return p.Format(DefaultRecognizer)
}

func (r Recognizer) orDefault() Recognizer {
	if r.Prefix == "" {
		return DefaultRecognizer
	}

	return r
}
