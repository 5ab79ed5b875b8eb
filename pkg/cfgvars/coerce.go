package cfgvars

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errNotBool  = errors.New(`expected "true" or "false"`)
	errNotChar  = errors.New("expected exactly one character")
	errNotUnit  = errors.New("expected empty value")
	errBadKind  = errors.New("unsupported target kind")
	errNotFinal = errors.New("value is not a scalar")
)

// Coerce 将文本严格解析为 k 指定的类型。
//
// 每种 Kind 一个分支，不做宽松转换（如 "1" 不会变成 true，超出位宽不会截断）。
// 失败时返回匹配 [ErrCoercion] 的 *[Error]。
func Coerce(text string, k Kind) (any, error) {
	v, err := coerce(text, k)
	if err != nil {
		return nil, &Error{Text: text, Kind: k, Err: fmt.Errorf("%w: %w", ErrCoercion, err)}
	}

	return v, nil
}

func coerce(text string, k Kind) (any, error) {
	switch k {
	case KindString, KindText:
		return text, nil
	case KindBytes:
		return []byte(text), nil
	case KindBool:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}

		return nil, errNotBool
	case KindInt:
		return parseInt[int](text, strconv.IntSize)
	case KindInt8:
		return parseInt[int8](text, 8)
	case KindInt16:
		return parseInt[int16](text, 16)
	case KindInt32:
		return parseInt[int32](text, 32)
	case KindInt64:
		return parseInt[int64](text, 64)
	case KindUint:
		return parseUint[uint](text, strconv.IntSize)
	case KindUint8:
		return parseUint[uint8](text, 8)
	case KindUint16:
		return parseUint[uint16](text, 16)
	case KindUint32:
		return parseUint[uint32](text, 32)
	case KindUint64:
		return parseUint[uint64](text, 64)
	case KindFloat32:
		f, err := parseFloat(text, 32)
		if err != nil {
			return nil, err
		}

		return float32(f), nil
	case KindFloat64:
		return parseFloat(text, 64)
	case KindChar:
		r, size := utf8.DecodeRuneInString(text)
		if size == 0 || size != len(text) || (r == utf8.RuneError && size == 1) {
			return nil, errNotChar
		}

		return Char(r), nil
	case KindUnit:
		if text != "" {
			return nil, errNotUnit
		}

		return struct{}{}, nil
	case KindAny:
		return Infer(text), nil
	case KindInvalid:
		return nil, errNotFinal
	}

	return nil, errBadKind
}

func parseInt[T int | int8 | int16 | int32 | int64](text string, bits int) (T, error) {
	n, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return 0, numError(err)
	}

	return T(n), nil
}

func parseUint[T uint | uint8 | uint16 | uint32 | uint64](text string, bits int) (T, error) {
	n, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, numError(err)
	}

	return T(n), nil
}

// parseFloat 只接受十进制或指数形式，拒绝 strconv 额外支持的
// 下划线分隔、十六进制浮点与 inf/nan。
func parseFloat(text string, bits int) (float64, error) {
	if !decimalFloat(text) {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0, numError(err)
	}

	return f, nil
}

// decimalFloat 报告 text 是否形如 [+-]digits[.digits][e[+-]digits]，如 "1.5"、"-2e10"、".5"。
func decimalFloat(text string) bool {
	s := text
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}

	mantissa, exp, hasExp := strings.Cut(strings.ToLower(s), "e")
	whole, frac, _ := strings.Cut(mantissa, ".")
	if whole == "" && frac == "" {
		return false
	}
	if !digits(whole) || !digits(frac) {
		return false
	}
	if !hasExp {
		return true
	}
	if exp != "" && (exp[0] == '+' || exp[0] == '-') {
		exp = exp[1:]
	}

	return exp != "" && digits(exp)
}

func digits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// numError 去掉 strconv 的函数名与输入回显，输入已记录在 Error.Text 中。
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}

	return err
}

// Infer 在目标类型未知时推断文本的类型。
//
// 推断顺序：
//   - "true" / "false" → bool
//   - 非负整数 → uint64
//   - 负整数 → int64
//   - 十进制或指数形式的有限浮点数 → float64（"nan"、"inf" 保持为 string）
//   - 由双引号包裹的文本 → 去掉引号的 string（用于强制字符串，如 "\"123\""）
//   - 其它 → string
func Infer(text string) any {
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return u
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	if f, err := parseFloat(text, 64); err == nil {
		return f
	}
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return text[1 : len(text)-1]
	}

	return text
}
