package cfgvars

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUndefinedVariable 占位符已识别，但变量源中没有该变量。
	ErrUndefinedVariable = errors.New("variable is not defined")

	// ErrCoercion 变量值或字面量无法解析为目标类型。
	ErrCoercion = errors.New("cannot coerce value")

	// ErrMalformedPlaceholder 占位符语法正确但名称为空，如 "${}"。
	ErrMalformedPlaceholder = errors.New("malformed placeholder")

	// ErrLookup 变量源查找失败（如 secret 文件不可读），见 [FallibleSource]。
	ErrLookup = errors.New("variable lookup failed")
)

// Error 描述一次替换失败，携带字段路径、变量名与目标类型。
//
// 使用 [errors.Is] 判断类别（[ErrUndefinedVariable]、[ErrCoercion]、
// [ErrMalformedPlaceholder]、[ErrLookup]），使用 [errors.As] 获取细节。
type Error struct {
	// Path 是字段路径，如 "redis.password"、"servers[0].port"，顶层值为空。
	Path string
	// Name 是变量名，字面量解析失败时为空。
	Name string
	// Token 是原始占位符文本，如 "${REDIS_PASSWORD}"。
	Token string
	// Text 是参与解析的文本（变量值或字面量）。
	Text string
	// Kind 是目标类型。
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "'%s': ", e.Path)
	}

	switch {
	case errors.Is(e.Err, ErrUndefinedVariable):
		fmt.Fprintf(&b, "variable %s is not defined", e.Token)
	case errors.Is(e.Err, ErrMalformedPlaceholder):
		fmt.Fprintf(&b, "malformed placeholder %q: empty variable name", e.Token)
	case errors.Is(e.Err, ErrLookup):
		fmt.Fprintf(&b, "variable %s: lookup failed", e.Token)
		if cause := causeOf(e.Err, ErrLookup); cause != nil {
			fmt.Fprintf(&b, ": %v", cause)
		}
	default:
		if e.Token != "" {
			fmt.Fprintf(&b, "variable %s: ", e.Token)
		}
		fmt.Fprintf(&b, "cannot coerce %q to %s", e.Text, e.Kind)
		if cause := causeOf(e.Err, ErrCoercion); cause != nil {
			fmt.Fprintf(&b, ": %v", cause)
		}
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// causeOf 返回 "%w: %w" 包装中 sentinel 之外的那个错误。
func causeOf(err, sentinel error) error {
	multi, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	for _, inner := range multi.Unwrap() {
		if !errors.Is(inner, sentinel) {
			return inner
		}
	}

	return nil
}

func undefinedError(p Placeholder, r Recognizer, k Kind) *Error {
	return &Error{Name: p.Name, Token: p.Format(r), Kind: k, Err: ErrUndefinedVariable}
}

func lookupError(p Placeholder, r Recognizer, k Kind, err error) *Error {
	return &Error{Name: p.Name, Token: p.Format(r), Kind: k, Err: fmt.Errorf("%w: %w", ErrLookup, err)}
}

func malformedError(token string, k Kind) *Error {
	return &Error{Token: token, Kind: k, Err: ErrMalformedPlaceholder}
}
