package cfgvars

import (
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strconv"
)

var stringType = reflect.TypeFor[string]()

// substituter 是一次解码过程中的替换层。
//
// 结构构建器（mapstructure）对每一层的每个值调用 hook，
// 复合值原样转发后由构建器继续递归，因此拦截作用于任意深度。
// 除变量源与识别器外不持有状态，每次出现都独立解析。
type substituter struct {
	src Source
	rec Recognizer
}

// hook 实现 mapstructure.DecodeHookFuncValue。
//
//   - 目标不是标量：原样转发；若来源是占位符，先确认变量已定义
//   - 来源不是 string（原生 bool/数字、json.Number）：原样透传，仅在目标为 string 时格式化为文本
//   - 目标是 interface：复合值按 [Resolve] 的规则整体替换
//   - 来源是 string：占位符先解析再按目标类型转换，字面量按同一路径严格转换
func (s substituter) hook(from, to reflect.Value) (any, error) {
	data := from.Interface()

	kind, ok := KindOf(to.Type())
	if !ok {
		return data, s.checkDefined(from)
	}

	if from.Type() != stringType {
		// interface 目标由构建器直接赋值，不再向下递归
		if kind == KindAny {
			return s.resolve(data, "")
		}
		if kind == KindString {
			if text, ok := nativeText(data); ok {
				return convertTo(text, to.Type()), nil
			}
		}

		return data, nil
	}

	text := from.String()
	p, ok := s.rec.Recognize(text)
	if !ok {
		return s.literal(text, kind, to.Type())
	}

	return s.substitute(p, text, kind, to.Type())
}

// checkDefined 在复合目标上报告未定义或格式错误的占位符，
// 否则构建器只会给出 "expected a map or struct" 之类的形状错误。
// 变量已定义时值仍原样转发，由构建器报告形状不匹配。
func (s substituter) checkDefined(from reflect.Value) error {
	if from.Type() != stringType {
		return nil
	}

	token := from.String()
	p, ok := s.rec.Recognize(token)
	if !ok {
		return nil
	}
	if p.Name == "" {
		return malformedError(token, KindInvalid)
	}
	if _, err := s.lookup(p, KindInvalid); err != nil {
		return err
	}

	return nil
}

func (s substituter) substitute(p Placeholder, token string, kind Kind, target reflect.Type) (any, error) {
	if p.Name == "" {
		return nil, malformedError(token, kind)
	}

	value, err := s.lookup(p, kind)
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolved variable", "name", p.Name, "kind", kind)

	v, err := Coerce(value, kind)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Name = p.Name
			e.Token = token
		}

		return nil, err
	}

	return convertTo(v, target), nil
}

// lookup 从变量源取值，未定义与查找失败分别报告。
func (s substituter) lookup(p Placeholder, kind Kind) (string, error) {
	value, ok, err := LookupErr(s.src, p.Name)
	switch {
	case err != nil:
		return "", lookupError(p, s.rec, kind, err)
	case !ok:
		return "", undefinedError(p, s.rec, kind)
	}

	return value, nil
}

// literal 处理非占位符字符串：string/text/any 原样保留，其它类型严格解析。
func (s substituter) literal(text string, kind Kind, target reflect.Type) (any, error) {
	switch kind {
	case KindString, KindText, KindAny:
		return convertTo(text, target), nil
	default:
	}

	v, err := Coerce(text, kind)
	if err != nil {
		return nil, err
	}

	return convertTo(v, target), nil
}

// convertTo 将同一底层类型的值转换为具名目标类型，如 uint16 → Port。
func convertTo(v any, target reflect.Type) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() == target {
		return v
	}
	if rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface()
	}

	return v
}

// nativeText 将格式原生标量转为文本，供 string 目标使用。
func nativeText(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case bool:
		return strconv.FormatBool(n), true
	case int:
		return strconv.Itoa(n), true
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(n).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(n).Uint(), 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}

	return "", false
}
