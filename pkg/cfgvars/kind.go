package cfgvars

import (
	"encoding"
	"reflect"
	"time"
)

// Kind 是结构构建器请求的目标标量类型。
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindBytes
	KindUnit
	// KindText 交给后续 hook 解析的文本，如 time.Duration 与 encoding.TextUnmarshaler。
	KindText
	// KindAny 目标类型未知（interface 字段），按文本内容推断。
	KindAny
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint:    "uint",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindChar:    "char",
	KindString:  "string",
	KindBytes:   "bytes",
	KindUnit:    "unit",
	KindText:    "text",
	KindAny:     "any",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}

	return kindNames[k]
}

// Char 表示单个字符的配置字段。
//
// Go 中 rune 与 int32 无法区分，需要字符语义的字段使用该类型。
type Char rune

var (
	charType            = reflect.TypeFor[Char]()
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// KindOf 返回目标类型对应的标量 Kind。
//
// 复合类型（struct、map、非 []byte 的 slice、array、指针）返回 false，
// 由结构构建器继续向下递归。
func KindOf(t reflect.Type) (Kind, bool) {
	if t == nil {
		return KindInvalid, false
	}

	switch {
	case t == charType:
		return KindChar, true
	case t == durationType:
		return KindText, true
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType):
		return KindText, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return KindBool, true
	case reflect.Int:
		return KindInt, true
	case reflect.Int8:
		return KindInt8, true
	case reflect.Int16:
		return KindInt16, true
	case reflect.Int32:
		return KindInt32, true
	case reflect.Int64:
		return KindInt64, true
	case reflect.Uint:
		return KindUint, true
	case reflect.Uint8:
		return KindUint8, true
	case reflect.Uint16:
		return KindUint16, true
	case reflect.Uint32:
		return KindUint32, true
	case reflect.Uint64:
		return KindUint64, true
	case reflect.Float32:
		return KindFloat32, true
	case reflect.Float64:
		return KindFloat64, true
	case reflect.String:
		return KindString, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes, true
		}
	case reflect.Struct:
		if t.NumField() == 0 {
			return KindUnit, true
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return KindAny, true
		}
	default:
	}

	return KindInvalid, false
}
