package schema

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/lk2023060901/objectfactory-go/pkg/util/typeutil"
)

const (
	msgInvalidInteger = "Not a valid integer."
	msgInvalidNumber  = "Not a valid number."
	msgInvalidString  = "Not a valid string."
	msgInvalidBoolean = "Not a valid boolean."
	msgSpecialNumber  = "Special numeric values (nan or infinity) are not permitted."
)

var (
	truthy = typeutil.NewSet("t", "true", "on", "y", "yes", "1")
	falsy  = typeutil.NewSet("f", "false", "off", "n", "no", "0")
)

// Raw 不做任何转换，加载时对复合值做深拷贝。
type Raw struct{}

var _ Field = Raw{}

func (Raw) Deserialize(_ context.Context, value any) (any, error) {
	return typeutil.DeepCopy(value), nil
}

func (Raw) Serialize(_ context.Context, value any) any {
	return typeutil.DeepCopy(value)
}

// Integer 转换为 int。浮点数向零截断，数字字符串会被解析，布尔值被拒绝。
type Integer struct{}

var _ Field = Integer{}

func (Integer) Deserialize(_ context.Context, value any) (any, error) {
	if isBool(value) {
		return nil, Invalid(msgInvalidInteger)
	}
	switch v := value.(type) {
	case float32:
		if isSpecial(float64(v)) {
			return nil, Invalid(msgInvalidInteger)
		}
	case float64:
		if isSpecial(v) {
			return nil, Invalid(msgInvalidInteger)
		}
	case string:
		// 字符串只按十进制解析，"010" 为 10，"0x10" 非法
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 0)
		if err != nil {
			return nil, Invalid(msgInvalidInteger)
		}
		return int(n), nil
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return nil, Invalid(msgInvalidInteger)
	}
	return n, nil
}

func (Integer) Serialize(_ context.Context, value any) any {
	if n, err := cast.ToIntE(value); err == nil {
		return n
	}
	return value
}

// Float 转换为 float64，拒绝布尔值、非数字字符串以及 NaN/Inf。
type Float struct{}

var _ Field = Float{}

func (Float) Deserialize(_ context.Context, value any) (any, error) {
	if isBool(value) {
		return nil, Invalid(msgInvalidNumber)
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, Invalid(msgInvalidNumber)
	}
	if isSpecial(f) {
		return nil, Invalid(msgSpecialNumber)
	}
	return f, nil
}

func (Float) Serialize(_ context.Context, value any) any {
	if f, err := cast.ToFloat64E(value); err == nil {
		return f
	}
	return value
}

// String 只接受字符串（及 []byte），不会把数字转成字符串。
type String struct{}

var _ Field = String{}

func (String) Deserialize(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return nil, Invalid(msgInvalidString)
	}
}

func (String) Serialize(_ context.Context, value any) any {
	return cast.ToString(value)
}

// Boolean 接受布尔值、数值 1/0 以及常见的真假字面量（true/false、yes/no、on/off 等）。
type Boolean struct{}

var _ Field = Boolean{}

func (Boolean) Deserialize(_ context.Context, value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		lower := strings.ToLower(v)
		if truthy.Contain(lower) {
			return true, nil
		}
		if falsy.Contain(lower) {
			return false, nil
		}
		return nil, Invalid(msgInvalidBoolean)
	}
	if isNumber(value) {
		f, err := cast.ToFloat64E(value)
		if err == nil {
			switch f {
			case 1:
				return true, nil
			case 0:
				return false, nil
			}
		}
	}
	return nil, Invalid(msgInvalidBoolean)
}

func (Boolean) Serialize(_ context.Context, value any) any {
	if b, ok := value.(bool); ok {
		return b
	}
	return cast.ToBool(value)
}

func isBool(value any) bool {
	_, ok := value.(bool)
	return ok
}

func isSpecial(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func isNumber(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
