package schema

import (
	"reflect"
	"regexp"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/lk2023060901/objectfactory-go/pkg/util/typeutil"
)

// Number 是 Range 支持的数值类型。
type Number interface {
	constraints.Integer | constraints.Float
}

// Range 校验数值位于闭区间 [lower, upper]。
func Range[T Number](lower, upper T) Validator {
	return func(value any) error {
		v, ok := value.(T)
		if !ok {
			return Invalid(msgInvalidNumber)
		}
		if v < lower || v > upper {
			return Invalid("Must be greater than or equal to %v and less than or equal to %v.", lower, upper)
		}
		return nil
	}
}

// Length 校验字符串（按字符计）或序列的长度位于 [lower, upper]，upper 小于 0 表示不设上限。
func Length(lower, upper int) Validator {
	return func(value any) error {
		var n int
		switch v := value.(type) {
		case string:
			n = utf8.RuneCountInString(v)
		default:
			rv := reflect.ValueOf(value)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				n = rv.Len()
			default:
				return Invalid("Length is not applicable to %T.", value)
			}
		}
		if n < lower {
			return Invalid("Shorter than minimum length %d.", lower)
		}
		if upper >= 0 && n > upper {
			return Invalid("Longer than maximum length %d.", upper)
		}
		return nil
	}
}

// OneOf 校验取值属于给定集合。
func OneOf[T comparable](choices ...T) Validator {
	set := typeutil.NewSet(choices...)
	return func(value any) error {
		v, ok := value.(T)
		if !ok || !set.Contain(v) {
			return Invalid("Must be one of: %v.", choices)
		}
		return nil
	}
}

// Regexp 校验字符串匹配给定的正则表达式。
func Regexp(pattern string) Validator {
	re := regexp.MustCompile(pattern)
	return func(value any) error {
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return Invalid("String does not match expected pattern.")
		}
		return nil
	}
}
