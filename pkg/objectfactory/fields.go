package objectfactory

import (
	"time"

	"github.com/lk2023060901/objectfactory-go/pkg/schema"
)

func static(f schema.Field) func(string) schema.Field {
	return func(string) schema.Field { return f }
}

// Raw 声明一个不做类型转换的字段，取值在加载与输出时被深拷贝。
func Raw(opts ...FieldOption) *Field[any] {
	return newField[any](static(schema.Raw{}), opts)
}

// Integer 声明一个整数字段。
func Integer(opts ...FieldOption) *Field[int] {
	return newField[int](static(schema.Integer{}), opts)
}

// Float 声明一个浮点数字段。
func Float(opts ...FieldOption) *Field[float64] {
	return newField[float64](static(schema.Float{}), opts)
}

// String 声明一个字符串字段。
func String(opts ...FieldOption) *Field[string] {
	return newField[string](static(schema.String{}), opts)
}

// Boolean 声明一个布尔字段。
func Boolean(opts ...FieldOption) *Field[bool] {
	return newField[bool](static(schema.Boolean{}), opts)
}

// DateTime 声明一个日期时间字段，格式通过 Format 指定，默认为 ISO 8601。
func DateTime(opts ...FieldOption) *Field[time.Time] {
	var f *Field[time.Time]
	f = newField[time.Time](func(string) schema.Field {
		return schema.DateTime{Format: f.opts.format}
	}, opts)
	return f
}

// Date 声明一个日期字段，默认格式为 2006-01-02。
func Date(opts ...FieldOption) *Field[time.Time] {
	var f *Field[time.Time]
	f = newField[time.Time](func(string) schema.Field {
		return schema.Date{Format: f.opts.format}
	}, opts)
	return f
}

// Email 声明一个邮箱地址字段。
func Email(opts ...FieldOption) *Field[string] {
	return newField[string](static(schema.Email{}), opts)
}

// StringList 声明一个字符串列表字段，默认值为空列表。
func StringList(opts ...FieldOption) *Field[[]string] {
	return newField[[]string](static(schema.List{Elem: schema.String{}}), withEmptyDefault([]string{}, opts))
}

// IntegerList 声明一个整数列表字段，默认值为空列表。
func IntegerList(opts ...FieldOption) *Field[[]int] {
	return newField[[]int](static(schema.List{Elem: schema.Integer{}}), withEmptyDefault([]int{}, opts))
}

// FloatList 声明一个浮点数列表字段，默认值为空列表。
func FloatList(opts ...FieldOption) *Field[[]float64] {
	return newField[[]float64](static(schema.List{Elem: schema.Float{}}), withEmptyDefault([]float64{}, opts))
}

// BooleanList 声明一个布尔列表字段，默认值为空列表。
func BooleanList(opts ...FieldOption) *Field[[]bool] {
	return newField[[]bool](static(schema.List{Elem: schema.Boolean{}}), withEmptyDefault([]bool{}, opts))
}

// Nested 声明一个嵌套对象字段。
//
// 数据体带类型标签时通过 Factory 创建对象；否则使用 FieldType 固定的类型，
// 二者皆无时反序列化失败。数据体中的 null 使字段保持未设置。
func Nested(opts ...FieldOption) *Field[Serializable] {
	var f *Field[Serializable]
	f = newField[Serializable](func(name string) schema.Field {
		return nestedField{name: name, pinned: f.opts.pinned}
	}, opts)
	return f
}

// List 声明一个对象列表字段，元素的解析规则与 Nested 相同，默认值为空列表。
func List(opts ...FieldOption) *Field[[]Serializable] {
	var f *Field[[]Serializable]
	f = newField[[]Serializable](func(name string) schema.Field {
		return listField{elem: nestedField{name: name, pinned: f.opts.pinned}}
	}, withEmptyDefault([]Serializable{}, opts))
	return f
}

// Append 向列表字段追加元素并写回对象。
func Append[E any](f *Field[[]E], obj Serializable, items ...E) {
	f.Set(obj, append(f.Get(obj), items...))
}

func withEmptyDefault(empty any, opts []FieldOption) []FieldOption {
	return append([]FieldOption{Default(empty)}, opts...)
}
