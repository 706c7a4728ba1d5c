package objectfactory

import (
	"fmt"
	"reflect"

	"github.com/lk2023060901/objectfactory-go/pkg/schema"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// Descriptor 是字段描述符的非泛型视图，由 Define 用于构建类的字段表与 Schema。
type Descriptor interface {
	// Name 返回声明时的属性名，未绑定时为空。
	Name() string
	// Key 返回数据体中使用的外部键名。
	Key() string
	// Slot 返回对象内部的存储槽位。
	Slot() string
	// Spec 返回交给 schema 引擎的字段描述。
	Spec() *schema.Spec
	// IsSet 判断对象的该字段是否已写入值。
	IsSet(obj Serializable) bool
	// Reset 清除对象上的取值，下次读取时重新使用默认值。
	Reset(obj Serializable)

	bind(name string)
	peek(o *Object) (any, bool)
	assign(o *Object, value any) error
	defaultValue() any
	clone(value any) any
}

// FieldOption 用于配置字段描述符。
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	key        string
	def        any
	hasDefault bool
	required   bool
	allowNone  bool
	validators []schema.Validator
	format     string
	pinned     *Class
	engine     schema.Field
}

// Default 设置字段的默认值，类型需与字段一致。
func Default(v any) FieldOption {
	return func(o *fieldOptions) {
		o.def = v
		o.hasDefault = true
	}
}

// Key 设置数据体中的外部键名，默认与属性名相同。
func Key(key string) FieldOption {
	return func(o *fieldOptions) {
		o.key = key
	}
}

// Required 表示反序列化时数据体必须包含该字段。
func Required() FieldOption {
	return func(o *fieldOptions) {
		o.required = true
	}
}

// AllowNone 允许数据体中的 null，对应字段保存为零值并以 null 序列化。
func AllowNone() FieldOption {
	return func(o *fieldOptions) {
		o.allowNone = true
	}
}

// Validate 追加在类型转换之后执行的校验器。
func Validate(validators ...schema.Validator) FieldOption {
	return func(o *fieldOptions) {
		o.validators = append(o.validators, validators...)
	}
}

// Format 设置日期时间字段的格式。
func Format(format string) FieldOption {
	return func(o *fieldOptions) {
		o.format = format
	}
}

// FieldType 为 Nested/List 字段固定元素类型。
func FieldType(cls *Class) FieldOption {
	return func(o *fieldOptions) {
		o.pinned = cls
	}
}

// Engine 以自定义的 schema 字段替换默认的类型转换实现。
func Engine(f schema.Field) FieldOption {
	return func(o *fieldOptions) {
		o.engine = f
	}
}

// Field 是类型为 T 的字段描述符。同一个描述符被声明它的类及其所有未重新声明该字段的子类共享。
type Field[T any] struct {
	name string
	slot string
	opts fieldOptions
	def  T

	// engine 根据绑定后的名称构造 schema 字段。
	engine func(name string) schema.Field
}

var _ Descriptor = (*Field[int])(nil)

func newField[T any](engine func(name string) schema.Field, opts []FieldOption) *Field[T] {
	f := &Field[T]{engine: engine}
	for _, opt := range opts {
		opt(&f.opts)
	}
	if f.opts.hasDefault && f.opts.def != nil {
		def, ok := convert[T](f.opts.def)
		if !ok {
			panic(merr.WrapErrFieldTypeMismatch("default", reflectType[T](), f.opts.def))
		}
		f.def = def
	}
	return f
}

func (f *Field[T]) Name() string {
	return f.name
}

func (f *Field[T]) Key() string {
	if f.opts.key != "" {
		return f.opts.key
	}
	return f.name
}

func (f *Field[T]) Slot() string {
	return f.slot
}

func (f *Field[T]) bind(name string) {
	if f.name != "" && f.name != name {
		panic(merr.WrapErrClassInvalid(name, fmt.Sprintf("field is already bound as %q", f.name)))
	}
	f.name = name
	f.slot = "_" + name
}

func (f *Field[T]) Spec() *schema.Spec {
	field := f.opts.engine
	if field == nil {
		field = f.engine(f.name)
	}
	return &schema.Spec{
		Name:       f.name,
		Key:        f.Key(),
		Default:    f.defaultValue(),
		Required:   f.opts.required,
		AllowNone:  f.opts.allowNone,
		SkipNone:   f.skipNone(),
		Field:      field,
		Validators: f.opts.validators,
	}
}

func (f *Field[T]) skipNone() bool {
	var zero T
	_, nested := any(&zero).(*Serializable)
	return nested && !f.opts.allowNone
}

// Get 返回对象上的取值。未写入时先将默认值的独立副本存入对象再返回。
func (f *Field[T]) Get(obj Serializable) T {
	o := ensure(obj)
	if v, ok := o.slots[f.slot]; ok {
		if v == nil {
			var zero T
			return zero
		}
		return v.(T)
	}
	v := f.clone(f.def)
	o.slots[f.slot] = v
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Set 直接写入取值，不做任何转换或校验。nil 指针按 nil 保存。
func (f *Field[T]) Set(obj Serializable, value T) {
	o := ensure(obj)
	if isNilPointer(value) {
		o.slots[f.slot] = nil
		return
	}
	o.slots[f.slot] = value
}

func (f *Field[T]) IsSet(obj Serializable) bool {
	_, ok := ensure(obj).slots[f.slot]
	return ok
}

func (f *Field[T]) Reset(obj Serializable) {
	delete(ensure(obj).slots, f.slot)
}

func (f *Field[T]) peek(o *Object) (any, bool) {
	v, ok := o.slots[f.slot]
	return v, ok
}

func (f *Field[T]) assign(o *Object, value any) error {
	if isNilPointer(value) {
		o.slots[f.slot] = nil
		return nil
	}
	v, ok := convert[T](value)
	if !ok {
		return merr.WrapErrFieldTypeMismatch(f.name, reflectType[T](), value)
	}
	o.slots[f.slot] = v
	return nil
}

// defaultValue 返回未写入时用于序列化的取值，未显式设置默认值时为 nil。
func (f *Field[T]) defaultValue() any {
	if !f.opts.hasDefault || f.opts.def == nil {
		return nil
	}
	return f.def
}

func (f *Field[T]) clone(value any) any {
	return cloneValue(value)
}

// convert 将 value 转换为 T：类型一致时直接返回，数值类型之间按 Go 规则无损转换，
// 切片逐元素转换。
func convert[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}
	var zero T
	out, ok := convertValue(reflect.ValueOf(value), reflectType[T]())
	if !ok {
		return zero, false
	}
	return out.Interface().(T), true
}

func reflectType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func convertValue(rv reflect.Value, target reflect.Type) (reflect.Value, bool) {
	if !rv.IsValid() {
		return reflect.Zero(target), target.Kind() == reflect.Interface
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Zero(target), target.Kind() == reflect.Interface
		}
		rv = rv.Elem()
	}
	if rv.Type().AssignableTo(target) {
		out := reflect.New(target).Elem()
		out.Set(rv)
		return out, true
	}
	switch {
	case isNumeric(rv.Kind()) && isNumeric(target.Kind()):
		out := rv.Convert(target)
		// 转为整数时必须无损，4.9 或越界的值不能写入整数字段
		if isInteger(target.Kind()) && out.Convert(rv.Type()).Interface() != rv.Interface() {
			return reflect.Value{}, false
		}
		return out, true
	case rv.Kind() == reflect.Slice && target.Kind() == reflect.Slice:
		out := reflect.MakeSlice(target, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, ok := convertValue(rv.Index(i), target.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(elem)
		}
		return out, true
	}
	return reflect.Value{}, false
}

func isInteger(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

func isNumeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}
