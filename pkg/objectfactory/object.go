// Package objectfactory 提供可序列化对象的声明、（反）序列化与按类型标签构造的能力。
//
// 一个可序列化类型由三部分组成：嵌入 Object 的结构体、包级的字段描述符以及
// 通过 Define 得到的 *Class：
//
//	type Square struct {
//		objectfactory.Object
//	}
//
//	var (
//		squareSide  = objectfactory.Float()
//		SquareClass = objectfactory.Register(objectfactory.Define[Square](
//			objectfactory.Declare("side", squareSide),
//		))
//	)
//
//	func (s *Square) Side() float64 { return squareSide.Get(s) }
//
// Factory 根据数据体中的类型标签（默认键为 "_type"）找到对应的 *Class，
// 创建实例并完成反序列化。
package objectfactory

import (
	"context"
	"fmt"
	"reflect"

	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// Body 是对象序列化后的数据体。
type Body = map[string]any

// TypeKey 是数据体中保存类型标签的默认键名。
const TypeKey = "_type"

// Serializable 是所有可序列化对象的公共接口。
//
// 该接口包含未导出方法，只能通过在结构体中嵌入 Object 来实现。
type Serializable interface {
	// Class 返回对象所属的类。
	Class() *Class
	// Serialize 将对象转换为数据体，不会修改对象本身。
	Serialize(opts ...SerializeOption) Body
	// Deserialize 按类的 Schema 校验 body 并写入字段。
	Deserialize(body Body) error

	base() *Object
}

// Object 是可序列化对象的基础类型，需以值的形式嵌入到用户结构体中。
//
// 字段值保存在以存储槽位（"_" + 属性名）为键的表中，通过字段描述符读写。
// Object 不支持并发修改。
type Object struct {
	class   *Class
	factory *Factory
	slots   map[string]any
}

func (o *Object) base() *Object {
	return o
}

func (o *Object) bind(cls *Class, f *Factory) {
	o.class = cls
	o.factory = f
	if o.slots == nil {
		o.slots = make(map[string]any, len(cls.order))
	}
}

// Class 返回对象所属的类。未通过 Class.New 创建且尚未读写过任何字段的对象返回 nil。
func (o *Object) Class() *Class {
	return o.class
}

// Factory 返回创建该对象的 Factory，未指定时为默认 Factory。
func (o *Object) Factory() *Factory {
	if o.factory != nil {
		return o.factory
	}
	return DefaultFactory()
}

func (o *Object) mustClass() *Class {
	if o.class == nil {
		panic(merr.WrapErrClassInvalid("<unbound>", "object was not created by Class.New"))
	}
	return o.class
}

// Serialize 将对象转换为数据体。默认写入完整类型标签。
func (o *Object) Serialize(opts ...SerializeOption) Body {
	options := defaultSerializeOptions()
	for _, opt := range opts {
		opt(options)
	}
	options.typeKey = o.Factory().TypeKey()
	return o.serialize(withSerializeOptions(context.Background(), options), options)
}

func (o *Object) serialize(ctx context.Context, options *serializeOptions) Body {
	cls := o.mustClass()
	values := make(map[string]any, len(cls.order))
	for _, name := range cls.order {
		desc := cls.fields[name]
		if v, ok := desc.peek(o); ok {
			values[name] = v
		} else {
			values[name] = desc.defaultValue()
		}
	}

	body := cls.schema.Dump(ctx, values)
	if options.includeType {
		key := options.typeKey
		if key == "" {
			key = o.Factory().TypeKey()
		}
		if options.fullType {
			body[key] = cls.QualifiedName()
		} else {
			body[key] = cls.Name()
		}
	}
	return body
}

// Deserialize 校验并加载 body。
//
// body 中缺失的非必填字段保持原值，未声明的键被忽略。校验失败时返回
// *schema.ValidationError，此时对象不会被修改；嵌套对象解析失败的错误原样返回。
func (o *Object) Deserialize(body Body) error {
	return o.deserialize(context.Background(), body)
}

func (o *Object) deserialize(ctx context.Context, body Body) error {
	cls := o.mustClass()
	if factoryFrom(ctx) == nil {
		ctx = withFactory(ctx, o.Factory())
	}

	values, err := cls.schema.Load(ctx, body)
	if err != nil {
		return err
	}
	for _, name := range cls.order {
		v, ok := values[name]
		if !ok {
			continue
		}
		if err := cls.fields[name].assign(o, v); err != nil {
			return err
		}
	}
	return nil
}

// New 使用 cls 创建一个新实例并断言为 T，类型不符时 panic。
func New[T Serializable](cls *Class) T {
	obj := cls.New()
	t, ok := obj.(T)
	if !ok {
		panic(merr.WrapErrTypeMismatch(cls.Name(), typeName[T]()))
	}
	return t
}

// ensure 返回 s 内嵌的 Object，并为直接以字面量创建的对象补全类信息。
func ensure(s Serializable) *Object {
	o := s.base()
	if o.class == nil {
		cls, ok := lookupClass(reflect.TypeOf(s))
		if !ok {
			panic(merr.WrapErrClassInvalid(fmt.Sprintf("%T", s), "type was not defined"))
		}
		o.bind(cls, nil)
	}
	return o
}

// isNilPointer 判断 v 是否为 nil 指针，包括装在接口中的有类型 nil。
func isNilPointer(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// SerializeOption 用于配置 Serialize 的输出。
type SerializeOption func(*serializeOptions)

type serializeOptions struct {
	includeType bool
	fullType    bool
	// typeKey 取自顶层对象的 Factory，嵌套对象沿用同一个键名。
	typeKey string
}

func defaultSerializeOptions() *serializeOptions {
	return &serializeOptions{
		includeType: true,
		fullType:    true,
	}
}

// WithoutType 不在数据体中写入类型标签，对嵌套对象同样生效。
func WithoutType() SerializeOption {
	return func(o *serializeOptions) {
		o.includeType = false
	}
}

// WithShortType 使用不含命名空间的短类型标签。
func WithShortType() SerializeOption {
	return func(o *serializeOptions) {
		o.fullType = false
	}
}

type (
	serializeOptionsKey struct{}
	factoryKey          struct{}
)

func withSerializeOptions(ctx context.Context, options *serializeOptions) context.Context {
	return context.WithValue(ctx, serializeOptionsKey{}, options)
}

func serializeOptionsFrom(ctx context.Context) *serializeOptions {
	if options, ok := ctx.Value(serializeOptionsKey{}).(*serializeOptions); ok {
		return options
	}
	return defaultSerializeOptions()
}

func withFactory(ctx context.Context, f *Factory) context.Context {
	return context.WithValue(ctx, factoryKey{}, f)
}

func factoryFrom(ctx context.Context) *Factory {
	f, _ := ctx.Value(factoryKey{}).(*Factory)
	return f
}
