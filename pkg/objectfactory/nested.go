package objectfactory

import (
	"context"
	"reflect"

	"github.com/lk2023060901/objectfactory-go/pkg/schema"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

const msgInvalidMapping = "Not a valid mapping type."

// nestedField 是嵌套对象在 schema 引擎中的实现，加载时回到 Factory 创建对象。
type nestedField struct {
	name   string
	pinned *Class
}

var _ schema.Field = nestedField{}

func (f nestedField) Deserialize(ctx context.Context, value any) (any, error) {
	body, ok := asBody(value)
	if !ok {
		return nil, schema.Invalid(msgInvalidMapping)
	}
	return f.resolve(ctx, body)
}

func (f nestedField) resolve(ctx context.Context, body Body) (Serializable, error) {
	factory := factoryFrom(ctx)
	if factory == nil {
		factory = DefaultFactory()
	}

	if _, tagged := body[factory.TypeKey()]; tagged {
		obj, err := factory.create(ctx, body, nil)
		if err != nil {
			return nil, err
		}
		if f.pinned != nil && !obj.Class().IsSubclassOf(f.pinned) {
			return nil, merr.WrapErrNestedTypeMismatch(f.name, obj.Class().Name(), f.pinned.Name())
		}
		return obj, nil
	}

	if f.pinned == nil {
		return nil, merr.WrapErrTypeNotInferable(f.name)
	}
	obj := f.pinned.newIn(factory)
	if err := obj.base().deserialize(ctx, body); err != nil {
		return nil, err
	}
	return obj, nil
}

func (f nestedField) Serialize(ctx context.Context, value any) any {
	obj, ok := value.(Serializable)
	if !ok || isNilPointer(obj) {
		return nil
	}
	return ensure(obj).serialize(ctx, serializeOptionsFrom(ctx))
}

// listField 对序列中的每个元素按 nestedField 的规则解析，任一元素失败即中止。
type listField struct {
	elem nestedField
}

var _ schema.Field = listField{}

func (f listField) Deserialize(ctx context.Context, value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, schema.Invalid("Not a valid list.")
	}

	out := make([]Serializable, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		body, ok := asBody(rv.Index(i).Interface())
		if !ok {
			return nil, schema.Invalid("[%d] %s", i, msgInvalidMapping)
		}
		obj, err := f.elem.resolve(ctx, body)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (f listField) Serialize(ctx context.Context, value any) any {
	objs, ok := value.([]Serializable)
	if !ok {
		return value
	}
	out := make([]any, 0, len(objs))
	for _, obj := range objs {
		out = append(out, f.elem.Serialize(ctx, obj))
	}
	return out
}

func asBody(value any) (Body, bool) {
	if v, ok := value.(Body); ok {
		return v, v != nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	body := make(Body, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		body[iter.Key().String()] = iter.Value().Interface()
	}
	return body, true
}
