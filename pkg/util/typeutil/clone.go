package typeutil

import "reflect"

// Cloner 由需要自定义深拷贝逻辑的类型实现，Clone 返回的值不得与原值共享可变状态。
type Cloner[T any] interface {
	Clone() T
}

// DeepCopy 返回 v 的深拷贝。
//
// slice、map、array、指针与接口会逐层复制；结构体按值复制，
// 其内部未导出的引用字段不会被复制。实现了 Cloner[T] 的值优先使用自身的 Clone。
func DeepCopy[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	rv := reflect.ValueOf(&v).Elem()
	out, _ := deepCopy(rv).Interface().(T)
	return out
}

func deepCopy(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(deepCopy(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(deepCopy(rv.Index(i)))
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type().Elem())
		out.Elem().Set(deepCopy(rv.Elem()))
		return out
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(deepCopy(rv.Elem()))
		return out
	default:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		return out
	}
}
