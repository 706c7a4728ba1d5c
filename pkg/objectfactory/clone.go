package objectfactory

import (
	"github.com/lk2023060901/objectfactory-go/pkg/util/typeutil"
)

// Clone 返回 obj 的深拷贝，新对象与原对象不共享任何可变状态。
func Clone[T Serializable](obj T) T {
	return cloneObject(obj).(T)
}

func cloneObject(obj Serializable) Serializable {
	o := ensure(obj)
	out := o.class.newIn(o.factory)
	slots := out.base().slots
	for slot, v := range o.slots {
		slots[slot] = cloneValue(v)
	}
	return out
}

// cloneValue 深拷贝字段取值，可序列化对象按其类重新创建。
func cloneValue(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case Serializable:
		return cloneObject(value)
	case []Serializable:
		if value == nil {
			return value
		}
		out := make([]Serializable, len(value))
		for i, elem := range value {
			if elem != nil {
				out[i] = cloneObject(elem)
			}
		}
		return out
	default:
		return typeutil.DeepCopy(v)
	}
}
