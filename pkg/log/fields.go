package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameType      = "type"
	FieldNameClass     = "class"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldType 返回一个包含类型标签的 zap 字段。
func FieldType(tag string) zap.Field {
	return zap.String(FieldNameType, tag)
}

// FieldClass 返回一个包含类全名的 zap 字段。
func FieldClass(name string) zap.Field {
	return zap.String(FieldNameClass, name)
}
