package objectfactory

import (
	"reflect"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/lk2023060901/objectfactory-go/pkg/schema"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// Class 描述一个可序列化类型：类型名、命名空间、父类、按声明顺序合并后的字段表以及 Schema。
// Class 由 Define 创建，之后只读。
type Class struct {
	name      string
	namespace string
	typ       reflect.Type
	parents   []*Class

	fields map[string]Descriptor
	order  []string
	schema *schema.Schema
	custom bool

	newFn func() Serializable
}

// ClassOption 用于配置 Define。
type ClassOption func(*classBuilder)

type declaration struct {
	name string
	desc Descriptor
}

type classBuilder struct {
	name      string
	namespace string
	parents   []*Class
	declared  []declaration
	schema    *schema.Schema
}

// Extends 声明父类，字段按父类的声明顺序依次合并。
func Extends(parents ...*Class) ClassOption {
	return func(b *classBuilder) {
		b.parents = append(b.parents, parents...)
	}
}

// Named 覆盖类的命名空间与类型名。
func Named(namespace, name string) ClassOption {
	return func(b *classBuilder) {
		b.namespace = namespace
		b.name = name
	}
}

// WithSchema 使用预先构建的 Schema，Define 不再根据字段生成。
// Schema 中 Spec.Name 应与字段的属性名一致。
func WithSchema(s *schema.Schema) ClassOption {
	return func(b *classBuilder) {
		b.schema = s
	}
}

// Declare 以属性名 name 声明字段。
func Declare(name string, desc Descriptor) ClassOption {
	return func(b *classBuilder) {
		b.declared = append(b.declared, declaration{name: name, desc: desc})
	}
}

var classIndex sync.Map // reflect.Type -> *Class

func lookupClass(typ reflect.Type) (*Class, bool) {
	cls, ok := classIndex.Load(typ)
	if !ok {
		return nil, false
	}
	return cls.(*Class), true
}

// Define 为结构体 T 创建 *Class。T 必须以值的形式嵌入 Object。
//
// 字段表先按顺序合并所有父类的字段，再加入本类声明的字段；重新声明的属性名
// 替换父类的描述符但保留原有位置。默认命名空间为 T 所在包的包名。
func Define[T any, PT interface {
	*T
	Serializable
}](opts ...ClassOption) *Class {
	typ := reflect.TypeOf((*T)(nil))
	b := &classBuilder{
		name:      typ.Elem().Name(),
		namespace: packageName(typ.Elem()),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.name == "" {
		panic(merr.WrapErrClassInvalid(typ.String(), "anonymous type requires Named"))
	}

	cls := &Class{
		name:      b.name,
		namespace: b.namespace,
		typ:       typ,
		parents:   b.parents,
		fields:    make(map[string]Descriptor),
		newFn: func() Serializable {
			return PT(new(T))
		},
	}

	for _, parent := range b.parents {
		for _, name := range parent.order {
			cls.put(name, parent.fields[name])
		}
	}
	for _, decl := range b.declared {
		if decl.desc == nil {
			panic(merr.WrapErrClassInvalid(cls.name, "nil field "+decl.name))
		}
		decl.desc.bind(decl.name)
		cls.put(decl.name, decl.desc)
	}

	if b.schema != nil {
		cls.schema = b.schema
		cls.custom = true
	} else {
		specs := lo.Map(cls.order, func(name string, _ int) *schema.Spec {
			return cls.fields[name].Spec()
		})
		cls.schema = schema.New("_"+cls.name+"Schema", specs...)
	}

	classIndex.Store(typ, cls)
	return cls
}

func (c *Class) put(name string, desc Descriptor) {
	if _, ok := c.fields[name]; !ok {
		c.order = append(c.order, name)
	}
	c.fields[name] = desc
}

// packageName 返回类型所在包的包名，与 %T 输出中的限定名一致。
func packageName(typ reflect.Type) string {
	pkg, _, ok := strings.Cut(typ.String(), ".")
	if !ok {
		return ""
	}
	return pkg
}

// Name 返回类型名，同时作为短类型标签。
func (c *Class) Name() string {
	return c.name
}

func (c *Class) Namespace() string {
	return c.namespace
}

// QualifiedName 返回 "<命名空间>.<类型名>"，同时作为完整类型标签。
func (c *Class) QualifiedName() string {
	if c.namespace == "" {
		return c.name
	}
	return c.namespace + "." + c.name
}

func (c *Class) String() string {
	return c.QualifiedName()
}

// Type 返回实例的 Go 类型（*T）。
func (c *Class) Type() reflect.Type {
	return c.typ
}

func (c *Class) Parents() []*Class {
	return c.parents
}

func (c *Class) Schema() *schema.Schema {
	return c.schema
}

// HasCustomSchema 判断 Schema 是否由 WithSchema 提供。
func (c *Class) HasCustomSchema() bool {
	return c.custom
}

// Fields 按声明顺序返回字段描述符。
func (c *Class) Fields() []Descriptor {
	return lo.Map(c.order, func(name string, _ int) Descriptor {
		return c.fields[name]
	})
}

// FieldNames 按声明顺序返回属性名。
func (c *Class) FieldNames() []string {
	return append([]string(nil), c.order...)
}

func (c *Class) Field(name string) (Descriptor, bool) {
	desc, ok := c.fields[name]
	return desc, ok
}

// IsSubclassOf 判断 c 是否为 other 本身或其（间接）子类。
func (c *Class) IsSubclassOf(other *Class) bool {
	if other == nil {
		return false
	}
	if c == other {
		return true
	}
	return lo.SomeBy(c.parents, func(parent *Class) bool {
		return parent.IsSubclassOf(other)
	})
}

// New 创建一个未设置任何字段的新实例，归属默认 Factory。
func (c *Class) New() Serializable {
	return c.newIn(nil)
}

func (c *Class) newIn(f *Factory) Serializable {
	obj := c.newFn()
	obj.base().bind(c, f)
	return obj
}

// FromKwargs 创建实例并按属性名直接写入取值，不经过 schema 转换。
// 未声明的属性名或类型不兼容的取值返回错误。
func (c *Class) FromKwargs(values map[string]any) (Serializable, error) {
	obj := c.New()
	o := obj.base()
	for name, v := range values {
		desc, ok := c.fields[name]
		if !ok {
			return nil, merr.WrapErrFieldNotFound(name, c.QualifiedName())
		}
		if err := desc.assign(o, v); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// FromDict 创建实例并反序列化 body。
func (c *Class) FromDict(body Body) (Serializable, error) {
	obj := c.New()
	if err := obj.Deserialize(body); err != nil {
		return nil, err
	}
	return obj, nil
}
