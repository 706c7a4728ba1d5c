package schema

import (
	"context"

	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// Field 描述单个字段在“外部表示 <-> 内部值”之间的转换规则。
type Field interface {
	// Deserialize 将数据体中的值转换为内部值。
	// 转换失败时应返回 InvalidError，其它错误会中止整个加载过程。
	Deserialize(ctx context.Context, value any) (any, error)

	// Serialize 将内部值转换为可写入数据体的外部表示。
	Serialize(ctx context.Context, value any) any
}

// Validator 在类型转换成功后对内部值做进一步校验。
type Validator func(value any) error

// Spec 是一个字段在 Schema 中的完整描述。
type Spec struct {
	// Name 为属性名，Load/Dump 的内部值以它为键。
	Name string
	// Key 为数据体中的外部键名，留空时与 Name 相同。
	Key string
	// Default 为 Dump 时缺少取值所使用的默认值。
	Default any
	// Required 表示加载时数据体必须包含该字段。
	Required bool
	// AllowNone 表示数据体中的 null 会作为内部值 nil 保留。
	AllowNone bool
	// SkipNone 表示数据体中的 null 会被忽略，字段保持未设置。
	SkipNone bool
	// Field 为类型转换实现。
	Field Field
	// Validators 在类型转换成功后依次执行。
	Validators []Validator
}

// SpecOption 用于配置 Spec。
type SpecOption func(*Spec)

func WithKey(key string) SpecOption {
	return func(s *Spec) {
		s.Key = key
	}
}

func WithDefault(v any) SpecOption {
	return func(s *Spec) {
		s.Default = v
	}
}

func WithRequired() SpecOption {
	return func(s *Spec) {
		s.Required = true
	}
}

func WithAllowNone() SpecOption {
	return func(s *Spec) {
		s.AllowNone = true
	}
}

func WithSkipNone() SpecOption {
	return func(s *Spec) {
		s.SkipNone = true
	}
}

func WithValidators(validators ...Validator) SpecOption {
	return func(s *Spec) {
		s.Validators = append(s.Validators, validators...)
	}
}

// NewSpec 创建一个字段描述。
func NewSpec(name string, field Field, opts ...SpecOption) *Spec {
	spec := &Spec{
		Name:  name,
		Field: field,
	}
	for _, opt := range opts {
		opt(spec)
	}
	return spec
}

// ExternalKey 返回数据体中使用的键名。
func (s *Spec) ExternalKey() string {
	if s.Key != "" {
		return s.Key
	}
	return s.Name
}

// Schema 是按声明顺序排列的一组字段描述，构建后只读。
type Schema struct {
	name  string
	specs []*Spec
	index map[string]*Spec
}

// New 创建 Schema。重复的属性名以后出现者为准，但保留首次出现的位置。
func New(name string, specs ...*Spec) *Schema {
	s := &Schema{
		name:  name,
		specs: make([]*Spec, 0, len(specs)),
		index: make(map[string]*Spec, len(specs)),
	}
	for _, spec := range specs {
		if spec == nil || spec.Field == nil {
			panic(merr.WrapErrParameterInvalidMsg("schema %s: spec without field", name))
		}
		if _, ok := s.index[spec.Name]; ok {
			for i := range s.specs {
				if s.specs[i].Name == spec.Name {
					s.specs[i] = spec
				}
			}
		} else {
			s.specs = append(s.specs, spec)
		}
		s.index[spec.Name] = spec
	}
	return s
}

func (s *Schema) Name() string {
	return s.name
}

// Specs 返回字段描述的副本，顺序与声明顺序一致。
func (s *Schema) Specs() []*Spec {
	out := make([]*Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

// Spec 按属性名查找字段描述。
func (s *Schema) Spec(name string) (*Spec, bool) {
	spec, ok := s.index[name]
	return spec, ok
}

func (s *Schema) Len() int {
	return len(s.specs)
}

// Load 校验并转换数据体，返回以属性名为键的内部值。
//
// 数据体中缺失的非必填字段不会出现在结果中；未声明的键被忽略。
// 所有字段级错误汇总为一个 *ValidationError 返回，非字段级错误直接返回。
func (s *Schema) Load(ctx context.Context, body map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.specs))
	verr := NewValidationError(s.name)

	for _, spec := range s.specs {
		key := spec.ExternalKey()
		raw, ok := body[key]
		if !ok {
			if spec.Required {
				verr.Add(key, MsgRequired)
			}
			continue
		}

		if raw == nil {
			switch {
			case spec.AllowNone:
				out[spec.Name] = nil
			case spec.SkipNone:
			default:
				verr.Add(key, MsgNull)
			}
			continue
		}

		value, err := spec.Field.Deserialize(ctx, raw)
		if err != nil {
			if IsInvalid(err) {
				verr.Add(key, invalidMessages(err)...)
				continue
			}
			return nil, err
		}

		failed := false
		for _, validate := range spec.Validators {
			if err := validate(value); err != nil {
				verr.Add(key, invalidMessages(err)...)
				failed = true
			}
		}
		if failed {
			continue
		}
		out[spec.Name] = value
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return out, nil
}

// Dump 将以属性名为键的内部值转换为数据体，缺少取值的字段使用 Spec.Default。
func (s *Schema) Dump(ctx context.Context, values map[string]any) map[string]any {
	out := make(map[string]any, len(s.specs))
	for _, spec := range s.specs {
		value, ok := values[spec.Name]
		if !ok {
			value = spec.Default
		}
		if value == nil {
			out[spec.ExternalKey()] = nil
			continue
		}
		out[spec.ExternalKey()] = spec.Field.Serialize(ctx, value)
	}
	return out
}
