package schema

import (
	"context"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
)

const (
	msgInvalidList  = "Not a valid list."
	msgInvalidEmail = "Not a valid email address."
)

// Email 接受符合 RFC 5322 的单个邮箱地址。
type Email struct{}

var _ Field = Email{}

func (Email) Deserialize(ctx context.Context, value any) (any, error) {
	v, err := String{}.Deserialize(ctx, value)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSpace(v.(string))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return nil, Invalid(msgInvalidEmail)
	}
	return s, nil
}

func (Email) Serialize(ctx context.Context, value any) any {
	return String{}.Serialize(ctx, value)
}

// List 对序列中的每个元素应用 Elem，加载结果为 []any。
type List struct {
	Elem Field
}

var _ Field = List{}

func (f List) Deserialize(ctx context.Context, value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, Invalid(msgInvalidList)
	}
	if _, ok := value.([]byte); ok {
		return nil, Invalid(msgInvalidList)
	}

	out := make([]any, 0, rv.Len())
	var messages []string
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if elem == nil {
			messages = append(messages, fmt.Sprintf("[%d] %s", i, MsgNull))
			continue
		}
		if f.Elem == nil {
			out = append(out, elem)
			continue
		}
		v, err := f.Elem.Deserialize(ctx, elem)
		if err != nil {
			if !IsInvalid(err) {
				return nil, err
			}
			for _, msg := range invalidMessages(err) {
				messages = append(messages, fmt.Sprintf("[%d] %s", i, msg))
			}
			continue
		}
		out = append(out, v)
	}
	if len(messages) > 0 {
		return nil, &InvalidError{Messages: messages}
	}
	return out, nil
}

func (f List) Serialize(ctx context.Context, value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return value
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if elem == nil || f.Elem == nil {
			out = append(out, elem)
			continue
		}
		out = append(out, f.Elem.Serialize(ctx, elem))
	}
	return out
}

// Func 允许以函数的形式提供自定义字段，未提供的方向按 Raw 处理。
type Func struct {
	Load func(ctx context.Context, value any) (any, error)
	Dump func(ctx context.Context, value any) any
}

var _ Field = Func{}

func (f Func) Deserialize(ctx context.Context, value any) (any, error) {
	if f.Load == nil {
		return Raw{}.Deserialize(ctx, value)
	}
	return f.Load(ctx, value)
}

func (f Func) Serialize(ctx context.Context, value any) any {
	if f.Dump == nil {
		return Raw{}.Serialize(ctx, value)
	}
	return f.Dump(ctx, value)
}
