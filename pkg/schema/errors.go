package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/objectfactory-go/internal/json"
	"github.com/lk2023060901/objectfactory-go/pkg/util/merr"
)

// 常用的校验提示信息。
const (
	MsgRequired = "Missing data for required field."
	MsgNull     = "Field may not be null."
)

// InvalidError 表示单个字段的取值无法通过类型转换或校验。
//
// Field 实现在 Deserialize 中返回 InvalidError 时，Schema.Load 会将其收集到
// ValidationError 中并继续处理其它字段；其它类型的错误会立即中止加载。
type InvalidError struct {
	Messages []string
}

// Invalid 构造一个 InvalidError。
func Invalid(format string, args ...any) error {
	return &InvalidError{Messages: []string{fmt.Sprintf(format, args...)}}
}

func (e *InvalidError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// IsInvalid 判断 err 是否为字段级的校验错误。
func IsInvalid(err error) bool {
	var invalid *InvalidError
	return errors.As(err, &invalid)
}

func invalidMessages(err error) []string {
	var invalid *InvalidError
	if errors.As(err, &invalid) {
		return invalid.Messages
	}
	return []string{err.Error()}
}

// ValidationError 汇总一次 Load 过程中所有字段的校验错误，键为数据体中的外部键名。
type ValidationError struct {
	Schema string
	Fields map[string][]string
}

// NewValidationError 创建一个空的 ValidationError。
func NewValidationError(schema string) *ValidationError {
	return &ValidationError{
		Schema: schema,
		Fields: make(map[string][]string),
	}
}

// Add 为指定字段追加一条错误信息。
func (ve *ValidationError) Add(field string, messages ...string) {
	if ve.Fields == nil {
		ve.Fields = make(map[string][]string)
	}
	ve.Fields[field] = append(ve.Fields[field], messages...)
}

// HasErrors 判断是否记录了错误。
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Fields) > 0
}

// Messages 返回指定字段的错误信息。
func (ve *ValidationError) Messages(field string) []string {
	return ve.Fields[field]
}

func (ve *ValidationError) Error() string {
	keys := make([]string, 0, len(ve.Fields))
	for key := range ve.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(ve.Fields[key], " ")))
	}
	prefix := "validation failed"
	if ve.Schema != "" {
		prefix += " for " + ve.Schema
	}
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

// Unwrap 使 errors.Is(err, merr.ErrValidationFailed) 成立。
func (ve *ValidationError) Unwrap() error {
	return merr.ErrValidationFailed
}

// MarshalJSON 输出 {"error": "validation_failed", "fields": {...}}，便于直接返回给调用方。
func (ve *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error  string              `json:"error"`
		Schema string              `json:"schema,omitempty"`
		Fields map[string][]string `json:"fields"`
	}{
		Error:  "validation_failed",
		Schema: ve.Schema,
		Fields: ve.Fields,
	})
}
