// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回错误码。context 的取消与超时有固定错误码，其它未知错误统一为 errUnexpected。
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	if fe, ok := errors.Cause(err).(factoryError); ok {
		return fe.errCode
	}
	switch {
	case errors.Is(err, context.Canceled):
		return CanceledCode
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutCode
	default:
		return errUnexpected.errCode
	}
}

// GetErrorType 返回错误的分类，未知错误视为系统错误。
func GetErrorType(err error) ErrorType {
	if fe, ok := errors.Cause(err).(factoryError); ok {
		return fe.errType
	}
	return SystemError
}

// IsInputError 判断错误是否由调用方输入（数据体、参数）引起。
func IsInputError(err error) bool {
	return GetErrorType(err) == InputError
}

// annotate 在哨兵的信息后追加 [k=v] 形式的上下文，desc 非空时再追加描述。
// kv 按键值交替排列。
func annotate(base factoryError, desc string, kv ...any) factoryError {
	var sb strings.Builder
	sb.WriteString(base.msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, "[%v=%v]", kv[i], kv[i+1])
	}
	if desc != "" {
		sb.WriteString(": ")
		sb.WriteString(desc)
	}
	base.msg = sb.String()
	return base
}

func withMsg(err error, msg []string) error {
	if len(msg) == 0 {
		return err
	}
	return errors.Wrap(err, strings.Join(msg, "->"))
}

func WrapErrTypeNotFound(tag string, msg ...string) error {
	desc := fmt.Sprintf("object type %s not found in factory registry", tag)
	return withMsg(annotate(ErrTypeNotFound, desc, "type", tag), msg)
}

func WrapErrTypeMismatch(actual, expected string, msg ...string) error {
	desc := fmt.Sprintf("%s is not an instance of type: %s", actual, expected)
	return withMsg(annotate(ErrTypeMismatch, desc, "actual", actual, "expected", expected), msg)
}

func WrapErrTypeNotInferable(field string, msg ...string) error {
	return withMsg(annotate(ErrTypeNotInferable, "", "field", field), msg)
}

func WrapErrNestedTypeMismatch(field, actual, expected string, msg ...string) error {
	desc := fmt.Sprintf("%s is not an instance of type: %s", actual, expected)
	return withMsg(annotate(ErrNestedTypeMismatch, desc, "field", field, "actual", actual, "expected", expected), msg)
}

func WrapErrClassInvalid(class string, reason string, msg ...string) error {
	return withMsg(annotate(ErrClassInvalid, reason, "class", class), msg)
}

func WrapErrValidationFailed(reason string, msg ...string) error {
	return withMsg(annotate(ErrValidationFailed, reason), msg)
}

// WrapErrFieldTypeMismatch 中 expected 与 actual 可以是示例值或 reflect.Type。
func WrapErrFieldTypeMismatch(field string, expected, actual any, msg ...string) error {
	return withMsg(annotate(ErrFieldTypeMismatch, "",
		"field", field,
		"expected", typeName(expected),
		"actual", typeName(actual),
	), msg)
}

func WrapErrFieldNotFound[T any](field T, msg ...string) error {
	return withMsg(annotate(ErrFieldNotFound, "", "field", field), msg)
}

func WrapErrCodecFailed(codec string, cause error, msg ...string) error {
	return withMsg(annotate(ErrCodecFailed, cause.Error(), "codec", codec), msg)
}

func WrapErrCodecUnsupported(codec string, msg ...string) error {
	return withMsg(annotate(ErrCodecUnsupported, "", "codec", codec), msg)
}

func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	return withMsg(annotate(ErrParameterInvalid, "", "expected", expected, "actual", actual), msg)
}

func WrapErrParameterInvalidMsg(format string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, format, args...)
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	return withMsg(annotate(ErrParameterMissing, "", "missing_param", param), msg)
}

func WrapErrConfigInvalid(key string, reason string, msg ...string) error {
	return withMsg(annotate(ErrConfigInvalid, reason, "key", key), msg)
}

func typeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case reflect.Type:
		return t.String()
	}
	return fmt.Sprintf("%T", v)
}
