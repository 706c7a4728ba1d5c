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
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// 非 factoryError 的错误码。
const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

// ErrorType 区分错误来自调用方输入还是系统本身。
type ErrorType int32

const (
	SystemError ErrorType = iota
	InputError
)

func (t ErrorType) String() string {
	if t == InputError {
		return "input_error"
	}
	return "system_error"
}

// 错误码按百位分段：1xx 类型注册表，2xx 字段与 Schema，3xx 编解码，
// 11xx 参数，12xx 配置。新增错误前先确认已有的是否够用。
var (
	ErrTypeNotFound       = input("object type not found in factory registry", 100)
	ErrTypeMismatch       = input("object is not an instance of the expected type", 101)
	ErrTypeNotInferable   = input("cannot infer type information", 102)
	ErrNestedTypeMismatch = input("nested object type mismatch", 103)
	ErrClassInvalid       = system("invalid class definition", 104)

	ErrValidationFailed  = input("validation failed", 200)
	ErrFieldTypeMismatch = input("field value type mismatch", 201)
	ErrFieldNotFound     = input("field not found", 202)

	ErrCodecFailed      = system("codec failed", 300)
	ErrCodecUnsupported = system("codec unsupported", 301)

	ErrParameterInvalid = input("invalid parameter", 1100)
	ErrParameterMissing = input("missing parameter", 1101)

	ErrConfigInvalid = system("invalid config", 1200)

	// 仅用于给未知错误分配错误码，不导出。
	errUnexpected = system("unexpected error", (1<<16)-1)
)

// factoryError 是带错误码的哨兵错误。Wrap 系列函数返回的是附带了上下文的副本，
// 副本与哨兵之间按错误码比较。
type factoryError struct {
	msg     string
	errCode int32
	errType ErrorType
}

func input(msg string, code int32) factoryError {
	return factoryError{msg: msg, errCode: code, errType: InputError}
}

func system(msg string, code int32) factoryError {
	return factoryError{msg: msg, errCode: code, errType: SystemError}
}

func (e factoryError) Error() string {
	return e.msg
}

func (e factoryError) Is(target error) bool {
	other, ok := errors.Cause(target).(factoryError)
	return ok && other.errCode == e.errCode
}

// multiErrors 保存多个错误。errors.Is 对任意一个成立即成立；
// Unwrap 逐个剥离首个错误，因此 errors.Cause 得到的是最后一个错误。
type multiErrors []error

func (e multiErrors) Error() string {
	return strings.Join(lo.Map(e, func(err error, _ int) string { return err.Error() }), ": ")
}

func (e multiErrors) Unwrap() error {
	switch len(e) {
	case 0, 1:
		return nil
	case 2:
		return e[1]
	default:
		return e[1:]
	}
}

func (e multiErrors) Is(target error) bool {
	return lo.ContainsBy(e, func(err error) bool { return errors.Is(err, target) })
}

// Combine 将多个错误合并为一个，nil 会被忽略。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return multiErrors(errs)
}
