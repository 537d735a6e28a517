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
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
// 非本包定义的错误统一归为 errUnexpected。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case serdeError:
		return specificErr.code()

	default:
		return errUnexpected.code()
	}
}

// Kind 返回错误所属的分类名（NotFound、IOFailure 等）。
// err 为 nil 时返回空字符串，无法识别的错误返回 "Unexpected"。
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if name, ok := kindNames[Code(err)]; ok {
		return name
	}
	return "Unexpected"
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(serdeError); ok {
		return err.retriable
	}

	return false
}

func GetErrorType(err error) ErrorType {
	if merr, ok := errors.Cause(err).(serdeError); ok {
		return merr.errType
	}

	return SystemError
}

// IO 相关错误封装。
func WrapErrNotFound(path string, msg ...string) error {
	err := wrapFields(ErrNotFound, value("path", path))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrIOFailure(path string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrIOFailure, err.Error(), value("path", path))
}

// 格式相关错误封装。
func WrapErrParseFailure(path string, err error) error {
	if err == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrParseFailure, err.Error(), value("path", path))
}

func WrapErrParseFailureReason(path string, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return wrapFieldsWithDesc(ErrParseFailure, reason, value("path", path))
}

func WrapErrUnsupportedShape(key string, kind string, msg ...string) error {
	err := wrapFields(ErrUnsupportedShape,
		value("key", key),
		value("kind", kind),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// 对象图相关错误封装。
func WrapErrCorruptData(path string, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return wrapFieldsWithDesc(ErrCorruptData, reason, value("path", path))
}

func WrapErrUnsupportedObject(typeName string, msg ...string) error {
	err := wrapFields(ErrUnsupportedObject, value("type", typeName))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err serdeError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err serdeError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}
