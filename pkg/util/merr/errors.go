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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
//
// 每个编解码操作要么成功，要么返回下列叶子错误之一（可被 errors.Is 判定）。
var (
	// IO related
	ErrNotFound  = newSerdeError("not found", 1000, false)
	ErrIOFailure = newSerdeError("IO failure", 1001, false)

	// Format related
	ErrParseFailure     = newSerdeError("parse failure", 1100, false, WithErrorType(InputError))
	ErrUnsupportedShape = newSerdeError("unsupported shape", 1101, false, WithErrorType(InputError))

	// Object graph related
	ErrCorruptData       = newSerdeError("corrupt data", 1200, false, WithErrorType(InputError))
	ErrUnsupportedObject = newSerdeError("unsupported object", 1201, false, WithErrorType(InputError))

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to serdeError
	errUnexpected = newSerdeError("unexpected error", (1<<16)-1, false)
)

// kindNames 为错误码到分类名的映射，用于日志与指标标签。
var kindNames = map[int32]string{
	ErrNotFound.errCode:          "NotFound",
	ErrIOFailure.errCode:         "IOFailure",
	ErrParseFailure.errCode:      "ParseFailure",
	ErrUnsupportedShape.errCode:  "UnsupportedShape",
	ErrCorruptData.errCode:       "CorruptData",
	ErrUnsupportedObject.errCode: "UnsupportedObject",
}

type errorOption func(*serdeError)

func WithDetail(detail string) errorOption {
	return func(err *serdeError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *serdeError) {
		err.errType = etype
	}
}

type serdeError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newSerdeError(msg string, code int32, retriable bool, options ...errorOption) serdeError {
	err := serdeError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e serdeError) code() int32 {
	return e.errCode
}

func (e serdeError) Error() string {
	return e.msg
}

func (e serdeError) Detail() string {
	return e.detail
}

func (e serdeError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(serdeError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
