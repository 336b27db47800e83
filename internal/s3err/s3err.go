// Copyright 2026 The gos3 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package s3err provides the error type returned by gos3 APIs.
package s3err

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/xerrors"
)

// An ErrorCode describes the error's category.
type ErrorCode int

const (
	// Returned by the Code function on a nil error. It is not a valid
	// code for an error.
	OK ErrorCode = 0

	// The error could not be categorized.
	Unknown ErrorCode = 1

	// A configuration value (region, endpoint, addressing style, bucket
	// name, presign expiry) is invalid. Detected before any network call.
	Config ErrorCode = 2

	// The request or response body could not be fully transferred: a
	// stream read/write failed, or the number of bytes sent did not match
	// the declared content length.
	Transfer ErrorCode = 3

	// The operation did not complete within its deadline.
	Timeout ErrorCode = 4

	// The caller canceled the operation before it completed.
	Canceled ErrorCode = 5

	// The server returned a non-2xx status with no parseable error body.
	HTTP ErrorCode = 6

	// The server returned an error document. The S3 error code, message
	// and request id are preserved on the error.
	Service ErrorCode = 7

	// The response body was present but structurally invalid.
	Decode ErrorCode = 8
)

// Call "go generate" whenever you change the above list of error codes.
// To get stringer:
//   go get golang.org/x/tools/cmd/stringer
//   Make sure $GOPATH/bin or $GOBIN in on your path.

//go:generate stringer -type=ErrorCode

// An Error describes a gos3 error.
type Error struct {
	// Code is the error's category.
	Code ErrorCode
	// HTTPStatus is the response status code. Set for HTTP and Service
	// errors, zero otherwise.
	HTTPStatus int
	// S3Code is the provider-reported error code, e.g. "NoSuchKey".
	// Set for Service errors only.
	S3Code string
	// RequestID is the provider-reported request id, when available.
	RequestID string

	msg   string
	frame xerrors.Frame
	err   error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("code=%v", e.Code)
	}
	return fmt.Sprintf("%s (code=%v)", e.msg, e.Code)
}

func (e *Error) Format(s fmt.State, c rune) {
	xerrors.FormatError(e, s, c)
}

func (e *Error) FormatError(p xerrors.Printer) (next error) {
	p.Print(e.Error())
	e.frame.Format(p)
	return e.err
}

// Unwrap returns the error underlying the receiver, which may be nil.
func (e *Error) Unwrap() error {
	return e.err
}

// New returns a new error with the given code, underlying error and message. Pass 1
// for the call depth if New is called from the function raising the error; pass 2 if
// it is called from a helper function that was invoked by the original function; and
// so on.
func New(c ErrorCode, err error, callDepth int, msg string) *Error {
	return &Error{
		Code:  c,
		msg:   msg,
		frame: xerrors.Caller(callDepth),
		err:   err,
	}
}

// Newf uses format and args to format a message, then calls New.
func Newf(c ErrorCode, err error, format string, args ...interface{}) *Error {
	return New(c, err, 1, fmt.Sprintf(format, args...))
}

// NewService returns a Service error carrying the fields of a provider
// error document.
func NewService(httpStatus int, s3Code, message, requestID string, callDepth int) *Error {
	e := New(Service, nil, callDepth+1, fmt.Sprintf("%s: %s", s3Code, message))
	e.HTTPStatus = httpStatus
	e.S3Code = s3Code
	e.RequestID = requestID
	return e
}

// NewHTTP returns an HTTP error for a non-2xx response whose body carried
// no parseable error document.
func NewHTTP(httpStatus int, callDepth int) *Error {
	e := New(HTTP, nil, callDepth+1, fmt.Sprintf("unexpected HTTP response status %d", httpStatus))
	e.HTTPStatus = httpStatus
	return e
}

// TransportCode classifies an error returned by the HTTP transport. Context
// expiry maps to Timeout, context cancellation to Canceled, network timeouts
// to Timeout, and everything else to Transfer.
func TransportCode(err error) ErrorCode {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Canceled
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Transfer
}
