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

// Package s3errors provides support for getting error codes from
// errors returned by gos3 APIs.
package s3errors

import (
	"context"
	"errors"

	"gos3.dev/internal/s3err"
)

// An ErrorCode describes the error's category. Programs should act upon an error's
// code, not its message.
type ErrorCode = s3err.ErrorCode

const (
	// Returned by the Code function on a nil error. It is not a valid
	// code for an error.
	OK ErrorCode = s3err.OK

	// The error could not be categorized.
	Unknown ErrorCode = s3err.Unknown

	// A configuration value (region, endpoint, addressing style, bucket
	// name, presign expiry) is invalid. Detected before any network call.
	Config ErrorCode = s3err.Config

	// The request or response body could not be fully transferred.
	Transfer ErrorCode = s3err.Transfer

	// The operation did not complete within its deadline.
	Timeout ErrorCode = s3err.Timeout

	// The caller canceled the operation before it completed.
	Canceled ErrorCode = s3err.Canceled

	// The server returned a non-2xx status with no parseable error body.
	HTTP ErrorCode = s3err.HTTP

	// The server returned an error document; ServiceCode, RequestID and
	// HTTPStatus recover its fields.
	Service ErrorCode = s3err.Service

	// The response body was present but structurally invalid.
	Decode ErrorCode = s3err.Decode
)

// Code returns the ErrorCode of err if it, or some error it wraps, is an *Error.
// If err is context.Canceled or context.DeadlineExceeded, or wraps one of those errors,
// it returns the Canceled or Timeout codes, respectively.
// If err is nil, it returns the special code OK.
// Otherwise, it returns Unknown.
func Code(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var e *s3err.Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.Canceled) {
		return Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Unknown
}

// HTTPStatus returns the HTTP response status carried by err, if err or some
// error it wraps is an *Error produced from a server response. It returns 0
// otherwise.
func HTTPStatus(err error) int {
	var e *s3err.Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 0
}

// ServiceCode returns the provider-reported error code (e.g. "NoSuchKey")
// carried by err, or "" if there is none.
func ServiceCode(err error) string {
	var e *s3err.Error
	if errors.As(err, &e) {
		return e.S3Code
	}
	return ""
}

// RequestID returns the provider-reported request id carried by err, or ""
// if there is none.
func RequestID(err error) string {
	var e *s3err.Error
	if errors.As(err, &e) {
		return e.RequestID
	}
	return ""
}
