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

package s3err

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestNewf(t *testing.T) {
	e := Newf(Config, nil, "a %d b", 3)
	got := e.Error()
	want := "a 3 b (code=Config)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewService(t *testing.T) {
	e := NewService(404, "NoSuchKey", "The specified key does not exist.", "REQ123", 1)
	if e.Code != Service {
		t.Errorf("got code %v, want Service", e.Code)
	}
	if e.HTTPStatus != 404 || e.S3Code != "NoSuchKey" || e.RequestID != "REQ123" {
		t.Errorf("service fields not preserved: %+v", e)
	}
	got := e.Error()
	want := "NoSuchKey: The specified key does not exist. (code=Service)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatting(t *testing.T) {
	for i, test := range []struct {
		err  *Error
		verb string
		want []string // regexps, one per line
	}{
		{
			New(Config, nil, 1, "message"),
			"%v",
			[]string{`^message \(code=Config\)$`},
		},
		{
			New(Config, nil, 1, "message"),
			"%+v",
			[]string{
				`^message \(code=Config\):$`,
				`\s+gos3.dev/internal/s3err.TestFormatting$`,
				`\s+.*/internal/s3err/s3err_test.go:\d+$`,
			},
		},
		{
			New(Decode, errors.New("wrapped"), 1, "message"),
			"%v",
			[]string{`^message \(code=Decode\): wrapped$`},
		},
		{
			New(Decode, errors.New("wrapped"), 1, "message"),
			"%+v",
			[]string{
				`^message \(code=Decode\):`,
				`^\s+gos3.dev/internal/s3err.TestFormatting$`,
				`^\s+.*/internal/s3err/s3err_test.go:\d+$`,
				`^\s+- wrapped$`,
			},
		},
		{
			New(Decode, errors.New("wrapped"), 1, ""),
			"%v",
			[]string{`^code=Decode: wrapped`},
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			gotString := fmt.Sprintf(test.verb, test.err)
			gotLines := strings.Split(gotString, "\n")
			if got, want := len(gotLines), len(test.want); got != want {
				t.Fatalf("got %d lines, want %d. got:\n%s", got, want, gotString)
			}
			for j, gl := range gotLines {
				matched, err := regexp.MatchString(test.want[j], gl)
				if err != nil {
					t.Fatal(err)
				}
				if !matched {
					t.Fatalf("line #%d: got %q, which doesn't match %q", j, gl, test.want[j])
				}
			}
		})
	}
}

func TestError(t *testing.T) {
	// Check that err.Error() == fmt.Sprintf("%s", err)
	for _, err := range []*Error{
		New(Config, nil, 1, "message"),
		New(Decode, errors.New("wrapped"), 1, "message"),
		New(Decode, errors.New("wrapped"), 1, ""),
	} {
		got := err.Error()
		want := fmt.Sprint(err)
		if got != want {
			t.Errorf("%v: got %q, want %q", err, got, want)
		}
	}
}

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func TestTransportCode(t *testing.T) {
	for _, test := range []struct {
		err  error
		want ErrorCode
	}{
		{nil, OK},
		{context.DeadlineExceeded, Timeout},
		{context.Canceled, Canceled},
		{fmt.Errorf("dial: %w", context.DeadlineExceeded), Timeout},
		{fakeNetError{timeout: true}, Timeout},
		{&net.OpError{Op: "read", Err: errors.New("connection reset")}, Transfer},
		{errors.New("broken pipe"), Transfer},
	} {
		if got := TransportCode(test.err); got != test.want {
			t.Errorf("TransportCode(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}
