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

package s3test

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestSeededObject(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.PutObject("b-one", "dir/hello.txt", []byte("hi"))

	resp, err := http.Get(srv.URL() + "/b-one/dir/hello.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hi" {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("no ETag header")
	}
	if resp.Header.Get("x-amz-request-id") == "" {
		t.Error("no request id header")
	}
}

func TestMissingKeyError(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.CreateBucket("b-one")

	resp, err := http.Get(srv.URL() + "/b-one/absent")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<Error>", "<Code>NoSuchKey</Code>", "<RequestId>"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("error document missing %s:\n%s", want, body)
		}
	}
}

func TestUnsignedRequestRejected(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.SetCredentials("AKIDEXAMPLE", "secret", "test-1")
	srv.PutObject("b-one", "k", []byte("x"))

	resp, err := http.Get(srv.URL() + "/b-one/k")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestRangeRequests(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.PutObject("b-one", "digits", []byte("0123456789"))

	tests := []struct {
		header     string
		wantStatus int
		wantBody   string
	}{
		{"bytes=0-3", http.StatusPartialContent, "0123"},
		{"bytes=7-", http.StatusPartialContent, "789"},
		{"bytes=8-99", http.StatusPartialContent, "89"},
		{"bytes=20-", http.StatusRequestedRangeNotSatisfiable, ""},
	}
	for _, test := range tests {
		req, err := http.NewRequest(http.MethodGet, srv.URL()+"/b-one/digits", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Range", test.header)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != test.wantStatus {
			t.Errorf("Range %q: status = %d, want %d", test.header, resp.StatusCode, test.wantStatus)
			continue
		}
		if test.wantBody != "" && string(body) != test.wantBody {
			t.Errorf("Range %q: body = %q, want %q", test.header, body, test.wantBody)
		}
	}
}
