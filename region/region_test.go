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

package region

import (
	"testing"

	"gos3.dev/s3errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantHost string
		wantErr  bool
	}{
		{"us-east-1", "us-east-1", "s3.us-east-1.amazonaws.com", false},
		{"eu-central-1", "eu-central-1", "s3.eu-central-1.amazonaws.com", false},
		{" eu-west-2 ", "eu-west-2", "s3.eu-west-2.amazonaws.com", false},
		{"cn-north-1", "cn-north-1", "s3.cn-north-1.amazonaws.com.cn", false},
		{"nyc3", "nyc3", "nyc3.digitaloceanspaces.com", false},
		{"ru-central1", "ru-central1", "storage.yandexcloud.net", false},
		{"wa-eu-central-1", "eu-central-1", "s3.eu-central-1.wasabisys.com", false},
		{"", "", "", true},
		{"wa-", "", "", true},
		{"moon-base-1", "", "", true},
	}
	for _, test := range tests {
		r, err := Parse(test.in)
		if test.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): got nil error, want Config error", test.in)
			} else if got := s3errors.Code(err); got != s3errors.Config {
				t.Errorf("Parse(%q): error code = %v, want Config", test.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", test.in, err)
			continue
		}
		if r.Name() != test.wantName || r.Host() != test.wantHost {
			t.Errorf("Parse(%q) = {%s %s}, want {%s %s}", test.in, r.Name(), r.Host(), test.wantName, test.wantHost)
		}
		if r.Scheme() != "https" {
			t.Errorf("Parse(%q): scheme = %q, want https", test.in, r.Scheme())
		}
	}
}

func TestProviderConstructors(t *testing.T) {
	tests := []struct {
		r        Region
		wantName string
		wantHost string
	}{
		{Wasabi("us-east-1"), "us-east-1", "s3.us-east-1.wasabisys.com"},
		{Backblaze("us-west-004"), "us-west-004", "s3.us-west-004.backblazeb2.com"},
		{Yandex(), "ru-central1", "storage.yandexcloud.net"},
		{GCS(), "us-east-1", "storage.googleapis.com"},
		{R2("0a1b2c3d"), "auto", "0a1b2c3d.r2.cloudflarestorage.com"},
		{DigitalOcean("fra1"), "fra1", "fra1.digitaloceanspaces.com"},
	}
	for _, test := range tests {
		if test.r.Name() != test.wantName || test.r.Host() != test.wantHost {
			t.Errorf("got {%s %s}, want {%s %s}", test.r.Name(), test.r.Host(), test.wantName, test.wantHost)
		}
	}
}

func TestCustom(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		wantScheme string
		wantHost   string
		wantPath   string
		wantErr    bool
	}{
		{"eu-central-1", "minio.example.com", "https", "minio.example.com", "", false},
		{"eu-central-1", "http://localhost:9000", "http", "localhost:9000", "", false},
		{"eu-central-1", "https://storage.example.com:8443/s3", "https", "storage.example.com:8443", "s3", false},
		{"eu-central-1", "localhost:9000", "https", "localhost:9000", "", false},
		{"eu-central-1", "", "", "", "", true},
		{"eu-central-1", "ftp://example.com", "", "", "", true},
	}
	for _, test := range tests {
		r, err := Custom(test.name, test.endpoint)
		if test.wantErr {
			if err == nil {
				t.Errorf("Custom(%q): got nil error, want error", test.endpoint)
			} else if got := s3errors.Code(err); got != s3errors.Config {
				t.Errorf("Custom(%q): error code = %v, want Config", test.endpoint, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Custom(%q): %v", test.endpoint, err)
			continue
		}
		if r.Scheme() != test.wantScheme || r.Host() != test.wantHost || r.BasePath() != test.wantPath {
			t.Errorf("Custom(%q) = {%s %s %s}, want {%s %s %s}",
				test.endpoint, r.Scheme(), r.Host(), r.BasePath(), test.wantScheme, test.wantHost, test.wantPath)
		}
	}
}

func TestEndpoint(t *testing.T) {
	r, err := Parse("us-west-2")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.Endpoint(), "https://s3.us-west-2.amazonaws.com"; got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
	c := MustCustom("dev", "http://localhost:9000")
	if got, want := c.Endpoint(), "http://localhost:9000"; got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
	if r.IsZero() {
		t.Error("IsZero() = true for a resolved region")
	}
	var zero Region
	if !zero.IsZero() {
		t.Error("IsZero() = false for the zero Region")
	}
}
