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

// Package region resolves logical S3 region identifiers to concrete
// endpoints.
//
// A Region is an immutable value holding the region name used in signature
// scopes, the endpoint host requests are addressed to, and the URL scheme.
// Use Parse for well-known region codes (AWS, DigitalOcean Spaces, Yandex
// Object Storage), the provider constructors (Wasabi, Backblaze, GCS, R2)
// for providers whose codes collide with or differ from AWS's, and Custom
// for anything else, including local MinIO deployments:
//
//	r, err := region.Parse("eu-central-1")
//	r, err := region.Custom("eu-central-1", "http://localhost:9000")
package region

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gos3.dev/internal/s3err"
)

// MaxPresignExpiry is the longest validity window a presigned URL may carry.
// Every provider this package knows about enforces the same seven day cap.
const MaxPresignExpiry = 7 * 24 * time.Hour

// Region identifies a provider endpoint and the region name signatures are
// scoped to. The zero Region is invalid.
type Region struct {
	name     string
	host     string // host or host:port, no scheme
	basePath string // rarely set; endpoint path prefix with no surrounding slashes
	scheme   string
}

// Name returns the region name used in signature scopes, e.g. "us-east-1".
func (r Region) Name() string { return r.name }

// Scheme returns "http" or "https".
func (r Region) Scheme() string { return r.scheme }

// Host returns the endpoint host, including a port when one was configured.
func (r Region) Host() string { return r.host }

// BasePath returns the endpoint's path prefix, without surrounding slashes.
// It is empty except for custom endpoints configured with one.
func (r Region) BasePath() string { return r.basePath }

// Endpoint returns the full endpoint URL, e.g. "https://s3.us-east-1.amazonaws.com".
func (r Region) Endpoint() string {
	if r.basePath != "" {
		return r.scheme + "://" + r.host + "/" + r.basePath
	}
	return r.scheme + "://" + r.host
}

// IsZero reports whether r is the invalid zero value.
func (r Region) IsZero() bool { return r.host == "" }

func (r Region) String() string { return r.name }

// awsRegions is the set of AWS region codes Parse recognizes. Hosts follow
// the s3.{region}.amazonaws.com convention; the China partition carries the
// .cn suffix.
var awsRegions = map[string]bool{
	"af-south-1":     true,
	"ap-east-1":      true,
	"ap-northeast-1": true,
	"ap-northeast-2": true,
	"ap-northeast-3": true,
	"ap-south-1":     true,
	"ap-south-2":     true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
	"ap-southeast-3": true,
	"ap-southeast-4": true,
	"ca-central-1":   true,
	"eu-central-1":   true,
	"eu-central-2":   true,
	"eu-north-1":     true,
	"eu-south-1":     true,
	"eu-south-2":     true,
	"eu-west-1":      true,
	"eu-west-2":      true,
	"eu-west-3":      true,
	"il-central-1":   true,
	"me-central-1":   true,
	"me-south-1":     true,
	"sa-east-1":      true,
	"us-east-1":      true,
	"us-east-2":      true,
	"us-gov-east-1":  true,
	"us-gov-west-1":  true,
	"us-west-1":      true,
	"us-west-2":      true,
}

var cnRegions = map[string]bool{
	"cn-north-1":     true,
	"cn-northwest-1": true,
}

// digitalOceanSlugs maps DigitalOcean Spaces datacenter slugs, which do not
// collide with AWS region codes and so are accepted by Parse directly.
var digitalOceanSlugs = map[string]bool{
	"ams3": true,
	"blr1": true,
	"fra1": true,
	"nyc3": true,
	"sfo2": true,
	"sfo3": true,
	"sgp1": true,
	"syd1": true,
}

// Parse resolves a region code to a Region. It recognizes AWS region codes
// ("us-east-1"), DigitalOcean Spaces slugs ("nyc3") and the Yandex Object
// Storage region ("ru-central1"). Unrecognized codes are a Config error:
// providers not listed here need a provider constructor or Custom, so that a
// typo fails fast instead of producing a host that resolves nowhere.
func Parse(s string) (Region, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Region{}, s3err.New(s3err.Config, nil, 1, "region: empty region code")
	case awsRegions[s]:
		return Region{name: s, host: "s3." + s + ".amazonaws.com", scheme: "https"}, nil
	case cnRegions[s]:
		return Region{name: s, host: "s3." + s + ".amazonaws.com.cn", scheme: "https"}, nil
	case digitalOceanSlugs[s]:
		return DigitalOcean(s), nil
	case s == "ru-central1":
		return Yandex(), nil
	case strings.HasPrefix(s, "wa-") && len(s) > len("wa-"):
		// Wasabi region codes shadow AWS ones, so they carry a "wa-"
		// prefix: "wa-eu-central-1" is Wasabi's eu-central-1.
		return Wasabi(strings.TrimPrefix(s, "wa-")), nil
	}
	return Region{}, s3err.Newf(s3err.Config, nil, "region: unknown region code %q (use Custom for nonstandard endpoints)", s)
}

// DigitalOcean returns the Region for a DigitalOcean Spaces datacenter slug.
func DigitalOcean(slug string) Region {
	return Region{name: slug, host: slug + ".digitaloceanspaces.com", scheme: "https"}
}

// Wasabi returns the Region for a Wasabi region code, e.g. "us-east-1".
func Wasabi(code string) Region {
	return Region{name: code, host: "s3." + code + ".wasabisys.com", scheme: "https"}
}

// Backblaze returns the Region for a Backblaze B2 region code, e.g. "us-west-004".
func Backblaze(code string) Region {
	return Region{name: code, host: "s3." + code + ".backblazeb2.com", scheme: "https"}
}

// Yandex returns the Region for Yandex Object Storage.
func Yandex() Region {
	return Region{name: "ru-central1", host: "storage.yandexcloud.net", scheme: "https"}
}

// GCS returns the Region for Google Cloud Storage's S3-compatible endpoint.
// GCS does not implement ListObjectsV2; use the V1 listing calls against it.
func GCS() Region {
	return Region{name: "us-east-1", host: "storage.googleapis.com", scheme: "https"}
}

// R2 returns the Region for a Cloudflare R2 account. R2 ignores the region
// name in signatures as long as it is "auto".
func R2(accountID string) Region {
	return Region{name: "auto", host: accountID + ".r2.cloudflarestorage.com", scheme: "https"}
}

// Custom returns a Region for an arbitrary endpoint. name is the region
// name used in signature scopes. endpoint is a host, host:port, or URL; a
// "http://" scheme is preserved (local MinIO), anything else defaults to
// https. A path on the endpoint URL is kept as a prefix for path-style
// requests.
func Custom(name, endpoint string) (Region, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Region{}, s3err.New(s3err.Config, nil, 1, "region: empty custom endpoint")
	}
	scheme := "https"
	hostPath := endpoint
	if i := strings.Index(endpoint, "://"); i >= 0 {
		u, err := url.Parse(endpoint)
		if err != nil {
			return Region{}, s3err.Newf(s3err.Config, err, "region: invalid endpoint %q", endpoint)
		}
		switch u.Scheme {
		case "http", "https":
			scheme = u.Scheme
		default:
			return Region{}, s3err.Newf(s3err.Config, nil, "region: unsupported endpoint scheme %q", u.Scheme)
		}
		hostPath = u.Host
		if p := strings.Trim(u.Path, "/"); p != "" {
			hostPath += "/" + p
		}
	}
	host, basePath, _ := strings.Cut(hostPath, "/")
	if host == "" {
		return Region{}, s3err.Newf(s3err.Config, nil, "region: invalid endpoint %q", endpoint)
	}
	return Region{
		name:     name,
		host:     host,
		basePath: strings.Trim(basePath, "/"),
		scheme:   scheme,
	}, nil
}

// MustCustom is like Custom but panics on error. It simplifies variable
// initialization in tests and examples.
func MustCustom(name, endpoint string) Region {
	r, err := Custom(name, endpoint)
	if err != nil {
		panic(fmt.Sprintf("region.MustCustom(%q, %q): %v", name, endpoint, err))
	}
	return r
}
