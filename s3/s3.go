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

// Package s3 provides a client for the S3 wire protocol, usable against
// Amazon S3 and S3-compatible providers such as MinIO, Backblaze B2,
// Wasabi, Yandex Object Storage, Cloudflare R2, Google Cloud Storage
// and DigitalOcean Spaces.
//
// A Bucket value is the handle for all operations. It pairs a bucket
// name with a resolved region endpoint and credentials:
//
//	reg, err := region.Parse("eu-central-1")
//	...
//	b, err := s3.New("my-bucket", reg, credentials.New(ak, sk), nil)
//	...
//	err = b.PutObject(ctx, "hello.txt", []byte("hello"))
//
// # URLs
//
// OpenBucket constructs a Bucket from a URL of the form
//
//	s3://my-bucket?region=us-east-1
//
// See OpenBucket for the supported query parameters.
//
// # Addressing
//
// By default requests use virtual-hosted addressing, where the bucket
// name becomes a subdomain of the endpoint: https://my-bucket.s3.
// eu-central-1.amazonaws.com/key. Providers that do not resolve bucket
// subdomains (MinIO without wildcard DNS, some proxies) need path
// addressing, https://endpoint/my-bucket/key, enabled with SetPathStyle
// or WithPathStyle. When a custom endpoint already carries the bucket in
// its host or path, the bucket is not applied a second time.
//
// # Concurrency
//
// A Bucket is safe for concurrent use once configured. The Set*
// mutators and the extra header and query maps are not synchronized;
// finish configuration before sharing the value, or use the With*
// variants, which return configured copies.
//
// # Errors
//
// Errors carry a code classifying the failure; use s3errors.Code to
// dispatch on it. Errors returned by the provider keep the S3 error
// code, message and request id, available through s3errors.ServiceCode
// and friends.
package s3

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gos3.dev/credentials"
	"gos3.dev/internal/otel"
	"gos3.dev/internal/s3err"
	"gos3.dev/internal/useragent"
	"gos3.dev/region"
)

// DefaultTimeout bounds buffered operations when Options.Timeout is not
// set. Streaming operations are exempt; their lifetime belongs to the
// caller's context.
const DefaultTimeout = 60 * time.Second

// DefaultContentType is applied to uploads that do not declare one.
const DefaultContentType = "application/octet-stream"

// Options configures a Bucket beyond its required identity.
type Options struct {
	// HTTPClient is used for all requests when set. The caller then owns
	// connection pooling, TLS configuration and timeouts; Timeout and
	// InsecureSkipVerify below are ignored.
	HTTPClient *http.Client

	// Timeout bounds each buffered operation, response body included.
	// Zero means DefaultTimeout; negative disables the bound.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification on the
	// built-in transport. For local development servers only.
	InsecureSkipVerify bool
}

// Bucket is a handle to one bucket at one provider. The zero value is
// not usable; construct with New or OpenBucket.
type Bucket struct {
	name   string
	region region.Region
	creds  credentials.Credentials

	pathStyle    bool
	extraHeaders http.Header
	extraQuery   url.Values

	timeout time.Duration
	hc      *http.Client // buffered operations, carries timeout
	shc     *http.Client // streaming operations, no overall timeout

	tracer *otel.Tracer
}

var metrics = newMetrics()

func newMetrics() *otel.MetricSet {
	ms, err := otel.NewMetricSet(pkgName)
	if err != nil {
		return &otel.MetricSet{}
	}
	return ms
}

const pkgName = "gos3/s3"

// New returns a Bucket for name in r, authenticating with creds. opts
// may be nil. The bucket name must satisfy the S3 naming rules for
// virtual-hosted addressing: 3-63 characters of lowercase letters,
// digits, dots and hyphens, starting and ending with a letter or digit.
func New(name string, r region.Region, creds credentials.Credentials, opts *Options) (*Bucket, error) {
	if err := validateBucketName(name); err != nil {
		return nil, err
	}
	if r.IsZero() {
		return nil, s3err.Newf(s3err.Config, nil, "open bucket %s: region has no endpoint", name)
	}
	b := newBucket(name, r, creds, opts)
	return b, nil
}

func newBucket(name string, r region.Region, creds credentials.Credentials, opts *Options) *Bucket {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < 0:
		timeout = 0
	}

	b := &Bucket{
		name:    name,
		region:  r,
		creds:   creds,
		timeout: timeout,
	}
	if opts.HTTPClient != nil {
		b.hc = opts.HTTPClient
		b.shc = opts.HTTPClient
	} else {
		transport := http.DefaultTransport
		if opts.InsecureSkipVerify {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			transport = t
		}
		transport = useragent.Transport(transport)
		b.hc = &http.Client{Transport: transport, Timeout: timeout}
		b.shc = &http.Client{Transport: transport}
	}

	b.tracer = otel.NewTracer(pkgName, r.Host())
	b.tracer.Bucket = name
	return b
}

// validateBucketName enforces the subset of bucket names that are valid
// in both addressing styles.
func validateBucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return s3err.Newf(s3err.Config, nil, "invalid bucket name %q: must be 3-63 characters", name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' || c == '.':
			if i == 0 || i == len(name)-1 {
				return s3err.Newf(s3err.Config, nil, "invalid bucket name %q: must start and end with a letter or digit", name)
			}
		default:
			return s3err.Newf(s3err.Config, nil, "invalid bucket name %q: only lowercase letters, digits, '.' and '-' are allowed", name)
		}
	}
	return nil
}

// Name returns the bucket name.
func (b *Bucket) Name() string { return b.name }

// Region returns the region the bucket was constructed with.
func (b *Bucket) Region() region.Region { return b.region }

// SetPathStyle switches between path addressing (endpoint/bucket/key)
// and the default virtual-hosted addressing (bucket.endpoint/key).
func (b *Bucket) SetPathStyle(pathStyle bool) { b.pathStyle = pathStyle }

// WithPathStyle returns a copy of b using path addressing.
func (b *Bucket) WithPathStyle() *Bucket {
	clone := *b
	clone.pathStyle = true
	return &clone
}

// WithExtraHeaders returns a copy of b that adds h to every request
// before signing. Use for provider extensions such as x-amz-acl or
// x-amz-storage-class.
func (b *Bucket) WithExtraHeaders(h http.Header) *Bucket {
	clone := *b
	clone.extraHeaders = h
	return &clone
}

// WithExtraQuery returns a copy of b that adds q to every request URL
// before signing.
func (b *Bucket) WithExtraQuery(q url.Values) *Bucket {
	clone := *b
	clone.extraQuery = q
	return &clone
}

// WithTimeout returns a copy of b whose buffered operations are bounded
// by d instead of the construction-time timeout. d <= 0 removes the
// bound.
func (b *Bucket) WithTimeout(d time.Duration) *Bucket {
	clone := *b
	if d < 0 {
		d = 0
	}
	clone.timeout = d
	hc := *b.hc
	hc.Timeout = d
	clone.hc = &hc
	return &clone
}

// OpenBucket constructs a Bucket from a URL:
//
//	s3://bucket-name?region=eu-central-1
//
// Query parameters:
//   - region: a name accepted by region.Parse. Required unless endpoint
//     is given.
//   - endpoint: a custom endpoint host or URL for S3-compatible servers;
//     combined with region (or "custom") as the signing region name.
//   - path-style: "true" switches to path addressing.
//   - profile: load credentials from this shared-credentials profile
//     instead of the environment.
//   - anonymous: "true" sends unsigned requests.
//   - timeout: a time.Duration string bounding buffered operations.
//
// Unknown query parameters are an error, so misspellings fail loudly
// rather than being ignored.
func OpenBucket(ctx context.Context, urlstr string) (*Bucket, error) {
	u, err := url.Parse(urlstr)
	if err != nil {
		return nil, s3err.New(s3err.Config, err, 1, fmt.Sprintf("open bucket %s: parsing URL", urlstr))
	}
	if u.Scheme != "s3" {
		return nil, s3err.Newf(s3err.Config, nil, "open bucket %s: unsupported scheme %q", urlstr, u.Scheme)
	}

	q := u.Query()
	opts := &Options{}
	var (
		regionName = consume(q, "region")
		endpoint   = consume(q, "endpoint")
		pathStyle  = consume(q, "path-style")
		profile    = consume(q, "profile")
		anonymous  = consume(q, "anonymous")
		timeout    = consume(q, "timeout")
	)
	for param := range q {
		return nil, s3err.Newf(s3err.Config, nil, "open bucket %s: unknown query parameter %q", urlstr, param)
	}

	var r region.Region
	switch {
	case endpoint != "":
		name := regionName
		if name == "" {
			name = "custom"
		}
		r, err = region.Custom(name, endpoint)
	case regionName != "":
		r, err = region.Parse(regionName)
	default:
		err = s3err.Newf(s3err.Config, nil, "open bucket %s: region or endpoint is required", urlstr)
	}
	if err != nil {
		return nil, err
	}

	var creds credentials.Credentials
	switch {
	case anonymous == "true":
		creds = credentials.Anonymous()
	case profile != "":
		creds, err = credentials.FromProfile(profile)
	default:
		creds, err = credentials.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, s3err.New(s3err.Config, err, 1, fmt.Sprintf("open bucket %s: invalid timeout", urlstr))
		}
		opts.Timeout = d
	}

	b, err := New(u.Host, r, creds, opts)
	if err != nil {
		return nil, err
	}
	if pathStyle != "" {
		v, err := strconv.ParseBool(pathStyle)
		if err != nil {
			return nil, s3err.New(s3err.Config, err, 1, fmt.Sprintf("open bucket %s: invalid path-style", urlstr))
		}
		b.SetPathStyle(v)
	}
	return b, nil
}

// consume removes param from q and returns its first value.
func consume(q url.Values, param string) string {
	v := q.Get(param)
	q.Del(param)
	return v
}
