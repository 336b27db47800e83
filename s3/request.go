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

package s3

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gos3.dev/internal/otel"
	"gos3.dev/internal/s3err"
	"gos3.dev/internal/sigv4"
	"gos3.dev/s3errors"
)

// maxErrorBody bounds how much of a failed response is read looking for
// the XML error document.
const maxErrorBody = 64 << 10

// request describes one wire operation against the bucket.
type request struct {
	method  string
	key     string      // object key; empty for bucket- and service-level calls
	query   url.Values  // subresource and operation parameters
	headers http.Header // operation headers, set verbatim before signing
	body    io.Reader
	length  int64  // declared body length; < 0 sends chunked
	hash    string // x-amz-content-sha256 value; empty means empty-body hash
	stream  bool   // exempt from the bucket timeout
	probe   bool   // a 404 response is an answer, not an error
}

// resolveURL builds the request URL for key, applying the addressing
// style. Virtual-hosted addressing prefixes the bucket to the endpoint
// host; path addressing prefixes it to the path. When the endpoint
// already names the bucket, in host or path, it is not applied again.
func (b *Bucket) resolveURL(key string, query url.Values) *url.URL {
	host := b.region.Host()
	prefix := b.region.BasePath()

	bucketInHost := b.name != "" && strings.HasPrefix(host, b.name+".")
	bucketInPath := b.name != "" && (prefix == b.name || strings.HasSuffix(prefix, "/"+b.name))

	switch {
	case b.name == "" || bucketInHost || bucketInPath:
		// Already addressed, or a service-level request.
	case b.pathStyle:
		if prefix == "" {
			prefix = b.name
		} else {
			prefix += "/" + b.name
		}
	default:
		host = b.name + "." + host
	}

	var parts []string
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if key != "" {
		parts = append(parts, key)
	}
	encoded := make([]string, len(parts))
	for i, part := range parts {
		encoded[i] = sigv4.EncodePath(part)
	}

	u := &url.URL{
		Scheme:  b.region.Scheme(),
		Host:    host,
		Path:    "/" + strings.Join(parts, "/"),
		RawPath: "/" + strings.Join(encoded, "/"),
	}

	merged := url.Values{}
	for name, values := range query {
		merged[name] = values
	}
	for name, values := range b.extraQuery {
		for _, v := range values {
			merged.Add(name, v)
		}
	}
	if len(merged) > 0 {
		u.RawQuery = sigv4.CanonicalQuery(merged)
	}
	return u
}

// do builds, signs and sends r, then interprets the response status.
// On success the caller owns resp.Body. Failure responses are consumed
// and closed; with r.probe set a 404 is returned as-is for the caller
// to inspect.
func (b *Bucket) do(ctx context.Context, r request) (*http.Response, error) {
	req, err := b.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	hc := b.hc
	if r.stream {
		hc = b.shc
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, s3err.New(s3err.TransportCode(err), err, 2, fmt.Sprintf("%s %s", r.method, req.URL.Path))
	}
	if r.probe && resp.StatusCode == http.StatusNotFound {
		return resp, nil
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (b *Bucket) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := b.resolveURL(r.key, r.query)
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, s3err.New(s3err.Config, err, 2, "building request")
	}
	if r.body != nil {
		req.ContentLength = r.length
	}
	for name, values := range b.extraHeaders {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	for name, values := range r.headers {
		req.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	// The header set is frozen here; signing covers exactly what is sent.
	if !b.creds.IsAnonymous() {
		hash := r.hash
		if hash == "" {
			hash = sigv4.EmptyPayloadHash
		}
		b.signer().SignHeader(req, hash, time.Now())
	}
	return req, nil
}

func (b *Bucket) signer() *sigv4.Signer {
	return &sigv4.Signer{
		AccessKey:    b.creds.AccessKey(),
		SecretKey:    b.creds.SecretKey(),
		SessionToken: b.creds.SessionToken(),
		Region:       b.region.Name(),
	}
}

// checkResponse returns nil for a 2xx response. Anything else is
// consumed and classified: a parseable S3 error document yields a
// Service error carrying the provider's code, message and request id,
// everything else an HTTP error with the status alone.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var xe xmlError
	if err := xml.Unmarshal(body, &xe); err == nil && xe.Code != "" {
		return s3err.NewService(resp.StatusCode, xe.Code, xe.Message, xe.RequestID, 2)
	}
	return s3err.NewHTTP(resp.StatusCode, 2)
}

// drainClose discards the rest of a response body and closes it so the
// underlying connection can be reused.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// startOp opens the operation span and returns the instrumented context
// together with the completion func recording latency, call count and
// final status.
func (b *Bucket) startOp(ctx context.Context, method string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := b.tracer.Start(ctx, method)
	provider := b.region.Host()
	return ctx, func(err error) {
		status := s3errors.Code(err).String()
		otel.RecordLatency(ctx, metrics.Latency, method, provider, status, time.Since(start))
		otel.RecordCount(ctx, metrics.CompletedCalls, method, provider, status, 1)
		b.tracer.End(span, err)
	}
}

// countingReader counts the bytes drawn through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ObjectReader streams one object body. It implements io.ReadCloser;
// Close must be called, even after a read error, to release the
// underlying connection.
type ObjectReader struct {
	// ContentLength is the object size in bytes, or -1 when unknown.
	ContentLength int64
	ContentType   string
	ETag          string
	LastModified  time.Time

	body    io.ReadCloser
	end     func(error)
	record  func(int64)
	n       int64
	readErr error
	closed  bool
}

func (r *ObjectReader) Read(p []byte) (int, error) {
	n, err := r.body.Read(p)
	r.n += int64(n)
	if err != nil && err != io.EOF {
		r.readErr = s3err.New(s3err.TransportCode(err), err, 1, "reading object body")
		return n, r.readErr
	}
	return n, err
}

// Close releases the connection. It is idempotent.
func (r *ObjectReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.body.Close()
	r.record(r.n)
	r.end(r.readErr)
	if err != nil {
		return s3err.New(s3err.Transfer, err, 1, "closing object body")
	}
	return nil
}
