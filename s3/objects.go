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
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gos3.dev/internal/otel"
	"gos3.dev/internal/s3err"
	"gos3.dev/internal/sigv4"
)

// GetObject downloads an object fully into memory. For large objects
// prefer GetObjectStream or GetObjectToWriter.
func (b *Bucket) GetObject(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := b.startOp(ctx, "GetObject")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodGet, key: key})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s3err.New(s3err.TransportCode(err), err, 1, "reading object body")
	}
	otel.RecordBytesRead(ctx, metrics.BytesRead, b.region.Host(), int64(len(data)))
	return data, nil
}

// GetObjectRange downloads the byte range [start, end] of an object,
// both bounds inclusive. A negative end requests everything from start
// to the end of the object.
func (b *Bucket) GetObjectRange(ctx context.Context, key string, start, end int64) (_ []byte, err error) {
	ctx, done := b.startOp(ctx, "GetObjectRange")
	defer func() { done(err) }()

	if start < 0 {
		return nil, s3err.Newf(s3err.Config, nil, "negative range start %d", start)
	}
	rangeValue := fmt.Sprintf("bytes=%d-", start)
	if end >= 0 {
		if end < start {
			return nil, s3err.Newf(s3err.Config, nil, "range end %d before start %d", end, start)
		}
		rangeValue = fmt.Sprintf("bytes=%d-%d", start, end)
	}

	resp, err := b.do(ctx, request{
		method:  http.MethodGet,
		key:     key,
		headers: http.Header{"Range": {rangeValue}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s3err.New(s3err.TransportCode(err), err, 1, "reading object body")
	}
	otel.RecordBytesRead(ctx, metrics.BytesRead, b.region.Host(), int64(len(data)))
	return data, nil
}

// GetObjectStream opens an object for streaming reads. The returned
// reader is not bounded by the bucket timeout; cancel ctx to abandon
// the transfer. The operation's span stays open until Close.
func (b *Bucket) GetObjectStream(ctx context.Context, key string) (*ObjectReader, error) {
	ctx, end := b.startOp(ctx, "GetObjectStream")

	resp, err := b.do(ctx, request{method: http.MethodGet, key: key, stream: true})
	if err != nil {
		end(err)
		return nil, err
	}

	lastModified, _ := http.ParseTime(resp.Header.Get("Last-Modified"))
	provider := b.region.Host()
	return &ObjectReader{
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
		ETag:          resp.Header.Get("ETag"),
		LastModified:  lastModified,
		body:          resp.Body,
		end:           end,
		record: func(n int64) {
			otel.RecordBytesRead(ctx, metrics.BytesRead, provider, n)
		},
	}, nil
}

// GetObjectToWriter streams an object into w and reports the number of
// bytes written. Like GetObjectStream it is exempt from the bucket
// timeout.
func (b *Bucket) GetObjectToWriter(ctx context.Context, key string, w io.Writer) (n int64, err error) {
	ctx, end := b.startOp(ctx, "GetObjectToWriter")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodGet, key: key, stream: true})
	if err != nil {
		return 0, err
	}
	defer drainClose(resp.Body)
	n, err = io.Copy(w, resp.Body)
	otel.RecordBytesRead(ctx, metrics.BytesRead, b.region.Host(), n)
	if err != nil {
		return n, s3err.New(s3err.TransportCode(err), err, 1, "copying object body")
	}
	return n, nil
}

// PutObject uploads data under key with the default content type.
func (b *Bucket) PutObject(ctx context.Context, key string, data []byte) error {
	return b.PutObjectWithContentType(ctx, key, data, DefaultContentType)
}

// PutObjectWithContentType uploads data under key. The payload is
// hashed and signed; use PutObjectStream to upload without buffering.
func (b *Bucket) PutObjectWithContentType(ctx context.Context, key string, data []byte, contentType string) (err error) {
	ctx, end := b.startOp(ctx, "PutObject")
	defer func() { end(err) }()

	if contentType == "" {
		contentType = DefaultContentType
	}
	resp, err := b.do(ctx, request{
		method:  http.MethodPut,
		key:     key,
		headers: http.Header{"Content-Type": {contentType}},
		body:    bytes.NewReader(data),
		length:  int64(len(data)),
		hash:    sigv4.PayloadHash(data),
	})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	otel.RecordBytesWritten(ctx, metrics.BytesWritten, b.region.Host(), int64(len(data)))
	return nil
}

// PutObjectStream uploads body under key without buffering it. length
// declares the body size; the upload fails with a Transfer error when
// body ends early, and bytes past the declared length are not read. A
// negative length uses chunked transfer encoding and reads to EOF.
//
// The payload is declared UNSIGNED-PAYLOAD: the signature covers the
// request, not the body bytes.
func (b *Bucket) PutObjectStream(ctx context.Context, key string, body io.Reader, length int64) error {
	return b.PutObjectStreamWithContentType(ctx, key, body, length, DefaultContentType)
}

// PutObjectStreamWithContentType is PutObjectStream with an explicit
// content type.
func (b *Bucket) PutObjectStreamWithContentType(ctx context.Context, key string, body io.Reader, length int64, contentType string) (err error) {
	ctx, end := b.startOp(ctx, "PutObjectStream")
	defer func() { end(err) }()

	if contentType == "" {
		contentType = DefaultContentType
	}
	cr := &countingReader{r: body}
	var rd io.Reader = cr
	if length >= 0 {
		// Bound the reader ourselves; otherwise the transport drains an
		// over-long body to the end and fails the request.
		rd = io.LimitReader(cr, length)
	}
	resp, err := b.do(ctx, request{
		method:  http.MethodPut,
		key:     key,
		headers: http.Header{"Content-Type": {contentType}},
		body:    rd,
		length:  length,
		hash:    sigv4.UnsignedPayload,
		stream:  true,
	})
	if err != nil {
		if length >= 0 && cr.n < length {
			return s3err.Newf(s3err.Transfer, err, "object body ended after %d of %d declared bytes", cr.n, length)
		}
		return err
	}
	drainClose(resp.Body)
	otel.RecordBytesWritten(ctx, metrics.BytesWritten, b.region.Host(), cr.n)
	return nil
}

// HeadObject fetches an object's metadata without its body.
func (b *Bucket) HeadObject(ctx context.Context, key string) (_ *HeadObjectResult, err error) {
	ctx, end := b.startOp(ctx, "HeadObject")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodHead, key: key})
	if err != nil {
		return nil, err
	}
	drainClose(resp.Body)

	lastModified, _ := http.ParseTime(resp.Header.Get("Last-Modified"))
	result := &HeadObjectResult{
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
		ETag:          resp.Header.Get("ETag"),
		LastModified:  lastModified,
	}
	for name, values := range resp.Header {
		lower := strings.ToLower(name)
		if rest, ok := strings.CutPrefix(lower, "x-amz-meta-"); ok && len(values) > 0 {
			if result.Metadata == nil {
				result.Metadata = map[string]string{}
			}
			result.Metadata[rest] = values[0]
		}
	}
	return result, nil
}

// ObjectExists reports whether key exists. A 404 answers false with no
// error; any other failure is returned.
func (b *Bucket) ObjectExists(ctx context.Context, key string) (_ bool, err error) {
	ctx, end := b.startOp(ctx, "ObjectExists")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodHead, key: key, probe: true})
	if err != nil {
		return false, err
	}
	drainClose(resp.Body)
	return resp.StatusCode != http.StatusNotFound, nil
}

// DeleteObject removes key. Deleting an absent key succeeds; S3 delete
// is idempotent.
func (b *Bucket) DeleteObject(ctx context.Context, key string) (err error) {
	ctx, end := b.startOp(ctx, "DeleteObject")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodDelete, key: key})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}

// CopyObject copies srcKey to dstKey within the bucket, server side.
func (b *Bucket) CopyObject(ctx context.Context, srcKey, dstKey string) (err error) {
	ctx, end := b.startOp(ctx, "CopyObject")
	defer func() { end(err) }()

	source := "/" + b.name + "/" + sigv4.EncodePath(srcKey)
	resp, err := b.do(ctx, request{
		method:  http.MethodPut,
		key:     dstKey,
		headers: http.Header{"X-Amz-Copy-Source": {source}},
	})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}

// PutObjectTagging replaces the tag set of key.
func (b *Bucket) PutObjectTagging(ctx context.Context, key string, tags []Tag) (err error) {
	ctx, end := b.startOp(ctx, "PutObjectTagging")
	defer func() { end(err) }()

	body, err := xml.Marshal(tagging{Tags: tags})
	if err != nil {
		return s3err.New(s3err.Config, err, 1, "encoding tag set")
	}
	resp, err := b.do(ctx, request{
		method:  http.MethodPut,
		key:     key,
		query:   url.Values{"tagging": {""}},
		headers: http.Header{"Content-Type": {"application/xml"}},
		body:    bytes.NewReader(body),
		length:  int64(len(body)),
		hash:    sigv4.PayloadHash(body),
	})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}

// GetObjectTagging returns the tag set of key. An object with no tags
// yields an empty slice.
func (b *Bucket) GetObjectTagging(ctx context.Context, key string) (_ []Tag, err error) {
	ctx, end := b.startOp(ctx, "GetObjectTagging")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{
		method: http.MethodGet,
		key:    key,
		query:  url.Values{"tagging": {""}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var doc tagging
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, s3err.New(s3err.Decode, err, 1, "unmarshaling tag set")
	}
	return doc.Tags, nil
}

// DeleteObjectTagging removes all tags from key.
func (b *Bucket) DeleteObjectTagging(ctx context.Context, key string) (err error) {
	ctx, end := b.startOp(ctx, "DeleteObjectTagging")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{
		method: http.MethodDelete,
		key:    key,
		query:  url.Values{"tagging": {""}},
	})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}
