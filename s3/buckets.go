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
	"net/http"
	"net/url"
	"strconv"

	"gos3.dev/credentials"
	"gos3.dev/internal/s3err"
	"gos3.dev/internal/sigv4"
	"gos3.dev/region"
)

// Create creates the bucket. Outside us-east-1 the request carries a
// CreateBucketConfiguration naming the region; us-east-1 rejects its own
// name as a location constraint, so there the body is empty.
func (b *Bucket) Create(ctx context.Context) error {
	return b.CreateWithACL(ctx, "")
}

// CreateWithACL creates the bucket with a canned ACL such as "private"
// or "public-read". An empty ACL leaves the header unset.
func (b *Bucket) CreateWithACL(ctx context.Context, cannedACL string) (err error) {
	ctx, end := b.startOp(ctx, "CreateBucket")
	defer func() { end(err) }()

	var body []byte
	if name := b.region.Name(); name != "" && name != "us-east-1" {
		body, err = xml.Marshal(createBucketConfiguration{LocationConstraint: name})
		if err != nil {
			return s3err.New(s3err.Config, err, 1, "encoding bucket configuration")
		}
	}

	r := request{method: http.MethodPut}
	if cannedACL != "" {
		r.headers = http.Header{"X-Amz-Acl": {cannedACL}}
	}
	if len(body) > 0 {
		r.body = bytes.NewReader(body)
		r.length = int64(len(body))
		r.hash = sigv4.PayloadHash(body)
	}

	resp, err := b.do(ctx, r)
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}

// Delete removes the bucket, which must be empty.
func (b *Bucket) Delete(ctx context.Context) (err error) {
	ctx, end := b.startOp(ctx, "DeleteBucket")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodDelete})
	if err != nil {
		return err
	}
	drainClose(resp.Body)
	return nil
}

// Exists reports whether the bucket exists under the account the
// credentials belong to, by membership in the account's bucket list.
func (b *Bucket) Exists(ctx context.Context) (_ bool, err error) {
	ctx, end := b.startOp(ctx, "BucketExists")
	defer func() { end(err) }()

	svc := *b
	svc.name = ""
	buckets, err := svc.listBuckets(ctx)
	if err != nil {
		return false, err
	}
	for _, info := range buckets {
		if info.Name == b.name {
			return true, nil
		}
	}
	return false, nil
}

// Location returns the region the bucket lives in. Providers answer an
// empty location for us-east-1; that is normalized to "us-east-1".
func (b *Bucket) Location(ctx context.Context) (_ string, err error) {
	ctx, end := b.startOp(ctx, "GetBucketLocation")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{
		method: http.MethodGet,
		query:  url.Values{"location": {""}},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var doc locationConstraint
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", s3err.New(s3err.Decode, err, 1, "unmarshaling bucket location")
	}
	if doc.Value == "" {
		return "us-east-1", nil
	}
	return doc.Value, nil
}

// ListBuckets lists the buckets owned by the account creds belong to.
func ListBuckets(ctx context.Context, r region.Region, creds credentials.Credentials, opts *Options) ([]BucketInfo, error) {
	if r.IsZero() {
		return nil, s3err.Newf(s3err.Config, nil, "list buckets: region has no endpoint")
	}
	svc := newBucket("", r, creds, opts)
	return svc.listBuckets(ctx)
}

func (b *Bucket) listBuckets(ctx context.Context) (_ []BucketInfo, err error) {
	ctx, end := b.startOp(ctx, "ListBuckets")
	defer func() { end(err) }()

	resp, err := b.do(ctx, request{method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var doc listAllMyBucketsResult
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, s3err.New(s3err.Decode, err, 1, "unmarshaling bucket list")
	}
	return doc.Buckets, nil
}

// ListPage fetches one page of a ListObjectsV2 listing. Empty prefix,
// delimiter, continuationToken and startAfter are omitted from the
// request; maxKeys <= 0 leaves the page size to the provider.
func (b *Bucket) ListPage(ctx context.Context, prefix, delimiter, continuationToken, startAfter string, maxKeys int) (_ *ListBucketResult, err error) {
	ctx, end := b.startOp(ctx, "ListObjectsV2")
	defer func() { end(err) }()

	query := url.Values{"list-type": {"2"}}
	setNonEmpty(query, "prefix", prefix)
	setNonEmpty(query, "delimiter", delimiter)
	setNonEmpty(query, "continuation-token", continuationToken)
	setNonEmpty(query, "start-after", startAfter)
	if maxKeys > 0 {
		query.Set("max-keys", strconv.Itoa(maxKeys))
	}
	return b.listPage(ctx, query)
}

// List drains a ListObjectsV2 listing, following continuation tokens
// until the final page, and returns all pages.
func (b *Bucket) List(ctx context.Context, prefix, delimiter string) (_ []ListBucketResult, err error) {
	ctx, end := b.startOp(ctx, "ListObjects")
	defer func() { end(err) }()

	var (
		pages []ListBucketResult
		token string
	)
	for {
		page, err := b.ListPage(ctx, prefix, delimiter, token, "", 0)
		if err != nil {
			return pages, err
		}
		pages = append(pages, *page)
		if !page.IsTruncated || page.NextContinuationToken == "" {
			return pages, nil
		}
		token = page.NextContinuationToken
	}
}

// ListPageV1 fetches one page using the original ListObjects protocol,
// for providers without V2 support such as Google Cloud Storage.
func (b *Bucket) ListPageV1(ctx context.Context, prefix, delimiter, marker string, maxKeys int) (_ *ListBucketResult, err error) {
	ctx, end := b.startOp(ctx, "ListObjectsV1")
	defer func() { end(err) }()

	query := url.Values{}
	setNonEmpty(query, "prefix", prefix)
	setNonEmpty(query, "delimiter", delimiter)
	setNonEmpty(query, "marker", marker)
	if maxKeys > 0 {
		query.Set("max-keys", strconv.Itoa(maxKeys))
	}
	return b.listPage(ctx, query)
}

// ListV1 drains a V1 listing. When a truncated page carries no
// NextMarker the last returned key becomes the next marker, as the V1
// protocol specifies for listings without a delimiter.
func (b *Bucket) ListV1(ctx context.Context, prefix, delimiter string) (_ []ListBucketResult, err error) {
	ctx, end := b.startOp(ctx, "ListObjectsAllV1")
	defer func() { end(err) }()

	var (
		pages  []ListBucketResult
		marker string
	)
	for {
		page, err := b.ListPageV1(ctx, prefix, delimiter, marker, 0)
		if err != nil {
			return pages, err
		}
		pages = append(pages, *page)
		if !page.IsTruncated {
			return pages, nil
		}
		marker = page.NextMarker
		if marker == "" {
			if len(page.Contents) == 0 {
				return pages, nil
			}
			marker = page.Contents[len(page.Contents)-1].Key
		}
	}
}

func (b *Bucket) listPage(ctx context.Context, query url.Values) (*ListBucketResult, error) {
	resp, err := b.do(ctx, request{method: http.MethodGet, query: query})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var page ListBucketResult
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, s3err.New(s3err.Decode, err, 2, "unmarshaling object listing")
	}
	return &page, nil
}

func setNonEmpty(q url.Values, name, value string) {
	if value != "" {
		q.Set(name, value)
	}
}
