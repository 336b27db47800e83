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
	"net/http"
	"net/url"
	"time"

	"gos3.dev/internal/s3err"
)

// PresignGet returns a URL that grants GET access to key for expiry.
// extraQuery parameters (response-content-disposition and friends) are
// included and signed. The URL works from any HTTP client with no
// further headers.
func (b *Bucket) PresignGet(key string, expiry time.Duration, extraQuery url.Values) (string, error) {
	return b.presign(http.MethodGet, key, expiry, extraQuery, nil)
}

// PresignPut returns a URL that grants PUT access to key for expiry.
// extraHeaders, when non-nil, must be sent verbatim by whoever uses the
// URL; their names are part of the signature.
func (b *Bucket) PresignPut(key string, expiry time.Duration, extraHeaders http.Header) (string, error) {
	return b.presign(http.MethodPut, key, expiry, nil, extraHeaders)
}

// PresignDelete returns a URL that grants DELETE access to key for
// expiry.
func (b *Bucket) PresignDelete(key string, expiry time.Duration) (string, error) {
	return b.presign(http.MethodDelete, key, expiry, nil, nil)
}

func (b *Bucket) presign(method, key string, expiry time.Duration, extraQuery url.Values, extraHeaders http.Header) (string, error) {
	if b.creds.IsAnonymous() {
		return "", s3err.Newf(s3err.Config, nil, "presigning requires credentials")
	}

	var headers map[string]string
	if len(extraHeaders) > 0 {
		headers = make(map[string]string, len(extraHeaders))
		for name, values := range extraHeaders {
			if len(values) > 0 {
				headers[name] = values[0]
			}
		}
	}

	u := b.resolveURL(key, extraQuery)
	signed, err := b.signer().Presign(method, u, headers, int64(expiry/time.Second), time.Now())
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}
