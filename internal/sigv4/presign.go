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

package sigv4

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"gos3.dev/internal/s3err"
)

// MaxExpirySeconds is the longest lifetime a presigned URL may carry,
// seven days, the ceiling S3 itself enforces.
const MaxExpirySeconds = 7 * 24 * 60 * 60

// Presign signs a URL for query-based authentication and returns a copy
// of u with the complete X-Amz-* query set, signature included. method
// is the HTTP method the URL holder will use. extraHeaders lists
// headers, host excluded, that the holder must send verbatim; their
// names join the signed set. Query parameters already on u are signed
// too.
//
// expireSeconds must be in [1, MaxExpirySeconds]; anything else is a
// configuration error, not clamped. The payload is always declared
// UNSIGNED-PAYLOAD since the body is unknown at signing time.
func (s *Signer) Presign(method string, u *url.URL, extraHeaders map[string]string, expireSeconds int64, t time.Time) (*url.URL, error) {
	if expireSeconds < 1 || expireSeconds > MaxExpirySeconds {
		return nil, s3err.Newf(s3err.Config, nil, "presign expiry %ds out of range [1s, %ds]", expireSeconds, MaxExpirySeconds)
	}

	signedHeaders := []string{"host"}
	for name := range extraHeaders {
		lower := strings.ToLower(name)
		if lower == "host" {
			continue
		}
		signedHeaders = append(signedHeaders, lower)
	}
	sort.Strings(signedHeaders)

	query := u.Query()
	query.Set("X-Amz-Algorithm", Algorithm)
	query.Set("X-Amz-Credential", s.Credential(t))
	query.Set("X-Amz-Date", t.UTC().Format(TimeFormat))
	query.Set("X-Amz-Expires", strconv.FormatInt(expireSeconds, 10))
	query.Set("X-Amz-SignedHeaders", strings.Join(signedHeaders, ";"))
	if s.SessionToken != "" {
		query.Set("X-Amz-Security-Token", s.SessionToken)
	}

	canonical := buildPresignCanonical(method, u, query, extraHeaders, signedHeaders)
	stringToSign := StringToSign(canonical, t, s.Scope(t))
	key := SigningKey(s.SecretKey, t.UTC().Format(DateFormat), s.Region, serviceS3)
	query.Set("X-Amz-Signature", SignatureHex(key, stringToSign))

	signed := *u
	signed.RawQuery = CanonicalQuery(query) + "&X-Amz-Signature=" + query.Get("X-Amz-Signature")
	return &signed, nil
}

// buildPresignCanonical mirrors BuildCanonicalRequest for a request that
// exists only as a URL: no header map, the host from the URL, and the
// promised extra headers standing in for sent ones. query is the full
// pre-signature query set including the X-Amz-* parameters.
func buildPresignCanonical(method string, u *url.URL, query url.Values, extraHeaders map[string]string, signedHeaders []string) string {
	lower := make(map[string]string, len(extraHeaders))
	for name, value := range extraHeaders {
		lower[strings.ToLower(name)] = value
	}

	var headers strings.Builder
	for _, name := range signedHeaders {
		value := lower[name]
		if name == "host" {
			value = u.Host
		}
		headers.WriteString(name)
		headers.WriteByte(':')
		headers.WriteString(strings.Join(strings.Fields(value), " "))
		headers.WriteByte('\n')
	}

	return strings.Join([]string{
		method,
		canonicalURI(u),
		CanonicalQuery(query),
		headers.String(),
		strings.Join(signedHeaders, ";"),
		UnsignedPayload,
	}, "\n")
}

// PolicySignature signs a base64-encoded POST policy document. Unlike
// header and query signing there is no canonical request; the encoded
// policy itself is the string to sign.
func (s *Signer) PolicySignature(base64Policy string, t time.Time) string {
	key := SigningKey(s.SecretKey, t.UTC().Format(DateFormat), s.Region, serviceS3)
	return SignatureHex(key, base64Policy)
}

// PresignedValidAt reports whether a presigned URL's declared window
// covers the instant now. The window opens at X-Amz-Date and stays open
// through the full X-Amz-Expires'th second, matching how S3 judges it:
// a URL signed at T with expiry E is accepted at T+E-1 and refused at
// T+E+1.
func PresignedValidAt(u *url.URL, now time.Time) bool {
	query := u.Query()
	signedAt, err := time.Parse(TimeFormat, query.Get("X-Amz-Date"))
	if err != nil {
		return false
	}
	expires, err := strconv.ParseInt(query.Get("X-Amz-Expires"), 10, 64)
	if err != nil || expires < 1 {
		return false
	}
	now = now.UTC()
	if now.Before(signedAt) {
		return false
	}
	return !now.After(signedAt.Add(time.Duration(expires) * time.Second))
}
