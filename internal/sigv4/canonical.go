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
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const hexChars = "0123456789ABCDEF"

// BuildCanonicalRequest constructs the canonical request string for req:
//
//	{method}\n{canonical uri}\n{canonical query}\n{canonical headers}\n{signed header list}\n{payload hash}
//
// signedHeaders must be sorted lowercase names; every name must be
// present on the request (host is taken from req.Host, not the header
// map). The request is not modified.
func BuildCanonicalRequest(req *http.Request, signedHeaders []string, payloadHash string) string {
	var b strings.Builder
	b.WriteString(req.Method)
	b.WriteByte('\n')
	b.WriteString(canonicalURI(req.URL))
	b.WriteByte('\n')
	b.WriteString(CanonicalQuery(req.URL.Query()))
	b.WriteByte('\n')
	b.WriteString(canonicalHeaders(req, signedHeaders))
	b.WriteByte('\n')
	b.WriteString(strings.Join(signedHeaders, ";"))
	b.WriteByte('\n')
	b.WriteString(payloadHash)
	return b.String()
}

// canonicalURI returns the escaped request path with every segment
// URI-encoded exactly once. Each segment is unescaped first so a path
// that arrives already encoded does not get encoded twice.
func canonicalURI(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			// Not valid percent-encoding; encode the raw bytes.
			decoded = segment
		}
		segments[i] = uriEncode(decoded, false)
	}
	return strings.Join(segments, "/")
}

// EncodePath encodes a bucket key for use as a URL path, applying the
// S3 flavor of percent-encoding to every segment while keeping the '/'
// separators. The result is what canonicalURI reproduces at signing
// time, so a URL built from it signs cleanly.
func EncodePath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = uriEncode(segment, false)
	}
	return strings.Join(segments, "/")
}

// CanonicalQuery returns the canonical query string: every name and
// value percent-encoded, pairs sorted by encoded name then encoded
// value, joined with '&'. X-Amz-Signature is excluded so the same
// function serves both signing and presigned-URL verification.
func CanonicalQuery(query url.Values) string {
	type pair struct{ name, value string }
	pairs := make([]pair, 0, len(query))
	for name, values := range query {
		if name == "X-Amz-Signature" {
			continue
		}
		encName := uriEncode(name, true)
		for _, value := range values {
			pairs = append(pairs, pair{encName, uriEncode(value, true)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].name != pairs[j].name {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].value < pairs[j].value
	})
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.name + "=" + p.value
	}
	return strings.Join(parts, "&")
}

// canonicalHeaders renders each signed header as "name:value\n" with
// the value's interior whitespace collapsed to single spaces. Multiple
// values for one name are joined with commas before collapsing. The
// host value comes from req.Host and keeps any port, which is what the
// verifier on the far side sees.
func canonicalHeaders(req *http.Request, signedHeaders []string) string {
	var b strings.Builder
	for _, name := range signedHeaders {
		var value string
		switch name {
		case "host":
			value = req.Host
			if value == "" {
				value = req.URL.Host
			}
		case "content-length":
			value = req.Header.Get("Content-Length")
			if value == "" && req.ContentLength > 0 {
				value = strconv.FormatInt(req.ContentLength, 10)
			}
		default:
			value = strings.Join(req.Header.Values(name), ",")
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(strings.Fields(value), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// uriEncode applies the S3 variant of percent-encoding: unreserved
// characters pass through, everything else becomes uppercase %XX on the
// raw UTF-8 bytes. Space is %20, never '+'. encodeSlash distinguishes
// query components, where '/' is encoded, from path segments, where the
// separator survives.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexChars[c>>4])
			b.WriteByte(hexChars[c&0xF])
		}
	}
	return b.String()
}
