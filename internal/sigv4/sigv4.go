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

// Package sigv4 implements the client side of AWS Signature Version 4
// for the S3 service: canonical request construction, signing key
// derivation, Authorization headers and presigned URL query sets.
//
// Everything here is pure computation. The signing time is always a
// parameter, never sampled, so signatures are reproducible in tests.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// Algorithm identifies the signing scheme in Authorization headers,
	// presigned query sets and POST policy fields.
	Algorithm = "AWS4-HMAC-SHA256"

	// TimeFormat is the ISO8601 basic format carried in x-amz-date.
	TimeFormat = "20060102T150405Z"

	// DateFormat is the day component used in credential scopes.
	DateFormat = "20060102"

	// UnsignedPayload is the x-amz-content-sha256 sentinel for bodies
	// that are streamed without prior hashing. Presigned requests always
	// use it: the body is unknown at signing time.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// EmptyPayloadHash is the SHA-256 of zero bytes, the hash carried by
	// body-less requests.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	serviceS3       = "s3"
	scopeTerminator = "aws4_request"
)

// ignoredHeaders are never part of the signed set. The transport owns
// them; signing them would break the moment a proxy or the HTTP client
// rewrites one.
var ignoredHeaders = map[string]bool{
	"authorization":   true,
	"user-agent":      true,
	"x-amzn-trace-id": true,
	"expect":          true,
}

// Signer holds the credential material and region a request is signed
// against. The zero value is unusable; callers construct one per request
// or reuse one across requests, both are safe.
type Signer struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
}

// Scope returns the credential scope string for a signing time:
// "{YYYYMMDD}/{region}/s3/aws4_request".
func (s *Signer) Scope(t time.Time) string {
	return strings.Join([]string{t.UTC().Format(DateFormat), s.Region, serviceS3, scopeTerminator}, "/")
}

// Credential returns the X-Amz-Credential value: access key '/' scope.
func (s *Signer) Credential(t time.Time) string {
	return s.AccessKey + "/" + s.Scope(t)
}

// SignHeader signs req in place for header-based authentication. It sets
// x-amz-date, x-amz-content-sha256 and, when the Signer carries a session
// token, x-amz-security-token, then computes the signature over the
// frozen header set and sets Authorization. payloadHash is the hex
// SHA-256 of the body, UnsignedPayload, or EmptyPayloadHash.
//
// Callers must not add or remove headers after SignHeader returns; the
// signed set is exactly the set sent.
func (s *Signer) SignHeader(req *http.Request, payloadHash string, t time.Time) {
	amzDate := t.UTC().Format(TimeFormat)
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)
	if s.SessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", s.SessionToken)
	}

	signedHeaders := signableHeaders(req)
	canonical := BuildCanonicalRequest(req, signedHeaders, payloadHash)
	stringToSign := StringToSign(canonical, t, s.Scope(t))
	key := SigningKey(s.SecretKey, t.UTC().Format(DateFormat), s.Region, serviceS3)
	signature := SignatureHex(key, stringToSign)

	req.Header.Set("Authorization", strings.Join([]string{
		Algorithm + " Credential=" + s.Credential(t),
		"SignedHeaders=" + strings.Join(signedHeaders, ";"),
		"Signature=" + signature,
	}, ", "))
}

// signableHeaders returns the sorted lowercase names of every header that
// participates in the signature: host, content-length when declared, and
// all request headers except the transport-owned ones.
func signableHeaders(req *http.Request) []string {
	names := []string{"host"}
	if req.ContentLength > 0 && req.Header.Get("Content-Length") == "" {
		names = append(names, "content-length")
	}
	for name := range req.Header {
		lower := strings.ToLower(name)
		if ignoredHeaders[lower] {
			continue
		}
		names = append(names, lower)
	}
	sort.Strings(names)
	return names
}

// StringToSign composes the final signing input from a canonical request,
// the signing time and the credential scope.
func StringToSign(canonicalRequest string, t time.Time, scope string) string {
	h := sha256.Sum256([]byte(canonicalRequest))
	return strings.Join([]string{
		Algorithm,
		t.UTC().Format(TimeFormat),
		scope,
		hex.EncodeToString(h[:]),
	}, "\n")
}

// SigningKey derives the request signing key: a fixed chain of keyed
// hashes folding in the date, region, service and terminator, in that
// exact order. It is recomputed per request; the date component makes a
// cached key stale at midnight UTC.
func SigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(scopeTerminator))
}

// SignatureHex computes the final hex signature of stringToSign.
func SignatureHex(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))
}

// PayloadHash returns the hex SHA-256 of a fully-buffered body.
func PayloadHash(body []byte) string {
	h := sha256.Sum256(body)
	return hex.EncodeToString(h[:])
}

func hmacSHA256(key, value []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(value)
	return mac.Sum(nil)
}
