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
	"encoding/base64"
	"encoding/json"
	"time"

	"gos3.dev/internal/s3err"
	"gos3.dev/internal/sigv4"
)

// PostPolicy describes the constraints of a browser-based POST upload
// form. Conditions added through the Match* methods restrict what the
// form may upload; every field named in a condition must appear in the
// submitted form.
type PostPolicy struct {
	expiry     time.Duration
	conditions []interface{}
	fields     map[string]string
}

// NewPostPolicy returns a policy valid for expiry from the moment it is
// signed with PresignPost.
func NewPostPolicy(expiry time.Duration) *PostPolicy {
	return &PostPolicy{expiry: expiry, fields: map[string]string{}}
}

// MatchKey pins the upload to exactly key.
func (p *PostPolicy) MatchKey(key string) *PostPolicy {
	return p.Match("key", key)
}

// MatchKeyPrefix allows any key starting with prefix.
func (p *PostPolicy) MatchKeyPrefix(prefix string) *PostPolicy {
	return p.MatchStartsWith("key", prefix)
}

// MatchContentType pins the Content-Type form field.
func (p *PostPolicy) MatchContentType(contentType string) *PostPolicy {
	return p.Match("Content-Type", contentType)
}

// ContentLengthRange bounds the upload size in bytes, inclusive.
func (p *PostPolicy) ContentLengthRange(min, max int64) *PostPolicy {
	p.conditions = append(p.conditions, []interface{}{"content-length-range", min, max})
	return p
}

// Match adds an exact-match condition on a form field and pre-fills the
// field in the returned form.
func (p *PostPolicy) Match(field, value string) *PostPolicy {
	p.conditions = append(p.conditions, map[string]string{field: value})
	p.fields[field] = value
	return p
}

// MatchStartsWith adds a starts-with condition on a form field.
func (p *PostPolicy) MatchStartsWith(field, prefix string) *PostPolicy {
	p.conditions = append(p.conditions, []interface{}{"starts-with", "$" + field, prefix})
	return p
}

// PresignedPost is a signed POST upload form: the URL to POST to and
// the fields the form must carry alongside the file.
type PresignedPost struct {
	URL    string
	Fields map[string]string
}

// PresignPost signs policy and returns the upload form. The policy
// document fixes the bucket, credential scope and signing date; the
// caller's conditions are appended as given.
func (b *Bucket) PresignPost(policy *PostPolicy) (*PresignedPost, error) {
	if b.creds.IsAnonymous() {
		return nil, s3err.Newf(s3err.Config, nil, "presigning requires credentials")
	}
	seconds := int64(policy.expiry / time.Second)
	if seconds < 1 || seconds > sigv4.MaxExpirySeconds {
		return nil, s3err.Newf(s3err.Config, nil, "post policy expiry %ds out of range [1s, %ds]", seconds, sigv4.MaxExpirySeconds)
	}

	now := time.Now().UTC()
	signer := b.signer()
	credential := signer.Credential(now)
	amzDate := now.Format(sigv4.TimeFormat)

	conditions := []interface{}{
		map[string]string{"bucket": b.name},
		map[string]string{"x-amz-algorithm": sigv4.Algorithm},
		map[string]string{"x-amz-credential": credential},
		map[string]string{"x-amz-date": amzDate},
	}
	if token := b.creds.SessionToken(); token != "" {
		conditions = append(conditions, map[string]string{"x-amz-security-token": token})
	}
	conditions = append(conditions, policy.conditions...)

	doc := struct {
		Expiration string        `json:"expiration"`
		Conditions []interface{} `json:"conditions"`
	}{
		Expiration: now.Add(policy.expiry).Format("2006-01-02T15:04:05.000Z"),
		Conditions: conditions,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, s3err.New(s3err.Config, err, 1, "encoding post policy")
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	fields := map[string]string{
		"policy":           encoded,
		"x-amz-algorithm":  sigv4.Algorithm,
		"x-amz-credential": credential,
		"x-amz-date":       amzDate,
		"x-amz-signature":  signer.PolicySignature(encoded, now),
	}
	if token := b.creds.SessionToken(); token != "" {
		fields["x-amz-security-token"] = token
	}
	for field, value := range policy.fields {
		fields[field] = value
	}

	return &PresignedPost{URL: b.resolveURL("", nil).String(), Fields: fields}, nil
}
