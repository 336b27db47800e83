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

// Package credentials supplies the access keys requests are signed with.
//
// A Credentials value is immutable. The signing core never reads the
// environment or the filesystem itself; the FromEnv and FromProfile loaders
// exist so that callers can keep that lookup at construction time, in one
// place:
//
//	creds, err := credentials.FromEnv()
//	b, err := s3.New("my-bucket", r, creds, nil)
//
// Credentials never appear in logs or error messages; the String and
// GoString methods redact the secret key and session token.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gos3.dev/internal/s3err"
)

// Environment variable names honored by FromEnv and the profile loaders.
const (
	envAccessKey    = "AWS_ACCESS_KEY_ID"
	envSecretKey    = "AWS_SECRET_ACCESS_KEY"
	envSessionToken = "AWS_SESSION_TOKEN"
	envProfile      = "AWS_PROFILE"
	envSharedFile   = "AWS_SHARED_CREDENTIALS_FILE"
)

// Credentials holds an access key, a secret key and an optional session
// token. The zero value is anonymous: requests go out unsigned.
type Credentials struct {
	accessKey    string
	secretKey    string
	sessionToken string
}

// New returns static Credentials. Values are whitespace-trimmed; secrets
// pasted or piped from files routinely carry a trailing newline that would
// otherwise corrupt every signature.
func New(accessKey, secretKey string) Credentials {
	return Credentials{
		accessKey: strings.TrimSpace(accessKey),
		secretKey: strings.TrimSpace(secretKey),
	}
}

// NewWithSessionToken returns static Credentials carrying a session token.
// The token is sent as the X-Amz-Security-Token signed header, or as a
// signed query parameter on presigned URLs.
func NewWithSessionToken(accessKey, secretKey, sessionToken string) Credentials {
	c := New(accessKey, secretKey)
	c.sessionToken = strings.TrimSpace(sessionToken)
	return c
}

// Anonymous returns empty Credentials. Requests made with them carry no
// Authorization header, which public buckets accept.
func Anonymous() Credentials {
	return Credentials{}
}

// FromEnv reads AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, and
// AWS_SESSION_TOKEN when set.
func FromEnv() (Credentials, error) {
	ak := os.Getenv(envAccessKey)
	sk := os.Getenv(envSecretKey)
	if ak == "" || sk == "" {
		return Credentials{}, s3err.Newf(s3err.Config, nil, "credentials: %s and %s must both be set", envAccessKey, envSecretKey)
	}
	return NewWithSessionToken(ak, sk, os.Getenv(envSessionToken)), nil
}

// FromProfile loads the named profile from the shared credentials file,
// honoring AWS_SHARED_CREDENTIALS_FILE for the location and AWS_PROFILE
// when profile is empty. The fallback profile name is "default".
func FromProfile(profile string) (Credentials, error) {
	path := os.Getenv(envSharedFile)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Credentials{}, s3err.New(s3err.Config, err, 1, "credentials: cannot locate home directory")
		}
		path = filepath.Join(home, ".aws", "credentials")
	}
	return FromProfileFile(path, profile)
}

// FromProfileFile loads the named profile from the INI file at path.
func FromProfileFile(path, profile string) (Credentials, error) {
	if profile == "" {
		profile = os.Getenv(envProfile)
	}
	if profile == "" {
		profile = "default"
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return Credentials{}, s3err.Newf(s3err.Config, err, "credentials: cannot read %s", path)
	}
	sec, err := cfg.GetSection(profile)
	if err != nil {
		return Credentials{}, s3err.Newf(s3err.Config, err, "credentials: profile %q not found in %s", profile, path)
	}
	ak := sec.Key("aws_access_key_id").String()
	sk := sec.Key("aws_secret_access_key").String()
	if ak == "" || sk == "" {
		return Credentials{}, s3err.Newf(s3err.Config, nil, "credentials: profile %q is missing aws_access_key_id or aws_secret_access_key", profile)
	}
	return NewWithSessionToken(ak, sk, sec.Key("aws_session_token").String()), nil
}

// AccessKey returns the access key id.
func (c Credentials) AccessKey() string { return c.accessKey }

// SecretKey returns the secret access key.
func (c Credentials) SecretKey() string { return c.secretKey }

// SessionToken returns the session token, or "".
func (c Credentials) SessionToken() string { return c.sessionToken }

// IsAnonymous reports whether requests should be sent unsigned.
func (c Credentials) IsAnonymous() bool {
	return c.accessKey == "" && c.secretKey == ""
}

// String redacts the secret material.
func (c Credentials) String() string {
	if c.IsAnonymous() {
		return "Credentials{anonymous}"
	}
	return fmt.Sprintf("Credentials{AccessKey:%s}", c.accessKey)
}

// GoString redacts the secret material under %#v as well.
func (c Credentials) GoString() string { return c.String() }
