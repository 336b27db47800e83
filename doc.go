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

/*
Package gos3 is a client library for the S3 wire protocol.

It talks to Amazon S3 and to the many storage services that speak the
same protocol: MinIO, Backblaze B2, Wasabi, Yandex Object Storage,
Cloudflare R2, Google Cloud Storage and DigitalOcean Spaces, among
others. Requests are signed with AWS Signature Version 4; no provider
SDK is involved.

The library is split into small packages:

  - s3 holds the Bucket type and every bucket and object operation,
    plus presigned URLs and POST policies. s3/s3test is an in-memory
    S3 server for tests.
  - region resolves region codes and custom endpoints for the
    supported providers.
  - credentials loads access keys from static values, the environment
    or the shared credentials file.
  - s3errors classifies every error the library returns, so callers
    can switch on a small set of codes instead of matching strings.

A minimal program:

	reg, err := region.Parse("eu-central-1")
	if err != nil { ... }
	creds, err := credentials.FromEnv()
	if err != nil { ... }
	b, err := s3.New("my-bucket", reg, creds, nil)
	if err != nil { ... }
	data, err := b.GetObject(ctx, "hello.txt")

or, URL-configured:

	b, err := s3.OpenBucket(ctx, "s3://my-bucket?region=eu-central-1")
*/
package gos3
