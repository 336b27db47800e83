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

package s3_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gos3.dev/credentials"
	"gos3.dev/region"
	"gos3.dev/s3"
)

func ExampleNew() {
	reg, err := region.Parse("eu-central-1")
	if err != nil {
		log.Fatal(err)
	}
	creds, err := credentials.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	b, err := s3.New("my-bucket", reg, creds, nil)
	if err != nil {
		log.Fatal(err)
	}

	if err := b.PutObject(context.Background(), "greeting.txt", []byte("hello")); err != nil {
		log.Fatal(err)
	}
}

func ExampleOpenBucket() {
	ctx := context.Background()
	b, err := s3.OpenBucket(ctx, "s3://my-bucket?region=eu-central-1")
	if err != nil {
		log.Fatal(err)
	}

	data, err := b.GetObject(ctx, "greeting.txt")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
}

func ExampleOpenBucket_minio() {
	ctx := context.Background()
	b, err := s3.OpenBucket(ctx, "s3://my-bucket?endpoint=http%3A%2F%2F127.0.0.1%3A9000&path-style=true")
	if err != nil {
		log.Fatal(err)
	}
	if err := b.PutObject(ctx, "hello.txt", []byte("hello")); err != nil {
		log.Fatal(err)
	}
}

func ExampleBucket_GetObjectStream() {
	ctx := context.Background()
	b, err := s3.OpenBucket(ctx, "s3://my-bucket?region=eu-central-1")
	if err != nil {
		log.Fatal(err)
	}

	r, err := b.GetObjectStream(ctx, "large-dataset.parquet")
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()
	if _, err := io.Copy(os.Stdout, r); err != nil {
		log.Fatal(err)
	}
}

func ExampleBucket_PresignGet() {
	b, err := s3.OpenBucket(context.Background(), "s3://my-bucket?region=eu-central-1")
	if err != nil {
		log.Fatal(err)
	}

	// Anyone holding the URL can fetch the object for the next quarter
	// hour, no credentials needed.
	u, err := b.PresignGet("report.pdf", 15*time.Minute, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(u)
}

func ExampleBucket_List() {
	ctx := context.Background()
	b, err := s3.OpenBucket(ctx, "s3://my-bucket?region=eu-central-1")
	if err != nil {
		log.Fatal(err)
	}

	pages, err := b.List(ctx, "invoices/2026/", "")
	if err != nil {
		log.Fatal(err)
	}
	for _, page := range pages {
		for _, obj := range page.Contents {
			fmt.Println(obj.Key, obj.Size)
		}
	}
}
