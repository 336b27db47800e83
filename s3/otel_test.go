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
	"io"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func TestOperationSpans(t *testing.T) {
	ctx := context.Background()
	exporter := installTestTracer(t)
	b, _ := newTestBucket(t)
	exporter.Reset() // drop the setup's CreateBucket span

	if err := b.PutObject(ctx, "traced.txt", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetObject(ctx, "absent.txt"); err == nil {
		t.Fatal("GetObject of absent key succeeded")
	}

	byName := map[string]tracetest.SpanStub{}
	for _, span := range exporter.GetSpans() {
		byName[span.Name] = span
	}

	put, ok := byName["gos3/s3.PutObject"]
	if !ok {
		t.Fatalf("no PutObject span; have %v", spanNames(exporter))
	}
	if put.Status.Code != codes.Ok {
		t.Errorf("PutObject span status = %v, want Ok", put.Status.Code)
	}
	wantAttrs := map[string]string{
		"gos3.package": "gos3/s3",
		"gos3.method":  "PutObject",
		"gos3.bucket":  testBucket,
	}
	for key, want := range wantAttrs {
		found := false
		for _, kv := range put.Attributes {
			if string(kv.Key) == key {
				found = true
				if got := kv.Value.AsString(); got != want {
					t.Errorf("span attribute %s = %q, want %q", key, got, want)
				}
			}
		}
		if !found {
			t.Errorf("span attribute %s missing", key)
		}
	}

	get, ok := byName["gos3/s3.GetObject"]
	if !ok {
		t.Fatalf("no GetObject span; have %v", spanNames(exporter))
	}
	if get.Status.Code != codes.Error {
		t.Errorf("failed GetObject span status = %v, want Error", get.Status.Code)
	}
	for _, kv := range get.Attributes {
		if string(kv.Key) == "gos3.status" {
			if got := kv.Value.AsString(); got != "Service" {
				t.Errorf("gos3.status = %q, want Service", got)
			}
		}
	}
}

func TestStreamSpanEndsAtClose(t *testing.T) {
	ctx := context.Background()
	exporter := installTestTracer(t)
	b, _ := newTestBucket(t)
	if err := b.PutObject(ctx, "streamed.txt", []byte("stream body")); err != nil {
		t.Fatal(err)
	}
	exporter.Reset()

	r, err := b.GetObjectStream(ctx, "streamed.txt")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range spanNames(exporter) {
		if name == "gos3/s3.GetObjectStream" {
			t.Fatal("stream span ended before Close")
		}
	}

	if _, err := io.ReadAll(r); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, span := range exporter.GetSpans() {
		if span.Name == "gos3/s3.GetObjectStream" {
			found = true
			if span.Status.Code != codes.Ok {
				t.Errorf("stream span status = %v, want Ok", span.Status.Code)
			}
		}
	}
	if !found {
		t.Fatalf("no stream span after Close; have %v", spanNames(exporter))
	}
}

func spanNames(exporter *tracetest.InMemoryExporter) []string {
	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}
	return names
}

func TestOperationMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	b, _ := newTestBucket(t)
	if err := b.PutObject(ctx, "m.txt", []byte("metered")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetObject(ctx, "m.txt"); err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"gos3/s3.latency",
		"gos3/s3.completed_calls",
		"gos3/s3.bytes_read",
		"gos3/s3.bytes_written",
	} {
		if !names[want] {
			t.Errorf("metric %q not recorded; have %v", want, names)
		}
	}
}
