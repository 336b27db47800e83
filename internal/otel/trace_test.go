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

package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gos3.dev/internal/s3err"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	spanRecorder := tracetest.NewSpanRecorder()
	testProvider := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithSpanProcessor(spanRecorder),
	)
	origProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(testProvider)
	t.Cleanup(func() { otel.SetTracerProvider(origProvider) })
	return spanRecorder
}

func TestTracer(t *testing.T) {
	spanRecorder := withSpanRecorder(t)

	tracer := NewTracer("gos3/s3", "s3.us-east-1.amazonaws.com")
	tracer.Bucket = "my-bucket"

	ctx := context.Background()
	_, span := tracer.Start(ctx, "GetObject")
	tracer.End(span, nil)

	spans := spanRecorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d recorded spans, want 1", len(spans))
	}
	if got, want := spans[0].Name(), "gos3/s3.GetObject"; got != want {
		t.Errorf("span name = %q, want %q", got, want)
	}
	if got, want := spans[0].Status().Code, otelcodes.Ok; got != want {
		t.Errorf("span status = %v, want %v", got, want)
	}
	attrs := spans[0].Attributes()
	found := map[string]string{}
	for _, a := range attrs {
		found[string(a.Key)] = a.Value.Emit()
	}
	if found["gos3.method"] != "GetObject" {
		t.Errorf("gos3.method attribute = %q, want GetObject", found["gos3.method"])
	}
	if found["gos3.provider"] != "s3.us-east-1.amazonaws.com" {
		t.Errorf("gos3.provider attribute = %q", found["gos3.provider"])
	}
	if found["gos3.bucket"] != "my-bucket" {
		t.Errorf("gos3.bucket attribute = %q", found["gos3.bucket"])
	}
}

func TestTracerEndWithError(t *testing.T) {
	spanRecorder := withSpanRecorder(t)

	tracer := NewTracer("gos3/s3")
	_, span := tracer.Start(context.Background(), "PutObject")
	tracer.End(span, s3err.New(s3err.Timeout, nil, 1, "deadline exceeded"))

	spans := spanRecorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d recorded spans, want 1", len(spans))
	}
	if got, want := spans[0].Status().Code, otelcodes.Error; got != want {
		t.Errorf("span status = %v, want %v", got, want)
	}
	var status string
	for _, a := range spans[0].Attributes() {
		if a.Key == StatusKey {
			status = a.Value.Emit()
		}
	}
	if status != "Timeout" {
		t.Errorf("gos3.status attribute = %q, want Timeout", status)
	}
}

func TestTraceCall(t *testing.T) {
	spanRecorder := withSpanRecorder(t)

	err := TraceCall(context.Background(), "gos3/s3.List", func(ctx context.Context) error {
		if !SpanFromContext(ctx).SpanContext().IsValid() {
			t.Error("no valid span in context inside TraceCall")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TraceCall: %v", err)
	}
	if len(spanRecorder.Ended()) != 1 {
		t.Fatalf("got %d recorded spans, want 1", len(spanRecorder.Ended()))
	}
}
