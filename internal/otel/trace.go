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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gos3.dev/s3errors"
)

// Common attribute keys used across gos3 packages.
var (
	MethodKey   = attribute.Key("gos3.method")
	PackageKey  = attribute.Key("gos3.package")
	ProviderKey = attribute.Key("gos3.provider")
	BucketKey   = attribute.Key("gos3.bucket")
	StatusKey   = attribute.Key("gos3.status")
	ErrorKey    = attribute.Key("gos3.error")
)

// Tracer provides OpenTelemetry tracing for gos3 packages.
type Tracer struct {
	Package  string
	Provider string
	Bucket   string
}

// NewTracer creates a new Tracer for a package. The optional provider
// names the endpoint host the traced calls are issued against.
func NewTracer(pkg string, provider ...string) *Tracer {
	providerName := ""
	if len(provider) > 0 && provider[0] != "" {
		providerName = provider[0]
	}

	return &Tracer{
		Package:  pkg,
		Provider: providerName,
	}
}

// Start creates and starts a new span and returns the updated context and span.
func (t *Tracer) Start(ctx context.Context, methodName string) (context.Context, trace.Span) {
	fullName := t.Package + "." + methodName

	attrs := []attribute.KeyValue{
		PackageKey.String(t.Package),
		MethodKey.String(methodName),
	}

	if t.Provider != "" {
		attrs = append(attrs, ProviderKey.String(t.Provider))
	}
	if t.Bucket != "" {
		attrs = append(attrs, BucketKey.String(t.Bucket))
	}

	// Use the global tracer provider
	return otel.Tracer(t.Package).Start(ctx, fullName, trace.WithAttributes(attrs...))
}

// End completes a span with error information if applicable.
func (t *Tracer) End(span trace.Span, err error) {
	if err != nil {
		code := s3errors.Code(err)
		span.SetAttributes(
			ErrorKey.String(err.Error()),
			StatusKey.String(fmt.Sprint(code)),
		)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// TraceCall is a helper that traces the execution of a function.
func TraceCall(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer("").Start(ctx, name)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// SpanFromContext retrieves the current span from the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
