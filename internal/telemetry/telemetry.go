// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry initializes OpenTelemetry tracer providers.
package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Common holds settings shared by every Initializer.
type Common struct {
	ServiceName string

	// DetectGCP adds the Google Cloud resource detector. Off Google Cloud
	// the detection costs a metadata server lookup on startup.
	DetectGCP bool
}

// CommonOption configures the settings shared by every Initializer.
type CommonOption func(*Common)

// DetectGCP describes the Google Cloud resource, e.g. the GCE instance or
// Cloud Run service, the process is running on.
func DetectGCP() CommonOption {
	return func(c *Common) {
		c.DetectGCP = true
	}
}

func newCommon(serviceName string, opts []CommonOption) Common {
	c := Common{ServiceName: serviceName}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Initializer creates a trace.TracerProvider.
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, error)
}

// Noop leaves the globally registered tracer provider as is.
var Noop = noopInitializer{}

type noopInitializer struct{}

func (noopInitializer) Init(_ context.Context) (trace.TracerProvider, error) {
	return otel.GetTracerProvider(), nil
}

// StdoutConfig exports spans as pretty printed JSON.
type StdoutConfig struct {
	Common

	Out io.Writer
}

// Stdout returns an Initializer which writes spans to out. A nil
// out writes to os.Stdout.
func Stdout(serviceName string, out io.Writer, opts ...CommonOption) Initializer {
	if out == nil {
		out = os.Stdout
	}
	return StdoutConfig{
		Common: newCommon(serviceName, opts),
		Out:    out,
	}
}

// Init implements the [Initializer] interface.
func (cfg StdoutConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

func newResource(ctx context.Context, c Common) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithDetectors(detectors(c)...),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
		),
	)
}

func detectors(c Common) []resource.Detector {
	var ds []resource.Detector
	if c.DetectGCP {
		ds = append(ds, gcp.NewDetector())
	}
	return ds
}

// Install initializes a tracer provider and registers it globally. The
// returned func flushes and stops the provider, if it supports it, and
// registers the previous global provider again.
func Install(ctx context.Context, initializer Initializer) (func(context.Context) error, error) {
	tp, err := initializer.Init(ctx)
	if err != nil {
		return nil, err
	}

	prev := otel.GetTracerProvider()
	if tp == prev {
		return func(context.Context) error { return nil }, nil
	}
	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		if s, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			return s.Shutdown(ctx)
		}
		return nil
	}
	return shutdown, nil
}
