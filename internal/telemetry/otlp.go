// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig exports spans to an OTLP collector over gRPC.
type OTLPConfig struct {
	Common

	// gRPC target string which is passed to grpc.DialContext
	Target string

	DialTimeout time.Duration
}

// OTLP returns an Initializer which exports spans to target.
func OTLP(serviceName, target string, opts ...CommonOption) Initializer {
	return OTLPConfig{
		Common:      newCommon(serviceName, opts),
		Target:      target,
		DialTimeout: time.Second,
	}
}

// Init implements the [Initializer] interface.
func (cfg OTLPConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	res, err := newResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		cfg.Target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)
	return &connTracerProvider{TracerProvider: tp, conn: conn}, nil
}

// connTracerProvider owns the gRPC connection its exporter was given,
// since the exporter does not close a connection it did not dial.
type connTracerProvider struct {
	*sdktrace.TracerProvider

	conn io.Closer
}

// Shutdown flushes and stops the provider before closing the connection.
func (tp *connTracerProvider) Shutdown(ctx context.Context) error {
	err := tp.TracerProvider.Shutdown(ctx)
	return errors.Join(err, tp.conn.Close())
}
