// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging provides the slog plumbing shared by all containers.
package logging

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Discard is a slog.Handler which drops every record. It is the
// default handler for all containers.
type Discard struct{}

func (Discard) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (Discard) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h Discard) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h Discard) WithGroup(_ string) slog.Handler             { return h }

// New returns a logger which correlates its records with the
// OpenTelemetry span found in the context, if any. A nil handler
// results in a logger which discards everything.
func New(h slog.Handler) *slog.Logger {
	if h == nil {
		h = Discard{}
	}
	return slog.New(&traceHandler{base: h})
}

type traceHandler struct {
	base slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.base.Enabled(ctx, lvl)
}

func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.base.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.base.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{base: h.base.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{base: h.base.WithGroup(name)}
}

// ID returns an slog.Attr for a container identifier.
func ID(id string) slog.Attr {
	return slog.String("id", id)
}

// Error returns an slog.Attr for an error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int returns an slog.Attr for an int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}
