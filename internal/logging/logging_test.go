// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestNew(t *testing.T) {
	t.Run("will discard records", func(t *testing.T) {
		t.Run("if no handler is given", func(t *testing.T) {
			log := New(nil)
			if !assert.False(t, log.Enabled(context.Background(), slog.LevelError)) {
				return
			}
		})
	})

	t.Run("will not add trace ids", func(t *testing.T) {
		t.Run("if the context carries no span", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil))
			log.InfoContext(context.Background(), "hello")

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.NotContains(t, record, "otel") {
				return
			}
		})
	})

	t.Run("will add trace ids", func(t *testing.T) {
		t.Run("if the context carries a valid span", func(t *testing.T) {
			spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
				TraceID: trace.TraceID{1},
				SpanID:  trace.SpanID{1},
			})
			ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil)).With(ID("db.host"))
			log.InfoContext(ctx, "hello")

			var record struct {
				ID   string `json:"id"`
				Otel struct {
					TraceID string `json:"trace_id"`
					SpanID  string `json:"span_id"`
				} `json:"otel"`
			}
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "db.host", record.ID) {
				return
			}
			if !assert.Equal(t, spanCtx.TraceID().String(), record.Otel.TraceID) {
				return
			}
			if !assert.Equal(t, spanCtx.SpanID().String(), record.Otel.SpanID) {
				return
			}
		})
	})
}
