// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

func TestInstall(t *testing.T) {
	t.Run("will register the tracer provider globally", func(t *testing.T) {
		prev := otel.GetTracerProvider()
		t.Cleanup(func() {
			otel.SetTracerProvider(prev)
		})

		var buf bytes.Buffer
		ctx := context.Background()
		shutdown, err := Install(ctx, Stdout("containerctl", &buf))
		if !assert.Nil(t, err) {
			return
		}

		_, span := otel.Tracer("telemetry").Start(ctx, "test")
		span.End()

		err = shutdown(ctx)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, prev, otel.GetTracerProvider())
		assert.Contains(t, buf.String(), `"Name": "test"`)
		assert.Contains(t, buf.String(), "containerctl")
	})

	t.Run("will keep the current provider for Noop", func(t *testing.T) {
		prev := otel.GetTracerProvider()

		shutdown, err := Install(context.Background(), Noop)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, prev, otel.GetTracerProvider())
		assert.Nil(t, shutdown(context.Background()))
	})

	t.Run("will close the collector connection on shutdown", func(t *testing.T) {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if !assert.Nil(t, err) {
			return
		}
		srv := grpc.NewServer()
		go srv.Serve(lis)
		t.Cleanup(srv.Stop)

		cfg := OTLPConfig{
			Common:      Common{ServiceName: "containerctl"},
			Target:      lis.Addr().String(),
			DialTimeout: 5 * time.Second,
		}

		ctx := context.Background()
		tp, err := cfg.Init(ctx)
		if !assert.Nil(t, err) {
			return
		}

		ctp, ok := tp.(*connTracerProvider)
		if !assert.True(t, ok) {
			return
		}

		err = ctp.Shutdown(ctx)
		if !assert.Nil(t, err) {
			return
		}

		conn, ok := ctp.conn.(*grpc.ClientConn)
		if !assert.True(t, ok) {
			return
		}
		assert.Equal(t, connectivity.Shutdown, conn.GetState())
	})

	t.Run("will return an error if the collector is unreachable", func(t *testing.T) {
		cfg := OTLPConfig{
			Common:      Common{ServiceName: "containerctl"},
			Target:      "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
		}

		_, err := Install(context.Background(), cfg)
		assert.NotNil(t, err)
	})
}

func TestDetectors(t *testing.T) {
	t.Run("will not detect any resource by default", func(t *testing.T) {
		assert.Empty(t, detectors(newCommon("containerctl", nil)))
	})

	t.Run("will detect the Google Cloud resource", func(t *testing.T) {
		t.Run("if DetectGCP is set", func(t *testing.T) {
			c := newCommon("containerctl", []CommonOption{DetectGCP()})
			assert.Len(t, detectors(c), 1)
		})
	})
}
