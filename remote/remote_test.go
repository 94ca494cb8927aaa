// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package remote

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/z5labs/container"

	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestContainer_Get(t *testing.T) {
	t.Run("will return the value", func(t *testing.T) {
		t.Run("if the format is detected from the url path", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("db:\n  host: localhost\n"))
			})

			c := New(srv.URL + "/config.yaml")

			v, err := c.Get(context.Background(), "db.host")
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "localhost", v)
		})

		t.Run("if the format is detected from the content type", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"db": {"port": 5432}}`))
			})

			c := New(srv.URL + "/config")

			v, err := c.Get(context.Background(), "db.port")
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, float64(5432), v)
		})

		t.Run("if the format is configured", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("[db]\nuser = \"admin\"\n"))
			})

			c := New(srv.URL+"/config", Format("toml"))

			v, err := c.Get(context.Background(), "db.user")
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, "admin", v)
		})

		t.Run("after retrying a failed request", func(t *testing.T) {
			var calls atomic.Int32
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.Write([]byte("a: 1\n"))
			})

			c := New(srv.URL+"/config.yaml", Retries(1), RetryWait(time.Millisecond, time.Millisecond))

			v, err := c.Get(context.Background(), "a")
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, 1, v)
			assert.Equal(t, int32(2), calls.Load())
		})
	})

	t.Run("will fetch the document only once", func(t *testing.T) {
		var calls atomic.Int32
		srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte("a: 1\nb: 2\n"))
		})

		c := New(srv.URL + "/config.yaml")

		ctx := context.Background()
		_, err := c.Get(ctx, "a")
		if !assert.Nil(t, err) {
			return
		}
		ok, err := c.Has(ctx, "b")
		if !assert.Nil(t, err) {
			return
		}
		assert.True(t, ok)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("will fetch the document again", func(t *testing.T) {
		t.Run("if the previous fetch failed", func(t *testing.T) {
			var calls atomic.Int32
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte("a: 1\n"))
			})

			c := New(srv.URL+"/config.yaml", Retries(0))

			ctx := context.Background()
			_, err := c.Get(ctx, "a")
			if !assert.True(t, container.IsContainerError(err)) {
				return
			}

			v, err := c.Get(ctx, "a")
			if !assert.Nil(t, err) {
				return
			}
			assert.Equal(t, 1, v)
		})
	})

	t.Run("will return a NotFoundError", func(t *testing.T) {
		t.Run("if the document does not define the id", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("a: 1\n"))
			})

			c := New(srv.URL + "/config.yaml")

			_, err := c.Get(context.Background(), "b")

			var nerr container.NotFoundError
			if !assert.ErrorAs(t, err, &nerr) {
				return
			}
			assert.Equal(t, "b", nerr.ID)
		})
	})

	t.Run("will return a ContainerError", func(t *testing.T) {
		t.Run("if the server responds with a non 2xx status code", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			c := New(srv.URL + "/config.yaml")

			_, err := c.Get(context.Background(), "a")

			var cerr container.ContainerError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}

			var serr StatusCodeError
			if !assert.ErrorAs(t, err, &serr) {
				return
			}
			assert.Equal(t, http.StatusNotFound, serr.Code)
		})

		t.Run("if the format can not be determined", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("a=1"))
			})

			c := New(srv.URL + "/config")

			_, err := c.Has(context.Background(), "a")
			assert.True(t, container.IsContainerError(err))
		})
	})
}

func TestContainer_logging(t *testing.T) {
	t.Run("will not log the url password", func(t *testing.T) {
		t.Run("if the request is retried and fails", func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})

			u := strings.Replace(srv.URL, "http://", "http://user:s3cret@", 1) + "/config.yaml"

			var buf bytes.Buffer
			h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

			c := New(u, Retries(1), RetryWait(time.Millisecond, time.Millisecond), LogHandler(h))

			_, err := c.Get(context.Background(), "a")
			if !assert.True(t, container.IsContainerError(err)) {
				return
			}
			if !assert.Contains(t, buf.String(), "retrying request") {
				return
			}
			assert.NotContains(t, buf.String(), "s3cret")
		})
	})
}

func TestContainer_is_read_only(t *testing.T) {
	var c container.Container = New("http://localhost/config.yaml")

	_, ok := c.(container.Settable)
	assert.False(t, ok)
}
