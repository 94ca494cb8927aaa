// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package remote provides a container backed by a configuration
// document served over HTTP.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/z5labs/container"
	"github.com/z5labs/container/internal/format"
	"github.com/z5labs/container/internal/logging"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatusCodeError is the cause of a [container.ContainerError] when the
// server does not respond with a 2xx status code.
type StatusCodeError struct {
	Code int
}

// Error implements the [builtin.error] interface.
func (e StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected http status code: %d", e.Code)
}

type options struct {
	client       *http.Client
	retries      int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	format       string
	logHandler   slog.Handler
}

// Option configures a [Container].
type Option func(*options)

// Client configures the base http.Client. Its transport is
// instrumented with OpenTelemetry.
func Client(hc *http.Client) Option {
	return func(o *options) {
		o.client = hc
	}
}

// Retries configures how many times a failed fetch is retried.
func Retries(n int) Option {
	return func(o *options) {
		o.retries = n
	}
}

// RetryWait configures the bounds of the exponential backoff between retries.
func RetryWait(waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// Timeout configures the timeout of a single request.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Format overrides the document format, e.g. "yaml", which is otherwise
// detected from the URL path extension or the response Content-Type.
func Format(name string) Option {
	return func(o *options) {
		o.format = name
	}
}

// LogHandler configures the underlying slog.Handler used by the [Container].
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Container serves dotted lookups into a remote document. The document
// is fetched on first use. A failed fetch is attempted again on the
// next lookup.
type Container struct {
	log      *slog.Logger
	url      string
	redacted string
	format   string
	client   *retryablehttp.Client

	mu   sync.Mutex
	defs container.DotMap
}

// New returns a [Container] for the document at u.
func New(u string, opts ...Option) *Container {
	o := &options{
		client:       &http.Client{},
		retries:      3,
		retryWaitMin: 100 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		logHandler:   logging.Discard{},
	}
	for _, opt := range opts {
		opt(o)
	}

	// retryablehttp logs the request url under these keys.
	log := logging.New(logging.Mask(o.logHandler, map[string]logging.MaskFunc{
		"url":     logging.URLPassword,
		"request": logging.URLPasswords,
	}))

	base := o.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *o.client
	hc.Transport = otelhttp.NewTransport(&logRoundTripper{base: base, log: log})
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}

	rc := &retryablehttp.Client{
		HTTPClient:   &hc,
		Logger:       log,
		RetryWaitMin: o.retryWaitMin,
		RetryWaitMax: o.retryWaitMax,
		RetryMax:     o.retries,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	redacted := u
	if pu, err := url.Parse(u); err == nil {
		redacted = pu.Redacted()
	}

	return &Container{
		log:      log,
		url:      u,
		redacted: redacted,
		format:   o.format,
		client:   rc,
	}
}

// Has implements the [container.Container] interface.
func (c *Container) Has(ctx context.Context, id string) (bool, error) {
	defs, err := c.load(ctx)
	if err != nil {
		return false, container.ContainerError{Cause: err}
	}
	return defs.Has(ctx, id)
}

// Get implements the [container.Container] interface.
func (c *Container) Get(ctx context.Context, id string) (any, error) {
	defs, err := c.load(ctx)
	if err != nil {
		return nil, container.ContainerError{Cause: err}
	}
	return defs.Get(ctx, id)
}

func (c *Container) load(ctx context.Context) (container.DotMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.defs != nil {
		return c.defs, nil
	}

	defs, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.defs = container.DotMap(defs)
	return c.defs, nil
}

func (c *Container) fetch(ctx context.Context) (map[string]any, error) {
	spanCtx, span := otel.Tracer("remote").Start(ctx, "Container.fetch", trace.WithAttributes(
		attribute.String("url", c.redacted),
	))
	defer span.End()

	req, err := retryablehttp.NewRequestWithContext(spanCtx, http.MethodGet, c.url, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.log.ErrorContext(spanCtx, "failed to fetch document", logging.String("url", c.redacted), logging.Error(err))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()

		err := StatusCodeError{Code: resp.StatusCode}
		span.RecordError(err)
		c.log.ErrorContext(spanCtx, "unexpected response", logging.String("url", c.redacted), logging.Int("status_code", resp.StatusCode))
		return nil, err
	}

	f, err := c.detectFormat(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	m, err := format.Decode(f, resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.log.DebugContext(spanCtx, "fetched document", logging.String("url", c.redacted), logging.Int("definitions", len(m)))
	return m, nil
}

func (c *Container) detectFormat(resp *http.Response) (format.Format, error) {
	if c.format != "" {
		return format.Parse(c.format)
	}

	u, err := url.Parse(c.url)
	if err == nil {
		f, err := format.FromPath(u.Path)
		if err == nil {
			return f, nil
		}
	}
	return format.FromContentType(resp.Header.Get("Content-Type"))
}

type logRoundTripper struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (rt *logRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()
	rt.log.DebugContext(
		ctx,
		"request sent",
		logging.String("url", req.URL.Redacted()),
	)
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	rt.log.DebugContext(
		ctx,
		"response received",
		logging.String("url", req.URL.Redacted()),
		logging.Int("status_code", resp.StatusCode),
		logging.Duration("latency", time.Since(start)),
	)
	return resp, nil
}
