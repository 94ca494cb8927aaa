// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package redis provides a container backed by a Redis hash.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/z5labs/container"
	"github.com/z5labs/container/internal/logging"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultHashName is the name of the hash which holds the definitions
// unless configured otherwise.
const DefaultHashName = "redisContainerData"

// ErrNilClient is the cause of a [container.ConnectionError] when no
// client was given.
var ErrNilClient = errors.New("redis client is nil")

// UnsupportedClientError is the cause of a [container.ConnectionError]
// when the client is of an unknown type.
type UnsupportedClientError struct {
	Type string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedClientError) Error() string {
	return fmt.Sprintf("unsupported redis client type: %s", e.Type)
}

// CommandError is the cause of a [container.ContainerError] when a
// Redis command fails.
type CommandError struct {
	Op    string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e CommandError) Error() string {
	return fmt.Sprintf("redis %s failed: %s", e.Op, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e CommandError) Unwrap() error {
	return e.Cause
}

type options struct {
	read       goredis.Cmdable
	hashName   string
	prefill    bool
	logHandler slog.Handler
	cb         *gobreaker.Settings
}

// Option configures a [Container].
type Option func(*options)

// ReadFrom configures a separate connection, e.g. to a replica, for reads.
// By default reads use the write connection.
func ReadFrom(c goredis.Cmdable) Option {
	return func(o *options) {
		o.read = c
	}
}

// HashName configures the name of the hash holding the definitions.
func HashName(name string) Option {
	return func(o *options) {
		o.hashName = name
	}
}

// Prefill configures whether the whole hash is loaded on first use. When
// disabled every lookup is sent to Redis.
func Prefill(prefill bool) Option {
	return func(o *options) {
		o.prefill = prefill
	}
}

// LogHandler configures the underlying slog.Handler used by the [Container].
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// CircuitBreaker guards every command with a circuit breaker.
func CircuitBreaker(settings gobreaker.Settings) Option {
	return func(o *options) {
		o.cb = &settings
	}
}

// Container resolves identifiers as fields of a Redis hash.
//
// A Container is not safe for concurrent use.
type Container struct {
	log   *slog.Logger
	write goredis.Cmdable
	read  goredis.Cmdable
	cb    *gobreaker.CircuitBreaker

	hashName  string
	prefill   bool
	prefilled bool
	defs      container.Map
}

// New returns a [Container] which writes to write. A nil or
// unsupported client results in a [container.ConnectionError].
func New(write goredis.Cmdable, opts ...Option) (*Container, error) {
	o := &options{
		hashName:   DefaultHashName,
		prefill:    true,
		logHandler: logging.Discard{},
	}
	for _, opt := range opts {
		opt(o)
	}

	err := validateClient(write)
	if err != nil {
		return nil, container.ConnectionError{Cause: err}
	}

	read := write
	if o.read != nil {
		err = validateClient(o.read)
		if err != nil {
			return nil, container.ConnectionError{Cause: err}
		}
		read = o.read
	}

	log := logging.New(o.logHandler)
	c := &Container{
		log:      log,
		write:    write,
		read:     read,
		hashName: o.hashName,
		prefill:  o.prefill,
	}
	if o.cb != nil {
		c.cb = newCircuitBreaker(log, *o.cb)
	}
	return c, nil
}

func validateClient(c goredis.Cmdable) error {
	switch x := c.(type) {
	case nil:
		return ErrNilClient
	case *goredis.Client:
		if x == nil {
			return ErrNilClient
		}
	case *goredis.ClusterClient:
		if x == nil {
			return ErrNilClient
		}
	case *goredis.Ring:
		if x == nil {
			return ErrNilClient
		}
	case goredis.UniversalClient:
		v := reflect.ValueOf(x)
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return ErrNilClient
		}
	default:
		return UnsupportedClientError{Type: fmt.Sprintf("%T", c)}
	}
	return nil
}

func newCircuitBreaker(log *slog.Logger, settings gobreaker.Settings) *gobreaker.CircuitBreaker {
	onStateChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		switch to {
		case gobreaker.StateOpen:
			log.Error("circuit has been opened", logging.String("circuit", name))
		case gobreaker.StateHalfOpen:
			log.Warn("circuit is now half open", logging.String("circuit", name))
		case gobreaker.StateClosed:
			log.Info("circuit has been closed", logging.String("circuit", name))
		}
		if onStateChange != nil {
			onStateChange(name, from, to)
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// SetHashName changes the hash holding the definitions. Definitions
// loaded from the previous hash are discarded.
func (c *Container) SetHashName(name string) {
	c.hashName = name
	c.prefilled = false
	c.defs = nil
}

// SetPrefill configures whether the whole hash is loaded on first use.
// Disabling it discards already loaded definitions.
func (c *Container) SetPrefill(prefill bool) {
	c.prefill = prefill
	if !prefill {
		c.prefilled = false
		c.defs = nil
	}
}

// Has implements the [container.Container] interface.
func (c *Container) Has(ctx context.Context, id string) (bool, error) {
	spanCtx, span := c.startSpan(ctx, "Container.Has", id)
	defer span.End()

	err := c.load(spanCtx)
	if err != nil {
		return false, err
	}
	if c.prefilled {
		return c.defs.Has(spanCtx, id)
	}

	v, err := c.execute(func() (interface{}, error) {
		return c.read.HExists(spanCtx, c.hashName, id).Result()
	})
	if err != nil {
		return false, c.fail(spanCtx, span, "HEXISTS", id, err)
	}
	return v.(bool), nil
}

// Get implements the [container.Container] interface.
func (c *Container) Get(ctx context.Context, id string) (any, error) {
	spanCtx, span := c.startSpan(ctx, "Container.Get", id)
	defer span.End()

	err := c.load(spanCtx)
	if err != nil {
		return nil, err
	}
	if c.prefilled {
		return c.defs.Get(spanCtx, id)
	}

	v, err := c.execute(func() (interface{}, error) {
		s, err := c.read.HGet(spanCtx, c.hashName, id).Result()
		if errors.Is(err, goredis.Nil) {
			// a missing field is a valid answer and must not trip the circuit
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		return nil, c.fail(spanCtx, span, "HGET", id, err)
	}
	if v == nil {
		return nil, container.NotFoundError{ID: id}
	}
	return v, nil
}

// Set implements the [container.Settable] interface. The value is
// written to the hash with HSET.
func (c *Container) Set(ctx context.Context, id string, v any) error {
	spanCtx, span := c.startSpan(ctx, "Container.Set", id)
	defer span.End()

	_, err := c.execute(func() (interface{}, error) {
		return c.write.HSet(spanCtx, c.hashName, id, v).Result()
	})
	if err != nil {
		return c.fail(spanCtx, span, "HSET", id, err)
	}
	if c.prefilled {
		c.defs[id] = v
	}
	return nil
}

func (c *Container) load(ctx context.Context) error {
	if !c.prefill || c.prefilled {
		return nil
	}

	v, err := c.execute(func() (interface{}, error) {
		return c.read.HGetAll(ctx, c.hashName).Result()
	})
	if err != nil {
		return c.fail(ctx, trace.SpanFromContext(ctx), "HGETALL", "", err)
	}

	fields := v.(map[string]string)
	c.defs = make(container.Map, len(fields))
	for k, s := range fields {
		c.defs[k] = s
	}
	c.prefilled = true

	c.log.DebugContext(ctx, "prefilled definitions", logging.String("hash", c.hashName), logging.Int("definitions", len(fields)))
	return nil
}

func (c *Container) startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return otel.Tracer("redis").Start(ctx, name, trace.WithAttributes(
		attribute.String("redis.hash", c.hashName),
		attribute.String("container.id", id),
	))
}

func (c *Container) execute(f func() (interface{}, error)) (interface{}, error) {
	if c.cb == nil {
		return f()
	}
	return c.cb.Execute(f)
}

func (c *Container) fail(ctx context.Context, span trace.Span, op, id string, err error) error {
	span.RecordError(err)
	c.log.ErrorContext(
		ctx,
		"redis command failed",
		logging.String("op", op),
		logging.String("hash", c.hashName),
		logging.ID(id),
		logging.Error(err),
	)
	return container.ContainerError{
		Cause: CommandError{Op: op, Cause: err},
	}
}
