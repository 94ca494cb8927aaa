// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package file provides a container backed by configuration files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/z5labs/container"
	"github.com/z5labs/container/internal/format"
	"github.com/z5labs/container/internal/logging"
	"github.com/z5labs/container/merge"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// UnsupportedFormatError is returned by [New] if the format of a file
// can not be determined from its extension.
type UnsupportedFormatError = format.UnsupportedFormatError

// InvalidDocumentError is the cause of a [container.ContainerError]
// when a file can not be parsed.
type InvalidDocumentError = format.InvalidDocumentError

// FileNotFoundError is returned when a file is required to exist but does not.
type FileNotFoundError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

type options struct {
	strict     bool
	logHandler slog.Handler
}

// Option configures a [Container].
type Option func(*options)

// Strict requires every file to exist. Missing files are reported by [New]
// instead of being skipped.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// LogHandler configures the underlying slog.Handler used by the [Container].
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

type source struct {
	path   string
	format format.Format
}

// Container serves the merged definitions of a list of files.
//
// Files are loaded once, on first use. Definitions of later files
// override the definitions of earlier files.
type Container struct {
	log     *slog.Logger
	fsys    fs.FS
	sources []source
	strict  bool

	loadOnce sync.Once
	loadErr  error

	mu   sync.RWMutex
	defs container.DotMap
}

// New returns a [Container] for the given paths in fsys. Each path must
// end with one of the extensions .yaml, .yml, .json or .toml.
func New(fsys fs.FS, paths []string, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	srcs := make([]source, 0, len(paths))
	for _, p := range paths {
		f, err := format.FromPath(p)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, source{path: p, format: f})
	}

	if o.strict {
		for _, src := range srcs {
			_, err := fs.Stat(fsys, src.path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil, FileNotFoundError{Path: src.path}
			}
			if err != nil {
				return nil, err
			}
		}
	}

	c := &Container{
		log:     logging.New(o.logHandler),
		fsys:    fsys,
		sources: srcs,
		strict:  o.strict,
	}
	return c, nil
}

// Has implements the [container.Container] interface.
func (c *Container) Has(ctx context.Context, id string) (bool, error) {
	err := c.load(ctx)
	if err != nil {
		return false, container.ContainerError{Cause: err}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defs.Has(ctx, id)
}

// Get implements the [container.Container] interface.
func (c *Container) Get(ctx context.Context, id string) (any, error) {
	err := c.load(ctx)
	if err != nil {
		return nil, container.ContainerError{Cause: err}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defs.Get(ctx, id)
}

// Set implements the [container.Settable] interface. The value overrides
// whatever the files define for the exact id. The files are not modified.
func (c *Container) Set(ctx context.Context, id string, v any) error {
	err := c.load(ctx)
	if err != nil {
		return container.ContainerError{Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[id] = v
	return nil
}

func (c *Container) load(ctx context.Context) error {
	c.loadOnce.Do(func() {
		c.loadErr = c.readAll(ctx)
	})
	return c.loadErr
}

func (c *Container) readAll(ctx context.Context) error {
	spanCtx, span := otel.Tracer("file").Start(ctx, "Container.load", trace.WithAttributes(
		attribute.Int("num_of_files", len(c.sources)),
	))
	defer span.End()

	layers := make([]map[string]any, len(c.sources))

	g, gctx := errgroup.WithContext(spanCtx)
	for i, src := range c.sources {
		i, src := i, src
		g.Go(func() error {
			m, err := c.readFile(gctx, src)
			if err != nil {
				return err
			}
			layers[i] = m
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		c.log.ErrorContext(spanCtx, "failed to load files", logging.Error(err))
		return err
	}

	defs := merge.Merge(map[string]any{}, layers...)

	c.mu.Lock()
	c.defs = container.DotMap(defs)
	c.mu.Unlock()

	c.log.DebugContext(spanCtx, "loaded files", logging.Int("definitions", len(defs)))
	return nil
}

func (c *Container) readFile(ctx context.Context, src source) (map[string]any, error) {
	r := newFileReader(c.fsys, src.path)
	m, err := format.Decode(src.format, r)
	if errors.Is(err, fs.ErrNotExist) {
		if c.strict {
			return nil, FileNotFoundError{Path: src.path}
		}
		c.log.DebugContext(ctx, "skipping missing file", logging.String("path", src.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.path, err)
	}
	return m, nil
}
