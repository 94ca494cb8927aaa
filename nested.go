// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"context"
	"log/slog"

	"github.com/z5labs/container/internal/logging"
)

type nestedOptions struct {
	logHandler     slog.Handler
	cacheEnabled   bool
	cacheCapacity  int
	checkNestedHas bool
	saveIfFound    bool
	adapters       []adapter
}

// NestedOption configures a [Nested] container.
type NestedOption func(*nestedOptions)

// LogHandler configures the underlying slog.Handler.
func LogHandler(h slog.Handler) NestedOption {
	return func(no *nestedOptions) {
		no.logHandler = h
	}
}

// HasCache enables remembering which layer resolved an identifier so that
// subsequent lookups go straight to it. At most capacity identifiers are
// remembered. A capacity less than one uses [DefaultHasCacheCapacity].
func HasCache(capacity int) NestedOption {
	return func(no *nestedOptions) {
		no.cacheEnabled = true
		no.cacheCapacity = capacity
	}
}

// CheckNestedHas configures whether Has consults the registered
// containers or only the local definitions.
func CheckNestedHas(check bool) NestedOption {
	return func(no *nestedOptions) {
		no.checkNestedHas = check
	}
}

// SaveIfFound configures whether values found in registered containers
// are copied into the local definitions.
func SaveIfFound(save bool) NestedOption {
	return func(no *nestedOptions) {
		no.saveIfFound = save
	}
}

// With registers c with the [Nested] container.
func With(c Container) NestedOption {
	return func(no *nestedOptions) {
		no.adapters = append(no.adapters, adapter{c: c})
	}
}

// Named registers c under name with the [Nested] container.
func Named(name string, c Container) NestedOption {
	return func(no *nestedOptions) {
		no.adapters = append(no.adapters, adapter{name: name, named: true, c: c})
	}
}

type adapter struct {
	name  string
	named bool
	c     Container
}

// Origin describes which layer of a [Nested] container resolved an identifier.
type Origin struct {
	local bool
	index int
	name  string
}

// Local reports whether the identifier was resolved by the local definitions.
func (o Origin) Local() bool {
	return o.local
}

// Index returns the registration position of the container which resolved
// the identifier or -1 for the local definitions.
func (o Origin) Index() int {
	return o.index
}

// Name returns the name of the container which resolved the identifier,
// if it was registered with one.
func (o Origin) Name() string {
	return o.name
}

// Nested is a [Settable] container backed by local definitions and an
// ordered collection of other containers.
//
// Lookups consult the local definitions first and then each registered
// container in registration order. Optionally, the layer which resolved an
// identifier is remembered so the next lookup of it skips straight to that
// layer.
//
// A Nested container is not safe for concurrent use.
type Nested struct {
	log *slog.Logger

	local    Map
	adapters []adapter
	names    map[string]int
	cache    *originCache

	checkNestedHas bool
	saveIfFound    bool
}

// NewNested returns a Nested container with defs as its local definitions.
// The given map is copied.
func NewNested(defs map[string]any, opts ...NestedOption) *Nested {
	no := &nestedOptions{
		logHandler: logging.Discard{},
	}
	for _, opt := range opts {
		opt(no)
	}

	log := logging.New(no.logHandler)
	n := &Nested{
		log:            log,
		local:          make(Map, len(defs)),
		names:          make(map[string]int),
		cache:          newOriginCache(log),
		checkNestedHas: no.checkNestedHas,
		saveIfFound:    no.saveIfFound,
	}
	for k, v := range defs {
		n.local[k] = v
	}
	n.cache.configure(no.cacheEnabled, no.cacheCapacity)

	for _, a := range no.adapters {
		n.add(a)
	}
	return n
}

// SetHasCache enables or disables the origin cache and sets its capacity.
// A capacity less than one keeps the current capacity. Disabling the cache
// forgets every remembered origin.
func (n *Nested) SetHasCache(enabled bool, capacity int) {
	n.cache.configure(enabled, capacity)
}

// SetCheckNestedHas configures whether Has consults the registered containers.
func (n *Nested) SetCheckNestedHas(check bool) {
	n.checkNestedHas = check
}

// SetSaveIfFound configures whether values found in registered containers
// are copied into the local definitions.
func (n *Nested) SetSaveIfFound(save bool) {
	n.saveIfFound = save
}

// Add registers c after all previously registered containers.
func (n *Nested) Add(c Container) {
	n.add(adapter{c: c})
}

// AddNamed registers c under name. If a container is already registered
// under name it is replaced and c takes over its position.
func (n *Nested) AddNamed(name string, c Container) {
	n.add(adapter{name: name, named: true, c: c})
}

func (n *Nested) add(a adapter) {
	if !a.named {
		n.adapters = append(n.adapters, a)
		return
	}
	if slot, ok := n.names[a.name]; ok {
		n.adapters[slot] = a
		return
	}
	n.names[a.name] = len(n.adapters)
	n.adapters = append(n.adapters, a)
}

// Container returns the container registered under name.
func (n *Nested) Container(name string) (Container, error) {
	slot, ok := n.names[name]
	if !ok {
		return nil, ContainerNotFoundError{Name: name}
	}
	return n.adapters[slot].c, nil
}

// Origin returns the remembered origin of id, if any.
func (n *Nested) Origin(id string) (Origin, bool) {
	slot, ok := n.cache.lookup(id)
	if !ok {
		return Origin{}, false
	}
	if slot == localSlot {
		return Origin{local: true, index: localSlot}, true
	}
	return Origin{index: slot, name: n.adapters[slot].name}, true
}

// CacheLen returns the number of remembered origins.
func (n *Nested) CacheLen() int {
	return n.cache.len()
}

// Has implements the [Container] interface.
func (n *Nested) Has(ctx context.Context, id string) (bool, error) {
	if _, ok := n.cache.lookup(id); ok {
		return true, nil
	}

	if _, ok := n.local[id]; ok {
		n.cache.record(id, localSlot)
		return true, nil
	}

	if !n.checkNestedHas {
		return false, nil
	}

	for slot, a := range n.adapters {
		ok, err := a.c.Has(ctx, id)
		if err != nil {
			n.log.ErrorContext(ctx, "container failed to check for id", logging.ID(id), logging.Int("index", slot), logging.Error(err))
			return false, err
		}
		if ok {
			n.cache.record(id, slot)
			return true, nil
		}
	}
	return false, nil
}

// Get implements the [Container] interface.
func (n *Nested) Get(ctx context.Context, id string) (any, error) {
	if slot, ok := n.cache.lookup(id); ok {
		if slot == localSlot {
			return n.local.Get(ctx, id)
		}
		return n.adapters[slot].c.Get(ctx, id)
	}

	if v, err := n.local.Get(ctx, id); err == nil {
		n.cache.record(id, localSlot)
		return v, nil
	}

	for slot, a := range n.adapters {
		v, err := a.c.Get(ctx, id)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			n.log.ErrorContext(ctx, "container failed to get id", logging.ID(id), logging.Int("index", slot), logging.Error(err))
			return nil, err
		}

		if n.saveIfFound {
			n.local[id] = v
			slot = localSlot
		}
		n.cache.record(id, slot)
		return v, nil
	}
	return nil, NotFoundError{ID: id}
}

// Set implements the [Settable] interface. The value is always stored in
// the local definitions and then propagated to every registered [Settable]
// container. Container errors, see [IsContainerError], returned during
// propagation are logged and skipped while any other error is returned
// immediately.
func (n *Nested) Set(ctx context.Context, id string, v any) error {
	n.local[id] = v
	n.cache.record(id, localSlot)

	for slot, a := range n.adapters {
		s, ok := a.c.(Settable)
		if !ok {
			continue
		}

		err := s.Set(ctx, id, v)
		if err == nil {
			continue
		}
		if !IsContainerError(err) {
			return err
		}
		n.log.WarnContext(ctx, "failed to propagate value to container", logging.ID(id), logging.Int("index", slot), logging.Error(err))
	}
	return nil
}
