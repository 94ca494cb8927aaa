// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"context"

	"github.com/z5labs/container/dotpath"
)

// Map is an ordinary map[string]any but implements the [Settable] interface.
// Identifiers are matched exactly.
type Map map[string]any

// Has implements the [Container] interface.
func (m Map) Has(_ context.Context, id string) (bool, error) {
	_, ok := m[id]
	return ok, nil
}

// Get implements the [Container] interface.
func (m Map) Get(_ context.Context, id string) (any, error) {
	v, ok := m[id]
	if !ok {
		return nil, NotFoundError{ID: id}
	}
	return v, nil
}

// Set implements the [Settable] interface. It never fails.
func (m Map) Set(_ context.Context, id string, v any) error {
	m[id] = v
	return nil
}

// DotMap is a read only [Container] over nested maps which resolves
// dotted identifiers e.g. "db.host" finds "host" inside of the "db" map.
// See package dotpath for the exact resolution rules.
type DotMap map[string]any

// Has implements the [Container] interface.
func (m DotMap) Has(_ context.Context, id string) (bool, error) {
	_, ok := dotpath.Find(map[string]any(m), id)
	return ok, nil
}

// Get implements the [Container] interface.
func (m DotMap) Get(_ context.Context, id string) (any, error) {
	v, ok := dotpath.Find(map[string]any(m), id)
	if !ok {
		return nil, NotFoundError{ID: id}
	}
	return v, nil
}
