// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import "context"

// Container maps string identifiers to values.
type Container interface {
	// Has reports whether a value is bound to id.
	Has(ctx context.Context, id string) (bool, error)

	// Get returns the value bound to id. A [NotFoundError]
	// is returned if there is none.
	Get(ctx context.Context, id string) (any, error)
}

// Settable is a Container which values can be written to.
type Settable interface {
	Container

	// Set binds v to id, replacing any previously bound value.
	Set(ctx context.Context, id string, v any) error
}
