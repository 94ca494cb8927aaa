// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package viper adapts a viper.Viper instance to a container.
package viper

import (
	"context"

	"github.com/z5labs/container"

	"github.com/spf13/viper"
)

// Container resolves identifiers as viper keys. Keys are case insensitive
// and nested keys are addressed with dots.
type Container struct {
	v *viper.Viper
}

// New returns a [Container] backed by v. A nil v uses the global viper instance.
func New(v *viper.Viper) *Container {
	if v == nil {
		v = viper.GetViper()
	}
	return &Container{v: v}
}

// Has implements the [container.Container] interface.
func (c *Container) Has(_ context.Context, id string) (bool, error) {
	return c.v.IsSet(id), nil
}

// Get implements the [container.Container] interface.
func (c *Container) Get(_ context.Context, id string) (any, error) {
	if !c.v.IsSet(id) {
		return nil, container.NotFoundError{ID: id}
	}
	return c.v.Get(id), nil
}

// Set implements the [container.Settable] interface. The value
// overrides every other viper source for id.
func (c *Container) Set(_ context.Context, id string, v any) error {
	c.v.Set(id, v)
	return nil
}
