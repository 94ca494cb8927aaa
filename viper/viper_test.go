// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package viper

import (
	"context"
	"strings"
	"testing"

	"github.com/z5labs/container"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestContainer(t *testing.T) {
	t.Run("will resolve nested keys", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		err := v.ReadConfig(strings.NewReader("db:\n  host: localhost\n"))
		if !assert.Nil(t, err) {
			return
		}

		c := New(v)

		ctx := context.Background()
		ok, err := c.Has(ctx, "db.host")
		if !assert.Nil(t, err) {
			return
		}
		assert.True(t, ok)

		host, err := c.Get(ctx, "DB.Host")
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, "localhost", host)
	})

	t.Run("will return a NotFoundError if the key is not set", func(t *testing.T) {
		c := New(viper.New())

		_, err := c.Get(context.Background(), "missing")

		var nerr container.NotFoundError
		if !assert.ErrorAs(t, err, &nerr) {
			return
		}
		assert.Equal(t, "missing", nerr.ID)
	})

	t.Run("will override other sources on set", func(t *testing.T) {
		v := viper.New()
		v.SetDefault("port", 8080)
		c := New(v)

		ctx := context.Background()
		err := c.Set(ctx, "port", 9090)
		if !assert.Nil(t, err) {
			return
		}

		port, err := c.Get(ctx, "port")
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, 9090, port)
	})

	t.Run("will serve as a layer of a Nested container", func(t *testing.T) {
		v := viper.New()
		v.SetDefault("log.level", "info")

		n := container.NewNested(
			map[string]any{"env": "prod"},
			container.Named("viper", New(v)),
			container.CheckNestedHas(true),
			container.HasCache(0),
		)

		ctx := context.Background()
		level, err := n.Get(ctx, "log.level")
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, "info", level)

		origin, ok := n.Origin("log.level")
		if !assert.True(t, ok) {
			return
		}
		assert.Equal(t, "viper", origin.Name())
	})
}
