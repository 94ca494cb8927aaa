// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_Get(t *testing.T) {
	t.Run("will return a NotFoundError", func(t *testing.T) {
		t.Run("if the id is not present", func(t *testing.T) {
			m := Map{"hello": "world"}

			_, err := m.Get(context.Background(), "goodbye")

			var nferr NotFoundError
			if !assert.ErrorAs(t, err, &nferr) {
				return
			}
			if !assert.Equal(t, "goodbye", nferr.ID) {
				return
			}
		})
	})

	t.Run("will return the value", func(t *testing.T) {
		t.Run("if the id is bound to nil", func(t *testing.T) {
			m := Map{"hello": nil}

			ok, err := m.Has(context.Background(), "hello")
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, ok) {
				return
			}

			v, err := m.Get(context.Background(), "hello")
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Nil(t, v) {
				return
			}
		})

		t.Run("if the id contains dots", func(t *testing.T) {
			m := Map{"db.host": "localhost"}

			v, err := m.Get(context.Background(), "db.host")
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "localhost", v) {
				return
			}
		})
	})
}

func TestMap_Set(t *testing.T) {
	t.Run("will overwrite existing values", func(t *testing.T) {
		m := Map{"hello": "world"}

		err := m.Set(context.Background(), "hello", "bob")
		if !assert.Nil(t, err) {
			return
		}

		v, err := m.Get(context.Background(), "hello")
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "bob", v) {
			return
		}
	})
}

func TestDotMap_Get(t *testing.T) {
	t.Run("will return a NotFoundError", func(t *testing.T) {
		t.Run("if the path can not be resolved", func(t *testing.T) {
			m := DotMap{"a": 1}

			ok, err := m.Has(context.Background(), "x.y")
			if !assert.Nil(t, err) {
				return
			}
			if !assert.False(t, ok) {
				return
			}

			_, err = m.Get(context.Background(), "x.y")
			if !assert.True(t, IsNotFound(err)) {
				return
			}
		})
	})

	t.Run("will resolve nested values", func(t *testing.T) {
		m := DotMap{
			"db": map[string]any{
				"host": "localhost",
			},
		}

		v, err := m.Get(context.Background(), "db.host")
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "localhost", v) {
			return
		}
	})
}
