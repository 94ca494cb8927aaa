// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		Name  string
		In    string
		Chain Chain
	}{
		{
			Name:  "empty string",
			In:    "",
			Chain: Chain{},
		},
		{
			Name:  "single segment",
			In:    "hello",
			Chain: Chain{Name("hello")},
		},
		{
			Name:  "multiple segments",
			In:    "db.primary.host",
			Chain: Chain{Name("db"), Name("primary"), Name("host")},
		},
		{
			Name:  "empty segments are kept",
			In:    "a..b",
			Chain: Chain{Name("a"), Name(""), Name("b")},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			chain := Parse(testCase.In)
			if !assert.Equal(t, testCase.Chain, chain) {
				return
			}
			if !assert.Equal(t, testCase.In, chain.Key()) {
				return
			}
		})
	}
}

func TestChain_Split(t *testing.T) {
	t.Run("will clamp the split point", func(t *testing.T) {
		t.Run("if it is out of range", func(t *testing.T) {
			chain := Parse("a.b")

			prefix, suffix := chain.Split(5)
			if !assert.Equal(t, "a.b", prefix.Key()) {
				return
			}
			if !assert.Empty(t, suffix) {
				return
			}

			prefix, suffix = chain.Split(-1)
			if !assert.Empty(t, prefix) {
				return
			}
			if !assert.Equal(t, "a.b", suffix.Key()) {
				return
			}
		})
	})

	t.Run("will split the chain into prefix and suffix", func(t *testing.T) {
		prefix, suffix := Parse("a.b.c").Split(1)
		if !assert.Equal(t, "a", prefix.Key()) {
			return
		}
		if !assert.Equal(t, "b.c", suffix.Key()) {
			return
		}
	})
}
