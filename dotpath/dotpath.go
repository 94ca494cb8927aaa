// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package dotpath resolves dotted identifiers against nested maps and slices.
//
// A dotted identifier is matched against the longest key first. Given the
// identifier "a.b.c", [Find] first looks for the literal key "a.b.c" and
// returns its value if present. Otherwise every shorter prefix ("a.b", then
// "a") which exists is remembered together with the remaining suffix and
// the search recurses into the matched values in that order, longest prefix
// first. The first value found wins.
package dotpath

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/z5labs/container/key"
)

type variant struct {
	suffix string
	branch any
}

// Find looks up the dotted identifier k in root. It reports false if k is
// empty, root is empty or root is not a map or slice.
func Find(root any, k string) (any, bool) {
	if k == "" || size(root) == 0 {
		return nil, false
	}

	chain := key.Parse(k)
	if v, ok := lookup(root, chain.Key()); ok {
		return v, true
	}

	var variants []variant
	for n := len(chain) - 1; n > 0; n-- {
		prefix, suffix := chain.Split(n)
		branch, ok := lookup(root, prefix.Key())
		if !ok {
			continue
		}
		variants = append(variants, variant{
			suffix: suffix.Key(),
			branch: branch,
		})
	}

	for _, v := range variants {
		if found, ok := Find(v.branch, v.suffix); ok {
			return found, true
		}
	}
	return nil, false
}

// size returns the number of entries in a map or slice and
// zero for anything else.
func size(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case map[string]any:
		return len(x)
	case []any:
		return len(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len()
	default:
		return 0
	}
}

func lookup(root any, k string) (any, bool) {
	switch x := root.(type) {
	case map[string]any:
		v, ok := x[k]
		return v, ok
	case []any:
		i, ok := index(k, len(x))
		if !ok {
			return nil, false
		}
		return x[i], true
	}

	rv := reflect.ValueOf(root)
	switch rv.Kind() {
	case reflect.Map:
		return lookupMap(rv, k)
	case reflect.Slice, reflect.Array:
		i, ok := index(k, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}

func lookupMap(rv reflect.Value, k string) (any, bool) {
	if rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}

	// maps decoded from YAML may carry non string keys e.g. map[any]any{1: "one"}
	iter := rv.MapRange()
	for iter.Next() {
		if fmt.Sprint(iter.Key().Interface()) == k {
			return iter.Value().Interface(), true
		}
	}
	return nil, false
}

// index parses k as a canonical decimal index in [0, n).
func index(k string, n int) (int, bool) {
	i, err := strconv.Atoi(k)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	if strconv.Itoa(i) != k {
		return 0, false
	}
	return i, true
}
