// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package merge combines layered configuration definitions.
//
// Later layers override earlier ones. Nested maps are merged recursively
// and slices are concatenated. The default behaviour can be overridden per
// key by using a [Directive] as the value in a later layer.
package merge

// Directive controls how a single key is merged instead of
// being merged like an ordinary value.
type Directive interface {
	directive()
}

// Unset removes the key from the merged result.
type Unset struct{}

func (Unset) directive() {}

// Replace sets the key to Value as is, without recursively merging
// Value with what earlier layers defined for the key.
type Replace struct {
	Value any
}

func (Replace) directive() {}

// Merge returns a new map containing dst with every map in srcs merged
// on top of it, in order. None of the given maps are modified.
func Merge(dst map[string]any, srcs ...map[string]any) map[string]any {
	res := Resolve(dst)
	for _, src := range srcs {
		res = mergeMap(res, src)
	}
	return res
}

func mergeMap(res, src map[string]any) map[string]any {
	for k, v := range src {
		switch x := v.(type) {
		case Unset:
			delete(res, k)
		case Replace:
			res[k] = resolveValue(x.Value)
		default:
			old, exists := res[k]
			if !exists {
				res[k] = resolveValue(v)
				continue
			}
			res[k] = mergeValue(old, v)
		}
	}
	return res
}

func mergeValue(old, v any) any {
	switch x := v.(type) {
	case map[string]any:
		oldM, ok := old.(map[string]any)
		if !ok {
			return Resolve(x)
		}
		return mergeMap(oldM, x)
	case []any:
		oldS, ok := old.([]any)
		if !ok {
			return resolveSlice(x)
		}
		out := make([]any, 0, len(oldS)+len(x))
		out = append(out, oldS...)
		return append(out, resolveSlice(x)...)
	default:
		return v
	}
}

// Resolve returns a deep copy of m with every [Directive] applied as if m
// was merged onto an empty map: [Replace] values are unwrapped and [Unset]
// keys are dropped.
func Resolve(m map[string]any) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case Unset:
		case Replace:
			res[k] = resolveValue(x.Value)
		default:
			res[k] = resolveValue(v)
		}
	}
	return res
}

func resolveValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return Resolve(x)
	case []any:
		return resolveSlice(x)
	case Replace:
		return resolveValue(x.Value)
	default:
		return v
	}
}

func resolveSlice(xs []any) []any {
	out := make([]any, 0, len(xs))
	for _, x := range xs {
		if _, ok := x.(Unset); ok {
			continue
		}
		out = append(out, resolveValue(x))
	}
	return out
}
