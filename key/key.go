// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for dotted container identifiers.
package key

import (
	"strings"
)

// Separator joins the segments of a dotted identifier.
const Separator = "."

// Keyer is a common interface all identifier types must implement.
type Keyer interface {
	Key() string
}

// Name represents a single segment of an identifier.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Chain represents nested segments e.g. "db.primary.host".
type Chain []Keyer

// Parse splits the dotted identifier s into a Chain. An empty
// string results in an empty Chain.
func Parse(s string) Chain {
	if s == "" {
		return Chain{}
	}
	parts := strings.Split(s, Separator)
	chain := make(Chain, len(parts))
	for i, part := range parts {
		chain[i] = Name(part)
	}
	return chain
}

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := range k {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, Separator)
}

// Split returns the first n segments and the remaining segments of the chain.
func (k Chain) Split(n int) (prefix Chain, suffix Chain) {
	if n < 0 {
		n = 0
	}
	if n > len(k) {
		n = len(k)
	}
	return k[:n], k[n:]
}
