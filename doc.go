// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package container provides composable key value containers for
// application configuration and dependency lookup.
//
// Every container implements [Container], a uniform view of "is this
// identifier known" and "what value is bound to it". Containers which can
// also be written to implement [Settable].
//
// # Containers
//
// [Map] is the simplest container, a plain map with exact key lookups.
// [DotMap] resolves dotted identifiers like "db.primary.host" against
// nested maps. Other packages adapt external sources: files (package file),
// Redis hashes (package redis), viper instances (package viper) and
// documents served over HTTP (package remote).
//
// # Composition
//
// [Nested] chains many containers behind a single facade:
//
//	n := container.NewNested(
//	    container.Map{"env": "prod"},
//	    container.With(files),
//	    container.Named("redis", rc),
//	    container.HasCache(100),
//	    container.CheckNestedHas(true),
//	)
//
//	host, err := n.Get(ctx, "db.host")
//
// Lookups consult the local definitions first and then every registered
// container in the order they were added. The first container holding the
// identifier wins. A [NotFoundError] from a registered container moves the
// lookup on to the next one while any other error aborts it.
//
// # Error Handling
//
// Errors are classified by kind rather than by the container which produced
// them. Use [IsNotFound] to detect missing identifiers and [IsContainerError]
// to detect any failure originating from a container.
package container
