// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"errors"
	"fmt"
)

type containerError interface {
	error
	isContainerError()
}

// NotFoundError is returned when no value is bound to an identifier.
type NotFoundError struct {
	ID string
}

// Error implements the [builtin.error] interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("no entry found for '%s'", e.ID)
}

func (NotFoundError) isContainerError() {}

// ContainerError represents a failure inside of a container e.g. the
// underlying storage being unreachable.
type ContainerError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ContainerError) Error() string {
	return fmt.Sprintf("container failure: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ContainerError) Unwrap() error {
	return e.Cause
}

func (ContainerError) isContainerError() {}

// ContainerNotFoundError is returned when no container is
// registered under a name.
type ContainerNotFoundError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e ContainerNotFoundError) Error() string {
	return fmt.Sprintf("no container with name '%s' found", e.Name)
}

func (ContainerNotFoundError) isContainerError() {}

// ConnectionError is returned when a container is constructed
// with a connection it can not use.
type ConnectionError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConnectionError) Error() string {
	return fmt.Sprintf("invalid container connection: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConnectionError) Unwrap() error {
	return e.Cause
}

func (ConnectionError) isContainerError() {}

// IsNotFound reports whether any error in err's tree is a [NotFoundError].
func IsNotFound(err error) bool {
	var nferr NotFoundError
	return errors.As(err, &nferr)
}

// IsContainerError reports whether any error in err's tree is one of
// [NotFoundError], [ContainerError], [ContainerNotFoundError]
// or [ConnectionError].
func IsContainerError(err error) bool {
	var cerr containerError
	return errors.As(err, &cerr)
}
