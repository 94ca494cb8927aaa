// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package container

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeError occurs when a resolved value can not be decoded
// into the value given to [Decode].
type DecodeError struct {
	ID    string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode '%s': %s", e.ID, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Decode resolves id from c and decodes the value into v, which must be a
// pointer. Struct fields are matched using the "config" tag.
//
// Values are coerced to the field types the way adapters deliver them.
// Strings, e.g. from Redis hashes or environment variables, are parsed into
// booleans, numbers, [time.Duration] and [encoding.TextUnmarshaler]
// implementations. Numbers decoded from YAML, JSON or TOML documents are
// accepted as [time.Duration] nanoseconds.
func Decode(ctx context.Context, c Container, id string, v any) error {
	val, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "config",
		Result:     v,
		DecodeHook: mapstructure.DecodeHookFuncValue(coerce),
	})
	if err != nil {
		return DecodeError{ID: id, Cause: err}
	}

	err = dec.Decode(val)
	if err != nil {
		return DecodeError{ID: id, Cause: err}
	}
	return nil
}

// TypeCoercionError occurs when a value can not be coerced
// into the type of the field it is decoded into.
type TypeCoercionError struct {
	From  string
	To    string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.From, e.To, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func coerce(from, to reflect.Value) (any, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, nil
	}

	var (
		v   any
		ok  bool
		err error
	)
	switch {
	case from.Kind() == reflect.String:
		v, ok, err = coerceString(from.String(), to.Type())
	case to.Type() == durationType:
		v, ok = coerceNanoseconds(from)
	}
	if err != nil {
		return nil, TypeCoercionError{
			From:  from.Type().String(),
			To:    to.Type().String(),
			Cause: err,
		}
	}
	if !ok {
		return from.Interface(), nil
	}
	return v, nil
}

func coerceString(s string, t reflect.Type) (any, bool, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
		if err != nil {
			return nil, true, err
		}
		return ptr.Elem().Interface(), true, nil
	}
	if t == durationType {
		d, err := time.ParseDuration(s)
		return d, true, err
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		return b, true, err
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, t.Bits())
		if err != nil {
			return nil, true, err
		}
		return reflect.ValueOf(n).Convert(t).Interface(), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 0, t.Bits())
		if err != nil {
			return nil, true, err
		}
		return reflect.ValueOf(n).Convert(t).Interface(), true, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return nil, true, err
		}
		return reflect.ValueOf(f).Convert(t).Interface(), true, nil
	default:
		return nil, false, nil
	}
}

func coerceNanoseconds(from reflect.Value) (time.Duration, bool) {
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(from.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(from.Uint()), true
	case reflect.Float32, reflect.Float64:
		return time.Duration(int64(from.Float())), true
	default:
		return 0, false
	}
}
