// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import "reflect"

// TypeKey identifies a concrete type. T and *T share the same key.
type TypeKey struct {
	t reflect.Type
}

// KeyOf returns the TypeKey for T.
func KeyOf[T any]() TypeKey {
	return keyOfType(reflect.TypeFor[T]())
}

// KeyOfValue returns the TypeKey of v's dynamic type.
func KeyOfValue(v any) TypeKey {
	if v == nil {
		return TypeKey{}
	}
	return keyOfType(reflect.TypeOf(v))
}

func keyOfType(t reflect.Type) TypeKey {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return TypeKey{t: t}
}

// IsZero reports whether k identifies no type.
func (k TypeKey) IsZero() bool {
	return k.t == nil
}

// Type returns the underlying reflect.Type.
func (k TypeKey) Type() reflect.Type {
	return k.t
}

func (k TypeKey) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}

// cellOf returns the key for v and a pointer to a value of that type.
// A pointer argument is used as the cell itself; any other value is copied
// into a new allocation.
func cellOf(v any) (TypeKey, any, bool) {
	if v == nil {
		return TypeKey{}, nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Pointer {
			return TypeKey{}, nil, false
		}
		return TypeKey{t: rv.Type().Elem()}, v, true
	}
	cell := reflect.New(rv.Type())
	cell.Elem().Set(rv)
	return TypeKey{t: rv.Type()}, cell.Interface(), true
}
