// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"reflect"
	"runtime"
	"strings"
)

// MaxDependencies is the largest number of parameters a handler may declare
// after its event parameter.
const MaxDependencies = 10

// Handler is a user function bound to one event type together with the
// types it needs from Storage. Build one with Handle, Handle1..Handle10 or
// HandleFunc; the zero Handler is invalid.
type Handler struct {
	name  string
	event TypeKey
	deps  []TypeKey
	call  func(ev any, deps []any)
}

// Name returns the handler's diagnostic name.
func (h Handler) Name() string {
	return h.name
}

// Event returns the key of the event type the handler listens to.
func (h Handler) Event() TypeKey {
	return h.event
}

// Dependencies returns the keys resolved from Storage for each call, in
// parameter order. The returned slice is a copy.
func (h Handler) Dependencies() []TypeKey {
	deps := make([]TypeKey, len(h.deps))
	copy(deps, h.deps)
	return deps
}

// Named returns a copy of h with the given diagnostic name.
func (h Handler) Named(name string) Handler {
	h.name = name
	return h
}

// newHandler validates the parameter list and panics with a
// DUPLICATE_PARAMETER WiringError when any type appears twice, the event
// type included. Distinct keys are what make the resolved pointers disjoint.
func newHandler(fn any, event TypeKey, deps []TypeKey, call func(ev any, deps []any)) Handler {
	name := funcName(fn)
	if len(deps) > MaxDependencies {
		panic(&WiringError{Code: CodeInvalidHandler, Handler: name, Event: event, Detail: "too many parameters"})
	}
	seen := make(map[TypeKey]struct{}, len(deps)+1)
	seen[event] = struct{}{}
	for _, k := range deps {
		if _, dup := seen[k]; dup {
			panic(&WiringError{Code: CodeDuplicateParameter, Handler: name, Event: event, Type: k,
				Detail: "a handler cannot receive two references to the same stored value"})
		}
		seen[k] = struct{}{}
	}
	return Handler{name: name, event: event, deps: deps, call: call}
}

// invoke resolves one pointer per dependency from s and calls the handler.
// A dependency that cannot be resolved panics with UNRESOLVED_PARAMETER.
func (h Handler) invoke(s *Storage, ev any) {
	if h.call == nil {
		panic(&WiringError{Code: CodeInvalidHandler, Detail: "zero Handler"})
	}
	var args []any
	if len(h.deps) > 0 {
		args = make([]any, len(h.deps))
		for i, k := range h.deps {
			ptr, ok := s.resolve(k)
			if !ok {
				panic(&WiringError{Code: CodeUnresolvedParameter, Handler: h.name, Event: h.event, Type: k,
					Detail: "neither state nor a registered plugin"})
			}
			args[i] = ptr
		}
	}
	h.call(ev, args)
}

// HandleFunc builds a Handler from any func(*E, *A, ...) with up to
// MaxDependencies parameters after the event. It panics with INVALID_HANDLER
// when fn has another shape.
func HandleFunc(fn any) Handler {
	rv := reflect.ValueOf(fn)
	name := funcName(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		panic(&WiringError{Code: CodeInvalidHandler, Handler: name, Detail: "not a function"})
	}
	ft := rv.Type()
	if ft.NumIn() < 1 || ft.NumOut() != 0 || ft.IsVariadic() {
		panic(&WiringError{Code: CodeInvalidHandler, Handler: name,
			Detail: "want func(*Event, *Dep...) with no results"})
	}
	for i := range ft.NumIn() {
		in := ft.In(i)
		if in.Kind() != reflect.Pointer || in.Elem().Kind() == reflect.Pointer {
			panic(&WiringError{Code: CodeInvalidHandler, Handler: name, Type: keyOfType(in),
				Detail: "every parameter must be a single pointer"})
		}
	}
	event := keyOfType(ft.In(0))
	deps := make([]TypeKey, ft.NumIn()-1)
	for i := range deps {
		deps[i] = keyOfType(ft.In(i + 1))
	}
	return newHandler(fn, event, deps, func(ev any, args []any) {
		in := make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(ev))
		for _, a := range args {
			in = append(in, reflect.ValueOf(a))
		}
		rv.Call(in)
	})
}

func funcName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return "<invalid>"
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return "<unknown>"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
