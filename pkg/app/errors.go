// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package app

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes for build and run failures.
const (
	CodeDuplicatePlugin     = "DUPLICATE_PLUGIN"
	CodeInvalidPlugin       = "INVALID_PLUGIN"
	CodeStateConflict       = "STATE_CONFLICT"
	CodeConfigApply         = "CONFIG_APPLY"
	CodeLateConfigDeferred  = "LATE_CONFIG_DEFERRED"
	CodeSetupFailed         = "SETUP_FAILED"
	CodeMissingPlugin       = "MISSING_PLUGIN"
	CodeUnresolvedParameter = "UNRESOLVED_PARAMETER"
	CodeRunnerFailed        = "RUNNER_FAILED"
)

// Codes carried by WiringError panics. These indicate a defect in how a
// program was wired, not a runtime condition.
const (
	CodeDuplicateParameter = "DUPLICATE_PARAMETER"
	CodeInvalidHandler     = "INVALID_HANDLER"
	CodeSealed             = "SEALED"
	CodeBuilderState       = "BUILDER_STATE"
)

// WiringError is the panic value for programmer errors: handlers with
// repeated or non-pointer parameters, parameters that cannot be resolved at
// dispatch time, and registry mutation after the App has started.
type WiringError struct {
	Code    string
	Handler string
	Type    TypeKey
	Event   TypeKey
	Detail  string
}

func (e *WiringError) Error() string {
	msg := fmt.Sprintf("hearth: %s", e.Code)
	if e.Handler != "" {
		msg += fmt.Sprintf(": handler %s", e.Handler)
	}
	if !e.Event.IsZero() {
		msg += fmt.Sprintf(" (event %s)", e.Event)
	}
	if !e.Type.IsZero() {
		msg += fmt.Sprintf(": type %s", e.Type)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ErrDuplicatePlugin creates an error for a second plugin of the same type.
func ErrDuplicatePlugin(key TypeKey) error {
	return oops.Code(CodeDuplicatePlugin).
		With("type", key.String()).
		Errorf("plugin %s already registered", key)
}

// ErrInvalidPlugin creates an error for a nil or doubly indirect plugin value.
func ErrInvalidPlugin(v any) error {
	return oops.Code(CodeInvalidPlugin).
		With("value_type", fmt.Sprintf("%T", v)).
		Errorf("plugin value %T cannot be stored", v)
}

// ErrMissingPlugin creates an error for a setup-time lookup that found nothing.
func ErrMissingPlugin(key TypeKey) error {
	return oops.Code(CodeMissingPlugin).
		With("type", key.String()).
		Errorf("plugin %s is not registered", key)
}

func errStateConflict(key TypeKey) error {
	return oops.Code(CodeStateConflict).
		With("type", key.String()).
		Errorf("state type %s is also registered as a plugin", key)
}

func errConfigApply(key TypeKey, cause error) error {
	return oops.Code(CodeConfigApply).
		With("config", key.String()).
		Wrapf(cause, "apply config %s", key)
}

func errLateConfigDeferred(key TypeKey) error {
	return oops.Code(CodeLateConfigDeferred).
		With("config", key.String()).
		Errorf("late config %s added while resolving late configs", key)
}

func errSetup(cause error) error {
	return oops.Code(CodeSetupFailed).Wrapf(cause, "setup")
}

func errUnresolved(handler string, event, key TypeKey) error {
	return oops.Code(CodeUnresolvedParameter).
		With("handler", handler).
		With("event", event.String()).
		With("type", key.String()).
		Errorf("handler %s needs %s, which is neither state nor a registered plugin", handler, key)
}

func errRunner(cause error) error {
	return oops.Code(CodeRunnerFailed).Wrapf(cause, "runner")
}
