// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

package plugin

// Error codes returned by this package.
const (
	CodeInvalidManifest = "PLUGIN_INVALID_MANIFEST"
	CodeIncompatible    = "PLUGIN_INCOMPATIBLE"
	CodeSchema          = "PLUGIN_SCHEMA"
	CodeNotLoaded       = "PLUGIN_NOT_LOADED"
	CodeHostClosed      = "PLUGIN_HOST_CLOSED"
	CodeScript          = "PLUGIN_SCRIPT"
)
