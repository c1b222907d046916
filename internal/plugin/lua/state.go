// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package lua runs script plugins in sandboxed gopher-lua states.
package lua

import (
	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

type library struct {
	name string
	open lua.LGFunction
}

// safeLibraries: base, table, string, math. os, io, debug and package are
// never opened.
func safeLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// blockedGlobals reach the filesystem or load code from strings.
var blockedGlobals = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// blockedMath use the process-wide generator; scripts call hearth.random,
// which draws from the App's seeded source.
var blockedMath = []string{"random", "randomseed"}

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	libraries     []library
	callStackSize int
}

// NewStateFactory creates a factory for states with the safe libraries.
func NewStateFactory() *StateFactory {
	return &StateFactory{libraries: safeLibraries(), callStackSize: 256}
}

// NewState creates a fresh sandboxed state. The caller closes it.
func (f *StateFactory) NewState() (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: f.callStackSize,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.Code("LUA_LIBRARY").With("library", lib.name).Wrapf(err, "failed to open library %s", lib.name)
		}
	}

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		for _, name := range blockedMath {
			math.RawSetString(name, lua.LNil)
		}
	}
	return L, nil
}
