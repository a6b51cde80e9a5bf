/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package specializer

import (
	"fmt"
	"sync"

	"github.com/launix-de/hotspec/ir"
)

// Engine ties the module, the profile table, and the execution session
// together: it is the thing cmd/hotspec constructs and calls into.
// Grounded on original_source/main.cpp's class JIT, which plays the same
// role (owns the ExecutionSession, the source module, and the entry point
// used to run "main").
type Engine struct {
	Module  *ir.Module
	ES      *ExecutionSession
	Profile *ProfileTable

	idsMu sync.Mutex
	ids   map[string]uint32
	nextID uint32

	genericMu   sync.Mutex
	nextGeneric uint64 // allocator for untagged (non-specialized) addresses

	// FaultInjector, if set, is consulted before every materialization
	// attempt and can force it to fail by mangled name -- a test-only hook
	// for exercising spec.md §8 S6 (transient compile failure), since a
	// real mmap/mprotect failure isn't something a unit test can trigger
	// on demand.
	FaultInjector func(mangled string) error
}

// NewEngine wires up an Engine for m: assigns every function a stable id,
// and registers a generic (unspecialized) entry point for each one so
// below-threshold and untracked calls always have somewhere to go.
func NewEngine(m *ir.Module) *Engine {
	eng := &Engine{
		Module:  m,
		ES:      NewExecutionSession(),
		Profile: NewProfileTable(),
		ids:     make(map[string]uint32),
	}
	for _, f := range m.Functions() {
		eng.idFor(f.Name)
		f := f // capture
		addr := eng.allocGenericAddress()
		eng.ES.MainJD.Define(f.Name, addr)
		eng.ES.defineClosure(addr, func(args []int64) int64 {
			return eng.interpret(f, args)
		})
	}
	return eng
}

func (eng *Engine) idFor(name string) uint32 {
	eng.idsMu.Lock()
	defer eng.idsMu.Unlock()
	if id, ok := eng.ids[name]; ok {
		return id
	}
	id := eng.nextID
	eng.nextID++
	eng.ids[name] = id
	return id
}

func (eng *Engine) allocGenericAddress() Address {
	eng.genericMu.Lock()
	defer eng.genericMu.Unlock()
	eng.nextGeneric++
	return Address(eng.nextGeneric) // top bit never set: below SpecializationThreshold's tag space
}

// Call runs the named module-level function with args and returns its
// result. If the function is a tracked specialization candidate, the call
// is profiled exactly like any other call site the instrumentation pass
// would have rewritten -- an external caller entering a tracked function
// is indistinguishable, from the resolver's point of view, from a call
// site inside the module, so it goes through the same resolve() path
// instead of always landing on the generic entry.
func (eng *Engine) Call(name string, args []int64) (int64, error) {
	fn := eng.Module.Lookup(name)
	if fn == nil {
		return 0, fmt.Errorf("specializer: unknown function %q", name)
	}
	var addr Address
	var err error
	if fn.TrackedArg >= 0 {
		addr = eng.resolve(fn, args)
	} else {
		addr, err = eng.ES.Lookup(name)
		if err != nil {
			return 0, fmt.Errorf("specializer: %w", err)
		}
	}
	return eng.invoke(addr, args), nil
}

func (eng *Engine) invoke(addr Address, args []int64) int64 {
	eng.ES.closuresMu.RLock()
	fn, ok := eng.ES.Closures[addr]
	eng.ES.closuresMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("specializer: address %#x has no registered closure", uint64(addr)))
	}
	return fn(args)
}
