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

	"github.com/google/btree"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Address is a key into the session's closure table: a small untagged
// counter for a function's generic entry point (see
// Engine.allocGenericAddress), or a tagged specialization handle, which
// compares > SpecializationThreshold by construction (see profile.go).
type Address uint64

// symbolEntry is one row of a Dylib's symbol table, ordered by name so
// -dumpjd output is deterministic.
type symbolEntry struct {
	name string
	addr Address
}

func (a symbolEntry) Less(than btree.Item) bool {
	return a.name < than.(symbolEntry).name
}

// MaterializeFunc lazily produces the native address for a symbol the
// first time it's looked up -- the materialization unit of spec.md §4.6.
type MaterializeFunc func() (Address, error)

// Dylib is this repo's stand-in for an ORC JITDylib: a name-addressed
// symbol table that fills in lazily on lookup miss, ported in spirit from
// original_source/main.cpp's MainJD, and scm/jit_entry.go's
// JITEntryPoint for the materialization-unit shape.
type Dylib struct {
	mu        sync.Mutex
	symbols   *btree.BTree
	pending   map[string]MaterializeFunc
	sessionID uuid.UUID
}

func newDylib(sessionID uuid.UUID) *Dylib {
	return &Dylib{symbols: btree.New(16), pending: make(map[string]MaterializeFunc), sessionID: sessionID}
}

// Define installs a resolved address immediately, used for the internal
// functions registered at startup (§4.5 DefineFunction/AddInternalFunctions).
func (d *Dylib) Define(name string, addr Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.symbols.ReplaceOrInsert(symbolEntry{name: name, addr: addr})
	delete(d.pending, name)
}

// DefineLazy registers a materialization unit for name without compiling
// it yet -- it only runs when something calls Lookup.
func (d *Dylib) DefineLazy(name string, mu MaterializeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[name] = mu
}

func (d *Dylib) resolved(name string) (Address, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolvedLocked(name)
}

func (d *Dylib) resolvedLocked(name string) (Address, bool) {
	item := d.symbols.Get(symbolEntry{name: name})
	if item == nil {
		return 0, false
	}
	return item.(symbolEntry).addr, true
}

// EnsureLazy registers mu for name unless name is already resolved or
// already has a pending materialization unit, atomically with that check
// -- this is what keeps two callers crossing the threshold for the same
// (fn, arg) in the same instant from registering two separate closures.
func (d *Dylib) EnsureLazy(name string, mu MaterializeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, resolved := d.resolvedLocked(name); resolved {
		return
	}
	if _, pending := d.pending[name]; pending {
		return
	}
	d.pending[name] = mu
}

// dump returns the symbol table in sorted order, for -dumpjd.
func (d *Dylib) dump() []symbolEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]symbolEntry, 0, d.symbols.Len())
	d.symbols.Ascend(func(item btree.Item) bool {
		out = append(out, item.(symbolEntry))
		return true
	})
	return out
}

// ExecutionSession owns the main Dylib and provides the single blocking
// entry point (Lookup) that the resolver calls through, mirroring
// original_source/main.cpp's class JIT / ExecutionSession pairing.
type ExecutionSession struct {
	RunID    uuid.UUID
	MainJD   *Dylib
	inflight singleflight.Group // resolves Open Question 1: coalesce concurrent materializations

	closuresMu sync.RWMutex
	Closures   map[Address]func(args []int64) int64
}

func NewExecutionSession() *ExecutionSession {
	id := uuid.New()
	return &ExecutionSession{
		RunID:    id,
		MainJD:   newDylib(id),
		Closures: make(map[Address]func(args []int64) int64),
	}
}

// defineClosure registers addr's callable body under a write lock.
func (es *ExecutionSession) defineClosure(addr Address, fn func(args []int64) int64) {
	es.closuresMu.Lock()
	es.Closures[addr] = fn
	es.closuresMu.Unlock()
}

// Lookup resolves name, blocking to run its materialization unit on first
// use. Concurrent callers for the same name share one materialization via
// singleflight, so exactly one compile happens and everyone observes the
// same address -- spec.md §4.6 step 8's "blocking lookup" contract.
func (es *ExecutionSession) Lookup(name string) (Address, error) {
	if addr, ok := es.MainJD.resolved(name); ok {
		return addr, nil
	}

	es.MainJD.mu.Lock()
	mu, ok := es.MainJD.pending[name]
	es.MainJD.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("specializer: unknown symbol %q", name)
	}

	v, err, _ := es.inflight.Do(name, func() (any, error) {
		// re-check: another caller may have finished between our first
		// resolved() check and taking the singleflight ticket.
		if addr, ok := es.MainJD.resolved(name); ok {
			return addr, nil
		}
		addr, err := mu()
		if err != nil {
			return nil, err
		}
		es.MainJD.Define(name, addr)
		if IsDebugFlag(FlagDumpDylib.Name) {
			es.dumpTo(name)
		}
		return addr, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(Address), nil
}

func (es *ExecutionSession) dumpTo(lastDefined string) {
	entries := es.MainJD.dump()
	fmt.Printf("[dumpjd] session=%s after defining %q:\n", es.RunID, lastDefined)
	for _, e := range entries {
		fmt.Printf("  %-40s %#x\n", e.name, uint64(e.addr))
	}
}
