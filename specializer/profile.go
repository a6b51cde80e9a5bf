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
	"sort"
	"sync"
)

// SpecializationThreshold is the call count at which the resolver stops
// counting and compiles a specialization, ported from original_source's
// specializer.h: #define SPECIALIZATION_THRESHOLD 100LU.
const SpecializationThreshold = 100

// compiledTag marks a ProfileTable value as a materialized handle rather
// than a call counter. Handles are allocated starting at
// SpecializationThreshold+1 (see nextHandle below), so any tagged value is
// guaranteed > SpecializationThreshold regardless of its numeric payload --
// this is the explicit Count|Compiled sum type spec.md's design notes
// recommend, expressed as a tag bit instead of a Go sum type so it can live
// directly in IntMap's plain uint64 value slot.
const compiledTag = uint64(1) << 63

// State is the decoded form of a ProfileTable entry.
type State struct {
	Compiled bool
	Count    uint64 // valid when !Compiled
	Handle   uint64 // valid when Compiled
}

func (s State) String() string {
	if s.Compiled {
		return fmt.Sprintf("compiled(handle=%#x)", s.Handle)
	}
	return fmt.Sprintf("count(%d)", s.Count)
}

// ProfileTable tracks, per (function, tracked-argument-value), either a
// call counter or a materialized specialization handle: one IntMap per
// function id, keyed by the raw argument value, so (fnID, arg) is always
// recoverable for Dump's per-entry output rather than being folded into a
// single lossy combined key. Per spec.md §5, concurrent resolver
// invocations can race on the same entry, so every operation is guarded by
// a single coarse mutex -- table accesses are already far cheaper than the
// specialization they gate, so one lock is enough (the same "one mutex, no
// fine-grained sharding" call memcp makes for its own simpler shared maps).
type ProfileTable struct {
	mu         sync.Mutex
	byFunc     map[uint32]*IntMap
	nextHandle uint64
}

func NewProfileTable() *ProfileTable {
	return &ProfileTable{byFunc: make(map[uint32]*IntMap), nextHandle: SpecializationThreshold + 1}
}

func (p *ProfileTable) tableFor(fnID uint32) *IntMap {
	t, ok := p.byFunc[fnID]
	if !ok {
		t = NewIntMap()
		p.byFunc[fnID] = t
	}
	return t
}

func decode(v uint64) State {
	if v&compiledTag != 0 {
		return State{Compiled: true, Handle: v &^ compiledTag}
	}
	return State{Count: v}
}

// Lookup returns the current state for (fnID, arg), defaulting to a zero
// counter if never seen.
func (p *ProfileTable) Lookup(fnID uint32, arg uint64) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.tableFor(fnID).Get(arg)
	if !ok {
		return State{Count: 0}
	}
	return decode(v)
}

// Increment bumps the call counter for (fnID, arg) by one and returns the
// new count. Panics if the entry has already been compiled -- that would
// mean the resolver raced past its own invariant (see resolver.go).
func (p *ProfileTable) Increment(fnID uint32, arg uint64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.tableFor(fnID)
	v, ok := t.Get(arg)
	if ok && v&compiledTag != 0 {
		panic("specializer: profile table corrupted: increment on compiled entry")
	}
	v++
	t.Set(arg, v)
	return v
}

// MarkCompiled stores a materialization handle for (fnID, arg), allocating
// a fresh tagged handle id and returning it. If the entry was already
// marked compiled (a second caller lost the singleflight race but still
// reached here -- it shouldn't, but defensively), the existing handle is
// returned unchanged instead of allocating a duplicate.
func (p *ProfileTable) MarkCompiled(fnID uint32, arg uint64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.tableFor(fnID)
	if v, ok := t.Get(arg); ok && v&compiledTag != 0 {
		return v
	}
	h := p.nextHandle
	p.nextHandle++
	tagged := h | compiledTag
	t.Set(arg, tagged)
	return tagged
}

// IsHandle reports whether v (as returned by MarkCompiled) is a compiled
// handle rather than a raw count.
func IsHandle(v uint64) bool { return v&compiledTag != 0 }

// Len returns the total number of tracked (fnID, arg) entries across all
// functions.
func (p *ProfileTable) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.byFunc {
		n += t.Len()
	}
	return n
}

// Dump calls fn once per tracked entry, in fnID order, for -dumpjd-style
// reporting.
func (p *ProfileTable) Dump(fn func(fnID uint32, arg uint64, state string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]uint32, 0, len(p.byFunc))
	for id := range p.byFunc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p.byFunc[id].Range(func(arg, v uint64) {
			fn(id, arg, decode(v).String())
		})
	}
}
