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

import "github.com/launix-de/hotspec/ir"

// resolve implements JITResolveCall's three cases, ported from
// original_source/specializer.h's doc comment above that function:
//
//  1. callee is not a tracked function: always run the generic entry.
//  2. callee is tracked but the tracked argument's call count for this
//     exact value hasn't reached SpecializationThreshold yet: bump the
//     count, run the generic entry.
//  3. the count has reached the threshold: a specialization either
//     already exists (reuse its handle) or needs to be materialized now
//     (compile, publish, then reuse).
func (eng *Engine) resolve(callee *ir.Function, args []int64) Address {
	logf(FlagDebugLoads, "resolve %s(%v)", callee.Name, args)

	if callee.TrackedArg < 0 || callee.TrackedArg >= len(args) {
		addr, err := eng.ES.Lookup(callee.Name)
		if err != nil {
			panic("specializer: " + err.Error())
		}
		return addr
	}

	argIdx := callee.TrackedArg
	truncated := callee.Params[argIdx].Truncate(args[argIdx])
	fnID := eng.idFor(callee.Name)
	argKey := uint64(truncated)

	state := eng.Profile.Lookup(fnID, argKey)
	if state.Compiled {
		return Address(state.Handle | compiledTag)
	}

	count := eng.Profile.Increment(fnID, argKey)
	if count < SpecializationThreshold {
		addr, err := eng.ES.Lookup(callee.Name)
		if err != nil {
			panic("specializer: " + err.Error())
		}
		return addr
	}

	// threshold crossed this call: materialize the specialization, block
	// until it's ready, and let the profile table remember the handle.
	mangled := Mangle(callee.Name, truncated)
	eng.ensureLazy(callee, argIdx, truncated, mangled, fnID, argKey)
	addr, err := eng.ES.Lookup(mangled)
	if err != nil {
		// non-fatal per spec.md §4.4/§7: the profile entry was left at
		// its pre-trigger count by Increment above (MarkCompiled never
		// ran), so the next call for this (fn, arg) re-enters this same
		// trigger branch and retries. For now, run the generic entry.
		logf(FlagDebugLoads, "materialization of %s failed: %v; falling back to generic %s", mangled, err, callee.Name)
		generic, gerr := eng.ES.Lookup(callee.Name)
		if gerr != nil {
			// the generic entry point itself is unreachable: that is a
			// JIT-setup-time invariant violation, not a transient failure.
			panic("specializer: " + gerr.Error())
		}
		return generic
	}
	return addr
}

func (eng *Engine) ensureLazy(fn *ir.Function, argIdx int, arg int64, mangled string, fnID uint32, argKey uint64) {
	eng.ES.MainJD.EnsureLazy(mangled, func() (Address, error) {
		if eng.FaultInjector != nil {
			if err := eng.FaultInjector(mangled); err != nil {
				return 0, err
			}
		}
		closure, err := eng.CompileFunction(fn, argIdx, arg)
		if err != nil {
			return 0, err
		}
		handle := eng.Profile.MarkCompiled(fnID, argKey)
		addr := Address(handle)
		eng.ES.defineClosure(addr, closure)
		return addr, nil
	})
}
