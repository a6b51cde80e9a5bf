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

// InstrumentationPass rewrites direct calls to tracked functions into
// indirect calls through the resolver trampoline, one call site at a time.
// Grounded on original_source/specializer.h's InstrumentationPass (a
// FunctionPass with fixed pass id 76) and scm/optimizer.go's walk-and-rewrite
// shape, adapted from Scheme AST rewriting to this IR's Call.Indirect flag.
type InstrumentationPass struct {
	Module *ir.Module
	// Registry is the symbol registry the pass populates and consults
	// (spec.md §4.2). A caller running the pass more than once should
	// reuse the same Registry; a fresh one is allocated on first Run if
	// left nil.
	Registry *SymbolRegistry
}

// eligibleArg scans fn's parameters for the first scalar-integer one of at
// most 64 bits and returns its index, or -1 if fn has none -- spec.md
// §4.3's "the callee has at least one scalar-integer parameter of <= 64
// bits (the first such one is selected)".
func eligibleArg(fn *ir.Function) int {
	for i, t := range fn.Params {
		if t.IsInteger() {
			return i
		}
	}
	return -1
}

// Run first registers every function in the module (define) and tracks the
// ones with an eligible argument (track), then walks every function body
// rewriting direct calls to tracked callees into indirect calls through the
// resolver. Returns the number of call sites rewritten. Safe to run more
// than once: a second run finds every eligible call site already indirect
// and rewrites nothing further (spec.md §8 property 7).
func (p *InstrumentationPass) Run() int {
	if p.Registry == nil {
		p.Registry = NewSymbolRegistry()
	}
	for _, f := range p.Module.Functions() {
		p.Registry.Define(f.Name, f)
		f.TrackedArg = eligibleArg(f)
		if f.TrackedArg >= 0 {
			p.Registry.Track(f.Name)
		}
	}

	rewritten := 0
	for _, f := range p.Module.Functions() {
		ir.Walk(f.Body, func(e ir.Expr) {
			call, ok := e.(*ir.Call)
			if !ok || call.Indirect {
				return
			}
			if !p.Registry.IsTracked(call.Func) {
				return // untracked callee (S3) or no eligible argument (S4)
			}
			callee, ok := p.Registry.IRFunctionOf(call.Func)
			if !ok {
				return
			}
			call.Indirect = true
			rewritten++
			logf(FlagLogInstrumentation, "%s: call site to %s rewritten to indirect (tracked arg %d)",
				f.Name, call.Func, callee.TrackedArg)
		})
	}
	return rewritten
}
