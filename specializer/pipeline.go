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

// CompileFunction runs the clone -> specialize -> cleanup -> materialize
// pipeline of spec.md §4.6 for one (fn, argIdx, arg) and
// returns a callable closure for the result. Mangling and publishing into
// the dylib happen in the caller (resolver.go's ensureLazy), since those
// steps belong to the ExecutionSession, not the pipeline itself -- mirrors
// original_source/main.cpp's separation between optimizeModule (the
// transform layer) and the JIT class that owns the dylib. A materialization
// failure is returned rather than panicking: spec.md §4.4/§7 classify it as
// non-fatal and transient, and the resolver falls back to the generic
// address on it.
func (eng *Engine) CompileFunction(fn *ir.Function, argIdx int, arg int64) (func(args []int64) int64, error) {
	clone := SpecializationPass{Module: eng.Module}.Specialize(fn, argIdx, arg)
	if canEmitNative(clone.Body) {
		lit := clone.Body.(*ir.Lit)
		return materializeNative(lit.Val)
	}
	return func(args []int64) int64 {
		return eng.interpret(clone, args)
	}, nil
}
