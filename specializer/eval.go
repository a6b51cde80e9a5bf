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

// interpret runs fn's body directly, tree-walking style -- grounded on
// scm/scm.go's Eval/Apply evaluator, trimmed to this IR's five expression
// kinds. It is the interpreter fallback path SPEC_FULL.md §4 describes for
// bodies that don't fully reduce to a literal, and also the body of every
// function's always-present generic entry point.
//
// Arguments are truncated to each parameter's declared width before the
// body ever sees them, so a call through the generic path and a call
// through a materialized specialization of the same (fn, arg) always agree
// -- the specialization pass truncates at substitution time (see
// specialize.go), and the generic path has to match it.
func (eng *Engine) interpret(fn *ir.Function, args []int64) int64 {
	narrowed := args
	copied := false
	for i, t := range fn.Params {
		if i >= len(args) {
			break
		}
		if v := t.Truncate(args[i]); v != args[i] {
			if !copied {
				narrowed = append([]int64(nil), args...)
				copied = true
			}
			narrowed[i] = v
		}
	}
	return eng.eval(fn.Body, narrowed)
}

func (eng *Engine) eval(e ir.Expr, args []int64) int64 {
	switch n := e.(type) {
	case *ir.Lit:
		return n.Val
	case *ir.Param:
		return args[n.Index]
	case *ir.BinOp:
		l := eng.eval(n.L, args)
		r := eng.eval(n.R, args)
		v, ok := evalBinOp(n.Op, l, r)
		if !ok {
			panic("specializer: division by zero")
		}
		return v
	case *ir.If:
		if eng.eval(n.Cond, args) != 0 {
			return eng.eval(n.Then, args)
		}
		return eng.eval(n.Else, args)
	case *ir.Call:
		callArgs := make([]int64, len(n.Args))
		for i, a := range n.Args {
			callArgs[i] = eng.eval(a, args)
		}
		callee := eng.Module.Lookup(n.Func)
		if callee == nil {
			panic("specializer: call to undefined function " + n.Func)
		}
		if !n.Indirect {
			return eng.interpret(callee, callArgs)
		}
		addr := eng.resolve(callee, callArgs)
		return eng.invoke(addr, callArgs)
	default:
		panic("specializer: unhandled expression kind")
	}
}
