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

// maxInlineDepth bounds the self-recursive inlining fold performs while
// resolving a chain of calls whose arguments have all folded to literals.
// A real specialization only recurses as many times as its frozen input
// demands (factorial(20) inlines 19 calls deep), so this is a runaway guard
// rather than a limit anything legitimate is expected to hit.
const maxInlineDepth = 100000

// SpecializationPass clones a function, freezes one parameter to a literal,
// and runs a constant-fold/dead-branch-elimination cleanup pass over the
// result. Grounded on original_source/specializer.h's SpecializationPass
// (pass id 74) and scm/optimizer.go's Optimize/OptimizeEx constant-
// substitution shape (optimizerMetainfo.variableReplacement), adapted from
// Scheme's dynamic Scmer substitution to this IR's typed Param rewriting.
type SpecializationPass struct {
	// Module resolves self-recursive callees during folding so that a call
	// whose arguments have all reduced to literals can be inlined and
	// folded further, rather than left standing as a surviving call. Nil
	// disables inlining; fold then behaves as plain constant folding.
	Module *ir.Module
}

// Specialize returns a new function equal to fn with its argIndex'th
// parameter replaced everywhere by the literal value (truncated to the
// parameter's declared width, per SPEC_FULL.md §5's Open Question 3
// resolution), followed by constant folding, self-recursive inlining, and
// dead-branch pruning.
func (sp SpecializationPass) Specialize(fn *ir.Function, argIndex int, value int64) *ir.Function {
	clone := fn.Clone()
	truncated := clone.Params[argIndex].Truncate(value)
	clone.Body = substitute(clone.Body, argIndex, truncated)
	clone.Body = sp.fold(clone.Body, 0)
	// the clone is now a concrete specialization, not itself a further
	// tracking candidate for this argument.
	if clone.TrackedArg == argIndex {
		clone.TrackedArg = -1
	}
	logf(FlagLogSpecialize, "%s: specialized arg%d=%d", fn.Name, argIndex, truncated)
	return clone
}

func substitute(e ir.Expr, argIndex int, value int64) ir.Expr {
	switch n := e.(type) {
	case *ir.Lit:
		return n
	case *ir.Param:
		if n.Index == argIndex {
			return &ir.Lit{Val: value}
		}
		return n
	case *ir.BinOp:
		return &ir.BinOp{Op: n.Op, L: substitute(n.L, argIndex, value), R: substitute(n.R, argIndex, value)}
	case *ir.Call:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = substitute(a, argIndex, value)
		}
		return &ir.Call{Func: n.Func, Args: args, Indirect: n.Indirect}
	case *ir.If:
		return &ir.If{
			Cond: substitute(n.Cond, argIndex, value),
			Then: substitute(n.Then, argIndex, value),
			Else: substitute(n.Else, argIndex, value),
		}
	default:
		return e
	}
}

// fold constant-folds arithmetic/comparison on literal operands, prunes the
// dead branch of an If whose condition folded to a literal, and -- when sp
// has a Module to resolve callees against -- inlines a call whose arguments
// have all folded to literals, so a bounded self-recursive function like
// factorial collapses to a single literal instead of surviving as a call
// (spec.md §8 S1/S2). depth counts inlined call frames and is checked
// against maxInlineDepth to bound runaway recursion.
func (sp SpecializationPass) fold(e ir.Expr, depth int) ir.Expr {
	switch n := e.(type) {
	case *ir.Lit, *ir.Param:
		return e
	case *ir.BinOp:
		l := sp.fold(n.L, depth)
		r := sp.fold(n.R, depth)
		ll, lok := l.(*ir.Lit)
		rl, rok := r.(*ir.Lit)
		if lok && rok {
			if v, ok := evalBinOp(n.Op, ll.Val, rl.Val); ok {
				return &ir.Lit{Val: v}
			}
		}
		return &ir.BinOp{Op: n.Op, L: l, R: r}
	case *ir.Call:
		args := make([]ir.Expr, len(n.Args))
		allLit := true
		litVals := make([]int64, len(n.Args))
		for i, a := range n.Args {
			args[i] = sp.fold(a, depth)
			if lit, ok := args[i].(*ir.Lit); ok {
				litVals[i] = lit.Val
			} else {
				allLit = false
			}
		}
		if allLit && sp.Module != nil {
			if callee := sp.Module.Lookup(n.Func); callee != nil {
				if v, ok := sp.inline(callee, litVals, depth+1); ok {
					return &ir.Lit{Val: v}
				}
			}
		}
		return &ir.Call{Func: n.Func, Args: args, Indirect: n.Indirect}
	case *ir.If:
		cond := sp.fold(n.Cond, depth)
		if lit, ok := cond.(*ir.Lit); ok {
			if lit.Val != 0 {
				return sp.fold(n.Then, depth)
			}
			return sp.fold(n.Else, depth)
		}
		return &ir.If{Cond: cond, Then: sp.fold(n.Then, depth), Else: sp.fold(n.Else, depth)}
	default:
		return e
	}
}

// inline substitutes every one of callee's parameters with the
// corresponding literal in args, then folds the result. It succeeds only
// if the body collapses all the way down to a literal; a callee body that
// does not (a call to a function missing from the module, a division by
// zero, or a chain deeper than maxInlineDepth) is left alone and the caller
// keeps the original call node standing.
func (sp SpecializationPass) inline(callee *ir.Function, args []int64, depth int) (int64, bool) {
	if depth > maxInlineDepth || len(args) != len(callee.Params) {
		return 0, false
	}
	body := callee.Body
	for i, a := range args {
		body = substitute(body, i, callee.Params[i].Truncate(a))
	}
	folded := sp.fold(body, depth)
	lit, ok := folded.(*ir.Lit)
	if !ok {
		return 0, false
	}
	return lit.Val, true
}

func evalBinOp(op string, l, r int64) (int64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case "<":
		return boolInt(l < r), true
	case ">":
		return boolInt(l > r), true
	case "<=":
		return boolInt(l <= r), true
	case ">=":
		return boolInt(l >= r), true
	case "==":
		return boolInt(l == r), true
	case "!=":
		return boolInt(l != r), true
	default:
		return 0, false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
