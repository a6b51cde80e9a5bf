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
	"testing"

	"github.com/launix-de/hotspec/ir"
)

func TestSpecializeSubstitutesAndFolds(t *testing.T) {
	fn := &ir.Function{
		Name:       "f",
		Params:     []ir.Type{ir.I64},
		RetType:    ir.I64,
		TrackedArg: 0,
		Body:       ir.Cond(ir.Le(ir.A(0), ir.L(1)), ir.L(1), ir.Mul(ir.A(0), ir.L(2))),
	}
	spec := SpecializationPass{}.Specialize(fn, 0, 5)
	lit, ok := spec.Body.(*ir.Lit)
	if !ok {
		t.Fatalf("expected fully folded literal, got %T: %s", spec.Body, spec.Body)
	}
	if lit.Val != 10 {
		t.Fatalf("got %d, want 10", lit.Val)
	}
	if spec.TrackedArg != -1 {
		t.Fatalf("specialized clone should no longer track arg, got %d", spec.TrackedArg)
	}
	// original untouched
	if fn.TrackedArg != 0 {
		t.Fatal("original function mutated")
	}
}

func TestSpecializeTruncatesNarrowParam(t *testing.T) {
	fn := &ir.Function{
		Name:       "g",
		Params:     []ir.Type{ir.I32},
		RetType:    ir.I32,
		TrackedArg: 0,
		Body:       ir.A(0),
	}
	spec := SpecializationPass{}.Specialize(fn, 0, 0x100000007)
	lit := spec.Body.(*ir.Lit)
	if lit.Val != 7 {
		t.Fatalf("got %d, want 7 (truncated to low 32 bits)", lit.Val)
	}
}

func factorialFunction() *ir.Function {
	return &ir.Function{
		Name:       "factorial",
		Params:     []ir.Type{ir.I64},
		RetType:    ir.I64,
		TrackedArg: 0,
		Body: ir.Cond(ir.Le(ir.A(0), ir.L(1)),
			ir.L(1),
			ir.Mul(ir.A(0), &ir.Call{Func: "factorial", Args: []ir.Expr{ir.Sub(ir.A(0), ir.L(1))}, Indirect: true}),
		),
	}
}

// S1: with a Module to resolve the self-recursive callee against,
// specializing factorial on a literal must fully collapse to a pure
// constant -- "without recursing" per spec.md §8 S1 -- rather than leave a
// surviving call.
func TestSpecializeInlinesSelfRecursiveCallToLiteral(t *testing.T) {
	fn := factorialFunction()
	m := ir.NewModule()
	m.AddFunction(fn)
	spec := SpecializationPass{Module: m}.Specialize(fn, 0, 10)
	lit, ok := spec.Body.(*ir.Lit)
	if !ok {
		t.Fatalf("expected fully collapsed literal, got %T: %s", spec.Body, spec.Body)
	}
	if lit.Val != 3628800 {
		t.Fatalf("got %d, want 3628800", lit.Val)
	}
}

// Without a Module, fold has no way to resolve the callee, so the
// recursive call must survive untouched rather than error out.
func TestSpecializeWithoutModuleLeavesRecursiveCallStanding(t *testing.T) {
	fn := factorialFunction()
	spec := SpecializationPass{}.Specialize(fn, 0, 10)
	binop, ok := spec.Body.(*ir.BinOp)
	if !ok {
		t.Fatalf("expected surviving BinOp, got %T", spec.Body)
	}
	inner, ok := binop.R.(*ir.Call)
	if !ok || !inner.Indirect {
		t.Fatalf("expected surviving indirect recursive call, got %v", binop.R)
	}
}
