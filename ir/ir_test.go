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
package ir

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		ty   Type
		in   int64
		want int64
	}{
		{I32, 0x100000007, 7},
		{I32, 0x1FFFFFFFF, -1},
		{I8, 257, 1},
		{I64, 1 << 40, 1 << 40},
	}
	for _, c := range cases {
		if got := c.ty.Truncate(c.in); got != c.want {
			t.Errorf("%s.Truncate(%#x) = %d, want %d", c.ty, c.in, got, c.want)
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	f := &Function{
		Name:    "f",
		Params:  []Type{I64},
		RetType: I64,
		Body:    Add(A(0), L(1)),
	}
	clone := f.Clone()
	clone.Body.(*BinOp).R.(*Lit).Val = 999
	if f.Body.(*BinOp).R.(*Lit).Val != 1 {
		t.Fatal("clone mutation leaked into original")
	}
}

// buildFactorial mirrors original_source/test/factorial.c: the single
// recursive function the S1 scenario specializes on.
func buildFactorial() *Module {
	m := NewModule()
	m.AddFunction(&Function{
		Name:       "factorial",
		Params:     []Type{I64},
		RetType:    I64,
		TrackedArg: 0,
		Body: Cond(Le(A(0), L(1)),
			L(1),
			Mul(A(0), CallFn("factorial", Sub(A(0), L(1)))),
		),
	})
	return m
}

// buildGCD mirrors original_source/test/gcd.c's Euclidean algorithm.
func buildGCD() *Module {
	m := NewModule()
	m.AddFunction(&Function{
		Name:       "gcd",
		Params:     []Type{I64, I64},
		RetType:    I64,
		TrackedArg: 0,
		Body: Cond(Eq(A(1), L(0)),
			A(0),
			CallFn("gcd", A(1), Mod(A(0), A(1))),
		),
	})
	return m
}

func TestBuildFactorialShape(t *testing.T) {
	m := buildFactorial()
	f := m.Lookup("factorial")
	if f == nil {
		t.Fatal("factorial not registered")
	}
	if f.TrackedArg != 0 {
		t.Fatalf("expected tracked arg 0, got %d", f.TrackedArg)
	}
}

func TestBuildGCDShape(t *testing.T) {
	m := buildGCD()
	f := m.Lookup("gcd")
	if f == nil {
		t.Fatal("gcd not registered")
	}
	if len(f.Params) != 2 || f.Params[0] != I64 || f.Params[1] != I64 {
		t.Fatalf("expected two i64 params, got %v", f.Params)
	}
	if f.TrackedArg != 0 {
		t.Fatalf("expected tracked arg 0 (first eligible param), got %d", f.TrackedArg)
	}
}
