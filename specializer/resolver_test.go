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

func TestResolveUntrackedAlwaysGeneric(t *testing.T) {
	m := ir.NewModule()
	m.AddFunction(&ir.Function{Name: "f", Params: []ir.Type{ir.I64}, RetType: ir.I64, TrackedArg: -1, Body: ir.A(0)})
	eng := NewEngine(m)
	for i := 0; i < SpecializationThreshold+5; i++ {
		got, err := eng.Call("f", []int64{7})
		if err != nil {
			t.Fatal(err)
		}
		if got != 7 {
			t.Fatalf("got %d, want 7", got)
		}
	}
	if eng.Profile.Len() != 0 {
		t.Fatal("untracked function should never populate the profile table")
	}
}

func TestResolveCrossesThresholdExactlyOnce(t *testing.T) {
	m := ir.NewModule()
	m.AddFunction(&ir.Function{Name: "f", Params: []ir.Type{ir.I64}, RetType: ir.I64, TrackedArg: 0, Body: ir.Mul(ir.A(0), ir.L(2))})
	eng := NewEngine(m)
	id := eng.idFor("f")
	for i := 0; i < SpecializationThreshold; i++ {
		if eng.Profile.Lookup(id, 3).Compiled {
			t.Fatalf("compiled too early, at call %d", i)
		}
		if _, err := eng.Call("f", []int64{3}); err != nil {
			t.Fatal(err)
		}
	}
	if !eng.Profile.Lookup(id, 3).Compiled {
		t.Fatal("expected compiled after exactly SpecializationThreshold calls")
	}
}
