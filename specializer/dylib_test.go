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
	"sync"
	"sync/atomic"
	"testing"
)

func TestExecutionSessionDefineThenLookup(t *testing.T) {
	es := NewExecutionSession()
	es.MainJD.Define("foo", Address(0xdead))
	addr, err := es.Lookup("foo")
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0xdead {
		t.Fatalf("addr = %#x, want 0xdead", addr)
	}
}

func TestExecutionSessionUnknownSymbol(t *testing.T) {
	es := NewExecutionSession()
	if _, err := es.Lookup("nope"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestExecutionSessionLazyMaterializesOnce(t *testing.T) {
	es := NewExecutionSession()
	var calls int32
	es.MainJD.DefineLazy("bar", func() (Address, error) {
		atomic.AddInt32(&calls, 1)
		return Address(42), nil
	})

	var wg sync.WaitGroup
	results := make([]Address, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr, err := es.Lookup("bar")
			if err != nil {
				t.Error(err)
			}
			results[i] = addr
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("materialization ran %d times, want 1", calls)
	}
	for i, addr := range results {
		if addr != 42 {
			t.Fatalf("result[%d] = %d, want 42", i, addr)
		}
	}
}
