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

import "testing"

func TestIntMapSetGet(t *testing.T) {
	m := NewIntMap()
	for i := uint64(0); i < 200; i++ {
		m.Set(i, i*i)
	}
	for i := uint64(0); i < 200; i++ {
		v, ok := m.Get(i)
		if !ok || v != i*i {
			t.Fatalf("key %d: got %d,%v want %d,true", i, v, ok, i*i)
		}
	}
	if m.Len() != 200 {
		t.Fatalf("len = %d, want 200", m.Len())
	}
}

func TestIntMapOverwrite(t *testing.T) {
	m := NewIntMap()
	m.Set(5, 1)
	m.Set(5, 2)
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
	v, ok := m.Get(5)
	if !ok || v != 2 {
		t.Fatalf("got %d,%v want 2,true", v, ok)
	}
}

func TestIntMapDeleteThenMiss(t *testing.T) {
	m := NewIntMap()
	for i := uint64(0); i < 50; i++ {
		m.Set(i, i)
	}
	if !m.Delete(10) {
		t.Fatal("expected delete of present key to succeed")
	}
	if _, ok := m.Get(10); ok {
		t.Fatal("deleted key should no longer be present")
	}
	for i := uint64(0); i < 50; i++ {
		if i == 10 {
			continue
		}
		if v, ok := m.Get(i); !ok || v != i {
			t.Fatalf("key %d lost after unrelated delete", i)
		}
	}
}

func TestIntMapGrowthPreservesEntries(t *testing.T) {
	m := NewIntMap()
	const n = 10000
	for i := uint64(0); i < n; i++ {
		m.Set(i, i+1)
	}
	if m.Capacity() <= 8 {
		t.Fatalf("expected growth beyond initial capacity, got %d", m.Capacity())
	}
	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(i)
		if !ok || v != i+1 {
			t.Fatalf("key %d: got %d,%v", i, v, ok)
		}
	}
}

func TestIntMapDeleteMissingKeyIsNoop(t *testing.T) {
	m := NewIntMap()
	m.Set(1, 1)
	if m.Delete(99) {
		t.Fatal("deleting an absent key should report false")
	}
}
