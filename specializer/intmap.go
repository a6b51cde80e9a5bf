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

// IntMap is a Robin-Hood open-addressed uint64->uint64 map, ported from
// original_source/hash.cpp: bijective hash mixing, backward-shift-free
// tombstone erase, and 4x growth at a 5/8 load factor.

type bucketStatus uint8

const (
	statusEmpty bucketStatus = iota
	statusTombstone
	statusFilled
)

type bucket struct {
	status bucketStatus
	key    uint64
	value  uint64
}

type IntMap struct {
	buckets []bucket
	size    int // filled buckets; tombstones don't count, matching hash.cpp's _size
}

func NewIntMap() *IntMap {
	m := &IntMap{}
	m.buckets = make([]bucket, 8)
	return m
}

func (m *IntMap) mask() uint64 { return uint64(len(m.buckets) - 1) }

// mix is the exact splitmix64-style bijective finalizer from hash.cpp.
func mix(k uint64) uint64 {
	k = (k ^ (k >> 30)) * 0xbf58476d1ce4e5b9
	k = (k ^ (k >> 27)) * 0x94d049bb133111eb
	k = k ^ (k >> 31)
	return k
}

func (m *IntMap) distance(i int, key uint64) int {
	home := int(mix(key) & m.mask())
	d := i - home
	if d < 0 {
		d += len(m.buckets)
	}
	return d
}

// grow rebuilds the table at 4x capacity, matching hash.cpp's grow().
func (m *IntMap) grow() {
	old := m.buckets
	m.buckets = make([]bucket, len(old)*4)
	m.size = 0
	for _, b := range old {
		if b.status == statusFilled {
			m.emplace(b.key, b.value)
		}
	}
}

// Set inserts or overwrites key -> value.
func (m *IntMap) Set(key, value uint64) {
	if (m.size+1)*8 > len(m.buckets)*5 {
		m.grow()
	}
	m.emplace(key, value)
}

// emplace performs the Robin-Hood steal-from-the-rich insertion loop.
func (m *IntMap) emplace(key, value uint64) {
	i := int(mix(key) & m.mask())
	entry := bucket{status: statusFilled, key: key, value: value}
	dist := 0
	for {
		cur := &m.buckets[i]
		if cur.status != statusFilled {
			*cur = entry
			m.size++
			return
		}
		if cur.key == entry.key {
			cur.value = entry.value
			return
		}
		otherDist := m.distance(i, cur.key)
		if otherDist < dist {
			// steal this slot; continue inserting the displaced entry
			displaced := *cur
			*cur = entry
			entry = displaced
			dist = otherDist
		}
		i = int((uint64(i) + 1) & m.mask())
		dist++
	}
}

// Get returns the value for key and whether it was present.
func (m *IntMap) Get(key uint64) (uint64, bool) {
	i := int(mix(key) & m.mask())
	dist := 0
	for {
		b := &m.buckets[i]
		if b.status == statusEmpty {
			return 0, false
		}
		if b.status == statusFilled {
			if b.key == key {
				return b.value, true
			}
			if m.distance(i, b.key) < dist {
				// a Robin-Hood-ordered table would have placed key by now
				return 0, false
			}
		}
		i = int((uint64(i) + 1) & m.mask())
		dist++
		if dist > len(m.buckets) {
			return 0, false
		}
	}
}

// Delete marks key's bucket a tombstone, without backward-shifting
// successors, exactly as hash.cpp's erase() does.
func (m *IntMap) Delete(key uint64) bool {
	i := int(mix(key) & m.mask())
	dist := 0
	for {
		b := &m.buckets[i]
		if b.status == statusEmpty {
			return false
		}
		if b.status == statusFilled {
			if b.key == key {
				b.status = statusTombstone
				m.size--
				return true
			}
			if m.distance(i, b.key) < dist {
				return false
			}
		}
		i = int((uint64(i) + 1) & m.mask())
		dist++
		if dist > len(m.buckets) {
			return false
		}
	}
}

// Len returns the number of live (non-tombstoned) entries.
func (m *IntMap) Len() int { return m.size }

// Capacity returns the current bucket array length.
func (m *IntMap) Capacity() int { return len(m.buckets) }

// Range calls fn for every live entry, in bucket order (not insertion order).
func (m *IntMap) Range(fn func(key, value uint64)) {
	for _, b := range m.buckets {
		if b.status == statusFilled {
			fn(b.key, b.value)
		}
	}
}
