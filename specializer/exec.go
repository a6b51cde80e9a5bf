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
	"fmt"
	"sync"
	"syscall"
	"unsafe"
)

// execPage is one mmap'd RW-then-RX page of machine code, ported from
// scm/jit.go's execBuf/allocExec/makeRX helpers. Pages are never freed:
// specializations live for the lifetime of the process, same as the
// teacher's JIT pages.
type execPage struct {
	base []byte
	used int
}

const execPageSize = 4096

// execMu guards execPages: distinct (fn,arg) specializations materialize
// concurrently (singleflight only coalesces callers racing on the *same*
// mangled symbol, see dylib.go), so two unrelated compiles can call
// writeCode at once.
var execMu sync.Mutex
var execPages []*execPage

// allocExec finds or maps a page with room for n bytes. mmap failure is a
// host-resource exhaustion, which spec.md §7 classifies the same as any
// other materialization failure: reported to the caller, not fatal.
func allocExec(n int) (*execPage, error) {
	if n > execPageSize {
		panic("specializer: codegen buffer exceeds page size")
	}
	for _, p := range execPages {
		if p.used+n <= len(p.base) {
			return p, nil
		}
	}
	mem, err := syscall.Mmap(-1, 0, execPageSize,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("specializer: mmap failed: %w", err)
	}
	p := &execPage{base: mem}
	execPages = append(execPages, p)
	return p, nil
}

// writeCode copies code into a page with room for it and returns the
// address it now lives at, after making the page executable
// (makeRX in the teacher's naming). A page already made RX by an earlier
// writeCode call is briefly switched back to RW: pages are reused for
// later specializations, and RX memory can't be written into. Any mmap or
// mprotect failure is returned rather than panicking: materialization
// failure is non-fatal per spec.md §4.4/§7, and the resolver falls back to
// the generic address on it.
func writeCode(code []byte) (uintptr, error) {
	execMu.Lock()
	defer execMu.Unlock()
	p, err := allocExec(len(code))
	if err != nil {
		return 0, err
	}
	if err := syscall.Mprotect(p.base, syscall.PROT_READ|syscall.PROT_WRITE); err != nil {
		return 0, fmt.Errorf("specializer: mprotect failed: %w", err)
	}
	dst := p.base[p.used : p.used+len(code)]
	copy(dst, code)
	p.used += len(code)
	if err := syscall.Mprotect(p.base, syscall.PROT_READ|syscall.PROT_EXEC); err != nil {
		return 0, fmt.Errorf("specializer: mprotect failed: %w", err)
	}
	return uintptr(unsafe.Pointer(&dst[0])), nil
}

// nativeThunk is the Go-callable shape of every emitted function: it takes
// no real arguments (the literal-return fast path ignores them) and
// returns an int64. Coercing raw bytes into a Go func value this way is
// the same unsafe.Pointer trick scm/jit.go uses to turn a compiled buffer
// into a callable closure.
type nativeThunk func() int64

func makeNativeThunk(addr uintptr) nativeThunk {
	fv := &struct{ addr uintptr }{addr}
	return *(*nativeThunk)(unsafe.Pointer(&fv))
}
