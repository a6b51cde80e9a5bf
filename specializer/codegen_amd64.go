//go:build amd64
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
	"encoding/binary"

	"github.com/launix-de/hotspec/ir"
)

// emitReturnLiteral assembles the machine code for a function that ignores
// its arguments and always returns a constant: "mov rax, imm64; ret".
// Ported byte-for-byte in shape from scm/jit_amd64.go's jitReturnLiteral,
// which patches the same two instructions at fixed offsets.
func emitReturnLiteral(value int64) []byte {
	code := make([]byte, 0, 12)
	code = append(code, 0x48, 0xb8) // REX.W + MOV RAX, imm64
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	code = append(code, buf[:]...)
	code = append(code, 0xc3) // RET
	return code
}

// canEmitNative reports whether body has reduced far enough for this
// architecture's codegen to handle it directly -- here, a pure literal.
func canEmitNative(body ir.Expr) bool {
	_, ok := body.(*ir.Lit)
	return ok
}

// materializeNative turns a fully-folded literal body into a callable
// closure backed by real machine code in an executable page. Failure here
// (host resource exhaustion, mmap/mprotect denial) is returned rather than
// panicking, matching spec.md §4.4/§7's non-fatal materialization-failure
// contract.
func materializeNative(value int64) (func(args []int64) int64, error) {
	addr, err := writeCode(emitReturnLiteral(value))
	if err != nil {
		return nil, err
	}
	thunk := makeNativeThunk(addr)
	return func(args []int64) int64 {
		return thunk()
	}, nil
}
