//go:build arm64
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
	"errors"

	"github.com/launix-de/hotspec/ir"
)

// arm64 codegen is not implemented yet -- same honest gap as
// scm/jit_arm64.go, which stubs the equivalent amd64 functions. Every
// specialization on this architecture takes the interpreter fallback path.

func canEmitNative(body ir.Expr) bool { return false }

func materializeNative(value int64) (func(args []int64) int64, error) {
	return nil, errors.New("specializer: native codegen not implemented on arm64")
}
