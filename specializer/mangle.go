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

import "strconv"

// Mangle produces the specialized symbol name for (fn, arg): name + "_" +
// decimal(arg_as_u64), exactly spec.md §6's mangling scheme. arg is the
// already-truncated, sign-extended value from ir.Type.Truncate; formatting
// it through its unsigned bit pattern keeps a narrow parameter whose
// truncated top bit is set from mangling with a spurious "-" sign.
func Mangle(name string, arg int64) string {
	return name + "_" + strconv.FormatUint(uint64(arg), 10)
}
