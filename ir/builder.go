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

// Convenience constructors used when assembling function bodies by hand.

func L(v int64) Expr { return &Lit{Val: v} }
func A(i int) Expr    { return &Param{Index: i} }

func Bin(op string, l, r Expr) Expr { return &BinOp{Op: op, L: l, R: r} }

func Add(l, r Expr) Expr { return Bin("+", l, r) }
func Sub(l, r Expr) Expr { return Bin("-", l, r) }
func Mul(l, r Expr) Expr { return Bin("*", l, r) }
func Div(l, r Expr) Expr { return Bin("/", l, r) }
func Mod(l, r Expr) Expr { return Bin("%", l, r) }
func Lt(l, r Expr) Expr  { return Bin("<", l, r) }
func Gt(l, r Expr) Expr  { return Bin(">", l, r) }
func Le(l, r Expr) Expr  { return Bin("<=", l, r) }
func Ge(l, r Expr) Expr  { return Bin(">=", l, r) }
func Eq(l, r Expr) Expr  { return Bin("==", l, r) }
func Ne(l, r Expr) Expr  { return Bin("!=", l, r) }

func Cond(c, t, e Expr) Expr { return &If{Cond: c, Then: t, Else: e} }

func CallFn(name string, args ...Expr) Expr { return &Call{Func: name, Args: args} }
