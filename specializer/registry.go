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
	"os"
	"sort"
	"strings"

	"github.com/launix-de/hotspec/ir"
)

// DebugFlag is a named, independently toggled diagnostic switch, modeled on
// scm/declare.go's Declaration/declarations registry pattern -- here used
// for the debug flags spec.md §6 lists (-log-inst, -log-spec, -dumpjd,
// -dbgloads) instead of Scheme builtins.
type DebugFlag struct {
	Name string
	Desc string
	on   bool
}

var debugFlags = map[string]*DebugFlag{}
var debugFlagOrder []string

// DeclareDebugFlag registers a new debug flag. Panics on duplicate names,
// matching declare.go's "redeclaration is a programmer error" stance.
func DeclareDebugFlag(name, desc string) *DebugFlag {
	if _, exists := debugFlags[name]; exists {
		panic("specializer: duplicate debug flag: " + name)
	}
	f := &DebugFlag{Name: name, Desc: desc}
	debugFlags[name] = f
	debugFlagOrder = append(debugFlagOrder, name)
	return f
}

// SetDebugFlag toggles a flag on/off by name; returns false if unknown.
func SetDebugFlag(name string, on bool) bool {
	f, ok := debugFlags[name]
	if !ok {
		return false
	}
	f.on = on
	return true
}

// IsDebugFlag reports whether the named flag is currently on.
func IsDebugFlag(name string) bool {
	f, ok := debugFlags[name]
	return ok && f.on
}

// ListDebugFlags returns all registered flags sorted by name, for the
// REPL's :flags command.
func ListDebugFlags() []*DebugFlag {
	names := append([]string(nil), debugFlagOrder...)
	sort.Strings(names)
	out := make([]*DebugFlag, 0, len(names))
	for _, n := range names {
		out = append(out, debugFlags[n])
	}
	return out
}

var (
	FlagLogInstrumentation = DeclareDebugFlag("log-inst", "log each call site rewritten by the instrumentation pass")
	FlagLogSpecialize      = DeclareDebugFlag("log-spec", "log each function specialized")
	FlagDumpDylib          = DeclareDebugFlag("dumpjd", "dump the dynamic library's symbol table on every publish")
	FlagDebugLoads         = DeclareDebugFlag("dbgloads", "log every resolver invocation, including passthrough")
)

// logf writes a diagnostic line to stderr if flag is on, prefixed with its
// name the way memcp's bare fmt.Fprintf logging is always prefixed by
// caller context rather than going through a structured logger.
func logf(flag *DebugFlag, format string, args ...any) {
	if !flag.on {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", flag.Name, fmt.Sprintf(format, args...))
}

// ParseDebugFlags enables every flag named in a comma-separated list (as
// produced by the -debug CLI flag), returning any names it didn't recognize.
func ParseDebugFlags(csv string) (unknown []string) {
	if csv == "" {
		return nil
	}
	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !SetDebugFlag(name, true) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// SymbolRegistry is spec.md §4.2's "symbol registry": the set of function
// names the instrumentation pass is allowed to rewrite calls to, plus the
// name -> IR mapping used to locate a callee's unoptimized body for
// cloning. Scoped to one InstrumentationPass rather than kept process-wide like the
// debug flags above, since a process here can build and instrument more
// than one module (tests do this constantly) and a shared global set would
// leak tracked names across them.
type SymbolRegistry struct {
	tracked  map[string]bool
	irByName map[string]*ir.Function
}

func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{tracked: make(map[string]bool), irByName: make(map[string]*ir.Function)}
}

// Define records fn's IR under name, spec.md §4.2's define(name, ir_fn).
func (r *SymbolRegistry) Define(name string, fn *ir.Function) {
	r.irByName[name] = fn
}

// Track adds name to the tracked set (track(name)); idempotent.
func (r *SymbolRegistry) Track(name string) {
	r.tracked[name] = true
}

// IsTracked reports whether name is in the tracked set (is_tracked(name)).
func (r *SymbolRegistry) IsTracked(name string) bool {
	return r.tracked[name]
}

// IRFunctionOf returns the IR registered for name, if any (ir_of(name)).
func (r *SymbolRegistry) IRFunctionOf(name string) (*ir.Function, bool) {
	fn, ok := r.irByName[name]
	return fn, ok
}
