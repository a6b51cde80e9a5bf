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
// Command hotspec drives the profile-guided specializer engine against the
// two canonical demo programs (factorial, gcd) the same way memcp's own
// main.go drives the Scheme interpreter against a source file: parse flags,
// wire up debug output, then either run once, watch for changes, or drop
// into an interactive shell.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/dc0d/onexit"
	"github.com/fsnotify/fsnotify"

	"github.com/launix-de/hotspec/ir"
	"github.com/launix-de/hotspec/specializer"
)

func main() {
	program := flag.String("program", "factorial", "demo program to run: factorial, gcd, or both")
	arg := flag.Int64("arg", 10, "argument to call the demo program with")
	iterations := flag.Int("iterations", specializer.SpecializationThreshold+10, "hot-loop call count")
	debug := flag.String("debug", "", "comma-separated debug flags to enable: log-inst,log-spec,dumpjd,dbgloads")
	watchDir := flag.String("watch", "", "if set, re-run the demo every time this directory changes")
	repl := flag.Bool("repl", false, "drop into an interactive shell instead of running once")
	flag.Parse()

	if unknown := specializer.ParseDebugFlags(*debug); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "hotspec: unknown debug flag(s): %v\n", unknown)
		os.Exit(1)
	}

	eng := buildEngine()

	onexit.Register(func() {
		fmt.Fprintln(os.Stderr, "--- profile table summary at exit ---")
		dumpProfile(eng)
	})

	if *repl {
		runRepl(eng)
		return
	}

	if *watchDir != "" {
		runWatch(eng, *watchDir, *program, *arg, *iterations)
		return
	}

	runOnce(eng, *program, *arg, *iterations)
	onexit.ForceExit(0)
}

// buildEngine constructs the module containing both demo functions
// (factorial.c and gcd.c from original_source/test), instruments it, and
// wires it into a fresh engine -- the equivalent of memcp's main.go loading
// and preparing a source module before entering its REPL/server loop.
func buildEngine() *specializer.Engine {
	m := ir.NewModule()
	m.AddFunction(&ir.Function{
		Name:       "factorial",
		Params:     []ir.Type{ir.I64},
		RetType:    ir.I64,
		TrackedArg: 0,
		Body: ir.Cond(ir.Le(ir.A(0), ir.L(1)),
			ir.L(1),
			ir.Mul(ir.A(0), &ir.Call{Func: "factorial", Args: []ir.Expr{ir.Sub(ir.A(0), ir.L(1))}}),
		),
	})
	m.AddFunction(&ir.Function{
		Name:       "gcd",
		Params:     []ir.Type{ir.I64, ir.I64},
		RetType:    ir.I64,
		TrackedArg: 0,
		Body: ir.Cond(ir.Eq(ir.A(1), ir.L(0)),
			ir.A(0),
			&ir.Call{Func: "gcd", Args: []ir.Expr{ir.A(1), ir.Mod(ir.A(0), ir.A(1))}},
		),
	})
	(&specializer.InstrumentationPass{Module: m}).Run()
	return specializer.NewEngine(m)
}

func runOnce(eng *specializer.Engine, program string, arg int64, iterations int) {
	for name := range demoArgs(program, arg) {
		args := demoArgs(program, arg)[name]
		var last int64
		for i := 0; i < iterations; i++ {
			got, err := eng.Call(name, args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "hotspec: %s: %v\n", name, err)
				os.Exit(1)
			}
			last = got
		}
		fmt.Printf("%s(%v) = %d (after %d calls)\n", name, args, last, iterations)
	}
}

func demoArgs(program string, arg int64) map[string][]int64 {
	all := map[string][]int64{
		"factorial": {arg},
		"gcd":       {492816303, 21123692},
	}
	if program == "both" {
		return all
	}
	if args, ok := all[program]; ok {
		return map[string][]int64{program: args}
	}
	fmt.Fprintf(os.Stderr, "hotspec: unknown program %q\n", program)
	os.Exit(1)
	return nil
}

// runWatch reloads nothing by itself -- there is no textual IR source file
// to re-parse (ir programs are built in Go, see ir/builder.go) -- but
// mirrors memcp's file-watch pattern by re-running the demo workload every
// time the watched directory changes, which is useful for re-triggering a
// run after editing and rebuilding this very binary.
func runWatch(eng *specializer.Engine, dir, program string, arg int64, iterations int) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hotspec: watch: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "hotspec: watch: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("watching %s for changes (ctrl-c to quit)\n", dir)
	runOnce(eng, program, arg, iterations)
	for event := range watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		fmt.Printf("change detected (%s), re-running\n", event.Name)
		runOnce(eng, program, arg, iterations)
	}
}

func runRepl(eng *specializer.Engine) {
	rl, err := readline.New("hotspec> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "hotspec: repl: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()
	fmt.Println("hotspec interactive shell -- :help for commands")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		switch {
		case line == ":help":
			fmt.Println(":flags              list debug flags and their state")
			fmt.Println(":set <flag>         enable a debug flag")
			fmt.Println(":dump                dump the profile table")
			fmt.Println(":quit")
		case line == ":flags":
			for _, f := range specializer.ListDebugFlags() {
				fmt.Printf("  %-10s %v  %s\n", f.Name, specializer.IsDebugFlag(f.Name), f.Desc)
			}
		case line == ":dump":
			dumpProfile(eng)
		case len(line) > len(":set ") && line[:len(":set ")] == ":set ":
			name := line[len(":set "):]
			if !specializer.SetDebugFlag(name, true) {
				fmt.Printf("unknown debug flag %q\n", name)
			}
		case line == ":quit" || line == "":
			if line == ":quit" {
				return
			}
		default:
			fmt.Println("unrecognized command, try :help")
		}
	}
}

func dumpProfile(eng *specializer.Engine) {
	eng.Profile.Dump(func(fnID uint32, arg uint64, st string) {
		fmt.Printf("  fn=%d arg=%d %s\n", fnID, arg, st)
	})
}
