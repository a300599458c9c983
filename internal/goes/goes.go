// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes runs a multi-call command selection. Commands receive a
// context carrying their output, their command path and whether they are
// preempted by "help" or "complete".
package goes

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
)

var Prog = filepath.Base(os.Args[0])

type Func = func(context.Context, ...string) error

// Selection maps command names to their Main. An empty name is run
// without arguments.
type Selection map[string]Func

var BuiltIn = Selection{
	"build-info": func(ctx context.Context, args ...string) error {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return ErrorfWith(ctx, "unavailable")
		}
		OutputOf(ctx).Print(bi)
		return nil
	},
	"version": func(ctx context.Context, args ...string) error {
		if bi, ok := debug.ReadBuildInfo(); ok {
			OutputOf(ctx).Println(bi.Main.Version, bi.GoVersion)
		}
		return nil
	},
}

func (m Selection) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Main runs the command named by the program, when linked to it, or by
// the first argument. A leading "-timeout DURATION" cancels the command
// context after that long.
func (m Selection) Main() {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		StyleLog()
	} else {
		PlainLog()
	}
	ctx, stop := signal.NotifyContext(context.Background(),
		TerminationSignals...)
	defer stop()
	for k, f := range BuiltIn {
		if _, found := m[k]; !found {
			m[k] = f
		}
	}
	ctx = WithPath(WithOutput(ctx, os.Stdout), Prog)
	ctx = WithUsage(ctx, func() {
		Usage(ctx, "[-timeout DURATION] COMMAND [OPTION]...\n", m)
	})
	defer recovery()
	if err := m.run(ctx, os.Args[1:]); err != nil {
		PlainLog()
		Fatal(err)
	}
}

func (m Selection) run(ctx context.Context, args []string) error {
	if len(args) > 1 && args[0] == "-timeout" {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return ErrorfWith(ctx, "-timeout: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
		args = args[2:]
	}
	ctx, args = Preempt(ctx, args)
	if f, found := m[Prog]; found {
		return f(ctx, args...)
	}
	return m.Select(ctx, args...)
}

// Select runs the command named by the first argument with the rest.
func (m Selection) Select(ctx context.Context, args ...string) error {
	preemption := Preemption(ctx)
	if len(args) > 0 {
		if f, found := m[args[0]]; found {
			return f(WithPath(ctx, args[0]), args[1:]...)
		}
	} else if f, found := m[""]; found && len(preemption) == 0 {
		return f(ctx)
	}
	switch preemption {
	case "complete":
		o := OutputOf(ctx)
		for _, s := range CompleteStrings(m.Keys(), args) {
			o.Println(s)
		}
		return nil
	case "help":
		if usage := UsageOf(ctx); usage != nil {
			usage()
		} else {
			Usage(ctx, "[COMMAND [OPTION]...]...\n", m)
		}
		return nil
	}
	if len(args) == 0 {
		return ErrorfWith(ctx, "COMMAND: missing")
	}
	return ErrorfWith(ctx, "%s: not found", args[0])
}

// recovery logs a command panic with its stack then exits.
func recovery() {
	if r := recover(); r != nil {
		PlainLog()
		Fatal(fmt.Sprint(r, "\n", string(debug.Stack())))
	}
}
