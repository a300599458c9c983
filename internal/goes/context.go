// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
)

var TerminationSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}

type (
	pathKey  struct{}
	usageKey struct{}
)

type path struct {
	context.Context
	name string
	up   *path
}

func (p *path) Value(k interface{}) interface{} {
	if k == (pathKey{}) {
		return p
	}
	return p.Context.Value(k)
}

// WithPath appends a command name to the context's path.
func WithPath(ctx context.Context, name string) context.Context {
	up, _ := ctx.Value(pathKey{}).(*path)
	return &path{ctx, name, up}
}

// PathOf returns the command names of the context, first to last.
func PathOf(ctx context.Context) []string {
	var l []string
	for p, _ := ctx.Value(pathKey{}).(*path); p != nil; p = p.up {
		l = append([]string{p.name}, l...)
	}
	return l
}

var preemptive = map[string]bool{
	"complete": true,
	"help":     true,
}

// Preemption returns "complete" or "help" if either follows the program
// name in the context path.
func Preemption(ctx context.Context) string {
	if p := PathOf(ctx); len(p) > 1 && preemptive[p[1]] {
		return p[1]
	}
	return ""
}

// Preempt moves leading "complete" and "help" args to the context path.
func Preempt(ctx context.Context, args []string) (context.Context, []string) {
	for len(args) > 0 && preemptive[args[0]] {
		ctx = WithPath(ctx, args[0])
		args = args[1:]
	}
	return ctx, args
}

// ErrorfWith prefixes the error with the context's command path.
func ErrorfWith(ctx context.Context, format string, args ...interface{}) error {
	return fmt.Errorf(strings.Join(PathOf(ctx), " ")+": "+format, args...)
}

func UsageOf(ctx context.Context) func() {
	f, _ := ctx.Value(usageKey{}).(func())
	return f
}

func WithUsage(ctx context.Context, f func()) context.Context {
	return context.WithValue(ctx, usageKey{}, f)
}
