// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cpld reads and writes camera CPLD registers.
package cpld

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/platinasystems/oscar"
	"github.com/platinasystems/oscar/config"
	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/internal/goes"
	"github.com/platinasystems/parms"
)

type op struct {
	args  string
	nargs int
	f     func(c *cpld.Cpld, o goes.Output, reg uint16, args []uint8) error
}

var ops = map[string]op{
	"get": {"REG", 0, func(c *cpld.Cpld, o goes.Output, reg uint16, _ []uint8) error {
		v, err := c.Rget(reg)
		if err == nil {
			o.Printf("%#02x\n", v)
		}
		return err
	}},
	"set": {"REG VALUE", 1, func(c *cpld.Cpld, _ goes.Output, reg uint16, args []uint8) error {
		return c.Rset(reg, args[0])
	}},
	"fget": {"REG FIELD", 1, func(c *cpld.Cpld, o goes.Output, reg uint16, args []uint8) error {
		on, err := c.Fget(reg, args[0])
		if err == nil {
			o.Println(map[bool]int{false: 0, true: 1}[on])
		}
		return err
	}},
	"fset": {"REG FIELD 0|1", 2, func(c *cpld.Cpld, _ goes.Output, reg uint16, args []uint8) error {
		return c.Fset(reg, args[0], args[1] != 0)
	}},
}

// Open returns the cpld of the framework; tests replace it.
var Open = func(fw *oscar.Framework) (*cpld.Cpld, error) {
	if err := fw.Load(oscar.Cpld); err != nil {
		return nil, err
	}
	return fw.Cpld()
}

func Main(ctx context.Context, args ...string) error {
	o := goes.OutputOf(ctx)
	switch goes.Preemption(ctx) {
	case "":
	case "complete":
		if len(args) < 2 {
			for _, s := range goes.CompleteStrings(keys(), args) {
				o.Println(s)
			}
		}
		return nil
	case "help":
		var l []string
		for _, k := range keys() {
			l = append(l, fmt.Sprint(k, " ", ops[k].args))
		}
		goes.Usage(ctx, "[-config FILE] COMMAND\n",
			"Access CPLD registers; REG, FIELD and VALUE may be hex.\n\n",
			l)
		fallthrough
	default:
		return nil
	}
	parm, args := parms.New(args, "-config")
	if len(args) == 0 {
		return goes.ErrorfWith(ctx, "COMMAND: missing")
	}
	op, found := ops[args[0]]
	if !found {
		return goes.ErrorfWith(ctx, "%s: unknown", args[0])
	}
	ctx = goes.WithPath(ctx, args[0])
	args = args[1:]
	if len(args) != 1+op.nargs {
		return goes.ErrorfWith(ctx, "usage: %s", op.args)
	}
	reg, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		return goes.ErrorfWith(ctx, "REG: %w", err)
	}
	vals := make([]uint8, op.nargs)
	for i, s := range args[1:] {
		v, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return goes.ErrorfWith(ctx, "%s: %w", s, err)
		}
		vals[i] = uint8(v)
	}
	cfg := config.Default()
	if fn := parm.ByName["-config"]; len(fn) > 0 {
		if cfg, err = config.Load(fn); err != nil {
			return err
		}
	}
	fw := oscar.New(cfg)
	defer fw.Close()
	c, err := Open(fw)
	if err != nil {
		return err
	}
	return op.f(c, o, uint16(reg), vals)
}

func keys() []string {
	var l []string
	for k := range ops {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}
