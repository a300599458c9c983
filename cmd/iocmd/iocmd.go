// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package iocmd reads and writes words of the mapped memory space.
package iocmd

import (
	"context"
	"strconv"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/oscar"
	"github.com/platinasystems/oscar/config"
	"github.com/platinasystems/oscar/internal/goes"
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/parms"
)

// Open returns the memory space of the framework; tests replace it.
var Open = func(fw *oscar.Framework) (*mem.Space, error) {
	if err := fw.Load(oscar.Mem); err != nil {
		return nil, err
	}
	return fw.Space()
}

func Main(ctx context.Context, args ...string) (err error) {
	o := goes.OutputOf(ctx)
	switch goes.Preemption(ctx) {
	case "":
	case "complete":
		l := goes.CompleteParms([]string{"-config", "-D", "-m"}, args)
		if n := len(args); n > 1 && args[n-2] == "-m" {
			l = goes.CompleteStrings([]string{"16", "32"}, args)
		}
		for _, s := range l {
			o.Println(s)
		}
		return nil
	case "help":
		goes.Usage(ctx, "[[-r] | -w] ADDRESS [-D DATA] [-m 16|32] [-config FILE]\n",
			"Read, by default, or write a word of the memory map.\n",
			"ADDRESS and DATA may be hex; DATA defaults to 0.")
		fallthrough
	default:
		return nil
	}
	flag, args := flags.New(args, "-r", "-w")
	parm, args := parms.New(args, "-D", "-m", "-config")
	if len(args) == 0 {
		return goes.ErrorfWith(ctx, "ADDRESS: missing")
	}
	if len(args) > 1 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args[1:])
	}
	if flag.ByName["-r"] && flag.ByName["-w"] {
		return goes.ErrorfWith(ctx, "-r and -w are exclusive")
	}
	width := 32
	switch parm.ByName["-m"] {
	case "", "32":
	case "16":
		width = 16
	default:
		return goes.ErrorfWith(ctx, "-m %s: invalid", parm.ByName["-m"])
	}
	if parm.ByName["-D"] == "" {
		parm.ByName["-D"] = "0x0"
	}
	var a, d uint64
	if a, err = strconv.ParseUint(args[0], 0, 32); err != nil {
		return goes.ErrorfWith(ctx, "%s: %w", args[0], err)
	}
	if d, err = strconv.ParseUint(parm.ByName["-D"], 0, width); err != nil {
		return goes.ErrorfWith(ctx, "%s: %w", parm.ByName["-D"], err)
	}
	cfg := config.Default()
	if fn := parm.ByName["-config"]; len(fn) > 0 {
		if cfg, err = config.Load(fn); err != nil {
			return err
		}
	}
	fw := oscar.New(cfg)
	defer fw.Close()
	s, err := Open(fw)
	if err != nil {
		return err
	}
	addr := mem.Addr(a)
	if flag.ByName["-w"] {
		if width == 16 {
			return s.Store16(addr, uint16(d))
		}
		return s.Store32(addr, uint32(d))
	}
	if width == 16 {
		v, err := s.Load16(addr)
		if err == nil {
			o.Printf("%v: 0x%04x\n", addr, v)
		}
		return err
	}
	v, err := s.Load32(addr)
	if err == nil {
		o.Printf("%v: 0x%08x\n", addr, v)
	}
	return err
}
