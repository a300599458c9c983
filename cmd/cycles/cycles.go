// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cycles prints the support module's cycle counter.
package cycles

import (
	"context"
	"strconv"
	"time"

	"github.com/platinasystems/oscar"
	"github.com/platinasystems/oscar/config"
	"github.com/platinasystems/oscar/internal/goes"
	"github.com/platinasystems/parms"
)

func Main(ctx context.Context, args ...string) error {
	o := goes.OutputOf(ctx)
	switch goes.Preemption(ctx) {
	case "":
	case "complete":
		for _, s := range goes.CompleteParms([]string{"-config", "-ms"}, args) {
			o.Println(s)
		}
		return nil
	case "help":
		goes.Usage(ctx, "[-config FILE] [-ms DELAY]\n",
			"Print the cycle counter, or the cycles and microseconds\n",
			"elapsed over a DELAY of milliseconds.")
		fallthrough
	default:
		return nil
	}
	parm, args := parms.New(args, "-config", "-ms")
	if len(args) > 0 {
		return goes.ErrorfWith(ctx, "%v: unexpected", args)
	}
	cfg := config.Default()
	if fn := parm.ByName["-config"]; len(fn) > 0 {
		var err error
		if cfg, err = config.Load(fn); err != nil {
			return err
		}
	}
	fw := oscar.New(cfg)
	defer fw.Close()
	if err := fw.Load(oscar.Sup); err != nil {
		return err
	}
	s, err := fw.Sup()
	if err != nil {
		return err
	}
	c0 := s.Cycles()
	ms := parm.ByName["-ms"]
	if len(ms) == 0 {
		o.Println(c0, "cycles at", s.Clock)
		return nil
	}
	n, err := strconv.ParseUint(ms, 0, 16)
	if err != nil {
		return goes.ErrorfWith(ctx, "-ms: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(n) * time.Millisecond):
	}
	dt := s.Cycles() - c0
	o.Println(dt, "cycles", s.CyclesToMicroseconds(dt), "us")
	return nil
}
