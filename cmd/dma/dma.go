// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dma is the transfer self test command.
package dma

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jpillora/backoff"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar"
	"github.com/platinasystems/oscar/config"
	engine "github.com/platinasystems/oscar/dma"
	"github.com/platinasystems/oscar/internal/goes"
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/swr"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis/publisher"
	"github.com/rcrowley/go-metrics"
	"github.com/satori/go.uuid"
)

var (
	flagNames = []string{"-publish", "-v"}
	parmNames = []string{"-config", "-count", "-wdsize", "-rows",
		"-stride", "-moves", "-stimuli"}

	ErrMismatch = errors.New("destination differs from source")
)

// Test describes the transfers of one run: moves of rows of count
// elements each, read from rows stride bytes apart and written densely.
type Test struct {
	Count    uint
	WordSize uint
	Rows     uint
	Stride   uint
	Moves    int
}

func (t *Test) rowBytes() uint { return t.Count * t.WordSize }
func (t *Test) srcBytes() uint { return t.Rows * t.Stride }
func (t *Test) dstBytes() uint { return t.Rows * t.rowBytes() }

// Result of a verified run.
type Result struct {
	Moves  int
	Bytes  uint32
	Micros uint32
}

func (r Result) String() string {
	return fmt.Sprint(r.Moves, " moves, ", r.Bytes, " bytes, ", r.Micros,
		"us")
}

func Main(ctx context.Context, args ...string) error {
	o := goes.OutputOf(ctx)
	switch goes.Preemption(ctx) {
	case "":
	case "complete":
		c := goes.CompleteParms(parmNames, args)
		if len(c) == 0 {
			c = goes.CompleteStrings(flagNames, args)
		}
		for _, s := range c {
			o.Println(s)
		}
		return nil
	case "help":
		goes.Usage(ctx, "[OPTION]...\n",
			"Run chained memory DMA transfers and verify them.\n\n",
			[]string{
				"-config FILE	framework configuration",
				"-count N	elements per row (16)",
				"-wdsize 1|2|4	element bytes (4)",
				"-rows N	rows per move (1)",
				"-stride BYTES	source row pitch (count * wdsize)",
				"-moves N	moves per chain (dma moves)",
				"-stimuli FILE	record each run",
				"-publish	publish metrics to redis",
				"-v	print descriptors",
			})
		fallthrough
	default:
		return nil
	}
	flag, args := flags.New(args, "-publish", "-v")
	parm, args := parms.New(args, "-config", "-count", "-wdsize", "-rows",
		"-stride", "-moves", "-stimuli")
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
	t := Test{
		Count:    16,
		WordSize: 4,
		Rows:     1,
		Moves:    cfg.DMA.Moves,
	}
	for _, x := range []struct {
		name string
		p    *uint
	}{
		{"-count", &t.Count},
		{"-wdsize", &t.WordSize},
		{"-rows", &t.Rows},
		{"-stride", &t.Stride},
	} {
		if s := parm.ByName[x.name]; len(s) > 0 {
			u, err := strconv.ParseUint(s, 0, 16)
			if err != nil {
				return goes.ErrorfWith(ctx, "%s: %w", x.name, err)
			}
			*x.p = uint(u)
		}
	}
	if s := parm.ByName["-moves"]; len(s) > 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return goes.ErrorfWith(ctx, "-moves: %w", err)
		}
		t.Moves = n
	}
	if t.Stride == 0 {
		t.Stride = t.rowBytes()
	}

	fw := oscar.New(cfg)
	defer fw.Close()
	modules := []string{oscar.DMA}
	stimuli := parm.ByName["-stimuli"]
	if len(stimuli) > 0 {
		modules = append(modules, oscar.Swr)
	}
	if err := fw.Load(modules...); err != nil {
		return err
	}
	e, err := fw.DMA()
	if err != nil {
		return err
	}
	r, err := Run(fw, &t, flag.ByName["-v"], o)
	if len(stimuli) > 0 {
		if serr := record(fw, stimuli, &t, r, err); serr != nil {
			log.Print("dma: stimuli: ", serr)
		}
	}
	if err != nil {
		return err
	}
	o.Println(r)
	PrintMetrics(o, e.Registry())
	if flag.ByName["-publish"] {
		return Publish(ctx, e.Registry())
	}
	return nil
}

// Run builds one chain of t.Moves moves, runs it and compares every
// destination with its source.
func Run(fw *oscar.Framework, t *Test, verbose bool, o goes.Output) (Result, error) {
	var r Result
	s, err := fw.Sup()
	if err != nil {
		return r, err
	}
	e, err := fw.DMA()
	if err != nil {
		return r, err
	}
	if t.Count == 0 || t.Rows == 0 {
		return r, fmt.Errorf("%d x %d: %w", t.Count, t.Rows,
			engine.ErrInvalidCount)
	}
	if t.Stride < t.rowBytes() {
		return r, fmt.Errorf("stride %d < row %d: %w", t.Stride,
			t.rowBytes(), engine.ErrInvalidStride)
	}
	var srcs, dsts []mem.Block
	defer func() {
		for _, b := range append(srcs, dsts...) {
			s.Free(b)
		}
	}()
	h, err := e.Alloc()
	if err != nil {
		return r, err
	}
	defer e.Release(h)
	for i := 0; i < t.Moves; i++ {
		src, err := s.AllocSDRAM(uint32(t.srcBytes()))
		if err != nil {
			return r, err
		}
		srcs = append(srcs, src)
		dst, err := s.AllocL1Data(uint32(t.dstBytes()))
		if err != nil {
			dst, err = s.AllocSDRAM(uint32(t.dstBytes()))
		}
		if err != nil {
			return r, err
		}
		dsts = append(dsts, dst)
		for j := range src.Bytes {
			src.Bytes[j] = byte(i*31 + j)
		}
		for j := range dst.Bytes {
			dst.Bytes[j] = 0
		}
		err = e.Add2DMove(h, engine.Move{
			Src: engine.Endpoint{
				Addr:     src.Addr,
				WordSize: t.WordSize,
				XCount:   t.Count,
				XModify:  int(t.WordSize),
				YCount:   t.Rows,
				YModify:  int(t.Stride) - int(t.rowBytes()-t.WordSize),
			},
			Dst: engine.Endpoint{
				Addr:     dst.Addr,
				WordSize: t.WordSize,
				XCount:   t.Count,
				XModify:  int(t.WordSize),
				YCount:   t.Rows,
				YModify:  int(t.WordSize),
			},
		})
		if err != nil {
			return r, err
		}
		r.Bytes += uint32(t.dstBytes())
	}
	c0 := s.Cycles()
	if err = e.Start(h); err == nil {
		err = e.Sync(h)
	}
	r.Micros = s.CyclesToMicroseconds(s.Cycles() - c0)
	if verbose {
		sd, dd, _ := e.Descriptors(h)
		for i := range sd {
			o.Println(sd[i])
			o.Println(dd[i])
		}
	}
	if err != nil {
		return r, err
	}
	rb := t.rowBytes()
	for i := range srcs {
		for y := uint(0); y < t.Rows; y++ {
			sr := srcs[i].Bytes[y*t.Stride : y*t.Stride+rb]
			dr := dsts[i].Bytes[y*rb : (y+1)*rb]
			if !bytes.Equal(sr, dr) {
				return r, fmt.Errorf("move %d row %d: %w", i, y,
					ErrMismatch)
			}
		}
		r.Moves++
	}
	return r, nil
}

func record(fw *oscar.Framework, fn string, t *Test, r Result, rerr error) error {
	w, err := fw.Swr()
	if err != nil {
		return err
	}
	wr, err := w.CreateWriter(fn, false, false)
	if err != nil {
		return err
	}
	defer wr.Close()
	result := "ok"
	if rerr != nil {
		result = rerr.Error()
	}
	for _, x := range []struct {
		name string
		t    swr.SignalType
		v    interface{}
	}{
		{"moves", swr.Int, t.Moves},
		{"wdsize", swr.Int, int(t.WordSize)},
		{"bytes", swr.Int, int64(r.Bytes)},
		{"us", swr.Int, r.Micros},
		{"result", swr.String, result},
	} {
		sig, err := wr.AddSignal(x.name, x.t, "")
		if err != nil {
			return err
		}
		if err = sig.Set(x.v); err != nil {
			return err
		}
	}
	return wr.Report()
}

func each(registry metrics.Registry, f func(name string, v interface{})) {
	var names []string
	all := make(map[string]interface{})
	registry.Each(func(name string, v interface{}) {
		names = append(names, name)
		all[name] = v
	})
	sort.Strings(names)
	for _, name := range names {
		f(name, all[name])
	}
}

func value(v interface{}) string {
	switch m := v.(type) {
	case metrics.Counter:
		return fmt.Sprint(m.Count())
	case metrics.Gauge:
		return fmt.Sprint(m.Value())
	case metrics.Timer:
		s := m.Snapshot()
		return fmt.Sprintf("%d %.0fns", s.Count(), s.Mean())
	}
	return fmt.Sprint(v)
}

func PrintMetrics(o goes.Output, registry metrics.Registry) {
	each(registry, func(name string, v interface{}) {
		o.Print(name, ": ", value(v), "\n")
	})
}

// PublishAttempts bounds the connection retries of Publish.
var PublishAttempts = 4

// Publish the registry to the local redis, tagged with a run id.
func Publish(ctx context.Context, registry metrics.Registry) error {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: false,
	}
	pub, err := publisher.New()
	for i := 1; err != nil && i < PublishAttempts; i++ {
		log.Print("warning", "dma: publish: ", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
		pub, err = publisher.New()
	}
	if err != nil {
		return err
	}
	defer pub.Close()
	pub.Print("dma.run: ", uuid.NewV4())
	each(registry, func(name string, v interface{}) {
		pub.Print(name, ": ", value(v))
	})
	return nil
}
