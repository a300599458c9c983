// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"testing"

	"github.com/platinasystems/oscar/internal/assert"
	"github.com/platinasystems/oscar/mem"
)

type stalled struct{ kicks int }

func (*stalled) String() string { return "stalled" }

func (s *stalled) Kick(src, dst mem.Addr) error {
	s.kicks++
	return nil
}

func newEngine(t *testing.T, backend func(*mem.Space) Backend) (*mem.Space, *Engine) {
	t.Helper()
	space, err := mem.Map(mem.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { space.Close() })
	if backend == nil {
		backend = func(s *mem.Space) Backend { return NewEmulator(s) }
	}
	e, err := New(space, backend(space), EngineConfig{Waiter: IterationLimit(1000)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })
	return space, e
}

func fill(t *testing.T, space *mem.Space, a mem.Addr, n int, seed byte) []byte {
	t.Helper()
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	if err := space.Write(a, b); err != nil {
		t.Fatal(err)
	}
	return b
}

func read(t *testing.T, space *mem.Space, a mem.Addr, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if err := space.Read(a, b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNeedsClockOrWaiter(t *testing.T) {
	space, err := mem.Map(mem.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	defer space.Close()
	if _, err = New(space, NewEmulator(space), EngineConfig{}); err == nil {
		t.Error("engine without a clock")
	}
}

func TestSixteenWords(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	src, dst := sdram.Base+0x1000, sdram.Base+0x2000
	want := fill(t, space, src, 64, 1)

	h, err := e.Alloc()
	assert.Nil(err)
	assert.Nil(e.AddMove(h, src, dst, 16, 4, 4, 1, 4))
	s, d, _ := e.Descriptors(h)
	assert.Equal(len(s), 1)
	assert.Equal(s[0].Bytes(), 64)
	assert.Equal(d[0].Bytes(), 64)
	flag, _ := e.SyncFlag(h)
	assert.Equal(flag, 0)

	var transitions int
	prev := flag
	e.Backend().(*Emulator).Trace = func(*Descriptor) {
		v, _ := e.SyncFlag(h)
		if prev == 0 && v != 0 {
			transitions++
		}
		prev = v
	}
	assert.Nil(e.Start(h))
	assert.Nil(e.Sync(h))
	assert.Bytes(read(t, space, dst, 64), want)
	assert.Equal(transitions, 1)
	flag, _ = e.SyncFlag(h)
	assert.Equal(flag, 0xffffffff)
	assert.Nil(e.Release(h))
}

func TestMoves(t *testing.T) {
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	for n := 1; n <= MaxMovesPerChain; n++ {
		assert := assert.Assert{TB: t}
		h, err := e.Alloc()
		assert.Nil(err)
		var want [][]byte
		for i := 0; i < n; i++ {
			src := sdram.Base + mem.Addr(i*0x400)
			want = append(want, fill(t, space, src, 96, byte(n*16+i)))
			assert.Nil(e.AddMemCpy(h, src+0x10000, src, 96))
		}
		assert.Nil(e.Start(h))
		assert.Nil(e.Sync(h))
		for i := 0; i < n; i++ {
			dst := sdram.Base + mem.Addr(i*0x400) + 0x10000
			assert.Bytes(read(t, space, dst, 96), want[i])
		}
		assert.Nil(e.Release(h))
	}
}

// A 3x2 window of 16 bit pixels out of an 8x4 frame, and a byte reversal.
func Test2DMoves(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	l1b, _ := space.Region(mem.L1DataB)
	frame := sdram.Base
	img := fill(t, space, frame, 8*4*2, 0x40)
	win := l1b.Base

	h, _ := e.Alloc()
	assert.Nil(e.Add2DMove(h, Move{
		Src: Endpoint{
			Addr:     frame + (1*8+2)*2,
			WordSize: 2,
			XCount:   3,
			XModify:  2,
			YCount:   2,
			YModify:  8*2 - 2*2,
		},
		Dst: Endpoint{
			Addr:     win,
			WordSize: 2,
			XCount:   3,
			XModify:  2,
			YCount:   2,
			YModify:  2,
		},
	}))
	rev := sdram.Base + 0x800
	want := fill(t, space, rev, 8, 0)
	assert.Nil(e.Add2DMove(h, Move{
		Src: Endpoint{Addr: rev + 7, WordSize: 1, XCount: 8, XModify: -1},
		Dst: Endpoint{Addr: rev + 0x100, WordSize: 1, XCount: 8, XModify: 1},
	}))
	assert.Nil(e.Start(h))
	assert.Nil(e.Sync(h))

	var expect []byte
	for _, row := range []int{1, 2} {
		o := (row*8 + 2) * 2
		expect = append(expect, img[o:o+6]...)
	}
	assert.Bytes(read(t, space, win, 12), expect)
	for i, j := 0, len(want)-1; i < j; i, j = i+1, j-1 {
		want[i], want[j] = want[j], want[i]
	}
	assert.Bytes(read(t, space, rev+0x100, 8), want)
}

func TestFlagOnlyAfterTerminal(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	h, _ := e.Alloc()
	for i := 0; i < MaxMovesPerChain; i++ {
		a := sdram.Base + mem.Addr(i*0x100)
		assert.Nil(e.AddMemCpy(h, a+0x8000, a, 32))
	}
	var seen, nonzero int
	e.Backend().(*Emulator).Trace = func(d *Descriptor) {
		seen++
		v, _ := e.SyncFlag(h)
		last := d.IsWrite() && d.Config.Flow() == FlowStop
		if v != 0 {
			nonzero++
			if !last {
				t.Error("flag set after", d)
			}
		} else if last {
			t.Error("flag clear after", d)
		}
	}
	assert.Nil(e.Start(h))
	assert.Equal(seen, 2*(MaxMovesPerChain+1))
	assert.Equal(nonzero, 1)

	// restart clears the flag before the chain runs again
	nonzero, seen = 0, 0
	assert.Nil(e.Start(h))
	assert.Equal(nonzero, 1)
}

func TestSyncTimeout(t *testing.T) {
	assert := assert.Assert{TB: t}
	s := &stalled{}
	space, e := newEngine(t, func(*mem.Space) Backend { return s })
	sdram, _ := space.Region(mem.SDRAM)
	h, _ := e.Alloc()
	assert.Nil(e.AddMemCpy(h, sdram.Base+64, sdram.Base, 64))
	assert.Nil(e.Start(h))
	assert.Equal(s.kicks, 1)
	assert.Error(e.Sync(h), ErrTimeout)
	assert.Equal(e.Registry().Get("dma.sync.timeout").(interface{ Count() int64 }).Count(), 1)
	assert.Nil(e.Release(h))
	assert.Error(e.Sync(h), ErrNotAllocated)
}

func TestMemCpySync(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	scratch, _ := space.Region(mem.Scratch)
	want := fill(t, space, sdram.Base+3, 37, 9)
	assert.Nil(e.MemCpySync(scratch.Base+1, sdram.Base+3, 37))
	assert.Bytes(read(t, space, scratch.Base+1, 37), want)
	assert.Equal(e.Pool().Allocated(), 0)

	_, _ = e.Alloc()
	_, _ = e.Alloc()
	assert.Error(e.MemCpySync(scratch.Base, sdram.Base, 4), ErrNoFreeChain)
}

func TestEmulatorRejectsBadChain(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	h, _ := e.Alloc()
	assert.Nil(e.AddMemCpy(h, sdram.Base+64, sdram.Base, 64))
	src, dst, err := e.Pool().start(h)
	assert.Nil(err)
	// swap the arrays so the read channel holds write descriptors
	assert.Error(e.Backend().Kick(dst, src), ErrDescriptor)
	flag, _ := e.SyncFlag(h)
	assert.Equal(flag, 0)
}

func TestMetrics(t *testing.T) {
	assert := assert.Assert{TB: t}
	space, e := newEngine(t, nil)
	sdram, _ := space.Region(mem.SDRAM)
	assert.Nil(e.MemCpySync(sdram.Base+256, sdram.Base, 128))
	count := func(name string) int64 {
		return e.Registry().Get(name).(interface{ Count() int64 }).Count()
	}
	assert.Equal(count("dma.alloc"), 1)
	assert.Equal(count("dma.release"), 1)
	assert.Equal(count("dma.moves"), 1)
	assert.Equal(count("dma.bytes"), 128)
	assert.Equal(count("dma.starts"), 1)
	assert.Equal(count("dma.sync"), 1)
	assert.Equal(count("dma.sync.timeout"), 0)
}
