// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sup

import (
	"testing"

	"github.com/platinasystems/oscar/internal/assert"
	"github.com/platinasystems/oscar/mem"
)

func newSup(t *testing.T) *Sup {
	t.Helper()
	space, err := mem.Map(mem.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { space.Close() })
	s := New(space, Config{})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClockScale(t *testing.T) {
	assert := assert.Assert{TB: t}
	var ns int64
	c := newClock(500000000, func() int64 { return ns })
	assert.Equal(c.Cycles(), 0)
	ns = 1000
	assert.Equal(c.Cycles(), 500)
	assert.Equal(c.CyclesToMicroseconds(c.Cycles()), 1)
	ns = 3*1e9 + 2000
	assert.Equal(c.Cycles(), uint32(1500000000+1000))
	// wraps at 2^32 cycles
	ns = 9 * 1e9
	assert.Equal(c.Cycles(), uint32(4500000000-1<<32))
	assert.Equal(c, "500.000 MHz")
}

func TestClockMinimumRate(t *testing.T) {
	c := newClock(1000, func() int64 { return 0 })
	if c.Hz() != 1000000 {
		t.Error("wrong:", c.Hz())
	}
}

func TestDefaultClockAdvances(t *testing.T) {
	s := newSup(t)
	c0 := s.Cycles()
	for s.Cycles() == c0 {
	}
	if us := s.CyclesToMicroseconds(s.Cycles() - c0); us > 1000000 {
		t.Error("wrong:", us)
	}
}

func TestWatchdog(t *testing.T) {
	assert := assert.Assert{TB: t}
	s := newSup(t)
	assert.Nil(s.WdtInit())
	assert.Nil(s.WdtKeepAlive())
	assert.Nil(s.WdtClose())
}

func TestSram(t *testing.T) {
	assert := assert.Assert{TB: t}
	s := newSup(t)
	for _, x := range []struct {
		alloc  func(uint32) (mem.Block, error)
		region string
	}{
		{s.AllocL1DataA, mem.L1DataA},
		{s.AllocL1DataB, mem.L1DataB},
		{s.AllocL1Instr, mem.L1Instr},
		{s.AllocScratch, mem.Scratch},
		{s.AllocSDRAM, mem.SDRAM},
	} {
		r, err := s.space.Region(x.region)
		assert.Nil(err)
		b, err := x.alloc(64)
		assert.Nil(err)
		assert.True(r.Contains(b.Addr))
		assert.Equal(uint32(b.Addr)%sramAlign, 0)
		assert.Equal(len(b.Bytes), 64)
		_, err = x.alloc(r.Size + 1)
		assert.Error(err, ErrTooLarge)
		assert.Nil(s.Free(b))
	}
	assert.Error(s.Free(mem.Block{Addr: 0x80000000}), mem.ErrBadFree)
}

func TestAllocL1DataSpills(t *testing.T) {
	assert := assert.Assert{TB: t}
	s := newSup(t)
	a, _ := s.space.Region(mem.L1DataA)
	b, _ := s.space.Region(mem.L1DataB)
	x, err := s.AllocL1Data(a.Size)
	assert.Nil(err)
	assert.True(a.Contains(x.Addr))
	y, err := s.AllocL1Data(64)
	assert.Nil(err)
	assert.True(b.Contains(y.Addr))
	_, err = s.AllocL1Data(a.Size + b.Size)
	assert.Error(err, ErrTooLarge)
	assert.Nil(s.Free(x))
	assert.Nil(s.Free(y))
}
