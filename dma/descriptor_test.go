// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"testing"

	"github.com/platinasystems/oscar/internal/assert"
	"github.com/platinasystems/oscar/mem"
)

func TestWordSize(t *testing.T) {
	for _, x := range []struct {
		c    Config
		want uint
	}{
		{WordSize8, 1},
		{WordSize16, 2},
		{WordSize32, 4},
		{WordSizeMask, InvalidWordSize},
		{Enable | Write | WordSize16 | FlowArray, 2},
		{0xffff, InvalidWordSize},
	} {
		if got := x.c.WordSize(); got != x.want {
			t.Error("wrong:", x.c, got, "want", x.want)
		}
	}
	for c := 0; c <= 0xffff; c++ {
		got := Config(c).WordSize()
		if c&int(WordSizeMask) == int(WordSizeMask) {
			if got != InvalidWordSize {
				t.Fatalf("%#04x: %d", c, got)
			}
		} else if got != 1 && got != 2 && got != 4 {
			t.Fatalf("%#04x: %d", c, got)
		}
	}
}

func TestWordSizeConfig(t *testing.T) {
	assert := assert.Assert{TB: t}
	for _, n := range []uint{1, 2, 4} {
		c, err := WordSizeConfig(n)
		assert.Nil(err)
		assert.Equal(c.WordSize(), n)
	}
	for _, n := range []uint{0, 3, 8} {
		_, err := WordSizeConfig(n)
		assert.Error(err, ErrInvalidWordSize)
	}
}

func TestDescriptorLayout(t *testing.T) {
	assert := assert.Assert{TB: t}
	d := Descriptor{
		StartAddr: 0xff801234,
		Config:    Enable | Write | WordSize32 | TwoD | FlowArray | NextDescSize,
		XCount:    16,
		XModify:   4,
		YCount:    3,
		YModify:   -60,
	}
	b := make([]byte, DescriptorBytes)
	d.Put(b)
	assert.Bytes(b, []byte{
		0x34, 0x12,
		0x80, 0xff,
		0x1b, 0x47,
		0x10, 0x00,
		0x04, 0x00,
		0x03, 0x00,
		0xc4, 0xff,
	})
	var g Descriptor
	g.Get(b)
	assert.Equal(g, d)
	assert.Equal(g.Bytes(), 16*3*4)
	assert.Equal(g.Config.NextDescBytes(), DescriptorBytes)
	assert.True(g.IsWrite())
	assert.Equal(g.StartAddr, mem.Addr(0xff801234))
}

func TestRowsIgnoresYCountIn1D(t *testing.T) {
	d := Descriptor{Config: Enable | WordSize16, XCount: 8, YCount: 5}
	if n := d.Bytes(); n != 16 {
		t.Error("wrong:", n)
	}
}

func TestConfigString(t *testing.T) {
	assert := assert.Assert{TB: t}
	c := Enable | Write | WordSize32 | TwoD | FlowArray | NextDescSize
	assert.Equal(c.String(), "enable|write|2d|array|32bit|ndsize=7")
	c = Enable | WordSize16 | DataIntEnable | SyncExec
	assert.Equal(c.String(), "enable|sync|di-en|16bit")
	assert.Equal(WordSizeMask.String(), "bad-wdsize")
	d := Descriptor{StartAddr: 0x100200, Config: Enable | WordSize8 |
		FlowArray | NextDescSize, XCount: 2, XModify: 1, YCount: 1}
	assert.Equal(d, "0x00100200 [enable|array|8bit|ndsize=7] x 2/+1 y 1/+0")
}
