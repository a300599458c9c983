// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package oscar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/platinasystems/oscar/config"
	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/internal/assert"
)

func TestLoadUnload(t *testing.T) {
	assert := assert.Assert{TB: t}
	fw := New(nil)
	defer fw.Close()
	_, err := fw.DMA()
	assert.Error(err, ErrNotLoaded)

	assert.Nil(fw.Load(DMA))
	for _, name := range []string{Mem, Sup, DMA} {
		assert.Equal(fw.Refs(name), 1)
	}
	assert.Equal(fw.Refs(Sim), 0)
	assert.Nil(fw.Load(Sup))
	assert.Equal(fw.Refs(Sup), 2)
	assert.Equal(fw.Refs(Mem), 2)

	assert.Nil(fw.Unload(DMA))
	_, err = fw.DMA()
	assert.Error(err, ErrNotLoaded)
	s, err := fw.Sup()
	assert.Nil(err)
	_, err = s.AllocScratch(16)
	assert.Nil(err)
	assert.Equal(fw.Refs(Mem), 1)

	assert.Nil(fw.Unload(Sup))
	_, err = fw.Space()
	assert.Error(err, ErrNotLoaded)
	assert.Error(fw.Unload(Sup), ErrNotLoaded)
	assert.Error(fw.Load("jpg"), ErrUnknownModule)
}

func TestMemCpy(t *testing.T) {
	assert := assert.Assert{TB: t}
	fw := New(nil)
	defer fw.Close()
	assert.Nil(fw.Load(DMA))
	s, _ := fw.Sup()
	e, err := fw.DMA()
	assert.Nil(err)
	src, err := s.AllocSDRAM(256)
	assert.Nil(err)
	dst, err := s.AllocL1DataB(256)
	assert.Nil(err)
	for i := range src.Bytes {
		src.Bytes[i] = byte(i)
	}
	assert.Nil(e.MemCpySync(dst.Addr, src.Addr, 256))
	assert.Bytes(dst.Bytes, src.Bytes)
}

func TestStimuli(t *testing.T) {
	assert := assert.Assert{TB: t}
	fw := New(nil)
	defer fw.Close()
	assert.Nil(fw.Load(Swr))
	assert.Equal(fw.Refs(Sim), 1)
	w, err := fw.Swr()
	assert.Nil(err)
	sm, err := fw.Sim()
	assert.Nil(err)
	fn := filepath.Join(t.TempDir(), "stimuli.txt")
	wr, err := w.CreateWriter(fn, true, true)
	assert.Nil(err)
	_, err = wr.AddSignal("x", 0, "")
	assert.Nil(err)
	sm.CycleStep()
	sm.CycleStep()
	assert.Nil(fw.Unload(Swr))
	b, err := os.ReadFile(fn)
	assert.Nil(err)
	assert.Equal(string(b), "! [time] x\n1\t0\n2\t0\n")
}

func TestCpld(t *testing.T) {
	assert := assert.Assert{TB: t}
	cfg := config.Default()
	cfg.Cpld.Device = filepath.Join(t.TempDir(), "cpld")
	fw := New(cfg)
	defer fw.Close()
	assert.Error(fw.Load(Cpld), cpld.ErrNoDevice)
	assert.Equal(fw.Refs(Cpld), 0)

	assert.Nil(os.WriteFile(cfg.Cpld.Device, make([]byte, cfg.Cpld.Registers), 0644))
	if err := fw.Load(Cpld); err != nil {
		t.Skip(err)
	}
	c, err := fw.Cpld()
	assert.Nil(err)
	assert.Nil(c.Fset(1, 0x40, true))
	on, err := c.Fget(1, 0x40)
	assert.Nil(err)
	assert.True(on)
}

func TestLoadRollback(t *testing.T) {
	assert := assert.Assert{TB: t}
	cfg := config.Default()
	cfg.Cpld.Device = filepath.Join(t.TempDir(), "nocpld")
	fw := New(cfg)
	defer fw.Close()
	assert.Error(fw.Load(DMA, Cpld), cpld.ErrNoDevice)
	for _, name := range []string{Mem, Sup, DMA, Cpld} {
		assert.Equal(fw.Refs(name), 0)
	}
}
