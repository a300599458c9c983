// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/platinasystems/oscar/dma"
	"github.com/platinasystems/oscar/internal/assert"
	"github.com/platinasystems/oscar/mem"
)

type clock struct{}

func (clock) Cycles() uint32                       { return 0 }
func (clock) CyclesToMicroseconds(c uint32) uint32 { return c }

func TestDefault(t *testing.T) {
	assert := assert.Assert{TB: t}
	c := Default()
	assert.Nil(c.Validate())
	assert.Equal(c.DMA.Chains, dma.MaxChains)
	assert.Equal(c.DMA.Moves, dma.MaxMovesPerChain)
	assert.Equal(len(c.Memory), len(mem.DefaultLayout))
	d, ok := c.Waiter(clock{}).(dma.Deadline)
	assert.True(ok)
	assert.Equal(d.Timeout, 20*time.Second)
}

func TestParse(t *testing.T) {
	assert := assert.Assert{TB: t}
	c, err := Parse([]byte(`
dma:
  chains: 3
  sync: iterations
  iterations: 1000
memory:
- {name: l1a, base: 0xff800000, size: 0x8000}
- {name: sdram, base: 0x100000, size: 0x10000}
`))
	assert.Nil(err)
	assert.Equal(c.DMA.Chains, 3)
	assert.Equal(c.DMA.Moves, dma.MaxMovesPerChain)
	assert.Equal(len(c.Memory), 2)
	assert.Equal(c.Memory[1].Base, mem.Addr(0x100000))
	assert.Equal(c.Waiter(clock{}), dma.IterationLimit(1000))
	e := c.Engine(clock{})
	assert.Equal(e.Chains, 3)
	assert.Equal(e.Region, mem.L1DataA)

	c, err = Parse([]byte("dma: {timeout: 5ms}\n"))
	assert.Nil(err)
	assert.Equal(c.DMA.Timeout, 5*time.Millisecond)
}

func TestInvalid(t *testing.T) {
	for _, s := range []string{
		"dma: {chains: 0}",
		"dma: {moves: -1}",
		"dma: {sync: spin}",
		"dma: {timeout: 0s}",
		"dma: {sync: iterations, iterations: 0}",
		"dma: {region: l2}",
		"memory: []",
		"memory: [{name: a, base: 0, size: 0x100}, {name: b, base: 0x80, size: 0x100}]",
		"memory: [{name: l1a, base: 0, size: 0x100}, {name: l1a, base: 0x800, size: 0x100}]",
		"memory: [{name: l1a, base: 0, size: 0}]",
	} {
		if _, err := Parse([]byte(s)); err == nil {
			t.Error("accepted:", s)
		}
	}
	if _, err := Parse([]byte("dam: {}")); err == nil {
		t.Error("accepted unknown field")
	}
}

func TestLoad(t *testing.T) {
	assert := assert.Assert{TB: t}
	fn := filepath.Join(t.TempDir(), "oscar.yaml")
	assert.Nil(os.WriteFile(fn, []byte("cpld: {device: /dev/null}\n"), 0644))
	c, err := Load(fn)
	assert.Nil(err)
	assert.Equal(c.Cpld.Device, "/dev/null")
	assert.Equal(c.Cpld.Registers, 0x100)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(os.IsNotExist(err))

	back, err := Parse([]byte(c.String()))
	assert.Nil(err)
	assert.Equal(back.String(), c.String())
}
