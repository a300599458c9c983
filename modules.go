// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package oscar

import (
	"fmt"

	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/dma"
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/sim"
	"github.com/platinasystems/oscar/sup"
	"github.com/platinasystems/oscar/swr"
)

func notLoaded(name string) error { return fmt.Errorf("%s: %w", name, ErrNotLoaded) }

func (fw *Framework) Space() (*mem.Space, error) {
	if fw.space == nil {
		return nil, notLoaded(Mem)
	}
	return fw.space, nil
}

func (fw *Framework) Sup() (*sup.Sup, error) {
	if fw.sup == nil {
		return nil, notLoaded(Sup)
	}
	return fw.sup, nil
}

func (fw *Framework) DMA() (*dma.Engine, error) {
	if fw.dma == nil {
		return nil, notLoaded(DMA)
	}
	return fw.dma, nil
}

func (fw *Framework) Cpld() (*cpld.Cpld, error) {
	if fw.cpld == nil {
		return nil, notLoaded(Cpld)
	}
	return fw.cpld, nil
}

func (fw *Framework) Sim() (*sim.Sim, error) {
	if fw.sim == nil {
		return nil, notLoaded(Sim)
	}
	return fw.sim, nil
}

func (fw *Framework) Swr() (*swr.Swr, error) {
	if fw.swr == nil {
		return nil, notLoaded(Swr)
	}
	return fw.swr, nil
}

func (fw *Framework) createMem() (err error) {
	fw.space, err = mem.Map(fw.cfg.Memory)
	return
}

func (fw *Framework) destroyMem() error {
	err := fw.space.Close()
	fw.space = nil
	return err
}

func (fw *Framework) createSup() error {
	fw.sup = sup.New(fw.space, fw.cfg.Sup)
	return nil
}

func (fw *Framework) destroySup() error {
	err := fw.sup.Close()
	fw.sup = nil
	return err
}

func (fw *Framework) createDMA() error {
	backend := fw.Backend
	if backend == nil {
		backend = dma.DefaultBackend
	}
	b, err := backend(fw.space)
	if err != nil {
		return err
	}
	fw.dma, err = dma.New(fw.space, b, fw.cfg.Engine(fw.sup))
	return err
}

func (fw *Framework) destroyDMA() error {
	err := fw.dma.Close()
	fw.dma = nil
	return err
}

func (fw *Framework) createCpld() (err error) {
	fw.cpld, err = cpld.Open(fw.cfg.Cpld.Device, fw.cfg.Cpld.Registers)
	return
}

func (fw *Framework) destroyCpld() error {
	err := fw.cpld.Close()
	fw.cpld = nil
	return err
}

func (fw *Framework) createSim() error {
	fw.sim = sim.New()
	return nil
}

func (fw *Framework) destroySim() error {
	fw.sim = nil
	return nil
}

func (fw *Framework) createSwr() (err error) {
	fw.swr, err = swr.Create(fw.sim)
	return
}

func (fw *Framework) destroySwr() error {
	err := fw.swr.Close()
	fw.swr = nil
	return err
}
