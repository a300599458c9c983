// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package oscar is the camera framework context. It creates the support,
// memory, cpld, simulation, stimuli writer and dma modules on demand,
// along with what they depend on, and destroys them once the last user
// unloads them.
package oscar

import (
	"errors"
	"fmt"

	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar/config"
	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/dma"
	"github.com/platinasystems/oscar/internal/dep"
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/sim"
	"github.com/platinasystems/oscar/sup"
	"github.com/platinasystems/oscar/swr"
)

// Module names.
const (
	Mem  = "mem"
	Sup  = "sup"
	DMA  = "dma"
	Cpld = "cpld"
	Sim  = "sim"
	Swr  = "swr"
)

var (
	ErrNotLoaded     = errors.New("module not loaded")
	ErrUnknownModule = errors.New("unknown module")
)

type module struct {
	dep.Dep
	refs    int
	create  func() error
	destroy func() error
}

type Framework struct {
	cfg     *config.Config
	deps    dep.Deps
	modules map[string]*module

	// Backend selects the dma backend; nil for the build default.
	Backend func(*mem.Space) (dma.Backend, error)

	space *mem.Space
	sup   *sup.Sup
	dma   *dma.Engine
	cpld  *cpld.Cpld
	sim   *sim.Sim
	swr   *swr.Swr
}

// New returns a framework with nothing loaded; nil cfg selects the
// defaults.
func New(cfg *config.Config) *Framework {
	if cfg == nil {
		cfg = config.Default()
	}
	fw := &Framework{
		cfg:     cfg,
		modules: make(map[string]*module),
	}
	add := func(name string, create, destroy func() error, deps ...string) {
		m := &module{create: create, destroy: destroy}
		m.Name = name
		for _, d := range deps {
			m.Deps = append(m.Deps, &fw.modules[d].Dep)
		}
		fw.modules[name] = m
		fw.deps.Add(&m.Dep)
	}
	add(Mem, fw.createMem, fw.destroyMem)
	add(Sup, fw.createSup, fw.destroySup, Mem)
	add(DMA, fw.createDMA, fw.destroyDMA, Mem, Sup)
	add(Cpld, fw.createCpld, fw.destroyCpld)
	add(Sim, fw.createSim, fw.destroySim)
	add(Swr, fw.createSwr, fw.destroySwr, Sim)
	return fw
}

func (fw *Framework) Config() *config.Config { return fw.cfg }

func (fw *Framework) closure(name string) ([]*module, error) {
	m, found := fw.modules[name]
	if !found {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownModule)
	}
	l, err := fw.deps.Closure(&m.Dep)
	if err != nil {
		return nil, err
	}
	r := make([]*module, len(l))
	for i, d := range l {
		r[i] = fw.modules[d.Name]
	}
	return r, nil
}

// Load creates the named modules and their dependencies or, if already
// loaded, adds a reference.
func (fw *Framework) Load(names ...string) error {
	for i, name := range names {
		if err := fw.load(name); err != nil {
			fw.Unload(names[:i]...)
			return err
		}
	}
	return nil
}

func (fw *Framework) load(name string) error {
	l, err := fw.closure(name)
	if err != nil {
		return err
	}
	for i, m := range l {
		if m.refs == 0 {
			if err = m.create(); err != nil {
				log.Print("oscar: ", m.Name, ": ", err)
				fw.unref(l[:i])
				return fmt.Errorf("%s: %w", m.Name, err)
			}
		}
		m.refs++
	}
	return nil
}

// Unload drops a reference to each named module and its dependencies,
// destroying those without users.
func (fw *Framework) Unload(names ...string) error {
	var err error
	for i := len(names) - 1; i >= 0; i-- {
		l, cerr := fw.closure(names[i])
		if cerr != nil {
			return cerr
		}
		if l[len(l)-1].refs == 0 {
			if err == nil {
				err = fmt.Errorf("%s: %w", names[i], ErrNotLoaded)
			}
			continue
		}
		if uerr := fw.unref(l); err == nil {
			err = uerr
		}
	}
	return err
}

func (fw *Framework) unref(l []*module) error {
	var err error
	for i := len(l) - 1; i >= 0; i-- {
		m := l[i]
		if m.refs == 0 {
			continue
		}
		if m.refs--; m.refs > 0 {
			continue
		}
		if derr := m.destroy(); derr != nil {
			log.Print("oscar: ", m.Name, ": ", derr)
			if err == nil {
				err = fmt.Errorf("%s: %w", m.Name, derr)
			}
		}
	}
	return err
}

// Refs returns the number of users of the named module.
func (fw *Framework) Refs(name string) int {
	if m, found := fw.modules[name]; found {
		return m.refs
	}
	return 0
}

// Close destroys every loaded module regardless of users.
func (fw *Framework) Close() error {
	l, err := fw.deps.Ordered()
	if err != nil {
		return err
	}
	for i := len(l) - 1; i >= 0; i-- {
		m := fw.modules[l[i].Name]
		if m.refs == 0 {
			continue
		}
		m.refs = 0
		if derr := m.destroy(); err == nil {
			err = derr
		}
	}
	return err
}
