// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package config loads the framework configuration from YAML.
//
//	dma:
//	  chains: 2
//	  moves: 4
//	  region: l1a
//	  sync: deadline
//	  timeout: 20s
//	memory:
//	- {name: sdram, base: 0x100000, size: 0x400000}
//	cpld:
//	  device: /dev/cpld
//	sup:
//	  corehz: 500000000
//
// Omitted values keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/platinasystems/oscar/cpld"
	"github.com/platinasystems/oscar/dma"
	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/sup"
	"gopkg.in/yaml.v2"
)

// Sync strategies.
const (
	SyncDeadline   = "deadline"
	SyncIterations = "iterations"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DMA    DMA          `yaml:"dma"`
	Memory []mem.Layout `yaml:"memory"`
	Cpld   Cpld         `yaml:"cpld"`
	Sup    sup.Config   `yaml:"sup"`
	Swr    Swr          `yaml:"swr"`
}

type DMA struct {
	Chains     int           `yaml:"chains"`
	Moves      int           `yaml:"moves"`
	Region     string        `yaml:"region"`
	Sync       string        `yaml:"sync"`
	Timeout    time.Duration `yaml:"timeout"`
	Iterations uint64        `yaml:"iterations"`
}

type Cpld struct {
	Device    string `yaml:"device"`
	Registers uint32 `yaml:"registers"`
}

type Swr struct {
	// Dir is where stimuli files are created.
	Dir string `yaml:"dir"`
}

func Default() *Config {
	return &Config{
		DMA: DMA{
			Chains:     dma.MaxChains,
			Moves:      dma.MaxMovesPerChain,
			Region:     mem.L1DataA,
			Sync:       SyncDeadline,
			Timeout:    dma.DefaultSyncTimeout,
			Iterations: dma.DefaultSyncIterations,
		},
		Memory: append([]mem.Layout(nil), mem.DefaultLayout...),
		Cpld: Cpld{
			Device:    cpld.DefaultDevice,
			Registers: cpld.DefaultRegisters,
		},
		Sup: sup.Config{
			CoreHz:   sup.DefaultCoreHz,
			Watchdog: sup.DefaultWatchdog,
		},
		Swr: Swr{Dir: "."},
	}
}

// Load overlays the named file on the defaults.
func Load(fn string) (*Config, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return c, nil
}

func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DMA.Chains <= 0:
		return fmt.Errorf("dma chains %d: %w", c.DMA.Chains, ErrInvalid)
	case c.DMA.Moves <= 0:
		return fmt.Errorf("dma moves %d: %w", c.DMA.Moves, ErrInvalid)
	case c.DMA.Sync == SyncDeadline && c.DMA.Timeout <= 0:
		return fmt.Errorf("dma timeout %v: %w", c.DMA.Timeout, ErrInvalid)
	case c.DMA.Sync == SyncIterations && c.DMA.Iterations == 0:
		return fmt.Errorf("dma iterations 0: %w", ErrInvalid)
	case c.DMA.Sync != SyncDeadline && c.DMA.Sync != SyncIterations:
		return fmt.Errorf("dma sync %q: %w", c.DMA.Sync, ErrInvalid)
	case len(c.Memory) == 0:
		return fmt.Errorf("no memory: %w", ErrInvalid)
	}
	found := false
	for i, a := range c.Memory {
		if a.Size == 0 {
			return fmt.Errorf("memory %s: size 0: %w", a.Name, ErrInvalid)
		}
		found = found || a.Name == c.DMA.Region
		for _, b := range c.Memory[:i] {
			if a.Name == b.Name {
				return fmt.Errorf("memory %s: duplicate: %w",
					a.Name, ErrInvalid)
			}
			if uint64(a.Base) < uint64(b.Base)+uint64(b.Size) &&
				uint64(b.Base) < uint64(a.Base)+uint64(a.Size) {
				return fmt.Errorf("memory %s overlaps %s: %w",
					a.Name, b.Name, ErrInvalid)
			}
		}
	}
	if !found {
		return fmt.Errorf("dma region %q: %w", c.DMA.Region, ErrInvalid)
	}
	return nil
}

// Waiter returns the configured sync strategy.
func (c *Config) Waiter(clock dma.Clock) dma.Waiter {
	if c.DMA.Sync == SyncIterations {
		return dma.IterationLimit(c.DMA.Iterations)
	}
	return dma.Deadline{Timeout: c.DMA.Timeout, Clock: clock}
}

// Engine returns the dma engine configuration.
func (c *Config) Engine(clock dma.Clock) dma.EngineConfig {
	return dma.EngineConfig{
		Chains:        c.DMA.Chains,
		MovesPerChain: c.DMA.Moves,
		Region:        c.DMA.Region,
		Waiter:        c.Waiter(clock),
		Clock:         clock,
	}
}

func (c *Config) String() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
