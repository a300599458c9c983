// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sup provides the platform support services: a free running
// cycle counter, the hardware watchdog and allocators for the fixed on-chip
// memory banks.
package sup

import (
	"errors"

	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar/mem"
)

const (
	DefaultCoreHz   = 500000000
	DefaultWatchdog = "/dev/watchdog"
)

var ErrTooLarge = errors.New("larger than memory bank")

type Config struct {
	// CoreHz is the cycle counter rate on target.
	CoreHz uint32 `yaml:"corehz"`
	// Watchdog is the target watchdog device.
	Watchdog string `yaml:"watchdog"`
}

type Sup struct {
	*Clock
	space *mem.Space
	wdt   watchdog
}

func New(space *mem.Space, cfg Config) *Sup {
	if cfg.CoreHz == 0 {
		cfg.CoreHz = DefaultCoreHz
	}
	if cfg.Watchdog == "" {
		cfg.Watchdog = DefaultWatchdog
	}
	return &Sup{
		Clock: DefaultClock(cfg.CoreHz),
		space: space,
		wdt:   newWatchdog(cfg.Watchdog),
	}
}

// Close disables the watchdog so that the board isn't reset after the
// application exits.
func (s *Sup) Close() error {
	err := s.WdtClose()
	if err != nil {
		log.Print("sup: watchdog close: ", err)
	}
	return err
}

// WdtInit arms the watchdog; it must then be fed with WdtKeepAlive.
func (s *Sup) WdtInit() error      { return s.wdt.init() }
func (s *Sup) WdtKeepAlive() error { return s.wdt.keepAlive() }
func (s *Sup) WdtClose() error     { return s.wdt.close() }
