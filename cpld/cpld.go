// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cpld accesses the camera CPLD's byte wide registers through a
// mapped device window.
//
// Writes are shadowed so that field updates modify the last written
// value rather than reading back registers whose read value may differ.
package cpld

import (
	"errors"
	"fmt"

	"github.com/platinasystems/log"
	"github.com/platinasystems/oscar/mmio"
)

const (
	DefaultDevice    = "/dev/cpld"
	DefaultRegisters = 0x100
)

var (
	ErrNoDevice    = errors.New("no cpld device")
	ErrBadRegister = errors.New("no such cpld register")
)

type Cpld struct {
	w      mmio.Window
	shadow []uint8
}

// Open maps nregs registers of the cpld device.
func Open(path string, nregs uint32) (*Cpld, error) {
	w, err := mmio.Mmap(path, 0, nregs)
	if err != nil {
		log.Print("cpld: ", err)
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNoDevice, err)
	}
	return NewShadowed(w), nil
}

// NewShadowed wraps an already mapped register window.
func NewShadowed(w mmio.Window) *Cpld {
	return &Cpld{w: w, shadow: make([]uint8, w.Len())}
}

func (c *Cpld) Len() int { return len(c.shadow) }

func (c *Cpld) Close() error { return c.w.Close() }

func (c *Cpld) check(reg uint16) error {
	if int(reg) >= len(c.shadow) {
		return fmt.Errorf("%#x: %w", reg, ErrBadRegister)
	}
	return nil
}

// Rset writes a register.
func (c *Cpld) Rset(reg uint16, v uint8) error {
	if err := c.check(reg); err != nil {
		return err
	}
	if err := c.w.Store8(uint32(reg), v); err != nil {
		return err
	}
	c.shadow[reg] = v
	return nil
}

// Rget reads a register from the device.
func (c *Cpld) Rget(reg uint16) (uint8, error) {
	if err := c.check(reg); err != nil {
		return 0, err
	}
	return c.w.Load8(uint32(reg))
}

// Fset sets or clears the field bits of a register leaving the other bits
// as last written.
func (c *Cpld) Fset(reg uint16, field uint8, set bool) error {
	if err := c.check(reg); err != nil {
		return err
	}
	v := c.shadow[reg]
	if set {
		v |= field
	} else {
		v &^= field
	}
	return c.Rset(reg, v)
}

// Fget is true if any of the field bits are set in the device register.
func (c *Cpld) Fget(reg uint16, field uint8) (bool, error) {
	v, err := c.Rget(reg)
	return v&field != 0, err
}

// Shadow returns the last value written to the register.
func (c *Cpld) Shadow(reg uint16) (uint8, error) {
	if err := c.check(reg); err != nil {
		return 0, err
	}
	return c.shadow[reg], nil
}
