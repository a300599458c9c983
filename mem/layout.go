// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package mem

import "fmt"

// Layout describes one region of a memory map.
type Layout struct {
	Name string `yaml:"name"`
	Base Addr   `yaml:"base"`
	Size uint32 `yaml:"size"`
}

// Region names of the default memory map.
const (
	L1DataA = "l1a"
	L1DataB = "l1b"
	L1Instr = "l1i"
	Scratch = "scratch"
	SDRAM   = "sdram"
)

// DefaultLayout is the on-chip SRAM of the camera DSP plus a window of
// external SDRAM.
var DefaultLayout = []Layout{
	{L1DataA, 0xff800000, 32 << 10},
	{L1DataB, 0xff900000, 32 << 10},
	{L1Instr, 0xffa00000, 48 << 10},
	{Scratch, 0xffb00000, 4 << 10},
	{SDRAM, 0x00100000, 4 << 20},
}

// Map builds a Space from a layout; regions are backed by Go memory on
// the host and by /dev/mem on the target.
func Map(layout []Layout) (*Space, error) {
	s := new(Space)
	for _, l := range layout {
		w, err := window(l)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%s: %w", l.Name, err)
		}
		r, err := NewRegion(l.Name, l.Base, w)
		if err == nil {
			err = s.Add(r)
		}
		if err != nil {
			w.Close()
			s.Close()
			return nil, err
		}
	}
	return s, nil
}
