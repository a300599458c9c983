// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"fmt"

	"github.com/platinasystems/oscar/mem"
)

// Longest descriptor array walked before a chain is declared runaway.
const maxEmulatedDescriptors = 1 << 12

// Emulator executes descriptor chains with memory copies. The read and
// write channels of a stream are coupled through a temporary buffer in
// place of the controller FIFO. Execution is complete when Kick returns.
type Emulator struct {
	space *mem.Space
	tmp   []byte

	// Trace, if set, is called after each executed descriptor.
	Trace func(d *Descriptor)
}

func NewEmulator(space *mem.Space) *Emulator {
	return &Emulator{space: space}
}

func (*Emulator) String() string { return "emulator" }

func (e *Emulator) decode(a mem.Addr) (d Descriptor, err error) {
	b, err := e.space.Slice(a, DescriptorBytes)
	if err == nil {
		d.Get(b)
	}
	return
}

// walk decodes both descriptor arrays up to and including the first
// descriptor pair with flow stop.
func (e *Emulator) walk(src, dst mem.Addr) ([]Descriptor, error) {
	var l []Descriptor
	for i := 0; i < maxEmulatedDescriptors; i++ {
		s, err := e.decode(src)
		if err != nil {
			return nil, err
		}
		d, err := e.decode(dst)
		if err != nil {
			return nil, err
		}
		switch {
		case s.Config&Enable == 0 || d.Config&Enable == 0:
			return nil, fmt.Errorf("%v/%v: disabled: %w",
				src, dst, ErrDescriptor)
		case s.IsWrite() || !d.IsWrite():
			return nil, fmt.Errorf("%v/%v: direction: %w",
				src, dst, ErrDescriptor)
		case s.Config.WordSize() == InvalidWordSize ||
			d.Config.WordSize() == InvalidWordSize:
			return nil, fmt.Errorf("%v/%v: %w",
				src, dst, ErrInvalidWordSize)
		case s.Bytes() != d.Bytes():
			return nil, fmt.Errorf("%v/%v: %w",
				src, dst, ErrAsymmetricMove)
		case s.Config.Flow() != d.Config.Flow():
			return nil, fmt.Errorf("%v/%v: flow: %w",
				src, dst, ErrDescriptor)
		}
		// execution order: read channel then write channel
		l = append(l, s, d)
		switch s.Config.Flow() {
		case FlowStop:
			return l, nil
		case FlowArray:
			src += mem.Addr(s.Config.NextDescBytes())
			dst += mem.Addr(d.Config.NextDescBytes())
		default:
			return nil, fmt.Errorf("%v: flow %#x: %w",
				src, uint16(s.Config.Flow()), ErrDescriptor)
		}
	}
	return nil, fmt.Errorf("%v: runaway: %w", src, ErrDescriptor)
}

// Kick runs the chain whose descriptor arrays start at src and dst.
// A malformed chain is rejected before any memory is modified.
func (e *Emulator) Kick(src, dst mem.Addr) error {
	l, err := e.walk(src, dst)
	if err != nil {
		return err
	}
	most := uint32(0)
	for i := range l {
		if n := l[i].Bytes(); n > most {
			most = n
		}
	}
	if uint32(cap(e.tmp)) < most {
		e.tmp = make([]byte, most)
	}
	for i := range l {
		d := &l[i]
		if err = e.channel(d); err != nil {
			return err
		}
		if e.Trace != nil {
			e.Trace(d)
		}
	}
	return nil
}

// channel performs one descriptor: a read into the temporary buffer or a
// write from it, depending on the direction bit.
func (e *Emulator) channel(d *Descriptor) error {
	tmp := e.tmp[:d.Bytes()]
	wd := d.Config.WordSize()
	x, y := int(d.XCount), int(d.Rows())
	xm, ym := int64(d.XModify), int64(d.YModify)
	if xm == int64(wd) && (y == 1 || ym == int64(wd)) {
		if d.IsWrite() {
			return e.space.Write(d.StartAddr, tmp)
		}
		return e.space.Read(d.StartAddr, tmp)
	}
	a := int64(d.StartAddr)
	i := 0
	for r := 0; r < y; r++ {
		for c := 0; c < x; c++ {
			if a < 0 || a >= 1<<32 {
				return fmt.Errorf("%#x: %w", a, mem.ErrUnmapped)
			}
			var err error
			if d.IsWrite() {
				err = e.space.Write(mem.Addr(a), tmp[i:i+int(wd)])
			} else {
				err = e.space.Read(mem.Addr(a), tmp[i:i+int(wd)])
			}
			if err != nil {
				return err
			}
			i += int(wd)
			if c < x-1 {
				a += xm
			} else {
				a += ym
			}
		}
	}
	return nil
}
