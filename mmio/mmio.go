// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package mmio provides bounds checked, byte addressed access to memory
// mapped device windows and to plain memory standing in for them.
package mmio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

var (
	ErrOutOfRange = errors.New("offset out of range")
	ErrUnaligned  = errors.New("unaligned access")
)

// Window is a byte addressed view of device registers or memory.
// Multi-byte accesses are little endian.
type Window interface {
	Len() uint32
	Load8(off uint32) (uint8, error)
	Load16(off uint32) (uint16, error)
	Load32(off uint32) (uint32, error)
	Store8(off uint32, v uint8) error
	Store16(off uint32, v uint16) error
	Store32(off uint32, v uint32) error
	// Bytes returns the backing memory.
	Bytes() []byte
	Close() error
}

// Mem is a Window over a byte slice; either Go memory or an mmap.
type Mem struct {
	b     []byte
	unmap func([]byte) error
}

// New returns a zeroed memory window of size bytes.
func New(size uint32) *Mem { return &Mem{b: make([]byte, size)} }

// Over returns a window aliasing b.
func Over(b []byte) *Mem { return &Mem{b: b} }

func (m *Mem) Len() uint32   { return uint32(len(m.b)) }
func (m *Mem) Bytes() []byte { return m.b }

func (m *Mem) Close() (err error) {
	if m.unmap != nil && m.b != nil {
		err = m.unmap(m.b)
	}
	m.b = nil
	return
}

func (m *Mem) check(off, n uint32) error {
	if uint64(off)+uint64(n) > uint64(len(m.b)) {
		return fmt.Errorf("0x%x+%d: %w", off, n, ErrOutOfRange)
	}
	if off%n != 0 {
		return fmt.Errorf("0x%x: %w", off, ErrUnaligned)
	}
	return nil
}

func (m *Mem) Load8(off uint32) (uint8, error) {
	if err := m.check(off, 1); err != nil {
		return 0, err
	}
	return m.b[off], nil
}

func (m *Mem) Store8(off uint32, v uint8) error {
	if err := m.check(off, 1); err != nil {
		return err
	}
	m.b[off] = v
	return nil
}

// Load16 is a single aligned halfword load, as 16 bit device registers
// require; sync/atomic has no halfword operations.
func (m *Mem) Load16(off uint32) (uint16, error) {
	if err := m.check(off, 2); err != nil {
		return 0, err
	}
	if p := unsafe.Pointer(&m.b[off]); uintptr(p)%2 == 0 {
		return le16(*(*uint16)(p)), nil
	}
	return binary.LittleEndian.Uint16(m.b[off:]), nil
}

func (m *Mem) Store16(off uint32, v uint16) error {
	if err := m.check(off, 2); err != nil {
		return err
	}
	if p := unsafe.Pointer(&m.b[off]); uintptr(p)%2 == 0 {
		*(*uint16)(p) = le16(v)
	} else {
		binary.LittleEndian.PutUint16(m.b[off:], v)
	}
	return nil
}

// Load32 is a single aligned load so that a word written by a DMA
// controller is observed whole and is re-read on every call.
func (m *Mem) Load32(off uint32) (uint32, error) {
	if err := m.check(off, 4); err != nil {
		return 0, err
	}
	if p := unsafe.Pointer(&m.b[off]); uintptr(p)%4 == 0 {
		return le32(atomic.LoadUint32((*uint32)(p))), nil
	}
	return binary.LittleEndian.Uint32(m.b[off:]), nil
}

func (m *Mem) Store32(off uint32, v uint32) error {
	if err := m.check(off, 4); err != nil {
		return err
	}
	if p := unsafe.Pointer(&m.b[off]); uintptr(p)%4 == 0 {
		atomic.StoreUint32((*uint32)(p), le32(v))
	} else {
		binary.LittleEndian.PutUint32(m.b[off:], v)
	}
	return nil
}

// le16 converts between host and little endian byte order.
func le16(v uint16) uint16 {
	if hostLittleEndian {
		return v
	}
	return v>>8 | v<<8
}

// le32 converts between host and little endian byte order.
func le32(v uint32) uint32 {
	if hostLittleEndian {
		return v
	}
	return v>>24 | (v>>8)&0xff00 | (v<<8)&0xff0000 | v<<24
}

var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()
