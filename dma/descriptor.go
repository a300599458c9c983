// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/platinasystems/oscar/mem"
)

// Config is a channel configuration word.
type Config uint16

const (
	Enable        Config = 0x0001
	Write         Config = 0x0002 // WNR: memory write, i.e. destination
	WordSize8     Config = 0x0000
	WordSize16    Config = 0x0004
	WordSize32    Config = 0x0008
	WordSizeMask  Config = 0x000c
	TwoD          Config = 0x0010
	SyncExec      Config = 0x0020
	DataIntSelect Config = 0x0040
	DataIntEnable Config = 0x0080
	NextDescSize  Config = 0x0700 // seven 16 bit words
	NextDescMask  Config = 0x0f00
	FlowArray     Config = 0x4000
	FlowMask      Config = 0x7000
	FlowStop      Config = 0x0000
)

// InvalidWordSize is returned by WordSize for the reserved encoding.
const InvalidWordSize = 0

// WordSize returns 1, 2 or 4 bytes, or InvalidWordSize.
func (c Config) WordSize() uint {
	switch c & WordSizeMask {
	case WordSize8:
		return 1
	case WordSize16:
		return 2
	case WordSize32:
		return 4
	}
	return InvalidWordSize
}

// WordSizeConfig encodes a word size of 1, 2 or 4 bytes.
func WordSizeConfig(n uint) (Config, error) {
	switch n {
	case 1:
		return WordSize8, nil
	case 2:
		return WordSize16, nil
	case 4:
		return WordSize32, nil
	}
	return 0, fmt.Errorf("%d bytes: %w", n, ErrInvalidWordSize)
}

func (c Config) Flow() Config { return c & FlowMask }

// NextDescBytes is the distance to the next descriptor of an array.
func (c Config) NextDescBytes() uint32 { return 2 * uint32((c&NextDescMask)>>8) }

var configNames = []struct {
	c    Config
	name string
}{
	{Enable, "enable"},
	{Write, "write"},
	{TwoD, "2d"},
	{SyncExec, "sync"},
	{DataIntSelect, "di-sel"},
	{DataIntEnable, "di-en"},
	{FlowArray, "array"},
}

func (c Config) String() string {
	var l []string
	for _, x := range configNames {
		if c&x.c != 0 {
			l = append(l, x.name)
		}
	}
	if n := c.WordSize(); n != InvalidWordSize {
		l = append(l, fmt.Sprint(8*n, "bit"))
	} else {
		l = append(l, "bad-wdsize")
	}
	if n := (c & NextDescMask) >> 8; n != 0 {
		l = append(l, fmt.Sprint("ndsize=", uint16(n)))
	}
	return strings.Join(l, "|")
}

// DescriptorBytes is the size of one array mode descriptor in memory.
const DescriptorBytes = 14

// Descriptor is one transfer segment.
type Descriptor struct {
	StartAddr mem.Addr
	Config    Config
	XCount    uint16
	XModify   int16
	YCount    uint16
	YModify   int16
}

func (d *Descriptor) StartAddrLow() uint16  { return uint16(d.StartAddr) }
func (d *Descriptor) StartAddrHigh() uint16 { return uint16(d.StartAddr >> 16) }

func (d *Descriptor) IsWrite() bool { return d.Config&Write != 0 }

// Rows is the outer count; 1 unless two dimensional.
func (d *Descriptor) Rows() uint32 {
	if d.Config&TwoD != 0 {
		return uint32(d.YCount)
	}
	return 1
}

// Bytes transferred by the descriptor.
func (d *Descriptor) Bytes() uint32 {
	return uint32(d.XCount) * d.Rows() * uint32(d.Config.WordSize())
}

// Put encodes the descriptor into the first DescriptorBytes of b.
func (d *Descriptor) Put(b []byte) {
	_ = b[DescriptorBytes-1]
	binary.LittleEndian.PutUint16(b[0:], d.StartAddrLow())
	binary.LittleEndian.PutUint16(b[2:], d.StartAddrHigh())
	binary.LittleEndian.PutUint16(b[4:], uint16(d.Config))
	binary.LittleEndian.PutUint16(b[6:], d.XCount)
	binary.LittleEndian.PutUint16(b[8:], uint16(d.XModify))
	binary.LittleEndian.PutUint16(b[10:], d.YCount)
	binary.LittleEndian.PutUint16(b[12:], uint16(d.YModify))
}

// Get decodes the descriptor from the first DescriptorBytes of b.
func (d *Descriptor) Get(b []byte) {
	_ = b[DescriptorBytes-1]
	lo := binary.LittleEndian.Uint16(b[0:])
	hi := binary.LittleEndian.Uint16(b[2:])
	d.StartAddr = mem.Addr(hi)<<16 | mem.Addr(lo)
	d.Config = Config(binary.LittleEndian.Uint16(b[4:]))
	d.XCount = binary.LittleEndian.Uint16(b[6:])
	d.XModify = int16(binary.LittleEndian.Uint16(b[8:]))
	d.YCount = binary.LittleEndian.Uint16(b[10:])
	d.YModify = int16(binary.LittleEndian.Uint16(b[12:]))
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%v [%s] x %d/%+d y %d/%+d", d.StartAddr, d.Config,
		d.XCount, d.XModify, d.YCount, d.YModify)
}
