// Copyright © 2015-2022 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dma

import (
	"fmt"

	"github.com/platinasystems/oscar/mem"
	"github.com/platinasystems/oscar/mmio"
)

// Memory DMA stream 0 register blocks.
const (
	MDMADest0   = 0xffc00e00
	MDMASource0 = 0xffc00e40
	// Offset of MDMADest0 within its mapped page.
	MDMAPageOffset = MDMADest0 & 0xfff
	MDMAPage       = MDMADest0 &^ 0xfff
	mdmaSourceOff  = MDMASource0 - MDMADest0
	mdmaWindowSize = 0x80
)

// Per channel register offsets.
const (
	regNextDescPtr = 0x00
	regStartAddr   = 0x04
	regConfig      = 0x08
	regXCount      = 0x10
	regXModify     = 0x14
	regYCount      = 0x18
	regYModify     = 0x1c
	regCurrDescPtr = 0x20
	regIrqStatus   = 0x28
)

// IRQ_STATUS bits; done and error are write one to clear.
const (
	StatusDone    = 0x1
	StatusError   = 0x2
	StatusRunning = 0x8
)

// Hardware kicks chains on memory DMA stream 0 through its registers.
type Hardware struct {
	w    mmio.Window
	base uint32
}

// NewHardware returns a backend for the stream whose destination channel
// registers are at base in w and whose source channel follows.
func NewHardware(w mmio.Window, base uint32) (*Hardware, error) {
	if uint64(base)+mdmaWindowSize > uint64(w.Len()) {
		return nil, fmt.Errorf("mdma at %#x: %w", base, mmio.ErrOutOfRange)
	}
	return &Hardware{w: w, base: base}, nil
}

func (*Hardware) String() string { return "mdma0" }

func (h *Hardware) dst(reg uint32) uint32 { return h.base + reg }
func (h *Hardware) src(reg uint32) uint32 { return h.base + mdmaSourceOff + reg }

// Status returns the source and destination channel IRQ status.
func (h *Hardware) Status() (src, dst uint16, err error) {
	if src, err = h.w.Load16(h.src(regIrqStatus)); err != nil {
		return
	}
	dst, err = h.w.Load16(h.dst(regIrqStatus))
	return
}

// Kick starts the stream on the descriptor arrays at src and dst.
// The destination channel is enabled first so it is ready to drain the
// FIFO when the source channel starts filling it.
func (h *Hardware) Kick(src, dst mem.Addr) error {
	ss, ds, err := h.Status()
	if err != nil {
		return err
	}
	if (ss|ds)&StatusRunning != 0 {
		return ErrBusy
	}
	for _, x := range []struct {
		reg uint32
		v   uint16
	}{
		{h.src(regIrqStatus), StatusDone | StatusError},
		{h.dst(regIrqStatus), StatusDone | StatusError},
	} {
		if err = h.w.Store16(x.reg, x.v); err != nil {
			return err
		}
	}
	if err = h.w.Store32(h.src(regCurrDescPtr), uint32(src)); err != nil {
		return err
	}
	if err = h.w.Store32(h.dst(regCurrDescPtr), uint32(dst)); err != nil {
		return err
	}
	cfg := FlowArray | NextDescSize | Enable
	if err = h.w.Store16(h.dst(regConfig), uint16(cfg|Write)); err != nil {
		return err
	}
	return h.w.Store16(h.src(regConfig), uint16(cfg))
}
